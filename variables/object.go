package variables

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Object is implemented by host values that control how they are rendered
// and accessed from references such as ${obj.name} or ${obj[0]}.
type Object interface {
	String() string
	Attr(name string) (any, error)
	Index(key any) (any, error)
}

// Caller is implemented by host values that expose methods to expression
// references such as ${obj.greet("world")}.
type Caller interface {
	Call(method string, args ...any) (any, error)
}

var (
	errNoAttr       = errors.New("no such attribute")
	errNoKey        = errors.New("no such key")
	errRange        = errors.New("index out of range")
	errBadIndex     = errors.New("index must be an integer")
	errSubscript    = errors.New("value is not subscriptable")
	errZeroDivision = errors.New("division by zero")
)

// member returns the attribute or item key of v. String keys select
// attributes of objects and fields of structs; otherwise key indexes v.
func member(v, key any) (any, error) {
	if o, ok := v.(Object); ok {
		if name, ok := key.(string); ok {
			return o.Attr(name)
		}

		return o.Index(key)
	}

	rv := indirect(reflect.ValueOf(v))

	switch {
	case isMapping(v):
		if out, ok := mapIndex(v, key); ok {
			return out, nil
		}

		return nil, fmt.Errorf("%w: %s", errNoKey, quoteKey(key))

	case isSequence(v) || rv.Kind() == reflect.String:
		i, ok := toIndex(key)
		if !ok {
			if name, isName := key.(string); isName {
				return nil, fmt.Errorf("%w: %T has no attribute %q", errNoAttr, v, name)
			}

			return nil, fmt.Errorf("%w: %s", errBadIndex, quoteKey(key))
		}

		return sequenceIndex(v, i)

	case rv.Kind() == reflect.Struct:
		name, ok := key.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %T", errSubscript, v)
		}

		field := rv.FieldByNameFunc(func(f string) bool {
			return strings.EqualFold(f, name)
		})
		if !field.IsValid() || !field.CanInterface() {
			return nil, fmt.Errorf("%w: %T has no attribute %q", errNoAttr, v, name)
		}

		return field.Interface(), nil
	}

	return nil, fmt.Errorf("%w: %T", errSubscript, v)
}

// indirect dereferences non-nil pointers.
func indirect(rv reflect.Value) reflect.Value {
	for rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}

	return rv
}

// isSequence reports whether v is a slice or array.
func isSequence(v any) bool {
	switch indirect(reflect.ValueOf(v)).Kind() {
	case reflect.Slice, reflect.Array:
		return true
	default:
		return false
	}
}

// isMapping reports whether v is a map.
func isMapping(v any) bool {
	return indirect(reflect.ValueOf(v)).Kind() == reflect.Map
}

// elements returns the items of sequence v.
func elements(v any) []any {
	rv := indirect(reflect.ValueOf(v))

	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}

	return out
}

// length returns the number of items in sequence v.
func length(v any) int { return indirect(reflect.ValueOf(v)).Len() }

// sequenceIndex returns item i of a slice, array or string, counting from the
// end when i is negative.
func sequenceIndex(v any, i int) (any, error) {
	rv := indirect(reflect.ValueOf(v))

	if rv.Kind() == reflect.String {
		r := []rune(rv.String())
		if i < 0 {
			i += len(r)
		}

		if i < 0 || i >= len(r) {
			return nil, fmt.Errorf("%w: %d", errRange, i)
		}

		return string(r[i]), nil
	}

	n := rv.Len()
	if i < 0 {
		i += n
	}

	if i < 0 || i >= n {
		return nil, fmt.Errorf("%w: %d", errRange, i)
	}

	return rv.Index(i).Interface(), nil
}

// sequenceSlice returns items [start, end) of sequence v. Bounds are clamped
// and negative bounds count from the end.
func sequenceSlice(v any, start, end *int) any {
	rv := indirect(reflect.ValueOf(v))
	n := rv.Len()

	bound := func(p *int, def int) int {
		if p == nil {
			return def
		}

		i := *p
		if i < 0 {
			i += n
		}

		return min(max(i, 0), n)
	}

	lo, hi := bound(start, 0), bound(end, n)
	if hi < lo {
		hi = lo
	}

	if rv.Kind() == reflect.Array {
		out := make([]any, 0, hi-lo)
		for i := lo; i < hi; i++ {
			out = append(out, rv.Index(i).Interface())
		}

		return out
	}

	return rv.Slice(lo, hi).Interface()
}

// toIndex converts an integer or integer text to an int.
func toIndex(key any) (int, bool) {
	if s, ok := key.(string); ok {
		i, err := strconv.Atoi(strings.TrimSpace(s))

		return i, err == nil
	}

	rv := reflect.ValueOf(key)

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int(rv.Uint()), true
	default:
		return 0, false
	}
}

// mapIndex looks key up in map m. Numeric keys match numerically equal keys
// of any numeric type.
func mapIndex(m, key any) (any, bool) {
	rv := indirect(reflect.ValueOf(m))

	if key != nil {
		kv := reflect.ValueOf(key)
		if kv.Type().AssignableTo(rv.Type().Key()) && kv.Comparable() {
			if out := rv.MapIndex(kv); out.IsValid() {
				return out.Interface(), true
			}
		}
	}

	for iter := rv.MapRange(); iter.Next(); {
		if equalKeys(iter.Key().Interface(), key) {
			return iter.Value().Interface(), true
		}
	}

	return nil, false
}

// equalKeys compares map keys, treating numbers by value.
func equalKeys(a, b any) bool {
	if x, ok := toFloat(a); ok {
		y, ok := toFloat(b)

		return ok && x == y
	}

	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if !ra.IsValid() || !rb.IsValid() {
		return !ra.IsValid() && !rb.IsValid()
	}

	return ra.Type() == rb.Type() && ra.Comparable() && ra.Equal(rb)
}

// toFloat converts any numeric value to float64.
func toFloat(v any) (float64, bool) {
	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}

// quoteKey renders key for error messages.
func quoteKey(key any) string {
	if s, ok := key.(string); ok {
		return quote(s)
	}

	return Format(key)
}
