package variables

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	errNoMethod = errors.New("no such method")
	errArgs     = errors.New("invalid arguments")
)

// invoke calls method on v with args. Values implementing [Caller] handle
// their own methods; strings support a set of common text methods; other
// values have their exported Go methods called by reflection.
func invoke(v any, method string, args []any) (any, error) {
	if c, ok := v.(Caller); ok {
		return c.Call(method, args...)
	}

	if s, ok := v.(string); ok {
		fn, ok := stringMethods[method]
		if !ok {
			return nil, fmt.Errorf("%w: str.%s", errNoMethod, method)
		}

		return fn(s, args)
	}

	return callMethod(v, method, args)
}

type stringMethod func(s string, args []any) (any, error)

var stringMethods = map[string]stringMethod{
	"replace": func(s string, args []any) (any, error) {
		if err := arity("replace", args, 2, 3); err != nil {
			return nil, err
		}

		old, err := stringArg("replace", args, 0)
		if err != nil {
			return nil, err
		}

		repl, err := stringArg("replace", args, 1)
		if err != nil {
			return nil, err
		}

		n := -1
		if len(args) == 3 {
			if n, err = intArg("replace", args, 2); err != nil {
				return nil, err
			}
		}

		return strings.Replace(s, old, repl, n), nil
	},

	"upper": func(s string, args []any) (any, error) {
		return strings.ToUpper(s), arity("upper", args, 0, 0)
	},

	"lower": func(s string, args []any) (any, error) {
		return strings.ToLower(s), arity("lower", args, 0, 0)
	},

	"strip": trimMethod("strip", strings.Trim, strings.TrimFunc),

	"lstrip": trimMethod("lstrip", strings.TrimLeft, strings.TrimLeftFunc),

	"rstrip": trimMethod("rstrip", strings.TrimRight, strings.TrimRightFunc),

	"split": func(s string, args []any) (any, error) {
		if err := arity("split", args, 0, 2); err != nil {
			return nil, err
		}

		limit := -1
		if len(args) == 2 {
			var err error
			if limit, err = intArg("split", args, 1); err != nil {
				return nil, err
			}
		}

		if len(args) == 0 || args[0] == nil {
			return toAny(strings.Fields(s)), nil
		}

		sep, err := stringArg("split", args, 0)
		if err != nil {
			return nil, err
		}

		if sep == "" {
			return nil, fmt.Errorf("%w: split: empty separator", errArgs)
		}

		if limit < 0 {
			return toAny(strings.Split(s, sep)), nil
		}

		return toAny(strings.SplitN(s, sep, limit+1)), nil
	},

	"startswith": func(s string, args []any) (any, error) {
		prefix, err := onlyString("startswith", args)

		return err == nil && strings.HasPrefix(s, prefix), err
	},

	"endswith": func(s string, args []any) (any, error) {
		suffix, err := onlyString("endswith", args)

		return err == nil && strings.HasSuffix(s, suffix), err
	},

	"find": func(s string, args []any) (any, error) {
		sub, err := onlyString("find", args)
		if err != nil {
			return nil, err
		}

		i := strings.Index(s, sub)
		if i < 0 {
			return -1, nil
		}

		return utf8.RuneCountInString(s[:i]), nil
	},

	"count": func(s string, args []any) (any, error) {
		sub, err := onlyString("count", args)
		if err != nil {
			return nil, err
		}

		return strings.Count(s, sub), nil
	},

	"join": func(s string, args []any) (any, error) {
		if err := arity("join", args, 1, 1); err != nil {
			return nil, err
		}

		if !isSequence(args[0]) {
			return nil, fmt.Errorf("%w: join: %T is not a list", errArgs, args[0])
		}

		items := elements(args[0])
		parts := make([]string, len(items))

		for i, item := range items {
			text, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: join: item %d is %T, not a string", errArgs, i, item)
			}

			parts[i] = text
		}

		return strings.Join(parts, s), nil
	},
}

// trimMethod builds the strip family. Without arguments, whitespace is
// removed; otherwise the characters of the first argument are.
func trimMethod(
	name string,
	cutset func(string, string) string,
	space func(string, func(rune) bool) string,
) stringMethod {
	return func(s string, args []any) (any, error) {
		if err := arity(name, args, 0, 1); err != nil {
			return nil, err
		}

		if len(args) == 0 || args[0] == nil {
			return space(s, unicode.IsSpace), nil
		}

		chars, err := stringArg(name, args, 0)
		if err != nil {
			return nil, err
		}

		return cutset(s, chars), nil
	}
}

func arity(method string, args []any, lo, hi int) error {
	if len(args) < lo || len(args) > hi {
		if lo == hi {
			return fmt.Errorf("%w: %s takes %d arguments, got %d", errArgs, method, lo, len(args))
		}

		return fmt.Errorf("%w: %s takes %d to %d arguments, got %d",
			errArgs, method, lo, hi, len(args))
	}

	return nil
}

func onlyString(method string, args []any) (string, error) {
	if err := arity(method, args, 1, 1); err != nil {
		return "", err
	}

	return stringArg(method, args, 0)
}

func stringArg(method string, args []any, i int) (string, error) {
	s, ok := args[i].(string)
	if !ok {
		return "", fmt.Errorf("%w: %s argument %d must be a string, not %T",
			errArgs, method, i+1, args[i])
	}

	return s, nil
}

func intArg(method string, args []any, i int) (int, error) {
	if _, ok := args[i].(string); !ok {
		if n, ok := toIndex(args[i]); ok {
			return n, nil
		}
	}

	return 0, fmt.Errorf("%w: %s argument %d must be an integer, not %T",
		errArgs, method, i+1, args[i])
}

func toAny(items []string) []any {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = item
	}

	return out
}

var errorType = reflect.TypeFor[error]()

// callMethod calls the exported method of v whose name matches method with
// its first letter capitalized.
func callMethod(v any, method string, args []any) (any, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil, fmt.Errorf("%w: None.%s", errNoMethod, method)
	}

	m := rv.MethodByName(exported(method))
	if !m.IsValid() {
		return nil, fmt.Errorf("%w: %T.%s", errNoMethod, v, method)
	}

	mt := m.Type()
	if mt.IsVariadic() || mt.NumIn() != len(args) {
		return nil, fmt.Errorf("%w: %T.%s takes %d arguments, got %d",
			errArgs, v, method, mt.NumIn(), len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		av, err := convertArg(arg, mt.In(i))
		if err != nil {
			return nil, fmt.Errorf("%T.%s argument %d: %w", v, method, i+1, err)
		}

		in[i] = av
	}

	out := m.Call(in)

	if n := len(out); n > 0 && mt.Out(n-1) == errorType {
		if err, _ := out[n-1].Interface().(error); err != nil {
			return nil, err
		}

		out = out[:n-1]
	}

	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		return out[0].Interface(), nil
	default:
		items := make([]any, len(out))
		for i, o := range out {
			items[i] = o.Interface()
		}

		return items, nil
	}
}

// convertArg adapts arg to parameter type t, converting between numeric
// kinds when needed.
func convertArg(arg any, t reflect.Type) (reflect.Value, error) {
	if arg == nil {
		switch t.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(t), nil
		default:
			return reflect.Value{}, fmt.Errorf("%w: None is not %s", errArgs, t)
		}
	}

	av := reflect.ValueOf(arg)
	if av.Type().AssignableTo(t) {
		return av, nil
	}

	if _, ok := toFloat(arg); ok && av.CanConvert(t) {
		if _, ok := toFloat(reflect.Zero(t).Interface()); ok {
			return av.Convert(t), nil
		}
	}

	return reflect.Value{}, fmt.Errorf("%w: %T is not %s", errArgs, arg, t)
}

func exported(name string) string {
	r, size := utf8.DecodeRuneInString(name)

	return string(unicode.ToUpper(r)) + name[size:]
}
