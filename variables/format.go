package variables

import (
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// Format returns the text substituted for a resolved value inside a string.
//
// Strings are returned verbatim. Other values use a literal-like notation:
// None, True and False for nil and booleans, decimal integers, floats that
// always carry a fraction or exponent (2.0, 1e+16), lists as ['a', 1] and
// dictionaries as {'k': 'v'} with keys ordered by their text. Values that
// implement [fmt.Stringer] or error render with that method.
func Format(v any) string {
	if s, ok := v.(string); ok {
		return s
	}

	var b strings.Builder

	writeValue(&b, v, false)

	return b.String()
}

// writeValue renders v into b. Nested strings are quoted.
func writeValue(b *strings.Builder, v any, quoted bool) {
	switch v := v.(type) {
	case nil:
		b.WriteString("None")

		return

	case fmt.Stringer:
		b.WriteString(v.String())

		return

	case error:
		b.WriteString(v.Error())

		return
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			b.WriteString("None")

			return
		}

		writeValue(b, rv.Elem().Interface(), quoted)

	case reflect.String:
		if quoted {
			b.WriteString(quote(rv.String()))
		} else {
			b.WriteString(rv.String())
		}

	case reflect.Bool:
		if rv.Bool() {
			b.WriteString("True")
		} else {
			b.WriteString("False")
		}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		b.WriteString(strconv.FormatInt(rv.Int(), 10))

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Uintptr:
		b.WriteString(strconv.FormatUint(rv.Uint(), 10))

	case reflect.Float32:
		b.WriteString(formatFloat(rv.Float(), 32))

	case reflect.Float64:
		b.WriteString(formatFloat(rv.Float(), 64))

	case reflect.Slice, reflect.Array:
		b.WriteByte('[')

		for i := range rv.Len() {
			if i > 0 {
				b.WriteString(", ")
			}

			writeValue(b, rv.Index(i).Interface(), true)
		}

		b.WriteByte(']')

	case reflect.Map:
		type pair struct{ key, val string }

		pairs := make([]pair, 0, rv.Len())

		for iter := rv.MapRange(); iter.Next(); {
			var k, e strings.Builder

			writeValue(&k, iter.Key().Interface(), true)
			writeValue(&e, iter.Value().Interface(), true)

			pairs = append(pairs, pair{k.String(), e.String()})
		}

		slices.SortFunc(pairs, func(a, b pair) int { return strings.Compare(a.key, b.key) })

		b.WriteByte('{')

		for i, p := range pairs {
			if i > 0 {
				b.WriteString(", ")
			}

			b.WriteString(p.key)
			b.WriteString(": ")
			b.WriteString(p.val)
		}

		b.WriteByte('}')

	default:
		fmt.Fprint(b, v)
	}
}

// formatFloat renders f in its shortest round-trip form, switching to
// exponent notation outside [1e-4, 1e16).
func formatFloat(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	e := strconv.FormatFloat(f, 'e', -1, bits)

	exp, _ := strconv.Atoi(e[strings.LastIndexByte(e, 'e')+1:])
	if f != 0 && (exp < -4 || exp >= 16) {
		return e
	}

	s := strconv.FormatFloat(f, 'f', -1, bits)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}

	return s
}

// quote renders s as a single-quoted literal, or double-quoted when s
// contains single quotes but no double quotes.
func quote(s string) string {
	q := '\''
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		q = '"'
	}

	var b strings.Builder

	b.WriteRune(q)

	for _, r := range s {
		switch {
		case r == q || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&b, `\x%02x`, r)
		default:
			b.WriteRune(r)
		}
	}

	b.WriteRune(q)

	return b.String()
}
