package variables

import (
	"strconv"
	"strings"
)

// literal returns the value of a built-in variable that needs no storage:
// numbers, booleans, None and the EMPTY and SPACE constants.
func literal(kind Kind, body string) (any, bool) {
	key := Normalize(body)

	switch kind {
	case List:
		if key == "empty" {
			return []any{}, true
		}

	case Dict:
		if key == "empty" {
			return map[string]any{}, true
		}

	case Scalar:
		switch key {
		case "empty":
			return "", true
		case "space":
			return " ", true
		case "true":
			return true, true
		case "false":
			return false, true
		case "none", "null":
			return nil, true
		}

		return number(key)
	}

	return nil, false
}

// number parses s as an integer, optionally with a 0b, 0o or 0x prefix, or
// else as a float.
func number(s string) (any, bool) {
	for prefix, base := range map[string]int{"0b": 2, "0o": 8, "0x": 16} {
		if digits, ok := strings.CutPrefix(s, prefix); ok {
			n, err := strconv.ParseInt(digits, base, strconv.IntSize)
			if err != nil {
				return nil, false
			}

			return int(n), true
		}
	}

	if n, err := strconv.ParseInt(s, 10, strconv.IntSize); err == nil {
		return int(n), true
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, true
	}

	return nil, false
}
