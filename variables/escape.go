package variables

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Unescape removes backslash escapes from literal text.
//
// The sequences \n, \r and \t become control characters, \xhh, \uhhhh and
// \Uhhhhhhhh become the code point they encode, and any other escaped
// character, including a backslash, stands for itself. A trailing lone
// backslash is kept.
func Unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder

	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			b.WriteByte(s[i])

			continue
		}

		i++

		switch c := s[i]; c {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'x', 'u', 'U':
			width := map[byte]int{'x': 2, 'u': 4, 'U': 8}[c]
			if r, ok := hexRune(s[i+1:], width); ok {
				b.WriteRune(r)

				i += width
			} else {
				b.WriteByte(c)
			}
		default:
			b.WriteByte(c)
		}
	}

	return b.String()
}

// unescapeReferences removes only the backslashes that escape reference
// syntax: a run of backslashes before a sigil and '{' loses one backslash
// when its length is odd. All other text is kept verbatim.
func unescapeReferences(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder

	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			b.WriteByte(s[i])

			continue
		}

		j := i
		for j < len(s) && s[j] == '\\' {
			j++
		}

		run := j - i
		if run%2 == 1 && j < len(s) && startsReference(s, j) {
			run--
		}

		b.WriteString(strings.Repeat(`\`, run))

		i = j - 1
	}

	return b.String()
}

// hexRune decodes the code point spelled by the first width hex digits of s.
func hexRune(s string, width int) (rune, bool) {
	if len(s) < width {
		return 0, false
	}

	n, err := strconv.ParseUint(s[:width], 16, 32)
	if err != nil || !utf8.ValidRune(rune(n)) {
		return 0, false
	}

	return rune(n), true
}
