package variables

import (
	"iter"
	"strings"
)

const tripleQuote = `"""`

// Scan returns the top-level references of s in order.
func Scan(s string) iter.Seq[Reference] {
	return func(yield func(Reference) bool) {
		for pos := 0; ; {
			ref, ok := Find(s, pos)
			if !ok || !yield(ref) {
				return
			}

			pos = ref.End
		}
	}
}

// Find returns the first reference in s that starts at or after offset from.
//
// A reference starts at an unescaped sigil followed by '{' and ends at the
// brace that balances it. Nested references count toward the balance, and in
// scalar references so do triple-quoted spans, whose contents are skipped.
// A list or dict reference also takes any [item] steps that immediately
// follow it. A candidate that never closes is literal text.
func Find(s string, from int) (Reference, bool) {
	for i := max(from, 0); i+1 < len(s); i++ {
		kind, ok := kindOf(s[i])
		if !ok || s[i+1] != '{' || escaped(s, i) {
			continue
		}

		end, ok := closeBrace(s, i+2, kind)
		if !ok {
			continue
		}

		ref := Reference{
			Kind:  kind,
			Start: i,
			End:   end + 1,
			Body:  s[i+2 : end],
		}

		if kind != Scalar {
			ref.Items, ref.End = accessChain(s, ref.End)
		}

		return ref, true
	}

	return Reference{}, false
}

// escaped reports whether s[i] is preceded by an odd number of backslashes.
func escaped(s string, i int) bool {
	n := 0
	for j := i - 1; j >= 0 && s[j] == '\\'; j-- {
		n++
	}

	return n%2 == 1
}

// startsReference reports whether s[i:] begins with a sigil and '{'.
func startsReference(s string, i int) bool {
	_, ok := kindOf(s[i])

	return ok && i+1 < len(s) && s[i+1] == '{'
}

// closeBrace returns the offset of the '}' closing a reference of the given
// kind whose body starts at pos.
func closeBrace(s string, pos int, kind Kind) (int, bool) {
	depth := 1

	for i := pos; i < len(s); i++ {
		if kind == Scalar && strings.HasPrefix(s[i:], tripleQuote) {
			if j := strings.Index(s[i+len(tripleQuote):], tripleQuote); j >= 0 {
				i += 2*len(tripleQuote) + j - 1

				continue
			}
		}

		switch {
		case s[i] == '\\':
			i++

		case s[i] == '}':
			depth--
			if depth == 0 {
				return i, true
			}

		case startsReference(s, i):
			depth++
			i++
		}
	}

	return 0, false
}

// accessChain collects the [item] steps starting at pos and returns them
// with the offset following the last one.
func accessChain(s string, pos int) ([]string, int) {
	var items []string

	for pos < len(s) && s[pos] == '[' {
		end, ok := closeBracket(s, pos+1)
		if !ok {
			break
		}

		items = append(items, s[pos+1:end])
		pos = end + 1
	}

	return items, pos
}

// closeBracket returns the offset of the ']' closing an item that starts at
// pos. Nested references are skipped whole.
func closeBracket(s string, pos int) (int, bool) {
	depth := 1

	for i := pos; i < len(s); i++ {
		switch {
		case s[i] == '\\':
			i++

		case startsReference(s, i):
			kind, _ := kindOf(s[i])

			end, ok := closeBrace(s, i+2, kind)
			if !ok {
				return 0, false
			}

			i = end

		case s[i] == '[':
			depth++

		case s[i] == ']':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}

	return 0, false
}

// hasInternal reports whether body may contain nested references.
func hasInternal(body string) bool {
	for i := 0; i+1 < len(body); i++ {
		if startsReference(body, i) {
			return true
		}
	}

	return false
}
