package variables

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// IsName reports whether s is a valid whole variable name for [Store.Set].
func IsName(s string) bool { return Validate(s) == nil }

// Validate returns an [ErrName] error unless s is a single variable name,
// a sigil and brace-enclosed body with nothing before or after it.
//
// Bodies must contain more than whitespace and must not contain braces, so names with nested
// references (e.g. ${a${b}}) are rejected. Whitespace inside the braces is
// allowed and ignored by lookups.
func Validate(s string) error {
	if len(s) < 4 {
		return nameError(s, "too short")
	}

	if _, ok := kindOf(s[0]); !ok {
		return nameError(s, "must start with $, @ or &")
	}

	if s[1] != '{' || s[len(s)-1] != '}' {
		return nameError(s, "must be enclosed in braces")
	}

	body := s[2 : len(s)-1]
	if strings.ContainsAny(body, "{}") {
		return nameError(s, "unbalanced braces")
	}

	if escaped(s, len(s)-1) {
		return nameError(s, "closing brace is escaped")
	}

	if Normalize(body) == "" {
		return nameError(s, "empty name")
	}

	return nil
}

// Normalize returns the lookup key of a variable body: case folded with all
// whitespace removed.
func Normalize(body string) string {
	return strings.Map(
		func(r rune) rune {
			if unicode.IsSpace(r) {
				return -1
			}

			return r
		},
		cases.Fold().String(body),
	)
}
