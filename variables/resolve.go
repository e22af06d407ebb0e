package variables

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

// extendedPattern splits a body into the base variable name and the
// expression that follows it, at the first character that cannot appear in
// a name.
var extendedPattern = regexp.MustCompile(`(?s)^(.+?)([^\s\p{L}\p{N}\p{M}_].+)$`)

// splitExtended returns the base name and trailing expression of body.
func splitExtended(body string) (base, ext string, ok bool) {
	m := extendedPattern.FindStringSubmatch(body)
	if m == nil {
		return "", "", false
	}

	return m[1], m[2], true
}

// resolve returns the value ref denotes.
func (s *Store) resolve(ref Reference) (any, error) {
	body := ref.Body

	if hasInternal(body) {
		inner, err := s.replaceInternal(body)
		if err != nil {
			return nil, err
		}

		body = inner
	}

	value, err := s.lookup(ref.Kind, body)
	if err != nil {
		return nil, err
	}

	if len(ref.Items) > 0 {
		value, err = s.access(ref.Kind.decorate(body), value, ref.Items)
		if err != nil {
			return nil, err
		}
	}

	s.logger.Trace(
		"resolve variable",
		slog.String("reference", ref.String()),
		slog.String("form", ref.Form().String()),
	)

	return value, nil
}

// lookup finds the variable named by kind and body without any access
// chain. Stored variables take precedence over built-in literals, which take
// precedence over extended expressions.
func (s *Store) lookup(kind Kind, body string) (any, error) {
	name := kind.decorate(body)

	if e, ok := s.data[Normalize(body)]; ok {
		return checkKind(kind, name, e.value)
	}

	if value, ok := literal(kind, body); ok {
		return value, nil
	}

	if kind == Scalar {
		if base, ext, ok := splitExtended(body); ok {
			return s.extended(name, base, ext)
		}
	}

	return nil, s.notFound(name)
}

// checkKind verifies value may be used with the sigil of kind.
func checkKind(kind Kind, name string, value any) (any, error) {
	switch {
	case kind == List && !isSequence(value):
		return nil, typeError(name, value, "list")
	case kind == Dict && !isMapping(value):
		return nil, typeError(name, value, "dictionary")
	}

	return value, nil
}

// extended evaluates ext against the scalar variable base.
func (s *Store) extended(name, base, ext string) (any, error) {
	value, err := s.lookup(Scalar, base)
	if err != nil {
		if errors.Is(err, ErrVariableNotFound) {
			return nil, s.notFound(name)
		}

		return nil, err
	}

	out, err := evaluate(value, ext)
	if err != nil {
		return nil, ErrExpression.
			With(
				slog.String("name", name),
				slog.String("expression", ext),
			).
			Wrap(fmt.Errorf("%s: %w", name, err))
	}

	s.logger.Trace(
		"evaluate expression",
		slog.String("base", Scalar.decorate(base)),
		slog.String("expression", ext),
	)

	return out, nil
}

// access applies each [item] of an access chain to value. Items may
// contain references, which are resolved first.
func (s *Store) access(name string, value any, items []string) (any, error) {
	for _, item := range items {
		key, err := s.ReplaceScalar(item)
		if err != nil {
			return nil, err
		}

		switch {
		case isSequence(value):
			value, err = sequenceItem(name, value, key)
		case isMapping(value):
			value, err = mappingItem(name, value, key)
		default:
			err = typeError(name, value, "subscriptable")
		}

		if err != nil {
			return nil, err
		}

		name += "[" + item + "]"
	}

	return value, nil
}

// sequenceItem returns the item or slice of seq selected by key, an integer
// index or slice text of the form start:end.
func sequenceItem(name string, seq, key any) (any, error) {
	if text, ok := key.(string); ok && strings.Contains(text, ":") {
		start, end, ok := parseSlice(text)
		if !ok {
			return nil, indexError(name, seq, key, errBadIndex)
		}

		return sequenceSlice(seq, start, end), nil
	}

	i, ok := toIndex(key)
	if !ok {
		return nil, indexError(name, seq, key, errBadIndex)
	}

	out, err := sequenceIndex(seq, i)
	if err != nil {
		return nil, indexError(name, seq, key, err)
	}

	return out, nil
}

// parseSlice parses start:end, where either bound may be omitted.
func parseSlice(text string) (start, end *int, ok bool) {
	lo, hi, found := strings.Cut(text, ":")
	if !found || strings.Contains(hi, ":") {
		return nil, nil, false
	}

	bound := func(s string) (*int, bool) {
		if s = strings.TrimSpace(s); s == "" {
			return nil, true
		}

		i, err := strconv.Atoi(s)
		if err != nil {
			return nil, false
		}

		return &i, true
	}

	if start, ok = bound(lo); !ok {
		return nil, nil, false
	}

	if end, ok = bound(hi); !ok {
		return nil, nil, false
	}

	return start, end, true
}

// mappingItem returns the value stored under key in m.
func mappingItem(name string, m, key any) (any, error) {
	out, ok := mapIndex(m, key)
	if !ok {
		return nil, ErrKey.
			With(slog.String("name", name), slog.String("key", quoteKey(key))).
			Wrap(fmt.Errorf("%s has no key %s", name, quoteKey(key)))
	}

	return out, nil
}

func indexError(name string, seq, key any, err error) *Error {
	return ErrIndex.
		With(
			slog.String("name", name),
			slog.String("index", quoteKey(key)),
			slog.Int("length", length(seq)),
		).
		Wrap(fmt.Errorf("%s[%s]: %w", name, Format(key), err))
}

func typeError(name string, value any, want string) *Error {
	return ErrVariableType.
		With(slog.String("name", name), slog.String("type", fmt.Sprintf("%T", value))).
		Wrap(fmt.Errorf("value of %s is not %s but %T", name, article(want), value))
}

// article prefixes word with its indefinite article.
func article(word string) string {
	if strings.ContainsRune("aeiou", rune(word[0])) {
		return "an " + word
	}

	return "a " + word
}
