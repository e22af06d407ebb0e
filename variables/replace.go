package variables

import "strings"

// ReplaceScalar resolves the references in item.
//
// When item is a single reference with no surrounding text, the value it
// denotes is returned with its type intact. Otherwise the values of all
// references are rendered with [Format] and joined with the literal text,
// from which backslash escapes are removed. Values that are not strings are
// returned unchanged.
func (s *Store) ReplaceScalar(item any) (any, error) {
	text, ok := item.(string)
	if !ok {
		return item, nil
	}

	ref, ok := Find(text, 0)
	if !ok {
		return Unescape(text), nil
	}

	if ref.Start == 0 && ref.End == len(text) {
		return s.resolve(ref)
	}

	return s.ReplaceString(text)
}

// ReplaceString resolves the references in text like [Store.ReplaceScalar]
// but always returns a string.
func (s *Store) ReplaceString(text string) (string, error) {
	return s.replaceText(text, Unescape)
}

// replaceInternal resolves the references nested in a reference body. The
// text around them keeps its escapes, except those of reference syntax, so
// string literals in an expression body mean the same with or without
// nested references.
func (s *Store) replaceInternal(body string) (string, error) {
	return s.replaceText(body, unescapeReferences)
}

// replaceText joins the formatted values of the references in text with the
// literal text between them, passed through unescape.
func (s *Store) replaceText(text string, unescape func(string) string) (string, error) {
	var b strings.Builder

	pos := 0

	for ref := range Scan(text) {
		b.WriteString(unescape(text[pos:ref.Start]))

		value, err := s.resolve(ref)
		if err != nil {
			return "", err
		}

		b.WriteString(Format(value))

		pos = ref.End
	}

	b.WriteString(unescape(text[pos:]))

	return b.String(), nil
}

// ReplaceList resolves the references in each of items.
//
// An item that is exactly one list reference, such as @{name}, is replaced
// by the elements of the list it denotes. Every other item is resolved with
// [Store.ReplaceScalar], yielding one value.
func (s *Store) ReplaceList(items []any) ([]any, error) {
	out := make([]any, 0, len(items))

	for _, item := range items {
		if ref, ok := listReference(item); ok {
			value, err := s.resolve(ref)
			if err != nil {
				return nil, err
			}

			out = append(out, elements(value)...)

			continue
		}

		value, err := s.ReplaceScalar(item)
		if err != nil {
			return nil, err
		}

		out = append(out, value)
	}

	return out, nil
}

// ReplaceStrings is [Store.ReplaceList] for string items.
func (s *Store) ReplaceStrings(items ...string) ([]any, error) {
	in := make([]any, len(items))
	for i, item := range items {
		in[i] = item
	}

	return s.ReplaceList(in)
}

// listReference reports whether item is a string consisting of one list
// reference without an access chain.
func listReference(item any) (Reference, bool) {
	text, ok := item.(string)
	if !ok {
		return Reference{}, false
	}

	ref, ok := Find(text, 0)
	if !ok || ref.Kind != List || len(ref.Items) > 0 ||
		ref.Start != 0 || ref.End != len(text) {
		return Reference{}, false
	}

	return ref, true
}
