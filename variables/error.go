package variables

import (
	"errors"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/sahilm/fuzzy"
)

// Predefined errors (sentinel values).
//
// Every error returned by this package matches [ErrData] and exactly one of
// the more specific sentinels when tested with [errors.Is].
var (
	ErrData             = NewError("invalid data")
	ErrName             = NewError("invalid variable name")
	ErrVariableNotFound = NewError("variable not found")
	ErrIndex            = NewError("invalid list index")
	ErrKey              = NewError("dictionary key not found")
	ErrExpression       = NewError("resolving variable failed")
	ErrVariableType     = NewError("invalid variable type")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	attrs []slog.Attr // Attributes for structured logging
	kind  *Error      // Sentinel this error was derived from
}

// NewError creates a new Error with a message.
// The returned value acts as its own sentinel.
func NewError(msg string) *Error {
	e := &Error{msg: msg}
	e.kind = e

	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is [ErrData] or the sentinel e was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t == ErrData || (e.kind != nil && t == e.kind)
}

// Attrs returns a copy of the structured attributes attached to e.
func (e *Error) Attrs() []slog.Attr {
	return append([]slog.Attr(nil), e.attrs...)
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		attrs: e.attrs, // Share attrs
		kind:  e.kind,
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
		kind:  e.kind,
	}
}

// maxRecommendations bounds the number of similar names listed when a
// variable is not found.
const maxRecommendations = 3

// notFound builds the error for an undefined variable, listing stored names
// that resemble it.
func (s *Store) notFound(name string) *Error {
	err := ErrVariableNotFound.With(slog.String("name", name))

	similar := s.similar(name)
	if len(similar) == 0 {
		return err.Wrap(errors.New(name))
	}

	return err.
		With(slog.Any("similar", similar)).
		Wrap(errors.New(name + " (did you mean " + strings.Join(similar, ", ") + "?)"))
}

// similar returns the decorated names of stored variables that fuzzy-match
// the normalized body of name, best match first.
func (s *Store) similar(name string) []string {
	if len(s.data) == 0 || len(name) < 4 {
		return nil
	}

	keys := slices.Sorted(maps.Keys(s.data))

	matches := fuzzy.Find(Normalize(name[2:len(name)-1]), keys)

	out := make([]string, 0, maxRecommendations)
	for _, m := range matches {
		if len(out) == maxRecommendations {
			break
		}

		out = append(out, s.data[keys[m.Index]].name)
	}

	return out
}

// nameError reports a string that is not a valid variable name.
func nameError(name, reason string) *Error {
	return ErrName.
		With(slog.String("name", name)).
		Wrap(errors.New(reason))
}
