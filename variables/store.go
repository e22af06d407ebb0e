package variables

import (
	"iter"
	"log/slog"
	"maps"
	"reflect"
	"slices"

	"github.com/ardnew/varz/log"
)

// entry is one stored variable.
type entry struct {
	value any
	name  string // name as given to Set
	kind  Kind
}

// Store holds the variables of one execution scope.
//
// Names are matched after [Normalize], so ${var}, @{var} and ${ V a R }
// all address the same entry. A Store is not safe for concurrent use;
// nested scopes should operate on a [Store.Copy].
type Store struct {
	data   map[string]entry
	logger log.Logger
}

// Option configures a [Store].
type Option func(*Store)

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New returns an empty Store.
func New(opts ...Option) *Store {
	s := &Store{data: make(map[string]entry)}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Set stores value under name, replacing any variable with the same
// normalized name. The sigil of name is recorded as the variable's kind but
// value is stored as given.
func (s *Store) Set(name string, value any) error {
	if err := Validate(name); err != nil {
		return err
	}

	kind, _ := kindOf(name[0])
	s.data[Normalize(name[2:len(name)-1])] = entry{
		value: value,
		name:  name,
		kind:  kind,
	}

	s.logger.Trace(
		"set variable",
		slog.String("name", name),
		slog.String("kind", kind.String()),
	)

	return nil
}

// Get resolves name, which must be exactly one reference, and returns its
// value. Stored values are returned as-is, without resolving references
// they may contain.
func (s *Store) Get(name string) (any, error) {
	ref, ok := Find(name, 0)
	if !ok || ref.Start != 0 || ref.End != len(name) {
		return nil, nameError(name, "not a variable reference")
	}

	return s.resolve(ref)
}

// Has reports whether a variable is stored under name.
func (s *Store) Has(name string) bool {
	if Validate(name) != nil {
		return false
	}

	_, ok := s.data[Normalize(name[2:len(name)-1])]

	return ok
}

// Delete removes the variable stored under name, if any.
func (s *Store) Delete(name string) error {
	if err := Validate(name); err != nil {
		return err
	}

	delete(s.data, Normalize(name[2:len(name)-1]))

	s.logger.Trace("delete variable", slog.String("name", name))

	return nil
}

// Len returns the number of stored variables.
func (s *Store) Len() int { return len(s.data) }

// Names returns the names of all stored variables, as given to [Store.Set],
// ordered by their normalized form.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.data))

	for _, key := range slices.Sorted(maps.Keys(s.data)) {
		names = append(names, s.data[key].name)
	}

	return names
}

// All returns an iterator over stored names and values in [Store.Names]
// order.
func (s *Store) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for _, key := range slices.Sorted(maps.Keys(s.data)) {
			if e := s.data[key]; !yield(e.name, e.value) {
				return
			}
		}
	}
}

// Clear removes all variables.
func (s *Store) Clear() {
	clear(s.data)

	s.logger.Trace("clear variables")
}

// Copy returns a Store with the same variables and logger.
//
// Top-level lists and maps are copied so that modifying them in one store
// does not affect the other. Elements and other values are shared.
func (s *Store) Copy() *Store {
	c := &Store{
		data:   make(map[string]entry, len(s.data)),
		logger: s.logger,
	}

	for key, e := range s.data {
		e.value = shallowCopy(e.value)
		c.data[key] = e
	}

	s.logger.Trace("copy variables", slog.Int("count", len(s.data)))

	return c
}

// shallowCopy duplicates the backing storage of slices and maps.
func shallowCopy(v any) any {
	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() {
			return v
		}

		out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		reflect.Copy(out, rv)

		return out.Interface()

	case reflect.Map:
		if rv.IsNil() {
			return v
		}

		out := reflect.MakeMapWithSize(rv.Type(), rv.Len())
		for iter := rv.MapRange(); iter.Next(); {
			out.SetMapIndex(iter.Key(), iter.Value())
		}

		return out.Interface()

	default:
		return v
	}
}
