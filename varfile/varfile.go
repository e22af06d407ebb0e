package varfile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"reflect"

	"github.com/goccy/go-yaml"
	"github.com/klauspost/readahead"

	"github.com/ardnew/varz/log"
	"github.com/ardnew/varz/variables"
)

// DefaultResolve is the default setting for resolving references in values
// while loading.
const DefaultResolve = true

type loader struct {
	logger  log.Logger
	source  string
	resolve bool
}

// Option configures [Load] and [LoadFile].
type Option func(*loader)

// WithResolve returns an option that controls whether references in values
// are resolved against the variables stored before each assignment.
// Unresolved values are stored verbatim.
func WithResolve(enable bool) Option {
	return func(l *loader) { l.resolve = enable }
}

// WithLogger sets the logger used for trace-level reporting of each
// assignment.
func WithLogger(logger log.Logger) Option {
	return func(l *loader) { l.logger = logger }
}

// WithSource names the input in log records and error attributes.
func WithSource(name string) Option {
	return func(l *loader) { l.source = name }
}

func makeLoader(opts ...Option) loader {
	l := loader{resolve: DefaultResolve, source: "reader"}

	for _, opt := range opts {
		if opt != nil {
			opt(&l)
		}
	}

	return l
}

// LoadFile opens the file at path and loads it with [Load].
func LoadFile(
	ctx context.Context,
	path string,
	store *variables.Store,
	opts ...Option,
) error {
	f, err := os.Open(path)
	if err != nil {
		return ErrRead.Wrap(err).With(slog.String("file", path))
	}
	defer f.Close()

	return Load(ctx, f, store, append([]Option{WithSource(path)}, opts...)...)
}

// Load decodes a YAML mapping from r and assigns each of its entries to
// store, in document order.
//
// Keys are variable names. Decorated keys (${x}, @{x}, &{x}) are used as
// given; a bare key x becomes @{x} for a sequence value, &{x} for a mapping
// value, and ${x} otherwise. List variables must hold sequences and
// dictionary variables must hold mappings.
//
// Mapping keys are converted to text and integers are decoded as int.
// An empty document assigns nothing.
func Load(
	ctx context.Context,
	r io.Reader,
	store *variables.Store,
	opts ...Option,
) error {
	l := makeLoader(opts...)

	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return ErrRead.Wrap(err).With(slog.String("file", l.source))
	}

	l.logger.TraceContext(
		ctx,
		"read variable file",
		slog.String("file", l.source),
		slog.Int("bytes", len(data)),
	)

	var doc yaml.MapSlice
	if err := yaml.UnmarshalContext(ctx, data, &doc, yaml.UseOrderedMap()); err != nil {
		return ErrDecode.Wrap(err).With(slog.String("file", l.source))
	}

	for _, item := range doc {
		if err := ctx.Err(); err != nil {
			return err
		}

		value := plain(item.Value)
		name := decorate(fmt.Sprint(item.Key), value)

		if err := l.assign(ctx, store, name, value); err != nil {
			return ErrAssign.Wrap(err).With(
				slog.String("file", l.source),
				slog.String("name", name),
			)
		}
	}

	return nil
}

func (l loader) assign(
	ctx context.Context,
	store *variables.Store,
	name string,
	value any,
) error {
	var err error

	if l.resolve {
		if value, err = resolve(store, value); err != nil {
			return err
		}
	}

	if err := checkKind(name, value); err != nil {
		return err
	}

	if err := store.Set(name, value); err != nil {
		return err
	}

	l.logger.TraceContext(
		ctx,
		"assign variable",
		slog.String("file", l.source),
		slog.String("name", name),
		slog.Bool("resolved", l.resolve),
	)

	return nil
}

// resolve replaces the references in value. Strings are resolved as
// scalars, sequences as lists, and mappings value by value.
func resolve(store *variables.Store, value any) (any, error) {
	switch v := value.(type) {
	case string:
		return store.ReplaceScalar(v)

	case []any:
		return store.ReplaceList(v)

	case map[string]any:
		out := make(map[string]any, len(v))

		for key, item := range v {
			resolved, err := store.ReplaceScalar(item)
			if err != nil {
				return nil, err
			}

			out[key] = resolved
		}

		return out, nil
	}

	return value, nil
}

var (
	errNotList = errors.New("list variable value is not a sequence")
	errNotDict = errors.New("dictionary variable value is not a mapping")
)

func checkKind(name string, value any) error {
	if len(name) == 0 {
		return nil
	}

	rv := reflect.ValueOf(value)

	switch variables.Kind(name[0]) {
	case variables.List:
		if !rv.IsValid() ||
			(rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
			return errNotList
		}

	case variables.Dict:
		if !rv.IsValid() || rv.Kind() != reflect.Map {
			return errNotDict
		}
	}

	return nil
}

// decorate returns key if it is already a decorated name, or key wrapped in
// the sigil matching value otherwise.
func decorate(key string, value any) string {
	if len(key) >= 3 && key[1] == '{' && key[len(key)-1] == '}' {
		switch variables.Kind(key[0]) {
		case variables.Scalar, variables.List, variables.Dict:
			return key
		}
	}

	kind := variables.Scalar

	switch value.(type) {
	case []any:
		kind = variables.List
	case map[string]any:
		kind = variables.Dict
	}

	return string(kind.Sigil()) + "{" + key + "}"
}

// plain converts decoded YAML into the value types of the variables
// package: ordered mappings become map[string]any, and integers become int
// when they fit.
func plain(v any) any {
	switch v := v.(type) {
	case yaml.MapSlice:
		m := make(map[string]any, len(v))
		for _, item := range v {
			m[fmt.Sprint(item.Key)] = plain(item.Value)
		}

		return m

	case map[string]any:
		m := make(map[string]any, len(v))
		for key, item := range v {
			m[key] = plain(item)
		}

		return m

	case []any:
		s := make([]any, len(v))
		for i, item := range v {
			s[i] = plain(item)
		}

		return s

	case uint64:
		if v <= uint64(^uint(0)>>1) {
			return int(v)
		}

	case int64:
		if int64(int(v)) == v {
			return int(v)
		}
	}

	return v
}
