package cmd

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/ardnew/varz/log"
	"github.com/ardnew/varz/varfile"
	"github.com/ardnew/varz/variables"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// Var returns the kong variable named id from the command context, or ""
// if it is undefined.
func Var(ctx context.Context, id string) string {
	if ktx := kongContextFrom(ctx); ktx != nil {
		return ktx.Model.Vars()[id]
	}

	return ""
}

// stdoutFrom returns the writer commands print results to.
func stdoutFrom(ctx context.Context) io.Writer {
	if ktx := kongContextFrom(ctx); ktx != nil && ktx.Stdout != nil {
		return ktx.Stdout
	}

	return os.Stdout
}

// StdinSource is the file name that denotes standard input.
const StdinSource = "-"

// Sources are the variable files and command-line assignments a Store is
// built from.
type Sources struct {
	// Files are variable file paths, deduplicated, with [StdinSource] last
	// if standard input was named.
	Files []string
	// Vars are NAME=VALUE assignments applied after all files.
	Vars []string
}

type sourcesKey struct{}

// WithSources returns a new context.Context containing the given sources.
func WithSources(ctx context.Context, s Sources) context.Context {
	return context.WithValue(ctx, sourcesKey{}, s)
}

// SourcesFrom returns the sources stored in ctx by [WithSources].
func SourcesFrom(ctx context.Context) Sources {
	s, _ := ctx.Value(sourcesKey{}).(Sources)

	return s
}

// NewSources deduplicates files by resolving symlinks and comparing
// device/inode pairs. All occurrences of [StdinSource] are replaced with a
// single one placed last so stdin is read after all regular files.
// Paths that cannot be resolved are kept so loading reports the error.
func NewSources(files, vars []string) Sources {
	s := Sources{Vars: vars}

	seen := make(map[fileKey]struct{})
	hasStdin := false

	stdinKey, stdinOK := statKey(os.Stdin.Stat())

	for _, path := range files {
		if path == StdinSource {
			hasStdin = true

			continue
		}

		resolved, key, ok := resolvePath(path)
		if !ok {
			s.Files = append(s.Files, path)

			continue
		}

		if stdinOK && key == stdinKey {
			hasStdin = true

			continue
		}

		if _, dup := seen[key]; dup {
			continue
		}

		seen[key] = struct{}{}
		s.Files = append(s.Files, resolved)
	}

	if hasStdin {
		s.Files = append(s.Files, StdinSource)
	}

	return s
}

// Store returns a new [variables.Store] with every file loaded and every
// assignment applied, in order.
func (s Sources) Store(ctx context.Context) (*variables.Store, error) {
	store := variables.New(variables.WithLogger(log.Default()))

	if err := s.Load(ctx, store); err != nil {
		return nil, err
	}

	return store, nil
}

// Load loads the sources into store.
func (s Sources) Load(ctx context.Context, store *variables.Store) error {
	opts := []varfile.Option{varfile.WithLogger(log.Default())}

	for _, path := range s.Files {
		var err error

		if path == StdinSource {
			err = loadStdin(ctx, store, opts...)
		} else {
			err = varfile.LoadFile(ctx, path, store, opts...)
		}

		if err != nil {
			return ErrLoad.Wrap(err).With(slog.String("file", path))
		}
	}

	for _, assignment := range s.Vars {
		if err := Assign(store, assignment); err != nil {
			return err
		}
	}

	log.DebugContext(ctx, "variables loaded",
		slog.Int("files", len(s.Files)),
		slog.Int("assignments", len(s.Vars)),
		slog.Int("count", store.Len()),
	)

	return nil
}

// readStdin reads standard input once, so reloading sources sees the same
// content.
var readStdin = sync.OnceValues(func() ([]byte, error) {
	return io.ReadAll(os.Stdin)
})

func loadStdin(
	ctx context.Context,
	store *variables.Store,
	opts ...varfile.Option,
) error {
	data, err := readStdin()
	if err != nil {
		return varfile.ErrRead.Wrap(err).With(slog.String("file", StdinSource))
	}

	return varfile.Load(ctx, bytes.NewReader(data), store,
		append(opts, varfile.WithSource("stdin"))...)
}

// Assign parses a NAME=VALUE assignment and stores it.
//
// NAME is a decorated variable name or a bare name, which is taken as a
// scalar. The value of a list variable is split on commas, and the value
// of a dictionary variable is a comma-separated list of KEY=VALUE items.
// Every value is resolved against the variables stored so far.
func Assign(store *variables.Store, assignment string) error {
	name, text, ok := splitAssignment(assignment)
	if !ok {
		return ErrAssignment.
			With(slog.String("assignment", assignment)).
			Wrap(errMissingEquals)
	}

	value, err := assignmentValue(store, variables.Kind(name[0]), text)
	if err == nil {
		err = store.Set(name, value)
	}

	if err != nil {
		return ErrAssignment.
			With(slog.String("assignment", assignment), slog.String("name", name)).
			Wrap(err)
	}

	return nil
}

var errMissingEquals = NewError("expected NAME=VALUE")

// splitAssignment splits s at the '=' that ends its name. A decorated name
// may itself contain '='.
func splitAssignment(s string) (name, value string, ok bool) {
	if ref, found := variables.Find(s, 0); found && ref.Start == 0 {
		if ref.End < len(s) && s[ref.End] == '=' {
			return s[:ref.End], s[ref.End+1:], true
		}
	}

	name, value, ok = strings.Cut(s, "=")
	if !ok || name == "" {
		return "", "", false
	}

	return Decorate(name), value, true
}

// Decorate returns name, or name as a scalar variable name if it is bare.
func Decorate(name string) string {
	if variables.IsName(name) {
		return name
	}

	return string(variables.Scalar.Sigil()) + "{" + name + "}"
}

func assignmentValue(
	store *variables.Store,
	kind variables.Kind,
	text string,
) (any, error) {
	switch kind {
	case variables.List:
		if text == "" {
			return []any{}, nil
		}

		return store.ReplaceStrings(strings.Split(text, ",")...)

	case variables.Dict:
		dict := make(map[string]any)

		for _, item := range strings.Split(text, ",") {
			if item == "" {
				continue
			}

			key, value, _ := strings.Cut(item, "=")

			resolved, err := store.ReplaceScalar(value)
			if err != nil {
				return nil, err
			}

			dict[key] = resolved
		}

		return dict, nil
	}

	return store.ReplaceScalar(text)
}

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// resolvePath returns the absolute, symlink-free form of path and its key.
func resolvePath(path string) (string, fileKey, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fileKey{}, false
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fileKey{}, false
	}

	key, ok := statKey(os.Stat(resolved))
	if !ok {
		return "", fileKey{}, false
	}

	return resolved, key, true
}

// statKey creates a fileKey from the result of a stat call.
// It returns false if the underlying Sys() data is not a *syscall.Stat_t.
func statKey(info os.FileInfo, err error) (fileKey, bool) {
	if err != nil {
		return fileKey{}, false
	}

	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return fileKey{}, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true //nolint:unconvert
}
