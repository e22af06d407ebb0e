package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/varz/log"
	"github.com/ardnew/varz/varfile"
	"github.com/ardnew/varz/variables"
)

// resolve returns a [kong.ConfigurationLoader] that reads flag defaults from
// a YAML variable file.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(resolve(ctx, "config"), "/path/to/config.yaml")
//
// The file is loaded like any variable file, so entries may reference
// variables defined above them. The dictionary variable &{name} (or a bare
// name key holding a mapping) provides one value per flag:
//
//	level: debug
//	config:
//	  log-level: ${level}
//	  log_format: json
//	  file: [base.yaml, site.yaml]
//
// Flag names may use hyphens or underscores. Numbers are passed to Kong as
// text and sequences as comma-separated text. Command-line flags override
// configuration values. A file that cannot be loaded, or that has no
// mapping under name, yields no values.
func resolve(ctx context.Context, name string) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		store := variables.New(variables.WithLogger(log.Default()))

		err := varfile.Load(ctx, r, store,
			varfile.WithLogger(log.Default()),
			varfile.WithSource(name),
		)
		if err != nil {
			log.WarnContext(ctx, "ignoring configuration", slog.Any("error", err))

			return config{}, nil
		}

		value, err := store.Get("&{" + name + "}")
		if err != nil {
			if !errors.Is(err, variables.ErrVariableNotFound) {
				log.WarnContext(ctx, "ignoring configuration", slog.Any("error", err))
			}

			return config{}, nil
		}

		dict, _ := value.(map[string]any)

		return makeConfig(dict), nil
	}
}

// config implements [kong.Resolver] for YAML variable files.
type config map[string]any

// makeConfig converts the values of dict to the forms Kong parses.
func makeConfig(dict map[string]any) config {
	c := make(config, len(dict))

	for key, value := range dict {
		if value == nil {
			continue
		}

		c[key] = flagValue(value)
	}

	return c
}

// flagValue returns value as Kong expects a resolved flag value: booleans
// and strings as they are, sequences joined with commas, and anything else
// as its canonical text.
func flagValue(value any) any {
	switch v := value.(type) {
	case bool, string:
		return v

	case int:
		return strconv.Itoa(v)

	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)

	case []any:
		items := make([]string, len(v))
		for i, item := range v {
			items[i] = variables.Format(item)
		}

		return strings.Join(items, ",")
	}

	return variables.Format(value)
}

// Validate implements [kong.Resolver].
func (r config) Validate(*kong.Application) error {
	// No validation needed: the file was already loaded successfully.
	return nil
}

// Resolve implements [kong.Resolver].
func (r config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	// Kong flags use hyphens (e.g., "log-level") but configuration keys
	// may use underscores. Try both forms.
	if value, ok := r[flag.Name]; ok {
		return value, nil
	}

	if value, ok := r[strings.ReplaceAll(flag.Name, "-", "_")]; ok {
		return value, nil
	}

	// Not found: let Kong use defaults.
	return nil, nil //nolint:nilnil
}
