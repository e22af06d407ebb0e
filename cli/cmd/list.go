package cmd

import (
	"context"
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/varz/variables"
)

// List prints every stored variable, optionally only those whose names
// fuzzy-match a pattern.
type List struct {
	Output  string `default:"native" enum:"native,json,yaml" help:"Output format (${enum})" short:"o"`
	Pattern string `                                         help:"Fuzzy name filter"               arg:"" optional:""`
}

// Run executes the list command.
func (l *List) Run(ctx context.Context) error {
	store, err := SourcesFrom(ctx).Store(ctx)
	if err != nil {
		return err
	}

	names := l.match(store.Names())

	var values []any
	for _, name := range names {
		v, _ := store.Get(name)
		values = append(values, v)
	}

	w := stdoutFrom(ctx)

	switch l.Output {
	case OutputJSON:
		doc := make(map[string]any, len(names))
		for i, name := range names {
			doc[name] = values[i]
		}

		return writeDocument(ctx, w, l.Output, doc)

	case OutputYAML:
		doc := make(yaml.MapSlice, len(names))
		for i, name := range names {
			doc[i] = yaml.MapItem{Key: name, Value: values[i]}
		}

		return writeDocument(ctx, w, l.Output, doc)
	}

	for i, name := range names {
		if _, err := fmt.Fprintf(w, "%s = %s\n", name, variables.Format(values[i])); err != nil {
			return ErrOutput.Wrap(err)
		}
	}

	return nil
}

// match returns the names that fuzzy-match the pattern, best match first,
// or all names if there is no pattern.
func (l *List) match(names []string) []string {
	if l.Pattern == "" {
		return names
	}

	matches := fuzzy.Find(l.Pattern, names)

	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Str
	}

	return out
}
