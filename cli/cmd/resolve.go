package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/varz/variables"
)

// Resolution contexts.
const (
	ContextScalar = "scalar"
	ContextList   = "list"
	ContextString = "string"
)

// Resolve replaces the variable references in its arguments.
type Resolve struct {
	Context string   `default:"scalar" enum:"scalar,list,string"  help:"Resolve each argument as a ${enum} value" short:"c"`
	Output  string   `default:"native" enum:"native,json,yaml"    help:"Output format (${enum})"                short:"o"`
	Args    []string `                                            help:"Text containing variable references"              arg:"" optional:""`
}

// Run executes the resolve command.
func (r *Resolve) Run(ctx context.Context) error {
	store, err := SourcesFrom(ctx).Store(ctx)
	if err != nil {
		return err
	}

	values, err := r.resolve(store)
	if err != nil {
		return ErrResolve.
			With(slog.String("command", "resolve"), slog.String("context", r.Context)).
			Wrap(err)
	}

	return writeValues(ctx, stdoutFrom(ctx), r.Output, values)
}

// resolve returns one value per argument in scalar and string context, or
// the elements of the resolved list in list context.
func (r *Resolve) resolve(store *variables.Store) ([]any, error) {
	if r.Context == ContextList {
		return store.ReplaceStrings(r.Args...)
	}

	values := make([]any, 0, len(r.Args))

	for _, arg := range r.Args {
		var (
			value any
			err   error
		)

		if r.Context == ContextString {
			value, err = store.ReplaceString(arg)
		} else {
			value, err = store.ReplaceScalar(arg)
		}

		if err != nil {
			return nil, err
		}

		values = append(values, value)
	}

	return values, nil
}

// Get prints the stored values of variables without resolving references
// they contain.
type Get struct {
	Output string   `default:"native" enum:"native,json,yaml" help:"Output format (${enum})" short:"o"`
	Names  []string `                                         help:"Variable names, decorated or bare" arg:""`
}

// Run executes the get command.
func (g *Get) Run(ctx context.Context) error {
	store, err := SourcesFrom(ctx).Store(ctx)
	if err != nil {
		return err
	}

	values := make([]any, 0, len(g.Names))

	for _, name := range g.Names {
		name = Decorate(name)

		value, err := store.Get(name)
		if err != nil {
			return ErrResolve.
				With(slog.String("command", "get"), slog.String("name", name)).
				Wrap(err)
		}

		values = append(values, value)
	}

	return writeValues(ctx, stdoutFrom(ctx), g.Output, values)
}
