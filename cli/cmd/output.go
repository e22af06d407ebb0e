package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/varz/variables"
)

// Output formats.
const (
	OutputNative = "native"
	OutputJSON   = "json"
	OutputYAML   = "yaml"
)

// outputIndent is the indentation of structured output.
const outputIndent = 2

// writeValues writes values to w: one [variables.Format] line per value in
// native format, or one JSON or YAML document holding the sequence of
// values.
func writeValues(ctx context.Context, w io.Writer, format string, values []any) error {
	if format == OutputNative || format == "" {
		for _, v := range values {
			if _, err := fmt.Fprintln(w, variables.Format(v)); err != nil {
				return ErrOutput.Wrap(err)
			}
		}

		return nil
	}

	return writeDocument(ctx, w, format, values)
}

// writeDocument writes v to w as one JSON or YAML document.
func writeDocument(ctx context.Context, w io.Writer, format string, v any) error {
	var (
		data []byte
		err  error
	)

	switch format {
	case OutputJSON:
		data, err = json.MarshalIndent(v, "", fmt.Sprintf("%*s", outputIndent, ""))
		if err == nil {
			data = append(data, '\n')
		}

	case OutputYAML:
		data, err = yaml.MarshalContext(ctx, v, yaml.Indent(outputIndent))

	default:
		return ErrOutput.Wrap(fmt.Errorf("unknown format %q", format))
	}

	if err != nil {
		return ErrOutput.Wrap(err)
	}

	if _, err := w.Write(data); err != nil {
		return ErrOutput.Wrap(err)
	}

	return nil
}
