package variables

import (
	"errors"
	"math"
	"testing"
)

type greeting struct{}

func (greeting) String() string { return "Hello" }

func TestFormat(t *testing.T) {
	var nilPtr *int

	seven := 7

	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"string", "text", "text"},
		{"empty string", "", ""},
		{"nil", nil, "None"},
		{"nil pointer", nilPtr, "None"},
		{"pointer", &seven, "7"},
		{"true", true, "True"},
		{"false", false, "False"},
		{"int", -42, "-42"},
		{"uint", uint8(200), "200"},
		{"float", 0.5, "0.5"},
		{"whole float", 2.0, "2.0"},
		{"float32", float32(1.5), "1.5"},
		{"small float", 0.00001, "1e-05"},
		{"large float", 1e16, "1e+16"},
		{"nan", math.NaN(), "nan"},
		{"inf", math.Inf(-1), "-inf"},
		{"list", []any{"v1", "v2"}, "['v1', 'v2']"},
		{"mixed list", []any{1, "a", nil, true}, "[1, 'a', None, True]"},
		{"nested list", []any{"v0", []any{"v11", "v12"}}, "['v0', ['v11', 'v12']]"},
		{"typed list", []int{1, 2, 3}, "[1, 2, 3]"},
		{"empty list", []any{}, "[]"},
		{"dict", map[string]any{"b": 2, "a": 1}, "{'a': 1, 'b': 2}"},
		{"mixed keys", map[any]any{"a": 1, 2: "b"}, "{'a': 1, 2: 'b'}"},
		{"quote in string", []any{"it's"}, `["it's"]`},
		{"escapes in string", []any{"a\nb\\"}, `['a\nb\\']`},
		{"stringer", greeting{}, "Hello"},
		{"stringer in list", []any{greeting{}}, "[Hello]"},
		{"error", errors.New("boom"), "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.value); got != tt.want {
				t.Errorf("Format(%#v) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestUnescape(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"", ""},
		{"plain", "plain"},
		{`\${foo}`, "${foo}"},
		{`\\`, `\`},
		{`a\nb`, "a\nb"},
		{`\t\r`, "\t\r"},
		{`\x41`, "A"},
		{`\u00e4`, "ä"},
		{`\U0001F600`, "😀"},
		{`\xZZ`, "xZZ"},
		{`\q`, "q"},
		{`trailing\`, `trailing\`},
	}

	for _, tt := range tests {
		if got := Unescape(tt.input); got != tt.want {
			t.Errorf("Unescape(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestUnescapeReferences(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"", ""},
		{`p + "\\foo.txt"`, `p + "\\foo.txt"`},
		{`\n\t\x41`, `\n\t\x41`},
		{`\${x}`, `${x}`},
		{`\\${x}`, `\\${x}`},
		{`\\\@{x}`, `\\@{x}`},
		{`\&x`, `\&x`},
		{`trailing\`, `trailing\`},
	}

	for _, tt := range tests {
		if got := unescapeReferences(tt.input); got != tt.want {
			t.Errorf("unescapeReferences(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
