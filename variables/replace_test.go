package variables

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// pair is a host value with fields reachable through extended syntax.
type pair struct {
	A any
	B any
}

func (p pair) String() string { return fmt.Sprintf("(%v, %v)", p.A, p.B) }

func newStore(t *testing.T, vars map[string]any) *Store {
	t.Helper()

	s := New()
	for name, value := range vars {
		mustSet(t, s, name, value)
	}

	return s
}

func TestReplaceScalar(t *testing.T) {
	s := newStore(t, map[string]any{"${foo}": "bar", "${a}": "ari"})

	tests := []struct {
		input, want string
	}{
		{"${foo}", "bar"},
		{"${a}", "ari"},
		{"${a", "${a"},
		{"", ""},
		{"hii", "hii"},
		{"Let's go to ${foo}!", "Let's go to bar!"},
		{"${foo}ba${a}-${a}", "barbaari-ari"},
	}

	for _, tt := range tests {
		got, err := s.ReplaceScalar(tt.input)
		if err != nil {
			t.Fatalf("ReplaceScalar(%q) error: %v", tt.input, err)
		}

		if got != tt.want {
			t.Errorf("ReplaceScalar(%q) = %v, want %q", tt.input, got, tt.want)
		}
	}
}

func TestReplaceList(t *testing.T) {
	s := newStore(t, map[string]any{
		"@{L}": []any{"v1", "v2"},
		"@{E}": []any{},
		"@{S}": []any{"1", "2", "3"},
	})

	tests := []struct {
		input, want []any
	}{
		{[]any{"@{L}"}, []any{"v1", "v2"}},
		{[]any{"@{L}", "v3"}, []any{"v1", "v2", "v3"}},
		{[]any{"v0", "@{L}", "@{E}", "v@{S}[2]"}, []any{"v0", "v1", "v2", "v3"}},
		{[]any{}, []any{}},
		{[]any{"hi u", "hi 2", 3}, []any{"hi u", "hi 2", 3}},
	}

	for _, tt := range tests {
		got, err := s.ReplaceList(tt.input)
		if err != nil {
			t.Fatalf("ReplaceList(%v) error: %v", tt.input, err)
		}

		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("ReplaceList(%v) mismatch (-want +got):\n%s", tt.input, diff)
		}
	}
}

func TestReplaceList_InScalarContext(t *testing.T) {
	s := newStore(t, map[string]any{"@{list}": []any{"v1", "v2"}})

	got, err := s.ReplaceStrings("@{list}", "-@{list}-")
	if err != nil {
		t.Fatalf("ReplaceStrings error: %v", err)
	}

	want := []any{"v1", "v2", "-['v1', 'v2']-"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestReplace_ListItems(t *testing.T) {
	s := newStore(t, map[string]any{
		"@{L}":  []any{"v0", "v1"},
		"@{L2}": []any{"v0", []any{"v11", "v12"}},
		"@{N}":  []int{10, 20, 30, 40},
	})

	lists := []struct {
		input, want []any
	}{
		{[]any{"@{L}[0]"}, []any{"v0"}},
		{[]any{"@{L2}[0]"}, []any{"v0"}},
		{[]any{"@{L2}[1]"}, []any{[]any{"v11", "v12"}}},
		{[]any{"@{L}[0]", "@{L2}[1]"}, []any{"v0", []any{"v11", "v12"}}},
		{[]any{"@{L2}[1][-1]"}, []any{"v12"}},
		{[]any{"@{N}[1:3]"}, []any{[]int{20, 30}}},
	}

	for _, tt := range lists {
		got, err := s.ReplaceList(tt.input)
		if err != nil {
			t.Fatalf("ReplaceList(%v) error: %v", tt.input, err)
		}

		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("ReplaceList(%v) mismatch (-want +got):\n%s", tt.input, diff)
		}
	}

	scalars := []struct {
		input string
		want  any
	}{
		{"@{L}[1]", "v1"},
		{"-@{L}[0]@{L}[1]@{L}[0]-", "-v0v1v0-"},
		{"@{L2}[0]", "v0"},
		{"@{L2}[1]", []any{"v11", "v12"}},
		{"@{N}[-1]", 40},
		{"@{N}[:2]", []int{10, 20}},
		{"@{N}[${1}]", 20},
	}

	for _, tt := range scalars {
		got, err := s.ReplaceScalar(tt.input)
		if err != nil {
			t.Fatalf("ReplaceScalar(%q) error: %v", tt.input, err)
		}

		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("ReplaceScalar(%q) mismatch (-want +got):\n%s", tt.input, diff)
		}
	}
}

func TestReplace_DictItems(t *testing.T) {
	s := newStore(t, map[string]any{
		"&{D}": map[any]any{"a": 1, 2: "b", 3.0: "c"},
		"&{N}": map[string]any{"x": map[string]any{"y": "deep"}},
	})

	got, err := s.ReplaceList([]any{"&{D}[a]"})
	if err != nil {
		t.Fatalf("ReplaceList error: %v", err)
	}

	if diff := cmp.Diff([]any{1}, got); diff != "" {
		t.Errorf("ReplaceList mismatch (-want +got):\n%s", diff)
	}

	for input, want := range map[string]any{
		"&{D}[${2}]":   "b",
		"&{D}[${3}]":   "c",
		"&{N}[x][y]":   "deep",
		"<&{N}[x][y]>": "<deep>",
	} {
		got, err := s.ReplaceScalar(input)
		if err != nil {
			t.Fatalf("ReplaceScalar(%q) error: %v", input, err)
		}

		if got != want {
			t.Errorf("ReplaceScalar(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestReplace_NonStrings(t *testing.T) {
	d := map[string]any{"a": 1, "b": 2}
	s := newStore(t, map[string]any{"${d}": d, "${n}": nil})

	got, err := s.ReplaceScalar("${d}")
	if err != nil {
		t.Fatalf("ReplaceScalar error: %v", err)
	}

	if diff := cmp.Diff(d, got); diff != "" {
		t.Errorf("ReplaceScalar(${d}) mismatch (-want +got):\n%s", diff)
	}

	if got, err := s.ReplaceScalar("${n}"); err != nil || got != nil {
		t.Errorf("ReplaceScalar(${n}) = %v, %v, want nil", got, err)
	}

	if got, err := s.ReplaceScalar(42); err != nil || got != 42 {
		t.Errorf("ReplaceScalar(42) = %v, %v, want 42", got, err)
	}
}

func TestReplace_NonStringsInsideString(t *testing.T) {
	s := newStore(t, map[string]any{"${h}": greeting{}, "${w}": "world"})

	got, err := s.ReplaceScalar(`Another "${h} ${w}" example`)
	if err != nil {
		t.Fatalf("ReplaceScalar error: %v", err)
	}

	if got != `Another "Hello world" example` {
		t.Errorf("ReplaceScalar = %q", got)
	}
}

func TestReplace_Errors(t *testing.T) {
	s := newStore(t, map[string]any{
		"@{L}":  []any{"v0", "v1", "v3"},
		"&{D}":  map[string]any{"a": 1},
		"${s}":  "text",
		"${ok}": 1,
	})

	tests := []struct {
		name    string
		replace func() error
		want    error
	}{
		{"index out of range", list(s, "@{L}[3]"), ErrIndex},
		{"negative out of range", list(s, "@{L}[-4]"), ErrIndex},
		{"invalid index", list(s, "@{L}[x]"), ErrIndex},
		{"missing list", list(s, "@{NON}[0]"), ErrVariableNotFound},
		{"items inside braces", list(s, "@{L[2]}"), ErrVariableNotFound},
		{"missing scalar in list", list(s, "${nonexisting}"), ErrVariableNotFound},
		{"missing key", list(s, "&{D}[b]"), ErrKey},
		{"missing scalar", scalar(s, "${nonexisting}"), ErrVariableNotFound},
		{"missing in string", str(s, "x ${nonexisting}"), ErrVariableNotFound},
		{"missing nested", scalar(s, "${a${nonexisting}}"), ErrVariableNotFound},
		{"missing base", scalar(s, "${nonexisting.attr}"), ErrVariableNotFound},
		{"list of scalar", list(s, "@{s}"), ErrVariableType},
		{"item of subscript", scalar(s, "@{L}[0][0][0]"), ErrVariableType},
		{"unknown attribute", scalar(s, "${s.nope}"), ErrExpression},
		{"unknown name", scalar(s, "${ok + other}"), ErrExpression},
		{"modulo", scalar(s, "${ok % 2}"), ErrExpression},
		{"comparison", scalar(s, "${ok == 1}"), ErrExpression},
		{"division by zero", scalar(s, "${ok // 0}"), ErrExpression},
		{"true division by zero", scalar(s, "${1/0}"), ErrExpression},
		{"internal true division by zero", scalar(s, "${${1}/${0}}"), ErrExpression},
		{"true division by float zero", scalar(s, "${${4}/${0.0}}"), ErrExpression},
		{"float first plus", scalar(s, "${${1.1}+${2}}"), ErrExpression},
		{"float first minus", scalar(s, "${${1.1} - ${2}}"), ErrExpression},
		{"float first times", scalar(s, "${${1.1} * ${2}}"), ErrExpression},
		{"float first divide", scalar(s, "${${1.1}/${2}}"), ErrExpression},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.replace()
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}

			if !errors.Is(err, ErrData) {
				t.Errorf("error %v does not match ErrData", err)
			}
		})
	}
}

func list(s *Store, item string) func() error {
	return func() error {
		_, err := s.ReplaceList([]any{item})

		return err
	}
}

func scalar(s *Store, item string) func() error {
	return func() error {
		_, err := s.ReplaceScalar(item)

		return err
	}
}

func str(s *Store, item string) func() error {
	return func() error {
		_, err := s.ReplaceString(item)

		return err
	}
}

func TestReplace_Escaped(t *testing.T) {
	s := newStore(t, map[string]any{"${foo}": "bar"})

	tests := []struct {
		input, want string
	}{
		{`\${foo}`, `${foo}`},
		{`\\${foo}`, `\bar`},
		{`\\\${foo}`, `\${foo}`},
		{`\\\\${foo}`, `\\bar`},
		{`\\\\\${foo}`, `\\${foo}`},
		{`x\@{foo}y`, `x@{foo}y`},
	}

	for _, tt := range tests {
		got, err := s.ReplaceScalar(tt.input)
		if err != nil {
			t.Fatalf("ReplaceScalar(%q) error: %v", tt.input, err)
		}

		if got != tt.want {
			t.Errorf("ReplaceScalar(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestReplace_ObjectInString(t *testing.T) {
	obj := pair{"a", 1}
	s := newStore(t, map[string]any{"${obj}": obj})

	if diff := cmp.Diff(obj, mustGet(t, s, "${obj}")); diff != "" {
		t.Errorf("Get(${obj}) mismatch (-want +got):\n%s", diff)
	}

	got, err := s.ReplaceList([]any{"Some text here ${obj} and ${obj} there"})
	if err != nil {
		t.Fatalf("ReplaceList error: %v", err)
	}

	want := []any{"Some text here (a, 1) and (a, 1) there"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ReplaceList mismatch (-want +got):\n%s", diff)
	}
}

func TestReplace_ExtendedVariables(t *testing.T) {
	obj := pair{"a", []any{1, 2, 3}}
	s := newStore(t, map[string]any{
		"${obj}": obj,
		"${dic}": map[string]any{"a": 1, "o": obj},
		"${ptr}": &obj,
	})

	tests := []struct {
		input string
		want  any
	}{
		{"${obj.a}", "a"},
		{"${obj.b}", []any{1, 2, 3}},
		{"${obj.b[0]}-${obj.b[1]}", "1-2"},
		{"${obj.b[-1]}", 3},
		{`${dic["a"]}`, 1},
		{`${dic["o"]}`, obj},
		{`-${dic["o"].b[2]}-`, "-3-"},
		{"${ptr.a}", "a"},
		{"${obj.a.upper()}", "A"},
	}

	for _, tt := range tests {
		got, err := s.ReplaceScalar(tt.input)
		if err != nil {
			t.Fatalf("ReplaceScalar(%q) error: %v", tt.input, err)
		}

		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("ReplaceScalar(%q) mismatch (-want +got):\n%s", tt.input, diff)
		}
	}
}

func TestReplace_TripleQuotedArguments(t *testing.T) {
	s := newStore(t, map[string]any{
		"${x}":   "test string",
		"${lf}":  `\n`,
		"${lfs}": `\n `,
	})

	tests := []struct {
		input, want string
	}{
		{`${x.replace(" ", """\n""")}`, "test\nstring"},
		{`${x.replace(" ", """\n """)}`, "test\n string"},
		{`${x.replace(" ", """${lf}""")}`, "test\nstring"},
		{`${x.replace(" ", """${lfs}""")}`, "test\n string"},
		{`${x.replace(" ", """}{""")}`, "test}{string"},
		{`${x.replace(" ", '-')}`, "test-string"},
	}

	for _, tt := range tests {
		got, err := s.ReplaceScalar(tt.input)
		if err != nil {
			t.Fatalf("ReplaceScalar(%q) error: %v", tt.input, err)
		}

		if got != tt.want {
			t.Errorf("ReplaceScalar(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestReplace_EscapingInExpression(t *testing.T) {
	s := newStore(t, map[string]any{"${p}": `c:\temp`})

	if got := mustGet(t, s, "${p}"); got != `c:\temp` {
		t.Fatalf("Get(${p}) = %q", got)
	}

	got, err := s.ReplaceScalar(`${p + "\\foo.txt"}`)
	if err != nil {
		t.Fatalf("ReplaceScalar error: %v", err)
	}

	if got != `c:\temp\foo.txt` {
		t.Errorf("ReplaceScalar = %q, want %q", got, `c:\temp\foo.txt`)
	}
}

func TestReplace_EscapingInExpressionWithInternal(t *testing.T) {
	s := newStore(t, map[string]any{"${p}": `c:\temp`, "${ext}": "txt"})

	tests := []struct {
		input, want string
	}{
		{`${p + "\\foo.txt" + "${EMPTY}"}`, `c:\temp\foo.txt`},
		{`${p + "\\foo." + "${ext}"}`, `c:\temp\foo.txt`},
		{`${p + "\\n" + "${EMPTY}"}`, `c:\temp\n`},
		{`${p.replace("\\", "/") + "${EMPTY}"}`, `c:/temp`},
	}

	for _, tt := range tests {
		got, err := s.ReplaceScalar(tt.input)
		if err != nil {
			t.Fatalf("ReplaceScalar(%q) error: %v", tt.input, err)
		}

		if got != tt.want {
			t.Errorf("ReplaceScalar(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestReplace_InternalVariables(t *testing.T) {
	s := newStore(t, map[string]any{
		"${name}":      "name",
		"${my name}":   "value",
		"${whos name}": "my",
	})

	for _, input := range []string{
		"${my${name}}",
		"${${whos name} ${name}}",
		"${${whos${name}}${name}}",
	} {
		got, err := s.ReplaceScalar(input)
		if err != nil {
			t.Fatalf("ReplaceScalar(%q) error: %v", input, err)
		}

		if got != "value" {
			t.Errorf("ReplaceScalar(%q) = %v, want value", input, got)
		}
	}

	mustSet(t, s, "${my name}", []any{1, 2, 3})

	got, err := s.ReplaceScalar("${${whos${name}}${name}}")
	if err != nil {
		t.Fatalf("ReplaceScalar error: %v", err)
	}

	if diff := cmp.Diff([]any{1, 2, 3}, got); diff != "" {
		t.Errorf("ReplaceScalar mismatch (-want +got):\n%s", diff)
	}

	text, err := s.ReplaceScalar("- ${${whos${name}}${name}} -")
	if err != nil {
		t.Fatalf("ReplaceScalar error: %v", err)
	}

	if text != "- [1, 2, 3] -" {
		t.Errorf("ReplaceScalar = %q, want %q", text, "- [1, 2, 3] -")
	}
}

func TestReplace_Arithmetic(t *testing.T) {
	s := New()

	tests := []struct {
		input string
		want  any
	}{
		{"${${1}+${2}}", 3},
		{"${${1}-${2}}", -1},
		{"${${1}*${2}}", 2},
		{"${${1}//${2}}", 0},
		{"${${1} + ${2.5}}", 3.5},
		{"${${1} - ${2} + 1}", 0},
		{"${${1} * ${2} - 1}", 1},
		{"${${1} / ${2.0}}", 0.5},
		{"${${-7} // 2}", -4},
		{"${${7} // 2.0}", 3.0},
		{"${${2} * -3}", -6},
	}

	for _, tt := range tests {
		got, err := s.ReplaceScalar(tt.input)
		if err != nil {
			t.Fatalf("ReplaceScalar(%q) error: %v", tt.input, err)
		}

		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("ReplaceScalar(%q) mismatch (-want +got):\n%s", tt.input, diff)
		}
	}
}

func TestReplace_Literals(t *testing.T) {
	s := New()

	tests := []struct {
		input string
		want  any
	}{
		{"${1}", 1},
		{"${-2}", -2},
		{"${2.5}", 2.5},
		{"${0x1F}", 31},
		{"${0o17}", 15},
		{"${0b101}", 5},
		{"${True}", true},
		{"${false}", false},
		{"${None}", nil},
		{"${null}", nil},
		{"${EMPTY}", ""},
		{"${SPACE}", " "},
		{"@{EMPTY}", []any{}},
		{"&{EMPTY}", map[string]any{}},
		{"a${SPACE}b", "a b"},
	}

	for _, tt := range tests {
		got, err := s.ReplaceScalar(tt.input)
		if err != nil {
			t.Fatalf("ReplaceScalar(%q) error: %v", tt.input, err)
		}

		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("ReplaceScalar(%q) mismatch (-want +got):\n%s", tt.input, diff)
		}
	}

	mustSet(t, s, "${True}", "shadowed")

	if got, _ := s.ReplaceScalar("${TRUE}"); got != "shadowed" {
		t.Errorf("stored ${True} = %v, want shadowed", got)
	}
}

func TestReplace_ListVariableAsScalar(t *testing.T) {
	exp := []any{"spam", "eggs"}
	s := newStore(t, map[string]any{"@{name}": exp})

	got, err := s.ReplaceScalar("${name}")
	if err != nil {
		t.Fatalf("ReplaceScalar error: %v", err)
	}

	if diff := cmp.Diff(exp, got); diff != "" {
		t.Errorf("ReplaceScalar mismatch (-want +got):\n%s", diff)
	}

	items, err := s.ReplaceList([]any{"${name}", 42})
	if err != nil {
		t.Fatalf("ReplaceList error: %v", err)
	}

	if diff := cmp.Diff([]any{exp, 42}, items); diff != "" {
		t.Errorf("ReplaceList mismatch (-want +got):\n%s", diff)
	}

	text, err := s.ReplaceString("${name}")
	if err != nil {
		t.Fatalf("ReplaceString error: %v", err)
	}

	if text != "['spam', 'eggs']" {
		t.Errorf("ReplaceString = %q", text)
	}
}

func TestReplace_CopyIndependence(t *testing.T) {
	s := newStore(t, map[string]any{"${foo}": "bar"})
	c := s.Copy()

	mustSet(t, c, "${foo}", "changed")

	got, err := s.ReplaceString("${foo}")
	if err != nil || got != "bar" {
		t.Errorf("original ReplaceString = %q, %v, want bar", got, err)
	}
}
