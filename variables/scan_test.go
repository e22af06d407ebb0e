package variables

import (
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestScan(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", nil},
		{"no references", "plain text", nil},
		{"single", "${foo}", []string{"${foo}"}},
		{"embedded", "Let's go to ${foo}!", []string{"${foo}"}},
		{"several", "${foo}ba${a}-${a}", []string{"${foo}", "${a}", "${a}"}},
		{"all kinds", "$ @{l} &{d}", []string{"@{l}", "&{d}"}},
		{"unterminated", "${a", nil},
		{"unterminated then valid", "${a ${b}", []string{"${b}"}},
		{"escaped", `\${foo}`, nil},
		{"double escaped", `\\${foo}`, []string{"${foo}"}},
		{"nested", "${my${name}}", []string{"${my${name}}"}},
		{"deeply nested", "x${${whos${name}}${name}}y", []string{"${${whos${name}}${name}}"}},
		{"list items", "v@{S}[2]", []string{"@{S}[2]"}},
		{"item chain", "@{L}[1][${i}] tail", []string{"@{L}[1][${i}]"}},
		{"scalar items are text", "${s}[0]", []string{"${s}"}},
		{"unclosed item", "@{L}[1", []string{"@{L}"}},
		{"triple quoted brace", `${x.replace("""}""", "-")}`, []string{`${x.replace("""}""", "-")}`}},
		{"escaped brace", `${a\}b}`, []string{`${a\}b}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for ref := range Scan(tt.input) {
				got = append(got, ref.String())
			}

			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Scan(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestFind_Offsets(t *testing.T) {
	input := "a &{D}[${k}] b"

	ref, ok := Find(input, 0)
	if !ok {
		t.Fatalf("Find(%q) found nothing", input)
	}

	want := Reference{Body: "D", Items: []string{"${k}"}, Start: 2, End: 12, Kind: Dict}
	if diff := cmp.Diff(want, ref); diff != "" {
		t.Errorf("Find mismatch (-want +got):\n%s", diff)
	}

	if _, ok := Find(input, ref.End); ok {
		t.Errorf("Find after %d found another reference", ref.End)
	}
}

func TestReference_Form(t *testing.T) {
	tests := []struct {
		input string
		want  Form
	}{
		{"${x}", Plain},
		{"${my var}", Plain},
		{"@{x}", Plain},
		{"@{x}[0]", Access},
		{"&{x}[k][0]", Access},
		{"${x.attr}", Expression},
		{"${x + 1}", Expression},
		{`${x.replace(" ", "-")}`, Expression},
	}

	for _, tt := range tests {
		ref, ok := Find(tt.input, 0)
		if !ok {
			t.Fatalf("Find(%q) found nothing", tt.input)
		}

		if got := ref.Form(); got != tt.want {
			t.Errorf("%q.Form() = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestScan_StopsEarly(t *testing.T) {
	var got []string

	for ref := range Scan("${a}${b}${c}") {
		got = append(got, ref.Name())
		if len(got) == 2 {
			break
		}
	}

	if !slices.Equal(got, []string{"${a}", "${b}"}) {
		t.Errorf("got %v", got)
	}
}
