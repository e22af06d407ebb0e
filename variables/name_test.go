package variables

import (
	"errors"
	"testing"
)

var (
	scalarNames = []string{"${var}", "${  v A  R }"}
	listNames   = []string{"@{var}", "@{  v A  R }"}
	badNames    = []string{
		"", "var", "$var", "${var", "${va}r", "@{va}r", "@var", "%{var}",
		" ${var}", "@{var} ", `\${var}`, `\\${var}`, "${}", "${a${b}}",
		"${a}b}", `${a\}`, "${ }", "@{\t}", "&{  \n }",
	}
)

func TestValidate_ValidNames(t *testing.T) {
	for _, name := range append(append([]string{"&{d}"}, scalarNames...), listNames...) {
		if err := Validate(name); err != nil {
			t.Errorf("Validate(%q) = %v, want nil", name, err)
		}

		if !IsName(name) {
			t.Errorf("IsName(%q) = false, want true", name)
		}
	}
}

func TestValidate_InvalidNames(t *testing.T) {
	for _, name := range badNames {
		err := Validate(name)
		if !errors.Is(err, ErrName) {
			t.Errorf("Validate(%q) = %v, want ErrName", name, err)
		}

		if !errors.Is(err, ErrData) {
			t.Errorf("Validate(%q) does not match ErrData", name)
		}

		if IsName(name) {
			t.Errorf("IsName(%q) = true, want false", name)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		body, want string
	}{
		{"var", "var"},
		{"  v A  R ", "var"},
		{"My\tName\n", "myname"},
		{"STRASSE", "strasse"},
		{"ß", "ss"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Normalize(tt.body); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.body, got, tt.want)
		}
	}
}

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{Scalar, "scalar"},
		{List, "list"},
		{Dict, "dict"},
		{Kind('%'), "invalid"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%q).String() = %q, want %q", tt.kind.Sigil(), got, tt.want)
		}
	}
}
