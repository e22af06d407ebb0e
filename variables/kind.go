package variables

import "strings"

// Kind identifies the sigil a variable is declared or referenced with.
type Kind byte

// Supported sigils.
const (
	Scalar Kind = '$'
	List   Kind = '@'
	Dict   Kind = '&'
)

// kindOf returns the Kind denoted by sigil c.
func kindOf(c byte) (Kind, bool) {
	switch Kind(c) {
	case Scalar, List, Dict:
		return Kind(c), true
	}

	return 0, false
}

// Sigil returns the character that introduces a reference of kind k.
func (k Kind) Sigil() byte { return byte(k) }

func (k Kind) String() string {
	switch k {
	case Scalar:
		return "scalar"
	case List:
		return "list"
	case Dict:
		return "dict"
	default:
		return "invalid"
	}
}

// decorate returns body enclosed in the braces of kind k.
func (k Kind) decorate(body string) string {
	return string(rune(k)) + "{" + body + "}"
}

// Form distinguishes how a [Reference] is resolved.
type Form int

const (
	// Plain is a bare name, e.g. ${x}.
	Plain Form = iota
	// Access is a list or dict reference followed by [item] steps.
	Access
	// Expression is a scalar body evaluated against a base variable,
	// e.g. ${obj.attr} or ${x + 1}.
	Expression
)

func (f Form) String() string {
	switch f {
	case Plain:
		return "plain"
	case Access:
		return "access"
	case Expression:
		return "expression"
	default:
		return "invalid"
	}
}

// Reference is one variable reference located by [Find].
type Reference struct {
	Body  string   // raw text between the braces
	Items []string // raw contents of each trailing [item]
	Start int      // offset of the sigil
	End   int      // offset just past the reference
	Kind  Kind
}

// Name returns the reference without its item access chain.
func (r Reference) Name() string { return r.Kind.decorate(r.Body) }

// Form reports how r is resolved. Expression is tentative: a stored
// variable whose name matches the whole body takes precedence.
func (r Reference) Form() Form {
	if len(r.Items) > 0 {
		return Access
	}

	if r.Kind == Scalar {
		if _, _, ok := splitExtended(r.Body); ok {
			return Expression
		}
	}

	return Plain
}

// String returns the source text of r.
func (r Reference) String() string {
	var b strings.Builder

	b.WriteString(r.Name())

	for _, item := range r.Items {
		b.WriteByte('[')
		b.WriteString(item)
		b.WriteByte(']')
	}

	return b.String()
}
