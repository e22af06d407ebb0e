package variables

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
	"github.com/expr-lang/expr/vm"
	"github.com/zeebo/xxh3"
)

// baseIdent names the resolved base variable inside compiled expressions.
const baseIdent = "base"

var (
	errSyntax      = errors.New("invalid syntax")
	errUnknownName = errors.New("unknown name")
	errUnsupported = errors.New("unsupported expression")
	errOperand     = errors.New("unsupported operand types")
)

// cached pairs a compiled program with its source to rule out hash
// collisions.
type cached struct {
	source  string
	program *vm.Program
}

// programs caches compiled expressions by the hash of their source.
var programs sync.Map // map[uint64]cached

// evaluate applies the extended expression ext, e.g. ".attr", "[0]",
// ".replace('a', 'b')" or " + 1", to base.
func evaluate(base any, ext string) (any, error) {
	program, err := compile(ext)
	if err != nil {
		return nil, err
	}

	return expr.Run(program, map[string]any{baseIdent: base})
}

// compile translates ext into an expression on [baseIdent], verifies it only
// uses supported constructs, and compiles it.
func compile(ext string) (*vm.Program, error) {
	tail, err := translate(ext)
	if err != nil {
		return nil, err
	}

	source := baseIdent + tail
	key := xxh3.HashString(source)

	if c, ok := programs.Load(key); ok && c.(cached).source == source {
		return c.(cached).program, nil
	}

	tree, err := parser.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errSyntax, ext)
	}

	var v validator

	ast.Walk(&tree.Node, &v)

	if v.err != nil {
		return nil, v.err
	}

	program, err := expr.Compile(
		source,
		expr.DisableAllBuiltins(),
		expr.Function("member", func(params ...any) (any, error) {
			return member(params[0], params[1])
		}),
		expr.Function("invoke", func(params ...any) (any, error) {
			return invoke(params[0], params[1].(string), params[2:])
		}),
		expr.Function("truediv", func(params ...any) (any, error) {
			return trueDiv(params[0], params[1])
		}),
		expr.Function("floordiv", func(params ...any) (any, error) {
			return floorDiv(params[0], params[1])
		}),
		expr.Patch(methodPatcher{}),
		expr.Patch(memberPatcher{}),
		expr.Patch(divPatcher{}),
		expr.Patch(floorPatcher{}),
	)
	if err != nil {
		return nil, err
	}

	programs.Store(key, cached{source: source, program: program})

	return program, nil
}

// translate rewrites the operator and literal syntax of an extended
// expression into expr syntax. Triple-quoted strings become ordinary string
// literals, // becomes the floor division operator and True, False and None
// become their expr equivalents. Bare names other than those are rejected,
// so an expression can only reach values through the base variable.
func translate(ext string) (string, error) {
	var b strings.Builder

	b.Grow(len(ext))

	for i := 0; i < len(ext); {
		c := ext[i]

		switch {
		case c == '"' || c == '\'':
			n, err := translateString(&b, ext[i:])
			if err != nil {
				return "", err
			}

			i += n

		case c == '%':
			return "", fmt.Errorf("%w: operator %%", errUnsupported)

		case strings.HasPrefix(ext[i:], "//"):
			b.WriteByte('%')

			i += 2

		case isIdentStart(c):
			j := i + 1
			for j < len(ext) && isIdentPart(ext[j]) {
				j++
			}

			word := ext[i:j]

			switch {
			case i > 0 && ext[i-1] == '.':
				b.WriteString(word)
			case word == "True":
				b.WriteString("true")
			case word == "False":
				b.WriteString("false")
			case word == "None":
				b.WriteString("nil")
			default:
				return "", fmt.Errorf("%w: %s", errUnknownName, word)
			}

			i = j

		case c >= '0' && c <= '9':
			j := i + 1
			for j < len(ext) && (isIdentPart(ext[j]) || ext[j] == '.') {
				j++
			}

			b.WriteString(ext[i:j])

			i = j

		default:
			b.WriteByte(c)

			i++
		}
	}

	return b.String(), nil
}

// translateString writes the string literal at the start of s in expr
// syntax and returns the number of bytes it spans.
func translateString(b *strings.Builder, s string) (int, error) {
	q := s[:1]
	if strings.HasPrefix(s, strings.Repeat(q, 3)) {
		q = strings.Repeat(q, 3)
	}

	for i := len(q); i < len(s); i++ {
		if s[i] == '\\' {
			i++

			continue
		}

		if strings.HasPrefix(s[i:], q) {
			writeString(b, s[len(q):i])

			return i + len(q), nil
		}
	}

	return 0, fmt.Errorf("%w: unterminated string", errSyntax)
}

// writeString writes body as a double-quoted expr string. Escape sequences
// expr does not know keep their backslash, as do trailing backslashes.
func writeString(b *strings.Builder, body string) {
	b.WriteByte('"')

	for i := 0; i < len(body); i++ {
		switch c := body[i]; c {
		case '\\':
			if i+1 < len(body) && strings.IndexByte(`abfnrtv\'"xuU01234567`, body[i+1]) >= 0 {
				b.WriteByte('\\')
				b.WriteByte(body[i+1])

				i++
			} else {
				b.WriteString(`\\`)
			}
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteByte(c)
		}
	}

	b.WriteByte('"')
}

func isIdentStart(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= 0x80
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || c >= '0' && c <= '9'
}

// validator rejects syntax outside the supported subset: literals,
// attribute and item access, method calls, unary sign and the arithmetic
// operators.
type validator struct {
	err error
}

// Visit implements ast.Visitor for validator.
func (v *validator) Visit(node *ast.Node) {
	if v.err != nil {
		return
	}

	switch n := (*node).(type) {
	case *ast.IdentifierNode:
		if n.Value != baseIdent {
			v.err = fmt.Errorf("%w: %s", errUnknownName, n.Value)
		}

	case *ast.IntegerNode, *ast.FloatNode, *ast.StringNode,
		*ast.BoolNode, *ast.NilNode, *ast.ArrayNode, *ast.ChainNode:

	case *ast.UnaryNode:
		if n.Operator != "-" && n.Operator != "+" {
			v.err = fmt.Errorf("%w: operator %s", errUnsupported, n.Operator)
		}

	case *ast.BinaryNode:
		switch n.Operator {
		case "+", "-", "*", "/", "%":
		default:
			v.err = fmt.Errorf("%w: operator %s", errUnsupported, n.Operator)
		}

	case *ast.MemberNode:
		if n.Optional {
			v.err = fmt.Errorf("%w: optional chaining", errUnsupported)
		}

	case *ast.CallNode:
		if _, ok := n.Callee.(*ast.MemberNode); !ok {
			v.err = fmt.Errorf("%w: function call", errUnsupported)
		}

	default:
		v.err = fmt.Errorf("%w: %T", errUnsupported, n)
	}
}

// methodPatcher rewrites obj.name(args...) into invoke(obj, "name", args...).
type methodPatcher struct{}

// Visit implements ast.Visitor for methodPatcher.
func (methodPatcher) Visit(node *ast.Node) {
	call, ok := (*node).(*ast.CallNode)
	if !ok {
		return
	}

	callee, ok := call.Callee.(*ast.MemberNode)
	if !ok {
		return
	}

	args := make([]ast.Node, 0, len(call.Arguments)+2)
	args = append(args, callee.Node, callee.Property)
	args = append(args, call.Arguments...)

	ast.Patch(node, &ast.CallNode{
		Callee:    &ast.IdentifierNode{Value: "invoke"},
		Arguments: args,
	})
}

// memberPatcher rewrites obj.name and obj[key] into member(obj, key).
type memberPatcher struct{}

// Visit implements ast.Visitor for memberPatcher.
func (memberPatcher) Visit(node *ast.Node) {
	m, ok := (*node).(*ast.MemberNode)
	if !ok {
		return
	}

	ast.Patch(node, &ast.CallNode{
		Callee:    &ast.IdentifierNode{Value: "member"},
		Arguments: []ast.Node{m.Node, m.Property},
	})
}

// divPatcher rewrites the / operator into truediv(left, right).
type divPatcher struct{}

// Visit implements ast.Visitor for divPatcher.
func (divPatcher) Visit(node *ast.Node) {
	bin, ok := (*node).(*ast.BinaryNode)
	if !ok || bin.Operator != "/" {
		return
	}

	ast.Patch(node, &ast.CallNode{
		Callee:    &ast.IdentifierNode{Value: "truediv"},
		Arguments: []ast.Node{bin.Left, bin.Right},
	})
}

// floorPatcher rewrites the % operator, which translate produces only for
// //, into floordiv(left, right).
type floorPatcher struct{}

// Visit implements ast.Visitor for floorPatcher.
func (floorPatcher) Visit(node *ast.Node) {
	bin, ok := (*node).(*ast.BinaryNode)
	if !ok || bin.Operator != "%" {
		return
	}

	ast.Patch(node, &ast.CallNode{
		Callee:    &ast.IdentifierNode{Value: "floordiv"},
		Arguments: []ast.Node{bin.Left, bin.Right},
	})
}

// trueDiv divides a by b. The result is always a float64.
func trueDiv(a, b any) (any, error) {
	x, xok := toFloat(a)
	y, yok := toFloat(b)

	if !xok || !yok || isText(a) || isText(b) {
		return nil, fmt.Errorf("%w for /: %T and %T", errOperand, a, b)
	}

	if y == 0 {
		return nil, errZeroDivision
	}

	return x / y, nil
}

// floorDiv divides a by b rounding toward negative infinity. The result is
// an int when both operands are integers and a float64 otherwise.
func floorDiv(a, b any) (any, error) {
	_, aFloat := a.(float64)
	_, bFloat := b.(float64)

	if !aFloat && !bFloat {
		x, xok := toIndex(a)
		y, yok := toIndex(b)

		if xok && yok && !isText(a) && !isText(b) {
			if y == 0 {
				return nil, errZeroDivision
			}

			q := x / y
			if (x%y != 0) && ((x < 0) != (y < 0)) {
				q--
			}

			return q, nil
		}
	}

	x, xok := toFloat(a)
	y, yok := toFloat(b)

	if !xok || !yok {
		return nil, fmt.Errorf("%w for //: %T and %T", errOperand, a, b)
	}

	if y == 0 {
		return nil, errZeroDivision
	}

	return math.Floor(x / y), nil
}

func isText(v any) bool {
	_, ok := v.(string)

	return ok
}
