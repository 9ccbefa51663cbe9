package formula

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/midbel/xlcalc/formula/op"
	"github.com/midbel/xlcalc/value"
)

// Expr is a node of a parsed formula. The set of nodes is closed: every
// implementation lives in this file and Eval knows all of them.
type Expr interface {
	fmt.Stringer
}

type number struct {
	value float64
}

func NewNumber(f float64) Expr {
	return number{
		value: f,
	}
}

func (n number) String() string {
	return strconv.FormatFloat(n.value, 'f', -1, 64)
}

type literal struct {
	value string
}

func NewLiteral(str string) Expr {
	return literal{
		value: str,
	}
}

func (i literal) String() string {
	return fmt.Sprintf("\"%s\"", strings.ReplaceAll(i.value, "\"", "\"\""))
}

type boolean struct {
	value bool
}

func (b boolean) String() string {
	return value.Boolean(b.value).String()
}

type errorLiteral struct {
	value value.Error
}

func (e errorLiteral) String() string {
	return e.value.String()
}

type unary struct {
	right Expr
	op    op.Op
}

func NewUnary(right Expr, oper op.Op) Expr {
	return unary{
		right: right,
		op:    oper,
	}
}

func (u unary) String() string {
	return op.Symbol(u.op) + wrap(u.right, powUnary, false)
}

type postfix struct {
	expr Expr
	op   op.Op
}

func (p postfix) String() string {
	return wrap(p.expr, powPercent, false) + op.Symbol(p.op)
}

type binary struct {
	left  Expr
	right Expr
	op    op.Op
}

func NewBinary(left, right Expr, oper op.Op) Expr {
	return binary{
		left:  left,
		right: right,
		op:    oper,
	}
}

func (b binary) String() string {
	pow := bindingPower(b.op)
	return fmt.Sprintf("%s%s%s", wrap(b.left, pow, false), op.Symbol(b.op), wrap(b.right, pow, true))
}

type call struct {
	name string
	fn   Builtin
	args []Expr
}

func (c call) String() string {
	var args []string
	for i := range c.args {
		args = append(args, c.args[i].String())
	}
	return fmt.Sprintf("%s(%s)", c.name, strings.Join(args, ","))
}

// reference is an external identifier. ref is set when the identifier was
// bound while parsing, otherwise it is resolved when evaluated.
type reference struct {
	ident string
	ref   Reference
}

func NewReference(ident string) Expr {
	return reference{
		ident: ident,
	}
}

func (r reference) String() string {
	return r.ident
}

// wrap renders a sub expression, adding parenthesis when its binding power is
// lower than the one of its parent. right is set for the right operand of a
// binary expression since operators are left associative.
func wrap(expr Expr, pow int, right bool) string {
	var inner int
	switch e := expr.(type) {
	case binary:
		inner = bindingPower(e.op)
	case unary:
		inner = powUnary
	default:
		return expr.String()
	}
	if inner < pow || (right && inner == pow) {
		return "(" + expr.String() + ")"
	}
	return expr.String()
}

// Dump gives a representation of the tree, mostly useful for debugging.
func Dump(expr Expr) string {
	var str strings.Builder
	dumpExpr(&str, expr)
	return str.String()
}

func dumpExpr(w *strings.Builder, expr Expr) {
	switch e := expr.(type) {
	case number:
		fmt.Fprintf(w, "number(%s)", e)
	case literal:
		fmt.Fprintf(w, "literal(%s)", e.value)
	case boolean:
		fmt.Fprintf(w, "boolean(%s)", e)
	case errorLiteral:
		fmt.Fprintf(w, "error(%s)", e)
	case unary:
		w.WriteString("unary(")
		dumpExpr(w, e.right)
		fmt.Fprintf(w, ", %s)", op.Symbol(e.op))
	case postfix:
		w.WriteString("postfix(")
		dumpExpr(w, e.expr)
		fmt.Fprintf(w, ", %s)", op.Symbol(e.op))
	case binary:
		w.WriteString("binary(")
		dumpExpr(w, e.left)
		w.WriteString(", ")
		dumpExpr(w, e.right)
		fmt.Fprintf(w, ", %s)", op.Symbol(e.op))
	case call:
		fmt.Fprintf(w, "call(%s", e.name)
		for _, a := range e.args {
			w.WriteString(", ")
			dumpExpr(w, a)
		}
		w.WriteString(")")
	case reference:
		fmt.Fprintf(w, "reference(%s)", e.ident)
	default:
		w.WriteString("unknown")
	}
}

// References lists the identifiers used by an expression in the order they
// appear.
func References(expr Expr) []string {
	var list []string
	Walk(expr, func(e Expr) {
		if r, ok := e.(reference); ok {
			list = append(list, r.ident)
		}
	})
	return list
}

// Calls reports whether expr, or one of its sub expressions, calls the named
// function.
func Calls(expr Expr, name string) bool {
	var found bool
	Walk(expr, func(e Expr) {
		if c, ok := e.(call); ok && strings.EqualFold(c.name, name) {
			found = true
		}
	})
	return found
}

// Walk visits expr and all its sub expressions, parents first.
func Walk(expr Expr, visit func(Expr)) {
	visit(expr)
	switch e := expr.(type) {
	case unary:
		Walk(e.right, visit)
	case postfix:
		Walk(e.expr, visit)
	case binary:
		Walk(e.left, visit)
		Walk(e.right, visit)
	case call:
		for _, a := range e.args {
			Walk(a, visit)
		}
	default:
	}
}
