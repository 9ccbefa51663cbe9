package formula

import (
	"fmt"
	"maps"

	"github.com/midbel/xlcalc/formula/op"
)

const (
	powLowest = iota
	powCmp
	powConcat
	powAdd
	powMul
	powPow
	powUnary
	powPercent
)

var defaultBindings = map[op.Op]int{
	op.Add:     powAdd,
	op.Sub:     powAdd,
	op.Mul:     powMul,
	op.Div:     powMul,
	op.Percent: powPercent,
	op.Pow:     powPow,
	op.Concat:  powConcat,
	op.Eq:      powCmp,
	op.Ne:      powCmp,
	op.Lt:      powCmp,
	op.Le:      powCmp,
	op.Gt:      powCmp,
	op.Ge:      powCmp,
}

func bindingPower(oper op.Op) int {
	return defaultBindings[oper]
}

type (
	PrefixFunc func(*Parser) (Expr, error)
	InfixFunc  func(*Parser, Expr) (Expr, error)
)

type Grammar struct {
	prefix   map[op.Op]PrefixFunc
	infix    map[op.Op]InfixFunc
	bindings map[op.Op]int
}

func (g *Grammar) Pow(kind op.Op) int {
	pow, ok := g.bindings[kind]
	if !ok {
		pow = powLowest
	}
	return pow
}

func (g *Grammar) Prefix(tok Token) (PrefixFunc, error) {
	fn, ok := g.prefix[tok.Type]
	if !ok {
		return nil, fmt.Errorf("unexpected token %s", tok)
	}
	return fn, nil
}

func (g *Grammar) Infix(tok Token) (InfixFunc, error) {
	fn, ok := g.infix[tok.Type]
	if !ok {
		return nil, fmt.Errorf("unsupported infix operator %s", tok)
	}
	return fn, nil
}

func (g *Grammar) RegisterInfix(kd op.Op, fn InfixFunc) {
	g.infix[kd] = fn
}

func (g *Grammar) RegisterPostfix(kd op.Op, fn InfixFunc) {
	g.infix[kd] = fn
}

func (g *Grammar) RegisterPrefix(kd op.Op, fn PrefixFunc) {
	g.prefix[kd] = fn
}

func (g *Grammar) RegisterBinding(kd op.Op, pow int) {
	g.bindings[kd] = pow
}

// FormulaGrammar gives the grammar of cell formulas. Each call builds a new
// grammar that can be extended without affecting other parsers.
func FormulaGrammar() *Grammar {
	g := Grammar{
		prefix:   make(map[op.Op]PrefixFunc),
		infix:    make(map[op.Op]InfixFunc),
		bindings: maps.Clone(defaultBindings),
	}
	g.RegisterPrefix(op.Ident, parseIdentifier)
	g.RegisterPrefix(op.Number, parseNumber)
	g.RegisterPrefix(op.Literal, parseLiteral)
	g.RegisterPrefix(op.Error, parseErrorLiteral)
	g.RegisterPrefix(op.Sub, parseUnary)
	g.RegisterPrefix(op.Add, parseUnary)
	g.RegisterPrefix(op.BegGrp, parseGroup)

	g.RegisterPostfix(op.Percent, parsePostfix)

	g.RegisterInfix(op.Add, parseBinary)
	g.RegisterInfix(op.Sub, parseBinary)
	g.RegisterInfix(op.Mul, parseBinary)
	g.RegisterInfix(op.Div, parseBinary)
	g.RegisterInfix(op.Concat, parseBinary)
	g.RegisterInfix(op.Pow, parseBinary)
	g.RegisterInfix(op.Eq, parseBinary)
	g.RegisterInfix(op.Ne, parseBinary)
	g.RegisterInfix(op.Lt, parseBinary)
	g.RegisterInfix(op.Le, parseBinary)
	g.RegisterInfix(op.Gt, parseBinary)
	g.RegisterInfix(op.Ge, parseBinary)

	return &g
}
