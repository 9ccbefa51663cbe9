package formula

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/midbel/xlcalc/formula/op"
	"github.com/midbel/xlcalc/value"
)

const xlfnPrefix = "_xlfn."

type Parser struct {
	scan *Scanner
	curr Token
	peek Token

	grammar   *Grammar
	functions FunctionTable
	resolver  Resolver
}

// ParseFormula parses a formula without binding its references: they are
// resolved when the expression is evaluated.
func ParseFormula(str string, functions FunctionTable) (Expr, error) {
	p := NewParser(functions, nil)
	return p.Parse(str)
}

// NewParser creates a parser looking up functions in the given table. When
// resolver is not nil, every external identifier is resolved with it while
// parsing.
func NewParser(functions FunctionTable, resolver Resolver) *Parser {
	p := Parser{
		grammar:   FormulaGrammar(),
		functions: functions,
		resolver:  resolver,
	}
	return &p
}

func (p *Parser) Parse(str string) (Expr, error) {
	p.scan = Scan(str)
	p.next()
	p.next()
	if p.done() {
		return nil, p.makeError("empty expression")
	}
	expr, err := p.parse(powLowest)
	if err != nil {
		return nil, err
	}
	if !p.done() {
		return nil, p.makeError("unexpected token after end of expression")
	}
	return expr, nil
}

func (p *Parser) parse(pow int) (Expr, error) {
	if err := p.valid(); err != nil {
		return nil, err
	}
	if p.done() {
		return nil, p.makeError("unexpected end of expression")
	}
	fn, err := p.grammar.Prefix(p.curr)
	if err != nil {
		return nil, p.makeError(err.Error())
	}
	left, err := fn(p)
	if err != nil {
		return nil, err
	}
	for !p.done() && pow < p.grammar.Pow(p.curr.Type) {
		if err := p.valid(); err != nil {
			return nil, err
		}
		fn, err := p.grammar.Infix(p.curr)
		if err != nil {
			return nil, p.makeError(err.Error())
		}
		left, err = fn(p, left)
		if err != nil {
			return nil, err
		}
	}
	return left, p.valid()
}

func (p *Parser) next() {
	p.curr = p.peek
	p.peek = p.scan.Scan()
}

func (p *Parser) done() bool {
	return p.is(op.EOF)
}

func (p *Parser) is(kind op.Op) bool {
	return p.curr.Type == kind
}

func (p *Parser) valid() error {
	if !p.is(op.Invalid) {
		return nil
	}
	if err := p.scan.Err(); err != nil {
		return err
	}
	return p.makeError("invalid token")
}

func (p *Parser) currentLiteral() string {
	return p.curr.Literal
}

func (p *Parser) makeError(msg string) error {
	return &ParseError{
		Formula: p.scan.input,
		Offset:  p.curr.Offset,
		Token:   p.curr.String(),
		Message: msg,
	}
}

func (p *Parser) lookup(name string) (Builtin, error) {
	var (
		fn Builtin
		ok bool
	)
	if p.functions != nil {
		fn, ok = p.functions.Lookup(name)
	}
	if !ok {
		return fn, &UnsupportedFunctionError{
			Name: name,
		}
	}
	return fn, nil
}

func parseCall(p *Parser) (Expr, error) {
	name := strings.ToUpper(strings.TrimPrefix(strings.ToLower(p.currentLiteral()), xlfnPrefix))
	fn, err := p.lookup(name)
	if err != nil {
		return nil, err
	}
	c := call{
		name: name,
		fn:   fn,
	}
	p.next()
	p.next()
	for !p.done() && !p.is(op.EndGrp) {
		arg, err := p.parse(powLowest)
		if err != nil {
			return nil, err
		}
		switch p.curr.Type {
		case op.Comma:
			p.next()
			if p.is(op.EndGrp) {
				return nil, p.makeError("missing argument in function call")
			}
		case op.EndGrp, op.EOF:
		default:
			return nil, p.makeError("unexpected token in function call")
		}
		c.args = append(c.args, arg)
	}
	if !p.is(op.EndGrp) {
		return nil, p.makeError("missing ')' at end of function call")
	}
	if !fn.Accept(len(c.args)) {
		return nil, p.makeError(fmt.Sprintf("%s: invalid number of arguments (%d)", name, len(c.args)))
	}
	p.next()
	return c, nil
}

func parseBinary(p *Parser, left Expr) (Expr, error) {
	bin := binary{
		left: left,
		op:   p.curr.Type,
	}
	p.next()
	right, err := p.parse(p.grammar.Pow(bin.op))
	if err != nil {
		return nil, err
	}
	bin.right = right
	return bin, nil
}

func parsePostfix(p *Parser, left Expr) (Expr, error) {
	defer p.next()
	expr := postfix{
		expr: left,
		op:   p.curr.Type,
	}
	return expr, nil
}

func parseUnary(p *Parser) (Expr, error) {
	una := unary{
		op: p.curr.Type,
	}
	p.next()
	right, err := p.parse(powUnary)
	if err != nil {
		return nil, err
	}
	una.right = right
	return una, nil
}

func parseGroup(p *Parser) (Expr, error) {
	p.next()
	expr, err := p.parse(powLowest)
	if err != nil {
		return nil, err
	}
	if !p.is(op.EndGrp) {
		return nil, p.makeError("missing ')' at end of expression")
	}
	p.next()
	return expr, nil
}

func parseNumber(p *Parser) (Expr, error) {
	x, err := strconv.ParseFloat(p.currentLiteral(), 64)
	if err != nil {
		return nil, p.makeError("malformed number")
	}
	defer p.next()
	n := number{
		value: x,
	}
	return n, nil
}

func parseLiteral(p *Parser) (Expr, error) {
	defer p.next()
	i := literal{
		value: p.currentLiteral(),
	}
	return i, nil
}

func parseErrorLiteral(p *Parser) (Expr, error) {
	e, ok := value.ErrorFromString(p.currentLiteral())
	if !ok {
		return nil, p.makeError("unknown error value")
	}
	defer p.next()
	return errorLiteral{value: e}, nil
}

func parseIdentifier(p *Parser) (Expr, error) {
	if p.peek.Type == op.BegGrp {
		return parseCall(p)
	}
	ident := p.currentLiteral()
	switch {
	case strings.EqualFold(ident, "true"):
		p.next()
		return boolean{value: true}, nil
	case strings.EqualFold(ident, "false"):
		p.next()
		return boolean{value: false}, nil
	default:
	}
	ref := reference{
		ident: ident,
	}
	if p.resolver != nil {
		r, err := p.resolver.Resolve(ident)
		if err != nil {
			return nil, err
		}
		ref.ref = r
	}
	p.next()
	return ref, nil
}
