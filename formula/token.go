package formula

import (
	"fmt"

	"github.com/midbel/xlcalc/formula/op"
)

type Token struct {
	Literal string
	Type    op.Op
	Offset  int
}

func (t Token) String() string {
	var str string
	switch t.Type {
	case op.Invalid:
		return fmt.Sprintf("<invalid(%s)>", t.Literal)
	case op.EOF:
		return "<eof>"
	case op.Ident:
		str = "identifier"
	case op.Number:
		str = "number"
	case op.Literal:
		str = "literal"
	case op.Error:
		str = "error"
	case op.Add:
		return "<add>"
	case op.Sub:
		return "<subtract>"
	case op.Mul:
		return "<multiply>"
	case op.Div:
		return "<divide>"
	case op.Percent:
		return "<percent>"
	case op.Pow:
		return "<power>"
	case op.Concat:
		return "<concat>"
	case op.Eq:
		return "<equal>"
	case op.Ne:
		return "<notequal>"
	case op.Lt:
		return "<lesser>"
	case op.Le:
		return "<lesseq>"
	case op.Gt:
		return "<greater>"
	case op.Ge:
		return "<greateq>"
	case op.Comma:
		return "<comma>"
	case op.BegGrp:
		return "<beg-group>"
	case op.EndGrp:
		return "<end-group>"
	}
	return fmt.Sprintf("%s(%s)", str, t.Literal)
}
