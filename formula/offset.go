package formula

import (
	"strconv"
	"strings"

	"github.com/midbel/xlcalc/layout"
	"github.com/midbel/xlcalc/value"
)

// Offset copies an expression moving its relative references by the given
// number of lines and columns. Absolute parts ($A$1) are left unchanged. A
// reference moved outside of the sheet becomes #REF!.
func Offset(expr Expr, lines, columns int64) Expr {
	switch e := expr.(type) {
	case unary:
		e.right = Offset(e.right, lines, columns)
		return e
	case postfix:
		e.expr = Offset(e.expr, lines, columns)
		return e
	case binary:
		e.left = Offset(e.left, lines, columns)
		e.right = Offset(e.right, lines, columns)
		return e
	case call:
		args := make([]Expr, len(e.args))
		for i := range e.args {
			args[i] = Offset(e.args[i], lines, columns)
		}
		e.args = args
		return e
	case reference:
		ident, ok := shiftIdent(e.ident, lines, columns)
		if !ok {
			return errorLiteral{value: value.ErrRef}
		}
		return reference{
			ident: ident,
		}
	default:
		return expr
	}
}

func shiftIdent(ident string, lines, columns int64) (string, bool) {
	var prefix string
	if ix := strings.LastIndexByte(ident, '!'); ix >= 0 {
		prefix, ident = ident[:ix+1], ident[ix+1:]
	}
	parts := strings.Split(ident, ":")
	for i := range parts {
		str, ok := shiftCell(parts[i], lines, columns)
		if !ok {
			return "", false
		}
		parts[i] = str
	}
	return prefix + strings.Join(parts, ":"), true
}

func shiftCell(addr string, lines, columns int64) (string, bool) {
	var (
		str     = addr
		absCol  = strings.HasPrefix(str, "$")
		absLine bool
	)
	if absCol {
		str = str[1:]
	}
	col, offset := layout.ParseIndex(str)
	if offset == 0 {
		return addr, true
	}
	str = str[offset:]
	if absLine = strings.HasPrefix(str, "$"); absLine {
		str = str[1:]
	}
	line, err := strconv.ParseInt(str, 10, 64)
	if err != nil {
		return addr, true
	}
	if !absCol {
		col += columns
	}
	if !absLine {
		line += lines
	}
	if col < 1 || line < 1 || col > layout.MaxColumns || line > layout.MaxLines {
		return "", false
	}
	var buf strings.Builder
	if absCol {
		buf.WriteByte('$')
	}
	buf.WriteString(layout.ColumnName(col))
	if absLine {
		buf.WriteByte('$')
	}
	buf.WriteString(strconv.FormatInt(line, 10))
	return buf.String(), true
}
