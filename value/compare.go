package value

import (
	"cmp"
	"strings"
)

// rank gives the position of a type in the spreadsheet ordering: numbers sort
// before text which sorts before booleans.
func rank(v Value) int {
	switch v.(type) {
	case Float, Date:
		return 0
	case Text:
		return 1
	case Boolean:
		return 2
	default:
		return 3
	}
}

// Compare orders two non error values. A blank operand takes the zero value of
// the type of the other operand.
func Compare(left, right Value) int {
	left, right = fillBlank(left, right), fillBlank(right, left)
	if r := cmp.Compare(rank(left), rank(right)); r != 0 {
		return r
	}
	switch x := left.(type) {
	case Text:
		return strings.Compare(strings.ToLower(string(x)), strings.ToLower(right.String()))
	case Boolean:
		y := right.(Boolean)
		if x == y {
			return 0
		}
		if !x {
			return -1
		}
		return 1
	case Float, Date:
		a, _ := CastToFloat(left)
		b, _ := CastToFloat(right)
		return cmp.Compare(a, b)
	default:
		return 0
	}
}

func Equal(left, right Value) bool {
	return Compare(left, right) == 0
}

func fillBlank(v, other Value) Value {
	if !IsBlank(v) {
		return v
	}
	switch other.(type) {
	case Text:
		return Text("")
	case Boolean:
		return Boolean(false)
	default:
		return Float(0)
	}
}
