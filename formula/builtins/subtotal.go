package builtins

import (
	"strconv"

	"github.com/midbel/xlcalc/formula"
	"github.com/midbel/xlcalc/value"
)

const subtotalName = "SUBTOTAL"

// subtotalFunc gives the aggregate selected by a SUBTOTAL function number.
// Numbers from 101 are the variants ignoring hidden rows. Rows are never
// hidden here so both sets behave the same.
func subtotalFunc(id int) (func(*Tally) value.Value, bool) {
	if id > 100 {
		id -= 100
	}
	switch id {
	case 1:
		return (*Tally).Average, true
	case 2:
		return (*Tally).Count, true
	case 3:
		return (*Tally).CountA, true
	case 4:
		return (*Tally).Max, true
	case 5:
		return (*Tally).Min, true
	case 6:
		return (*Tally).Product, true
	case 7:
		return (*Tally).Std, true
	case 8:
		return (*Tally).StdP, true
	case 9:
		return (*Tally).Sum, true
	case 10:
		return (*Tally).Var, true
	case 11:
		return (*Tally).VarP, true
	default:
		return nil, false
	}
}

// Subtotal aggregates its ranges with the function selected by its first
// argument. Cells computed by another SUBTOTAL are not counted.
func Subtotal(args []formula.Arg) (value.Value, error) {
	n, fail, err := toFloat(args[0])
	if err != nil || fail != nil {
		return fail, err
	}
	id := int(n)
	get, ok := subtotalFunc(id)
	if !ok {
		return nil, &formula.UnsupportedFunctionError{
			Name:   subtotalName,
			Reason: "function number " + strconv.Itoa(id),
		}
	}
	t, err := Collect(args[1:], skipSubtotal)
	if err != nil {
		return nil, err
	}
	return get(t), nil
}

func skipSubtotal(expr formula.Expr) bool {
	return formula.Calls(expr, subtotalName)
}
