package builtins

import (
	"github.com/midbel/xlcalc/formula"
	"github.com/midbel/xlcalc/value"
)

// ifElse only evaluates the branch selected by its condition.
func ifElse(args []formula.Arg) (value.Value, error) {
	ok, fail, err := toBool(args[0])
	if err != nil || fail != nil {
		return fail, err
	}
	if ok {
		return args[1].Eval()
	}
	if len(args) < 3 {
		return value.Boolean(false), nil
	}
	return args[2].Eval()
}

func ifError(args []formula.Arg) (value.Value, error) {
	v, err := args[0].Eval()
	if err != nil {
		return nil, err
	}
	if value.IsError(v) {
		return args[1].Eval()
	}
	return v, nil
}

func and(args []formula.Arg) (value.Value, error) {
	return reduceBool(args, true, func(acc, b bool) bool {
		return acc && b
	})
}

func or(args []formula.Arg) (value.Value, error) {
	return reduceBool(args, false, func(acc, b bool) bool {
		return acc || b
	})
}

// reduceBool combines the logical values of its arguments. Text found in a
// range is ignored, a function given no logical value at all is #VALUE!.
func reduceBool(args []formula.Arg, init bool, do func(bool, bool) bool) (value.Value, error) {
	var (
		acc   = init
		count int
	)
	for _, a := range args {
		if !a.IsReference() {
			b, fail, err := toBool(a)
			if err != nil || fail != nil {
				return fail, err
			}
			acc = do(acc, b)
			count++
			continue
		}
		for v, err := range a.Values() {
			if err != nil {
				return nil, err
			}
			switch v := v.(type) {
			case value.Error:
				return v, nil
			case value.Boolean, value.Float:
				b, _ := value.CastToBool(v)
				acc = do(acc, bool(b))
				count++
			default:
			}
		}
	}
	if count == 0 {
		return value.ErrValue, nil
	}
	return value.Boolean(acc), nil
}

func not(args []formula.Arg) (value.Value, error) {
	b, fail, err := toBool(args[0])
	if err != nil || fail != nil {
		return fail, err
	}
	return value.Boolean(!b), nil
}

func isKind(is func(value.Value) bool) func([]formula.Arg) (value.Value, error) {
	return func(args []formula.Arg) (value.Value, error) {
		v, err := args[0].Eval()
		if err != nil {
			return nil, err
		}
		return value.Boolean(is(v)), nil
	}
}
