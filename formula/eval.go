package formula

import (
	"math"

	"github.com/midbel/xlcalc/formula/op"
	"github.com/midbel/xlcalc/value"
)

// Eval computes the value of an expression. Coercion failures are returned as
// error values, structural failures (references, cycles, functions) as Go
// errors.
func Eval(expr Expr, ctx Resolver) (value.Value, error) {
	switch e := expr.(type) {
	case number:
		return value.Float(e.value), nil
	case literal:
		return value.Text(e.value), nil
	case boolean:
		return value.Boolean(e.value), nil
	case errorLiteral:
		return e.value, nil
	case unary:
		return evalUnary(e, ctx)
	case postfix:
		return evalPostfix(e, ctx)
	case binary:
		return evalBinary(e, ctx)
	case call:
		return evalCall(e, ctx)
	case reference:
		return evalReference(e, ctx)
	default:
		return nil, ErrEval
	}
}

func evalReference(e reference, ctx Resolver) (value.Value, error) {
	ref, err := bind(e, ctx)
	if err != nil {
		return nil, err
	}
	return ref.Value()
}

func bind(e reference, ctx Resolver) (Reference, error) {
	if e.ref != nil {
		return e.ref, nil
	}
	if ctx == nil {
		return nil, &InvalidReferenceError{
			Ident: e.ident,
		}
	}
	return ctx.Resolve(e.ident)
}

func evalUnary(e unary, ctx Resolver) (value.Value, error) {
	val, err := Eval(e.right, ctx)
	if err != nil || value.IsError(val) {
		return val, err
	}
	n, err := value.CastToFloat(val)
	if err != nil {
		return value.ErrValue, nil
	}
	switch e.op {
	case op.Add:
		return n, nil
	case op.Sub:
		return -n, nil
	default:
		return value.ErrValue, nil
	}
}

func evalPostfix(e postfix, ctx Resolver) (value.Value, error) {
	val, err := Eval(e.expr, ctx)
	if err != nil || value.IsError(val) {
		return val, err
	}
	n, err := value.CastToFloat(val)
	if err != nil {
		return value.ErrValue, nil
	}
	return n / 100, nil
}

func evalBinary(e binary, ctx Resolver) (value.Value, error) {
	left, err := Eval(e.left, ctx)
	if err != nil {
		return nil, err
	}
	right, err := Eval(e.right, ctx)
	if err != nil {
		return nil, err
	}
	if fail, ok := value.FirstError(left, right); ok {
		return fail, nil
	}
	switch e.op {
	case op.Add:
		return doMath(left, right, func(left, right float64) (float64, value.Value) {
			return left + right, nil
		})
	case op.Sub:
		return doMath(left, right, func(left, right float64) (float64, value.Value) {
			return left - right, nil
		})
	case op.Mul:
		return doMath(left, right, func(left, right float64) (float64, value.Value) {
			return left * right, nil
		})
	case op.Div:
		return doMath(left, right, func(left, right float64) (float64, value.Value) {
			if right == 0 {
				return 0, value.ErrDiv0
			}
			return left / right, nil
		})
	case op.Pow:
		return doMath(left, right, func(left, right float64) (float64, value.Value) {
			if left == 0 && right <= 0 {
				return 0, value.ErrNum
			}
			return math.Pow(left, right), nil
		})
	case op.Concat:
		return doConcat(left, right)
	case op.Eq:
		return value.Boolean(value.Compare(left, right) == 0), nil
	case op.Ne:
		return value.Boolean(value.Compare(left, right) != 0), nil
	case op.Lt:
		return value.Boolean(value.Compare(left, right) < 0), nil
	case op.Le:
		return value.Boolean(value.Compare(left, right) <= 0), nil
	case op.Gt:
		return value.Boolean(value.Compare(left, right) > 0), nil
	case op.Ge:
		return value.Boolean(value.Compare(left, right) >= 0), nil
	default:
		return value.ErrValue, nil
	}
}

func evalCall(e call, ctx Resolver) (value.Value, error) {
	if e.fn.Call == nil {
		return nil, &UnsupportedFunctionError{
			Name: e.name,
		}
	}
	args := make([]Arg, 0, len(e.args))
	for i := range e.args {
		args = append(args, NewArg(e.args[i], ctx))
	}
	return e.fn.Call(args)
}

func doMath(left, right value.Value, do func(left, right float64) (float64, value.Value)) (value.Value, error) {
	x, err := value.CastToFloat(left)
	if err != nil {
		return value.ErrValue, nil
	}
	y, err := value.CastToFloat(right)
	if err != nil {
		return value.ErrValue, nil
	}
	res, fail := do(float64(x), float64(y))
	if fail != nil {
		return fail, nil
	}
	if math.IsInf(res, 0) || math.IsNaN(res) {
		return value.ErrNum, nil
	}
	return value.Float(res), nil
}

func doConcat(left, right value.Value) (value.Value, error) {
	x, err := value.CastToText(left)
	if err != nil {
		return value.ErrValue, nil
	}
	y, err := value.CastToText(right)
	if err != nil {
		return value.ErrValue, nil
	}
	return x + y, nil
}
