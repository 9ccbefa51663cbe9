package builtins

import (
	"math"

	"github.com/midbel/xlcalc/formula"
	"github.com/midbel/xlcalc/value"
)

// maxDigits is the largest number of digits a float64 can be rounded to.
const maxDigits = 308

func result(n float64) value.Value {
	if math.IsInf(n, 0) || math.IsNaN(n) {
		return value.ErrNum
	}
	return value.Float(n)
}

func unaryMath(a formula.Arg, do func(float64) value.Value) (value.Value, error) {
	n, fail, err := toFloat(a)
	if err != nil || fail != nil {
		return fail, err
	}
	return do(n), nil
}

func binaryMath(args []formula.Arg, do func(float64, float64) value.Value) (value.Value, error) {
	x, fail, err := toFloat(args[0])
	if err != nil || fail != nil {
		return fail, err
	}
	y, fail, err := toFloat(args[1])
	if err != nil || fail != nil {
		return fail, err
	}
	return do(x, y), nil
}

func abs(args []formula.Arg) (value.Value, error) {
	return unaryMath(args[0], func(n float64) value.Value {
		return value.Float(math.Abs(n))
	})
}

func integer(args []formula.Arg) (value.Value, error) {
	return unaryMath(args[0], func(n float64) value.Value {
		return value.Float(math.Floor(n))
	})
}

func sqrt(args []formula.Arg) (value.Value, error) {
	return unaryMath(args[0], func(n float64) value.Value {
		if n < 0 {
			return value.ErrNum
		}
		return value.Float(math.Sqrt(n))
	})
}

// round rounds half away from zero. A negative number of digits rounds on the
// left of the decimal point.
func round(args []formula.Arg) (value.Value, error) {
	return binaryMath(args, func(n, digits float64) value.Value {
		digits = math.Trunc(digits)
		if digits > maxDigits {
			return result(n)
		}
		if digits < -maxDigits {
			return value.Float(0)
		}
		scale := math.Pow(10, digits)
		if r := math.Round(n*scale) / scale; !math.IsInf(r, 0) && !math.IsNaN(r) {
			return value.Float(r)
		}
		return result(n)
	})
}

// mod gives a result with the sign of the divisor.
func mod(args []formula.Arg) (value.Value, error) {
	return binaryMath(args, func(n, div float64) value.Value {
		if div == 0 {
			return value.ErrDiv0
		}
		return result(n - div*math.Floor(n/div))
	})
}

func power(args []formula.Arg) (value.Value, error) {
	return binaryMath(args, func(n, exp float64) value.Value {
		if n == 0 && exp <= 0 {
			return value.ErrNum
		}
		return result(math.Pow(n, exp))
	})
}

func pi(_ []formula.Arg) (value.Value, error) {
	return value.Float(math.Pi), nil
}
