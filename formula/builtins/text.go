package builtins

import (
	"strings"
	"unicode/utf8"

	"github.com/midbel/xlcalc/formula"
	"github.com/midbel/xlcalc/value"
)

func concatenate(args []formula.Arg) (value.Value, error) {
	var str strings.Builder
	for _, a := range args {
		s, fail, err := toText(a)
		if err != nil || fail != nil {
			return fail, err
		}
		str.WriteString(s)
	}
	return value.Text(str.String()), nil
}

// concat differs from concatenate by joining all the cells of its ranges.
func concat(args []formula.Arg) (value.Value, error) {
	var str strings.Builder
	for _, a := range args {
		for v, err := range a.Values() {
			if err != nil {
				return nil, err
			}
			if value.IsError(v) {
				return v, nil
			}
			if value.IsBlank(v) {
				continue
			}
			s, err := value.CastToText(v)
			if err != nil {
				return value.ErrValue, nil
			}
			str.WriteString(string(s))
		}
	}
	return value.Text(str.String()), nil
}

func length(args []formula.Arg) (value.Value, error) {
	return textFunc(args[0], func(str string) value.Value {
		return value.Float(utf8.RuneCountInString(str))
	})
}

func upper(args []formula.Arg) (value.Value, error) {
	return textFunc(args[0], func(str string) value.Value {
		return value.Text(strings.ToUpper(str))
	})
}

func lower(args []formula.Arg) (value.Value, error) {
	return textFunc(args[0], func(str string) value.Value {
		return value.Text(strings.ToLower(str))
	})
}

// trim removes the leading and trailing spaces and collapses the inner runs
// of spaces to a single one.
func trim(args []formula.Arg) (value.Value, error) {
	return textFunc(args[0], func(str string) value.Value {
		return value.Text(strings.Join(strings.Fields(str), " "))
	})
}

func left(args []formula.Arg) (value.Value, error) {
	return substring(args, func(rs []rune, n int) []rune {
		return rs[:n]
	})
}

func right(args []formula.Arg) (value.Value, error) {
	return substring(args, func(rs []rune, n int) []rune {
		return rs[len(rs)-n:]
	})
}

func substring(args []formula.Arg, cut func([]rune, int) []rune) (value.Value, error) {
	str, fail, err := toText(args[0])
	if err != nil || fail != nil {
		return fail, err
	}
	var (
		rs   = []rune(str)
		size = 1
	)
	if len(args) > 1 {
		n, fail, err := toFloat(args[1])
		if err != nil || fail != nil {
			return fail, err
		}
		if n < 0 {
			return value.ErrValue, nil
		}
		size = int(min(n, float64(len(rs))))
	}
	size = min(size, len(rs))
	return value.Text(string(cut(rs, size))), nil
}

func textFunc(a formula.Arg, do func(string) value.Value) (value.Value, error) {
	str, fail, err := toText(a)
	if err != nil || fail != nil {
		return fail, err
	}
	return do(str), nil
}
