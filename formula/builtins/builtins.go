package builtins

import (
	"slices"
	"strings"

	"github.com/midbel/xlcalc/formula"
	"github.com/midbel/xlcalc/value"
)

// Registry is the table of functions available to formulas. Names are case
// insensitive.
type Registry struct {
	funcs map[string]formula.Builtin
}

// New gives a registry filled with all the builtin functions.
func New() *Registry {
	r := Registry{
		funcs: make(map[string]formula.Builtin),
	}
	r.registerAggregates()
	r.registerMath()
	r.registerLogic()
	r.registerText()
	return &r
}

func (r *Registry) Lookup(name string) (formula.Builtin, bool) {
	fn, ok := r.funcs[strings.ToUpper(name)]
	return fn, ok
}

// Register adds a function to the registry, replacing any function with the
// same name.
func (r *Registry) Register(fn formula.Builtin) {
	fn.Name = strings.ToUpper(fn.Name)
	r.funcs[fn.Name] = fn
}

func (r *Registry) Names() []string {
	var list []string
	for n := range r.funcs {
		list = append(list, n)
	}
	slices.Sort(list)
	return list
}

func (r *Registry) register(name string, minArgs, maxArgs int, call func([]formula.Arg) (value.Value, error)) {
	r.Register(formula.Builtin{
		Name: name,
		Min:  minArgs,
		Max:  maxArgs,
		Call: call,
	})
}

func (r *Registry) registerAggregates() {
	r.register("SUM", 1, -1, aggregate((*Tally).Sum))
	r.register("AVERAGE", 1, -1, aggregate((*Tally).Average))
	r.register("COUNT", 1, -1, aggregate((*Tally).Count))
	r.register("COUNTA", 1, -1, aggregate((*Tally).CountA))
	r.register("MAX", 1, -1, aggregate((*Tally).Max))
	r.register("MIN", 1, -1, aggregate((*Tally).Min))
	r.register("PRODUCT", 1, -1, aggregate((*Tally).Product))
	r.register("STDEV", 1, -1, aggregate((*Tally).Std))
	r.register("STDEV.S", 1, -1, aggregate((*Tally).Std))
	r.register("STDEVP", 1, -1, aggregate((*Tally).StdP))
	r.register("STDEV.P", 1, -1, aggregate((*Tally).StdP))
	r.register("VAR", 1, -1, aggregate((*Tally).Var))
	r.register("VAR.S", 1, -1, aggregate((*Tally).Var))
	r.register("VARP", 1, -1, aggregate((*Tally).VarP))
	r.register("VAR.P", 1, -1, aggregate((*Tally).VarP))
	r.register("COUNTBLANK", 1, 1, countBlank)
	r.register("SUBTOTAL", 2, -1, Subtotal)
}

func (r *Registry) registerMath() {
	r.register("ABS", 1, 1, abs)
	r.register("ROUND", 2, 2, round)
	r.register("INT", 1, 1, integer)
	r.register("MOD", 2, 2, mod)
	r.register("POWER", 2, 2, power)
	r.register("SQRT", 1, 1, sqrt)
	r.register("PI", 0, 0, pi)
}

func (r *Registry) registerLogic() {
	r.register("IF", 2, 3, ifElse)
	r.register("IFERROR", 2, 2, ifError)
	r.register("AND", 1, -1, and)
	r.register("OR", 1, -1, or)
	r.register("NOT", 1, 1, not)
	r.register("ISBLANK", 1, 1, isKind(value.IsBlank))
	r.register("ISERROR", 1, 1, isKind(value.IsError))
	r.register("ISNUMBER", 1, 1, isKind(value.IsNumber))
	r.register("ISTEXT", 1, 1, isKind(value.IsText))
}

func (r *Registry) registerText() {
	r.register("CONCATENATE", 1, -1, concatenate)
	r.register("CONCAT", 1, -1, concat)
	r.register("LEN", 1, 1, length)
	r.register("UPPER", 1, 1, upper)
	r.register("LOWER", 1, 1, lower)
	r.register("TRIM", 1, 1, trim)
	r.register("LEFT", 1, 2, left)
	r.register("RIGHT", 1, 2, right)
}

// argument helpers. The second value returned is an error value that should be
// given back as the result of the function.

func toFloat(a formula.Arg) (float64, value.Value, error) {
	v, err := a.Eval()
	if err != nil {
		return 0, nil, err
	}
	if value.IsError(v) {
		return 0, v, nil
	}
	n, err := value.CastToFloat(v)
	if err != nil {
		return 0, value.ErrValue, nil
	}
	return float64(n), nil, nil
}

func toText(a formula.Arg) (string, value.Value, error) {
	v, err := a.Eval()
	if err != nil {
		return "", nil, err
	}
	if value.IsError(v) {
		return "", v, nil
	}
	str, err := value.CastToText(v)
	if err != nil {
		return "", value.ErrValue, nil
	}
	return string(str), nil, nil
}

func toBool(a formula.Arg) (bool, value.Value, error) {
	v, err := a.Eval()
	if err != nil {
		return false, nil, err
	}
	if value.IsError(v) {
		return false, v, nil
	}
	b, err := value.CastToBool(v)
	if err != nil {
		return false, value.ErrValue, nil
	}
	return bool(b), nil, nil
}
