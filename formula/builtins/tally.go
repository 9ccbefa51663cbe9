package builtins

import (
	"math"

	"github.com/midbel/xlcalc/formula"
	"github.com/midbel/xlcalc/value"
)

// Tally accumulates the values given to an aggregate function. Cells of a
// range only contribute their numbers while arguments given directly are
// coerced to number.
type Tally struct {
	Numbers []float64
	// Filled counts the non blank values met, whatever their type.
	Filled int

	fail value.Value
}

// Collect builds a Tally from the arguments of a function. When skip is not
// nil, the cells of the ranges whose formula matches it are left out.
func Collect(args []formula.Arg, skip func(formula.Expr) bool) (*Tally, error) {
	var t Tally
	for _, a := range args {
		var err error
		if a.IsReference() {
			err = t.collectRange(a, skip)
		} else {
			err = t.collectValue(a)
		}
		if err != nil {
			return nil, err
		}
	}
	return &t, nil
}

func (t *Tally) collectRange(a formula.Arg, skip func(formula.Expr) bool) error {
	ref, err := a.Reference()
	if err != nil {
		return err
	}
	if fr, ok := ref.(formula.FilterableReference); ok && skip != nil {
		ref = fr.Without(skip)
	}
	for v, err := range ref.Values() {
		if err != nil {
			return err
		}
		switch v := v.(type) {
		case value.Float:
			t.Numbers = append(t.Numbers, float64(v))
		case value.Date:
			t.Numbers = append(t.Numbers, v.Serial())
		case value.Error:
			t.failWith(v)
		default:
			if value.IsBlank(v) {
				continue
			}
		}
		t.Filled++
	}
	return nil
}

func (t *Tally) collectValue(a formula.Arg) error {
	v, err := a.Eval()
	if err != nil {
		return err
	}
	if value.IsBlank(v) {
		return nil
	}
	t.Filled++
	if e, ok := v.(value.Error); ok {
		t.failWith(e)
		return nil
	}
	n, err := value.CastToFloat(v)
	if err != nil {
		t.failWith(value.ErrValue)
		return nil
	}
	t.Numbers = append(t.Numbers, float64(n))
	return nil
}

func (t *Tally) failWith(v value.Value) {
	if t.fail == nil {
		t.fail = v
	}
}

// Err gives the first error value met while collecting.
func (t *Tally) Err() (value.Value, bool) {
	return t.fail, t.fail != nil
}

func (t *Tally) Sum() value.Value {
	if e, ok := t.Err(); ok {
		return e
	}
	return value.Float(t.sum())
}

func (t *Tally) Average() value.Value {
	if e, ok := t.Err(); ok {
		return e
	}
	if len(t.Numbers) == 0 {
		return value.ErrDiv0
	}
	return value.Float(t.sum() / float64(len(t.Numbers)))
}

func (t *Tally) Count() value.Value {
	return value.Float(len(t.Numbers))
}

func (t *Tally) CountA() value.Value {
	return value.Float(t.Filled)
}

func (t *Tally) Max() value.Value {
	if e, ok := t.Err(); ok {
		return e
	}
	if len(t.Numbers) == 0 {
		return value.Float(0)
	}
	res := t.Numbers[0]
	for _, n := range t.Numbers[1:] {
		res = max(res, n)
	}
	return value.Float(res)
}

func (t *Tally) Min() value.Value {
	if e, ok := t.Err(); ok {
		return e
	}
	if len(t.Numbers) == 0 {
		return value.Float(0)
	}
	res := t.Numbers[0]
	for _, n := range t.Numbers[1:] {
		res = min(res, n)
	}
	return value.Float(res)
}

func (t *Tally) Product() value.Value {
	if e, ok := t.Err(); ok {
		return e
	}
	if len(t.Numbers) == 0 {
		return value.Float(0)
	}
	res := 1.0
	for _, n := range t.Numbers {
		res *= n
	}
	return value.Float(res)
}

func (t *Tally) Var() value.Value {
	return t.variance(true, false)
}

func (t *Tally) VarP() value.Value {
	return t.variance(false, false)
}

func (t *Tally) Std() value.Value {
	return t.variance(true, true)
}

func (t *Tally) StdP() value.Value {
	return t.variance(false, true)
}

func (t *Tally) variance(sample, root bool) value.Value {
	if e, ok := t.Err(); ok {
		return e
	}
	size := len(t.Numbers)
	if sample {
		size--
	}
	if size <= 0 {
		return value.ErrDiv0
	}
	var (
		mean = t.sum() / float64(len(t.Numbers))
		diff float64
	)
	for _, n := range t.Numbers {
		diff += (n - mean) * (n - mean)
	}
	res := diff / float64(size)
	if root {
		res = math.Sqrt(res)
	}
	return value.Float(res)
}

func (t *Tally) sum() float64 {
	var total float64
	for _, n := range t.Numbers {
		total += n
	}
	return total
}

func aggregate(get func(*Tally) value.Value) func([]formula.Arg) (value.Value, error) {
	return func(args []formula.Arg) (value.Value, error) {
		t, err := Collect(args, nil)
		if err != nil {
			return nil, err
		}
		return get(t), nil
	}
}

// countBlank counts the empty cells and the empty texts. Cells outside the
// used part of a sheet are counted without being walked.
func countBlank(args []formula.Arg) (value.Value, error) {
	var (
		count int64
		seen  int64
		size  int64
		it    = args[0].Values()
	)
	if args[0].IsReference() {
		ref, err := args[0].Reference()
		if err != nil {
			return nil, err
		}
		if sr, ok := ref.(formula.SparseReference); ok {
			size = sr.Len()
		}
		it = ref.Values()
	}
	for v, err := range it {
		if err != nil {
			return nil, err
		}
		seen++
		if value.IsBlank(v) {
			count++
			continue
		}
		if str, ok := v.(value.Text); ok && str == "" {
			count++
		}
	}
	count += max(size-seen, 0)
	return value.Float(count), nil
}
