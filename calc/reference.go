package calc

import (
	"iter"

	"github.com/midbel/xlcalc/formula"
	"github.com/midbel/xlcalc/grid"
	"github.com/midbel/xlcalc/layout"
	"github.com/midbel/xlcalc/value"
)

// CellRangeReference binds an identifier to a rectangle of cells of a sheet.
// Formula cells met while reading it are computed through the evaluation the
// reference belongs to.
type CellRangeReference struct {
	ident string
	rng   *layout.Range
	sheet *grid.Sheet
	eval  *evaluation
	skip  func(formula.Expr) bool
}

func (r *CellRangeReference) String() string {
	return r.ident
}

func (r *CellRangeReference) Range() *layout.Range {
	return r.rng
}

func (r *CellRangeReference) Sheet() string {
	return r.sheet.Name
}

func (r *CellRangeReference) Value() (value.Value, error) {
	return r.valueAt(r.rng.Starts)
}

// Len gives the number of cells of the range.
func (r *CellRangeReference) Len() int64 {
	return r.rng.Dimension().Count()
}

// Values yields the value of the cells of the range lying in the used part of
// the sheet, row by row. Empty cells of that part give blank values.
func (r *CellRangeReference) Values() iter.Seq2[value.Value, error] {
	return func(yield func(value.Value, error) bool) {
		if r.sheet.Size.Count() == 0 {
			return
		}
		rg, ok := r.rng.Intersect(r.sheet.Bounds())
		if !ok {
			return
		}
		for pos := range rg.Positions() {
			if r.skipped(pos) {
				continue
			}
			v, err := r.valueAt(pos)
			if !yield(v, err) || err != nil {
				return
			}
		}
	}
}

// Without gives a copy of the reference ignoring the cells whose formula
// matches skip.
func (r *CellRangeReference) Without(skip func(formula.Expr) bool) formula.Reference {
	x := *r
	x.skip = skip
	return &x
}

func (r *CellRangeReference) skipped(pos layout.Position) bool {
	if r.skip == nil {
		return false
	}
	c, ok := r.sheet.Cell(pos)
	if !ok || !c.IsFormula() {
		return false
	}
	expr, err := r.eval.engine.parse(c.Formula.Value())
	return err == nil && r.skip(expr)
}

func (r *CellRangeReference) valueAt(pos layout.Position) (value.Value, error) {
	c, ok := r.sheet.Cell(pos)
	if !ok {
		return value.Empty(), nil
	}
	return r.eval.cellValue(r.sheet, c)
}
