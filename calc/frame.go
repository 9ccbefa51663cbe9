package calc

import (
	"fmt"
	"slices"
	"strings"

	"github.com/midbel/xlcalc/formula"
	"github.com/midbel/xlcalc/grid"
	"github.com/midbel/xlcalc/layout"
	"github.com/midbel/xlcalc/value"
)

// evaluation is the state of one top-level call to the engine. It is shared by
// every frame and reference created during that call and dropped when the
// call returns.
type evaluation struct {
	engine *Engine

	visiting map[string]struct{}
	keys     []string
	chain    []string
	memo     map[string]value.ScalarValue
}

func (e *Engine) begin() *evaluation {
	ev := evaluation{
		engine:   e,
		visiting: make(map[string]struct{}),
	}
	if e.memo {
		ev.memo = make(map[string]value.ScalarValue)
	}
	return &ev
}

// cellValue gives the value of a cell, computing it first when the cell holds
// a formula.
func (ev *evaluation) cellValue(sheet *grid.Sheet, cell *grid.Cell) (value.ScalarValue, error) {
	if !cell.IsFormula() {
		return cell.Get(), nil
	}
	pos := cell.Position
	pos.Sheet = sheet.Name

	key := pos.Key()
	if v, ok := ev.memo[key]; ok {
		return v, nil
	}
	if err := ev.enter(key, pos.Addr()); err != nil {
		return nil, err
	}
	defer ev.leave(key)

	expr, err := ev.engine.parse(cell.Formula.Value())
	if err != nil {
		return nil, err
	}
	ev.engine.logger.Debug().Str("cell", pos.Addr()).Int("depth", len(ev.keys)).Msg("evaluating formula cell")
	ev.engine.metrics.cellsEval.Inc()

	res, err := formula.Eval(expr, ev.frame(sheet))
	if err != nil {
		return nil, err
	}
	val := scalar(res)
	if ev.memo != nil {
		ev.memo[key] = val
	}
	return val, nil
}

// enter marks a cell as being computed. Meeting a cell already in the set
// means the formulas depend on each other.
func (ev *evaluation) enter(key, addr string) error {
	if _, ok := ev.visiting[key]; ok {
		ix := slices.Index(ev.keys, key)
		chain := append(slices.Clone(ev.chain[ix:]), addr)
		ev.engine.logger.Debug().Str("cell", addr).Str("chain", strings.Join(chain, " -> ")).Msg("circular reference detected")
		return &formula.CircularReferenceError{
			Chain: chain,
		}
	}
	if len(ev.keys) >= ev.engine.maxDepth {
		ev.engine.logger.Debug().Str("cell", addr).Int("depth", len(ev.keys)).Msg("maximum depth reached")
		return &formula.CircularReferenceError{
			Chain: append(slices.Clone(ev.chain), addr),
		}
	}
	ev.visiting[key] = struct{}{}
	ev.keys = append(ev.keys, key)
	ev.chain = append(ev.chain, addr)
	return nil
}

func (ev *evaluation) leave(key string) {
	delete(ev.visiting, key)
	if n := len(ev.keys); n > 0 {
		ev.keys = ev.keys[:n-1]
		ev.chain = ev.chain[:n-1]
	}
}

func (ev *evaluation) frame(sheet *grid.Sheet) formula.Resolver {
	return frame{
		evaluation: ev,
		sheet:      sheet,
	}
}

// frame resolves the identifiers of a formula: variables first, then cells
// of the sheet owning the formula or of the sheet named by the identifier.
type frame struct {
	*evaluation
	sheet *grid.Sheet
}

func (f frame) Resolve(ident string) (formula.Reference, error) {
	if v, ok := f.engine.lookup(ident); ok {
		return formula.Constant(ident, v), nil
	}
	rg, err := layout.ParseRange(ident)
	if err != nil {
		return nil, &formula.InvalidReferenceError{
			Ident: ident,
			Err:   err,
		}
	}
	sheet := f.sheet
	if name := rg.Sheet(); name != "" {
		sheet, err = f.engine.file.Sheet(name)
		if err != nil {
			return nil, &formula.InvalidReferenceError{
				Ident: ident,
				Err:   err,
			}
		}
	}
	if sheet == nil {
		return nil, &formula.InvalidReferenceError{
			Ident: ident,
			Err:   fmt.Errorf("no sheet to resolve reference"),
		}
	}
	ref := CellRangeReference{
		ident: ident,
		rng:   rg,
		sheet: sheet,
		eval:  f.evaluation,
	}
	return &ref, nil
}

// scalar flattens the result of a formula into a value storable in a cell. A
// blank result is displayed as zero.
func scalar(v value.Value) value.ScalarValue {
	switch v := v.(type) {
	case nil, value.Blank:
		return value.Float(0)
	case value.ScalarValue:
		return v
	default:
		return value.ErrValue
	}
}
