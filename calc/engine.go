package calc

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/oarkflow/log"

	"github.com/midbel/xlcalc/formula"
	"github.com/midbel/xlcalc/formula/builtins"
	"github.com/midbel/xlcalc/grid"
	"github.com/midbel/xlcalc/layout"
	"github.com/midbel/xlcalc/value"
)

// Engine computes the formulas of a workbook. An engine can evaluate formulas
// and define variables from several goroutines as long as the workbook is not
// modified meanwhile.
type Engine struct {
	file      *grid.File
	functions formula.FunctionTable

	mu        sync.RWMutex
	variables map[string]value.Value

	logger   *log.Logger
	cache    *exprCache
	metrics  *metrics
	memo     bool
	maxDepth int
}

// New creates an engine for the given workbook. A nil workbook is replaced by
// an empty one: only formulas without cell references can then be computed.
func New(file *grid.File, options ...Option) *Engine {
	opts := defaultOptions()
	for _, o := range options {
		o(opts)
	}
	if file == nil {
		file = grid.NewFile()
	}
	if opts.functions == nil {
		opts.functions = builtins.New()
	}
	e := Engine{
		file:      file,
		functions: opts.functions,
		variables: opts.variables,
		logger:    opts.logger,
		cache:     newCache(opts.cacheSize),
		metrics:   newMetrics(opts.registerer),
		memo:      opts.memo,
		maxDepth:  opts.maxDepth,
	}
	return &e
}

func (e *Engine) File() *grid.File {
	return e.file
}

// Define binds a name to a value. Names are looked up before cell addresses
// and without case.
func (e *Engine) Define(name string, val value.Value) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.variables[strings.ToLower(name)] = val
}

func (e *Engine) lookup(name string) (value.Value, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	v, ok := e.variables[strings.ToLower(name)]
	return v, ok
}

// Parse gives the tree of a formula. The leading = is optional.
func (e *Engine) Parse(text string) (formula.Expr, error) {
	return e.parse(formula.NewFormula(text).Value())
}

// Evaluate computes a formula that does not belong to any cell. Its
// references are resolved against the named sheet, the active sheet when
// name is empty.
func (e *Engine) Evaluate(sheet, text string) (value.Value, error) {
	var (
		sh  *grid.Sheet
		err error
	)
	if sheet != "" {
		sh, err = e.file.Sheet(sheet)
	} else if len(e.file.Sheets()) > 0 {
		sh, err = e.file.ActiveSheet()
	}
	if err != nil {
		return nil, &formula.InvalidReferenceError{
			Ident: sheet,
			Err:   err,
		}
	}
	expr, err := e.Parse(text)
	if err != nil {
		return nil, err
	}
	res, err := formula.Eval(expr, e.begin().frame(sh))
	if err != nil {
		return nil, err
	}
	return scalar(res), nil
}

// EvaluateCell computes the value of a cell. The address can be qualified by
// a sheet name, in which case sheet is ignored.
func (e *Engine) EvaluateCell(sheet, addr string) (value.Value, error) {
	pos, err := layout.ParsePosition(addr)
	if err != nil {
		return nil, &formula.InvalidReferenceError{
			Ident: addr,
			Err:   err,
		}
	}
	if pos.Sheet != "" {
		sheet = pos.Sheet
	}
	sh, err := e.file.Sheet(sheet)
	if err != nil {
		return nil, &formula.InvalidReferenceError{
			Ident: addr,
			Err:   err,
		}
	}
	cell, ok := sh.Cell(pos)
	if !ok {
		return value.Float(0), nil
	}
	res, err := e.begin().cellValue(sh, cell)
	if err != nil {
		return nil, err
	}
	return scalar(res), nil
}

// Recalculate computes every formula of the workbook, sheet by sheet, and
// stores the results in the cells. A cell that can not be computed gets the
// error marker matching its failure and keeps its formula. All the failures
// are returned together.
func (e *Engine) Recalculate() error {
	var (
		errs []error
		ev   = e.begin()
	)
	for _, sh := range e.file.Sheets() {
		for c := range sh.Cells() {
			if !c.IsFormula() {
				continue
			}
			pos := c.Position
			pos.Sheet = sh.Name

			res, err := ev.cellValue(sh, c)
			if err != nil {
				marker := formula.ErrorValue(err)
				e.logger.Warn().Err(err).Str("cell", pos.Addr()).Str("marker", marker.String()).Msg("formula can not be computed")
				e.metrics.failed(marker.String())
				c.Value = marker
				errs = append(errs, fmt.Errorf("%s: %w", pos.Addr(), err))
				continue
			}
			c.Value = res
		}
	}
	return errors.Join(errs...)
}

func (e *Engine) parse(text string) (formula.Expr, error) {
	if expr, ok := e.cache.Get(text); ok {
		e.metrics.hit()
		e.logger.Debug().Str("formula", text).Msg("formula found in cache")
		return expr, nil
	}
	e.metrics.miss()
	expr, err := formula.ParseFormula(text, e.functions)
	if err != nil {
		return nil, err
	}
	e.cache.Put(text, expr)
	return expr, nil
}
