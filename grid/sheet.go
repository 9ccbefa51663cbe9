package grid

import (
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/midbel/xlcalc/formula"
	"github.com/midbel/xlcalc/layout"
	"github.com/midbel/xlcalc/value"
)

// Cell holds either a literal value or a formula. For a formula cell, Value is
// the result of the last computation. Format is the number format used to
// display the value, empty for the general one.
type Cell struct {
	layout.Position

	Formula formula.Formula
	Value   value.ScalarValue
	Format  string
}

func (c *Cell) IsFormula() bool {
	return c.Formula.IsFormula()
}

func (c *Cell) Get() value.ScalarValue {
	if c.Value == nil {
		return value.Empty()
	}
	return c.Value
}

// Raw gives the text a user would type in the cell.
func (c *Cell) Raw() string {
	if c.IsFormula() {
		return c.Formula.String()
	}
	return c.Get().String()
}

type Row struct {
	Line  int64
	Cells []*Cell
}

func (r *Row) Values() []value.ScalarValue {
	var list []value.ScalarValue
	for i := range r.Cells {
		list = append(list, r.Cells[i].Get())
	}
	return list
}

func (r *Row) cloneCells() []*Cell {
	var cells []*Cell
	for i := range r.Cells {
		c := *r.Cells[i]
		cells = append(cells, &c)
	}
	return cells
}

type SheetState int8

const (
	StateVisible SheetState = 1 << iota
	StateHidden
	StateVeryHidden
)

func ParseState(str string) SheetState {
	switch str {
	case "hidden":
		return StateHidden
	case "veryHidden":
		return StateVeryHidden
	default:
		return StateVisible
	}
}

func (s SheetState) String() string {
	switch s {
	case StateHidden:
		return "hidden"
	case StateVeryHidden:
		return "veryHidden"
	default:
		return "visible"
	}
}

type Sheet struct {
	Name   string
	Index  int
	Active bool
	State  SheetState
	Size   layout.Dimension

	rows []*Row
}

func NewSheet(name string) *Sheet {
	s := Sheet{
		Name:  name,
		State: StateVisible,
	}
	return &s
}

// Cell gives the cell at the given position. The sheet part of the position
// is ignored.
func (s *Sheet) Cell(pos layout.Position) (*Cell, bool) {
	rix, ok := s.searchRow(pos.Line)
	if !ok {
		return nil, false
	}
	row := s.rows[rix]
	cix, ok := searchCell(row, pos.Column)
	if !ok {
		return nil, false
	}
	return row.Cells[cix], true
}

// Set assigns a cell from its textual content. Text starting with = is a
// formula, anything else is parsed as a literal value.
func (s *Sheet) Set(addr, raw string) error {
	pos, err := layout.ParsePosition(addr)
	if err != nil {
		return err
	}
	if pos.Sheet != "" && !strings.EqualFold(pos.Sheet, s.Name) {
		return fmt.Errorf("%s: address does not belong to sheet %s", addr, s.Name)
	}
	if str := strings.TrimSpace(raw); strings.HasPrefix(str, "=") {
		s.SetFormula(pos, formula.NewFormula(str))
		return nil
	}
	s.SetValue(pos, value.Parse(raw))
	return nil
}

// SetValue stores a literal value, removing any formula the cell had.
func (s *Sheet) SetValue(pos layout.Position, val value.ScalarValue) {
	c := s.cellAt(pos)
	c.Formula = formula.Formula{}
	c.Value = val
}

// SetFormat sets the number format used to display the value of a cell.
func (s *Sheet) SetFormat(pos layout.Position, code string) {
	c := s.cellAt(pos)
	c.Format = code
}

// NumberFormat gives the number format of the cell at pos. It is empty when
// the cell does not exist or uses the general format.
func (s *Sheet) NumberFormat(pos layout.Position) string {
	c, ok := s.Cell(pos)
	if !ok {
		return ""
	}
	return c.Format
}

// SetFormula stores a formula. The previous value of the cell is kept as
// the cached result until the sheet is computed again.
func (s *Sheet) SetFormula(pos layout.Position, f formula.Formula) {
	if !f.IsFormula() {
		s.SetValue(pos, value.Parse(f.Value()))
		return
	}
	c := s.cellAt(pos)
	c.Formula = f
}

// Clear removes the cell at the given position.
func (s *Sheet) Clear(pos layout.Position) {
	rix, ok := s.searchRow(pos.Line)
	if !ok {
		return
	}
	row := s.rows[rix]
	if cix, ok := searchCell(row, pos.Column); ok {
		row.Cells = slices.Delete(row.Cells, cix, cix+1)
	}
	if len(row.Cells) == 0 {
		s.rows = slices.Delete(s.rows, rix, rix+1)
	}
}

// Append adds a row of literal values after the last row of the sheet.
func (s *Sheet) Append(values []value.ScalarValue) {
	line := s.Size.Lines + 1
	for i := range values {
		pos := layout.Position{
			Line:   line,
			Column: int64(i) + 1,
		}
		s.SetValue(pos, values[i])
	}
	if len(values) == 0 {
		s.Size.Lines = line
	}
}

// Cells walks the cells of the sheet in row-major order.
func (s *Sheet) Cells() iter.Seq[*Cell] {
	return func(yield func(*Cell) bool) {
		for _, r := range s.rows {
			for _, c := range r.Cells {
				if !yield(c) {
					return
				}
			}
		}
	}
}

// Rows gives dense rows from A1 to the bottom right corner of the sheet. Holes
// are filled with blank values.
func (s *Sheet) Rows() iter.Seq[[]value.ScalarValue] {
	return func(yield func([]value.ScalarValue) bool) {
		var ix int
		for line := int64(1); line <= s.Size.Lines; line++ {
			row := make([]value.ScalarValue, s.Size.Columns)
			for i := range row {
				row[i] = value.Empty()
			}
			if ix < len(s.rows) && s.rows[ix].Line == line {
				for _, c := range s.rows[ix].Cells {
					row[c.Column-1] = c.Get()
				}
				ix++
			}
			if !yield(row) {
				return
			}
		}
	}
}

func (s *Sheet) Bounds() *layout.Range {
	starts := layout.Position{
		Sheet:  s.Name,
		Line:   1,
		Column: 1,
	}
	ends := layout.Position{
		Sheet:  s.Name,
		Line:   max(s.Size.Lines, 1),
		Column: max(s.Size.Columns, 1),
	}
	return layout.NewRange(starts, ends)
}

func (s *Sheet) Status() string {
	return s.State.String()
}

func (s *Sheet) copyFrom(other *Sheet, mode CopyMode) {
	for _, r := range other.rows {
		x := Row{
			Line:  r.Line,
			Cells: r.cloneCells(),
		}
		for _, c := range x.Cells {
			if mode&CopyFormula == 0 {
				c.Formula = formula.Formula{}
			}
			if mode&CopyValue == 0 && c.IsFormula() {
				c.Value = nil
			}
		}
		if mode&CopyValue == 0 {
			x.Cells = slices.DeleteFunc(x.Cells, func(c *Cell) bool {
				return !c.IsFormula()
			})
		}
		if len(x.Cells) > 0 {
			s.rows = append(s.rows, &x)
		}
	}
	s.Size = other.Size
}

func (s *Sheet) cellAt(pos layout.Position) *Cell {
	rix, ok := s.searchRow(pos.Line)
	if !ok {
		r := Row{
			Line: pos.Line,
		}
		s.rows = slices.Insert(s.rows, rix, &r)
	}
	row := s.rows[rix]
	cix, ok := searchCell(row, pos.Column)
	if !ok {
		c := Cell{
			Position: layout.Position{
				Line:   pos.Line,
				Column: pos.Column,
			},
		}
		row.Cells = slices.Insert(row.Cells, cix, &c)
	}
	s.Size = s.Size.Max(layout.Dimension{
		Lines:   pos.Line,
		Columns: pos.Column,
	})
	return row.Cells[cix]
}

func (s *Sheet) searchRow(line int64) (int, bool) {
	return slices.BinarySearchFunc(s.rows, line, func(r *Row, line int64) int {
		return int(r.Line - line)
	})
}

func searchCell(row *Row, column int64) (int, bool) {
	return slices.BinarySearchFunc(row.Cells, column, func(c *Cell, column int64) int {
		return int(c.Column - column)
	})
}
