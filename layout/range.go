package layout

import (
	"fmt"
	"iter"
	"strings"
)

type Range struct {
	Starts Position
	Ends   Position
}

func NewRange(starts, ends Position) *Range {
	return &Range{
		Starts: starts,
		Ends:   ends,
	}
}

// ParseRange parses a single cell or a span of cells, optionally qualified by
// a sheet name: A1, $A$1:B2, Sheet2!C3, 'My Sheet'!A1:B4. The returned range is
// normalized.
func ParseRange(str string) (*Range, error) {
	sheet, rest, err := SplitSheet(str)
	if err != nil {
		return nil, err
	}
	fst, lst, ok := strings.Cut(rest, ":")
	starts, err := parseCell(fst)
	if err != nil {
		return nil, err
	}
	ends := starts
	if ok {
		other, addr, err := SplitSheet(lst)
		if err != nil {
			return nil, err
		}
		if other != "" && !strings.EqualFold(other, sheet) {
			return nil, fmt.Errorf("%w: %q - range spans multiple sheets", ErrAddress, str)
		}
		if ends, err = parseCell(addr); err != nil {
			return nil, err
		}
	}
	starts.Sheet = sheet
	ends.Sheet = sheet
	return NewRange(starts, ends).Normalize(), nil
}

func (r *Range) Sheet() string {
	return r.Starts.Sheet
}

func (r *Range) Single() bool {
	return r.Starts.Equal(r.Ends)
}

func (r *Range) Contains(pos Position) bool {
	ok := pos.Line >= r.Starts.Line && pos.Line <= r.Ends.Line
	if !ok {
		return false
	}
	return pos.Column >= r.Starts.Column && pos.Column <= r.Ends.Column
}

func (r *Range) Width() int64 {
	return r.Ends.Column - r.Starts.Column + 1
}

func (r *Range) Height() int64 {
	return r.Ends.Line - r.Starts.Line + 1
}

func (r *Range) Dimension() Dimension {
	return Dimension{
		Lines:   r.Height(),
		Columns: r.Width(),
	}
}

func (r *Range) String() string {
	if r.Single() {
		return r.Starts.Addr()
	}
	ends := r.Ends
	ends.Sheet = ""
	return fmt.Sprintf("%s:%s", r.Starts.Addr(), ends.Addr())
}

func (r *Range) Normalize() *Range {
	x := NewRange(r.Starts, r.Ends)
	x.Starts.Line = min(r.Starts.Line, r.Ends.Line)
	x.Starts.Column = min(r.Starts.Column, r.Ends.Column)
	x.Ends.Line = max(r.Starts.Line, r.Ends.Line)
	x.Ends.Column = max(r.Starts.Column, r.Ends.Column)
	return x
}

// Positions walks the range in row-major order: left to right, then top to
// bottom.
func (r *Range) Positions() iter.Seq[Position] {
	it := func(yield func(Position) bool) {
		for line := r.Starts.Line; line <= r.Ends.Line; line++ {
			for col := r.Starts.Column; col <= r.Ends.Column; col++ {
				pos := Position{
					Sheet:  r.Starts.Sheet,
					Line:   line,
					Column: col,
				}
				if !yield(pos) {
					return
				}
			}
		}
	}
	return it
}

// Intersect gives the cells shared by both ranges. It returns false when the
// ranges do not overlap.
func (r *Range) Intersect(other *Range) (*Range, bool) {
	x := NewRange(r.Starts, r.Ends)
	x.Starts.Line = max(r.Starts.Line, other.Starts.Line)
	x.Starts.Column = max(r.Starts.Column, other.Starts.Column)
	x.Ends.Line = min(r.Ends.Line, other.Ends.Line)
	x.Ends.Column = min(r.Ends.Column, other.Ends.Column)
	if x.Starts.Line > x.Ends.Line || x.Starts.Column > x.Ends.Column {
		return nil, false
	}
	return x, true
}
