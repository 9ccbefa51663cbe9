// Package csv loads a sheet from comma separated values and dumps the
// computed values of a sheet back.
package csv

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/midbel/xlcalc/formula"
	"github.com/midbel/xlcalc/grid"
	"github.com/midbel/xlcalc/layout"
	"github.com/midbel/xlcalc/value"
)

const defaultSheetName = "sheet1"

// Open loads a csv file into a workbook of one sheet named after the file.
func Open(file string) (*grid.File, error) {
	r, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	sh, err := Load(r, name)
	if err != nil {
		return nil, err
	}
	wb := grid.NewFile()
	if err := wb.AppendSheet(sh); err != nil {
		return nil, err
	}
	return wb, nil
}

// Load reads the records of r into a new sheet. Fields starting with = are
// formulas. Empty fields leave their cell unset.
func Load(r io.Reader, name string) (*grid.Sheet, error) {
	if strings.TrimSpace(name) == "" {
		name = defaultSheetName
	}
	var (
		rs = NewReader(r)
		sh = grid.NewSheet(name)
	)
	for line := int64(1); ; line++ {
		fields, err := rs.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		for col, f := range fields {
			if f == "" {
				continue
			}
			pos := layout.Position{
				Line:   line,
				Column: int64(col) + 1,
			}
			if strings.HasPrefix(f, "=") {
				sh.SetFormula(pos, formula.NewFormula(f))
			} else {
				sh.SetValue(pos, value.Parse(f))
			}
		}
	}
	return sh, nil
}

// WriteFile dumps the sheet into the given file.
func WriteFile(sheet *grid.Sheet, file string) error {
	w, err := os.Create(file)
	if err != nil {
		return err
	}
	defer w.Close()
	return Dump(w, sheet)
}

// Dump writes the values of the sheet, one record per line from the first
// line to the last one used. Formulas are replaced by their last computed
// value, rendered with the number format of their cell.
func Dump(w io.Writer, sheet *grid.Sheet) error {
	var (
		ws   = NewWriter(w)
		line int64
	)
	for values := range sheet.Rows() {
		line++
		codes := make([]string, len(values))
		for i := range codes {
			pos := layout.Position{
				Line:   line,
				Column: int64(i) + 1,
			}
			codes[i] = sheet.NumberFormat(pos)
		}
		if err := ws.WriteValues(values, codes); err != nil {
			return err
		}
	}
	return ws.Flush()
}
