package oxml

import (
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/midbel/xlcalc/grid"
	"github.com/midbel/xlcalc/value"
)

const defaultSheetName = "Sheet1"

// Save writes the workbook to the given file.
func Save(file *grid.File, path string) error {
	f, err := writeFile(file)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.SaveAs(path)
}

// Write writes the workbook as an xlsx archive to w.
func Write(file *grid.File, w io.Writer) error {
	f, err := writeFile(file)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteTo(w)
	return err
}

type writer struct {
	file *excelize.File
	// styles gives the style created for each number format.
	styles map[string]int
	err    error
}

func writeFile(file *grid.File) (*excelize.File, error) {
	z := writer{
		file:   excelize.NewFile(),
		styles: make(map[string]int),
	}
	if err := z.WriteFile(file); err != nil {
		z.file.Close()
		return nil, err
	}
	return z.file, nil
}

func (z *writer) WriteFile(file *grid.File) error {
	for i, s := range file.Sheets() {
		z.writeSheetName(i, s)
		z.writeWorksheet(s)
		z.writeSheetState(s)
		if z.invalid() {
			return z.err
		}
	}
	if sh, err := file.ActiveSheet(); err == nil {
		z.writeActiveSheet(sh)
	}
	return z.err
}

func (z *writer) writeSheetName(ix int, sheet *grid.Sheet) {
	if z.invalid() {
		return
	}
	if ix == 0 {
		if sheet.Name != defaultSheetName {
			z.err = z.file.SetSheetName(defaultSheetName, sheet.Name)
		}
		return
	}
	_, z.err = z.file.NewSheet(sheet.Name)
}

func (z *writer) writeWorksheet(sheet *grid.Sheet) {
	if z.invalid() {
		return
	}
	for c := range sheet.Cells() {
		addr, err := excelize.CoordinatesToCellName(int(c.Column), int(c.Line))
		if err != nil {
			z.err = err
			return
		}
		if v := cellValue(c.Get()); v != nil {
			if z.err = z.file.SetCellValue(sheet.Name, addr, v); z.invalid() {
				return
			}
		}
		if c.IsFormula() {
			z.err = z.file.SetCellFormula(sheet.Name, addr, c.Formula.Value())
		}
		if c.Format != "" {
			z.writeCellFormat(sheet.Name, addr, c.Format)
		}
		if z.invalid() {
			return
		}
	}
}

func (z *writer) writeCellFormat(sheet, addr, code string) {
	if z.invalid() {
		return
	}
	id, ok := z.styles[code]
	if !ok {
		style := excelize.Style{
			CustomNumFmt: &code,
		}
		if id, z.err = z.file.NewStyle(&style); z.invalid() {
			return
		}
		z.styles[code] = id
	}
	z.err = z.file.SetCellStyle(sheet, addr, addr, id)
}

func (z *writer) writeSheetState(sheet *grid.Sheet) {
	if z.invalid() {
		return
	}
	switch sheet.State {
	case grid.StateHidden:
		z.err = z.file.SetSheetVisible(sheet.Name, false)
	case grid.StateVeryHidden:
		z.err = z.file.SetSheetVisible(sheet.Name, false, true)
	default:
	}
}

func (z *writer) writeActiveSheet(sheet *grid.Sheet) {
	if z.invalid() {
		return
	}
	ix, err := z.file.GetSheetIndex(sheet.Name)
	if err != nil {
		z.err = err
		return
	}
	z.file.SetActiveSheet(ix)
}

func (z *writer) invalid() bool {
	return z.err != nil
}

// cellValue gives the value stored in the archive. Error markers are written
// as text.
func cellValue(val value.ScalarValue) any {
	switch v := val.(type) {
	case value.Float:
		return float64(v)
	case value.Text:
		return string(v)
	case value.Boolean:
		return bool(v)
	case value.Date:
		return time.Time(v)
	case value.Error:
		return v.String()
	default:
		return nil
	}
}
