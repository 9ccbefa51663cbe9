package oxml

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"slices"
	"strconv"
	"strings"
	"time"

	sax "github.com/midbel/codecs/xml"

	"github.com/midbel/xlcalc/format"
	"github.com/midbel/xlcalc/formula"
	"github.com/midbel/xlcalc/grid"
	"github.com/midbel/xlcalc/layout"
	"github.com/midbel/xlcalc/value"
)

type reader struct {
	reader *zip.Reader
	base   string

	sharedStrings []string
	styles        []string
	err           error
}

func (r *reader) ReadFile() (*grid.File, error) {
	file := grid.NewFile()
	sheets := r.readWorkbook(file)
	r.readSharedStrings()
	r.readStyles()
	r.readWorksheets(sheets)
	if r.err != nil {
		return nil, r.err
	}
	return file, nil
}

func (r *reader) readSharedStrings() {
	if r.invalid() {
		return
	}
	var root xmlSharedStrings
	if err := r.decodeXML(r.fromBase("sharedStrings.xml"), &root); err != nil {
		// a workbook without any text has no shared strings part
		r.err = nil
		return
	}
	for _, s := range root.Values {
		r.sharedStrings = append(r.sharedStrings, s.Text())
	}
}

// readStyles gives the number format of each cell style. A workbook without
// styles part only uses the general format.
func (r *reader) readStyles() {
	if r.invalid() {
		return
	}
	name := r.fromBase("styles.xml")
	if !r.exists(name) {
		return
	}
	var root xmlStyles
	if err := r.decodeXML(name, &root); err != nil {
		return
	}
	custom := make(map[int]string)
	for _, f := range root.Formats {
		custom[f.Id] = f.Code
	}
	for _, xf := range root.Cells {
		code, ok := custom[xf.NumberFormat]
		if !ok {
			code = builtinFormats[xf.NumberFormat]
		}
		r.styles = append(r.styles, code)
	}
}

// readWorkbook creates the sheets of the workbook in their order and gives
// the relation id of each of them.
func (r *reader) readWorkbook(file *grid.File) map[string]*grid.Sheet {
	addr := r.readWorkbookLocation()
	if r.invalid() {
		return nil
	}
	r.base = path.Dir(addr)

	var root xmlWorkbook
	if err := r.decodeXML(addr, &root); err != nil {
		return nil
	}
	var active int
	if len(root.Views) > 0 {
		active = root.Views[0].ActiveTab
	}
	sheets := make(map[string]*grid.Sheet)
	for i, xs := range root.Sheets {
		sh := grid.NewSheet(xs.Name)
		sh.State = grid.ParseState(xs.State)
		if err := file.AppendSheet(sh); err != nil {
			r.err = err
			return nil
		}
		sheets[xs.Id] = sh
		if i == active {
			file.SetActive(sh.Name)
		}
	}
	return sheets
}

func (r *reader) readWorksheets(sheets map[string]*grid.Sheet) {
	if r.invalid() {
		return
	}
	relations := r.readRelationsForSheets()
	for id, sh := range sheets {
		ix := slices.IndexFunc(relations, func(r xmlRelation) bool {
			return r.Id == id
		})
		if ix < 0 {
			r.err = fmt.Errorf("%w: no part for sheet %s", ErrFile, sh.Name)
			return
		}
		r.readWorksheet(sh, relations[ix].Target)
		if r.invalid() {
			return
		}
	}
}

func (r *reader) readWorksheet(sheet *grid.Sheet, addr string) {
	if r.invalid() {
		return
	}
	z, err := r.openFile(r.fromBase(addr))
	if err != nil {
		r.err = err
		return
	}
	defer z.Close()

	rs := updateSheet(z, sheet, r.sharedStrings, r.styles)
	if err := rs.Update(); err != nil {
		r.err = fmt.Errorf("%s: %w", sheet.Name, err)
	}
}

func (r *reader) readWorkbookLocation() string {
	if r.invalid() {
		return ""
	}
	var root xmlRelations
	if err := r.decodeXML("_rels/.rels", &root); err != nil {
		return ""
	}
	ix := slices.IndexFunc(root.Relations, func(r xmlRelation) bool {
		return r.Type == typeDocUrl || strings.HasSuffix(r.Type, "relationships/officeDocument")
	})
	if ix < 0 {
		r.err = fmt.Errorf("%w: workbook part not found", ErrFile)
		return ""
	}
	return strings.TrimPrefix(root.Relations[ix].Target, "/")
}

func (r *reader) readRelationsForSheets() []xmlRelation {
	if r.invalid() {
		return nil
	}
	var root xmlRelations
	if err := r.decodeXML(r.fromBase("_rels/workbook.xml.rels"), &root); err != nil {
		return nil
	}
	return root.Relations
}

func (r *reader) decodeXML(name string, ptr any) error {
	if r.invalid() {
		return r.err
	}
	rs, err := r.openFile(name)
	if err != nil {
		r.err = err
		return r.err
	}
	defer rs.Close()
	if err := xml.NewDecoder(rs).Decode(ptr); err != nil {
		r.err = fmt.Errorf("%w: fail to read data from %s", ErrFile, name)
	}
	return r.err
}

func (r *reader) exists(name string) bool {
	return slices.ContainsFunc(r.reader.File, func(f *zip.File) bool {
		return f.Name == name
	})
}

func (r *reader) openFile(name string) (io.ReadCloser, error) {
	ix := slices.IndexFunc(r.reader.File, func(f *zip.File) bool {
		return f.Name == name
	})
	if ix < 0 {
		return nil, fmt.Errorf("%w: %s not found", ErrFile, name)
	}
	return r.reader.File[ix].Open()
}

// fromBase gives the location of a part in the archive. Targets starting with
// a slash are absolute.
func (r *reader) fromBase(name string) string {
	if strings.HasPrefix(name, "/") {
		return strings.TrimPrefix(name, "/")
	}
	return path.Join(r.base, name)
}

func (r *reader) invalid() bool {
	return r.err != nil
}

type sharedFormula struct {
	layout.Position
	Expr formula.Expr
}

type sheetReader struct {
	reader         *sax.Reader
	sheet          *grid.Sheet
	sharedStrings  []string
	styles         []string
	sharedFormulas map[string]sharedFormula
}

func updateSheet(r io.Reader, sheet *grid.Sheet, shared, styles []string) *sheetReader {
	rs := sheetReader{
		reader:         sax.NewReader(r),
		sheet:          sheet,
		sharedStrings:  shared,
		styles:         styles,
		sharedFormulas: make(map[string]sharedFormula),
	}
	return &rs
}

func (r *sheetReader) Update() error {
	r.reader.Element(sax.LocalName("c"), r.onCell)
	return r.reader.Start()
}

func (r *sheetReader) parseCellValue(cell *grid.Cell, kind, str string) error {
	switch kind {
	case TypeSharedStr:
		n, err := strconv.Atoi(str)
		if err != nil {
			return fmt.Errorf("invalid shared string index: %s", str)
		}
		if n < 0 || n >= len(r.sharedStrings) {
			return fmt.Errorf("shared string index out of bounds")
		}
		cell.Value = value.Text(r.sharedStrings[n])
	case TypeInlineStr, TypeFormula:
		cell.Value = value.Text(str)
	case TypeDate:
		when, err := parseDate(str)
		if err != nil {
			return err
		}
		cell.Value = value.Date(when)
	case TypeBool:
		b, err := strconv.ParseBool(str)
		if err != nil {
			return err
		}
		cell.Value = value.Boolean(b)
	case TypeError:
		e, ok := value.ErrorFromString(str)
		if !ok {
			e = value.ErrValue
		}
		cell.Value = e
	default:
		n, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
		switch {
		case err != nil:
			cell.Value = value.Text(str)
		case format.IsDateCode(cell.Format):
			cell.Value = value.DateFromSerial(n)
		default:
			cell.Value = value.Float(n)
		}
	}
	return nil
}

// parseCellFormula reads the formula of a cell. Cells sharing the formula of
// another one only give the index of that formula, their own formula is the
// shared one moved to their position.
func (r *sheetReader) parseCellFormula(cell *grid.Cell, el sax.E, rs *sax.Reader) error {
	var (
		shared = el.GetAttributeValue("t") == FormulaShared
		index  = el.GetAttributeValue("si")
	)
	if sf, ok := r.sharedFormulas[index]; shared && ok {
		expr := formula.Offset(sf.Expr, cell.Line-sf.Line, cell.Column-sf.Column)
		cell.Formula = formula.NewFormula("=" + expr.String())
	}
	if el.SelfClosed {
		return nil
	}
	rs.OnText(func(_ *sax.Reader, str string) error {
		if str = strings.TrimSpace(str); str == "" {
			return nil
		}
		if _, ok := r.sharedFormulas[index]; shared && !ok {
			expr, err := formula.ParseFormula(str, anyFunction{})
			if err == nil {
				r.sharedFormulas[index] = sharedFormula{
					Position: cell.Position,
					Expr:     expr,
				}
			}
		}
		if !cell.IsFormula() {
			cell.Formula = formula.NewFormula("=" + str)
		}
		return nil
	})
	return nil
}

func (r *sheetReader) onCell(rs *sax.Reader, el sax.E) error {
	pos, err := layout.ParsePosition(el.GetAttributeValue("r"))
	if err != nil {
		return err
	}
	r.sheet.SetValue(pos, value.Empty())
	cell, _ := r.sheet.Cell(pos)
	if ix, err := strconv.Atoi(el.GetAttributeValue("s")); err == nil && ix >= 0 && ix < len(r.styles) {
		cell.Format = r.styles[ix]
	}

	var (
		kind  = el.GetAttributeValue("t")
		local = sax.LocalName("v")
	)
	if kind == TypeInlineStr {
		local = sax.LocalName("is")
	}
	rs.Element(local, func(rs *sax.Reader, _ sax.E) error {
		rs.OnText(func(_ *sax.Reader, str string) error {
			return r.parseCellValue(cell, kind, str)
		})
		return nil
	})
	rs.Element(sax.LocalName("f"), func(rs *sax.Reader, el sax.E) error {
		return r.parseCellFormula(cell, el, rs)
	})
	return nil
}

func parseDate(str string) (time.Time, error) {
	for _, pattern := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if when, err := time.Parse(pattern, str); err == nil {
			return when, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date: %s", str)
}

// anyFunction accepts every function name. It is used to read shared formulas
// that are only moved, never computed, while loading.
type anyFunction struct{}

func (anyFunction) Lookup(name string) (formula.Builtin, bool) {
	fn := formula.Builtin{
		Name: name,
		Max:  -1,
	}
	return fn, true
}
