// Package oxml loads and saves workbooks in the Office Open XML format
// (xlsx).
package oxml

import (
	"archive/zip"
	"errors"
	"io"

	"github.com/midbel/xlcalc/grid"
)

const (
	FormulaNormal = "normal"
	FormulaShared = "shared"
)

const (
	TypeSharedStr = "s"
	TypeInlineStr = "inlineStr"
	TypeFormula   = "str"
	TypeDate      = "d"
	TypeError     = "e"
	TypeBool      = "b"
	TypeNumber    = "n"
)

var ErrFile = errors.New("invalid spreadsheet")

// Open loads the workbook stored in the given file.
func Open(file string) (*grid.File, error) {
	z, err := zip.OpenReader(file)
	if err != nil {
		return nil, err
	}
	defer z.Close()
	return readFile(&z.Reader)
}

// OpenReader loads a workbook from an in-memory or on-disk archive of the
// given size.
func OpenReader(r io.ReaderAt, size int64) (*grid.File, error) {
	z, err := zip.NewReader(r, size)
	if err != nil {
		return nil, err
	}
	return readFile(z)
}

func readFile(z *zip.Reader) (*grid.File, error) {
	rs := reader{
		reader: z,
		base:   wbBaseDir,
	}
	return rs.ReadFile()
}
