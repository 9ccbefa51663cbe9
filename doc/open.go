// Package doc opens and saves spreadsheets whatever their format.
package doc

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/midbel/xlcalc/csv"
	"github.com/midbel/xlcalc/grid"
	"github.com/midbel/xlcalc/oxml"
)

var ErrFormat = errors.New("unsupported format")

type Format int

const (
	CSV Format = 1 << iota
	OXML
	ODS
	Unknown
)

func (f Format) String() string {
	switch f {
	case CSV:
		return "csv"
	case OXML:
		return "xlsx"
	case ODS:
		return "ods"
	default:
		return "unknown"
	}
}

func OpenFormat(file string, format Format) (*grid.File, error) {
	switch format {
	case CSV:
		return csv.Open(file)
	case OXML:
		return oxml.Open(file)
	default:
		return nil, fmt.Errorf("%s: %w", format, ErrFormat)
	}
}

// Open loads a spreadsheet. Zip archives are inspected to find their format,
// anything else is read as csv.
func Open(file string) (*grid.File, error) {
	if file == "" {
		return nil, fmt.Errorf("no spreadsheet given")
	}
	format, err := DetectFormat(file)
	if err != nil {
		return nil, err
	}
	return OpenFormat(file, format)
}

// Save writes the workbook in the format given by the extension of the output
// file. A csv file receives only one sheet, the active one when sheet is
// empty.
func Save(file *grid.File, sheet, out string) error {
	if dir := filepath.Dir(out); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	switch ext := strings.ToLower(filepath.Ext(out)); ext {
	case ".xlsx":
		return oxml.Save(file, out)
	case ".csv", ".txt":
		var (
			sh  *grid.Sheet
			err error
		)
		if sheet == "" {
			sh, err = file.ActiveSheet()
		} else {
			sh, err = file.Sheet(sheet)
		}
		if err != nil {
			return err
		}
		return csv.WriteFile(sh, out)
	default:
		return fmt.Errorf("%s: %w", ext, ErrFormat)
	}
}

func DetectFormat(file string) (Format, error) {
	ok, err := isZip(file)
	if err != nil {
		return Unknown, err
	}
	if ok {
		return detectZip(file)
	}
	return CSV, nil
}

func detectZip(file string) (Format, error) {
	z, err := zip.OpenReader(file)
	if err != nil {
		return Unknown, err
	}
	defer z.Close()
	for _, f := range z.File {
		switch f.Name {
		case "xl/workbook.xml", "[Content_Types].xml":
			return OXML, nil
		case "mimetype":
			r, err := f.Open()
			if err != nil {
				return Unknown, err
			}
			buf, _ := io.ReadAll(r)
			r.Close()
			if string(buf) == "application/vnd.oasis.opendocument.spreadsheet" {
				return ODS, nil
			}
		default:
		}
	}
	return Unknown, nil
}

var magicZipBytes = [][]byte{
	{0x50, 0x4b, 0x03, 0x04},
	{0x50, 0x4b, 0x05, 0x06},
	{0x50, 0x4b, 0x07, 0x08},
}

func isZip(file string) (bool, error) {
	r, err := os.Open(file)
	if err != nil {
		return false, err
	}
	defer r.Close()

	magic := make([]byte, 4)
	if _, err := io.ReadFull(r, magic); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return false, nil
		}
		return false, err
	}
	for _, mzb := range magicZipBytes {
		if bytes.Equal(magic, mzb) {
			return true, nil
		}
	}
	return false, nil
}
