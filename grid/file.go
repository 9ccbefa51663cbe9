package grid

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	ErrFound = errors.New("not found")
	ErrEmpty = errors.New("no sheet in workbook")
	ErrName  = errors.New("invalid sheet name")
)

// File is a workbook: an ordered list of sheets with unique names. Sheet
// names are compared without case.
type File struct {
	sheets []*Sheet
}

func NewFile() *File {
	var file File
	return &file
}

// AddSheet creates an empty sheet at the end of the workbook.
func (f *File) AddSheet(name string) (*Sheet, error) {
	sh := NewSheet(name)
	if err := f.AppendSheet(sh); err != nil {
		return nil, err
	}
	return sh, nil
}

// AppendSheet adds a sheet at the end of the workbook. When its name is
// already used, a numbered suffix is added to it.
func (f *File) AppendSheet(sheet *Sheet) error {
	name := strings.TrimSpace(sheet.Name)
	if name == "" || strings.ContainsAny(name, "[]*?/\\:") {
		return fmt.Errorf("%q: %w", sheet.Name, ErrName)
	}
	for n := 1; f.has(name); n++ {
		name = fmt.Sprintf("%s_%03d", strings.TrimSpace(sheet.Name), n)
	}
	sheet.Name = name
	sheet.Index = len(f.sheets) + 1
	if len(f.sheets) == 0 {
		sheet.Active = true
	}
	f.sheets = append(f.sheets, sheet)
	return nil
}

func (f *File) Sheet(name string) (*Sheet, error) {
	ix := f.index(name)
	if ix < 0 {
		return nil, fmt.Errorf("sheet %s %w", name, ErrFound)
	}
	return f.sheets[ix], nil
}

func (f *File) Sheets() []*Sheet {
	return slices.Clone(f.sheets)
}

// ActiveSheet gives the sheet selected when the workbook was saved, or the
// first one.
func (f *File) ActiveSheet() (*Sheet, error) {
	if len(f.sheets) == 0 {
		return nil, ErrEmpty
	}
	for _, s := range f.sheets {
		if s.Active {
			return s, nil
		}
	}
	return f.sheets[0], nil
}

func (f *File) SetActive(name string) error {
	sh, err := f.Sheet(name)
	if err != nil {
		return err
	}
	for _, s := range f.sheets {
		s.Active = false
	}
	sh.Active = true
	return nil
}

// Rename changes the name of a sheet. Formulas referring to the old name are
// not rewritten.
func (f *File) Rename(oldName, newName string) error {
	sh, err := f.Sheet(oldName)
	if err != nil {
		return err
	}
	if other := f.index(newName); other >= 0 && f.sheets[other] != sh {
		return fmt.Errorf("sheet %s already exists", newName)
	}
	sh.Name = newName
	return nil
}

// Copy duplicates a sheet at the end of the workbook, keeping values,
// formulas or both according to mode.
func (f *File) Copy(oldName, newName string, mode CopyMode) (*Sheet, error) {
	source, err := f.Sheet(oldName)
	if err != nil {
		return nil, err
	}
	if newName == "" {
		newName = source.Name
	}
	target := NewSheet(newName)
	target.copyFrom(source, mode)
	if err := f.AppendSheet(target); err != nil {
		return nil, err
	}
	return target, nil
}

func (f *File) Remove(name string) error {
	ix := f.index(name)
	if ix < 0 {
		return fmt.Errorf("sheet %s %w", name, ErrFound)
	}
	active := f.sheets[ix].Active
	f.sheets = slices.Delete(f.sheets, ix, ix+1)
	for i, s := range f.sheets {
		s.Index = i + 1
	}
	if active && len(f.sheets) > 0 {
		f.sheets[0].Active = true
	}
	return nil
}

func (f *File) has(name string) bool {
	return f.index(name) >= 0
}

func (f *File) index(name string) int {
	return slices.IndexFunc(f.sheets, func(s *Sheet) bool {
		return strings.EqualFold(s.Name, name)
	})
}
