// Package format renders values for display.
package format

import (
	"errors"
	"strings"

	"github.com/midbel/xlcalc/value"
)

var ErrPattern = errors.New("invalid pattern")

const (
	DefaultNumberPattern = "#######.00"
	DefaultDatePattern   = "YYYY-MM-DD"
)

type Formatter interface {
	Format(value.Value) (string, error)
}

// ValueFormatter picks a formatter from the type of the value. Values of a
// type without formatter are rendered with their String method.
type ValueFormatter struct {
	formatters map[string]Formatter
}

func FormatValue() *ValueFormatter {
	vf := ValueFormatter{
		formatters: make(map[string]Formatter),
	}
	return &vf
}

func (vf *ValueFormatter) Set(kind string, formatter Formatter) {
	vf.formatters[kind] = formatter
}

func (vf *ValueFormatter) Number(pattern string) error {
	f, err := ParseNumberFormatter(pattern)
	if err == nil {
		vf.Set(value.TypeNumber, f)
	}
	return err
}

func (vf *ValueFormatter) Date(pattern string) error {
	f, err := ParseDateFormatter(pattern)
	if err == nil {
		vf.Set(value.TypeDate, f)
	}
	return err
}

func (vf *ValueFormatter) Format(v value.Value) (string, error) {
	if v == nil {
		return "", nil
	}
	f, ok := vf.formatters[v.Type()]
	if ok {
		return f.Format(v)
	}
	return v.String(), nil
}

func FormatString() Formatter {
	return strFormatter{}
}

type strFormatter struct{}

func (strFormatter) Format(v value.Value) (string, error) {
	return v.String(), nil
}

// FormatBool renders booleans in lower case.
func FormatBool() Formatter {
	return boolFormatter{}
}

// FormatBoolUpper renders booleans the way a spreadsheet shows them.
func FormatBoolUpper() Formatter {
	return boolFormatter{upper: true}
}

type boolFormatter struct {
	upper bool
}

func (f boolFormatter) Format(v value.Value) (string, error) {
	str := v.String()
	if f.upper {
		return strings.ToUpper(str), nil
	}
	return strings.ToLower(str), nil
}

// Parse compiles a spreadsheet number format, as found in the styles of a
// workbook, into the formatter of numbers or dates it describes. General and
// the text format @ render values unchanged.
func Parse(code string) (Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(code)) {
	case "", "general", "@":
		return FormatString(), nil
	default:
	}
	if IsDateCode(code) {
		return ParseDateCode(code)
	}
	return ParseNumberFormatter(code)
}

// Codes renders values with the number formats of their cells, compiling
// every format once. A format that can not be compiled, or that does not
// apply to a value, leaves the value unchanged. A Codes is not safe for
// concurrent use.
type Codes struct {
	formatters map[string]Formatter
}

func NewCodes() *Codes {
	c := Codes{
		formatters: make(map[string]Formatter),
	}
	return &c
}

func (c *Codes) Format(code string, v value.Value) string {
	if v == nil {
		return ""
	}
	if code == "" {
		return v.String()
	}
	f, ok := c.formatters[code]
	if !ok {
		f, _ = Parse(code)
		c.formatters[code] = f
	}
	if f == nil {
		return v.String()
	}
	str, err := f.Format(v)
	if err != nil {
		return v.String()
	}
	return str
}
