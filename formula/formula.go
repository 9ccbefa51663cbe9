package formula

import (
	"strings"
)

// Formula is the expression stored in a cell. The body is kept without its
// leading marker.
type Formula struct {
	value     string
	isFormula bool
}

func NewFormula(text string) Formula {
	var f Formula
	f.SetValue(text)
	return f
}

// SetValue trims the text, strips the leading = and records whether the
// text was a formula.
func (f *Formula) SetValue(text string) {
	text = strings.TrimSpace(text)
	f.isFormula = strings.HasPrefix(text, "=")
	if f.isFormula {
		text = strings.TrimSpace(text[1:])
	}
	f.value = text
}

func (f Formula) Value() string {
	return f.value
}

func (f Formula) IsFormula() bool {
	return f.isFormula
}

func (f Formula) IsZero() bool {
	return f.value == "" && !f.isFormula
}

func (f Formula) String() string {
	if f.isFormula {
		return "=" + f.value
	}
	return f.value
}
