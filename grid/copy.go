package grid

import (
	"fmt"
)

type CopyMode int

const (
	CopyValue CopyMode = 1 << iota
	CopyFormula
	CopyAll = CopyValue | CopyFormula
)

func CopyModeFromString(str string) (CopyMode, error) {
	var mode CopyMode
	switch str {
	case "value":
		mode |= CopyValue
	case "formula":
		mode |= CopyFormula
	case "", "all":
		mode |= CopyAll
	default:
		return mode, fmt.Errorf("%s invalid value for copy mode", str)
	}
	return mode, nil
}
