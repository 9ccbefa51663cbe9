package formula

import (
	"errors"
	"fmt"
	"strings"

	"github.com/midbel/xlcalc/value"
)

var (
	ErrParse       = errors.New("invalid formula")
	ErrCircular    = errors.New("circular reference")
	ErrUnsupported = errors.New("unsupported function")
	ErrReference   = errors.New("invalid reference")
	ErrEval        = errors.New("expression can not be evaluated")
)

type ParseError struct {
	Formula string
	Offset  int
	Token   string
	Message string
}

func (e *ParseError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("(%d) %s", e.Offset, e.Message)
	}
	return fmt.Sprintf("(%d) %s: %s", e.Offset, e.Token, e.Message)
}

func (e *ParseError) Unwrap() error {
	return ErrParse
}

// CircularReferenceError holds the chain of cells that leads back to the cell
// being evaluated.
type CircularReferenceError struct {
	Chain []string
}

func (e *CircularReferenceError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCircular, strings.Join(e.Chain, " -> "))
}

func (e *CircularReferenceError) Unwrap() error {
	return ErrCircular
}

type UnsupportedFunctionError struct {
	Name   string
	Reason string
}

func (e *UnsupportedFunctionError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: %s", e.Name, ErrUnsupported)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Name, ErrUnsupported, e.Reason)
}

func (e *UnsupportedFunctionError) Unwrap() error {
	return ErrUnsupported
}

type InvalidReferenceError struct {
	Ident string
	Err   error
}

func (e *InvalidReferenceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Ident, ErrReference)
	}
	return fmt.Sprintf("%s: %s: %s", e.Ident, ErrReference, e.Err)
}

func (e *InvalidReferenceError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrReference}
	}
	return []error{ErrReference, e.Err}
}

// ErrorValue gives the in-cell marker stored in place of a value when the
// evaluation of a formula fails.
func ErrorValue(err error) value.Error {
	switch {
	case errors.Is(err, ErrCircular), errors.Is(err, ErrReference):
		return value.ErrRef
	case errors.Is(err, ErrUnsupported):
		return value.ErrName
	default:
		return value.ErrValue
	}
}
