package value

import (
	"fmt"
)

type ValueKind int8

const (
	KindScalar ValueKind = 1 << iota
	KindError
)

const (
	TypeNumber = "number"
	TypeText   = "text"
	TypeBool   = "boolean"
	TypeDate   = "date"
	TypeBlank  = "blank"
	TypeError  = "error"
)

type Value interface {
	Kind() ValueKind
	Type() string
	fmt.Stringer
}

type ScalarValue interface {
	Value
	Scalar() any
}

func IsError(v Value) bool {
	return v != nil && v.Kind() == KindError
}

func IsBlank(v Value) bool {
	_, ok := v.(Blank)
	return ok || v == nil
}

func IsNumber(v Value) bool {
	switch v.(type) {
	case Float, Date:
		return true
	default:
		return false
	}
}

func IsText(v Value) bool {
	_, ok := v.(Text)
	return ok
}

// FirstError returns the first error value found in the given list.
func FirstError(values ...Value) (Error, bool) {
	for _, v := range values {
		if e, ok := v.(Error); ok {
			return e, true
		}
	}
	return Error{}, false
}
