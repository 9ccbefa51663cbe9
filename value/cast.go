package value

import (
	"errors"
	"strings"
)

var ErrCast = errors.New("value can not be casted")

// CastToFloat coerces a value for arithmetic. Text is parsed, blank is zero,
// booleans are one or zero and dates are their serial number.
func CastToFloat(val Value) (Float, error) {
	switch v := val.(type) {
	case Float:
		return v, nil
	case Blank, nil:
		return 0, nil
	case Boolean:
		if v {
			return 1, nil
		}
		return 0, nil
	case Date:
		return Float(v.Serial()), nil
	case Text:
		n, ok := parseNumber(string(v))
		if !ok {
			return 0, ErrCast
		}
		return Float(n), nil
	default:
		return 0, ErrCast
	}
}

func CastToText(val Value) (Text, error) {
	switch v := val.(type) {
	case Text:
		return v, nil
	case Error:
		return "", ErrCast
	case nil:
		return "", nil
	default:
		return Text(v.String()), nil
	}
}

func CastToBool(val Value) (Boolean, error) {
	switch v := val.(type) {
	case Boolean:
		return v, nil
	case Blank, nil:
		return false, nil
	case Float:
		return Boolean(v != 0), nil
	case Date:
		return Boolean(v.Serial() != 0), nil
	case Text:
		b, ok := parseBool(strings.TrimSpace(string(v)))
		if !ok {
			return false, ErrCast
		}
		return b, nil
	default:
		return false, ErrCast
	}
}

func True(val Value) bool {
	b, err := CastToBool(val)
	return err == nil && bool(b)
}
