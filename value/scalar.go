package value

import (
	"math"
	"strconv"
	"strings"
	"time"
)

type Blank struct{}

func Empty() ScalarValue {
	return Blank{}
}

func (Blank) Type() string {
	return TypeBlank
}

func (Blank) Kind() ValueKind {
	return KindScalar
}

func (Blank) String() string {
	return ""
}

func (Blank) Scalar() any {
	return nil
}

type Date time.Time

// epoch of the 1900 date system, shifted to absorb the phantom 1900-02-29.
var epoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

const secondsPerDay = 86400

func DateFromSerial(serial float64) Date {
	days := math.Floor(serial)
	secs := math.Round((serial - days) * secondsPerDay)
	t := epoch.AddDate(0, 0, int(days)).Add(time.Duration(secs) * time.Second)
	return Date(t)
}

func (Date) Type() string {
	return TypeDate
}

func (Date) Kind() ValueKind {
	return KindScalar
}

func (d Date) String() string {
	t := time.Time(d)
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04:05")
}

func (d Date) Scalar() any {
	return time.Time(d)
}

// Serial returns the number of days elapsed since the epoch, the fractional
// part being the time of the day.
func (d Date) Serial() float64 {
	t := time.Time(d)
	mid := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	days := math.Round(mid.Sub(epoch).Hours() / 24)
	secs := t.Sub(mid).Seconds()
	return days + secs/secondsPerDay
}

type Float float64

func (Float) Type() string {
	return TypeNumber
}

func (Float) Kind() ValueKind {
	return KindScalar
}

func (f Float) String() string {
	x := float64(f)
	if math.IsInf(x, 0) || math.IsNaN(x) {
		return ErrNum.String()
	}
	str := strconv.FormatFloat(x, 'g', 15, 64)
	x, _ = strconv.ParseFloat(str, 64)
	return strconv.FormatFloat(x, 'f', -1, 64)
}

func (f Float) Scalar() any {
	return float64(f)
}

type Text string

func (Text) Type() string {
	return TypeText
}

func (Text) Kind() ValueKind {
	return KindScalar
}

func (t Text) String() string {
	return string(t)
}

func (t Text) Scalar() any {
	return string(t)
}

type Boolean bool

func (Boolean) Type() string {
	return TypeBool
}

func (Boolean) Kind() ValueKind {
	return KindScalar
}

func (b Boolean) String() string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

func (b Boolean) Scalar() any {
	return bool(b)
}

// Parse converts the raw text entered in a cell into its typed value.
func Parse(str string) ScalarValue {
	if str == "" {
		return Blank{}
	}
	if e, ok := ErrorFromString(str); ok {
		return e
	}
	if b, ok := parseBool(str); ok {
		return b
	}
	if n, ok := parseNumber(str); ok {
		return Float(n)
	}
	return Text(str)
}

// parseNumber accepts only decimal numbers with an optional sign, fraction and
// exponent.
func parseNumber(str string) (float64, bool) {
	str = strings.TrimSpace(str)
	if str == "" {
		return 0, false
	}
	var (
		digits bool
		dot    bool
		exp    bool
	)
	for i := 0; i < len(str); i++ {
		switch c := str[i]; {
		case c >= '0' && c <= '9':
			digits = true
		case c == '+' || c == '-':
			if i > 0 && str[i-1] != 'e' && str[i-1] != 'E' {
				return 0, false
			}
		case c == '.':
			if dot || exp {
				return 0, false
			}
			dot = true
		case c == 'e' || c == 'E':
			if exp || !digits {
				return 0, false
			}
			exp = true
			digits = false
		default:
			return 0, false
		}
	}
	if !digits {
		return 0, false
	}
	n, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func parseBool(str string) (Boolean, bool) {
	switch {
	case strings.EqualFold(str, "true"):
		return true, true
	case strings.EqualFold(str, "false"):
		return false, true
	default:
		return false, false
	}
}
