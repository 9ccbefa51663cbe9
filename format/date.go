package format

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/midbel/xlcalc/value"
)

// longest patterns first: MMMM has to be tried before MMM and MM.
func init() {
	slices.SortStableFunc(dateFieldsWriter, func(a, b dateFieldPattern) int {
		return len(b.Pattern) - len(a.Pattern)
	})
}

type dateFieldPattern struct {
	Pattern string
	Func    dateWriter
}

type dateWriter func(*strings.Builder, time.Time)

var dateFieldsWriter = []dateFieldPattern{
	{
		Pattern: "YYYY",
		Func:    writeYearLong,
	},
	{
		Pattern: "YY",
		Func:    writeYearShort,
	},
	{
		Pattern: "MM",
		Func:    writeMonth,
	},
	{
		Pattern: "0MM",
		Func:    writeMonthPadded,
	},
	{
		Pattern: "MMM",
		Func:    writeMonthNameShort,
	},
	{
		Pattern: "MMMM",
		Func:    writeMonthNameLong,
	},
	{
		Pattern: "DD",
		Func:    writeDay,
	},
	{
		Pattern: "0DD",
		Func:    writeDayPadded,
	},
	{
		Pattern: "DDD",
		Func:    writeDayNameShort,
	},
	{
		Pattern: "DDDD",
		Func:    writeDayNameLong,
	},
	{
		Pattern: "JJJ",
		Func:    writeYearDay,
	},
	{
		Pattern: "0JJJ",
		Func:    writeYearDayPadded,
	},
	{
		Pattern: "hh",
		Func:    writeHour,
	},
	{
		Pattern: "0hh",
		Func:    writeHourPadded,
	},
	{
		Pattern: "mm",
		Func:    writeMinute,
	},
	{
		Pattern: "0mm",
		Func:    writeMinutePadded,
	},
	{
		Pattern: "ss",
		Func:    writeSecond,
	},
	{
		Pattern: "0ss",
		Func:    writeSecondPadded,
	},
}

type dateFormatter struct {
	writers []dateWriter
}

// ParseDateFormatter compiles a date pattern. Fields are YYYY, YY, MM, MMM,
// MMMM, DD, DDD, DDDD, JJJ, hh, mm and ss, the padded variants of the numeric
// fields are prefixed by 0. Anything else is copied as is.
func ParseDateFormatter(pattern string) (Formatter, error) {
	var df dateFormatter
	for i := 0; i < len(pattern); {
		var matched bool
		for _, k := range dateFieldsWriter {
			if matched = strings.HasPrefix(pattern[i:], k.Pattern); matched {
				df.writers = append(df.writers, k.Func)
				i += len(k.Pattern)
				break
			}
		}
		if !matched {
			df.writers = append(df.writers, writeLiteralDate(pattern[i]))
			i++
		}
	}
	return df, nil
}

// Format renders a date. Numbers are taken as serial dates.
func (f dateFormatter) Format(v value.Value) (string, error) {
	var tv value.Date
	switch v := v.(type) {
	case value.Date:
		tv = v
	case value.Float:
		tv = value.DateFromSerial(float64(v))
	default:
		return "", fmt.Errorf("value is not a date")
	}
	if len(f.writers) == 0 {
		return tv.String(), nil
	}
	var str strings.Builder
	for i := range f.writers {
		f.writers[i](&str, time.Time(tv))
	}
	return str.String(), nil
}

type dateToken struct {
	field   byte
	size    int
	literal string
}

// scanDateCode splits a spreadsheet date format into its fields (y, m, d, h,
// s and the AM/PM marker written as field a) and literal text.
func scanDateCode(code string) []dateToken {
	var list []dateToken
	for i := 0; i < len(code); i++ {
		c := code[i]
		switch lc := lowerByte(c); {
		case lc == 'y' || lc == 'm' || lc == 'd' || lc == 'h' || lc == 's':
			n := 1
			for i+n < len(code) && lowerByte(code[i+n]) == lc {
				n++
			}
			list = append(list, dateToken{field: lc, size: n})
			i += n - 1
		case lc == 'a' && len(code[i:]) >= 5 && strings.EqualFold(code[i:i+5], "am/pm"):
			list = append(list, dateToken{field: 'a'})
			i += 4
		case c == '"':
			end := strings.IndexByte(code[i+1:], '"')
			if end < 0 {
				end = len(code) - i - 1
			}
			list = append(list, dateToken{literal: code[i+1 : i+1+end]})
			i += end + 1
		case c == '\\' && i+1 < len(code):
			i++
			list = append(list, dateToken{literal: code[i : i+1]})
		case c == '[':
			end := strings.IndexByte(code[i:], ']')
			if end < 0 {
				return list
			}
			i += end
		default:
			list = append(list, dateToken{literal: code[i : i+1]})
		}
	}
	return list
}

// IsDateCode reports whether a spreadsheet number format displays dates or
// times.
func IsDateCode(code string) bool {
	for _, tok := range scanDateCode(code) {
		if tok.field != 0 {
			return true
		}
	}
	return false
}

// ParseDateCode compiles a spreadsheet date format such as yyyy-mm-dd or
// h:mm AM/PM. A run of m is read as minutes when it follows hours or precedes
// seconds.
func ParseDateCode(code string) (Formatter, error) {
	var (
		df     dateFormatter
		tokens = scanDateCode(code)
		hour12 = slices.ContainsFunc(tokens, func(tok dateToken) bool {
			return tok.field == 'a'
		})
	)
	for i, tok := range tokens {
		if tok.field == 0 {
			for j := 0; j < len(tok.literal); j++ {
				df.writers = append(df.writers, writeLiteralDate(tok.literal[j]))
			}
			continue
		}
		var fn dateWriter
		switch tok.field {
		case 'y':
			fn = writeYearShort
			if tok.size > 2 {
				fn = writeYearLong
			}
		case 'm':
			fn = monthWriter(tok.size, isMinute(tokens, i))
		case 'd':
			fn = []dateWriter{writeDay, writeDayPadded, writeDayNameShort, writeDayNameLong}[min(tok.size, 4)-1]
		case 'h':
			fn = writeHour
			if tok.size > 1 {
				fn = writeHourPadded
			}
			if hour12 {
				fn = writeHour12(tok.size > 1)
			}
		case 's':
			fn = writeSecond
			if tok.size > 1 {
				fn = writeSecondPadded
			}
		case 'a':
			fn = writeMeridiem
		}
		df.writers = append(df.writers, fn)
	}
	if len(df.writers) == 0 {
		return nil, fmt.Errorf("%w: %q - empty date format", ErrPattern, code)
	}
	return df, nil
}

func monthWriter(size int, minute bool) dateWriter {
	if minute && size <= 2 {
		if size == 1 {
			return writeMinute
		}
		return writeMinutePadded
	}
	return []dateWriter{writeMonth, writeMonthPadded, writeMonthNameShort, writeMonthNameLong}[min(size, 4)-1]
}

func isMinute(tokens []dateToken, ix int) bool {
	for i := ix - 1; i >= 0; i-- {
		if f := tokens[i].field; f != 0 {
			if f == 'h' {
				return true
			}
			break
		}
	}
	for i := ix + 1; i < len(tokens); i++ {
		if f := tokens[i].field; f != 0 {
			return f == 's'
		}
	}
	return false
}

func lowerByte(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}

func writeLiteralDate(char byte) dateWriter {
	return func(w *strings.Builder, _ time.Time) {
		w.WriteByte(char)
	}
}

func writeYearLong(w *strings.Builder, t time.Time) {
	w.WriteString(strconv.Itoa(t.Year()))
}

func writeYearShort(w *strings.Builder, t time.Time) {
	w.WriteString(strconv.Itoa(t.Year() % 100))
}

func writeMonth(w *strings.Builder, t time.Time) {
	m := int(t.Month())
	w.WriteString(strconv.Itoa(m))
}

func writeMonthPadded(w *strings.Builder, t time.Time) {
	m := int(t.Month())
	if m < 10 {
		w.WriteByte('0')
	}
	w.WriteString(strconv.Itoa(m))
}

func writeMonthNameShort(w *strings.Builder, t time.Time) {
	w.WriteString(t.Month().String()[:3])
}

func writeMonthNameLong(w *strings.Builder, t time.Time) {
	w.WriteString(t.Month().String())
}

func writeDay(w *strings.Builder, t time.Time) {
	w.WriteString(strconv.Itoa(t.Day()))
}

func writeDayPadded(w *strings.Builder, t time.Time) {
	d := t.Day()
	if d < 10 {
		w.WriteByte('0')
	}
	w.WriteString(strconv.Itoa(d))
}

func writeDayNameShort(w *strings.Builder, t time.Time) {
	w.WriteString(t.Weekday().String()[:3])
}

func writeDayNameLong(w *strings.Builder, t time.Time) {
	w.WriteString(t.Weekday().String())
}

func writeYearDay(w *strings.Builder, t time.Time) {
	w.WriteString(strconv.Itoa(t.YearDay()))
}

func writeYearDayPadded(w *strings.Builder, t time.Time) {
	y := t.YearDay()
	if y < 10 {
		w.WriteByte('0')
	}
	if y < 100 {
		w.WriteByte('0')
	}
	w.WriteString(strconv.Itoa(y))
}

func writeHour(w *strings.Builder, t time.Time) {
	w.WriteString(strconv.Itoa(t.Hour()))
}

func writeHourPadded(w *strings.Builder, t time.Time) {
	h := t.Hour()
	if h < 10 {
		w.WriteByte('0')
	}
	w.WriteString(strconv.Itoa(h))
}

func writeMinute(w *strings.Builder, t time.Time) {
	w.WriteString(strconv.Itoa(t.Minute()))
}

func writeMinutePadded(w *strings.Builder, t time.Time) {
	m := t.Minute()
	if m < 10 {
		w.WriteByte('0')
	}
	w.WriteString(strconv.Itoa(m))
}

func writeSecond(w *strings.Builder, t time.Time) {
	w.WriteString(strconv.Itoa(t.Second()))
}

func writeSecondPadded(w *strings.Builder, t time.Time) {
	s := t.Second()
	if s < 10 {
		w.WriteByte('0')
	}
	w.WriteString(strconv.Itoa(s))
}

func writeHour12(padded bool) dateWriter {
	return func(w *strings.Builder, t time.Time) {
		h := t.Hour() % 12
		if h == 0 {
			h = 12
		}
		if padded && h < 10 {
			w.WriteByte('0')
		}
		w.WriteString(strconv.Itoa(h))
	}
}

func writeMeridiem(w *strings.Builder, t time.Time) {
	if t.Hour() < 12 {
		w.WriteString("AM")
	} else {
		w.WriteString("PM")
	}
}
