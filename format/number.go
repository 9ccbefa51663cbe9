package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/midbel/xlcalc/value"
)

// numberSection is one part of a number format: digits placeholders
// surrounded by literal text.
type numberSection struct {
	prefix string
	suffix string

	minInt   int
	minDec   int
	maxDec   int
	grouping bool
	percent  bool
	// scale divides the number by 1000 for each comma ending the digits.
	scale int
	// text is set for sections made only of literal text.
	text bool
}

// numberFormatter holds up to three sections: positive numbers, negative
// numbers and zero. The negative section renders the absolute value.
type numberFormatter struct {
	sections []numberSection
}

// ParseNumberFormatter compiles a spreadsheet number format such as
// #,##0.00, 0.0%, +0 or "$"#,##0;("$"#,##0). Digits are given by 0 (always
// written) and # (written when significant). Literal text is quoted or
// escaped by a backslash, a few punctuation characters are accepted as is.
func ParseNumberFormatter(pattern string) (Formatter, error) {
	if pattern == "" {
		return nil, fmt.Errorf("%w: empty pattern", ErrPattern)
	}
	var nf numberFormatter
	for i, str := range splitSections(pattern) {
		ns, err := parseSection(str, i > 0)
		if err != nil {
			return nil, fmt.Errorf("%w: %q - %s", ErrPattern, pattern, err)
		}
		nf.sections = append(nf.sections, ns)
	}
	if len(nf.sections) > 3 {
		return nil, fmt.Errorf("%w: %q - too many sections", ErrPattern, pattern)
	}
	return nf, nil
}

func (nf numberFormatter) Format(v value.Value) (string, error) {
	var n float64
	switch v := v.(type) {
	case value.Float:
		n = float64(v)
	case value.Date:
		n = v.Serial()
	default:
		return "", fmt.Errorf("value is not a number")
	}
	if math.IsInf(n, 0) || math.IsNaN(n) {
		return value.ErrNum.String(), nil
	}
	switch {
	case n < 0 && len(nf.sections) > 1:
		return nf.sections[1].format(-n), nil
	case n == 0 && len(nf.sections) > 2:
		return nf.sections[2].format(0), nil
	case n < 0:
		str := nf.sections[0].format(-n)
		if strings.ContainsAny(str, "123456789") {
			str = "-" + str
		}
		return str, nil
	default:
		return nf.sections[0].format(n), nil
	}
}

func (ns numberSection) format(n float64) string {
	if ns.text {
		return ns.prefix
	}
	if ns.percent {
		n *= 100
	}
	for range ns.scale {
		n /= 1000
	}
	// halves are rounded away from zero
	if pow := math.Pow10(ns.maxDec); !math.IsInf(n*pow, 0) {
		n = math.Round(n*pow) / pow
	}
	str := strconv.FormatFloat(n, 'f', ns.maxDec, 64)
	integral, fractional, _ := strings.Cut(str, ".")

	fractional = strings.TrimRight(fractional, "0")
	if z := ns.minDec - len(fractional); z > 0 {
		fractional += strings.Repeat("0", z)
	}
	if integral == "0" && ns.minInt == 0 {
		integral = ""
	}
	if z := ns.minInt - len(integral); z > 0 {
		integral = strings.Repeat("0", z) + integral
	}
	if ns.grouping {
		integral = groupThousands(integral)
	}

	var out strings.Builder
	out.WriteString(ns.prefix)
	out.WriteString(integral)
	if fractional != "" {
		out.WriteByte('.')
		out.WriteString(fractional)
	}
	if integral == "" && fractional == "" {
		out.WriteByte('0')
	}
	out.WriteString(ns.suffix)
	return out.String()
}

func groupThousands(str string) string {
	if len(str) <= 3 {
		return str
	}
	var (
		buf  strings.Builder
		head = len(str) % 3
	)
	if head > 0 {
		buf.WriteString(str[:head])
	}
	for i := head; i < len(str); i += 3 {
		if buf.Len() > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(str[i : i+3])
	}
	return buf.String()
}

func parseSection(str string, textOnly bool) (numberSection, error) {
	var (
		ns      numberSection
		digits  bool
		decimal bool
		literal strings.Builder
		commas  int
	)
	flush := func() {
		if literal.Len() == 0 {
			return
		}
		if digits {
			ns.suffix += literal.String()
		} else {
			ns.prefix += literal.String()
		}
		literal.Reset()
	}
	for i := 0; i < len(str); i++ {
		c := str[i]
		if c != ',' && commas > 0 {
			if isPlaceholder(c) && !decimal {
				ns.grouping = true
			} else {
				ns.scale += commas
			}
			commas = 0
		}
		switch {
		case isPlaceholder(c):
			if literal.Len() > 0 && digits {
				return ns, fmt.Errorf("text between digits")
			}
			flush()
			digits = true
			if decimal {
				ns.maxDec++
				if c == '0' {
					ns.minDec = ns.maxDec
				}
			} else if c == '0' {
				ns.minInt++
			}
		case c == ',':
			if !digits {
				literal.WriteByte(c)
				continue
			}
			commas++
		case c == '.':
			if decimal {
				return ns, fmt.Errorf("more than one decimal point")
			}
			decimal = true
		case c == '%':
			ns.percent = true
			literal.WriteByte(c)
		case c == '"':
			end := strings.IndexByte(str[i+1:], '"')
			if end < 0 {
				return ns, fmt.Errorf("unterminated text")
			}
			literal.WriteString(str[i+1 : i+1+end])
			i += end + 1
		case c == '\\' || c == '_':
			if i+1 >= len(str) {
				return ns, fmt.Errorf("missing character after %c", c)
			}
			i++
			if c == '_' {
				literal.WriteByte(' ')
			} else {
				literal.WriteByte(str[i])
			}
		case strings.IndexByte(" $-+/():!^&'~{}<>=", c) >= 0:
			literal.WriteByte(c)
		default:
			return ns, fmt.Errorf("unexpected character %c", c)
		}
	}
	if commas > 0 {
		ns.scale += commas
	}
	flush()
	if !digits {
		if !textOnly || ns.prefix == "" {
			return ns, fmt.Errorf("no digit given")
		}
		ns.text = true
	}
	return ns, nil
}

func isPlaceholder(c byte) bool {
	return c == '0' || c == '#'
}

// splitSections cuts a format on the semicolons that are not quoted.
func splitSections(pattern string) []string {
	var (
		list   []string
		quoted bool
		last   int
	)
	for i := 0; i < len(pattern); i++ {
		switch pattern[i] {
		case '"':
			quoted = !quoted
		case '\\':
			i++
		case ';':
			if !quoted {
				list = append(list, pattern[last:i])
				last = i + 1
			}
		}
	}
	return append(list, pattern[last:])
}
