package layout

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	MaxLines   = 1048576
	MaxColumns = 16384
)

type Position struct {
	Sheet  string
	Line   int64
	Column int64
}

// ParsePosition parses a cell address such as A1, $B$2 or Sheet2!C3. Absolute
// markers are accepted and dropped.
func ParsePosition(addr string) (Position, error) {
	var pos Position
	sheet, rest, err := SplitSheet(addr)
	if err != nil {
		return pos, err
	}
	pos, err = parseCell(rest)
	if err != nil {
		return pos, err
	}
	pos.Sheet = sheet
	return pos, nil
}

func parseCell(addr string) (Position, error) {
	var (
		pos    Position
		offset int
		str    = strings.TrimPrefix(addr, "$")
	)
	pos.Column, offset = ParseIndex(str)
	if offset == 0 {
		return pos, fmt.Errorf("%w %q - missing column", ErrAddress, addr)
	}
	str = strings.TrimPrefix(str[offset:], "$")
	if str == "" {
		return pos, fmt.Errorf("%w %q - missing line", ErrAddress, addr)
	}
	line, err := strconv.ParseInt(str, 10, 64)
	if err != nil || line <= 0 || !isDigit(rune(str[0])) {
		return pos, fmt.Errorf("%w %q - invalid line", ErrAddress, addr)
	}
	pos.Line = line
	if pos.Line > MaxLines || pos.Column > MaxColumns {
		return pos, fmt.Errorf("%w: %s out of sheet bounds", ErrAddress, pos.Addr())
	}
	return pos, nil
}

// SplitSheet separates the sheet qualifier from an address. The qualifier is
// everything before the last bang and may be quoted with single quotes.
func SplitSheet(addr string) (string, string, error) {
	ix := strings.LastIndexByte(addr, '!')
	if ix < 0 {
		return "", addr, nil
	}
	sheet, rest := addr[:ix], addr[ix+1:]
	if n := len(sheet); n >= 2 && sheet[0] == '\'' && sheet[n-1] == '\'' {
		sheet = strings.ReplaceAll(sheet[1:n-1], "''", "'")
	}
	if sheet == "" {
		return "", "", fmt.Errorf("%w: %q - empty sheet name", ErrAddress, addr)
	}
	return sheet, rest, nil
}

func (p Position) Equal(other Position) bool {
	return p.Line == other.Line && p.Column == other.Column
}

func (p Position) Addr() string {
	var parts []string
	if p.Sheet != "" {
		parts = append(parts, QuoteSheet(p.Sheet))
		parts = append(parts, "!")
	}
	parts = append(parts, ColumnName(p.Column))
	parts = append(parts, strconv.FormatInt(p.Line, 10))
	return strings.Join(parts, "")
}

func (p Position) String() string {
	return p.Addr()
}

// Key identifies a cell across a workbook. The sheet name is case folded since
// sheet lookups are case insensitive.
func (p Position) Key() string {
	return fmt.Sprintf("%s!%s%d", strings.ToLower(p.Sheet), ColumnName(p.Column), p.Line)
}

func (p Position) Less(other Position) bool {
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Column < other.Column
}

func QuoteSheet(name string) string {
	if !needQuotes(name) {
		return name
	}
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

func needQuotes(name string) bool {
	for i, c := range name {
		if isLetter(c) || c == '_' || (i > 0 && (isDigit(c) || c == '.')) {
			continue
		}
		return true
	}
	return false
}

func IsAddress(addr string) bool {
	_, err := ParsePosition(addr)
	return err == nil
}

func ParseIndex(str string) (int64, int) {
	if len(str) == 0 {
		return 0, 0
	}
	var (
		offset int
		index  int
	)
	for offset < len(str) && isLetter(rune(str[offset])) {
		delta := byte('A')
		if isLower(rune(str[offset])) {
			delta = 'a'
		}
		index = index*26 + int(str[offset]-delta+1)
		offset++
	}
	return int64(index), offset
}

func ColumnName(ix int64) string {
	var result string
	for ix > 0 {
		ix--
		result = string(rune('A')+rune(ix%26)) + result
		ix /= 26
	}
	return result
}

func isLower(c rune) bool {
	return c >= 'a' && c <= 'z'
}

func isUpper(c rune) bool {
	return c >= 'A' && c <= 'Z'
}

func isLetter(c rune) bool {
	return isLower(c) || isUpper(c)
}

func isDigit(c rune) bool {
	return c >= '0' && c <= '9'
}
