package formula

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/midbel/xlcalc/formula/op"
	"github.com/midbel/xlcalc/value"
)

// Scanner splits a formula body into tokens. Failures are reported as tokens
// of type op.Invalid holding the offending text. Err gives the first of them
// as a ParseError.
type Scanner struct {
	input string
	pos   int
	next  int
	char  rune

	buf strings.Builder
	err *ParseError
}

func Scan(str string) *Scanner {
	scan := Scanner{
		input: str,
	}
	scan.read()
	return &scan
}

// Tokenize returns all the tokens of the given formula, the final EOF
// excluded.
func Tokenize(str string) ([]Token, error) {
	var (
		scan = Scan(str)
		list []Token
	)
	for {
		tok := scan.Scan()
		if tok.Type == op.EOF {
			break
		}
		if tok.Type == op.Invalid {
			return nil, scan.Err()
		}
		list = append(list, tok)
	}
	return list, nil
}

func (s *Scanner) Err() error {
	if s.err == nil {
		return nil
	}
	return s.err
}

func (s *Scanner) Scan() Token {
	s.skipBlanks()

	tok := Token{
		Offset: s.pos,
	}
	if s.done() {
		tok.Type = op.EOF
		return tok
	}
	defer s.reset()
	switch {
	case isOperator(s.char):
		s.scanOperator(&tok)
	case isDelimiter(s.char):
		s.scanDelimiter(&tok)
	case s.char == dquote:
		s.scanLiteral(&tok)
	case s.char == pound:
		s.scanError(&tok)
	case isDigit(s.char) || (s.char == dot && isDigit(s.peek())):
		s.scanNumber(&tok)
	case s.char == squote:
		s.scanQuotedIdent(&tok)
	case isLetter(s.char) || s.char == dollar:
		s.scanIdent(&tok)
	default:
		s.write()
		s.read()
		s.invalid(&tok, "unexpected character")
	}
	return tok
}

func (s *Scanner) scanIdent(tok *Token) {
	for !s.done() && isAlpha(s.char) {
		s.write()
		s.read()
	}
	tok.Type = op.Ident
	tok.Literal = s.literal()
}

// scanQuotedIdent reads a sheet name between single quotes. It has to be
// followed by a bang and the address in that sheet.
func (s *Scanner) scanQuotedIdent(tok *Token) {
	s.write()
	s.read()
	for !s.done() {
		if s.char == squote {
			if s.peek() != squote {
				break
			}
			s.write()
			s.read()
		}
		s.write()
		s.read()
	}
	if s.char != squote {
		s.invalid(tok, "unterminated sheet name")
		return
	}
	s.write()
	s.read()
	if s.char != bang {
		s.invalid(tok, "sheet name should be followed by '!'")
		return
	}
	s.scanIdent(tok)
}

func (s *Scanner) scanNumber(tok *Token) {
	for !s.done() && isDigit(s.char) {
		s.write()
		s.read()
	}
	if s.char == dot {
		s.write()
		s.read()
		for !s.done() && isDigit(s.char) {
			s.write()
			s.read()
		}
	}
	if s.char == 'e' || s.char == 'E' {
		s.write()
		s.read()
		if s.char == plus || s.char == minus {
			s.write()
			s.read()
		}
		if !isDigit(s.char) {
			s.invalid(tok, "malformed number - missing exponent")
			return
		}
		for !s.done() && isDigit(s.char) {
			s.write()
			s.read()
		}
	}
	if s.char == dot || isLetter(s.char) {
		s.write()
		s.read()
		s.invalid(tok, "malformed number")
		return
	}
	tok.Type = op.Number
	tok.Literal = s.literal()
}

func (s *Scanner) scanLiteral(tok *Token) {
	s.read()
	for !s.done() {
		if s.char == dquote {
			if s.peek() != dquote {
				break
			}
			s.read()
		}
		s.write()
		s.read()
	}
	if s.char != dquote {
		s.invalid(tok, "unterminated string")
		return
	}
	s.read()
	tok.Type = op.Literal
	tok.Literal = s.literal()
}

func (s *Scanner) scanError(tok *Token) {
	s.write()
	s.read()
	for !s.done() && (isLetter(s.char) || isDigit(s.char) || s.char == slash) {
		s.write()
		s.read()
	}
	if s.char == bang || s.char == question {
		s.write()
		s.read()
	}
	code := strings.ToUpper(s.literal())
	if _, ok := value.ErrorFromString(code); !ok {
		s.invalid(tok, "unknown error value")
		return
	}
	tok.Type = op.Error
	tok.Literal = code
}

func (s *Scanner) scanOperator(tok *Token) {
	tok.Type = op.Invalid
	switch s.char {
	case amper:
		tok.Type = op.Concat
	case percent:
		tok.Type = op.Percent
	case plus:
		tok.Type = op.Add
	case minus:
		tok.Type = op.Sub
	case star:
		tok.Type = op.Mul
	case slash:
		tok.Type = op.Div
	case caret:
		tok.Type = op.Pow
	case langle:
		tok.Type = op.Lt
		if k := s.peek(); k == equal {
			s.read()
			tok.Type = op.Le
		} else if k == rangle {
			s.read()
			tok.Type = op.Ne
		}
	case rangle:
		tok.Type = op.Gt
		if s.peek() == equal {
			s.read()
			tok.Type = op.Ge
		}
	case equal:
		tok.Type = op.Eq
	default:
	}
	s.read()
}

func (s *Scanner) scanDelimiter(tok *Token) {
	tok.Type = op.Invalid
	switch s.char {
	case semi, comma:
		tok.Type = op.Comma
	case lparen:
		tok.Type = op.BegGrp
	case rparen:
		tok.Type = op.EndGrp
	default:
	}
	s.read()
}

func (s *Scanner) invalid(tok *Token, msg string) {
	tok.Type = op.Invalid
	tok.Literal = s.literal()
	if s.err == nil {
		s.err = &ParseError{
			Formula: s.input,
			Offset:  tok.Offset,
			Token:   tok.Literal,
			Message: msg,
		}
	}
}

func (s *Scanner) literal() string {
	return s.buf.String()
}

func (s *Scanner) write() {
	s.buf.WriteRune(s.char)
}

func (s *Scanner) reset() {
	s.buf.Reset()
}

func (s *Scanner) read() {
	if s.next >= len(s.input) {
		s.pos = len(s.input)
		s.char = 0
		return
	}
	r, n := utf8.DecodeRuneInString(s.input[s.next:])
	s.char, s.pos, s.next = r, s.next, s.next+n
}

func (s *Scanner) peek() rune {
	if s.next >= len(s.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(s.input[s.next:])
	return r
}

func (s *Scanner) done() bool {
	return s.pos >= len(s.input)
}

func (s *Scanner) skipBlanks() {
	for !s.done() && isBlank(s.char) {
		s.read()
	}
}

const (
	underscore = '_'
	bang       = '!'
	question   = '?'
	semi       = ';'
	comma      = ','
	rparen     = ')'
	lparen     = '('
	squote     = '\''
	dquote     = '"'
	space      = ' '
	tab        = '\t'
	nl         = '\n'
	cr         = '\r'
	plus       = '+'
	minus      = '-'
	star       = '*'
	slash      = '/'
	caret      = '^'
	equal      = '='
	langle     = '<'
	rangle     = '>'
	colon      = ':'
	dot        = '.'
	amper      = '&'
	percent    = '%'
	dollar     = '$'
	pound      = '#'
)

func isLower(c rune) bool {
	return c >= 'a' && c <= 'z'
}

func isUpper(c rune) bool {
	return c >= 'A' && c <= 'Z'
}

func isLetter(c rune) bool {
	if c >= utf8.RuneSelf {
		return unicode.IsLetter(c)
	}
	return isLower(c) || isUpper(c) || c == underscore
}

func isDigit(c rune) bool {
	return c >= '0' && c <= '9'
}

// isAlpha reports the characters allowed inside an identifier. Besides
// letters and digits, it admits the absolute marker, the range separator and
// the sheet qualifier so that a whole reference is read as one token.
func isAlpha(c rune) bool {
	return isLetter(c) || isDigit(c) || c == dollar || c == colon || c == bang || c == dot
}

func isBlank(c rune) bool {
	return c == space || c == tab || c == nl || c == cr
}

func isDelimiter(c rune) bool {
	return c == semi || c == lparen || c == rparen || c == comma
}

func isOperator(c rune) bool {
	return c == plus || c == minus || c == slash || c == star ||
		c == langle || c == rangle || c == equal || c == caret ||
		c == amper || c == percent
}
