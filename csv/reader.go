package csv

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
)

const (
	quote = '"'
	nl    = '\n'
	cr    = '\r'
	space = ' '
)

var (
	errUnterminated = errors.New("unterminated quoted field")
	ErrFields       = errors.New("invalid number of fields")
)

type Reader struct {
	inner         *bufio.Reader
	Comma         byte
	FieldsPerLine int

	line  int
	atEOF bool
}

func NewReader(r io.Reader) *Reader {
	rs := Reader{
		inner: bufio.NewReader(r),
		Comma: ',',
	}
	return &rs
}

func (r *Reader) Done() bool {
	return r.atEOF
}

func (r *Reader) ReadAll() ([][]string, error) {
	var all [][]string
	for {
		rs, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		all = append(all, rs)
	}
	return all, nil
}

// Read gives the fields of the next record. A quoted field can span several
// lines.
func (r *Reader) Read() ([]string, error) {
	line, err := r.readLine()
	if err != nil {
		return nil, err
	}
	var res []string
	for i := 0; ; {
		var (
			field []byte
			size  int
		)
		if i < len(line) && line[i] == quote {
			for {
				field, size, err = r.readQuotedField(line[i:])
				if !errors.Is(err, errUnterminated) {
					break
				}
				next, err1 := r.readLine()
				if err1 != nil {
					return nil, r.makeError(err)
				}
				line = append(line, nl)
				line = append(line, next...)
			}
		} else {
			field, size, err = r.readDefaultField(line[i:])
		}
		if err != nil {
			return nil, r.makeError(err)
		}
		res = append(res, string(field))
		if i += size; i >= len(line) {
			break
		}
		if line[i] != r.Comma {
			return nil, r.makeError(fmt.Errorf("unexpected character after field"))
		}
		i++
		if i == len(line) {
			res = append(res, "")
			break
		}
	}
	if r.FieldsPerLine > 0 && len(res) != r.FieldsPerLine {
		return nil, r.makeError(ErrFields)
	}
	return res, nil
}

// readLine gives the next line without its line ending.
func (r *Reader) readLine() ([]byte, error) {
	if r.Done() {
		return nil, io.EOF
	}
	line, err := r.inner.ReadBytes(nl)
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return nil, err
		}
		r.atEOF = true
		if len(line) == 0 {
			return nil, io.EOF
		}
	}
	r.line++
	line = bytes.TrimSuffix(line, []byte{nl})
	line = bytes.TrimSuffix(line, []byte{cr})
	return line, nil
}

func (r *Reader) readQuotedField(line []byte) ([]byte, int, error) {
	var (
		pos    = 1
		offset = pos
	)
	for offset < len(line) {
		if line[offset] == quote {
			if offset+1 < len(line) && line[offset+1] == quote {
				offset += 2
				continue
			}
			field := bytes.ReplaceAll(line[pos:offset], []byte{quote, quote}, []byte{quote})
			return field, offset + 1, nil
		}
		offset++
	}
	return nil, 0, errUnterminated
}

func (r *Reader) readDefaultField(line []byte) ([]byte, int, error) {
	var offset int
	for offset < len(line) {
		switch line[offset] {
		case quote:
			return nil, 0, fmt.Errorf("unexpected quote")
		case r.Comma:
			return line[:offset], offset, nil
		default:
			offset++
		}
	}
	return line[:offset], offset, nil
}

func (r *Reader) makeError(err error) error {
	return fmt.Errorf("line %d: %w", r.line, err)
}
