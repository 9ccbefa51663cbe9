package csv

import (
	"bufio"
	"io"
	"strings"

	"github.com/midbel/xlcalc/format"
	"github.com/midbel/xlcalc/value"
)

// Writer writes records of comma separated values. The first error met is
// kept and returned by every following call.
type Writer struct {
	inner *bufio.Writer
	err   error

	Comma      byte
	UseCRLF    bool
	ForceQuote bool
	// Codes renders the values given to WriteValues with their number
	// format.
	Codes *format.Codes
}

func NewWriter(w io.Writer) *Writer {
	ws := Writer{
		inner: bufio.NewWriter(w),
		Comma: ',',
		Codes: format.NewCodes(),
	}
	return &ws
}

// WriteAll writes all the records and flushes the writer.
func (w *Writer) WriteAll(records [][]string) error {
	for _, r := range records {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	return w.Flush()
}

func (w *Writer) Write(fields []string) error {
	for i, str := range fields {
		if i > 0 {
			w.writeByte(w.Comma)
		}
		w.writeField(str)
	}
	w.writeEOL()
	return w.err
}

// WriteValues writes one record made of values. The number format at the
// same index in codes, when given, is used to render a value.
func (w *Writer) WriteValues(values []value.ScalarValue, codes []string) error {
	fields := make([]string, len(values))
	for i, v := range values {
		var code string
		if i < len(codes) {
			code = codes[i]
		}
		fields[i] = w.Codes.Format(code, v)
	}
	return w.Write(fields)
}

func (w *Writer) Flush() error {
	if w.err == nil {
		w.err = w.inner.Flush()
	}
	return w.err
}

func (w *Writer) writeField(str string) {
	if !w.needQuotes(str) {
		w.writeString(str)
		return
	}
	str = strings.ReplaceAll(str, `"`, `""`)
	if w.UseCRLF {
		str = strings.ReplaceAll(str, "\r\n", "\n")
		str = strings.ReplaceAll(str, "\n", "\r\n")
	}
	w.writeByte(quote)
	w.writeString(str)
	w.writeByte(quote)
}

func (w *Writer) writeEOL() {
	if w.UseCRLF {
		w.writeByte(cr)
	}
	w.writeByte(nl)
}

func (w *Writer) writeByte(c byte) {
	if w.err == nil {
		w.err = w.inner.WriteByte(c)
	}
}

func (w *Writer) writeString(str string) {
	if w.err == nil {
		_, w.err = w.inner.WriteString(str)
	}
}

// needQuotes reports whether a field has to be quoted: it contains the
// separator, a quote or a line break, or it starts or ends with a space.
func (w *Writer) needQuotes(str string) bool {
	if w.ForceQuote {
		return true
	}
	if str == "" {
		return false
	}
	if str[0] == space || str[len(str)-1] == space {
		return true
	}
	return strings.ContainsAny(str, string([]byte{w.Comma, quote, cr, nl}))
}
