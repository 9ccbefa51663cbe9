package csv

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/midbel/xlcalc/calc"
	"github.com/midbel/xlcalc/grid"
	"github.com/midbel/xlcalc/layout"
	"github.com/midbel/xlcalc/value"
)

func TestReader(t *testing.T) {
	tests := []struct {
		Input string
		Want  [][]string
	}{
		{
			Input: "a,b,c\n1,2,3\n",
			Want:  [][]string{{"a", "b", "c"}, {"1", "2", "3"}},
		},
		{
			Input: "a,b\r\n1,2\r\n",
			Want:  [][]string{{"a", "b"}, {"1", "2"}},
		},
		{
			Input: "a,b\n1,2",
			Want:  [][]string{{"a", "b"}, {"1", "2"}},
		},
		{
			Input: "a,,c\nd,\n",
			Want:  [][]string{{"a", "", "c"}, {"d", ""}},
		},
		{
			Input: `"a,b","say ""hi""",c` + "\n",
			Want:  [][]string{{"a,b", `say "hi"`, "c"}},
		},
		{
			Input: "\"two\nlines\",x\nnext\n",
			Want:  [][]string{{"two\nlines", "x"}, {"next"}},
		},
	}
	for _, c := range tests {
		got, err := NewReader(strings.NewReader(c.Input)).ReadAll()
		require.NoError(t, err, c.Input)
		assert.Equal(t, c.Want, got, c.Input)
	}
}

func TestReaderInvalid(t *testing.T) {
	tests := []string{
		"a,\"b\n",
		"a,b\"c\n",
		"\"a\"b,c\n",
	}
	for _, str := range tests {
		_, err := NewReader(strings.NewReader(str)).ReadAll()
		assert.Error(t, err, str)
	}

	rs := NewReader(strings.NewReader("a,b\n1,2,3\n"))
	rs.FieldsPerLine = 2
	_, err := rs.ReadAll()
	assert.ErrorIs(t, err, ErrFields)
}

func TestWriter(t *testing.T) {
	var (
		buf bytes.Buffer
		ws  = NewWriter(&buf)
	)
	data := [][]string{
		{"a", "b,c", `d"e`},
		{" lead", "line\nbreak", ""},
	}
	require.NoError(t, ws.WriteAll(data))

	want := "a,\"b,c\",\"d\"\"e\"\n\" lead\",\"line\nbreak\",\n"
	assert.Equal(t, want, buf.String())

	got, err := NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestWriterCRLF(t *testing.T) {
	var (
		buf bytes.Buffer
		ws  = NewWriter(&buf)
	)
	ws.UseCRLF = true
	ws.Comma = ';'
	require.NoError(t, ws.WriteAll([][]string{{"a", "b;c"}}))
	assert.Equal(t, "a;\"b;c\"\r\n", buf.String())
}

func TestLoad(t *testing.T) {
	input := "item,qty,price\npen,2,1.5\nbook,1,12\ntotal,,=SUM(C2:C3)\n"
	sh, err := Load(strings.NewReader(input), "orders")
	require.NoError(t, err)

	assert.Equal(t, "orders", sh.Name)
	assert.Equal(t, layout.Dimension{Lines: 4, Columns: 3}, sh.Size)

	get := func(addr string) *grid.Cell {
		pos, err := layout.ParsePosition(addr)
		require.NoError(t, err)
		cell, ok := sh.Cell(pos)
		require.True(t, ok, addr)
		return cell
	}
	assert.Equal(t, value.Text("item"), get("A1").Get())
	assert.Equal(t, value.Float(2), get("B2").Get())
	assert.Equal(t, value.Float(1.5), get("C2").Get())
	assert.True(t, get("C4").IsFormula())
	assert.Equal(t, "SUM(C2:C3)", get("C4").Formula.Value())

	_, ok := sh.Cell(layout.Position{Line: 4, Column: 2})
	assert.False(t, ok)
}

func TestLoadDefaultName(t *testing.T) {
	sh, err := Load(strings.NewReader("1\n"), "")
	require.NoError(t, err)
	assert.Equal(t, defaultSheetName, sh.Name)
}

func TestDump(t *testing.T) {
	input := "a,b,total\n1,2,=A2+B2\n3,4,=A3*B3\n"
	sh, err := Load(strings.NewReader(input), "data")
	require.NoError(t, err)

	file := grid.NewFile()
	require.NoError(t, file.AppendSheet(sh))
	require.NoError(t, calc.New(file).Recalculate())

	var buf bytes.Buffer
	require.NoError(t, Dump(&buf, sh))
	assert.Equal(t, "a,b,total\n1,2,3\n3,4,12\n", buf.String())
}

func TestDumpFormats(t *testing.T) {
	input := "day,amount\n45366,1234.5\n45367,=B2/4\n"
	sh, err := Load(strings.NewReader(input), "data")
	require.NoError(t, err)

	for _, addr := range []string{"A2", "A3"} {
		pos, err := layout.ParsePosition(addr)
		require.NoError(t, err)
		sh.SetFormat(pos, "yyyy-mm-dd")
	}
	for _, addr := range []string{"B2", "B3"} {
		pos, err := layout.ParsePosition(addr)
		require.NoError(t, err)
		sh.SetFormat(pos, "#,##0.00")
	}
	file := grid.NewFile()
	require.NoError(t, file.AppendSheet(sh))
	require.NoError(t, calc.New(file).Recalculate())

	var buf bytes.Buffer
	require.NoError(t, Dump(&buf, sh))
	assert.Equal(t, "day,amount\n2024-03-15,\"1,234.50\"\n2024-03-16,308.63\n", buf.String())
}

func TestWriterValues(t *testing.T) {
	var (
		buf bytes.Buffer
		ws  = NewWriter(&buf)
	)
	values := []value.ScalarValue{
		value.Float(0.5),
		value.Text("x"),
		value.ErrDiv0,
		value.Empty(),
	}
	require.NoError(t, ws.WriteValues(values, []string{"0%", "0.0"}))
	require.NoError(t, ws.Flush())
	assert.Equal(t, "50%,x,#DIV/0!,\n", buf.String())
}

func TestOpenAndWriteFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "prices.csv")
	require.NoError(t, os.WriteFile(src, []byte("10,=A1*2\n"), 0o644))

	file, err := Open(src)
	require.NoError(t, err)

	sh, err := file.Sheet("prices")
	require.NoError(t, err)
	require.NoError(t, calc.New(file).Recalculate())

	dst := filepath.Join(dir, "out.csv")
	require.NoError(t, WriteFile(sh, dst))

	out, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "10,20\n", string(out))
}
