package doc

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/midbel/xlcalc/calc"
	"github.com/midbel/xlcalc/value"
)

func TestOpenSaveFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "data.csv")
	require.NoError(t, os.WriteFile(src, []byte("1,2,=A1+B1\n"), 0o644))

	ok, err := isZip(src)
	require.NoError(t, err)
	assert.False(t, ok)

	file, err := Open(src)
	require.NoError(t, err)
	require.NoError(t, calc.New(file).Recalculate())

	out := filepath.Join(dir, "out", "data.xlsx")
	require.NoError(t, Save(file, "", out))

	format, err := DetectFormat(out)
	require.NoError(t, err)
	assert.Equal(t, OXML, format)

	back, err := Open(out)
	require.NoError(t, err)
	res, err := calc.New(back).EvaluateCell("data", "C1")
	require.NoError(t, err)
	assert.Equal(t, value.Float(3), res)

	require.NoError(t, calc.New(back).Recalculate())
	csvOut := filepath.Join(dir, "data.out.csv")
	require.NoError(t, Save(back, "data", csvOut))
	content, err := os.ReadFile(csvOut)
	require.NoError(t, err)
	assert.Equal(t, "1,2,3\n", string(content))

	err = Save(back, "", filepath.Join(dir, "data.json"))
	assert.ErrorIs(t, err, ErrFormat)
}

func TestOpenEmptyFile(t *testing.T) {
	src := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(src, nil, 0o644))

	file, err := Open(src)
	require.NoError(t, err)
	assert.Len(t, file.Sheets(), 1)

	_, err = Open("")
	assert.Error(t, err)
}

func TestDetectUnknownArchive(t *testing.T) {
	file := filepath.Join(t.TempDir(), "other.zip")
	w, err := os.Create(file)
	require.NoError(t, err)
	z := zip.NewWriter(w)
	_, err = z.Create("readme.txt")
	require.NoError(t, err)
	require.NoError(t, z.Close())
	require.NoError(t, w.Close())

	format, err := DetectFormat(file)
	require.NoError(t, err)
	assert.Equal(t, Unknown, format)

	_, err = Open(file)
	assert.ErrorIs(t, err, ErrFormat)
}
