package xlsx

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ChrisMcGann/msidat/pkg/table"
)

func TestWriterSheets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.xlsx")

	pos := table.New("positive", []string{"Formula", "Monoisotopic Molecular Weight", "[M+H]+"})
	pos.AppendRow("C6H12O6", "180.0633881", "181.0706647")
	neg := table.New("negative", []string{"Formula", "[M-H]-"})
	neg.AppendRow("C6H12O6", "")

	w, err := NewWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.WriteTable(pos))
	require.NoError(t, w.WriteTable(neg))
	require.NoError(t, w.Finalize())

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"positive", "negative"}, f.GetSheetList())

	v, err := f.GetCellValue("positive", "B2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "180.0633881", v)

	v, err = f.GetCellValue("positive", "A2")
	require.NoError(t, err)
	assert.Equal(t, "C6H12O6", v)

	v, err = f.GetCellValue("negative", "B1")
	require.NoError(t, err)
	assert.Equal(t, "[M-H]-", v)

	v, err = f.GetCellValue("negative", "B2")
	require.NoError(t, err)
	assert.Equal(t, "", v)
}

func TestWriterDuplicateSheetNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	w, err := NewWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.WriteTable(table.New("Sheet1", []string{"a"})))
	require.NoError(t, w.WriteTable(table.New("Sheet1", []string{"b"})))
	require.NoError(t, w.Finalize())

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Sheet1", "Sheet1_2"}, f.GetSheetList())
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "a_b", sheetName("a/b", 0))
	assert.Equal(t, "Sheet3", sheetName("", 2))
	assert.Len(t, []rune(sheetName("a very long sheet name that keeps going", 0)), 31)
}

func TestCellValue(t *testing.T) {
	assert.Nil(t, cellValue(""))
	assert.Equal(t, 1.5, cellValue("1.5"))
	assert.Equal(t, "NaN", cellValue("NaN"))
	assert.Equal(t, "M+H", cellValue("M+H"))
}
