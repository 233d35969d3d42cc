package table

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *Table {
	t := New("peaks", []string{"m/z", "Intensity", "Name"})
	t.AppendRow("100.0005", "5000", "A")
	t.AppendRow("", "10")
	t.AppendRow("200.25", "1e4", "C")
	return t
}

func TestIndex(t *testing.T) {
	tbl := sample()

	i, err := tbl.Index("Intensity")
	require.NoError(t, err)
	assert.Equal(t, 1, i)

	i, err = tbl.Index(" name ")
	require.NoError(t, err)
	assert.Equal(t, 2, i)

	_, err = tbl.Index("Theoretical m/z")
	var colErr *ColumnError
	require.True(t, errors.As(err, &colErr))
	assert.Equal(t, "Theoretical m/z", colErr.Column)
}

func TestFloats(t *testing.T) {
	tbl := sample()

	mz, err := tbl.FloatsByName("m/z")
	require.NoError(t, err)
	require.Len(t, mz, 3)
	assert.Equal(t, 100.0005, mz[0])
	assert.True(t, math.IsNaN(mz[1]))
	assert.Equal(t, 200.25, mz[2])

	in, err := tbl.Floats(1)
	require.NoError(t, err)
	assert.Equal(t, []float64{5000, 10, 10000}, in)

	_, err = tbl.Floats(2)
	var cellErr *CellError
	require.True(t, errors.As(err, &cellErr))
	assert.Equal(t, 1, cellErr.Row)
	assert.Equal(t, "Name", cellErr.Column)
}

func TestCellShortRow(t *testing.T) {
	tbl := sample()
	assert.Equal(t, "", tbl.Cell(1, 2))
	assert.Equal(t, "", tbl.Cell(10, 0))
	assert.Equal(t, []string{"A", "", "C"}, tbl.Strings(2))
}

func TestAppendColumn(t *testing.T) {
	tbl := sample()
	require.NoError(t, tbl.AppendFloatColumn("error", []float64{5, math.NaN(), -1.5}))
	assert.Equal(t, []string{"m/z", "Intensity", "Name", "error"}, tbl.Columns)
	assert.Equal(t, []string{"", "10", "", ""}, tbl.Rows[1])
	assert.Equal(t, "-1.5", tbl.Cell(2, 3))

	assert.Error(t, tbl.AppendColumn("short", []string{"x"}))
}

func TestClone(t *testing.T) {
	tbl := sample()
	c := tbl.Clone("copy")
	c.Rows[0][0] = "changed"
	assert.Equal(t, "100.0005", tbl.Rows[0][0])
	assert.Equal(t, "copy", c.Name)
	assert.Equal(t, 3, c.Len())
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "", FormatFloat(math.NaN()))
	assert.Equal(t, "18.010564684", FormatFloat(18.010564684))
	assert.Equal(t, "100", FormatFloat(100))
}
