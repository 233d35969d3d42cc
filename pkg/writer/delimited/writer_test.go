package delimited

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChrisMcGann/msidat/pkg/table"
)

func TestWriterMultipleTables(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "db.csv")

	pos := table.New("positive", []string{"Formula", "[M+H]+"})
	pos.AppendRow("C6H12O6", "181.0706647")
	neg := table.New("negative", []string{"Formula", "[M-H]-"})
	neg.AppendRow("NaCl, KCl", "")

	w := NewWriter(path)
	require.NoError(t, w.WriteTable(pos))
	require.NoError(t, w.WriteTable(neg))
	require.NoError(t, w.Finalize())

	assert.Equal(t, []string{path, filepath.Join(dir, "db_negative.csv")}, w.Paths())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Formula,[M+H]+\nC6H12O6,181.0706647\n", string(data))

	data, err = os.ReadFile(filepath.Join(dir, "db_negative.csv"))
	require.NoError(t, err)
	assert.Equal(t, "Formula,[M-H]-\n\"NaCl, KCl\",\n", string(data))
}

func TestWriterTSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.tsv")
	tbl := table.New("match", []string{"m/z", "measured m/z"})
	tbl.AppendRow("100", "100.0005")

	w := NewWriter(path)
	require.NoError(t, w.WriteTable(tbl))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "m/z\tmeasured m/z\n100\t100.0005\n", string(data))
}
