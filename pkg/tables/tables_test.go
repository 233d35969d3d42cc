package tables

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChrisMcGann/msidat/pkg/core"
)

const massJSON = `{"ele_mass": {"H": 1.00782503207, "O": 15.99491461956, "e+": -0.00054857990946, "e-": 0.00054857990946}}`

const adductYAML = `
positve:
  M+H: 1.0072766
  M+Na: 22.9892213
negative:
  M-H: -1.0072766
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadMassTable(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "ele.json")
	writeFile(t, jsonPath, massJSON)
	table, err := LoadMassTable(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, 4, table.Len())

	yamlPath := filepath.Join(dir, "ele.yaml")
	writeFile(t, yamlPath, "H: 1.00782503207\nC: 12.0\n")
	table, err = LoadMassTable(yamlPath)
	require.NoError(t, err)
	m, ok := table.Mass("C")
	assert.True(t, ok)
	assert.Equal(t, 12.0, m)

	_, err = LoadMassTable(filepath.Join(dir, "ele.ini"))
	assert.Error(t, err)
}

func TestLoadAdductTable(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "adducts.yml")
	writeFile(t, yamlPath, adductYAML)
	table, err := LoadAdductTable(yamlPath, core.Positive)
	require.NoError(t, err)
	assert.Equal(t, []string{"M+H", "M+Na"}, table.Labels(core.Positive))
	assert.Equal(t, []string{"M-H"}, table.Labels(core.Negative))

	csvPath := filepath.Join(dir, "negative.csv")
	writeFile(t, csvPath, "adduct,delta\nM-H,-1.0072766\nM+Cl,34.9694011\n")
	table, err = LoadAdductTable(csvPath, core.Negative)
	require.NoError(t, err)
	assert.Equal(t, []string{"M-H", "M+Cl"}, table.Labels(core.Negative))
	assert.Empty(t, table.Labels(core.Positive))
}

func TestStoreDefaults(t *testing.T) {
	s, err := NewStore("", "", nil)
	require.NoError(t, err)
	assert.Positive(t, s.Masses().Len())
	assert.Positive(t, s.Adducts().Positive.Len())

	mass, err := s.Resolver().Resolve("H2O")
	require.NoError(t, err)
	assert.InDelta(t, 18.0105646837, mass, 1e-6)
}

func TestStoreReloadKeepsPreviousOnFailure(t *testing.T) {
	dir := t.TempDir()
	massPath := filepath.Join(dir, "ele.json")
	writeFile(t, massPath, massJSON)

	s, err := NewStore(massPath, "", nil)
	require.NoError(t, err)
	before := s.Masses()

	writeFile(t, massPath, `{"ele_mass": {"H": -1}}`)
	assert.Error(t, s.Reload())
	assert.Same(t, before, s.Masses())

	writeFile(t, massPath, `{"ele_mass": {"H": 1.00782503207, "C": 12}}`)
	require.NoError(t, s.Reload())
	assert.Equal(t, 2, s.Masses().Len())
	assert.NotSame(t, before, s.Masses())
}

func TestNewStoreFailsOnBadFile(t *testing.T) {
	dir := t.TempDir()
	massPath := filepath.Join(dir, "ele.json")
	writeFile(t, massPath, `{}`)

	_, err := NewStore(massPath, "", nil)
	assert.ErrorIs(t, err, core.ErrMissingMassTable)
}

func TestWatchReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	massPath := filepath.Join(dir, "ele.json")
	writeFile(t, massPath, massJSON)

	s, err := NewStore(massPath, "", nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var reloads atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- s.Watch(ctx, 20*time.Millisecond, func() { reloads.Add(1) })
	}()

	// Keep rewriting until the watcher has picked a change up; the first
	// write can race with the watcher registering its directory.
	assert.Eventually(t, func() bool {
		writeFile(t, massPath, `{"ele_mass": {"H": 1.00782503207, "C": 12, "N": 14.0030740048}}`)
		return reloads.Load() > 0
	}, 5*time.Second, 100*time.Millisecond)
	assert.Equal(t, 3, s.Masses().Len())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestWatchReloadsWhenOtherTableFails(t *testing.T) {
	dir := t.TempDir()
	massPath := filepath.Join(dir, "ele.json")
	adductPath := filepath.Join(dir, "adducts.yaml")
	writeFile(t, massPath, massJSON)
	writeFile(t, adductPath, adductYAML)

	s, err := NewStore(massPath, adductPath, nil)
	require.NoError(t, err)
	adducts := s.Adducts()

	// The adduct file is broken before watching starts, so every reload
	// fails for it while the element table keeps loading.
	writeFile(t, adductPath, "positive: [not, a, mapping]\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var reloads atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- s.Watch(ctx, 20*time.Millisecond, func() { reloads.Add(1) })
	}()

	assert.Eventually(t, func() bool {
		writeFile(t, massPath, `{"ele_mass": {"H": 1.00782503207, "C": 12, "N": 14.0030740048}}`)
		return reloads.Load() > 0
	}, 5*time.Second, 100*time.Millisecond)
	assert.Equal(t, 3, s.Masses().Len())
	assert.Same(t, adducts, s.Adducts())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestWatchWithoutFiles(t *testing.T) {
	s, err := NewStore("", "", nil)
	require.NoError(t, err)
	assert.Error(t, s.Watch(context.Background(), 0, nil))
}
