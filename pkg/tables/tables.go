// Package tables holds the process-wide element-mass and adduct tables.
//
// Tables are read-only once loaded. A Store swaps in freshly loaded tables
// atomically, so a caller that took a snapshot keeps using a consistent table
// for the whole batch even if the source file changes meanwhile.
package tables

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/ChrisMcGann/msidat/pkg/core"
	"github.com/ChrisMcGann/msidat/pkg/logger"
)

// LoadMassTable reads an element-mass table from a .json, .yaml or .yml file.
func LoadMassTable(path string) (*core.MassTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open element table: %w", err)
	}
	defer f.Close()

	var table *core.MassTable
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		table, err = core.LoadMassTableJSON(f)
	case ".yaml", ".yml":
		table, err = core.LoadMassTableYAML(f)
	default:
		return nil, fmt.Errorf("unsupported element table format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

// LoadAdductTable reads an adduct table from a .json, .yaml, .yml or .csv
// file. A CSV file holds a single polarity set, given by polarity.
func LoadAdductTable(path string, polarity core.Polarity) (*core.AdductTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open adduct table: %w", err)
	}
	defer f.Close()

	var table *core.AdductTable
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		table, err = core.LoadAdductTableJSON(f)
	case ".yaml", ".yml":
		table, err = core.LoadAdductTableYAML(f)
	case ".csv":
		table = core.NewAdductTable()
		err = table.Set(polarity).LoadFromCSV(f)
	default:
		return nil, fmt.Errorf("unsupported adduct table format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

// Store owns the current tables. An empty path selects the built-in table.
type Store struct {
	MassPath   string
	AdductPath string

	masses  atomic.Pointer[core.MassTable]
	adducts atomic.Pointer[core.AdductTable]
	log     logger.Logger
}

// NewStore loads both tables. Unlike Reload, a failure here is fatal: there is
// no previous table to fall back to.
func NewStore(massPath, adductPath string, log logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.Nop()
	}
	s := &Store{MassPath: massPath, AdductPath: adductPath, log: log}

	masses, err := s.loadMasses()
	if err != nil {
		return nil, err
	}
	adducts, err := s.loadAdducts()
	if err != nil {
		return nil, err
	}
	s.masses.Store(masses)
	s.adducts.Store(adducts)

	log.Debug("Loaded tables",
		"elements", masses.Len(),
		"positive_adducts", adducts.Positive.Len(),
		"negative_adducts", adducts.Negative.Len())
	return s, nil
}

func (s *Store) loadMasses() (*core.MassTable, error) {
	if s.MassPath == "" {
		return core.DefaultMassTable(), nil
	}
	return LoadMassTable(s.MassPath)
}

func (s *Store) loadAdducts() (*core.AdductTable, error) {
	if s.AdductPath == "" {
		return core.DefaultAdductTable(), nil
	}
	return LoadAdductTable(s.AdductPath, core.Positive)
}

// Masses returns the current element-mass table.
func (s *Store) Masses() *core.MassTable {
	return s.masses.Load()
}

// Adducts returns the current adduct table.
func (s *Store) Adducts() *core.AdductTable {
	return s.adducts.Load()
}

// Resolver returns a resolver bound to the current element-mass table.
func (s *Store) Resolver() *core.Resolver {
	return core.NewResolver(s.Masses(), s.log)
}

// Reload re-reads both files. Each table is swapped only if it loaded
// successfully; a failed table keeps its previous version.
func (s *Store) Reload() error {
	_, err := s.reload()
	return err
}

// reload is Reload that also reports how many tables were swapped.
func (s *Store) reload() (int, error) {
	var errs []error
	swapped := 0

	if masses, err := s.loadMasses(); err != nil {
		s.log.Warn("Keeping previous element table", "path", s.MassPath, "error", err)
		errs = append(errs, err)
	} else {
		s.masses.Store(masses)
		swapped++
	}

	if adducts, err := s.loadAdducts(); err != nil {
		s.log.Warn("Keeping previous adduct table", "path", s.AdductPath, "error", err)
		errs = append(errs, err)
	} else {
		s.adducts.Store(adducts)
		swapped++
	}

	return swapped, errors.Join(errs...)
}
