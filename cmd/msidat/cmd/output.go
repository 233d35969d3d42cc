package cmd

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ChrisMcGann/msidat/pkg/reader"
	"github.com/ChrisMcGann/msidat/pkg/table"
	"github.com/ChrisMcGann/msidat/pkg/writer"
)

// bindFlags binds config keys to flags so that a flag set on the command
// line overrides the config file and environment.
func bindFlags(lookup func(string) *pflag.Flag, keys map[string]string) {
	for key, name := range keys {
		if err := viper.BindPFlag(key, lookup(name)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", name, err))
		}
	}
}

func readInput(path, sheet string) (*table.Table, error) {
	t, err := reader.ReadTable(path, sheet)
	if err != nil {
		return nil, err
	}
	log.Info("Read input", "path", path, "sheet", t.Name, "rows", t.Len(), "columns", len(t.Columns))
	return t, nil
}

func writeOutput(path, description string, tables ...*table.Table) error {
	if err := writer.WriteAll(path, description, tables...); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	log.Info("Output written", "path", path, "tables", len(tables))
	return nil
}
