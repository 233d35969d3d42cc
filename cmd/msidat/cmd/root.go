// Package cmd provides CLI command implementations
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ChrisMcGann/msidat/pkg/config"
	"github.com/ChrisMcGann/msidat/pkg/logger"
	"github.com/ChrisMcGann/msidat/pkg/tables"
)

var (
	cfgFile string

	// Resolved once per invocation by the root pre-run hook.
	cfg config.Config
	log logger.Logger = logger.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "msidat",
	Short: "msidat - mass spectrometry imaging data annotation tool",
	Long: `msidat derives theoretical ion masses from chemical formulas and matches
measured m/z values against them within a ppm tolerance.

- formula:  monoisotopic mass of chemical formulas
- mass:     build a compound database with adduct ion columns
- match:    evaluate calibration shift against known targets
- annotate: annotate imaging data against a compound database

Settings come from flags, MSIDAT_* environment variables and msidat.yaml
(working directory or ~/.config/msidat), in that order of precedence.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ./msidat.yaml or ~/.config/msidat/msidat.yaml)")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.Bool("log-json", false, "log as JSON")
	flags.Int("workers", 0, "parallel workers for matching (0 = number of CPUs)")
	flags.String("elements", "", "element mass table (.json, .yaml); built-in table if empty")
	flags.String("adducts", "", "adduct table (.json, .yaml, .csv); built-in table if empty")

	bindFlags(rootCmd.PersistentFlags().Lookup, map[string]string{
		config.KeyLogLevel: "log-level",
		config.KeyLogJSON:  "log-json",
		config.KeyWorkers:  "workers",
		config.KeyElements: "elements",
		config.KeyAdducts:  "adducts",
	})
}

func setup(cmd *cobra.Command, args []string) error {
	used, err := config.Init(viper.GetViper(), cfgFile)
	if err != nil {
		return err
	}
	cfg, err = config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	if err := logger.Setup(cfg.Log.Level, cfg.Log.JSON); err != nil {
		return err
	}
	log = logger.Default()
	if used != "" {
		log.Debug("Using config file", "path", used)
	}
	return nil
}

// newStore loads the element and adduct tables named by the configuration.
func newStore() (*tables.Store, error) {
	return tables.NewStore(cfg.Tables.Elements, cfg.Tables.Adducts, log)
}
