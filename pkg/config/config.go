// Package config turns viper settings (file, environment, flags) into the
// immutable configuration values the commands run with.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ChrisMcGann/msidat/pkg/logger"
	"github.com/ChrisMcGann/msidat/pkg/match"
)

// EnvPrefix prefixes environment overrides, e.g. MSIDAT_MATCH_TOLERANCE.
const EnvPrefix = "MSIDAT"

// Config keys.
const (
	KeyLogLevel = "log.level"
	KeyLogJSON  = "log.json"
	KeyWorkers  = "workers"

	KeyElements = "tables.elements"
	KeyAdducts  = "tables.adducts"
	KeyDebounce = "tables.debounce"

	KeyDatabaseColumn   = "database.column"
	KeyDatabaseSheet    = "database.sheet"
	KeyDatabasePositive = "database.positive"
	KeyDatabaseNegative = "database.negative"
	KeyDatabaseAll      = "database.all"

	KeyTolerance          = "match.tolerance"
	KeyIntensityThreshold = "match.intensity_threshold"
	KeySourceMZ           = "match.source_mz"
	KeySourceIntensity    = "match.source_intensity"
	KeyTargetMZ           = "match.target_mz"

	KeyPPMLow         = "annotate.ppm_low"
	KeyPPMHigh        = "annotate.ppm_high"
	KeyConvention     = "annotate.convention"
	KeyLabelColumn    = "annotate.label_column"
	KeyFirstRefColumn = "annotate.first_ref_column"
)

// LogConfig selects the log level and format.
type LogConfig struct {
	Level string
	JSON  bool
}

// TablesConfig points at the element and adduct table files. Empty paths
// select the built-in tables.
type TablesConfig struct {
	Elements string
	Adducts  string
	Debounce time.Duration
}

// DatabaseConfig controls compound database construction.
type DatabaseConfig struct {
	FormulaColumn string
	Sheet         string
	Positive      []string
	Negative      []string
	All           bool
}

// MatchColumns names the columns used by shift evaluation.
type MatchColumns struct {
	SourceMZ        string
	SourceIntensity string
	TargetMZ        string
}

// AnnotateColumns locates the reference columns in a database sheet, by
// 0-based position: the row label column and the first m/z column.
type AnnotateColumns struct {
	LabelColumn    int
	FirstRefColumn int
}

// Config is the resolved configuration. It is built once per command and
// passed by value afterwards.
type Config struct {
	Log             LogConfig
	Tables          TablesConfig
	Database        DatabaseConfig
	Shift           match.ShiftConfig
	MatchColumns    MatchColumns
	Annotate        match.AnnotateConfig
	AnnotateColumns AnnotateColumns
}

// SetDefaults registers the default of every key.
func SetDefaults(v *viper.Viper) {
	shift := match.DefaultShiftConfig()
	annotate := match.DefaultAnnotateConfig()

	v.SetDefault(KeyLogLevel, string(logger.InfoLevel))
	v.SetDefault(KeyLogJSON, false)
	v.SetDefault(KeyWorkers, 0)

	v.SetDefault(KeyElements, "")
	v.SetDefault(KeyAdducts, "")
	v.SetDefault(KeyDebounce, 200*time.Millisecond)

	v.SetDefault(KeyDatabaseColumn, "Formula")
	v.SetDefault(KeyDatabaseSheet, "")
	v.SetDefault(KeyDatabasePositive, []string{})
	v.SetDefault(KeyDatabaseNegative, []string{})
	v.SetDefault(KeyDatabaseAll, false)

	v.SetDefault(KeyTolerance, shift.TolerancePPM)
	v.SetDefault(KeyIntensityThreshold, shift.IntensityThreshold)
	v.SetDefault(KeySourceMZ, "m/z")
	v.SetDefault(KeySourceIntensity, "Intensity")
	v.SetDefault(KeyTargetMZ, "Theoretical m/z")

	v.SetDefault(KeyPPMLow, annotate.PPMLow)
	v.SetDefault(KeyPPMHigh, annotate.PPMHigh)
	v.SetDefault(KeyConvention, annotate.Convention.String())
	v.SetDefault(KeyLabelColumn, 0)
	v.SetDefault(KeyFirstRefColumn, 4)
}

// Init prepares v: defaults, environment overrides and the config file.
// An explicit cfgFile must exist; otherwise msidat.yaml is looked up in the
// working directory and ~/.config/msidat, and a missing file is fine.
// It returns the file used, if any.
func Init(v *viper.Viper, cfgFile string) (string, error) {
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("msidat")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "msidat"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read config: %w", err)
	}
	return v.ConfigFileUsed(), nil
}

// Load resolves and validates the configuration.
func Load(v *viper.Viper) (Config, error) {
	workers := v.GetInt(KeyWorkers)

	convention, err := match.ParseConvention(v.GetString(KeyConvention))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", KeyConvention, err)
	}

	cfg := Config{
		Log: LogConfig{
			Level: v.GetString(KeyLogLevel),
			JSON:  v.GetBool(KeyLogJSON),
		},
		Tables: TablesConfig{
			Elements: v.GetString(KeyElements),
			Adducts:  v.GetString(KeyAdducts),
			Debounce: v.GetDuration(KeyDebounce),
		},
		Database: DatabaseConfig{
			FormulaColumn: v.GetString(KeyDatabaseColumn),
			Sheet:         v.GetString(KeyDatabaseSheet),
			Positive:      splitList(v.GetStringSlice(KeyDatabasePositive)),
			Negative:      splitList(v.GetStringSlice(KeyDatabaseNegative)),
			All:           v.GetBool(KeyDatabaseAll),
		},
		Shift: match.ShiftConfig{
			TolerancePPM:       v.GetFloat64(KeyTolerance),
			IntensityThreshold: v.GetFloat64(KeyIntensityThreshold),
			Workers:            workers,
		},
		MatchColumns: MatchColumns{
			SourceMZ:        v.GetString(KeySourceMZ),
			SourceIntensity: v.GetString(KeySourceIntensity),
			TargetMZ:        v.GetString(KeyTargetMZ),
		},
		Annotate: match.AnnotateConfig{
			PPMLow:     v.GetFloat64(KeyPPMLow),
			PPMHigh:    v.GetFloat64(KeyPPMHigh),
			Convention: convention,
			Workers:    workers,
		},
		AnnotateColumns: AnnotateColumns{
			LabelColumn:    v.GetInt(KeyLabelColumn),
			FirstRefColumn: v.GetInt(KeyFirstRefColumn),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values that every command depends on.
func (c Config) Validate() error {
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%s: %w", KeyLogLevel, err)
	}
	if c.Tables.Debounce < 0 {
		return fmt.Errorf("%s must not be negative", KeyDebounce)
	}
	if err := c.Shift.Validate(); err != nil {
		return fmt.Errorf("match: %w", err)
	}
	if err := c.Annotate.Validate(); err != nil {
		return fmt.Errorf("annotate: %w", err)
	}
	if c.AnnotateColumns.LabelColumn < 0 || c.AnnotateColumns.FirstRefColumn < 0 {
		return fmt.Errorf("annotate: column positions must not be negative")
	}
	return nil
}

// splitList accepts both YAML lists and comma-separated strings
// (MSIDAT_DATABASE_POSITIVE="M+H,M+Na").
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
