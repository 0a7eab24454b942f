package gplan

import (
	"github.com/pkg/errors"
)

// Config holds the thresholds and file locations read by the enumerators and the CLI.
type Config struct {
	MaxPatternSizeInGlogue int    `mapstructure:"max_pattern_size_in_glogue" yaml:"max_pattern_size_in_glogue"`
	MinPatternSize         int    `mapstructure:"min_pattern_size" yaml:"min_pattern_size"`
	CatalogPath            string `mapstructure:"catalog_path" yaml:"catalog_path"`
	StatsPath              string `mapstructure:"stats_path" yaml:"stats_path"`
}

func DefaultConfig() Config {
	return Config{
		MaxPatternSizeInGlogue: DefaultMaxPatternSizeInGlogue,
		MinPatternSize:         DefaultMinPatternSize,
	}
}

func (cfg *Config) Validate() error {
	if cfg.MaxPatternSizeInGlogue < 0 {
		return errors.Wrapf(ErrBadConfig, "max_pattern_size_in_glogue must not be negative (got %d)", cfg.MaxPatternSizeInGlogue)
	}
	if cfg.MinPatternSize < 1 {
		return errors.Wrapf(ErrBadConfig, "min_pattern_size must be at least 1 (got %d)", cfg.MinPatternSize)
	}
	return nil
}
