// Package config loads application settings from flags, environment, and an
// optional config file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config carries the tunables of the de-identification pipeline.
type Config struct {
	// Small-group scan defaults.
	K           int `mapstructure:"k"`
	MinCombSize int `mapstructure:"min_comb_size"`
	MaxCombSize int `mapstructure:"max_comb_size"`

	// Binning defaults.
	Bins          int    `mapstructure:"bins"`
	BinningMethod string `mapstructure:"binning_method"`

	// Type detector thresholds.
	NumericThreshold float64 `mapstructure:"numeric_threshold"`
	DateThreshold    float64 `mapstructure:"date_threshold"`
	FactorRatio      float64 `mapstructure:"factor_threshold_ratio"`
	FactorUnique     int     `mapstructure:"factor_threshold_unique"`

	LogLevel string `mapstructure:"log_level"`
}

// Load reads configuration with precedence env > config file > defaults.
// When cfgFile is empty, ~/.deidapp/config.yaml is used if present.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DEIDAPP")
	v.AutomaticEnv()

	v.SetDefault("k", 5)
	v.SetDefault("min_comb_size", 1)
	v.SetDefault("max_comb_size", 0)
	v.SetDefault("bins", 10)
	v.SetDefault("binning_method", "equal-width")
	v.SetDefault("numeric_threshold", 0.9)
	v.SetDefault("date_threshold", 0.5)
	v.SetDefault("factor_threshold_ratio", 0.5)
	v.SetDefault("factor_threshold_unique", 50)
	v.SetDefault("log_level", "info")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, ".deidapp"))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// The config file is optional.
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}
