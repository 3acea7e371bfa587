package main

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// runConfig is the demo's run configuration, loaded by viper from
// defaults, an optional config file, and environment variables (TRELLIS_
// prefixed), in that ascending precedence order. No command-line flag
// feeds these fields.
type runConfig struct {
	Dimensions    int     `mapstructure:"dimensions"`
	StepSize      float64 `mapstructure:"step_size"`
	MaxIter       uint64  `mapstructure:"max_iter"`
	Tolerance     float64 `mapstructure:"tolerance"`
	LogLevel      string  `mapstructure:"log_level"`
	MetricsEnable bool    `mapstructure:"metrics_enabled"`
	OutputFile    string  `mapstructure:"output_file"`
	OutputFormat  string  `mapstructure:"output_format"`
}

func loadConfig(path string) (*runConfig, error) {
	v := viper.New()

	setConfigDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("trellis")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg runConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setConfigDefaults(v *viper.Viper) {
	v.SetDefault("dimensions", 4)
	v.SetDefault("step_size", 0.1)
	v.SetDefault("max_iter", 10000)
	v.SetDefault("tolerance", 1e-8)
	v.SetDefault("log_level", "info")
	v.SetDefault("metrics_enabled", false)
	v.SetDefault("output_file", "")
	v.SetDefault("output_format", "json")
}
