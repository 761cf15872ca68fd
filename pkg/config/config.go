// Package config provides the viper-based configuration for tabrun runs.
// Settings come from an optional YAML file, TABRUN_ environment variables
// and built-in defaults, in that order of precedence (flags are layered on
// top by the CLI).
package config

import (
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/tabrun/tabrun/pkg/errors"
)

// Config is the root configuration.
type Config struct {
	Log    LogConfig    `mapstructure:"log" yaml:"log"`
	Run    RunConfig    `mapstructure:"run" yaml:"run"`
	Export ExportConfig `mapstructure:"export" yaml:"export"`
	Sim    SimConfig    `mapstructure:"sim" yaml:"sim"`
}

// LogConfig controls logging output.
type LogConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Encoding    string `mapstructure:"encoding" yaml:"encoding"`
	Development bool   `mapstructure:"development" yaml:"development"`
}

// RunConfig controls batch execution.
type RunConfig struct {
	Parallelism   int   `mapstructure:"parallelism" yaml:"parallelism"`
	Progress      bool  `mapstructure:"progress" yaml:"progress"`
	ProgressEvery int64 `mapstructure:"progress_every" yaml:"progress_every"`
}

// ExportConfig controls where and how the result table is written.
type ExportConfig struct {
	Format   string `mapstructure:"format" yaml:"format"`
	Path     string `mapstructure:"path" yaml:"path"`
	Compress bool   `mapstructure:"compress" yaml:"compress"`
}

// SimConfig parameterizes the built-in episode batch.
type SimConfig struct {
	Policies []string `mapstructure:"policies" yaml:"policies"`
	Episodes int      `mapstructure:"episodes" yaml:"episodes"`
	Horizon  int      `mapstructure:"horizon" yaml:"horizon"`
	Discount float64  `mapstructure:"discount" yaml:"discount"`
	Seed     int64    `mapstructure:"seed" yaml:"seed"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log: LogConfig{
			Level:    "info",
			Encoding: "console",
		},
		Run: RunConfig{
			Parallelism:   1,
			Progress:      true,
			ProgressEvery: 10,
		},
		Export: ExportConfig{
			Format: "csv",
			Path:   "results.csv",
		},
		Sim: SimConfig{
			Policies: []string{"cautious", "random", "bold"},
			Episodes: 100,
			Horizon:  1000,
			Discount: 0.99,
			Seed:     1,
		},
	}
}

// Load reads configuration from the given file path (optional), the
// environment and defaults. An empty path searches for tabrun.yaml in the
// working directory; a missing file is not an error in that case.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("TABRUN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "reading config file")
		}
	} else {
		v.SetConfigName("tabrun")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, errors.Wrap(err, errors.ErrorTypeConfig, "reading config file")
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "decoding config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.encoding", d.Log.Encoding)
	v.SetDefault("log.development", d.Log.Development)
	v.SetDefault("run.parallelism", d.Run.Parallelism)
	v.SetDefault("run.progress", d.Run.Progress)
	v.SetDefault("run.progress_every", d.Run.ProgressEvery)
	v.SetDefault("export.format", d.Export.Format)
	v.SetDefault("export.path", d.Export.Path)
	v.SetDefault("export.compress", d.Export.Compress)
	v.SetDefault("sim.policies", d.Sim.Policies)
	v.SetDefault("sim.episodes", d.Sim.Episodes)
	v.SetDefault("sim.horizon", d.Sim.Horizon)
	v.SetDefault("sim.discount", d.Sim.Discount)
	v.SetDefault("sim.seed", d.Sim.Seed)
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.Run.Parallelism < 1 {
		return errors.Newf(errors.ErrorTypeValidation, "run.parallelism must be >= 1, got %d", c.Run.Parallelism)
	}
	if c.Sim.Episodes < 0 {
		return errors.Newf(errors.ErrorTypeValidation, "sim.episodes must be >= 0, got %d", c.Sim.Episodes)
	}
	if c.Sim.Horizon < 1 {
		return errors.Newf(errors.ErrorTypeValidation, "sim.horizon must be >= 1, got %d", c.Sim.Horizon)
	}
	if c.Sim.Discount <= 0 || c.Sim.Discount > 1 {
		return errors.Newf(errors.ErrorTypeValidation, "sim.discount must be in (0, 1], got %g", c.Sim.Discount)
	}
	switch c.Export.Format {
	case "csv", "json", "arrow", "":
	default:
		return errors.Newf(errors.ErrorTypeValidation, "export.format must be csv, json or arrow, got %q", c.Export.Format)
	}
	return nil
}

// RenderDefault renders the default configuration as YAML, suitable for
// seeding a config file.
func RenderDefault() ([]byte, error) {
	d := Default()
	out, err := yaml.Marshal(&d)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "rendering default config")
	}
	return out, nil
}
