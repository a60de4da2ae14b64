// Package config loads the docskema CLI configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/reoring/docskema/mock"
)

// Config is the root configuration structure.
type Config struct {
	Mock     MockConfig   `yaml:"mock"`
	Log      LogConfig    `yaml:"log"`
	Output   OutputConfig `yaml:"output"`
	Language string       `yaml:"language"` // issue message language: en or ja
}

// MockConfig configures mock generation.
type MockConfig struct {
	Seed     uint64 `yaml:"seed"`
	ArrayMin int    `yaml:"array_min"`
	ArrayMax int    `yaml:"array_max"`
	TimeMin  string `yaml:"time_min,omitempty"` // RFC3339
	TimeMax  string `yaml:"time_max,omitempty"` // RFC3339
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

// OutputConfig configures how results are written.
type OutputConfig struct {
	Format string `yaml:"format"` // json or yaml
	Indent int    `yaml:"indent"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var cfg Config
	applyEnvOverrides(&cfg)
	setDefaults(&cfg)
	return &cfg
}

// Load reads configuration from a YAML file. An empty path yields Default.
func Load(path string) (*Config, error) {
	if path == "" {
		cfg := Default()
		if err := validate(cfg); err != nil {
			return nil, fmt.Errorf("validate config: %w", err)
		}
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// applyEnvOverrides applies DOCSKEMA_* environment variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DOCSKEMA_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("DOCSKEMA_MOCK_SEED"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.Mock.Seed = n
		}
	}
	if v := os.Getenv("DOCSKEMA_OUTPUT_FORMAT"); v != "" {
		cfg.Output.Format = v
	}
	if v := os.Getenv("DOCSKEMA_LANGUAGE"); v != "" {
		cfg.Language = v
	}
}

func setDefaults(cfg *Config) {
	if cfg.Mock.ArrayMin == 0 && cfg.Mock.ArrayMax == 0 {
		cfg.Mock.ArrayMin, cfg.Mock.ArrayMax = 1, 3
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Output.Format == "" {
		cfg.Output.Format = "json"
	}
	if cfg.Output.Indent == 0 {
		cfg.Output.Indent = 2
	}
	if cfg.Language == "" {
		cfg.Language = "en"
	}
}

func validate(cfg *Config) error {
	if cfg.Mock.ArrayMin < 0 || cfg.Mock.ArrayMax < cfg.Mock.ArrayMin {
		return fmt.Errorf("mock.array_min/array_max must satisfy 0 <= min <= max, got %d..%d", cfg.Mock.ArrayMin, cfg.Mock.ArrayMax)
	}
	if _, _, err := cfg.timeRange(); err != nil {
		return err
	}
	if _, err := zerolog.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	validFormats := map[string]bool{"json": true, "yaml": true}
	if !validFormats[cfg.Output.Format] {
		return fmt.Errorf("output.format must be 'json' or 'yaml', got %q", cfg.Output.Format)
	}
	if cfg.Output.Indent < 0 {
		return fmt.Errorf("output.indent must not be negative")
	}
	validLanguages := map[string]bool{"en": true, "ja": true}
	if !validLanguages[cfg.Language] {
		return fmt.Errorf("language must be 'en' or 'ja', got %q", cfg.Language)
	}
	return nil
}

func (cfg *Config) timeRange() (lo, hi time.Time, err error) {
	if cfg.Mock.TimeMin != "" {
		if lo, err = time.Parse(time.RFC3339, cfg.Mock.TimeMin); err != nil {
			return lo, hi, fmt.Errorf("mock.time_min: %w", err)
		}
	}
	if cfg.Mock.TimeMax != "" {
		if hi, err = time.Parse(time.RFC3339, cfg.Mock.TimeMax); err != nil {
			return lo, hi, fmt.Errorf("mock.time_max: %w", err)
		}
	}
	return lo, hi, nil
}

// MockOptions translates the mock section into mock options.
func (cfg *Config) MockOptions() []mock.Option {
	opts := []mock.Option{
		mock.Seed(cfg.Mock.Seed),
		mock.ArrayLength(cfg.Mock.ArrayMin, cfg.Mock.ArrayMax),
	}
	if lo, hi, err := cfg.timeRange(); err == nil && !lo.IsZero() && !hi.IsZero() {
		opts = append(opts, mock.TimeRange(lo, hi))
	}
	return opts
}

// LogLevel returns the parsed log level, info when unparsable.
func (cfg *Config) LogLevel() zerolog.Level {
	lvl, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}
