// Package config loads the pipeline configuration from YAML with sane
// defaults. Command line flags override the loaded values at the cmd layer.
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nebulacode/curvematch/compress"
)

// InputConfig locates the three CSV inputs.
type InputConfig struct {
	// TrainPath is the training table CSV (x, y1..y4).
	TrainPath string `yaml:"train"`
	// IdealPath is the candidate table CSV (x, y1..y50).
	IdealPath string `yaml:"ideal"`
	// TestPath is the test point CSV (x, y).
	TestPath string `yaml:"test"`
	// Delimiter is the CSV field delimiter, a single character.
	Delimiter string `yaml:"delimiter"`
}

// DatabaseConfig locates the SQLite results database.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ArchiveConfig controls the snapshot archive output.
type ArchiveConfig struct {
	// Path of the snapshot file; empty disables archiving.
	Path string `yaml:"path"`
	// Compression names the payload codec: none, zstd, s2 or lz4.
	Compression string `yaml:"compression"`
}

// ReportConfig controls the HTML report output.
type ReportConfig struct {
	// Path of the HTML report; empty disables rendering.
	Path string `yaml:"path"`
	// Title overrides the page title.
	Title string `yaml:"title"`
}

// Config is the full pipeline configuration.
type Config struct {
	Input    InputConfig    `yaml:"input"`
	Database DatabaseConfig `yaml:"database"`
	Archive  ArchiveConfig  `yaml:"archive"`
	Report   ReportConfig   `yaml:"report"`

	// Workers bounds mapper concurrency; 0 means one per CPU.
	Workers int `yaml:"workers"`
	// LogLevel is a zap level name: debug, info, warn or error.
	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Input: InputConfig{
			TrainPath: "train.csv",
			IdealPath: "ideal.csv",
			TestPath:  "test.csv",
			Delimiter: ";",
		},
		Database: DatabaseConfig{Path: "curvematch.db"},
		Archive:  ArchiveConfig{Compression: "zstd"},
		LogLevel: "info",
	}
}

// Load reads a YAML config file on top of the defaults.
//
// Unknown keys are rejected so typos surface immediately instead of
// silently falling back to a default.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks cross-field constraints that YAML decoding cannot.
func (c *Config) Validate() error {
	if c.Input.TrainPath == "" || c.Input.IdealPath == "" || c.Input.TestPath == "" {
		return fmt.Errorf("config: all three input paths are required")
	}

	if _, err := c.DelimiterRune(); err != nil {
		return err
	}

	if c.Database.Path == "" {
		return fmt.Errorf("config: database path is required")
	}

	if _, err := c.CompressionType(); err != nil {
		return err
	}

	if c.Workers < 0 {
		return fmt.Errorf("config: workers must not be negative, got %d", c.Workers)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log level %q", c.LogLevel)
	}

	return nil
}

// DelimiterRune returns the configured CSV delimiter as a rune.
func (c *Config) DelimiterRune() (rune, error) {
	runes := []rune(c.Input.Delimiter)
	if len(runes) != 1 {
		return 0, fmt.Errorf("config: delimiter must be one character, got %q", c.Input.Delimiter)
	}

	return runes[0], nil
}

// CompressionType resolves the archive compression name.
func (c *Config) CompressionType() (compress.Type, error) {
	t, err := compress.ParseType(c.Archive.Compression)
	if err != nil {
		return 0, fmt.Errorf("config: %w", err)
	}

	return t, nil
}
