package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nebulacode/curvematch/compress"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "train.csv", cfg.Input.TrainPath)
	assert.Equal(t, ";", cfg.Input.Delimiter)
	assert.Equal(t, "curvematch.db", cfg.Database.Path)
	assert.Equal(t, "zstd", cfg.Archive.Compression)
	assert.Equal(t, "info", cfg.LogLevel)

	d, err := cfg.DelimiterRune()
	require.NoError(t, err)
	assert.Equal(t, ';', d)

	ct, err := cfg.CompressionType()
	require.NoError(t, err)
	assert.Equal(t, compress.TypeZstd, ct)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
input:
  train: data/train.csv
  ideal: data/ideal.csv
  test: data/test.csv
  delimiter: ","
database:
  path: out/run.db
archive:
  path: out/run.cvms
  compression: lz4
report:
  path: out/report.html
  title: nightly run
workers: 8
log_level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "data/train.csv", cfg.Input.TrainPath)
	assert.Equal(t, "out/run.db", cfg.Database.Path)
	assert.Equal(t, "out/run.cvms", cfg.Archive.Path)
	assert.Equal(t, "nightly run", cfg.Report.Title)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, "debug", cfg.LogLevel)

	d, err := cfg.DelimiterRune()
	require.NoError(t, err)
	assert.Equal(t, ',', d)

	ct, err := cfg.CompressionType()
	require.NoError(t, err)
	assert.Equal(t, compress.TypeLZ4, ct)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  path: other.db
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "other.db", cfg.Database.Path)
	assert.Equal(t, "train.csv", cfg.Input.TrainPath, "unset keys keep defaults")
	assert.Equal(t, "zstd", cfg.Archive.Compression)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, `
databse:
  path: typo.db
`)

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "empty train path", mutate: func(c *Config) { c.Input.TrainPath = "" }},
		{name: "empty ideal path", mutate: func(c *Config) { c.Input.IdealPath = "" }},
		{name: "empty test path", mutate: func(c *Config) { c.Input.TestPath = "" }},
		{name: "multi-char delimiter", mutate: func(c *Config) { c.Input.Delimiter = ";;" }},
		{name: "empty delimiter", mutate: func(c *Config) { c.Input.Delimiter = "" }},
		{name: "empty db path", mutate: func(c *Config) { c.Database.Path = "" }},
		{name: "bad compression", mutate: func(c *Config) { c.Archive.Compression = "brotli" }},
		{name: "negative workers", mutate: func(c *Config) { c.Workers = -1 }},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestEmptyCompressionMeansNone(t *testing.T) {
	cfg := Default()
	cfg.Archive.Compression = ""

	require.NoError(t, cfg.Validate())
	ct, err := cfg.CompressionType()
	require.NoError(t, err)
	assert.Equal(t, compress.TypeNone, ct)
}
