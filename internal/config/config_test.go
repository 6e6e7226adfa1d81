package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8085, cfg.HTTPPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "financial_transactions", cfg.CollectionName)
	assert.Equal(t, "gemini-embedding-001", cfg.EmbeddingModel)
	assert.Equal(t, 5, cfg.DefaultResults)
	assert.Equal(t, 5, cfg.JobWorkers)
	assert.False(t, cfg.ArchiveEnabled)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("FINRAG_HTTP_PORT", "9090")
	t.Setenv("FINRAG_LOG_LEVEL", "debug")
	t.Setenv("FINRAG_COLLECTION_NAME", "test_collection")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "test_collection", cfg.CollectionName)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("http_port: 7070\ndata_dir: /var/lib/finrag\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.HTTPPort)
	assert.Equal(t, "/var/lib/finrag", cfg.DataDir)
	// Untouched keys keep their defaults.
	assert.Equal(t, "financial_transactions", cfg.CollectionName)
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults pass", func(c *Config) {}, false},
		{"port zero", func(c *Config) { c.HTTPPort = 0 }, true},
		{"port too large", func(c *Config) { c.HTTPPort = 70000 }, true},
		{"empty data dir", func(c *Config) { c.DataDir = "" }, true},
		{"empty collection", func(c *Config) { c.CollectionName = "" }, true},
		{"non-positive results", func(c *Config) { c.DefaultResults = 0 }, true},
		{"archive without project", func(c *Config) { c.ArchiveEnabled = true }, true},
		{"archive with project", func(c *Config) { c.ArchiveEnabled = true; c.GCPProject = "my-proj" }, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
