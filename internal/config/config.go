// Package config loads service configuration from defaults, an optional
// config file and FINRAG_-prefixed environment variables, in increasing
// order of precedence.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds every tunable the binaries read at startup.
type Config struct {
	HTTPPort       int    `mapstructure:"http_port"`
	LogLevel       string `mapstructure:"log_level"`
	DataDir        string `mapstructure:"data_dir"`
	CollectionName string `mapstructure:"collection_name"`
	EmbeddingModel string `mapstructure:"embedding_model"`
	DefaultResults int    `mapstructure:"default_results"`

	JobBufferSize int `mapstructure:"job_buffer_size"`
	JobWorkers    int `mapstructure:"job_workers"`

	ArchiveEnabled bool   `mapstructure:"archive_enabled"`
	GCPProject     string `mapstructure:"gcp_project"`
	ArchiveDataset string `mapstructure:"archive_dataset"`
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("http_port", 8085)
	v.SetDefault("log_level", "info")
	v.SetDefault("data_dir", "./data/finance-rag")
	v.SetDefault("collection_name", "financial_transactions")
	v.SetDefault("embedding_model", "gemini-embedding-001")
	v.SetDefault("default_results", 5)
	v.SetDefault("job_buffer_size", 64)
	v.SetDefault("job_workers", 5)
	v.SetDefault("archive_enabled", false)
	v.SetDefault("gcp_project", "")
	v.SetDefault("archive_dataset", "finrag")

	v.SetEnvPrefix("FINRAG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads configuration with defaults and environment overrides. When
// path is non-empty, the file there is merged between the two.
func Load(path string) (Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("Load: reading config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("Load: unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the binaries cannot start with.
func (c Config) Validate() error {
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("http_port %d out of range", c.HTTPPort)
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	if c.CollectionName == "" {
		return fmt.Errorf("collection_name must not be empty")
	}
	if c.DefaultResults <= 0 {
		return fmt.Errorf("default_results must be positive")
	}
	if c.ArchiveEnabled && c.GCPProject == "" {
		return fmt.Errorf("archive_enabled requires gcp_project")
	}
	return nil
}
