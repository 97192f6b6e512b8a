// Package config loads runtime configuration from environment
// variables, with the same viper default/override pattern the pack's
// config layers use.
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds every tunable the core packages need at startup.
type Config struct {
	EmbeddingModel        string `mapstructure:"embedding_model"`
	EmbeddingEndpoint     string `mapstructure:"embedding_endpoint"`
	StorageRoot           string `mapstructure:"storage_root"`
	LogLevel              string `mapstructure:"log_level"`
	EmbedderMaxConcurrent int    `mapstructure:"embedder_max_concurrent"`
	GitMaxConcurrent      int    `mapstructure:"git_max_concurrent"`
	VectorDim             int    `mapstructure:"vector_dim"`
}

// Load reads configuration from EMBEDDING_MODEL, EMBEDDING_ENDPOINT,
// STORAGE_ROOT, LOG_LEVEL and their lowercase-underscore equivalents,
// falling back to defaults for anything unset.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	bind := map[string]string{
		"embedding_model":    "EMBEDDING_MODEL",
		"embedding_endpoint": "EMBEDDING_ENDPOINT",
		"storage_root":       "STORAGE_ROOT",
		"log_level":          "LOG_LEVEL",
	}
	for key, env := range bind {
		if err := v.BindEnv(key, env); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("embedding_model", "nomic-embed-text")
	v.SetDefault("embedding_endpoint", "http://localhost:11434/api/embeddings")
	v.SetDefault("storage_root", defaultStorageRoot())
	v.SetDefault("log_level", "info")
	v.SetDefault("embedder_max_concurrent", 5)
	v.SetDefault("git_max_concurrent", 10)
	v.SetDefault("vector_dim", 768)
}

func defaultStorageRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".codekg")
}

// StorePath is "<storage_root>/index.sqlite", the single VectorStore
// database holding every project's dynamically named chunk tables.
func (c *Config) StorePath() string {
	return filepath.Join(c.StorageRoot, "index.sqlite")
}

// KnowledgeGraphPath is "<storage_root>/kg.sqlite".
func (c *Config) KnowledgeGraphPath() string {
	return filepath.Join(c.StorageRoot, "kg.sqlite")
}

// CachePath is "<storage_root>/cache/embeddings.sqlite".
func (c *Config) CachePath() string {
	return filepath.Join(c.StorageRoot, "cache", "embeddings.sqlite")
}

// LogDir is "<storage_root>/logs".
func (c *Config) LogDir() string {
	return filepath.Join(c.StorageRoot, "logs")
}

// EnsureDirs creates every directory Config's paths live under.
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{filepath.Dir(c.StorePath()), filepath.Dir(c.CachePath()), c.LogDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}
