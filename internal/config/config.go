// Package config provides configuration loading and structs for the Kensaku server and CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hyperjump/kensaku/internal/ranking"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool                  `yaml:"debug"`
	LogLevel  string                `yaml:"log_level"`
	Locale    string                `yaml:"locale"`
	Server    ServerConfig          `yaml:"server"`
	Storage   StorageConfig         `yaml:"storage"`
	Content   ContentConfig         `yaml:"content"`
	Session   SessionConfig         `yaml:"session"`
	Indexer   IndexerConfig         `yaml:"indexer"`
	Highlight HighlightConfig       `yaml:"highlight"`
	Ranking   ranking.RankingConfig `yaml:"ranking"`
	Export    ExportConfig          `yaml:"export"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds the article database path.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// ContentConfig holds the content directories loaded into the index.
type ContentConfig struct {
	Directories []string `yaml:"directories"`
	Extensions  []string `yaml:"extensions"`
	Recursive   *bool    `yaml:"recursive"`
	Watch       bool     `yaml:"watch"`
}

// RecursiveOrDefault returns whether to load recursively; defaults to true when unset.
func (c *ContentConfig) RecursiveOrDefault() bool {
	if c.Recursive != nil {
		return *c.Recursive
	}
	return true
}

// SessionConfig holds search session settings.
type SessionConfig struct {
	// DebounceMs is the quiet period before a submitted query runs.
	// A negative value disables debouncing.
	DebounceMs      int `yaml:"debounce_ms"`
	HistoryCapacity int `yaml:"history_capacity"`
	StatsWindow     int `yaml:"stats_window"`
	SuggestionLimit int `yaml:"suggestion_limit"`
}

// Debounce returns the debounce window as a duration.
func (c *SessionConfig) Debounce() time.Duration {
	if c.DebounceMs < 0 {
		return 0
	}
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// IndexerConfig holds document store settings.
type IndexerConfig struct {
	ExcerptLength  int `yaml:"excerpt_length"`
	WordsPerMinute int `yaml:"words_per_minute"`
}

// HighlightConfig holds the markers wrapped around matched terms.
type HighlightConfig struct {
	PreTag  string `yaml:"pre_tag"`
	PostTag string `yaml:"post_tag"`
}

// ExportConfig schedules periodic export of history and stats.
// An empty Schedule disables it.
type ExportConfig struct {
	Schedule string `yaml:"schedule"`
	Path     string `yaml:"path"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Export.Path = expandPath(cfg.Export.Path, configDir)
	for i := range cfg.Content.Directories {
		cfg.Content.Directories[i] = expandPath(cfg.Content.Directories[i], configDir)
	}

	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || path == ":memory:" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
