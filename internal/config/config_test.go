package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  host: "127.0.0.1"
  port: 9000
storage:
  database_path: "test.db"
session:
  debounce_ms: 150
ranking:
  title_match_score: 20
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Storage.DatabasePath == "" {
		t.Error("database_path should be set")
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
	if cfg.Session.Debounce() != 150*time.Millisecond {
		t.Errorf("debounce = %v, want 150ms", cfg.Session.Debounce())
	}
	if cfg.Ranking.TitleMatchScore != 20 {
		t.Errorf("title_match_score = %v, want 20", cfg.Ranking.TitleMatchScore)
	}
	if cfg.Ranking.TagMatchScore != 7 {
		t.Errorf("unset ranking weights should default; tag_match_score = %v", cfg.Ranking.TagMatchScore)
	}
}

func TestLoad_debugTrue(t *testing.T) {
	path := writeConfig(t, `
debug: true
log_level: debug
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug {
		t.Error("debug should be true when set in config")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log_level = %q", cfg.LogLevel)
	}
}

func TestLoad_invalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [unclosed")
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoad_missingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected read error")
	}
}

func TestLoad_expandPathDotSlashRelativeToConfigDir(t *testing.T) {
	path := writeConfig(t, `
storage:
  database_path: "./data/articles.db"
content:
  directories: ["./content"]
export:
  schedule: "@hourly"
  path: "./export.json"
`)
	dir := filepath.Dir(path)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	wantDB := filepath.Join(dir, "data", "articles.db")
	if cfg.Storage.DatabasePath != wantDB {
		t.Errorf("database_path = %s, want %s", cfg.Storage.DatabasePath, wantDB)
	}
	if len(cfg.Content.Directories) != 1 || cfg.Content.Directories[0] != filepath.Join(dir, "content") {
		t.Errorf("content directories = %v", cfg.Content.Directories)
	}
	if cfg.Export.Path != filepath.Join(dir, "export.json") {
		t.Errorf("export path = %s", cfg.Export.Path)
	}
}

func TestExpandPath_keepsMemoryDatabase(t *testing.T) {
	if got := expandPath(":memory:", "/etc"); got != ":memory:" {
		t.Errorf("expandPath(:memory:) = %q", got)
	}
	if got := expandPath("", "/etc"); got != "" {
		t.Errorf("expandPath(\"\") = %q", got)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Server.Host != "localhost" {
		t.Errorf("default host: got %s", cfg.Server.Host)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("default port: got %d", cfg.Server.Port)
	}
	if cfg.Session.Debounce() != 300*time.Millisecond {
		t.Errorf("default debounce: got %v", cfg.Session.Debounce())
	}
	if cfg.Session.HistoryCapacity != 50 || cfg.Session.StatsWindow != 100 || cfg.Session.SuggestionLimit != 5 {
		t.Errorf("session defaults: got %+v", cfg.Session)
	}
	if cfg.Indexer.ExcerptLength != 200 || cfg.Indexer.WordsPerMinute != 200 {
		t.Errorf("indexer defaults: got %+v", cfg.Indexer)
	}
	if cfg.Highlight.PreTag != "<mark>" || cfg.Highlight.PostTag != "</mark>" {
		t.Errorf("highlight defaults: got %+v", cfg.Highlight)
	}
	if cfg.Locale != "en" {
		t.Errorf("default locale: got %q", cfg.Locale)
	}
	if cfg.Ranking.TitleMatchScore != 10 {
		t.Errorf("ranking defaults: got %+v", cfg.Ranking)
	}
	if len(cfg.Content.Extensions) == 0 || cfg.Content.Extensions[0] != ".md" {
		t.Errorf("content extensions: got %v", cfg.Content.Extensions)
	}
	if cfg.Export.Path != "" {
		t.Error("export path should stay empty without a schedule")
	}
}

func TestApplyDefaults_ContentRecursiveWhenDirectoriesSet(t *testing.T) {
	cfg := &Config{Content: ContentConfig{Directories: []string{"/tmp/docs"}}}
	ApplyDefaults(cfg)
	if cfg.Content.Recursive == nil || !*cfg.Content.Recursive {
		t.Error("recursive should default to true when directories are set")
	}
}

func TestSessionConfig_NegativeDebounceDisables(t *testing.T) {
	cfg := &Config{Session: SessionConfig{DebounceMs: -1}}
	ApplyDefaults(cfg)
	if cfg.Session.Debounce() != 0 {
		t.Errorf("debounce = %v, want 0", cfg.Session.Debounce())
	}
}

func TestContentConfig_RecursiveOrDefault(t *testing.T) {
	t.Run("nil_returns_true", func(t *testing.T) {
		c := &ContentConfig{}
		if got := c.RecursiveOrDefault(); !got {
			t.Errorf("RecursiveOrDefault() = %v, want true", got)
		}
	})
	t.Run("false_returns_false", func(t *testing.T) {
		f := false
		c := &ContentConfig{Recursive: &f}
		if got := c.RecursiveOrDefault(); got {
			t.Errorf("RecursiveOrDefault() = %v, want false", got)
		}
	})
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")
	cfg := &Config{
		Server:  ServerConfig{Host: "localhost", Port: 9090},
		Storage: StorageConfig{DatabasePath: "/tmp/db"},
	}
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Server.Port != 9090 {
		t.Errorf("loaded port: got %d", loaded.Server.Port)
	}
}
