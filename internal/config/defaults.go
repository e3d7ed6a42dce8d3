package config

import (
	"github.com/hyperjump/kensaku/internal/content"
	"github.com/hyperjump/kensaku/internal/indexer"
	"github.com/hyperjump/kensaku/internal/search"
	"github.com/hyperjump/kensaku/internal/session"
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Locale == "" {
		cfg.Locale = "en"
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/kensaku/data/articles.db"
	}
	if cfg.Content.Extensions == nil {
		cfg.Content.Extensions = append([]string(nil), content.DefaultExtensions...)
	}
	// Recursive defaults to true when unset (nil).
	if len(cfg.Content.Directories) > 0 && cfg.Content.Recursive == nil {
		t := true
		cfg.Content.Recursive = &t
	}
	if cfg.Session.DebounceMs == 0 {
		cfg.Session.DebounceMs = int(session.DefaultDebounce.Milliseconds())
	}
	if cfg.Session.HistoryCapacity == 0 {
		cfg.Session.HistoryCapacity = session.DefaultHistoryCapacity
	}
	if cfg.Session.StatsWindow == 0 {
		cfg.Session.StatsWindow = session.DefaultStatsWindow
	}
	if cfg.Session.SuggestionLimit == 0 {
		cfg.Session.SuggestionLimit = search.DefaultSuggestionLimit
	}
	if cfg.Indexer.ExcerptLength == 0 {
		cfg.Indexer.ExcerptLength = indexer.DefaultExcerptLength
	}
	if cfg.Indexer.WordsPerMinute == 0 {
		cfg.Indexer.WordsPerMinute = indexer.DefaultWordsPerMinute
	}
	if cfg.Highlight.PreTag == "" && cfg.Highlight.PostTag == "" {
		cfg.Highlight.PreTag = search.DefaultPreTag
		cfg.Highlight.PostTag = search.DefaultPostTag
	}
	cfg.Ranking.ApplyDefaults()
	if cfg.Export.Schedule != "" && cfg.Export.Path == "" {
		cfg.Export.Path = "/usr/local/var/kensaku/data/export.json"
	}
}
