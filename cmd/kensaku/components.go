package main

import (
	"context"
	"fmt"

	"github.com/hyperjump/kensaku/internal/config"
	"github.com/hyperjump/kensaku/internal/content"
	"github.com/hyperjump/kensaku/internal/indexer"
	"github.com/hyperjump/kensaku/internal/models"
	"github.com/hyperjump/kensaku/internal/ranking"
	"github.com/hyperjump/kensaku/internal/search"
	"github.com/hyperjump/kensaku/internal/session"
	"github.com/hyperjump/kensaku/internal/sorter"
	"github.com/hyperjump/kensaku/internal/storage"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// Components holds initialized services.
type Components struct {
	Config  *config.Config
	Storage *storage.SQLiteStorage
	Loader  *content.Loader
	Indexer *indexer.Indexer
	Engine  *search.Engine
	Session *session.Session
	logger  *zap.Logger
}

func (c *Components) Close() {
	if c.Session != nil {
		_ = c.Session.Close()
	}
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
}

// Reload rebuilds the session index from the content directories and the
// article store. Stored articles replace content files with the same ID.
func (c *Components) Reload(ctx context.Context) error {
	var articles []*models.Article
	if len(c.Config.Content.Directories) > 0 {
		loaded, err := c.Loader.LoadDirs(c.Config.Content.Directories)
		if err != nil {
			return fmt.Errorf("failed to load content: %w", err)
		}
		articles = append(articles, loaded...)
	}
	stored, err := c.Storage.ListArticles(ctx, 0, 0)
	if err != nil {
		return fmt.Errorf("failed to list articles: %w", err)
	}
	articles = mergeArticles(articles, stored)

	if err := c.Session.RebuildIndex(articles); err != nil {
		return err
	}
	c.logger.Debug("index reloaded", zap.Int("articles", len(articles)))
	return nil
}

// mergeArticles appends override to base, replacing base entries that share an ID.
func mergeArticles(base, override []*models.Article) []*models.Article {
	pos := make(map[string]int, len(base))
	out := make([]*models.Article, 0, len(base)+len(override))
	for _, a := range base {
		pos[a.ID] = len(out)
		out = append(out, a)
	}
	for _, a := range override {
		if i, ok := pos[a.ID]; ok {
			out[i] = a
			continue
		}
		pos[a.ID] = len(out)
		out = append(out, a)
	}
	return out
}

func initializeComponents(cfg *config.Config, logger *zap.Logger, debug bool, sessOpts ...session.Option) (*Components, error) {
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	var componentLogger *zap.Logger
	if debug {
		componentLogger = logger
	}

	loader := content.NewLoader(
		content.WithExtensions(cfg.Content.Extensions),
		content.WithRecursive(cfg.Content.RecursiveOrDefault()),
		content.WithLogger(logger),
	)
	idxOpts := []indexer.IndexerOption{
		indexer.WithExcerptLength(cfg.Indexer.ExcerptLength),
		indexer.WithWordsPerMinute(cfg.Indexer.WordsPerMinute),
	}
	if componentLogger != nil {
		idxOpts = append(idxOpts, indexer.WithLogger(componentLogger))
	}
	idx := indexer.NewIndexer(idxOpts...)

	locale, err := language.Parse(cfg.Locale)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("invalid locale %q: %w", cfg.Locale, err)
	}
	rankingCfg := cfg.Ranking
	engine := search.NewEngine(
		search.WithRanker(ranking.NewRanker(&rankingCfg)),
		search.WithHighlighter(search.NewHighlighter(cfg.Highlight.PreTag, cfg.Highlight.PostTag)),
		search.WithSorter(sorter.New(locale)),
		search.WithLogger(componentLogger),
	)

	opts := []session.Option{
		session.WithDebounce(cfg.Session.Debounce()),
		session.WithEngine(engine),
		session.WithHistoryCapacity(cfg.Session.HistoryCapacity),
		session.WithStatsWindow(cfg.Session.StatsWindow),
		session.WithSuggestionLimit(cfg.Session.SuggestionLimit),
		session.WithLogger(componentLogger),
	}
	opts = append(opts, sessOpts...)

	return &Components{
		Config:  cfg,
		Storage: store,
		Loader:  loader,
		Indexer: idx,
		Engine:  engine,
		Session: session.New(idx, opts...),
		logger:  logger,
	}, nil
}
