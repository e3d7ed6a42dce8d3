// Package search runs one query against one document snapshot:
// filter, score, sort, and highlight.
package search

import (
	"time"

	"github.com/hyperjump/kensaku/internal/filter"
	"github.com/hyperjump/kensaku/internal/models"
	"github.com/hyperjump/kensaku/internal/ranking"
	"github.com/hyperjump/kensaku/internal/sorter"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// Engine executes structured queries over a snapshot.
type Engine struct {
	ranker      *ranking.Ranker
	sorter      *sorter.Sorter
	highlighter *Highlighter
	logger      *zap.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

func WithRanker(r *ranking.Ranker) EngineOption {
	return func(e *Engine) {
		if r != nil {
			e.ranker = r
		}
	}
}

func WithHighlighter(h *Highlighter) EngineOption {
	return func(e *Engine) {
		if h != nil {
			e.highlighter = h
		}
	}
}

func WithSorter(s *sorter.Sorter) EngineOption {
	return func(e *Engine) {
		if s != nil {
			e.sorter = s
		}
	}
}

func WithLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates a search engine with default ranking and highlighting.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		ranker:      ranking.NewRanker(nil),
		sorter:      sorter.New(language.English),
		highlighter: NewHighlighter("", ""),
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Ranker returns the engine's ranker.
func (e *Engine) Ranker() *ranking.Ranker {
	return e.ranker
}

// Search runs q against docs and returns the ordered, highlighted results.
// Scores are only computed when the query has free text; documents that
// score 0 are then left out.
func (e *Engine) Search(q *models.Query, docs []*models.IndexedDocument) *models.SearchResponse {
	start := time.Now()

	filtered := filter.Apply(docs, q.Filters)
	terms := q.Terms()

	results := make([]*models.SearchResult, 0, len(filtered))
	if len(terms) > 0 {
		for _, doc := range filtered {
			score, matched := e.ranker.Rank(doc, terms)
			if score <= 0 {
				continue
			}
			results = append(results, &models.SearchResult{
				IndexedDocument: *doc,
				Score:           &score,
				MatchedTerms:    matched,
			})
		}
	} else {
		for _, doc := range filtered {
			results = append(results, &models.SearchResult{
				IndexedDocument: *doc,
				MatchedTerms:    []string{},
			})
		}
	}

	e.sorter.Sort(results, q.Sort)

	marker := e.highlighter.Compile(terms)
	for _, r := range results {
		r.HighlightedTitle = marker.Highlight(r.Title)
		r.HighlightedExcerpt = marker.Highlight(r.Excerpt)
		r.HighlightedTags = marker.HighlightAll(r.Tags)
	}

	elapsed := time.Since(start)
	e.logger.Debug("query executed",
		zap.String("query", q.Raw),
		zap.Int("candidates", len(docs)),
		zap.Int("results", len(results)),
		zap.Duration("elapsed", elapsed))

	return &models.SearchResponse{
		Results: results,
		Metadata: models.SearchMetadata{
			Query:        q.Raw,
			SearchTimeMs: float64(elapsed.Microseconds()) / 1000,
			TotalResults: len(results),
			Filters:      q.Filters.Clone(),
			Sort:         q.Sort,
		},
	}
}
