// Package indexer builds the in-memory document store searched by the engine.
package indexer

import (
	"strings"
	"sync/atomic"

	"github.com/hyperjump/kensaku/internal/models"
	"github.com/hyperjump/kensaku/pkg/utils"
	"go.uber.org/zap"
)

const (
	// DefaultExcerptLength is the number of characters of stripped content kept as excerpt.
	DefaultExcerptLength = 200
	// DefaultWordsPerMinute is the reading speed used to derive reading time.
	DefaultWordsPerMinute = 200
)

// Indexer holds the current searchable snapshot. Rebuild swaps the whole set
// in one step, so Snapshot never observes a partially built store.
type Indexer struct {
	docs           atomic.Pointer[[]*models.IndexedDocument]
	excerptLength  int
	wordsPerMinute int
	logger         *zap.Logger
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithLogger sets a logger for debug output (rebuild sizes).
func WithLogger(l *zap.Logger) IndexerOption {
	return func(idx *Indexer) {
		if l != nil {
			idx.logger = l
		}
	}
}

// WithExcerptLength sets the excerpt length in characters.
func WithExcerptLength(n int) IndexerOption {
	return func(idx *Indexer) {
		if n > 0 {
			idx.excerptLength = n
		}
	}
}

// WithWordsPerMinute sets the reading speed used for reading time.
func WithWordsPerMinute(n int) IndexerOption {
	return func(idx *Indexer) {
		if n > 0 {
			idx.wordsPerMinute = n
		}
	}
}

// NewIndexer creates an empty document store.
func NewIndexer(opts ...IndexerOption) *Indexer {
	idx := &Indexer{
		excerptLength:  DefaultExcerptLength,
		wordsPerMinute: DefaultWordsPerMinute,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(idx)
	}
	empty := []*models.IndexedDocument{}
	idx.docs.Store(&empty)
	return idx
}

// Rebuild replaces the entire document set with documents derived from items.
// Nil items are skipped. Returns the new document count.
func (idx *Indexer) Rebuild(items []*models.Article) int {
	docs := make([]*models.IndexedDocument, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		docs = append(docs, idx.BuildDocument(item))
	}
	idx.docs.Store(&docs)
	idx.logger.Debug("index rebuilt", zap.Int("documents", len(docs)))
	return len(docs)
}

// Snapshot returns the current document set. Callers must treat it as read-only.
func (idx *Indexer) Snapshot() []*models.IndexedDocument {
	return *idx.docs.Load()
}

// Len returns the number of indexed documents.
func (idx *Indexer) Len() int {
	return len(*idx.docs.Load())
}

// BuildDocument derives the searchable form of an article.
func (idx *Indexer) BuildDocument(a *models.Article) *models.IndexedDocument {
	text := StripMarkup(a.Content)
	words := CountWords(text)
	tags := make([]string, 0, len(a.Tags))
	for _, t := range a.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return &models.IndexedDocument{
		ID:                 a.ID,
		Title:              a.Title,
		Content:            text,
		Tags:               tags,
		Category:           a.Category,
		Author:             a.Author,
		PublishedAt:        a.CreatedAt,
		Excerpt:            utils.Truncate(text, idx.excerptLength),
		WordCount:          words,
		ReadingTimeMinutes: ReadingTime(words, idx.wordsPerMinute),
		ViewCount:          a.Views,
	}
}
