package ranking

import (
	"strings"
	"time"

	"github.com/hyperjump/kensaku/internal/models"
)

// Scorer calculates a per-term score for one document field.
type Scorer interface {
	Name() string
	Score(ctx *ScoringContext, term string) float64
}

// Boost adds a per-document score once at least one term has matched.
type Boost interface {
	Name() string
	Boost(ctx *ScoringContext) float64
}

// ScoringContext provides lower-cased document fields for scoring.
type ScoringContext struct {
	Doc *models.IndexedDocument
	Now time.Time

	title    string
	content  string
	tags     []string
	category string
	author   string
}

// NewScoringContext lower-cases the searchable fields of doc once.
func NewScoringContext(doc *models.IndexedDocument, now time.Time) *ScoringContext {
	tags := make([]string, len(doc.Tags))
	for i, t := range doc.Tags {
		tags[i] = strings.ToLower(t)
	}
	return &ScoringContext{
		Doc:      doc,
		Now:      now,
		title:    strings.ToLower(doc.Title),
		content:  strings.ToLower(doc.Content),
		tags:     tags,
		category: strings.ToLower(doc.Category),
		author:   strings.ToLower(doc.Author),
	}
}

// ScoreBreakdown shows how a document's score was computed.
type ScoreBreakdown struct {
	Fields       map[string]float64 `json:"fields"`
	Boosts       map[string]float64 `json:"boosts"`
	TermScore    float64            `json:"termScore"`
	FinalScore   float64            `json:"finalScore"`
	MatchedTerms []string           `json:"matchedTerms"`
}
