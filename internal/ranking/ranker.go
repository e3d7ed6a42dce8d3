package ranking

import (
	"time"

	"github.com/hyperjump/kensaku/internal/models"
)

// Ranker combines the field scorers and boosts into one additive relevance score.
type Ranker struct {
	config  *RankingConfig
	scorers []Scorer
	boosts  []Boost
	now     func() time.Time
}

// NewRanker creates a new Ranker with the given configuration.
func NewRanker(config *RankingConfig) *Ranker {
	if config == nil {
		config = DefaultRankingConfig()
	}
	config.ApplyDefaults()

	return &Ranker{
		config:  config,
		scorers: DefaultScorers(config),
		boosts:  DefaultBoosts(config),
		now:     time.Now,
	}
}

// DefaultScorers returns the field scorers in evaluation order.
func DefaultScorers(config *RankingConfig) []Scorer {
	return []Scorer{
		NewTitleScorer(config),
		NewContentScorer(config),
		NewTagScorer(config),
		NewCategoryScorer(config),
		NewAuthorScorer(config),
	}
}

// DefaultBoosts returns the per-document boosts.
func DefaultBoosts(config *RankingConfig) []Boost {
	return []Boost{
		NewRecencyBoost(config),
		NewPopularityBoost(config),
	}
}

// WithClock sets the time source used for recency.
func (r *Ranker) WithClock(now func() time.Time) *Ranker {
	if now != nil {
		r.now = now
	}
	return r
}

// Config returns the effective configuration.
func (r *Ranker) Config() *RankingConfig {
	return r.config
}

// Score returns the relevance of doc for the given lower-cased terms.
// A document no term matched scores 0; boosts are not applied to it.
func (r *Ranker) Score(doc *models.IndexedDocument, terms []string) float64 {
	score, _ := r.Rank(doc, terms)
	return score
}

// MatchedTerms returns the distinct terms that contributed to doc's score.
func (r *Ranker) MatchedTerms(doc *models.IndexedDocument, terms []string) []string {
	_, matched := r.Rank(doc, terms)
	return matched
}

// Rank computes the score and matched terms in one pass.
func (r *Ranker) Rank(doc *models.IndexedDocument, terms []string) (float64, []string) {
	if doc == nil || len(terms) == 0 {
		return 0, nil
	}
	ctx := NewScoringContext(doc, r.now())

	var termScore float64
	var matched []string
	seen := make(map[string]struct{}, len(terms))
	for _, term := range terms {
		if term == "" {
			continue
		}
		var s float64
		for _, scorer := range r.scorers {
			s += scorer.Score(ctx, term)
		}
		if s <= 0 {
			continue
		}
		termScore += s
		if _, ok := seen[term]; !ok {
			seen[term] = struct{}{}
			matched = append(matched, term)
		}
	}
	if termScore <= 0 {
		return 0, nil
	}

	score := termScore
	for _, b := range r.boosts {
		score += b.Boost(ctx)
	}
	return score, matched
}

// RankWithBreakdown returns detailed scoring information.
func (r *Ranker) RankWithBreakdown(doc *models.IndexedDocument, terms []string) *ScoreBreakdown {
	breakdown := &ScoreBreakdown{
		Fields: make(map[string]float64, len(r.scorers)),
		Boosts: make(map[string]float64, len(r.boosts)),
	}
	if doc == nil {
		return breakdown
	}
	ctx := NewScoringContext(doc, r.now())

	for _, scorer := range r.scorers {
		var s float64
		for _, term := range terms {
			if term != "" {
				s += scorer.Score(ctx, term)
			}
		}
		breakdown.Fields[scorer.Name()] = s
		breakdown.TermScore += s
	}

	breakdown.FinalScore, breakdown.MatchedTerms = r.Rank(doc, terms)
	if breakdown.TermScore > 0 {
		for _, b := range r.boosts {
			breakdown.Boosts[b.Name()] = b.Boost(ctx)
		}
	}
	return breakdown
}
