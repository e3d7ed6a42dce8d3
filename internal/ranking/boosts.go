package ranking

import "time"

const day = 24 * time.Hour

// RecencyBoost favors recently published articles in three tiers:
// under a week, under a month, and older (no boost).
type RecencyBoost struct {
	config *RankingConfig
}

func NewRecencyBoost(config *RankingConfig) *RecencyBoost {
	return &RecencyBoost{config: config}
}

func (b *RecencyBoost) Name() string { return "recency" }

func (b *RecencyBoost) Boost(ctx *ScoringContext) float64 {
	published := ctx.Doc.PublishedAt
	if published.IsZero() {
		return 0
	}
	age := ctx.Now.Sub(published)
	switch {
	case age < 7*day:
		return b.config.RecencyWeekBoost
	case age < 30*day:
		return b.config.RecencyMonthBoost
	default:
		return 0
	}
}

// PopularityBoost rewards articles viewed more than the configured threshold.
type PopularityBoost struct {
	config *RankingConfig
}

func NewPopularityBoost(config *RankingConfig) *PopularityBoost {
	return &PopularityBoost{config: config}
}

func (b *PopularityBoost) Name() string { return "popularity" }

func (b *PopularityBoost) Boost(ctx *ScoringContext) float64 {
	if ctx.Doc.ViewCount > b.config.PopularityThreshold {
		return b.config.PopularityBoost
	}
	return 0
}
