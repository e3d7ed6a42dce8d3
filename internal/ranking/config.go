package ranking

// RankingConfig holds the additive weights used by the relevance scorer.
type RankingConfig struct {
	// Per-term field weights
	TitleMatchScore      float64 `yaml:"title_match_score"`      // default: 10
	TitlePrefixBonus     float64 `yaml:"title_prefix_bonus"`     // default: 5
	ContentMatchScore    float64 `yaml:"content_match_score"`    // default: 3
	ContentOccurrence    float64 `yaml:"content_occurrence"`     // default: 1 per extra occurrence
	ContentOccurrenceCap float64 `yaml:"content_occurrence_cap"` // default: 5
	TagMatchScore        float64 `yaml:"tag_match_score"`        // default: 7 per matching tag
	CategoryMatchScore   float64 `yaml:"category_match_score"`   // default: 5
	AuthorMatchScore     float64 `yaml:"author_match_score"`     // default: 2

	// Per-document boosts
	RecencyWeekBoost    float64 `yaml:"recency_week_boost"`   // default: 2 (age < 7 days)
	RecencyMonthBoost   float64 `yaml:"recency_month_boost"`  // default: 1 (age < 30 days)
	PopularityBoost     float64 `yaml:"popularity_boost"`     // default: 1
	PopularityThreshold int     `yaml:"popularity_threshold"` // default: 100 views
}

// DefaultRankingConfig returns the default ranking configuration.
func DefaultRankingConfig() *RankingConfig {
	return &RankingConfig{
		TitleMatchScore:      10,
		TitlePrefixBonus:     5,
		ContentMatchScore:    3,
		ContentOccurrence:    1,
		ContentOccurrenceCap: 5,
		TagMatchScore:        7,
		CategoryMatchScore:   5,
		AuthorMatchScore:     2,

		RecencyWeekBoost:    2,
		RecencyMonthBoost:   1,
		PopularityBoost:     1,
		PopularityThreshold: 100,
	}
}

// ApplyDefaults fills in zero values with defaults.
func (c *RankingConfig) ApplyDefaults() {
	defaults := DefaultRankingConfig()

	if c.TitleMatchScore == 0 {
		c.TitleMatchScore = defaults.TitleMatchScore
	}
	if c.TitlePrefixBonus == 0 {
		c.TitlePrefixBonus = defaults.TitlePrefixBonus
	}
	if c.ContentMatchScore == 0 {
		c.ContentMatchScore = defaults.ContentMatchScore
	}
	if c.ContentOccurrence == 0 {
		c.ContentOccurrence = defaults.ContentOccurrence
	}
	if c.ContentOccurrenceCap == 0 {
		c.ContentOccurrenceCap = defaults.ContentOccurrenceCap
	}
	if c.TagMatchScore == 0 {
		c.TagMatchScore = defaults.TagMatchScore
	}
	if c.CategoryMatchScore == 0 {
		c.CategoryMatchScore = defaults.CategoryMatchScore
	}
	if c.AuthorMatchScore == 0 {
		c.AuthorMatchScore = defaults.AuthorMatchScore
	}

	// Boosts
	if c.RecencyWeekBoost == 0 {
		c.RecencyWeekBoost = defaults.RecencyWeekBoost
	}
	if c.RecencyMonthBoost == 0 {
		c.RecencyMonthBoost = defaults.RecencyMonthBoost
	}
	if c.PopularityBoost == 0 {
		c.PopularityBoost = defaults.PopularityBoost
	}
	if c.PopularityThreshold == 0 {
		c.PopularityThreshold = defaults.PopularityThreshold
	}
}
