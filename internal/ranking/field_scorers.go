package ranking

import (
	"math"
	"strings"
)

// TitleScorer scores a term found in the title, with a bonus when the title starts with it.
type TitleScorer struct {
	config *RankingConfig
}

func NewTitleScorer(config *RankingConfig) *TitleScorer {
	return &TitleScorer{config: config}
}

func (s *TitleScorer) Name() string { return "title" }

func (s *TitleScorer) Score(ctx *ScoringContext, term string) float64 {
	if !strings.Contains(ctx.title, term) {
		return 0
	}
	score := s.config.TitleMatchScore
	if strings.HasPrefix(ctx.title, term) {
		score += s.config.TitlePrefixBonus
	}
	return score
}

// ContentScorer scores a term found in the body text. Every occurrence after
// the first adds a bonus, up to the configured cap.
type ContentScorer struct {
	config *RankingConfig
}

func NewContentScorer(config *RankingConfig) *ContentScorer {
	return &ContentScorer{config: config}
}

func (s *ContentScorer) Name() string { return "content" }

func (s *ContentScorer) Score(ctx *ScoringContext, term string) float64 {
	count := strings.Count(ctx.content, term)
	if count == 0 {
		return 0
	}
	extra := float64(count-1) * s.config.ContentOccurrence
	return s.config.ContentMatchScore + math.Min(extra, s.config.ContentOccurrenceCap)
}

// TagScorer adds the tag weight for every tag containing the term.
type TagScorer struct {
	config *RankingConfig
}

func NewTagScorer(config *RankingConfig) *TagScorer {
	return &TagScorer{config: config}
}

func (s *TagScorer) Name() string { return "tags" }

func (s *TagScorer) Score(ctx *ScoringContext, term string) float64 {
	var score float64
	for _, tag := range ctx.tags {
		if strings.Contains(tag, term) {
			score += s.config.TagMatchScore
		}
	}
	return score
}

type CategoryScorer struct {
	config *RankingConfig
}

func NewCategoryScorer(config *RankingConfig) *CategoryScorer {
	return &CategoryScorer{config: config}
}

func (s *CategoryScorer) Name() string { return "category" }

func (s *CategoryScorer) Score(ctx *ScoringContext, term string) float64 {
	if ctx.category != "" && strings.Contains(ctx.category, term) {
		return s.config.CategoryMatchScore
	}
	return 0
}

type AuthorScorer struct {
	config *RankingConfig
}

func NewAuthorScorer(config *RankingConfig) *AuthorScorer {
	return &AuthorScorer{config: config}
}

func (s *AuthorScorer) Name() string { return "author" }

func (s *AuthorScorer) Score(ctx *ScoringContext, term string) float64 {
	if ctx.author != "" && strings.Contains(ctx.author, term) {
		return s.config.AuthorMatchScore
	}
	return 0
}
