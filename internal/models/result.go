package models

// SearchResult is a single hit: the indexed document, its relevance data,
// and highlighted variants of the presentable fields.
type SearchResult struct {
	IndexedDocument
	// Score is set only for free-text queries.
	Score              *float64 `json:"score,omitempty"`
	MatchedTerms       []string `json:"matchedTerms"`
	HighlightedTitle   string   `json:"highlightedTitle"`
	HighlightedExcerpt string   `json:"highlightedExcerpt"`
	HighlightedTags    []string `json:"highlightedTags"`
}

// ScoreOrZero returns the score, treating a missing score as 0.
func (r *SearchResult) ScoreOrZero() float64 {
	if r.Score == nil {
		return 0
	}
	return *r.Score
}

// SearchMetadata describes one completed search execution.
type SearchMetadata struct {
	Query        string  `json:"query"`
	SearchTimeMs float64 `json:"searchTimeMs"`
	TotalResults int     `json:"totalResults"`
	Filters      Filters `json:"filters"`
	Sort         Sort    `json:"sort"`
}

// SearchResponse is published once per completed execution.
type SearchResponse struct {
	Results  []*SearchResult `json:"results"`
	Metadata SearchMetadata  `json:"metadata"`
}
