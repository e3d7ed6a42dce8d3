package models

import "time"

// HistoryEntry records one submitted query and the filter/sort state it ran with.
type HistoryEntry struct {
	Query     string    `json:"query"`
	Timestamp time.Time `json:"timestamp"`
	Filters   Filters   `json:"filters"`
	Sort      Sort      `json:"sort"`
}

// SearchStats summarizes search latency over the session.
type SearchStats struct {
	TotalSearches       int       `json:"totalSearches"`
	AverageSearchTimeMs float64   `json:"averageSearchTimeMs"`
	RecentSearchTimesMs []float64 `json:"recentSearchTimesMs"`
}

// Export is the JSON document produced by a session export.
type Export struct {
	History    []HistoryEntry `json:"history"`
	Stats      SearchStats    `json:"stats"`
	ExportedAt int64          `json:"exportedAt"`
}
