// Package cli provides output helpers for the Kensaku command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/hyperjump/kensaku/internal/models"
	"github.com/hyperjump/kensaku/internal/ranking"
	"github.com/hyperjump/kensaku/pkg/utils"
)

// SearchOutputFormat is the format for search result output.
type SearchOutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText SearchOutputFormat = "text"
	// OutputCompact prints one line per result.
	OutputCompact SearchOutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON SearchOutputFormat = "json"
)

// ParseOutputFormat maps a flag value to a format. Empty means text.
func ParseOutputFormat(s string) (SearchOutputFormat, error) {
	switch SearchOutputFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", OutputText:
		return OutputText, nil
	case OutputCompact:
		return OutputCompact, nil
	case OutputJSON:
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, compact or json)", s)
	}
}

// WriteSearchResults writes search results to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format SearchOutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, response)
	case OutputCompact:
		writeSearchResultsCompact(w, response)
		return nil
	default:
		writeSearchResultsText(w, response)
		return nil
	}
}

func writeSearchResultsText(w io.Writer, response *models.SearchResponse) {
	md := response.Metadata
	fmt.Fprintf(w, "\nFound %d results in %.2fms (sorted by %s %s)\n", md.TotalResults, md.SearchTimeMs, md.Sort.Field, md.Sort.Direction)
	if filters := describeFilters(md.Filters); filters != "" {
		fmt.Fprintf(w, "Filters: %s\n", filters)
	}
	fmt.Fprintln(w)
	for i, result := range response.Results {
		writeOneResult(w, i+1, result)
	}
}

func writeOneResult(w io.Writer, rank int, result *models.SearchResult) {
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
	if result.Score != nil {
		fmt.Fprintf(w, "Rank: %d | Score: %.1f | Matched: %s\n", rank, *result.Score, strings.Join(result.MatchedTerms, ", "))
	} else {
		fmt.Fprintf(w, "Rank: %d\n", rank)
	}
	fmt.Fprintf(w, "ID: %s\n", result.ID)
	fmt.Fprintf(w, "Title: %s\n", result.HighlightedTitle)
	meta := []string{}
	if result.Category != "" {
		meta = append(meta, "category: "+result.Category)
	}
	if result.Author != "" {
		meta = append(meta, "author: "+result.Author)
	}
	if !result.PublishedAt.IsZero() {
		meta = append(meta, "published: "+result.PublishedAt.Format("2006-01-02"))
	}
	meta = append(meta, fmt.Sprintf("%d min read", result.ReadingTimeMinutes), fmt.Sprintf("%d views", result.ViewCount))
	fmt.Fprintln(w, strings.Join(meta, " | "))
	if len(result.HighlightedTags) > 0 {
		fmt.Fprintf(w, "Tags: %s\n", strings.Join(result.HighlightedTags, ", "))
	}
	fmt.Fprintf(w, "\n%s\n", utils.Truncate(result.HighlightedExcerpt, 200))
	fmt.Fprintln(w)
}

func writeSearchResultsCompact(w io.Writer, response *models.SearchResponse) {
	for _, result := range response.Results {
		score := "-"
		if result.Score != nil {
			score = fmt.Sprintf("%.1f", *result.Score)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", score, result.ID, result.Title)
	}
}

func describeFilters(f models.Filters) string {
	var parts []string
	for _, c := range f.Categories {
		parts = append(parts, "category:"+c)
	}
	for _, t := range f.Tags {
		parts = append(parts, "tag:"+t)
	}
	if f.Author != "" {
		parts = append(parts, "author:"+f.Author)
	}
	if f.DateRange != nil {
		parts = append(parts, fmt.Sprintf("date:%s..%s",
			f.DateRange.Start.Format("2006-01-02"), f.DateRange.End.Format("2006-01-02")))
	}
	return strings.Join(parts, " ")
}

// Explanation pairs a result with its score breakdown.
type Explanation struct {
	ID        string                  `json:"id"`
	Title     string                  `json:"title"`
	Breakdown *ranking.ScoreBreakdown `json:"breakdown"`
}

// WriteExplanations prints per-component scores for each result.
func WriteExplanations(w io.Writer, explanations []Explanation, format SearchOutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, explanations)
	}
	for _, e := range explanations {
		b := e.Breakdown
		fmt.Fprintf(w, "%s  %s\n", e.ID, e.Title)
		fmt.Fprintf(w, "  term score  %6.1f\n", b.TermScore)
		for _, name := range sortedKeys(b.Fields) {
			fmt.Fprintf(w, "    %-10s %6.1f\n", name, b.Fields[name])
		}
		for _, name := range sortedKeys(b.Boosts) {
			fmt.Fprintf(w, "  + %-10s %6.1f\n", name, b.Boosts[name])
		}
		fmt.Fprintf(w, "  final       %6.1f  [%s]\n\n", b.FinalScore, strings.Join(b.MatchedTerms, ", "))
	}
	return nil
}

// WriteSuggestions prints one suggestion per line, or a JSON array.
func WriteSuggestions(w io.Writer, suggestions []string, format SearchOutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, suggestions)
	}
	for _, s := range suggestions {
		fmt.Fprintln(w, s)
	}
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
