package models

import (
	"testing"
	"time"
)

func TestParseSortField(t *testing.T) {
	tests := []struct {
		in   string
		want SortField
	}{
		{"relevance", SortRelevance},
		{"date", SortDate},
		{"DATE", SortDate},
		{"title", SortTitle},
		{"views", SortViews},
		{"readingTime", SortReadingTime},
		{"reading_time", SortReadingTime},
		{"popularity", SortRelevance},
		{"", SortRelevance},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseSortField(tt.in); got != tt.want {
				t.Errorf("ParseSortField(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseSortDirection(t *testing.T) {
	if ParseSortDirection("ASC") != Asc {
		t.Error("ASC should parse as asc")
	}
	if ParseSortDirection("desc") != Desc {
		t.Error("desc should parse as desc")
	}
	if ParseSortDirection("sideways") != Desc {
		t.Error("unknown direction should default to desc")
	}
}

func TestFilters_AddRemoveCaseInsensitive(t *testing.T) {
	var f Filters
	if !f.AddCategory("Tech") {
		t.Fatal("first add should succeed")
	}
	if f.AddCategory("tech") {
		t.Error("adding the same category in another case should be a no-op")
	}
	if len(f.Categories) != 1 {
		t.Fatalf("categories = %v", f.Categories)
	}
	if !f.RemoveCategory("TECH") {
		t.Error("remove should match case-insensitively")
	}
	if !f.IsEmpty() {
		t.Errorf("filters should be empty, got %+v", f)
	}
	if f.AddTag("  ") {
		t.Error("blank tag should be ignored")
	}
}

func TestFilters_CloneIsDeep(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f := Filters{Tags: []string{"go"}, DateRange: &DateRange{Start: start, End: start.AddDate(0, 0, 1)}}
	c := f.Clone()
	c.Tags[0] = "rust"
	c.DateRange.Start = start.AddDate(1, 0, 0)
	if f.Tags[0] != "go" {
		t.Error("clone shares tag slice")
	}
	if !f.DateRange.Start.Equal(start) {
		t.Error("clone shares date range")
	}
}

func TestDateRange_Contains(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	r := DateRange{Start: start, End: start.Add(24 * time.Hour)}
	if !r.Contains(start) {
		t.Error("start is inclusive")
	}
	if r.Contains(start.Add(24 * time.Hour)) {
		t.Error("end is exclusive")
	}
	if r.Contains(start.Add(-time.Nanosecond)) {
		t.Error("before start should not be contained")
	}
}

func TestQuery_Terms(t *testing.T) {
	q := &Query{FreeText: "  Go   Concurrency\tPatterns "}
	terms := q.Terms()
	if len(terms) != 3 || terms[0] != "go" || terms[2] != "patterns" {
		t.Errorf("Terms() = %v", terms)
	}
	if (&Query{FreeText: "   "}).HasFreeText() {
		t.Error("blank free text should not count")
	}
}
