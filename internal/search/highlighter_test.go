package search

import "testing"

func TestHighlighter_Highlight(t *testing.T) {
	h := NewHighlighter("", "")

	tests := []struct {
		name  string
		text  string
		terms []string
		want  string
	}{
		{"case-insensitive", "JavaScript Basics", []string{"javascript"}, "<mark>JavaScript</mark> Basics"},
		{"every occurrence", "go to Go", []string{"go"}, "<mark>go</mark> to <mark>Go</mark>"},
		{"no terms", "unchanged", nil, "unchanged"},
		{"empty term skipped", "text", []string{""}, "text"},
		{"regex metacharacters", "learn c++ (fast)", []string{"c++", "(fast)"}, "learn <mark>c++</mark> <mark>(fast)</mark>"},
		{"no match", "python", []string{"rust"}, "python"},
		{"dot is literal", "a.b axb", []string{"a.b"}, "<mark>a.b</mark> axb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := h.Highlight(tt.text, tt.terms); got != tt.want {
				t.Errorf("Highlight() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHighlighter_OverlappingTermsWrapTwice(t *testing.T) {
	h := NewHighlighter("[", "]")
	got := h.Highlight("golang", []string{"golang", "go"})
	if got != "[[go]lang]" {
		t.Errorf("Highlight() = %q, want %q", got, "[[go]lang]")
	}
}

func TestHighlighter_CustomTags(t *testing.T) {
	h := NewHighlighter("<em>", "</em>")
	if got := h.Highlight("Go tips", []string{"tips"}); got != "Go <em>tips</em>" {
		t.Errorf("Highlight() = %q", got)
	}
}

func TestHighlighter_HighlightAll(t *testing.T) {
	h := NewHighlighter("", "")
	got := h.HighlightAll([]string{"js", "node"}, []string{"js"})
	if len(got) != 2 || got[0] != "<mark>js</mark>" || got[1] != "node" {
		t.Errorf("HighlightAll() = %v", got)
	}
}

func TestHighlighter_CompileOncePerQuery(t *testing.T) {
	h := NewHighlighter("", "")
	m := h.Compile([]string{"go", "", "c++"})
	if len(m.patterns) != 2 {
		t.Fatalf("compiled %d patterns, want 2", len(m.patterns))
	}
	texts := []string{"Go and c++", "golang", "nothing here"}
	for _, text := range texts {
		want := h.Highlight(text, []string{"go", "c++"})
		if got := m.Highlight(text); got != want {
			t.Errorf("Marker.Highlight(%q) = %q, want %q", text, got, want)
		}
	}
	if got := m.HighlightAll([]string{"go", "rust"}); got[0] != "<mark>go</mark>" || got[1] != "rust" {
		t.Errorf("Marker.HighlightAll() = %v", got)
	}
	if got := h.Compile(nil).Highlight("unchanged"); got != "unchanged" {
		t.Errorf("empty marker changed text: %q", got)
	}
}
