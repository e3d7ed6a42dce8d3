package fileid

import (
	"testing"
)

func TestArticleID(t *testing.T) {
	id1 := ArticleID("/content/go.md", 0)
	id2 := ArticleID("/content/go.md", 0)
	if id1 != id2 {
		t.Errorf("same path should give same ID: %q vs %q", id1, id2)
	}
	if !IsArticleID(id1) {
		t.Errorf("unexpected ID shape: %q", id1)
	}
}

func TestArticleID_differentPaths(t *testing.T) {
	if ArticleID("/content/a.md", 0) == ArticleID("/content/b.md", 0) {
		t.Error("different paths should give different IDs")
	}
}

func TestArticleID_index(t *testing.T) {
	path := "/content/batch.json"
	if ArticleID(path, 0) == ArticleID(path, 1) {
		t.Error("different indexes should give different IDs")
	}
	if ArticleID(path, 2) != ArticleID(path, 2) {
		t.Error("same index should be deterministic")
	}
}

func TestArticleID_normalized(t *testing.T) {
	id1 := ArticleID("/content/posts/a.md", 0)
	id2 := ArticleID("/content/./posts/a.md", 0)
	id3 := ArticleID("/content/drafts/../posts/a.md", 0)
	if id1 != id2 || id1 != id3 {
		t.Errorf("cleaned paths should match: %q %q %q", id1, id2, id3)
	}
}

func TestIsArticleID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{ArticleID("x", 0), true},
		{"article-zzzzzzzzzzzzzzzz", false},
		{"article-abc", false},
		{"3f2b9c1e-uuid", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsArticleID(tt.id); got != tt.want {
			t.Errorf("IsArticleID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}
