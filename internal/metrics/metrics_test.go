package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/hyperjump/kensaku/internal/indexer"
	"github.com/hyperjump/kensaku/internal/models"
	"github.com/hyperjump/kensaku/internal/session"
)

var _ session.Monitor = (*SessionMonitor)(nil)

func TestMiddleware_RecordsDurationAndCount(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/api/v1/articles/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	req := httptest.NewRequest("GET", "/api/v1/articles/abc", http.NoBody)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
	val := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/v1/articles/{id}", "404"))
	if val < 1 {
		t.Errorf("expected requests labelled by route pattern, got %f", val)
	}
	if testutil.CollectAndCount(httpRequestDuration) == 0 {
		t.Error("expected duration observations")
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", "unknown"},
		{"/api/v1/search", "/api/v1/search"},
		{"/health", "/health"},
	}
	for _, tc := range tests {
		if got := normalizePath(tc.input); got != tc.expected {
			t.Errorf("normalizePath(%q) = %q, want %q", tc.input, got, tc.expected)
		}
	}
}

func TestHandler_ServesRegisteredMetrics(t *testing.T) {
	httpRequestsTotal.WithLabelValues("GET", "/health", "200").Inc()

	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", http.NoBody))

	body, err := io.ReadAll(rr.Body)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(body), "kensaku_http_requests_total") {
		t.Error("expected kensaku_http_requests_total in metrics output")
	}
}

func TestSessionMonitor_Hooks(t *testing.T) {
	m := NewSessionMonitor(prometheus.NewRegistry())

	m.QuerySubmitted("go")
	m.QuerySubmitted("golang")
	m.QuerySuperseded("go")
	m.SearchCompleted("golang", 3, 2*time.Millisecond)
	m.IndexRebuilt(42)
	m.SuggestionsServed(4)

	if got := testutil.ToFloat64(m.submitted); got != 2 {
		t.Errorf("submitted = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.superseded); got != 1 {
		t.Errorf("superseded = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.searches); got != 1 {
		t.Errorf("searches = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.indexSize); got != 42 {
		t.Errorf("index size = %v, want 42", got)
	}
	if got := testutil.ToFloat64(m.suggestions); got != 4 {
		t.Errorf("suggestions = %v, want 4", got)
	}
}

func TestSessionMonitor_WiredIntoSession(t *testing.T) {
	m := NewSessionMonitor(prometheus.NewRegistry())
	s := session.New(indexer.NewIndexer(), session.WithDebounce(0), session.WithMonitor(m))
	defer s.Close()

	if err := s.RebuildIndex([]*models.Article{
		{ID: "1", Title: "Go concurrency", Content: "goroutines and channels"},
		{ID: "2", Title: "Rust ownership", Content: "borrowing"},
	}); err != nil {
		t.Fatal(err)
	}
	if err := s.SubmitQuery("go"); err != nil {
		t.Fatal(err)
	}

	if got := testutil.ToFloat64(m.indexSize); got != 2 {
		t.Errorf("index size = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.searches); got != 1 {
		t.Errorf("searches = %v, want 1", got)
	}
}
