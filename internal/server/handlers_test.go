package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hyperjump/kensaku/internal/config"
	"github.com/hyperjump/kensaku/internal/indexer"
	"github.com/hyperjump/kensaku/internal/models"
	"github.com/hyperjump/kensaku/internal/session"
	"github.com/hyperjump/kensaku/internal/storage"
	"go.uber.org/zap"
)

type mockWatchService struct {
	dirs []string
}

func (m *mockWatchService) Directories() []string {
	return append([]string(nil), m.dirs...)
}

type testEnv struct {
	srv     *Server
	handler http.Handler
	store   *storage.SQLiteStorage
	session *session.Session
}

func newTestEnv(t *testing.T, opts ...ServerOption) *testEnv {
	t.Helper()
	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "db.sqlite"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })

	idx := indexer.NewIndexer()
	sess := session.New(idx, session.WithDebounce(0))
	t.Cleanup(func() { _ = sess.Close() })

	now := time.Now()
	seed := []*models.Article{
		{ID: "go-1", Title: "Concurrency in Go", Content: "<p>Goroutines and channels.</p>", Tags: []string{"go", "concurrency"}, Category: "Programming", Author: "Ada", CreatedAt: now.AddDate(0, 0, -2)},
		{ID: "rust-1", Title: "Rust ownership", Content: "<p>Borrowing rules.</p>", Tags: []string{"rust"}, Category: "Programming", Author: "Grace", CreatedAt: now.AddDate(0, -2, 0)},
		{ID: "cook-1", Title: "Sourdough basics", Content: "<p>Flour, water, salt.</p>", Tags: []string{"baking"}, Category: "Cooking", Author: "Ada", CreatedAt: now.AddDate(0, 0, -10)},
	}
	for _, a := range seed {
		if err := store.CreateArticle(context.Background(), a); err != nil {
			t.Fatal(err)
		}
	}

	articles, err := store.ListArticles(context.Background(), 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := sess.RebuildIndex(articles); err != nil {
		t.Fatal(err)
	}
	srv := NewServer(sess, idx, store, &config.ServerConfig{Port: 8080}, zap.NewNop(), opts...)
	return &testEnv{srv: srv, handler: srv.Router(), store: store, session: sess}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	r := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, r)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) models.SearchResponse {
	t.Helper()
	var resp models.SearchResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, w.Body.String())
	}
	return resp
}

func TestHandleSearch_Immediate(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodPost, "/api/v1/search?immediate=true", searchRequest{Query: "go category:programming"})
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", w.Code, w.Body.String())
	}
	resp := decodeResponse(t, w)
	if resp.Metadata.TotalResults != 1 || resp.Results[0].ID != "go-1" {
		t.Errorf("unexpected results: %+v", resp.Results)
	}
	if resp.Results[0].Score == nil {
		t.Error("free-text results should carry a score")
	}
	if !strings.Contains(resp.Results[0].HighlightedTitle, "<mark>Go</mark>") {
		t.Errorf("highlighted title = %q", resp.Results[0].HighlightedTitle)
	}
}

func TestHandleSearch_CamelCaseKeys(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodPost, "/api/v1/search?immediate=true", searchRequest{Query: "go"})
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	var body struct {
		Results  []map[string]interface{} `json:"results"`
		Metadata map[string]interface{}   `json:"metadata"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"query", "searchTimeMs", "totalResults", "filters"} {
		if _, ok := body.Metadata[key]; !ok {
			t.Errorf("metadata missing %q: %v", key, body.Metadata)
		}
	}
	if len(body.Results) == 0 {
		t.Fatal("expected results")
	}
	for _, key := range []string{"matchedTerms", "highlightedTitle", "publishedAt"} {
		if _, ok := body.Results[0][key]; !ok {
			t.Errorf("result missing %q", key)
		}
	}
}

func TestHandleSearch_Scheduled(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodPost, "/api/v1/search", searchRequest{Query: "rust"})
	if w.Code != http.StatusAccepted {
		t.Fatalf("status: got %d", w.Code)
	}
	w = env.do(t, http.MethodGet, "/api/v1/results", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("results status: got %d", w.Code)
	}
	if resp := decodeResponse(t, w); resp.Metadata.Query != "rust" {
		t.Errorf("metadata query = %q", resp.Metadata.Query)
	}
}

func TestHandleSearch_InvalidBody(t *testing.T) {
	env := newTestEnv(t)
	r := httptest.NewRequest(http.MethodPost, "/api/v1/search", strings.NewReader("{"))
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, r)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", w.Code)
	}
}

func TestHandleResults_NoneYet(t *testing.T) {
	env := newTestEnv(t)
	if w := env.do(t, http.MethodGet, "/api/v1/results", nil); w.Code != http.StatusNoContent {
		t.Errorf("status: got %d, want 204", w.Code)
	}
}

func TestHandleFilters_Mutations(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/v1/search?immediate=true", searchRequest{Query: ""})

	w := env.do(t, http.MethodPost, "/api/v1/filters/categories/Programming", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	if resp := decodeResponse(t, w); resp.Metadata.TotalResults != 2 {
		t.Errorf("category filter: got %d results", resp.Metadata.TotalResults)
	}

	w = env.do(t, http.MethodPut, "/api/v1/filters/author", map[string]string{"author": "ada"})
	if resp := decodeResponse(t, w); resp.Metadata.TotalResults != 1 || resp.Results[0].ID != "go-1" {
		t.Errorf("author filter: got %+v", resp.Results)
	}

	w = env.do(t, http.MethodGet, "/api/v1/filters", nil)
	var fr filtersResponse
	if err := json.NewDecoder(w.Body).Decode(&fr); err != nil {
		t.Fatal(err)
	}
	if len(fr.Filters.Categories) != 1 || fr.Filters.Author != "ada" {
		t.Errorf("filters = %+v", fr.Filters)
	}

	w = env.do(t, http.MethodDelete, "/api/v1/filters", nil)
	if resp := decodeResponse(t, w); resp.Metadata.TotalResults != 3 {
		t.Errorf("clear filters: got %d results", resp.Metadata.TotalResults)
	}
}

func TestHandleSetSort(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodPut, "/api/v1/sort", sortRequest{Field: "title", Direction: "asc"})
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	resp := decodeResponse(t, w)
	if resp.Metadata.Sort.Field != models.SortTitle || resp.Metadata.Sort.Direction != models.Asc {
		t.Errorf("sort = %+v", resp.Metadata.Sort)
	}
	if len(resp.Results) != 3 || resp.Results[0].ID != "go-1" || resp.Results[2].ID != "cook-1" {
		t.Errorf("unexpected order")
	}
}

func TestHandleSetDateRange_Invalid(t *testing.T) {
	env := newTestEnv(t)
	now := time.Now()
	w := env.do(t, http.MethodPut, "/api/v1/filters/date", dateRangeRequest{Start: now, End: now.Add(-time.Hour)})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", w.Code)
	}
}

func TestHandleSuggestions(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/api/v1/suggestions?q=ru&limit=3", nil)
	var out struct {
		Suggestions []string `json:"suggestions"`
	}
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if len(out.Suggestions) == 0 || out.Suggestions[0] != "Rust ownership" {
		t.Errorf("suggestions = %v", out.Suggestions)
	}

	w = env.do(t, http.MethodGet, "/api/v1/suggestions?q=r", nil)
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if len(out.Suggestions) != 0 {
		t.Errorf("one-character prefix should return nothing, got %v", out.Suggestions)
	}
}

func TestHandleHistoryStatsExport(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/v1/search?immediate=true", searchRequest{Query: "go"})
	env.do(t, http.MethodPost, "/api/v1/search?immediate=true", searchRequest{Query: "rust"})

	w := env.do(t, http.MethodGet, "/api/v1/history?limit=1", nil)
	var hist struct {
		History []models.HistoryEntry `json:"history"`
	}
	if err := json.NewDecoder(w.Body).Decode(&hist); err != nil {
		t.Fatal(err)
	}
	if len(hist.History) != 1 || hist.History[0].Query != "rust" {
		t.Errorf("history = %+v", hist.History)
	}

	w = env.do(t, http.MethodGet, "/api/v1/stats", nil)
	var stats models.SearchStats
	if err := json.NewDecoder(w.Body).Decode(&stats); err != nil {
		t.Fatal(err)
	}
	if stats.TotalSearches != 2 {
		t.Errorf("total searches = %d", stats.TotalSearches)
	}

	w = env.do(t, http.MethodGet, "/api/v1/export", nil)
	if !strings.Contains(w.Header().Get("Content-Disposition"), "attachment") {
		t.Error("export should be served as an attachment")
	}
	var exp models.Export
	if err := json.NewDecoder(w.Body).Decode(&exp); err != nil {
		t.Fatal(err)
	}
	if len(exp.History) != 2 || exp.ExportedAt == 0 {
		t.Errorf("export = %+v", exp)
	}

	env.do(t, http.MethodDelete, "/api/v1/history", nil)
	env.do(t, http.MethodDelete, "/api/v1/stats", nil)
	w = env.do(t, http.MethodGet, "/api/v1/stats", nil)
	if err := json.NewDecoder(w.Body).Decode(&stats); err != nil {
		t.Fatal(err)
	}
	if stats.TotalSearches != 0 {
		t.Errorf("stats after reset = %+v", stats)
	}
}

func TestHandleArticles_CreateGetDelete(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/articles", models.Article{ID: "py-1", Title: "Python typing", Content: "<p>Hints</p>"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status: got %d, body %s", w.Code, w.Body.String())
	}
	w = env.do(t, http.MethodPost, "/api/v1/search?immediate=true", searchRequest{Query: "python"})
	if resp := decodeResponse(t, w); resp.Metadata.TotalResults != 1 {
		t.Errorf("new article should be searchable, got %d results", resp.Metadata.TotalResults)
	}

	w = env.do(t, http.MethodGet, "/api/v1/articles/py-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status: got %d", w.Code)
	}

	if w = env.do(t, http.MethodPost, "/api/v1/articles/py-1/views", nil); w.Code != http.StatusOK {
		t.Errorf("views status: got %d", w.Code)
	}
	a, err := env.store.GetArticle(context.Background(), "py-1")
	if err != nil {
		t.Fatal(err)
	}
	if a.Views != 1 {
		t.Errorf("views = %d, want 1", a.Views)
	}

	if w = env.do(t, http.MethodDelete, "/api/v1/articles/py-1", nil); w.Code != http.StatusOK {
		t.Fatalf("delete status: got %d", w.Code)
	}
	if w = env.do(t, http.MethodGet, "/api/v1/articles/py-1", nil); w.Code != http.StatusNotFound {
		t.Errorf("get after delete: got %d, want 404", w.Code)
	}
	if w = env.do(t, http.MethodDelete, "/api/v1/articles/py-1", nil); w.Code != http.StatusNotFound {
		t.Errorf("second delete: got %d, want 404", w.Code)
	}
}

func TestHandleListArticles(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/api/v1/articles?limit=2", nil)
	var out struct {
		Articles []models.Article `json:"articles"`
	}
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if len(out.Articles) != 2 || out.Articles[0].ID != "go-1" {
		t.Errorf("articles = %+v", out.Articles)
	}
}

func TestHandleArticles_NoStorage(t *testing.T) {
	idx := indexer.NewIndexer()
	sess := session.New(idx, session.WithDebounce(0))
	defer sess.Close()
	srv := NewServer(sess, idx, nil, &config.ServerConfig{}, nil)

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/articles/x", nil))
	if w.Code != http.StatusNotImplemented {
		t.Errorf("status: got %d, want 501", w.Code)
	}
}

func TestHandleReindex_UsesReloader(t *testing.T) {
	called := 0
	var env *testEnv
	env = newTestEnv(t, WithReloader(func(ctx context.Context) error {
		called++
		return env.session.RebuildIndex([]*models.Article{{ID: "only", Title: "Only one"}})
	}))

	w := env.do(t, http.MethodPost, "/api/v1/reindex", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	if called != 1 {
		t.Errorf("reloader called %d times", called)
	}
	if env.srv.indexer.Len() != 1 {
		t.Errorf("index size = %d, want 1", env.srv.indexer.Len())
	}
}

func TestHandleStatus(t *testing.T) {
	env := newTestEnv(t, WithWatch(&mockWatchService{dirs: []string{"/tmp/docs"}}))
	w := env.do(t, http.MethodGet, "/api/v1/status", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	var out map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out["documents"].(float64) != 3 || out["articles"].(float64) != 3 {
		t.Errorf("status = %v", out)
	}
	if _, ok := out["disk_usage_bytes"]; !ok {
		t.Error("status should report disk usage for SQLite storage")
	}
	if dirs, ok := out["watch_directories"].([]interface{}); !ok || len(dirs) != 1 {
		t.Errorf("watch_directories = %v", out["watch_directories"])
	}
}

func TestHandleHealthAndMetrics(t *testing.T) {
	env := newTestEnv(t)
	if w := env.do(t, http.MethodGet, "/health", nil); w.Code != http.StatusOK {
		t.Errorf("health: got %d", w.Code)
	}
	env.do(t, http.MethodGet, "/health", nil)
	w := env.do(t, http.MethodGet, "/metrics", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("metrics: got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `path="/health"`) {
		t.Error("metrics should include requests labelled by route")
	}
}

func TestHandleSession_Closed(t *testing.T) {
	env := newTestEnv(t)
	_ = env.session.Close()
	w := env.do(t, http.MethodGet, "/api/v1/stats", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status: got %d, want 503", w.Code)
	}
}
