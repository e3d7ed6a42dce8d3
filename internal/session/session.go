// Package session owns a search session: debounced query execution,
// filter and sort state, history, and latency stats.
//
// All state is confined to one event-loop goroutine. Public methods, debounce
// timer callbacks, and index rebuilds are posted to that loop and run one at a
// time, so executions never overlap and no session state is locked.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hyperjump/kensaku/internal/indexer"
	"github.com/hyperjump/kensaku/internal/models"
	"github.com/hyperjump/kensaku/internal/query"
	"github.com/hyperjump/kensaku/internal/ranking"
	"github.com/hyperjump/kensaku/internal/search"
	"go.uber.org/zap"
)

// DefaultDebounce is the quiet period before a submitted query runs.
const DefaultDebounce = 300 * time.Millisecond

var (
	// ErrNoSession is returned when a method is called on a nil or unconstructed Session.
	ErrNoSession = errors.New("session: not constructed")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("session: closed")
	// ErrInvalidDateRange is returned when a date range does not start before it ends.
	ErrInvalidDateRange = errors.New("session: date range start must be before end")
)

// State is the execution state of the session.
type State int

const (
	Idle State = iota
	Debouncing
	Executing
	Published
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Debouncing:
		return "debouncing"
	case Executing:
		return "executing"
	case Published:
		return "published"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Session is a single search session over one document store.
type Session struct {
	ops     chan func()
	done    chan struct{}
	stopped chan struct{}

	// Owned by the event loop.
	indexer    *indexer.Indexer
	engine     *search.Engine
	parser     *query.Parser
	filters    models.Filters
	sort       models.Sort
	state      State
	timer      *time.Timer
	generation uint64
	pending    string
	lastQuery  string
	hasLast    bool
	last       *models.SearchResponse
	history    *history
	stats      *stats
	listeners  map[int]func(*models.SearchResponse)
	nextID     int

	debounce        time.Duration
	suggestionLimit int
	historyCapacity int
	statsWindow     int
	now             func() time.Time
	monitor         Monitor
	logger          *zap.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithDebounce sets the debounce window. Zero runs submissions immediately.
func WithDebounce(d time.Duration) Option {
	return func(s *Session) {
		if d >= 0 {
			s.debounce = d
		}
	}
}

// WithClock sets the time source for history timestamps and relative dates.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithMonitor(m Monitor) Option {
	return func(s *Session) {
		if m != nil {
			s.monitor = m
		}
	}
}

func WithEngine(e *search.Engine) Option {
	return func(s *Session) {
		if e != nil {
			s.engine = e
		}
	}
}

func WithHistoryCapacity(n int) Option {
	return func(s *Session) { s.historyCapacity = n }
}

func WithStatsWindow(n int) Option {
	return func(s *Session) { s.statsWindow = n }
}

func WithSuggestionLimit(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.suggestionLimit = n
		}
	}
}

// New creates a session over idx and starts its event loop.
// Call Close to stop it.
func New(idx *indexer.Indexer, opts ...Option) *Session {
	s := &Session{
		ops:             make(chan func()),
		done:            make(chan struct{}),
		stopped:         make(chan struct{}),
		indexer:         idx,
		sort:            models.DefaultSort(),
		listeners:       make(map[int]func(*models.SearchResponse)),
		debounce:        DefaultDebounce,
		suggestionLimit: search.DefaultSuggestionLimit,
		now:             time.Now,
		monitor:         noopMonitor{},
		logger:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.indexer == nil {
		s.indexer = indexer.NewIndexer()
	}
	if s.engine == nil {
		s.engine = search.NewEngine(
			search.WithRanker(ranking.NewRanker(nil).WithClock(s.now)),
			search.WithLogger(s.logger),
		)
	}
	s.parser = query.NewParser(query.WithClock(s.now))
	s.history = newHistory(s.historyCapacity)
	s.stats = newStats(s.statsWindow)

	go s.loop()
	return s
}

func (s *Session) loop() {
	defer close(s.stopped)
	for {
		select {
		case op := <-s.ops:
			op()
		case <-s.done:
			if s.timer != nil {
				s.timer.Stop()
			}
			return
		}
	}
}

// do runs fn on the event loop and waits for it to finish.
func (s *Session) do(fn func()) error {
	if s == nil || s.ops == nil {
		return ErrNoSession
	}
	finished := make(chan struct{})
	select {
	case s.ops <- func() { defer close(finished); fn() }:
	case <-s.done:
		return ErrClosed
	}
	<-finished
	return nil
}

// post queues fn on the event loop without waiting. Used by timer callbacks.
func (s *Session) post(fn func()) {
	select {
	case s.ops <- fn:
	case <-s.done:
	}
}

// Close stops the event loop and any pending debounce timer.
func (s *Session) Close() error {
	if s == nil || s.ops == nil {
		return ErrNoSession
	}
	select {
	case <-s.done:
		return ErrClosed
	default:
	}
	close(s.done)
	<-s.stopped
	return nil
}

// SubmitQuery schedules raw for execution after the debounce window.
// A later submission before the window elapses replaces this one.
func (s *Session) SubmitQuery(raw string) error {
	return s.do(func() {
		s.monitor.QuerySubmitted(raw)
		if s.timer != nil {
			s.timer.Stop()
			s.timer = nil
			s.monitor.QuerySuperseded(s.pending)
			s.logger.Debug("query superseded", zap.String("query", s.pending))
		}
		s.generation++
		s.pending = raw

		if s.debounce == 0 {
			s.fire()
			return
		}
		gen := s.generation
		s.state = Debouncing
		s.timer = time.AfterFunc(s.debounce, func() {
			s.post(func() {
				if gen == s.generation && s.timer != nil {
					s.fire()
				}
			})
		})
	})
}

// Flush runs a pending submission now instead of waiting for the debounce
// window. It returns the most recent published response, or nil if none.
func (s *Session) Flush() (*models.SearchResponse, error) {
	var resp *models.SearchResponse
	err := s.do(func() {
		if s.timer != nil {
			s.timer.Stop()
			s.fire()
		}
		resp = s.last
	})
	return resp, err
}

// fire parses and executes the pending submission.
func (s *Session) fire() {
	s.timer = nil
	s.generation++
	raw := s.pending
	s.pending = ""

	q := s.parser.Parse(raw, s.filters, s.sort)
	s.filters = q.Filters.Clone()
	s.sort = q.Sort

	submitted := strings.TrimSpace(raw) != ""
	if submitted {
		s.lastQuery = q.FreeText
		s.hasLast = true
	}

	s.execute(q)

	if submitted {
		s.history.add(models.HistoryEntry{
			Query:     raw,
			Timestamp: s.now(),
			Filters:   q.Filters.Clone(),
			Sort:      q.Sort,
		})
	}
}

// rerun executes the last non-empty query against the current filters and sort.
func (s *Session) rerun() {
	freeText := ""
	if s.hasLast {
		freeText = s.lastQuery
	}
	s.execute(&models.Query{
		Raw:      freeText,
		FreeText: freeText,
		Filters:  s.filters.Clone(),
		Sort:     s.sort,
	})
}

// execute runs q against the store as it is right now and publishes the result.
func (s *Session) execute(q *models.Query) {
	s.state = Executing
	start := time.Now()

	resp := s.engine.Search(q, s.indexer.Snapshot())

	elapsed := time.Since(start)
	resp.Metadata.SearchTimeMs = float64(elapsed.Microseconds()) / 1000
	s.stats.record(resp.Metadata.SearchTimeMs)
	s.last = resp
	s.state = Published

	s.monitor.SearchCompleted(q.FreeText, resp.Metadata.TotalResults, elapsed)
	s.logger.Debug("search published",
		zap.String("query", q.Raw),
		zap.Int("results", resp.Metadata.TotalResults),
		zap.Float64("search_time_ms", resp.Metadata.SearchTimeMs))

	for _, fn := range s.listeners {
		fn(resp)
	}
}

// mutate applies fn to the filter/sort state, re-executes immediately and
// returns the response that execution published.
func (s *Session) mutate(fn func()) (*models.SearchResponse, error) {
	var resp *models.SearchResponse
	err := s.do(func() {
		fn()
		s.rerun()
		resp = s.last
	})
	return resp, err
}

// SetSort changes the result order and re-executes.
func (s *Session) SetSort(field models.SortField, direction models.SortDirection) (*models.SearchResponse, error) {
	return s.mutate(func() {
		s.sort = models.Sort{
			Field:     models.ParseSortField(string(field)),
			Direction: models.ParseSortDirection(string(direction)),
		}
	})
}

func (s *Session) AddCategoryFilter(v string) (*models.SearchResponse, error) {
	return s.mutate(func() { s.filters.AddCategory(v) })
}

func (s *Session) RemoveCategoryFilter(v string) (*models.SearchResponse, error) {
	return s.mutate(func() { s.filters.RemoveCategory(v) })
}

func (s *Session) AddTagFilter(v string) (*models.SearchResponse, error) {
	return s.mutate(func() { s.filters.AddTag(v) })
}

func (s *Session) RemoveTagFilter(v string) (*models.SearchResponse, error) {
	return s.mutate(func() { s.filters.RemoveTag(v) })
}

// SetAuthorFilter sets the author substring filter. An empty value removes it.
func (s *Session) SetAuthorFilter(v string) (*models.SearchResponse, error) {
	return s.mutate(func() { s.filters.Author = strings.TrimSpace(v) })
}

// SetDateRangeFilter restricts results to [start, end). Two zero times remove
// the filter.
func (s *Session) SetDateRangeFilter(start, end time.Time) (*models.SearchResponse, error) {
	if start.IsZero() && end.IsZero() {
		return s.mutate(func() { s.filters.DateRange = nil })
	}
	if !start.Before(end) {
		if s == nil || s.ops == nil {
			return nil, ErrNoSession
		}
		return nil, ErrInvalidDateRange
	}
	return s.mutate(func() {
		s.filters.DateRange = &models.DateRange{Start: start, End: end}
	})
}

// ClearFilters removes every filter and re-executes.
func (s *Session) ClearFilters() (*models.SearchResponse, error) {
	return s.mutate(func() { s.filters = models.Filters{} })
}

// RebuildIndex replaces the document store with items. A pending submission
// sees the rebuilt store when it runs.
func (s *Session) RebuildIndex(items []*models.Article) error {
	return s.do(func() {
		n := s.indexer.Rebuild(items)
		s.monitor.IndexRebuilt(n)
	})
}

// GetSuggestions returns autocomplete candidates for text.
// A non-positive limit uses the session's configured default.
func (s *Session) GetSuggestions(text string, limit int) ([]string, error) {
	var out []string
	err := s.do(func() {
		if limit <= 0 {
			limit = s.suggestionLimit
		}
		out = search.Suggest(s.indexer.Snapshot(), text, limit)
		s.monitor.SuggestionsServed(len(out))
	})
	return out, err
}

// GetSearchHistory returns up to limit entries, newest first. limit <= 0 returns all.
func (s *Session) GetSearchHistory(limit int) ([]models.HistoryEntry, error) {
	var out []models.HistoryEntry
	err := s.do(func() { out = s.history.list(limit) })
	return out, err
}

func (s *Session) ClearHistory() error {
	return s.do(func() { s.history.clear() })
}

func (s *Session) GetSearchStats() (models.SearchStats, error) {
	var out models.SearchStats
	err := s.do(func() { out = s.stats.snapshot() })
	return out, err
}

func (s *Session) ResetStats() error {
	return s.do(func() { s.stats.reset() })
}

// Export returns the history and stats with an export timestamp in epoch milliseconds.
func (s *Session) Export() (*models.Export, error) {
	var out *models.Export
	err := s.do(func() {
		out = &models.Export{
			History:    s.history.list(0),
			Stats:      s.stats.snapshot(),
			ExportedAt: s.now().UnixMilli(),
		}
	})
	return out, err
}

// ExportJSON returns Export encoded as indented JSON.
func (s *Session) ExportJSON() ([]byte, error) {
	exp, err := s.Export()
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(exp, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode export: %w", err)
	}
	return data, nil
}

// LastResponse returns the most recently published response, or nil.
func (s *Session) LastResponse() (*models.SearchResponse, error) {
	var resp *models.SearchResponse
	err := s.do(func() { resp = s.last })
	return resp, err
}

// Filters returns a copy of the active filters.
func (s *Session) Filters() (models.Filters, error) {
	var f models.Filters
	err := s.do(func() { f = s.filters.Clone() })
	return f, err
}

// Sort returns the active sort order.
func (s *Session) Sort() (models.Sort, error) {
	var out models.Sort
	err := s.do(func() { out = s.sort })
	return out, err
}

// State returns the current execution state.
func (s *Session) State() (State, error) {
	var st State
	err := s.do(func() { st = s.state })
	return st, err
}

// Subscribe registers fn to receive every published response. fn runs on
// the event loop and must not call Session methods. The returned function
// removes the subscription.
func (s *Session) Subscribe(fn func(*models.SearchResponse)) (func(), error) {
	var id int
	err := s.do(func() {
		id = s.nextID
		s.nextID++
		s.listeners[id] = fn
	})
	if err != nil {
		return nil, err
	}
	return func() {
		_ = s.do(func() { delete(s.listeners, id) })
	}, nil
}
