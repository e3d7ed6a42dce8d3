// Package export writes session history and stats to disk on a cron schedule.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Source produces the export document.
type Source interface {
	ExportJSON() ([]byte, error)
}

// Scheduler periodically writes a Source's export to a file.
type Scheduler struct {
	cron   *cron.Cron
	source Source
	path   string
	logger *zap.Logger

	mu      sync.Mutex
	entry   cron.EntryID
	started bool
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithLogger sets the logger used for export failures.
func WithLogger(l *zap.Logger) SchedulerOption {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewScheduler creates a scheduler that writes source's export to path.
func NewScheduler(source Source, path string, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		cron:   cron.New(cron.WithSeconds()),
		source: source,
		path:   path,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// normalizeCron prepends "0 " to standard 5-field cron expressions
// so they work with the 6-field (with seconds) parser.
func normalizeCron(schedule string) string {
	if len(strings.Fields(schedule)) == 5 {
		return "0 " + schedule
	}
	return schedule
}

// Start registers the export job and starts the cron runner. Schedules
// accept 5 or 6 fields or descriptors such as "@hourly" and "@every 10m".
func (s *Scheduler) Start(schedule string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return fmt.Errorf("export scheduler already started")
	}
	id, err := s.cron.AddFunc(normalizeCron(schedule), func() {
		if err := s.RunOnce(); err != nil {
			s.logger.Warn("scheduled export failed", zap.String("path", s.path), zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid export schedule %q: %w", schedule, err)
	}
	s.entry = id
	s.started = true
	s.cron.Start()
	s.logger.Info("export scheduler started", zap.String("schedule", schedule), zap.String("path", s.path))
	return nil
}

// Stop stops the runner and waits for a running export to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.cron.Remove(s.entry)
	s.started = false
}

// RunOnce writes the current export immediately.
func (s *Scheduler) RunOnce() error {
	data, err := s.source.ExportJSON()
	if err != nil {
		return fmt.Errorf("failed to build export: %w", err)
	}
	if err := WriteFile(s.path, data); err != nil {
		return err
	}
	s.logger.Debug("export written", zap.String("path", s.path), zap.Int("bytes", len(data)))
	return nil
}

// WriteFile writes data to path through a temporary file in the same
// directory, so readers never see a partial export.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".export-*.json")
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move export into place: %w", err)
	}
	return nil
}
