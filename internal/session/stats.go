package session

import "github.com/hyperjump/kensaku/internal/models"

// DefaultStatsWindow is the number of recent latencies averaged.
const DefaultStatsWindow = 100

// stats keeps a total count and a rolling window of latencies in milliseconds.
type stats struct {
	window int
	total  int
	recent []float64
}

func newStats(window int) *stats {
	if window <= 0 {
		window = DefaultStatsWindow
	}
	return &stats{window: window, recent: make([]float64, 0, window)}
}

func (s *stats) record(ms float64) {
	s.total++
	if len(s.recent) == s.window {
		copy(s.recent, s.recent[1:])
		s.recent = s.recent[:s.window-1]
	}
	s.recent = append(s.recent, ms)
}

func (s *stats) snapshot() models.SearchStats {
	out := models.SearchStats{
		TotalSearches:       s.total,
		RecentSearchTimesMs: append([]float64{}, s.recent...),
	}
	if len(s.recent) > 0 {
		var sum float64
		for _, v := range s.recent {
			sum += v
		}
		out.AverageSearchTimeMs = sum / float64(len(s.recent))
	}
	return out
}

func (s *stats) reset() {
	s.total = 0
	s.recent = s.recent[:0]
}
