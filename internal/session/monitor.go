package session

import "time"

// Monitor provides hooks to observe session activity.
// Hooks run on the session's event loop and must not call back into the Session.
type Monitor interface {
	QuerySubmitted(raw string)
	QuerySuperseded(raw string)
	SearchCompleted(query string, results int, elapsed time.Duration)
	IndexRebuilt(documents int)
	SuggestionsServed(count int)
}

// noopMonitor is a no-op implementation of Monitor.
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (noopMonitor) QuerySubmitted(_ string)                         {}
func (noopMonitor) QuerySuperseded(_ string)                        {}
func (noopMonitor) SearchCompleted(_ string, _ int, _ time.Duration) {}
func (noopMonitor) IndexRebuilt(_ int)                              {}
func (noopMonitor) SuggestionsServed(_ int)                         {}
