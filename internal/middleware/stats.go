package middleware

import "sync"

// TimingEntry is the spec §3 TimingStats record for one operation key.
type TimingEntry struct {
	Count   int64
	TotalMs int64
	MinMs   int64
	MaxMs   int64
}

// AvgMs is the derived average, spec §3.
func (t TimingEntry) AvgMs() float64 {
	if t.Count == 0 {
		return 0
	}
	return float64(t.TotalMs) / float64(t.Count)
}

// Stats holds the counters both middleware layers update (spec §4.7:
// "Both middlewares expose get_stats() and reset_stats()"). Updates are
// serialized by a single mutex — the spec's concurrency model (§5) only
// requires atomicity, and one short critical section per call is cheaper
// than per-field atomics for the handful of fields involved.
type Stats struct {
	mu     sync.Mutex
	timing map[string]TimingEntry
	errors map[string]int64
}

// NewStats returns an empty Stats.
func NewStats() *Stats {
	return &Stats{
		timing: make(map[string]TimingEntry),
		errors: make(map[string]int64),
	}
}

func (s *Stats) recordTiming(key string, elapsedMs int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.timing[key]
	if !ok {
		s.timing[key] = TimingEntry{Count: 1, TotalMs: elapsedMs, MinMs: elapsedMs, MaxMs: elapsedMs}
		return
	}
	e.Count++
	e.TotalMs += elapsedMs
	if elapsedMs < e.MinMs {
		e.MinMs = elapsedMs
	}
	if elapsedMs > e.MaxMs {
		e.MaxMs = elapsedMs
	}
	s.timing[key] = e
}

func (s *Stats) recordError(kind string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors[kind]++
}

// GetStats returns a snapshot of both counters; safe to call concurrently
// with in-flight requests.
func (s *Stats) GetStats() (timing map[string]TimingEntry, errors map[string]int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	timing = make(map[string]TimingEntry, len(s.timing))
	for k, v := range s.timing {
		timing[k] = v
	}
	errors = make(map[string]int64, len(s.errors))
	for k, v := range s.errors {
		errors[k] = v
	}
	return timing, errors
}

// ResetStats clears both counters.
func (s *Stats) ResetStats() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timing = make(map[string]TimingEntry)
	s.errors = make(map[string]int64)
}
