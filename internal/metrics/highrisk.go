package metrics

import (
	"sync"
	"time"
)

// highRiskWindow tracks detection timestamps inside a sliding window so the
// last-hour gauge reports what its name says. Timestamps are pruned on every
// record and on every scrape; memory stays proportional to the hourly
// high-risk rate.
type highRiskWindow struct {
	mu     sync.Mutex
	window time.Duration
	times  []time.Time
}

var highRisk = &highRiskWindow{window: time.Hour}

// RecordHighRisk notes a HIGH or CRITICAL detection for the last-hour gauge.
func RecordHighRisk() {
	highRisk.recordAt(time.Now())
}

func (w *highRiskWindow) recordAt(now time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.prune(now)
	w.times = append(w.times, now)
}

// Count returns the number of detections within the trailing window.
func (w *highRiskWindow) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.prune(time.Now())
	return len(w.times)
}

// prune drops timestamps older than the window (caller holds lock).
func (w *highRiskWindow) prune(now time.Time) {
	cutoff := now.Add(-w.window)
	start := 0
	for start < len(w.times) && !w.times[start].After(cutoff) {
		start++
	}
	if start > 0 {
		w.times = append(w.times[:0:0], w.times[start:]...)
	}
}
