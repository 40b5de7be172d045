// Package audit keeps the immutable trail of scoring decisions.
//
// The trail lives in process memory only: entries survive until restart and
// nothing is persisted. That is a documented property of this deployment, not
// an accident — compliance export belongs to a downstream collector, the
// service only guarantees that every successful scoring decision is recorded
// exactly once, intact, under any level of concurrency.
package audit

import (
	"sync"
	"time"

	"github.com/mbd888/riskscore/internal/idgen"
	"github.com/mbd888/riskscore/internal/policy"
)

// Entry is a single immutable record of a scoring decision.
type Entry struct {
	ID             string                `json:"id"`
	Timestamp      time.Time             `json:"timestamp"`
	TransactionID  string                `json:"transactionId"`
	CustomerID     string                `json:"customerId,omitempty"`
	RiskScore      float64               `json:"riskScore"`
	RiskLevel      policy.Level          `json:"riskLevel"`
	Recommendation policy.Recommendation `json:"recommendation"`
	ModelVersion   string                `json:"modelVersion"`
	Environment    string                `json:"environment"`
	CorrelationID  string                `json:"correlationId"`
}

// Trail is an append-only, process-wide decision log. When capacity is
// positive the trail behaves as a ring buffer and evicts the oldest entries;
// capacity 0 means unbounded growth.
type Trail struct {
	mu       sync.RWMutex
	entries  []*Entry
	capacity int
	appended int64
}

// NewTrail creates an audit trail with the given capacity (0 = unbounded).
func NewTrail(capacity int) *Trail {
	return &Trail{capacity: capacity}
}

// Append records a decision. It never fails: audit storage problems must not
// fail the scoring request that produced the entry.
func (t *Trail) Append(entry *Entry) {
	cp := *entry
	if cp.ID == "" {
		cp.ID = idgen.WithPrefix("aud_")
	}
	if cp.Timestamp.IsZero() {
		cp.Timestamp = time.Now().UTC()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries = append(t.entries, &cp)
	t.appended++
	if t.capacity > 0 && len(t.entries) > t.capacity {
		// Evict oldest. Copy to release the backing array's head.
		trimmed := make([]*Entry, t.capacity)
		copy(trimmed, t.entries[len(t.entries)-t.capacity:])
		t.entries = trimmed
	}
}

// Tail returns up to limit entries, most recent first.
func (t *Trail) Tail(limit int) []*Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if limit <= 0 || limit > len(t.entries) {
		limit = len(t.entries)
	}

	result := make([]*Entry, 0, limit)
	for i := len(t.entries) - 1; i >= 0 && len(result) < limit; i-- {
		cp := *t.entries[i]
		result = append(result, &cp)
	}
	return result
}

// Size returns the number of currently retained entries.
func (t *Trail) Size() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Appended returns the count of entries ever appended, including evicted ones.
func (t *Trail) Appended() int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.appended
}
