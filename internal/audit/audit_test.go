package audit

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mbd888/riskscore/internal/policy"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func entry(txID string) *Entry {
	return &Entry{
		TransactionID:  txID,
		RiskScore:      0.85,
		RiskLevel:      policy.LevelCritical,
		Recommendation: policy.RecommendReject,
		ModelVersion:   "v1.0.0",
		Environment:    "test",
		CorrelationID:  "corr-" + txID,
	}
}

func TestAppendAssignsIDAndTimestamp(t *testing.T) {
	trail := NewTrail(0)
	trail.Append(entry("T1"))

	got := trail.Tail(1)[0]
	if got.ID == "" {
		t.Error("expected generated entry ID")
	}
	if got.Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}
}

func TestTailMostRecentFirst(t *testing.T) {
	trail := NewTrail(0)
	for i := 1; i <= 5; i++ {
		trail.Append(entry(fmt.Sprintf("T%d", i)))
	}

	got := trail.Tail(2)
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].TransactionID != "T5" || got[1].TransactionID != "T4" {
		t.Errorf("expected [T5 T4], got [%s %s]", got[0].TransactionID, got[1].TransactionID)
	}
}

func TestTailLimitLargerThanTrail(t *testing.T) {
	trail := NewTrail(0)
	trail.Append(entry("T1"))

	if got := trail.Tail(100); len(got) != 1 {
		t.Errorf("expected 1 entry, got %d", len(got))
	}
}

func TestCapacityEvictsOldest(t *testing.T) {
	trail := NewTrail(3)
	for i := 1; i <= 5; i++ {
		trail.Append(entry(fmt.Sprintf("T%d", i)))
	}

	if trail.Size() != 3 {
		t.Fatalf("expected 3 retained entries, got %d", trail.Size())
	}
	if trail.Appended() != 5 {
		t.Errorf("expected 5 total appends, got %d", trail.Appended())
	}

	got := trail.Tail(3)
	if got[0].TransactionID != "T5" || got[2].TransactionID != "T3" {
		t.Errorf("oldest entries should be evicted, got newest=%s oldest=%s",
			got[0].TransactionID, got[2].TransactionID)
	}
}

func TestConcurrentAppends(t *testing.T) {
	trail := NewTrail(0)

	const n = 200
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			trail.Append(entry(fmt.Sprintf("T%d", i)))
		}(i)
	}
	wg.Wait()

	if trail.Size() != n {
		t.Fatalf("expected %d entries, got %d", n, trail.Size())
	}

	// Every submitted entry appears exactly once, intact
	seen := make(map[string]bool, n)
	for _, e := range trail.Tail(n) {
		if seen[e.TransactionID] {
			t.Errorf("duplicate entry for %s", e.TransactionID)
		}
		seen[e.TransactionID] = true
		if e.RiskLevel != policy.LevelCritical || e.CorrelationID != "corr-"+e.TransactionID {
			t.Errorf("corrupted entry: %+v", e)
		}
	}
	if len(seen) != n {
		t.Errorf("expected %d distinct entries, got %d", n, len(seen))
	}
}

func TestEntriesImmutableAfterAppend(t *testing.T) {
	trail := NewTrail(0)
	src := entry("T1")
	trail.Append(src)
	src.TransactionID = "mutated"

	if got := trail.Tail(1)[0].TransactionID; got != "T1" {
		t.Errorf("stored entry changed after caller mutation: %s", got)
	}

	// Tail returns copies too
	trail.Tail(1)[0].TransactionID = "mutated-again"
	if got := trail.Tail(1)[0].TransactionID; got != "T1" {
		t.Errorf("stored entry changed via Tail result: %s", got)
	}
}

func TestListHandler(t *testing.T) {
	trail := NewTrail(0)
	for i := 1; i <= 5; i++ {
		trail.Append(entry(fmt.Sprintf("T%d", i)))
	}

	router := gin.New()
	NewHandler(trail).RegisterRoutes(router.Group("/v1"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/v1/audit-logs?limit=2", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Total int      `json:"total"`
		Logs  []*Entry `json:"logs"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Total != 5 {
		t.Errorf("expected total 5, got %d", resp.Total)
	}
	if len(resp.Logs) != 2 {
		t.Errorf("expected 2 logs, got %d", len(resp.Logs))
	}
	if resp.Logs[0].TransactionID != "T5" {
		t.Errorf("expected most recent first, got %s", resp.Logs[0].TransactionID)
	}
}

func TestListHandlerBadLimit(t *testing.T) {
	router := gin.New()
	NewHandler(NewTrail(0)).RegisterRoutes(router.Group("/v1"))

	for _, q := range []string{"limit=abc", "limit=-1", "limit=0"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/v1/audit-logs?"+q, nil)
		router.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", q, w.Code)
		}
	}
}
