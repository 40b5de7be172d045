// Package health tracks the readiness of the service's subsystems.
package health

import (
	"context"
	"sort"
	"sync"
)

// Status is the result of checking one subsystem.
type Status struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Detail  string `json:"detail,omitempty"`
}

// Checker reports the current health of a subsystem.
type Checker func(ctx context.Context) Status

// Registry holds named checkers and runs them on demand. For this service the
// only hard dependency is the loaded predictor, but the registry keeps the
// probe handlers independent of what they probe.
type Registry struct {
	mu       sync.RWMutex
	checkers map[string]Checker
}

// NewRegistry creates an empty health check registry.
func NewRegistry() *Registry {
	return &Registry{checkers: make(map[string]Checker)}
}

// Register adds or replaces a named health checker.
func (r *Registry) Register(name string, check Checker) {
	r.mu.Lock()
	r.checkers[name] = check
	r.mu.Unlock()
}

// CheckAll runs every registered checker and returns the aggregate along with
// per-subsystem results, ordered by name for stable probe output.
func (r *Registry) CheckAll(ctx context.Context) (bool, []Status) {
	r.mu.RLock()
	names := make([]string, 0, len(r.checkers))
	for name := range r.checkers {
		names = append(names, name)
	}
	checkers := make(map[string]Checker, len(r.checkers))
	for name, c := range r.checkers {
		checkers[name] = c
	}
	r.mu.RUnlock()

	sort.Strings(names)

	healthy := true
	statuses := make([]Status, 0, len(names))
	for _, name := range names {
		st := checkers[name](ctx)
		if !st.Healthy {
			healthy = false
		}
		statuses = append(statuses, st)
	}
	return healthy, statuses
}
