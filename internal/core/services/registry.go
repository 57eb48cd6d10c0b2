package services

import (
	"sync"
	"sync/atomic"
)

// runHandle tracks one in-flight assessment run. The cancellation flag
// is checked cooperatively between safeguards; already-issued network
// calls for the in-flight safeguard complete normally.
type runHandle struct {
	cancelled atomic.Bool
}

// runRegistry tracks active runs by assessment id. It is the sole
// concurrency guard: at most one active run per assessment id.
type runRegistry struct {
	mu   sync.Mutex
	runs map[string]*runHandle
}

func newRunRegistry() *runRegistry {
	return &runRegistry{runs: make(map[string]*runHandle)}
}

// begin registers a run for the assessment. Returns false if a run is
// already active.
func (r *runRegistry) begin(assessmentID string) (*runHandle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.runs[assessmentID]; exists {
		return nil, false
	}
	h := &runHandle{}
	r.runs[assessmentID] = h
	return h, true
}

// end removes the run entry. Called when the run reaches a terminal
// state.
func (r *runRegistry) end(assessmentID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.runs, assessmentID)
}

// cancel flags the run for cooperative cancellation. Returns false if
// no run is active for the assessment.
func (r *runRegistry) cancel(assessmentID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.runs[assessmentID]
	if !ok {
		return false
	}
	h.cancelled.Store(true)
	return true
}

// active reports whether a run is registered for the assessment.
func (r *runRegistry) active(assessmentID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.runs[assessmentID]
	return ok
}
