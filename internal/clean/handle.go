package clean

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// OperationResult is what one operation contributed to a run.
type OperationResult struct {
	ID    string `json:"id"`
	Files uint64 `json:"files"`
	Bytes uint64 `json:"bytes"`
}

// RunHandle correlates one background run with its completion and abort
// signals. The completion flag is written once, by the worker.
type RunHandle struct {
	ID         uuid.UUID
	Mode       Mode
	Operations []string
	StartedAt  time.Time

	cancel   context.CancelFunc
	done     atomic.Bool
	aborted  atomic.Bool
	finished chan struct{}

	mu      sync.Mutex
	results []OperationResult
	endedAt time.Time
}

func newRunHandle(mode Mode, ids []string, cancel context.CancelFunc) *RunHandle {
	return &RunHandle{
		ID:         uuid.New(),
		Mode:       mode,
		Operations: ids,
		StartedAt:  time.Now(),
		cancel:     cancel,
		finished:   make(chan struct{}),
	}
}

// Done reports whether the worker has finished. Safe to poll at any time.
func (h *RunHandle) Done() bool {
	return h.done.Load()
}

// Finished is closed when the worker finishes.
func (h *RunHandle) Finished() <-chan struct{} {
	return h.finished
}

// Wait blocks until the worker finishes.
func (h *RunHandle) Wait() {
	<-h.finished
}

// Abort records abort intent and cancels the run. The worker stops at its
// next checkpoint: before the next file or before the next operation.
func (h *RunHandle) Abort() {
	h.aborted.Store(true)
	h.cancel()
}

// AbortRequested reports whether Abort was called.
func (h *RunHandle) AbortRequested() bool {
	return h.aborted.Load()
}

// Progress returns how many operations have completed out of the total.
func (h *RunHandle) Progress() (completed, total int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.results), len(h.Operations)
}

// Results returns per-operation totals recorded so far.
func (h *RunHandle) Results() []OperationResult {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]OperationResult(nil), h.results...)
}

// Elapsed returns the run duration, or the time since start while running.
func (h *RunHandle) Elapsed() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.endedAt.IsZero() {
		return time.Since(h.StartedAt)
	}
	return h.endedAt.Sub(h.StartedAt)
}

func (h *RunHandle) record(r OperationResult) {
	h.mu.Lock()
	h.results = append(h.results, r)
	h.mu.Unlock()
}

func (h *RunHandle) finish() {
	h.mu.Lock()
	h.endedAt = time.Now()
	h.mu.Unlock()

	h.done.Store(true)
	h.cancel()
	close(h.finished)
}
