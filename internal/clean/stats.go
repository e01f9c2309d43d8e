package clean

import (
	"sync"
	"time"
)

// Statistics is a point-in-time copy of a run's counters.
type Statistics struct {
	FilesDeleted       uint64    `json:"files_deleted"`
	BytesFreed         uint64    `json:"bytes_freed"`
	DirectoriesCleaned uint64    `json:"directories_cleaned"`
	Timestamp          time.Time `json:"timestamp"`
}

// Aggregator accumulates Statistics for the active run. All methods are safe
// for concurrent use; readers only ever see whole snapshots.
type Aggregator struct {
	mu    sync.Mutex
	stats Statistics
	now   func() time.Time
}

// NewAggregator returns a zeroed Aggregator stamped with the current time.
func NewAggregator() *Aggregator {
	a := &Aggregator{now: time.Now}
	a.Reset()
	return a
}

// AddFile counts one removed file of size bytes. Count and byte total change
// under the same lock.
func (a *Aggregator) AddFile(size int64) {
	if size < 0 {
		size = 0
	}
	a.mu.Lock()
	a.stats.FilesDeleted++
	a.stats.BytesFreed += uint64(size)
	a.mu.Unlock()
}

// AddDirectory counts one cleaned directory.
func (a *Aggregator) AddDirectory() {
	a.mu.Lock()
	a.stats.DirectoriesCleaned++
	a.mu.Unlock()
}

// Reset zeroes every counter and restamps the timestamp.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	a.stats = Statistics{Timestamp: a.now()}
	a.mu.Unlock()
}

// Snapshot returns a copy of the current counters.
func (a *Aggregator) Snapshot() Statistics {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}
