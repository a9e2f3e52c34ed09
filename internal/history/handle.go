package history

import (
	"sync"

	"statsdash/internal/stats"
)

// Handle is the shared, mutex-guarded ring that the updater mutates and
// request handlers read. All methods copy data in or out under the
// lock, so no caller ever holds it across sampling, disk I/O, or
// response rendering.
type Handle struct {
	mu   sync.Mutex
	ring *Ring
}

// NewHandle creates a handle around an empty ring of the given capacity.
func NewHandle(capacity int) *Handle {
	return &Handle{ring: NewRing(capacity)}
}

// Commit adds a snapshot to the history, evicting the oldest entry if
// the ring is full.
func (h *Handle) Commit(snapshot stats.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ring.Push(snapshot)
}

// ReplaceMostRecent overwrites the latest entry with a live reading.
func (h *Handle) ReplaceMostRecent(snapshot stats.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ring.ReplaceMostRecent(snapshot)
}

// MostRecent returns a copy of the latest entry, or false if no
// snapshot has been recorded yet.
func (h *Handle) MostRecent() (stats.Snapshot, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ring.MostRecent()
}

// Snapshots returns a chronological (oldest first) copy of the ring.
func (h *Handle) Snapshots() []stats.Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	snapshots := make([]stats.Snapshot, 0, h.ring.Len())
	for snapshot := range h.ring.All() {
		snapshots = append(snapshots, *snapshot)
	}
	return snapshots
}

// Len returns the number of entries currently in the history.
func (h *Handle) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ring.Len()
}
