// Package history holds the metrics retention engine: a fixed-capacity
// ring of snapshots, the size-bounded on-disk log, and the background
// updater that feeds both.
package history

import (
	"iter"

	"statsdash/internal/stats"
)

// Ring is a fixed-capacity circular history of snapshots. When full,
// committing a new snapshot overwrites the chronologically oldest entry.
// Ring is not safe for concurrent use; Handle provides the locked view
// shared between the updater and request handlers.
type Ring struct {
	maxSize    int
	entries    []stats.Snapshot
	mostRecent int
}

// NewRing creates an empty ring holding at most maxSize entries.
// maxSize must be positive; config validation rejects zero before a
// ring is ever constructed.
func NewRing(maxSize int) *Ring {
	if maxSize < 1 {
		panic("history: ring capacity must be positive")
	}
	return &Ring{
		maxSize: maxSize,
		entries: make([]stats.Snapshot, 0, maxSize),
	}
}

// RingFromSnapshots builds a ring over an already-ordered sequence,
// with capacity equal to the sequence length rather than any configured
// size. This is the reload path for the historical view, which should
// show everything the log held; the live ring never goes through here.
func RingFromSnapshots(entries []stats.Snapshot) *Ring {
	if len(entries) == 0 {
		return NewRing(1)
	}
	return &Ring{
		maxSize:    len(entries),
		entries:    entries,
		mostRecent: len(entries) - 1,
	}
}

// Push commits a snapshot. While the ring is below capacity the entry
// is appended; at capacity the oldest entry is overwritten in place.
func (r *Ring) Push(snapshot stats.Snapshot) {
	if len(r.entries) == r.maxSize {
		r.mostRecent = indexAfter(r.mostRecent, r.maxSize)
		r.entries[r.mostRecent] = snapshot
		return
	}
	r.entries = append(r.entries, snapshot)
	r.mostRecent = len(r.entries) - 1
}

// ReplaceMostRecent overwrites the most recently added entry without
// growing the ring, so a live not-yet-committed reading can be shown
// between consolidation boundaries. On an empty ring it behaves as Push.
func (r *Ring) ReplaceMostRecent(snapshot stats.Snapshot) {
	if len(r.entries) == 0 {
		r.Push(snapshot)
		return
	}
	r.entries[r.mostRecent] = snapshot
}

// MostRecent returns the latest entry, or false if the ring is empty.
func (r *Ring) MostRecent() (stats.Snapshot, bool) {
	if len(r.entries) == 0 {
		return stats.Snapshot{}, false
	}
	return r.entries[r.mostRecent], true
}

// Len returns the number of entries currently held.
func (r *Ring) Len() int { return len(r.entries) }

// Cap returns the maximum number of entries the ring can hold.
func (r *Ring) Cap() int { return r.maxSize }

// All returns a fresh chronological traversal, oldest entry first and
// the most recent entry last. Each call restarts from the oldest entry.
func (r *Ring) All() iter.Seq[*stats.Snapshot] {
	return func(yield func(*stats.Snapshot) bool) {
		if len(r.entries) == 0 {
			return
		}
		// A full ring's oldest entry sits just past the most recent
		// one in circular order; otherwise the slice is in commit order.
		index := 0
		if len(r.entries) == r.maxSize {
			index = indexAfter(r.mostRecent, r.maxSize)
		}
		for range r.entries {
			if !yield(&r.entries[index]) {
				return
			}
			index = indexAfter(index, r.maxSize)
		}
	}
}

// indexAfter returns the circular successor of i in a ring of maxSize.
func indexAfter(i, maxSize int) int {
	return (i + 1) % maxSize
}
