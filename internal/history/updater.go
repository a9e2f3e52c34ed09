package history

import (
	"log/slog"
	"time"

	"statsdash/internal/stats"
)

// Updater runs the background collection loop: it samples at a fixed
// cadence, buffers raw snapshots, and every batchSize samples reduces
// the batch to one consolidated record that is persisted and committed
// to the shared history. Between consolidations the latest raw sample
// is published as the live most-recent entry.
type Updater struct {
	sampler        stats.Sampler
	history        *Handle
	store          *Store // nil disables persistence
	sampleDuration time.Duration
	interval       time.Duration
	batchSize      int

	batch []stats.Snapshot
	stop  chan struct{}
	done  chan struct{}
}

// NewUpdater wires a collection loop. sampleDuration must be shorter
// than interval and batchSize positive; both are enforced by config
// validation at startup. A nil store disables persistence.
func NewUpdater(sampler stats.Sampler, history *Handle, store *Store, sampleDuration, interval time.Duration, batchSize int) *Updater {
	return &Updater{
		sampler:        sampler,
		history:        history,
		store:          store,
		sampleDuration: sampleDuration,
		interval:       interval,
		batchSize:      batchSize,
		batch:          make([]stats.Snapshot, 0, batchSize),
		stop:           make(chan struct{}),
		done:           make(chan struct{}),
	}
}

// Start launches the collection loop in a background goroutine.
func (u *Updater) Start() {
	go u.loop()
	slog.Info("Stats updater started",
		"interval", u.interval,
		"sample_duration", u.sampleDuration,
		"batch_size", u.batchSize,
		"persistence", u.store != nil,
	)
}

// Stop terminates the loop and waits for the current cycle to finish.
func (u *Updater) Stop() {
	close(u.stop)
	<-u.done
	slog.Info("Stats updater stopped")
}

func (u *Updater) loop() {
	defer close(u.done)

	// First reading before the first tick so the dashboard has data
	// immediately.
	u.collectOnce()

	ticker := time.NewTicker(u.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			u.collectOnce()
		case <-u.stop:
			return
		}
	}
}

// collectOnce runs one collection cycle. Sampling and persistence both
// happen outside the history lock; only the in-memory commit or
// replacement is done under it.
func (u *Updater) collectOnce() {
	snapshot := u.sampler.Sample(u.sampleDuration)
	u.batch = append(u.batch, snapshot)

	if len(u.batch) < u.batchSize {
		u.history.ReplaceMostRecent(snapshot)
		return
	}

	consolidated := stats.Consolidate(u.batch)

	if u.store != nil {
		if err := u.store.Append(consolidated); err != nil {
			// Persistence is best effort; the in-memory history moves on.
			slog.Error("Persisting stats history failed", "dir", u.store.Dir(), "error", err)
		}
	}

	// The averaged record takes over the slot the live readings were
	// cycling through, turning it into the committed history entry;
	// the raw sample just taken then becomes the new live entry.
	u.history.ReplaceMostRecent(consolidated)
	u.history.Commit(snapshot)
	u.batch = u.batch[:0]
}
