package walk

import (
	"errors"
	"sync"
	"sync/atomic"
)

// state is the Walker lifecycle state machine:
// Fresh -> Collecting -> Collected -> Hashing -> Hashed -> (back to Hashing).
// cancel() from any state transitions to Cancelled.
type state int

const (
	stateFresh state = iota
	stateCollecting
	stateCollected
	stateHashing
	stateHashed
	stateCancelled
)

// Walker is the run-time orchestrator owning a completed collection plus
// cancellation and progress state. One Walker is created per configured
// run via Options.Walker(); collect() may be called at most once before
// hash(); hash() may be called repeatedly and is pure over the collected
// list.
type Walker struct {
	opts *Options

	mu        sync.Mutex
	st        state
	collected []string
	ignored   []IgnoredEntry

	cancelled atomic.Bool
	progress  *progressSink
}

// NewWalker constructs a fresh Walker bound to an immutable Options
// snapshot. Options.Walker() is the usual entry point; NewWalker is exposed
// for callers that build Options directly.
func NewWalker(opts *Options) *Walker {
	return &Walker{
		opts:     opts,
		st:       stateFresh,
		progress: newProgressSink(opts.ProgressCapacity()),
	}
}

// Walker returns a fresh Walker bound to this Options snapshot.
func (o *Options) Walker() *Walker { return NewWalker(o) }

// Collect runs the collector phase at most once, populating the sorted
// file list. Calling it a second time returns ErrIllegalState.
func (w *Walker) Collect() error {
	w.mu.Lock()
	if w.st == stateCancelled {
		w.mu.Unlock()
		return ErrCancelled
	}
	if w.st != stateFresh {
		w.mu.Unlock()
		return ErrIllegalState
	}
	w.st = stateCollecting
	w.mu.Unlock()

	c := newCollector(w.opts, w.progress, &w.cancelled)
	collected, ignored, err := c.run()

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil && !errors.Is(err, ErrCancelled) {
		w.st = stateFresh
		return err
	}
	if w.cancelled.Load() {
		w.st = stateCancelled
		return ErrCancelled
	}

	if w.opts.DedupeRoots() {
		collected = dedupePaths(collected)
	}

	w.collected = collected
	w.ignored = append(w.ignored, ignored...)
	w.st = stateCollected
	return nil
}

// Hash runs the hashing pool over the already-collected list and returns
// the composite directory digest. It may be called repeatedly; each call
// re-reads file contents and is pure over w.collected (idempotent absent
// external filesystem mutation between calls).
func (w *Walker) Hash() ([]byte, error) {
	w.mu.Lock()
	if w.st == stateCancelled {
		w.mu.Unlock()
		return nil, ErrCancelled
	}
	if w.st != stateCollected && w.st != stateHashed {
		w.mu.Unlock()
		return nil, ErrIllegalState
	}
	collected := w.collected
	w.st = stateHashing
	w.mu.Unlock()

	hp := newHashPool(w.opts, w.progress, &w.cancelled)
	digest, ignored, err := hp.run(collected)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil && !errors.Is(err, ErrCancelled) {
		w.st = stateCollected
		return nil, err
	}
	if w.cancelled.Load() {
		w.st = stateCancelled
		return nil, ErrCancelled
	}
	w.ignored = append(w.ignored, ignored...)
	w.st = stateHashed
	return digest, nil
}

// Cancel is idempotent and sets the cancellation flag visible to all
// in-flight workers. Any pending Collect/Hash call returns ErrCancelled
// within bounded time (roughly one chunk read or one directory
// enumeration). It never blocks.
func (w *Walker) Cancel() {
	w.cancelled.Store(true)
}

// Cancelled reports whether cancellation has been requested.
func (w *Walker) Cancelled() bool { return w.cancelled.Load() }

// Progress returns a receiving handle to the bounded progress channel, or
// nil if progress was disabled (capacity 0).
func (w *Walker) Progress() <-chan ProgressEvent {
	return w.progress.receiver()
}

// Ignored returns the accumulated (path, error) list after Collect and/or
// Hash. There is no ordering guarantee: it reflects the race of errors
// across threads.
func (w *Walker) Ignored() []IgnoredEntry {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]IgnoredEntry, len(w.ignored))
	copy(out, w.ignored)
	return out
}

// Collected returns the sorted file list produced by Collect.
func (w *Walker) Collected() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, len(w.collected))
	copy(out, w.collected)
	return out
}

// dedupePaths removes duplicate entries from an already-sorted slice,
// implementing optional overlapping-roots deduplication.
func dedupePaths(sorted []string) []string {
	if len(sorted) < 2 {
		return sorted
	}
	out := sorted[:1]
	for _, p := range sorted[1:] {
		if p != out[len(out)-1] {
			out = append(out, p)
		}
	}
	return out
}
