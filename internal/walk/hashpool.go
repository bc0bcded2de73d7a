package walk

import (
	"os"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// hashPool runs the parallel per-file hashing: each file is opened under
// its resolved reading strategy, streamed into a fresh per-file Hasher, and
// the resulting digests are composed, strictly in ascending sorted-index
// order, into a single composite digest.
type hashPool struct {
	opts      *Options
	progress  *progressSink
	cancelled *atomic.Bool
}

func newHashPool(opts *Options, progress *progressSink, cancelled *atomic.Bool) *hashPool {
	return &hashPool{opts: opts, progress: progress, cancelled: cancelled}
}

// run hashes every path in collected (already sorted by the collector) and
// returns the composite digest.
func (hp *hashPool) run(collected []string) ([]byte, []IgnoredEntry, error) {
	digests := make([][]byte, len(collected))
	var ignoredMu ignoredList

	g := new(errgroup.Group)
	// Bound in-flight tasks to ~2*N to cap memory growth for
	// Complete/MemoryMapped strategies.
	g.SetLimit(2 * hp.opts.Threads())

	var firstErr atomic.Pointer[Error]

	for i, path := range collected {
		i, path := i, path
		g.Go(func() error {
			if hp.cancelled.Load() {
				return ErrCancelled
			}
			digest, werr := hp.hashOne(path)
			if werr != nil {
				if !isTolerable(werr.Kind) || hp.opts.ToleranceLevel() == StopOnErrors {
					firstErr.CompareAndSwap(nil, werr)
					hp.cancelled.Store(true)
					return werr
				}
				if hp.opts.ToleranceLevel() == LogErrors {
					hp.opts.Logger().Warn("tolerated hashing error", "path", werr.Path, "kind", werr.Kind, "error", werr.Err)
				}
				ignoredMu.append(IgnoredEntry{Path: werr.Path, Kind: werr.Kind, Err: werr.Err})
				return nil
			}
			digests[i] = digest
			hp.progress.send(ProgressHashed, i+1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if fe := firstErr.Load(); fe != nil {
			return nil, nil, fe
		}
		if hp.cancelled.Load() && !isToleranceAbort(err) {
			return nil, nil, ErrCancelled
		}
		return nil, nil, err
	}

	composite := hp.opts.hasherFactory.New()
	for i := range collected {
		if digests[i] == nil {
			// A tolerated per-file error leaves no digest; it is excluded
			// from composition entirely (it never joined collected's
			// hashed set).
			continue
		}
		composite.Absorb(digests[i])
	}
	return composite.Finalize(), ignoredMu.items, nil
}

func isToleranceAbort(err error) bool {
	we, ok := err.(*Error)
	return ok && isTolerable(we.Kind)
}

func (hp *hashPool) hashOne(path string) ([]byte, *Error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, newIOError(path, err)
	}

	strategy := Resolve(hp.opts.Strategy(), info.Size())
	reader, err := hp.opts.readerFactory.Open(path, strategy)
	if err != nil {
		return nil, newReaderError(path, err)
	}
	defer reader.Close()

	h := hp.opts.hasherFactory.New()
	for {
		if hp.cancelled.Load() {
			return nil, &Error{Kind: KindCancelled, Path: path}
		}
		chunk, ok, err := reader.NextChunk()
		if err != nil {
			return nil, newReaderError(path, err)
		}
		if !ok {
			break
		}
		h.Absorb(chunk)
	}
	return h.Finalize(), nil
}

// ignoredList is a tiny mutex-protected append buffer, mirroring the
// collector's shared-resource policy: contention is low since the common
// path (no error) never touches it.
type ignoredList struct {
	mu    sync.Mutex
	items []IgnoredEntry
}

func (l *ignoredList) append(e IgnoredEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append(l.items, e)
}
