package walk

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
)

// dirTask is one unit of work on the directory queue: a directory to
// enumerate, carrying the Entry context it was discovered under.
type dirTask struct {
	path  string
	entry *Entry
}

// collector runs the parallel recursive traversal, producing the
// deterministic, filtered list of absolute file paths to hash.
type collector struct {
	opts      *Options
	progress  *progressSink
	cancelled *atomic.Bool

	mu        sync.Mutex
	collected []string
	ignored   []IgnoredEntry

	queue  chan dirTask
	active atomic.Int64 // number of in-flight tasks (queued + being processed)

	firstErr atomic.Pointer[Error]
}

func newCollector(opts *Options, progress *progressSink, cancelled *atomic.Bool) *collector {
	// Queue capacity is generous but bounded: directories fan out quickly,
	// so size it to comfortably hold one batch of children per worker.
	return &collector{
		opts:      opts,
		progress:  progress,
		cancelled: cancelled,
		queue:     make(chan dirTask, 4096*opts.Threads()),
	}
}

// run seeds the queue with each Entry root, spawns N workers, and blocks
// until the queue is empty and no worker is active. It returns the sorted
// collected list, or a *Error if StopOnErrors tolerance aborted the run or
// cancellation was observed.
func (c *collector) run() ([]string, []IgnoredEntry, error) {
	for _, e := range c.opts.Entries() {
		c.submit(dirTask{path: e.Root(), entry: e})
	}

	var wg sync.WaitGroup
	n := c.opts.Threads()
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			c.worker()
		}()
	}
	wg.Wait()
	close(c.queue)

	if fe := c.firstErr.Load(); fe != nil {
		return nil, nil, fe
	}
	if c.cancelled.Load() {
		return nil, nil, ErrCancelled
	}

	sort.Strings(c.collected)
	return c.collected, c.ignored, nil
}

// submit pushes a task onto the queue, counting it as active before it is
// visible to a worker so quiescence detection never races a task in flight
// between "popped" and "children pushed".
func (c *collector) submit(t dirTask) {
	c.active.Add(1)
	c.queue <- t
}

func (c *collector) worker() {
	for {
		select {
		case task, ok := <-c.queue:
			if !ok {
				return
			}
			c.process(task)
			remaining := c.active.Add(-1)
			if remaining == 0 {
				// No more in-flight work: close is handled by run() once
				// every worker observes this; signal by draining further
				// pops as closed. We approximate quiescence by checking
				// again after a non-blocking drain attempt below.
				if c.drainIfEmpty() {
					return
				}
			}
		default:
			if c.active.Load() == 0 {
				return
			}
			runtime.Gosched()
		}
	}
}

// drainIfEmpty reports whether the queue is currently empty and no task is
// active, in which case this worker (and its siblings) should exit.
func (c *collector) drainIfEmpty() bool {
	return c.active.Load() == 0 && len(c.queue) == 0
}

func (c *collector) process(task dirTask) {
	if c.cancelled.Load() {
		return
	}

	entries, err := os.ReadDir(task.path)
	if err != nil {
		c.reportError(newIOError(task.path, err))
		return
	}

	for _, d := range entries {
		if c.cancelled.Load() {
			return
		}

		childPath := filepath.Join(task.path, d.Name())
		isDir, symlinkToDir, err := classifyEntry(d, childPath)
		if err != nil {
			c.reportError(newIOError(childPath, err))
			continue
		}

		// Symlinks to directories are not descended into, to avoid cycles,
		// and are not hashed as files either.
		if symlinkToDir {
			continue
		}

		if isDir {
			if !Accepts(task.entry, c.opts.GlobalIncludes(), c.opts.GlobalExcludes(), childPath, true) {
				continue
			}
			c.submit(dirTask{path: childPath, entry: task.entry})
			continue
		}

		if !Accepts(task.entry, c.opts.GlobalIncludes(), c.opts.GlobalExcludes(), childPath, false) {
			continue
		}

		c.mu.Lock()
		c.collected = append(c.collected, childPath)
		c.mu.Unlock()
	}

	c.progress.send(ProgressCollected, c.countCollected())
}

// classifyEntry reports whether d is a directory and whether it is a
// symlink that resolves to one. fs.DirEntry.IsDir reflects the entry's own
// Lstat-derived type, so a symlink pointing at a directory always reports
// false; the target is resolved explicitly here instead.
func classifyEntry(d os.DirEntry, path string) (isDir bool, symlinkToDir bool, err error) {
	if d.Type()&os.ModeSymlink == 0 {
		return d.IsDir(), false, nil
	}
	target, err := os.Stat(path)
	if err != nil {
		return false, false, err
	}
	return false, target.IsDir(), nil
}

func (c *collector) countCollected() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.collected)
}

// reportError applies tolerance policy to a traversal error: StopOnErrors
// aborts the run (sets cancellation, records the first error); LogErrors /
// DoNotLogErrors record it in ignored and continue.
func (c *collector) reportError(werr *Error) {
	if !isTolerable(werr.Kind) {
		c.firstErr.CompareAndSwap(nil, werr)
		c.cancelled.Store(true)
		return
	}

	switch c.opts.ToleranceLevel() {
	case StopOnErrors:
		c.firstErr.CompareAndSwap(nil, werr)
		c.cancelled.Store(true)
	case LogErrors:
		c.opts.Logger().Warn("tolerated traversal error", "path", werr.Path, "kind", werr.Kind, "error", werr.Err)
		c.appendIgnored(werr)
	case DoNotLogErrors:
		c.appendIgnored(werr)
	}
}

func (c *collector) appendIgnored(werr *Error) {
	c.mu.Lock()
	c.ignored = append(c.ignored, IgnoredEntry{Path: werr.Path, Kind: werr.Kind, Err: werr.Err})
	c.mu.Unlock()
}
