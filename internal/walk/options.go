package walk

import (
	"fmt"
	"log/slog"
	"runtime"
)

// Tolerance controls how per-file errors affect a run.
type Tolerance int

const (
	// LogErrors skips the offending file, appends it to ignored, and logs
	// at warn level.
	LogErrors Tolerance = iota
	// DoNotLogErrors behaves like LogErrors without emitting a log record.
	DoNotLogErrors
	// StopOnErrors aborts the run on the first tolerable error, setting
	// cancellation and surfacing that error.
	StopOnErrors
)

// Options is an immutable configuration snapshot handed to a Walker. It is
// produced by OptionsBuilder.Build and never mutated afterward.
type Options struct {
	entries         []*Entry
	includes        []*Filter
	excludes        []*Filter
	strategy        ReadingStrategy
	threads         int
	progressCap     int
	tolerance       Tolerance
	hasherFactory   HasherFactory
	readerFactory   ReaderFactory
	dedupeRoots     bool
	logger          *slog.Logger
}

// Entries returns the configured entries in builder order.
func (o *Options) Entries() []*Entry { return o.entries }

// GlobalIncludes returns the global include filters (OR-combined with each
// Entry's own).
func (o *Options) GlobalIncludes() []*Filter { return o.includes }

// GlobalExcludes returns the global exclude filters (OR-combined with each
// Entry's own).
func (o *Options) GlobalExcludes() []*Filter { return o.excludes }

// Strategy returns the configured reading strategy (possibly a Scenario).
func (o *Options) Strategy() ReadingStrategy { return o.strategy }

// Threads returns the configured worker count (always >= 1).
func (o *Options) Threads() int { return o.threads }

// ProgressCapacity returns the configured progress channel capacity (0
// disables progress).
func (o *Options) ProgressCapacity() int { return o.progressCap }

// ToleranceLevel returns the configured error tolerance policy.
func (o *Options) ToleranceLevel() Tolerance { return o.tolerance }

// DedupeRoots reports whether overlapping Entry roots should be deduplicated
// by canonical path after collection (off by default).
func (o *Options) DedupeRoots() bool { return o.dedupeRoots }

// Logger returns the structured logger bound to this run.
func (o *Options) Logger() *slog.Logger { return o.logger }

// OptionsBuilder is the fluent configuration surface that collects entries
// and global settings, validates them, and hands off an immutable Options
// snapshot to a new Walker.
type OptionsBuilder struct {
	entries       []*Entry
	includes      []*Filter
	excludes      []*Filter
	strategy      ReadingStrategy
	threads       int
	progressCap   int
	tolerance     Tolerance
	hasherFactory HasherFactory
	readerFactory ReaderFactory
	dedupeRoots   bool
	logger        *slog.Logger
	err           error
}

// NewOptionsBuilder starts a builder with sensible defaults: hardware
// concurrency thread count, Buffer reading strategy, LogErrors tolerance,
// progress disabled.
func NewOptionsBuilder() *OptionsBuilder {
	return &OptionsBuilder{
		strategy:  Buffer(),
		threads:   runtime.NumCPU(),
		tolerance: LogErrors,
		logger:    slog.Default().With("component", "walk"),
	}
}

// Entry adds a root to walk. At least one Entry (or equivalent) is required
// before Build.
func (b *OptionsBuilder) Entry(e *Entry) *OptionsBuilder {
	b.entries = append(b.entries, e)
	return b
}

// Path is shorthand for Entry(NewEntry(root, opts...)); a construction
// failure is deferred and surfaced from Build.
func (b *OptionsBuilder) Path(root string, opts ...EntryOption) *OptionsBuilder {
	e, err := NewEntry(root, opts...)
	if err != nil {
		b.err = err
		return b
	}
	return b.Entry(e)
}

// Include adds a global include Filter (OR-combined with each Entry's own).
func (b *OptionsBuilder) Include(f *Filter) *OptionsBuilder {
	b.includes = append(b.includes, f)
	return b
}

// Exclude adds a global exclude Filter (OR-combined with each Entry's own).
func (b *OptionsBuilder) Exclude(f *Filter) *OptionsBuilder {
	b.excludes = append(b.excludes, f)
	return b
}

// Strategy sets the reading strategy (default or Scenario mapping).
func (b *OptionsBuilder) Strategy(s ReadingStrategy) *OptionsBuilder {
	b.strategy = s
	return b
}

// Threads sets the worker count. Must be >= 1; Build rejects otherwise.
func (b *OptionsBuilder) Threads(n int) *OptionsBuilder {
	b.threads = n
	return b
}

// Progress sets the progress channel capacity; 0 disables progress.
func (b *OptionsBuilder) Progress(capacity int) *OptionsBuilder {
	b.progressCap = capacity
	return b
}

// ToleranceLevel sets the error tolerance policy.
func (b *OptionsBuilder) ToleranceLevel(t Tolerance) *OptionsBuilder {
	b.tolerance = t
	return b
}

// Hasher sets the HasherFactory used for both per-file and composite
// digests. Required before Build.
func (b *OptionsBuilder) Hasher(f HasherFactory) *OptionsBuilder {
	b.hasherFactory = f
	return b
}

// ReaderFactory sets the ReaderFactory used to open files under the
// resolved strategy. Required before Build.
func (b *OptionsBuilder) ReaderFactory(f ReaderFactory) *OptionsBuilder {
	b.readerFactory = f
	return b
}

// DeduplicateRoots opts into canonical-path deduplication of the collected
// list when Entry roots overlap (off by default).
func (b *OptionsBuilder) DeduplicateRoots(on bool) *OptionsBuilder {
	b.dedupeRoots = on
	return b
}

// Logger overrides the default logger bound to the produced Walker.
func (b *OptionsBuilder) Logger(l *slog.Logger) *OptionsBuilder {
	b.logger = l
	return b
}

// Build validates the accumulated configuration and returns an immutable
// Options snapshot, or a configuration error. Configuration errors are
// never tolerance-filtered.
func (b *OptionsBuilder) Build() (*Options, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.entries) == 0 {
		return nil, fmt.Errorf("walk: at least one entry is required: %w", ErrInvalidEntry)
	}
	if b.threads < 1 {
		return nil, fmt.Errorf("walk: threads must be >= 1, got %d", b.threads)
	}
	if err := validateStrategy(b.strategy); err != nil {
		return nil, err
	}
	if b.hasherFactory == nil {
		return nil, fmt.Errorf("walk: a HasherFactory is required")
	}
	if b.readerFactory == nil {
		return nil, fmt.Errorf("walk: a ReaderFactory is required")
	}

	entries := make([]*Entry, len(b.entries))
	copy(entries, b.entries)
	includes := make([]*Filter, len(b.includes))
	copy(includes, b.includes)
	excludes := make([]*Filter, len(b.excludes))
	copy(excludes, b.excludes)

	logger := b.logger
	if logger == nil {
		logger = slog.Default().With("component", "walk")
	}

	return &Options{
		entries:       entries,
		includes:      includes,
		excludes:      excludes,
		strategy:      b.strategy,
		threads:       b.threads,
		progressCap:   b.progressCap,
		tolerance:     b.tolerance,
		hasherFactory: b.hasherFactory,
		readerFactory: b.readerFactory,
		dedupeRoots:   b.dedupeRoots,
		logger:        logger,
	}, nil
}
