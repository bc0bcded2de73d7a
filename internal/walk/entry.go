package walk

import (
	"os"
	"path/filepath"
)

// Entry is a root path plus its locally-bound filters/patterns. Entries are
// immutable once constructed; Options never mutates one after it has been
// added to a builder.
type Entry struct {
	root     string
	includes []*Filter
	excludes []*Filter
	patterns []PatternFilter
}

// EntryOption configures an Entry at construction time.
type EntryOption func(*Entry)

// WithInclude adds an include Filter local to this Entry.
func WithInclude(f *Filter) EntryOption {
	return func(e *Entry) { e.includes = append(e.includes, f) }
}

// WithExclude adds an exclude Filter local to this Entry.
func WithExclude(f *Filter) EntryOption {
	return func(e *Entry) { e.excludes = append(e.excludes, f) }
}

// WithPattern adds a PatternFilter local to this Entry. If any pattern is
// present, includes/excludes are ignored for this Entry.
func WithPattern(p PatternFilter) EntryOption {
	return func(e *Entry) { e.patterns = append(e.patterns, p) }
}

// NewEntry canonicalizes root, verifies it exists and is a directory, and
// applies the given options. It fails with ErrInvalidEntry otherwise.
func NewEntry(root string, opts ...EntryOption) (*Entry, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, newInvalidEntry(root, err)
	}
	abs, err = filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, newInvalidEntry(root, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, newInvalidEntry(abs, err)
	}
	if !info.IsDir() {
		return nil, newInvalidEntry(abs, os.ErrInvalid)
	}

	e := &Entry{root: abs}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Root returns the canonicalized absolute root path.
func (e *Entry) Root() string { return e.root }
