package walk

import (
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// FilterKind selects which part of a path a Filter's glob is matched
// against.
type FilterKind int

const (
	// FilterFolders matches a glob against any directory component's
	// basename along the path.
	FilterFolders FilterKind = iota
	// FilterFiles matches a glob against the file's basename. Never
	// matches directories.
	FilterFiles
	// FilterCommon matches a glob against the full path.
	FilterCommon
)

// Filter is a basename- or path-scoped include/exclude rule. The glob is
// compiled at construction so syntax errors surface immediately rather than
// at traversal time.
type Filter struct {
	kind    FilterKind
	pattern string
}

// NewFolderFilter builds a Filter matched against directory basenames.
func NewFolderFilter(glob string) (*Filter, error) { return newFilter(FilterFolders, glob) }

// NewFileFilter builds a Filter matched against file basenames.
func NewFileFilter(glob string) (*Filter, error) { return newFilter(FilterFiles, glob) }

// NewCommonFilter builds a Filter matched against the full path.
func NewCommonFilter(glob string) (*Filter, error) { return newFilter(FilterCommon, glob) }

func newFilter(kind FilterKind, glob string) (*Filter, error) {
	if _, err := doublestar.Match(glob, "probe"); err != nil {
		return nil, newInvalidPattern(glob, err)
	}
	return &Filter{kind: kind, pattern: glob}, nil
}

// matches evaluates this filter against a candidate absolute path, given its
// basename and whether it is a directory.
func (f *Filter) matches(fullPath, base string, isDirectory bool) bool {
	switch f.kind {
	case FilterFiles:
		if isDirectory {
			return false
		}
		ok, _ := doublestar.Match(f.pattern, base)
		return ok
	case FilterFolders:
		if isDirectory {
			ok, _ := doublestar.Match(f.pattern, base)
			return ok
		}
		return matchesAncestorDir(f.pattern, fullPath)
	case FilterCommon:
		ok, _ := doublestar.Match(f.pattern, filepath.ToSlash(fullPath))
		return ok
	default:
		return false
	}
}

// matchesAncestorDir checks whether any directory component's basename along
// fullPath (excluding the final file component) matches pattern.
func matchesAncestorDir(pattern, fullPath string) bool {
	dir := filepath.Dir(fullPath)
	for {
		base := filepath.Base(dir)
		if ok, _ := doublestar.Match(pattern, base); ok {
			return true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return false
		}
		dir = parent
	}
}

// PatternKind tags a PatternFilter variant.
type PatternKind int

const (
	PatternAccept PatternKind = iota
	PatternIgnore
	PatternCmb
)

// PatternFilter is a full-path accept/ignore rule, AND-combinable via Cmb.
// Cmb may not nest another Cmb; NewCmb enforces this at construction.
type PatternFilter struct {
	kind    PatternKind
	pattern string          // set for Accept/Ignore
	group   []PatternFilter // set for Cmb; each member is non-Cmb
}

// NewAcceptPattern builds a top-level Accept pattern filter.
func NewAcceptPattern(glob string) (PatternFilter, error) {
	return newLeafPattern(PatternAccept, glob)
}

// NewIgnorePattern builds a top-level Ignore pattern filter.
func NewIgnorePattern(glob string) (PatternFilter, error) {
	return newLeafPattern(PatternIgnore, glob)
}

func newLeafPattern(kind PatternKind, glob string) (PatternFilter, error) {
	if _, err := doublestar.Match(glob, "probe"); err != nil {
		return PatternFilter{}, newInvalidPattern(glob, err)
	}
	return PatternFilter{kind: kind, pattern: glob}, nil
}

// NewCmb builds an AND-combined group of non-Cmb pattern filters. Passing a
// member whose kind is PatternCmb fails with ErrInvalidNesting.
func NewCmb(members ...PatternFilter) (PatternFilter, error) {
	for _, m := range members {
		if m.kind == PatternCmb {
			return PatternFilter{}, ErrInvalidNesting
		}
	}
	group := make([]PatternFilter, len(members))
	copy(group, members)
	return PatternFilter{kind: PatternCmb, group: group}, nil
}

func (p PatternFilter) matchesPath(fullPath string) bool {
	ok, _ := doublestar.Match(p.pattern, filepath.ToSlash(fullPath))
	return ok
}

// cmbSatisfied reports whether every Accept member matches and no Ignore
// member matches (AND-combination of the group's members).
func (p PatternFilter) cmbSatisfied(fullPath string) bool {
	for _, m := range p.group {
		switch m.kind {
		case PatternAccept:
			if !m.matchesPath(fullPath) {
				return false
			}
		case PatternIgnore:
			if m.matchesPath(fullPath) {
				return false
			}
		}
	}
	return true
}

// evaluatePatterns evaluates a list of PatternFilters over a path: ignored
// beats accepted; pattern mode is allow-list (default reject).
func evaluatePatterns(patterns []PatternFilter, fullPath string) bool {
	ignored := false
	accepted := false

	for _, p := range patterns {
		switch p.kind {
		case PatternIgnore:
			if p.matchesPath(fullPath) {
				ignored = true
			}
		case PatternAccept:
			if p.matchesPath(fullPath) {
				accepted = true
			}
		case PatternCmb:
			if p.cmbSatisfied(fullPath) {
				accepted = true
			} else {
				// A Cmb group with at least one Ignore member that matched
				// counts as "unsatisfied"; an unmatched Accept inside an
				// otherwise clean group is simply not-satisfied (neither
				// accept nor ignore on its own), so only flag "ignored" when
				// an Ignore member inside the group actually fired.
				for _, m := range p.group {
					if m.kind == PatternIgnore && m.matchesPath(fullPath) {
						ignored = true
					}
				}
			}
		}
	}

	if ignored {
		return false
	}
	return accepted
}

// unionFilters returns the union of two Filter slices, used to combine
// global and per-Entry includes/excludes without mutating either input.
func unionFilters(a, b []*Filter) []*Filter {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}
	out := make([]*Filter, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}

// Accepts implements the filter engine (C1): the single evaluation entry
// point for a candidate path of Entry e, given the global includes/excludes
// bound on Options.
func Accepts(e *Entry, globalIncludes, globalExcludes []*Filter, absolutePath string, isDirectory bool) bool {
	base := filepath.Base(absolutePath)

	// Step 2: pattern mode takes over entirely when non-empty.
	if len(e.patterns) > 0 {
		return evaluatePatterns(e.patterns, absolutePath)
	}

	excludes := unionFilters(e.excludes, globalExcludes)
	includes := unionFilters(e.includes, globalIncludes)

	if isDirectory {
		for _, f := range excludes {
			if f.kind == FilterFiles {
				continue
			}
			if f.matches(absolutePath, base, true) {
				return false
			}
		}
		return true
	}

	for _, f := range excludes {
		if f.matches(absolutePath, base, false) {
			return false
		}
	}

	if len(includes) == 0 {
		return true
	}
	for _, f := range includes {
		if f.matches(absolutePath, base, false) {
			return true
		}
	}
	return false
}

// stripCwdPrefix is a small helper used by callers that print paths relative
// to the working directory; kept here since it is glob-path adjacent.
func stripCwdPrefix(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}
