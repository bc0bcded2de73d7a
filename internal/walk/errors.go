// Package walk implements the parallel collect-then-hash directory hashing
// pipeline: filtering, entry/options configuration, reading-strategy
// dispatch, and the collector and hashing pool that produce a deterministic
// composite digest of one or more directory trees.
package walk

import (
	"errors"
	"fmt"
)

// ErrorKind classifies the failures the walk package can produce. Values are
// compared with errors.Is against the sentinel Err* variables below.
type ErrorKind string

const (
	KindInvalidPattern    ErrorKind = "invalid_pattern"
	KindInvalidNesting    ErrorKind = "invalid_nesting"
	KindInvalidStrategy   ErrorKind = "invalid_strategy"
	KindInvalidEntry      ErrorKind = "invalid_entry"
	KindIO                ErrorKind = "io"
	KindReader            ErrorKind = "reader"
	KindHasher            ErrorKind = "hasher"
	KindUnsupportedReader ErrorKind = "unsupported_strategy"
	KindCancelled         ErrorKind = "cancelled"
	KindIllegalState      ErrorKind = "illegal_state"
)

// Sentinel errors for errors.Is comparisons. (*Error).Is compares by Kind, so
// any *Error of a sentinel's Kind matches it. The per-file kinds (Io, Reader,
// Hasher) have no sentinel; inspect them with errors.As and Error.Kind.
var (
	ErrInvalidPattern    = &Error{Kind: KindInvalidPattern, msg: "invalid glob pattern"}
	ErrInvalidNesting    = &Error{Kind: KindInvalidNesting, msg: "Cmb may not nest another Cmb"}
	ErrInvalidStrategy   = &Error{Kind: KindInvalidStrategy, msg: "Scenario may not nest another Scenario"}
	ErrInvalidEntry      = &Error{Kind: KindInvalidEntry, msg: "entry root does not exist or is not a directory"}
	ErrUnsupportedReader = &Error{Kind: KindUnsupportedReader, msg: "reader cannot honor the resolved strategy"}
	ErrCancelled         = &Error{Kind: KindCancelled, msg: "cancelled"}
	ErrIllegalState      = &Error{Kind: KindIllegalState, msg: "illegal walker state transition"}
)

// Error is the structured error type returned by the walk package. Path is
// the offending file for per-file errors (Io, Reader, Hasher), the pattern for
// invalid-pattern errors and the root for invalid-entry errors; it is empty
// for the sentinel values.
type Error struct {
	Kind ErrorKind
	Path string
	Err  error
	msg  string
}

func (e *Error) Error() string {
	base := e.msg
	if base == "" {
		base = string(e.Kind)
	}
	switch {
	case e.Path != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", base, e.Path, e.Err)
	case e.Path != "":
		return fmt.Sprintf("%s: %s", base, e.Path)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", base, e.Err)
	default:
		return base
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports equality by Kind, which is what makes errors.Is(err,
// ErrCancelled) etc. work regardless of Path/Err payload.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newIOError(path string, err error) *Error {
	return &Error{Kind: KindIO, Path: path, Err: err, msg: "i/o error"}
}

func newReaderError(path string, err error) *Error {
	return &Error{Kind: KindReader, Path: path, Err: err, msg: "reader error"}
}

func newHasherError(path string, err error) *Error {
	return &Error{Kind: KindHasher, Path: path, Err: err, msg: "hasher error"}
}

func newInvalidPattern(pattern string, err error) *Error {
	return &Error{Kind: KindInvalidPattern, Path: pattern, Err: err, msg: "invalid glob pattern"}
}

func newInvalidEntry(root string, err error) *Error {
	return &Error{Kind: KindInvalidEntry, Path: root, Err: err, msg: "invalid entry root"}
}

// IgnoredEntry records a single tolerated failure: the path that was skipped
// and the classification of why.
type IgnoredEntry struct {
	Path string
	Kind ErrorKind
	Err  error
}

// isTolerable reports whether kind is one of the per-file error classes that
// Tolerance policy governs (Io, Reader, Hasher). Cancelled and configuration
// errors are never tolerance-filtered.
func isTolerable(kind ErrorKind) bool {
	switch kind {
	case KindIO, KindReader, KindHasher:
		return true
	default:
		return false
	}
}

// asWalkError unwraps err into a *Error if possible, classifying anything
// else as a generic Io error rooted at path.
func asWalkError(path string, err error) *Error {
	var we *Error
	if errors.As(err, &we) {
		return we
	}
	return newIOError(path, err)
}
