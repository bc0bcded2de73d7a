package config

import "runtime"

// Config is the top-level configuration type parsed from a dirsum.toml file.
// It holds a map of named profiles keyed by profile name. Profile names are
// case-sensitive. The special name "default" is the built-in fallback profile.
type Config struct {
	// Profile maps profile names to their configuration. Access via
	// cfg.Profile["default"] or cfg.Profile["ci"].
	Profile map[string]*Profile `toml:"profile"`
}

// Profile defines all settings for a single named profile. Fields with zero
// values are considered unset and are filled in by the merge/inheritance
// pipeline. The Extends field enables profile inheritance.
type Profile struct {
	// Extends is the name of a parent profile to inherit from. When set,
	// all unset fields in this profile are filled from the named parent.
	// A nil pointer means no inheritance.
	Extends *string `toml:"extends" json:"extends"`

	// Threads is the worker pool width shared by the collector and the
	// hashing pool. A nil pointer means the field is unset (fall through to
	// a parent profile or the built-in default); this is distinct from an
	// explicit 0, which requests hardware concurrency. Use ThreadsOrDefault
	// to read the effective value.
	Threads *int `toml:"threads" json:"threads"`

	// Tolerance controls how per-file I/O, reader, and hasher errors are
	// handled. Valid values: "log_errors", "do_not_log_errors",
	// "stop_on_errors".
	Tolerance string `toml:"tolerance" json:"tolerance"`

	// Hasher selects the digest algorithm. Valid values: "blake3", "sha256",
	// "xxh3".
	Hasher string `toml:"hasher" json:"hasher"`

	// Strategy selects the file reading strategy. Valid values: "buffer",
	// "complete", "mmap", "scenario". "scenario" requires Scenario to be
	// non-empty.
	Strategy string `toml:"strategy" json:"strategy"`

	// Scenario defines size-bucketed reading strategy rules, evaluated in
	// order, used when Strategy is "scenario".
	Scenario []ScenarioRule `toml:"scenario" json:"scenario"`

	// Include is the list of glob patterns for files/directories to admit.
	// An empty list admits everything not excluded.
	Include []string `toml:"include" json:"include"`

	// Exclude is the list of glob patterns for files/directories to skip
	// during traversal. Patterns are evaluated with doublestar.
	Exclude []string `toml:"exclude" json:"exclude"`

	// Pattern is a list of full-path accept/ignore rules, each prefixed
	// "accept:" or "ignore:" followed by a doublestar glob (e.g.
	// "accept:**/*.go", "ignore:**/vendor/**"). When non-empty, pattern mode
	// replaces Include/Exclude entirely: a path is admitted only if an
	// accept pattern matches and no ignore pattern matches.
	Pattern []string `toml:"pattern" json:"pattern"`

	// Progress is the capacity of the progress event channel. A nil pointer
	// means the field is unset (fall through to a parent profile or the
	// built-in default); an explicit 0 disables progress reporting. Use
	// ProgressOrDefault to read the effective value.
	Progress *int `toml:"progress" json:"progress"`

	// DeduplicateRoots collapses duplicate paths produced by overlapping
	// configured roots before hashing.
	DeduplicateRoots bool `toml:"deduplicate_roots" json:"deduplicate_roots"`

	// Format selects the textual encoding of the printed composite digest.
	// Valid values: "hex", "base64".
	Format string `toml:"format" json:"format"`
}

// ThreadsOrDefault returns the configured worker count, falling back to
// hardware concurrency when Threads is unset.
func (p *Profile) ThreadsOrDefault() int {
	if p.Threads != nil {
		return *p.Threads
	}
	return runtime.NumCPU()
}

// ProgressOrDefault returns the configured progress channel capacity,
// falling back to 0 (disabled) when Progress is unset.
func (p *Profile) ProgressOrDefault() int {
	if p.Progress != nil {
		return *p.Progress
	}
	return 0
}

// ScenarioRule is one size-bucketed reading strategy rule: files whose size
// in bytes falls within [Min, Max) use Strategy. Max of 0 means unbounded.
type ScenarioRule struct {
	Min      int64  `toml:"min"`
	Max      int64  `toml:"max"`
	Strategy string `toml:"strategy"`
}
