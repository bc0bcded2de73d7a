package config

import "runtime"

// DefaultProfile returns a new Profile populated with the built-in defaults.
// This profile is used as the base when no dirsum.toml is present, or when a
// named profile omits fields.
//
// Callers receive a fresh copy each time; mutating the returned value does
// not affect subsequent calls.
func DefaultProfile() *Profile {
	threads := runtime.NumCPU()
	progress := 0
	return &Profile{
		Threads:   &threads,
		Tolerance: "log_errors",
		Hasher:    "blake3",
		Strategy:  "buffer",
		Exclude: []string{
			"**/.git/**",
			"**/.hg/**",
			"**/.svn/**",
			"**/node_modules/**",
			"**/vendor/**",
		},
		Progress:         &progress,
		DeduplicateRoots: false,
		Format:           "hex",
	}
}
