package config

import (
	"os"
	"strconv"
)

// Environment variable name constants for DIRSUM_ prefixed overrides.
const (
	// EnvProfile selects the named profile to activate.
	EnvProfile = "DIRSUM_PROFILE"
	// EnvThreads overrides the worker pool width.
	EnvThreads = "DIRSUM_THREADS"
	// EnvTolerance overrides the error tolerance policy.
	EnvTolerance = "DIRSUM_TOLERANCE"
	// EnvHasher overrides the digest algorithm.
	EnvHasher = "DIRSUM_HASHER"
	// EnvStrategy overrides the reading strategy.
	EnvStrategy = "DIRSUM_STRATEGY"
	// EnvFormat overrides the printed digest encoding.
	EnvFormat = "DIRSUM_FORMAT"
	// EnvLogFormat overrides the log output format (not a profile field).
	EnvLogFormat = "DIRSUM_LOG_FORMAT"
)

// buildEnvMap reads DIRSUM_* environment variables and returns a flat map
// suitable for use with a koanf confmap provider. Only non-empty env vars
// that parse successfully are included. Invalid numeric values are silently
// skipped so that a bad env var does not block the entire resolution
// pipeline.
func buildEnvMap() map[string]any {
	m := make(map[string]any)

	if v := os.Getenv(EnvThreads); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			m["threads"] = n
		}
	}
	if v := os.Getenv(EnvTolerance); v != "" {
		m["tolerance"] = v
	}
	if v := os.Getenv(EnvHasher); v != "" {
		m["hasher"] = v
	}
	if v := os.Getenv(EnvStrategy); v != "" {
		m["strategy"] = v
	}
	if v := os.Getenv(EnvFormat); v != "" {
		m["format"] = v
	}

	return m
}
