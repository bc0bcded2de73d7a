package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/knadh/koanf/providers/confmap"
	koanf "github.com/knadh/koanf/v2"
)

// ResolveOptions configures the multi-source configuration resolution.
type ResolveOptions struct {
	// ProfileName selects a named profile from loaded configs.
	// If empty, the DIRSUM_PROFILE env var is checked, then "default" is
	// used.
	ProfileName string

	// ProfileFile is a standalone profile TOML file path (--profile-file
	// flag). When set, the repo config (dirsum.toml) is not loaded.
	ProfileFile string

	// TargetDir is the directory to search for dirsum.toml.
	// Defaults to "." if empty.
	TargetDir string

	// GlobalConfigPath overrides the default ~/.config/dirsum/config.toml.
	// Useful for testing.
	GlobalConfigPath string

	// CLIFlags holds explicit CLI flag overrides (highest precedence).
	// Keys are flat Profile field names: "threads", "hasher", etc.
	CLIFlags map[string]any
}

// ResolvedConfig is the result of multi-source configuration resolution.
type ResolvedConfig struct {
	// Profile is the final merged profile ready to build walk.Options from.
	Profile *Profile

	// Sources tracks which layer each field value came from.
	Sources SourceMap

	// ProfileName is the name of the resolved profile.
	ProfileName string
}

// Resolve runs the 5-layer configuration resolution pipeline:
//  1. Built-in defaults
//  2. Global config (~/.config/dirsum/config.toml)
//  3. Repository config (dirsum.toml in TargetDir) OR standalone profile file
//  4. Environment variables (DIRSUM_* prefix)
//  5. CLI flags (highest precedence)
//
// Missing config files are silently ignored. Invalid files return errors.
// Named profiles not found in any loaded config return an error naming the
// missing profile; the error does not list the available profiles.
func Resolve(opts ResolveOptions) (*ResolvedConfig, error) {
	profileName := opts.ProfileName
	if profileName == "" {
		if v := os.Getenv(EnvProfile); v != "" {
			profileName = v
		} else {
			profileName = "default"
		}
	}

	slog.Debug("resolving config",
		"profile", profileName,
		"targetDir", opts.TargetDir,
		"profileFile", opts.ProfileFile,
	)

	k := koanf.New(".")
	sources := make(SourceMap)

	// ── Layer 1: built-in defaults ─────────────────────────────────────────
	defaultProfile := DefaultProfile()
	if err := loadLayer(k, profileToFlatMap(defaultProfile), sources, SourceDefault); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	profileFound := false

	// ── Layer 2: global config ─────────────────────────────────────────────
	globalPath := opts.GlobalConfigPath
	if globalPath == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			globalPath = filepath.Join(home, ".config", "dirsum", "config.toml")
		}
	}

	if globalPath != "" {
		found, err := loadFileLayer(k, globalPath, profileName, sources, SourceGlobal)
		if err != nil {
			return nil, err
		}
		if found {
			profileFound = true
		}
	}

	// ── Layer 3: repo config OR standalone profile file ────────────────────
	if opts.ProfileFile != "" {
		found, err := loadFileLayer(k, opts.ProfileFile, profileName, sources, SourceRepo)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, fmt.Errorf("profile %q not found in profile file %s", profileName, opts.ProfileFile)
		}
		profileFound = true
	} else {
		targetDir := opts.TargetDir
		if targetDir == "" {
			targetDir = "."
		}
		repoConfigPath := filepath.Join(targetDir, "dirsum.toml")
		found, err := loadFileLayer(k, repoConfigPath, profileName, sources, SourceRepo)
		if err != nil {
			return nil, err
		}
		if found {
			profileFound = true
		}
	}

	if profileName != "default" && !profileFound {
		return nil, fmt.Errorf("profile %q not found in any config file", profileName)
	}

	// ── Layer 4: environment variables ────────────────────────────────────
	envMap := buildEnvMap()
	if len(envMap) > 0 {
		if err := loadLayer(k, envMap, sources, SourceEnv); err != nil {
			return nil, fmt.Errorf("loading env vars: %w", err)
		}
	}

	// ── Layer 5: CLI flags ─────────────────────────────────────────────────
	if len(opts.CLIFlags) > 0 {
		if err := loadLayer(k, opts.CLIFlags, sources, SourceFlag); err != nil {
			return nil, fmt.Errorf("loading CLI flags: %w", err)
		}
	}

	finalProfile := flatMapToProfile(k)

	slog.Debug("config resolved",
		"profile", profileName,
		"threads", finalProfile.ThreadsOrDefault(),
		"hasher", finalProfile.Hasher,
		"strategy", finalProfile.Strategy,
	)

	return &ResolvedConfig{
		Profile:     finalProfile,
		Sources:     sources,
		ProfileName: profileName,
	}, nil
}

// loadFileLayer loads a named profile from a TOML config file, merges its
// explicitly-set fields into k, and records source attribution. Missing
// files and missing profiles are silently skipped (returns false, nil).
// Parse errors and I/O errors are returned.
func loadFileLayer(k *koanf.Koanf, path, profileName string, sources SourceMap, src Source) (bool, error) {
	flat, err := extractProfileFlat(path, profileName)
	if err != nil {
		return false, fmt.Errorf("loading config %s: %w", path, err)
	}
	if flat == nil {
		return false, nil
	}

	slog.Debug("loading profile from config",
		"profile", profileName,
		"path", path,
		"source", src.String(),
	)

	if err := loadLayer(k, flat, sources, src); err != nil {
		return false, err
	}
	return true, nil
}

// extractProfileFlat parses a TOML config file into a raw Go map and returns
// a flat koanf-compatible map containing only the fields explicitly present
// in the TOML for the given profile. Returns nil if the file does not exist
// or the profile is not found in the file.
func extractProfileFlat(path, profileName string) (map[string]any, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			slog.Debug("config file not found, skipping", "path", path)
			return nil, nil
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	var raw map[string]interface{}
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	profilesRaw, ok := raw["profile"].(map[string]interface{})
	if !ok {
		available := listConfigProfileNames(path)
		slog.Debug("no [profile] section in config",
			"path", path,
			"available", strings.Join(available, ", "),
		)
		return nil, nil
	}

	profileRaw, ok := profilesRaw[profileName].(map[string]interface{})
	if !ok {
		available := make([]string, 0, len(profilesRaw))
		for name := range profilesRaw {
			available = append(available, name)
		}
		sort.Strings(available)
		slog.Debug("profile not found in config",
			"profile", profileName,
			"path", path,
			"available", strings.Join(available, ", "),
		)
		return nil, nil
	}

	return flattenProfileRaw(profileRaw), nil
}

// listConfigProfileNames returns profile names from a TOML file, for debug
// logging. Returns nil on any error.
func listConfigProfileNames(path string) []string {
	var raw map[string]interface{}
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil
	}
	profiles, ok := raw["profile"].(map[string]interface{})
	if !ok {
		return nil
	}
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// flattenProfileRaw converts a raw TOML profile map (as decoded by
// BurntSushi/toml into map[string]interface{}) into a flat koanf-compatible
// map. Only fields explicitly present in the raw map are included.
func flattenProfileRaw(raw map[string]interface{}) map[string]any {
	flat := make(map[string]any)

	for _, key := range []string{"tolerance", "hasher", "strategy", "format"} {
		if v, ok := raw[key]; ok {
			flat[key] = v
		}
	}

	if v, ok := raw["threads"]; ok {
		flat["threads"] = toInt(v)
	}
	if v, ok := raw["progress"]; ok {
		flat["progress"] = toInt(v)
	}

	if v, ok := raw["deduplicate_roots"]; ok {
		flat["deduplicate_roots"] = v
	}

	for _, key := range []string{"include", "exclude", "pattern"} {
		if v, ok := raw[key]; ok {
			flat[key] = rawToStringSlice(v)
		}
	}

	if v, ok := raw["scenario"]; ok {
		if rules := rawToScenarioRules(v); rules != nil {
			flat["scenario"] = rules
		}
	}

	return flat
}

// toInt normalizes a raw TOML numeric value (int64, as decoded by
// BurntSushi/toml into interface maps) to int.
func toInt(v interface{}) any {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	default:
		return v
	}
}

// rawToStringSlice converts a raw TOML array value ([]interface{}) into
// []string. Returns nil for unrecognised types.
func rawToStringSlice(v interface{}) []string {
	switch s := v.(type) {
	case []string:
		return s
	case []interface{}:
		result := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				result = append(result, str)
			}
		}
		return result
	default:
		return nil
	}
}

// rawToScenarioRules converts a raw TOML array-of-tables value into
// []ScenarioRule. Returns nil for unrecognised types or empty input.
func rawToScenarioRules(v interface{}) []ScenarioRule {
	items, ok := v.([]map[string]interface{})
	if !ok {
		return nil
	}
	rules := make([]ScenarioRule, 0, len(items))
	for _, item := range items {
		var rule ScenarioRule
		if min, ok := item["min"]; ok {
			if n, ok := toInt(min).(int); ok {
				rule.Min = int64(n)
			}
		}
		if max, ok := item["max"]; ok {
			if n, ok := toInt(max).(int); ok {
				rule.Max = int64(n)
			}
		}
		if strat, ok := item["strategy"].(string); ok {
			rule.Strategy = strat
		}
		rules = append(rules, rule)
	}
	return rules
}

// loadLayer merges a flat map into k and marks every key in the map as
// originating from src. This approach correctly attributes source even when
// a later layer provides the same value as a prior layer (e.g. a CLI flag
// setting the same value as an env var).
func loadLayer(k *koanf.Koanf, m map[string]any, sources SourceMap, src Source) error {
	if err := k.Load(confmap.Provider(m, "."), nil); err != nil {
		return fmt.Errorf("merge layer %s: %w", src.String(), err)
	}
	for key := range m {
		sources[key] = src
	}
	return nil
}

// profileToFlatMap converts a Profile to a flat map for koanf's confmap
// provider. All fields are included (used for the defaults layer where
// every field has an authoritative default value).
func profileToFlatMap(p *Profile) map[string]any {
	return map[string]any{
		"threads":           p.ThreadsOrDefault(),
		"tolerance":         p.Tolerance,
		"hasher":            p.Hasher,
		"strategy":          p.Strategy,
		"scenario":          p.Scenario,
		"include":           p.Include,
		"exclude":           p.Exclude,
		"pattern":           p.Pattern,
		"progress":          p.ProgressOrDefault(),
		"deduplicate_roots": p.DeduplicateRoots,
		"format":            p.Format,
	}
}

// flatMapToProfile converts the current koanf state into a Profile struct.
func flatMapToProfile(k *koanf.Koanf) *Profile {
	var scenario []ScenarioRule
	if raw := k.Get("scenario"); raw != nil {
		if rules, ok := raw.([]ScenarioRule); ok {
			scenario = rules
		}
	}

	threads := k.Int("threads")
	progress := k.Int("progress")
	return &Profile{
		Threads:          &threads,
		Tolerance:        k.String("tolerance"),
		Hasher:           k.String("hasher"),
		Strategy:         k.String("strategy"),
		Scenario:         scenario,
		Include:          k.Strings("include"),
		Exclude:          k.Strings("exclude"),
		Pattern:          k.Strings("pattern"),
		Progress:         &progress,
		DeduplicateRoots: k.Bool("deduplicate_roots"),
		Format:           k.String("format"),
	}
}
