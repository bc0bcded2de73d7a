package config

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ShowOptions controls the rendering of a resolved profile.
type ShowOptions struct {
	// Profile is the fully merged profile to display.
	Profile *Profile

	// Sources maps flat field names to their origin layer.
	Sources SourceMap

	// ProfileName is the name of the profile being displayed.
	ProfileName string

	// Chain is the inheritance chain in resolution order, e.g.
	// ["ci", "default"].
	Chain []string
}

// ShowProfile renders a resolved profile as annotated TOML. Each field is
// printed with an inline comment indicating which configuration layer
// provided its value. The output is human-readable and approximately valid
// TOML (inline comments are not part of the TOML spec but are widely
// supported by editors and tooling).
//
// The Chain parameter should come from ProfileResolution.Chain.
func ShowProfile(opts ShowOptions) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Resolved profile: %s\n", opts.ProfileName)
	if len(opts.Chain) > 1 {
		fmt.Fprintf(&b, "# Inheritance chain: %s\n", strings.Join(opts.Chain, " -> "))
	}
	fmt.Fprintf(&b, "\n")

	p := opts.Profile
	src := opts.Sources

	writeIntField(&b, "threads", p.ThreadsOrDefault(), sourceLabel(src, "threads"))
	writeStringField(&b, "tolerance", p.Tolerance, sourceLabel(src, "tolerance"))
	writeStringField(&b, "hasher", p.Hasher, sourceLabel(src, "hasher"))
	writeStringField(&b, "strategy", p.Strategy, sourceLabel(src, "strategy"))
	writeStringField(&b, "format", p.Format, sourceLabel(src, "format"))
	writeIntField(&b, "progress", p.ProgressOrDefault(), sourceLabel(src, "progress"))
	writeBoolField(&b, "deduplicate_roots", p.DeduplicateRoots, sourceLabel(src, "deduplicate_roots"))

	writeStringSliceField(&b, "include", p.Include, sourceLabel(src, "include"))
	writeStringSliceField(&b, "exclude", p.Exclude, sourceLabel(src, "exclude"))
	if len(p.Pattern) > 0 {
		writeStringSliceField(&b, "pattern", p.Pattern, sourceLabel(src, "pattern"))
	}

	if len(p.Scenario) > 0 {
		b.WriteString("\n")
		writeScenarioSection(&b, p.Scenario, sourceLabel(src, "scenario"))
	}

	return b.String()
}

// ShowProfileJSON serializes the resolved profile to indented JSON. It
// returns the JSON bytes as a string. An error is returned only if
// marshalling fails, which should not happen for well-formed Profile
// values.
func ShowProfileJSON(p *Profile) (string, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal profile to JSON: %w", err)
	}
	return string(data), nil
}

// sourceLabel returns the Source.String() for a given flat key, defaulting
// to "default" when the key is absent from the SourceMap.
func sourceLabel(src SourceMap, key string) string {
	if s, ok := src[key]; ok {
		return s.String()
	}
	return "default"
}

func writeStringField(b *strings.Builder, key, value, source string) {
	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(value)
	fmt.Fprintf(b, "%-20s = %-30s # %s\n", key, `"`+escaped+`"`, source)
}

func writeIntField(b *strings.Builder, key string, value int, source string) {
	fmt.Fprintf(b, "%-20s = %-30d # %s\n", key, value, source)
}

func writeBoolField(b *strings.Builder, key string, value bool, source string) {
	boolStr := "false"
	if value {
		boolStr = "true"
	}
	fmt.Fprintf(b, "%-20s = %-30s # %s\n", key, boolStr, source)
}

func writeStringSliceField(b *strings.Builder, key string, values []string, source string) {
	if len(values) == 0 {
		fmt.Fprintf(b, "%-20s = []%-27s # %s\n", key, "", source)
		return
	}

	fmt.Fprintf(b, "%-20s = [%-29s # %s\n", key, "", source)
	for _, v := range values {
		fmt.Fprintf(b, "  %q,\n", v)
	}
	b.WriteString("]\n")
}

// writeScenarioSection writes the [[scenario]] TOML array-of-tables with a
// single source annotation (the field is replaced atomically, never merged
// rule-by-rule).
func writeScenarioSection(b *strings.Builder, rules []ScenarioRule, source string) {
	fmt.Fprintf(b, "# scenario source: %s\n", source)
	for _, r := range rules {
		fmt.Fprintf(b, "[[scenario]]\n")
		fmt.Fprintf(b, "min      = %d\n", r.Min)
		maxStr := strconv.FormatInt(r.Max, 10)
		if r.Max == 0 {
			maxStr = "0 # unbounded"
		}
		fmt.Fprintf(b, "max      = %s\n", maxStr)
		fmt.Fprintf(b, "strategy = %q\n\n", r.Strategy)
	}
}
