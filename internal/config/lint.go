package config

import (
	"fmt"
	"sort"
	"strings"
)

// Lint runs static validation over every profile in cfg and returns a list
// of ValidationError findings, most severe first. An empty result means no
// issues were found.
func Lint(cfg *Config) []ValidationError {
	var out []ValidationError
	for name, p := range cfg.Profile {
		out = append(out, lintProfile(name, p)...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Severity == "error" && out[j].Severity != "error"
	})
	return out
}

func lintProfile(name string, p *Profile) []ValidationError {
	var out []ValidationError
	field := func(suffix string) string { return fmt.Sprintf("profile.%s.%s", name, suffix) }

	if p.ThreadsOrDefault() < 0 {
		out = append(out, ValidationError{
			Severity: "error",
			Field:    field("threads"),
			Message:  fmt.Sprintf("threads must be >= 0, got %d", p.ThreadsOrDefault()),
			Suggest:  "set threads to 0 to use the number of CPUs, or a positive integer",
		})
	}

	if p.Tolerance != "" {
		switch p.Tolerance {
		case "log_errors", "do_not_log_errors", "stop_on_errors":
		default:
			out = append(out, ValidationError{
				Severity: "error",
				Field:    field("tolerance"),
				Message:  fmt.Sprintf("unknown tolerance %q", p.Tolerance),
				Suggest:  "use one of: log_errors, do_not_log_errors, stop_on_errors",
			})
		}
	}

	if p.Hasher != "" {
		switch p.Hasher {
		case "blake3", "sha256", "xxh3":
		default:
			out = append(out, ValidationError{
				Severity: "error",
				Field:    field("hasher"),
				Message:  fmt.Sprintf("unknown hasher %q", p.Hasher),
				Suggest:  "use one of: blake3, sha256, xxh3",
			})
		}
	}

	switch p.Strategy {
	case "", "buffer", "complete", "mmap":
	case "scenario":
		if len(p.Scenario) == 0 {
			out = append(out, ValidationError{
				Severity: "error",
				Field:    field("scenario"),
				Message:  `strategy is "scenario" but no scenario rules are defined`,
				Suggest:  "add at least one [[profile." + name + ".scenario]] rule, or switch strategy",
			})
		}
		for i, r := range p.Scenario {
			if r.Max != 0 && r.Max <= r.Min {
				out = append(out, ValidationError{
					Severity: "error",
					Field:    fmt.Sprintf("%s[%d]", field("scenario"), i),
					Message:  fmt.Sprintf("max (%d) must be greater than min (%d), or 0 for unbounded", r.Max, r.Min),
				})
			}
			switch r.Strategy {
			case "buffer", "complete", "mmap":
			default:
				out = append(out, ValidationError{
					Severity: "error",
					Field:    fmt.Sprintf("%s[%d].strategy", field("scenario"), i),
					Message:  fmt.Sprintf("unknown terminal strategy %q", r.Strategy),
					Suggest:  "use one of: buffer, complete, mmap",
				})
			}
		}
	default:
		out = append(out, ValidationError{
			Severity: "error",
			Field:    field("strategy"),
			Message:  fmt.Sprintf("unknown strategy %q", p.Strategy),
			Suggest:  "use one of: buffer, complete, mmap, scenario",
		})
	}

	if p.Format != "" && p.Format != "hex" && p.Format != "base64" {
		out = append(out, ValidationError{
			Severity: "error",
			Field:    field("format"),
			Message:  fmt.Sprintf("unknown format %q", p.Format),
			Suggest:  "use one of: hex, base64",
		})
	}

	if p.Extends != nil && *p.Extends == name {
		out = append(out, ValidationError{
			Severity: "error",
			Field:    field("extends"),
			Message:  "profile extends itself",
		})
	}

	for i, pat := range p.Pattern {
		if !strings.HasPrefix(pat, "accept:") && !strings.HasPrefix(pat, "ignore:") {
			out = append(out, ValidationError{
				Severity: "error",
				Field:    fmt.Sprintf("%s[%d]", field("pattern"), i),
				Message:  fmt.Sprintf("pattern %q must start with \"accept:\" or \"ignore:\"", pat),
			})
		}
	}

	if len(p.Pattern) > 0 && (len(p.Include) > 0 || len(p.Exclude) > 0) {
		out = append(out, ValidationError{
			Severity: "warning",
			Field:    field("pattern"),
			Message:  "pattern is set; include/exclude are ignored for this profile",
		})
	}

	if p.ThreadsOrDefault() > 256 {
		out = append(out, ValidationError{
			Severity: "warning",
			Field:    field("threads"),
			Message:  fmt.Sprintf("threads is unusually high (%d)", p.ThreadsOrDefault()),
		})
	}

	return out
}
