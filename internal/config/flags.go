package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// DefaultFormat is the default printed digest encoding when --format is not
// specified.
const DefaultFormat = "hex"

// FlagValues collects all parsed global flag values from the CLI. This
// struct is populated by BindFlags and passed to the config resolver and,
// ultimately, to the walk.OptionsBuilder.
type FlagValues struct {
	Dir              string
	Includes         []string
	Excludes         []string
	Patterns         []string
	Threads          int
	Tolerance        string
	Hasher           string
	Strategy         string
	Format           string
	Progress         int
	DeduplicateRoots bool
	Profile          string
	ProfileFile      string
	Verbose          bool
	Quiet            bool
}

// BindFlags registers all global persistent flags on the given Cobra command
// and returns a FlagValues pointer that will be populated when the command
// is executed.
func BindFlags(cmd *cobra.Command) *FlagValues {
	fv := &FlagValues{}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&fv.Dir, "dir", "d", ".", "target directory to hash")
	pf.StringArrayVar(&fv.Includes, "include", nil, "include glob pattern (repeatable)")
	pf.StringArrayVar(&fv.Excludes, "exclude", nil, "exclude glob pattern (repeatable)")
	pf.StringArrayVar(&fv.Patterns, "pattern", nil, `full-path accept/ignore rule, "accept:<glob>" or "ignore:<glob>" (repeatable; replaces --include/--exclude entirely)`)
	pf.IntVarP(&fv.Threads, "threads", "t", 0, "worker pool width (0 = number of CPUs)")
	pf.StringVar(&fv.Tolerance, "tolerance", "", "error tolerance: log_errors, do_not_log_errors, stop_on_errors")
	pf.StringVar(&fv.Hasher, "hasher", "", "digest algorithm: blake3, sha256, xxh3")
	pf.StringVar(&fv.Strategy, "strategy", "", "reading strategy: buffer, complete, mmap, scenario")
	pf.StringVar(&fv.Format, "format", "", "printed digest encoding: hex, base64")
	pf.IntVar(&fv.Progress, "progress", 0, "progress event channel capacity (0 disables)")
	pf.BoolVar(&fv.DeduplicateRoots, "deduplicate-roots", false, "collapse duplicate paths from overlapping roots")
	pf.StringVar(&fv.Profile, "profile", "", "named profile to activate")
	pf.StringVar(&fv.ProfileFile, "profile-file", "", "standalone profile TOML file")
	pf.BoolVarP(&fv.Verbose, "verbose", "v", false, "enable debug logging")
	pf.BoolVarP(&fv.Quiet, "quiet", "q", false, "suppress all output except errors")

	return fv
}

// ValidateFlags checks the parsed flag values for correctness and mutual
// exclusion. It also applies environment variable fallbacks. Call this from
// PersistentPreRunE after Cobra has parsed the flags.
func ValidateFlags(fv *FlagValues, cmd *cobra.Command) error {
	applyEnvOverrides(fv, cmd)

	if fv.Verbose && fv.Quiet {
		return fmt.Errorf("--verbose and --quiet are mutually exclusive")
	}

	info, err := os.Stat(fv.Dir)
	if err != nil {
		return fmt.Errorf("--dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("--dir: %s is not a directory", fv.Dir)
	}

	if fv.Tolerance != "" {
		switch fv.Tolerance {
		case "log_errors", "do_not_log_errors", "stop_on_errors":
		default:
			return fmt.Errorf("--tolerance: invalid value %q (allowed: log_errors, do_not_log_errors, stop_on_errors)", fv.Tolerance)
		}
	}

	if fv.Hasher != "" {
		switch fv.Hasher {
		case "blake3", "sha256", "xxh3":
		default:
			return fmt.Errorf("--hasher: invalid value %q (allowed: blake3, sha256, xxh3)", fv.Hasher)
		}
	}

	if fv.Strategy != "" {
		switch fv.Strategy {
		case "buffer", "complete", "mmap", "scenario":
		default:
			return fmt.Errorf("--strategy: invalid value %q (allowed: buffer, complete, mmap, scenario)", fv.Strategy)
		}
	}

	if fv.Format != "" {
		switch fv.Format {
		case "hex", "base64":
		default:
			return fmt.Errorf("--format: invalid value %q (allowed: hex, base64)", fv.Format)
		}
	}

	if fv.Profile != "" && fv.ProfileFile != "" {
		return fmt.Errorf("--profile and --profile-file are mutually exclusive")
	}

	for _, p := range fv.Patterns {
		if !strings.HasPrefix(p, "accept:") && !strings.HasPrefix(p, "ignore:") {
			return fmt.Errorf(`--pattern: %q must start with "accept:" or "ignore:"`, p)
		}
	}

	return nil
}

// applyEnvOverrides applies environment variable fallbacks for flags that
// were not explicitly set on the command line. The prefix is DIRSUM_.
func applyEnvOverrides(fv *FlagValues, cmd *cobra.Command) {
	stringEnv := map[string]func(string){
		"DIRSUM_TOLERANCE": func(v string) { fv.Tolerance = v },
		"DIRSUM_HASHER":    func(v string) { fv.Hasher = v },
		"DIRSUM_STRATEGY":  func(v string) { fv.Strategy = v },
		"DIRSUM_FORMAT":    func(v string) { fv.Format = v },
		"DIRSUM_PROFILE":   func(v string) { fv.Profile = v },
	}

	for env, setter := range stringEnv {
		v := os.Getenv(env)
		if v == "" {
			continue
		}
		flagName := strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(env, "DIRSUM_")), "_", "-")
		if !cmd.Flags().Changed(flagName) {
			setter(v)
		}
	}

	if os.Getenv("DIRSUM_VERBOSE") == "1" && !cmd.Flags().Changed("verbose") {
		fv.Verbose = true
	}
	if os.Getenv("DIRSUM_QUIET") == "1" && !cmd.Flags().Changed("quiet") {
		fv.Quiet = true
	}
}

// CLIFlagMap converts the explicitly-set flags in fv into the flat map
// format consumed by config.Resolve's CLIFlags layer. Only flags the user
// actually set on the command line are included, so unset flags fall
// through to lower-precedence layers.
func CLIFlagMap(fv *FlagValues, cmd *cobra.Command) map[string]any {
	m := make(map[string]any)
	flags := cmd.Flags()

	if flags.Changed("threads") {
		m["threads"] = fv.Threads
	}
	if flags.Changed("tolerance") {
		m["tolerance"] = fv.Tolerance
	}
	if flags.Changed("hasher") {
		m["hasher"] = fv.Hasher
	}
	if flags.Changed("strategy") {
		m["strategy"] = fv.Strategy
	}
	if flags.Changed("format") {
		m["format"] = fv.Format
	}
	if flags.Changed("progress") {
		m["progress"] = fv.Progress
	}
	if flags.Changed("deduplicate-roots") {
		m["deduplicate_roots"] = fv.DeduplicateRoots
	}
	if flags.Changed("include") {
		m["include"] = fv.Includes
	}
	if flags.Changed("exclude") {
		m["exclude"] = fv.Excludes
	}
	if flags.Changed("pattern") {
		m["pattern"] = fv.Patterns
	}

	return m
}
