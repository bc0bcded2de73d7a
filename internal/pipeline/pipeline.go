package pipeline

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"github.com/dirsum/dirsum/internal/config"
	"github.com/dirsum/dirsum/internal/hashers"
	"github.com/dirsum/dirsum/internal/readers"
	"github.com/dirsum/dirsum/internal/walk"
)

// Run resolves cfg into a walk.Options, drives a Walker through collection
// and hashing, and returns the encoded composite digest. It is the central
// orchestrator invoked by the CLI's hash command. cliFlags is the
// precedence-aware map produced by config.CLIFlagMap, reflecting only the
// flags the user actually set on the command line. dirs is one or more
// target directories to hash as independent walk.Entry roots; when empty,
// cfg.Dir is used as the sole root.
func Run(ctx context.Context, cfg *config.FlagValues, cliFlags map[string]any, dirs ...string) (*Result, error) {
	if len(dirs) == 0 {
		dirs = []string{cfg.Dir}
	}

	resolved, err := config.Resolve(config.ResolveOptions{
		ProfileName: cfg.Profile,
		ProfileFile: cfg.ProfileFile,
		TargetDir:   dirs[0],
		CLIFlags:    cliFlags,
	})
	if err != nil {
		return nil, NewError("resolving configuration", err)
	}
	profile := resolved.Profile

	slog.Debug("resolved profile",
		"profile", resolved.ProfileName,
		"dirs", dirs,
		"threads", profile.ThreadsOrDefault(),
		"hasher", profile.Hasher,
		"strategy", profile.Strategy,
		"tolerance", profile.Tolerance,
		"format", profile.Format,
	)

	opts, err := buildOptions(dirs, profile)
	if err != nil {
		return nil, NewError("building walk options", err)
	}

	w := walk.NewWalker(opts)

	stop := make(chan struct{})
	stopped := make(chan struct{})
	go drainProgress(w, stop, stopped)
	defer func() {
		close(stop)
		<-stopped
	}()

	if err := w.Collect(); err != nil {
		return nil, NewError("collecting entries", err)
	}

	digest, err := w.Hash()
	if err != nil {
		return nil, NewError("hashing entries", err)
	}

	select {
	case <-ctx.Done():
		return nil, NewError("run cancelled", ctx.Err())
	default:
	}

	result := &Result{
		Digest:      digest,
		Encoded:     encodeDigest(digest, profile.Format),
		FilesHashed: len(w.Collected()),
	}
	for _, ig := range w.Ignored() {
		result.Ignored = append(result.Ignored, IgnoredSummary{Path: ig.Path, Reason: string(ig.Kind)})
	}

	if len(result.Ignored) > 0 {
		return result, NewPartialError(fmt.Sprintf("%d entries ignored", len(result.Ignored)), nil)
	}
	return result, nil
}

// drainProgress logs progress events until stop is closed. The Walker never
// closes its progress channel itself, so this loop is signaled externally
// rather than terminating on channel close; Progress() returns nil when
// progress reporting is disabled, in which case the nil-channel receive
// case is simply never ready and stop is the only way out.
func drainProgress(w *walk.Walker, stop <-chan struct{}, stopped chan<- struct{}) {
	defer close(stopped)
	ch := w.Progress()
	for {
		select {
		case <-stop:
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			switch ev.Kind {
			case walk.ProgressCollected:
				slog.Debug("collected", "count", ev.Count)
			case walk.ProgressHashed:
				slog.Debug("hashed", "count", ev.Count)
			}
		}
	}
}

// buildOptions translates a resolved Profile plus the CLI-supplied target
// directories into an immutable walk.Options snapshot. Each directory
// becomes its own walk.Entry root, sharing the profile's global
// include/exclude filters.
func buildOptions(dirs []string, p *config.Profile) (*walk.Options, error) {
	patterns, err := buildPatterns(p.Pattern)
	if err != nil {
		return nil, err
	}

	b := walk.NewOptionsBuilder()
	entryOpts := make([]walk.EntryOption, 0, len(patterns))
	for _, pat := range patterns {
		entryOpts = append(entryOpts, walk.WithPattern(pat))
	}
	for _, dir := range dirs {
		b.Path(dir, entryOpts...)
	}
	threads := p.ThreadsOrDefault()
	if threads == 0 {
		threads = runtime.NumCPU()
	}
	b.Threads(threads)
	b.Progress(p.ProgressOrDefault())
	b.DeduplicateRoots(p.DeduplicateRoots)

	tolerance, err := parseTolerance(p.Tolerance)
	if err != nil {
		return nil, err
	}
	b.ToleranceLevel(tolerance)

	hasherName, err := parseHasherName(p.Hasher)
	if err != nil {
		return nil, err
	}
	hasherFactory, err := hashers.Factory(hasherName)
	if err != nil {
		return nil, err
	}
	b.Hasher(hasherFactory)
	b.ReaderFactory(readers.NewFactory())

	strategy, err := buildStrategy(p)
	if err != nil {
		return nil, err
	}
	b.Strategy(strategy)

	for _, pattern := range p.Include {
		f, err := walk.NewCommonFilter(pattern)
		if err != nil {
			return nil, fmt.Errorf("include pattern %q: %w", pattern, err)
		}
		b.Include(f)
	}
	for _, pattern := range p.Exclude {
		f, err := walk.NewCommonFilter(pattern)
		if err != nil {
			return nil, fmt.Errorf("exclude pattern %q: %w", pattern, err)
		}
		b.Exclude(f)
	}

	return b.Build()
}

// buildPatterns parses a profile's pattern rules ("accept:<glob>" /
// "ignore:<glob>") into walk.PatternFilters, applied to every Entry root in
// builder order. An empty list disables pattern mode entirely.
func buildPatterns(rules []string) ([]walk.PatternFilter, error) {
	patterns := make([]walk.PatternFilter, 0, len(rules))
	for _, rule := range rules {
		switch {
		case strings.HasPrefix(rule, "accept:"):
			p, err := walk.NewAcceptPattern(strings.TrimPrefix(rule, "accept:"))
			if err != nil {
				return nil, fmt.Errorf("pattern %q: %w", rule, err)
			}
			patterns = append(patterns, p)
		case strings.HasPrefix(rule, "ignore:"):
			p, err := walk.NewIgnorePattern(strings.TrimPrefix(rule, "ignore:"))
			if err != nil {
				return nil, fmt.Errorf("pattern %q: %w", rule, err)
			}
			patterns = append(patterns, p)
		default:
			return nil, fmt.Errorf("pattern %q: must start with \"accept:\" or \"ignore:\"", rule)
		}
	}
	return patterns, nil
}

func parseTolerance(s string) (walk.Tolerance, error) {
	switch s {
	case "", "log_errors":
		return walk.LogErrors, nil
	case "do_not_log_errors":
		return walk.DoNotLogErrors, nil
	case "stop_on_errors":
		return walk.StopOnErrors, nil
	default:
		return 0, fmt.Errorf("unknown tolerance %q", s)
	}
}

func parseHasherName(s string) (hashers.Name, error) {
	switch s {
	case "", "blake3":
		return hashers.BLAKE3, nil
	case "sha256":
		return hashers.SHA256, nil
	case "xxh3":
		return hashers.XXH3, nil
	default:
		return "", fmt.Errorf("unknown hasher %q", s)
	}
}

func buildStrategy(p *config.Profile) (walk.ReadingStrategy, error) {
	switch p.Strategy {
	case "", "buffer":
		return walk.Buffer(), nil
	case "complete":
		return walk.Complete(), nil
	case "mmap":
		return walk.MemoryMapped(), nil
	case "scenario":
		rules := make([]walk.ScenarioRule, 0, len(p.Scenario))
		for _, r := range p.Scenario {
			terminal, err := buildTerminalStrategy(r.Strategy)
			if err != nil {
				return walk.ReadingStrategy{}, err
			}
			max := r.Max
			if max == 0 {
				max = -1
			}
			rules = append(rules, walk.ScenarioRule{
				Range:    walk.SizeRange{Min: r.Min, Max: max},
				Strategy: terminal,
			})
		}
		return walk.Scenario(rules...), nil
	default:
		return walk.ReadingStrategy{}, fmt.Errorf("unknown strategy %q", p.Strategy)
	}
}

func buildTerminalStrategy(s string) (walk.ReadingStrategy, error) {
	switch s {
	case "buffer":
		return walk.Buffer(), nil
	case "complete":
		return walk.Complete(), nil
	case "mmap":
		return walk.MemoryMapped(), nil
	default:
		return walk.ReadingStrategy{}, fmt.Errorf("unknown scenario terminal strategy %q", s)
	}
}

func encodeDigest(digest []byte, format string) string {
	if format == "base64" {
		return base64.StdEncoding.EncodeToString(digest)
	}
	return hex.EncodeToString(digest)
}
