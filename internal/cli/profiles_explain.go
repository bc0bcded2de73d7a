package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/dirsum/dirsum/internal/config"
)

// profilesExplainCmd shows how the active profile's include/exclude filters
// would treat a given path.
var profilesExplainCmd = &cobra.Command{
	Use:   "explain <path>",
	Short: "Show how the active profile's filters treat a path",
	Long: `Evaluate a candidate path against the resolved profile's include and
exclude glob patterns and report whether it would be hashed.

The command is informational only -- it does not walk or hash anything.

Pass a glob pattern (e.g. "src/**/*.go") to explain multiple matching paths.
Use --profile to explain against a specific named profile.`,
	Args: cobra.ExactArgs(1),
	RunE: runProfilesExplain,
	ValidArgsFunction: func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return nil, cobra.ShellCompDirectiveDefault
	},
}

func init() {
	profilesExplainCmd.Flags().String("profile", "", "profile name to explain against")
	profilesCmd.AddCommand(profilesExplainCmd)
}

// runProfilesExplain implements `dirsum profiles explain <path>`.
func runProfilesExplain(cmd *cobra.Command, args []string) error {
	pathArg := args[0]
	profileFlag, _ := cmd.Flags().GetString("profile")
	out := cmd.OutOrStdout()

	resolveOpts := config.ResolveOptions{TargetDir: "."}
	if profileFlag != "" {
		resolveOpts.ProfileName = profileFlag
	}
	resolved, err := config.Resolve(resolveOpts)
	if err != nil {
		return fmt.Errorf("resolving profile: %w", err)
	}

	isGlob := strings.ContainsAny(pathArg, "*?[{")
	if isGlob {
		matches, err := doublestar.Glob(os.DirFS("."), pathArg, doublestar.WithFilesOnly())
		if err != nil {
			return fmt.Errorf("expanding glob %q: %w", pathArg, err)
		}
		if len(matches) == 0 {
			fmt.Fprintf(out, "No paths matched glob pattern %q\n", pathArg)
			return nil
		}
		for i, match := range matches {
			if i > 0 {
				fmt.Fprintln(out, strings.Repeat("-", 60))
			}
			printExplainResult(out, explainPath(match, resolved.ProfileName, resolved.Profile))
		}
		return nil
	}

	printExplainResult(out, explainPath(pathArg, resolved.ProfileName, resolved.Profile))
	return nil
}

// explainResult is the outcome of simulating the filter engine against a
// single candidate path.
type explainResult struct {
	Path        string
	ProfileName string
	Included    bool
	MatchedBy   string // which exclude pattern excluded it, if any
	MatchedIncl string // which include pattern admitted it, if any
}

// explainPath simulates walk.Accepts' include/exclude evaluation for a
// single path against p's patterns, without touching the filesystem.
func explainPath(path, profileName string, p *config.Profile) explainResult {
	res := explainResult{Path: path, ProfileName: profileName}

	slashed := filepathToSlash(path)
	for _, pattern := range p.Exclude {
		if ok, _ := doublestar.Match(pattern, slashed); ok {
			res.MatchedBy = pattern
			res.Included = false
			return res
		}
	}

	if len(p.Include) == 0 {
		res.Included = true
		return res
	}
	for _, pattern := range p.Include {
		if ok, _ := doublestar.Match(pattern, slashed); ok {
			res.MatchedIncl = pattern
			res.Included = true
			return res
		}
	}
	res.Included = false
	return res
}

func filepathToSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

// printExplainResult formats and writes a single explainResult to w.
func printExplainResult(w io.Writer, result explainResult) {
	fmt.Fprintf(w, "Explaining: %s\n", result.Path)
	fmt.Fprintf(w, "Profile: %s\n", result.ProfileName)
	fmt.Fprintln(w)

	if result.Included {
		fmt.Fprintf(w, "  Status:  INCLUDED\n")
		if result.MatchedIncl != "" {
			fmt.Fprintf(w, "  Matched include pattern: %q\n", result.MatchedIncl)
		} else {
			fmt.Fprintf(w, "  Reason: no include patterns configured, and no exclude pattern matched\n")
		}
		return
	}

	fmt.Fprintf(w, "  Status:  EXCLUDED\n")
	if result.MatchedBy != "" {
		fmt.Fprintf(w, "  Matched exclude pattern: %q\n", result.MatchedBy)
		return
	}
	fmt.Fprintf(w, "  Reason: include patterns are configured and none matched\n")
}
