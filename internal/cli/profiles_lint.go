package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dirsum/dirsum/internal/config"
)

// profilesLintCmd lints the dirsum configuration for errors and warnings.
var profilesLintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Lint the dirsum configuration for errors and warnings",
	Long: `Run static validation over every profile defined in dirsum.toml.

Lint groups findings by severity (errors, warnings) and exits with code 1
if any errors are found. Warnings do not cause a non-zero exit.

Use --profile to restrict linting to a single named profile.`,
	RunE: runProfilesLint,
}

func init() {
	profilesLintCmd.Flags().String("profile", "", "lint only the specified profile name")
	profilesCmd.AddCommand(profilesLintCmd)
}

// runProfilesLint implements `dirsum profiles lint`.
func runProfilesLint(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	profileFlag, _ := cmd.Flags().GetString("profile")

	repoPath, err := config.DiscoverRepoConfig(".")
	if err != nil {
		slog.Debug("repo config discovery failed", "err", err)
	}

	var cfg *config.Config
	if repoPath == "" {
		fmt.Fprintln(out, "No dirsum.toml found; using built-in defaults")
		cfg = &config.Config{Profile: map[string]*config.Profile{}}
	} else {
		cfg, err = config.LoadFromFile(repoPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		fmt.Fprintf(out, "Linting %s...\n", displayPath(repoPath))
	}

	if profileFlag != "" {
		p, ok := cfg.Profile[profileFlag]
		if !ok {
			return fmt.Errorf("profile %q not found in configuration", profileFlag)
		}
		cfg = &config.Config{Profile: map[string]*config.Profile{profileFlag: p}}
	}

	results := config.Lint(cfg)

	if len(results) == 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "No issues found.")
		return nil
	}

	var errs, warnings []config.ValidationError
	for _, r := range results {
		if r.Severity == "error" {
			errs = append(errs, r)
		} else {
			warnings = append(warnings, r)
		}
	}

	if len(errs) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Errors:")
		for _, r := range errs {
			fmt.Fprintf(out, "  X [%s] %s\n", r.Field, r.Message)
			if r.Suggest != "" {
				fmt.Fprintf(out, "    Fix: %s\n", r.Suggest)
			}
		}
	}

	if len(warnings) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Warnings:")
		for _, r := range warnings {
			fmt.Fprintf(out, "  ! [%s] %s\n", r.Field, r.Message)
			if r.Suggest != "" {
				fmt.Fprintf(out, "    Fix: %s\n", r.Suggest)
			}
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Result: %d error(s), %d warning(s)\n", len(errs), len(warnings))

	if len(errs) > 0 {
		return fmt.Errorf("lint: %d error(s) found in configuration", len(errs))
	}
	return nil
}
