// Package cli implements the Cobra command hierarchy for the dirsum CLI
// tool. The root command defined here is the entry point for all
// subcommands and handles cross-cutting concerns like logging
// initialization and error handling.
package cli

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dirsum/dirsum/internal/config"
	"github.com/dirsum/dirsum/internal/pipeline"
)

// flagValues holds the parsed global flag values, populated by
// config.BindFlags during command initialization and validated in
// PersistentPreRunE.
var flagValues *config.FlagValues

var rootCmd = &cobra.Command{
	Use:   "dirsum",
	Short: "Deterministic composite digests of directory trees.",
	Long: `dirsum walks one or more directories and produces a single deterministic
digest covering every admitted file's contents.

It applies configurable include/exclude filtering, a choice of reading
strategies (buffered, whole-file, or memory-mapped), and a choice of digest
algorithms (BLAKE3, SHA-256, or XXH3), tunable per run through layered
configuration: built-in defaults, a global config file, a repository config
file or standalone profile, environment variables, and CLI flags.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.ValidateFlags(flagValues, cmd); err != nil {
			return err
		}

		level := config.ResolveLogLevel(flagValues.Verbose, flagValues.Quiet)
		format := config.ResolveLogFormat()
		config.SetupLogging(level, format)

		slog.Debug("logging initialized", "level", level, "format", format)
		return nil
	},
	// When no subcommand is given, delegate to the hash command.
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHash(cmd, args)
	},
}

func init() {
	flagValues = config.BindFlags(rootCmd)

	rootCmd.RegisterFlagCompletionFunc("hasher", completeHasher)
	rootCmd.RegisterFlagCompletionFunc("strategy", completeStrategy)
	rootCmd.RegisterFlagCompletionFunc("tolerance", completeTolerance)
	rootCmd.RegisterFlagCompletionFunc("format", completeFormat)
}

// completeHasher returns the valid values for the --hasher flag.
func completeHasher(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{"blake3", "sha256", "xxh3"}, cobra.ShellCompDirectiveNoFileComp
}

// completeStrategy returns the valid values for the --strategy flag.
func completeStrategy(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{"buffer", "complete", "mmap", "scenario"}, cobra.ShellCompDirectiveNoFileComp
}

// completeTolerance returns the valid values for the --tolerance flag.
func completeTolerance(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{"log_errors", "do_not_log_errors", "stop_on_errors"}, cobra.ShellCompDirectiveNoFileComp
}

// completeFormat returns the valid values for the --format flag.
func completeFormat(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{"hex", "base64"}, cobra.ShellCompDirectiveNoFileComp
}

// Execute runs the root command and returns an appropriate exit code.
// If the error is a *pipeline.RunError, its Code is used.
// Generic errors return ExitError (1). Nil returns ExitSuccess (0).
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		slog.Error(err.Error())
		return extractExitCode(err)
	}
	return int(pipeline.ExitSuccess)
}

// extractExitCode determines the process exit code from an error.
// If the error is a *pipeline.RunError, its Code field is used.
// Otherwise, ExitError (1) is returned for any non-nil error.
func extractExitCode(err error) int {
	if err == nil {
		return int(pipeline.ExitSuccess)
	}
	var runErr *pipeline.RunError
	if errors.As(err, &runErr) {
		return runErr.Code
	}
	return int(pipeline.ExitError)
}

// RootCmd returns the root cobra.Command for use in testing and subcommand
// registration.
func RootCmd() *cobra.Command {
	return rootCmd
}

// GlobalFlags returns the parsed global flag values. This is available
// after PersistentPreRunE has run. Subcommands use this to access shared
// configuration.
func GlobalFlags() *config.FlagValues {
	return flagValues
}
