package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dirsum/dirsum/internal/config"
	"github.com/dirsum/dirsum/internal/pipeline"
)

var hashCmd = &cobra.Command{
	Use:     "hash [dirs...]",
	Aliases: []string{"run"},
	Short:   "Compute a deterministic composite digest of a directory tree",
	Long: `Walk one or more target directories, apply filters and the configured
reading strategy, and print a single composite digest covering every
admitted file across all of them.

Each positional argument becomes an independent root; when omitted, --dir
(default ".") is used instead. This is the primary workflow command.
Running 'dirsum' with no subcommand is equivalent to running 'dirsum hash'.`,
	RunE: runHash,
}

func init() {
	rootCmd.AddCommand(hashCmd)
}

func runHash(cmd *cobra.Command, args []string) error {
	cliFlags := config.CLIFlagMap(flagValues, cmd)
	result, err := pipeline.Run(cmd.Context(), flagValues, cliFlags, args...)

	out := cmd.OutOrStdout()
	if result != nil {
		fmt.Fprintln(out, result.Encoded)
		for _, ig := range result.Ignored {
			fmt.Fprintf(cmd.ErrOrStderr(), "ignored: %s (%s)\n", ig.Path, ig.Reason)
		}
	}
	return err
}
