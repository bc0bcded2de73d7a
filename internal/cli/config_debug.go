// Package cli implements the Cobra command hierarchy for the dirsum CLI tool.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dirsum/dirsum/internal/config"
)

// configCmd is the parent command for configuration-related subcommands.
// Running `dirsum config` with no subcommand prints the help text.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management commands",
	Long: `Configuration management commands for dirsum.

Use these subcommands to inspect and debug your dirsum configuration:

  debug  Show the fully resolved configuration with per-field source annotations`,
	// No RunE: default Cobra behaviour will print help when no subcommand is given.
}

// configDebugCmd shows the fully resolved configuration with source annotations.
var configDebugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Show resolved configuration with source annotations",
	Long: `Displays the complete resolved configuration showing exactly which source
(built-in default, global config, repo config, environment variable, or CLI flag)
provided each value. Useful for diagnosing unexpected configuration behavior.`,
	RunE: runConfigDebug,
}

func init() {
	configDebugCmd.Flags().Bool("json", false, "output as structured JSON")
	configDebugCmd.Flags().String("profile", "", "profile name to debug (default: active profile)")

	configCmd.AddCommand(configDebugCmd)
	rootCmd.AddCommand(configCmd)
}

// runConfigDebug implements `dirsum config debug`.
func runConfigDebug(cmd *cobra.Command, _ []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	profileName, _ := cmd.Flags().GetString("profile")

	out := cmd.OutOrStdout()

	resolved, err := config.Resolve(config.ResolveOptions{
		ProfileName: profileName,
		TargetDir:   ".",
		CLIFlags:    config.CLIFlagMap(flagValues, cmd),
	})
	if err != nil {
		return fmt.Errorf("resolving configuration: %w", err)
	}

	if asJSON {
		jsonStr, err := config.ShowProfileJSON(resolved.Profile)
		if err != nil {
			return fmt.Errorf("formatting debug output as JSON: %w", err)
		}
		fmt.Fprintln(out, jsonStr)
		return nil
	}

	fmt.Fprint(out, config.ShowProfile(config.ShowOptions{
		Profile:     resolved.Profile,
		Sources:     resolved.Sources,
		ProfileName: resolved.ProfileName,
	}))
	return nil
}
