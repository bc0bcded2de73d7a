package config

import (
	"testing"

	"github.com/spf13/cobra"
)

func newTestCommand() (*cobra.Command, *FlagValues) {
	cmd := &cobra.Command{Use: "test"}
	fv := BindFlags(cmd)
	return cmd, fv
}

func TestValidateFlagsRejectsVerboseAndQuiet(t *testing.T) {
	cmd, fv := newTestCommand()
	cmd.ParseFlags([]string{"--verbose", "--quiet", "--dir", t.TempDir()})
	if err := ValidateFlags(fv, cmd); err == nil {
		t.Fatal("expected error for --verbose and --quiet together")
	}
}

func TestValidateFlagsRejectsBadDir(t *testing.T) {
	cmd, fv := newTestCommand()
	cmd.ParseFlags([]string{"--dir", "/definitely/does/not/exist"})
	if err := ValidateFlags(fv, cmd); err == nil {
		t.Fatal("expected error for nonexistent --dir")
	}
}

func TestValidateFlagsRejectsInvalidHasher(t *testing.T) {
	cmd, fv := newTestCommand()
	cmd.ParseFlags([]string{"--dir", t.TempDir(), "--hasher", "md5"})
	if err := ValidateFlags(fv, cmd); err == nil {
		t.Fatal("expected error for unsupported hasher")
	}
}

func TestValidateFlagsRejectsProfileAndProfileFile(t *testing.T) {
	cmd, fv := newTestCommand()
	cmd.ParseFlags([]string{"--dir", t.TempDir(), "--profile", "ci", "--profile-file", "ci.toml"})
	if err := ValidateFlags(fv, cmd); err == nil {
		t.Fatal("expected error for --profile and --profile-file together")
	}
}

func TestCLIFlagMapOnlyIncludesChangedFlags(t *testing.T) {
	cmd, fv := newTestCommand()
	cmd.ParseFlags([]string{"--dir", t.TempDir(), "--hasher", "sha256"})
	if err := ValidateFlags(fv, cmd); err != nil {
		t.Fatalf("ValidateFlags: %v", err)
	}

	m := CLIFlagMap(fv, cmd)
	if m["hasher"] != "sha256" {
		t.Errorf("hasher = %v, want sha256", m["hasher"])
	}
	if _, ok := m["threads"]; ok {
		t.Error("unset --threads should not appear in CLIFlagMap")
	}
}
