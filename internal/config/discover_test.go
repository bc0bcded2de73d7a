package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDiscoverRepoConfigFindsFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "dirsum.toml"), "[profile.default]\n")

	sub := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	got, err := DiscoverRepoConfig(sub)
	if err != nil {
		t.Fatalf("DiscoverRepoConfig: %v", err)
	}
	want, _ := filepath.EvalSymlinks(filepath.Join(root, "dirsum.toml"))
	if got != want {
		t.Errorf("DiscoverRepoConfig() = %q, want %q", got, want)
	}
}

func TestDiscoverRepoConfigStopsAtGitBoundary(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "repo", ".git"), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	got, err := DiscoverRepoConfig(filepath.Join(root, "repo"))
	if err != nil {
		t.Fatalf("DiscoverRepoConfig: %v", err)
	}
	if got != "" {
		t.Errorf("DiscoverRepoConfig() = %q, want empty (no config above .git boundary)", got)
	}
}

func TestDiscoverGlobalConfigMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	got, err := DiscoverGlobalConfig()
	if err != nil {
		t.Fatalf("DiscoverGlobalConfig: %v", err)
	}
	if got != "" {
		t.Errorf("DiscoverGlobalConfig() = %q, want empty when file absent", got)
	}
}
