package config

import (
	"path/filepath"
	"testing"
)

func TestResolveDefaultsOnly(t *testing.T) {
	dir := t.TempDir()
	res, err := Resolve(ResolveOptions{TargetDir: dir, GlobalConfigPath: filepath.Join(dir, "missing.toml")})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Profile.Hasher != "blake3" {
		t.Errorf("Hasher = %q, want blake3 (default)", res.Profile.Hasher)
	}
	if res.Sources["hasher"] != SourceDefault {
		t.Errorf("source[hasher] = %v, want SourceDefault", res.Sources["hasher"])
	}
}

func TestResolveRepoConfigOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "dirsum.toml"), `
[profile.default]
hasher = "sha256"
threads = 2
`)

	res, err := Resolve(ResolveOptions{TargetDir: dir, GlobalConfigPath: filepath.Join(dir, "missing.toml")})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Profile.Hasher != "sha256" {
		t.Errorf("Hasher = %q, want sha256", res.Profile.Hasher)
	}
	if res.Sources["hasher"] != SourceRepo {
		t.Errorf("source[hasher] = %v, want SourceRepo", res.Sources["hasher"])
	}
}

func TestResolveCLIFlagsHighestPrecedence(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "dirsum.toml"), `
[profile.default]
hasher = "sha256"
`)

	res, err := Resolve(ResolveOptions{
		TargetDir:        dir,
		GlobalConfigPath: filepath.Join(dir, "missing.toml"),
		CLIFlags:         map[string]any{"hasher": "xxh3"},
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Profile.Hasher != "xxh3" {
		t.Errorf("Hasher = %q, want xxh3 (CLI flag wins)", res.Profile.Hasher)
	}
	if res.Sources["hasher"] != SourceFlag {
		t.Errorf("source[hasher] = %v, want SourceFlag", res.Sources["hasher"])
	}
}

func TestResolveUnknownNamedProfile(t *testing.T) {
	dir := t.TempDir()
	_, err := Resolve(ResolveOptions{
		ProfileName:      "ghost",
		TargetDir:        dir,
		GlobalConfigPath: filepath.Join(dir, "missing.toml"),
	})
	if err == nil {
		t.Fatal("expected error for profile not found in any config file")
	}
}

func TestResolveProfileFileStandalone(t *testing.T) {
	dir := t.TempDir()
	profilePath := filepath.Join(dir, "ci-profile.toml")
	writeFile(t, profilePath, `
[profile.ci]
hasher = "xxh3"
threads = 16
`)

	res, err := Resolve(ResolveOptions{
		ProfileName:      "ci",
		ProfileFile:      profilePath,
		GlobalConfigPath: filepath.Join(dir, "missing.toml"),
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Profile.ThreadsOrDefault() != 16 {
		t.Errorf("Threads = %d, want 16", res.Profile.ThreadsOrDefault())
	}
}
