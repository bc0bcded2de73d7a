package config

import "testing"

func TestLintFindsUnknownHasher(t *testing.T) {
	cfg := &Config{Profile: map[string]*Profile{
		"ci": {Hasher: "md5"},
	}}
	results := Lint(cfg)
	if len(results) != 1 || results[0].Severity != "error" {
		t.Fatalf("Lint() = %+v, want one error for unknown hasher", results)
	}
}

func TestLintScenarioRequiresRules(t *testing.T) {
	cfg := &Config{Profile: map[string]*Profile{
		"ci": {Strategy: "scenario"},
	}}
	results := Lint(cfg)
	if len(results) != 1 {
		t.Fatalf("Lint() = %+v, want one error for empty scenario", results)
	}
}

func TestLintCleanProfilePasses(t *testing.T) {
	cfg := &Config{Profile: map[string]*Profile{
		"ci": DefaultProfile(),
	}}
	if results := Lint(cfg); len(results) != 0 {
		t.Errorf("Lint() = %+v, want no issues for default profile", results)
	}
}

func TestLintDetectsSelfExtends(t *testing.T) {
	self := "ci"
	cfg := &Config{Profile: map[string]*Profile{
		"ci": {Extends: &self},
	}}
	results := Lint(cfg)
	found := false
	for _, r := range results {
		if r.Field == "profile.ci.extends" {
			found = true
		}
	}
	if !found {
		t.Errorf("Lint() = %+v, want a self-extends error", results)
	}
}
