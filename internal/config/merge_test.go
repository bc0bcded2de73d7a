package config

import (
	"reflect"
	"testing"
)

func TestMergeProfileScalars(t *testing.T) {
	base := &Profile{Threads: intPtr(4), Tolerance: "log_errors", Hasher: "blake3", Strategy: "buffer", Format: "hex"}
	override := &Profile{Tolerance: "", Hasher: "sha256", Strategy: "", Format: ""}

	got := mergeProfile(base, override)

	if got.ThreadsOrDefault() != 4 {
		t.Errorf("Threads = %d, want 4 (override omits threads, keeps base)", got.ThreadsOrDefault())
	}
	if got.Hasher != "sha256" {
		t.Errorf("Hasher = %q, want sha256 (override wins)", got.Hasher)
	}
	if got.Strategy != "buffer" {
		t.Errorf("Strategy = %q, want buffer", got.Strategy)
	}
	if got.Extends != nil {
		t.Error("Extends should always be cleared after merge")
	}
}

func TestMergeIntPtrExplicitZeroOverridesNonZeroBase(t *testing.T) {
	base := intPtr(4)
	override := intPtr(0)

	got := mergeIntPtr(base, override)
	if got == nil || *got != 0 {
		t.Errorf("mergeIntPtr(%v, %v) = %v, want 0 (explicit override wins even at zero)", base, override, got)
	}
}

func TestMergeIntPtrNilOverrideKeepsBase(t *testing.T) {
	base := intPtr(4)

	got := mergeIntPtr(base, nil)
	if got == nil || *got != 4 {
		t.Errorf("mergeIntPtr(%v, nil) = %v, want 4 (unset override falls through)", base, got)
	}
}

func TestMergeIntPtrDoesNotAliasOverride(t *testing.T) {
	override := intPtr(7)
	got := mergeIntPtr(nil, override)
	*got = 99
	if *override == 99 {
		t.Error("mergeIntPtr must copy, not alias, the override pointer")
	}
}

func TestMergeProfileBoolAlwaysOverrides(t *testing.T) {
	base := &Profile{DeduplicateRoots: true}
	override := &Profile{DeduplicateRoots: false}

	got := mergeProfile(base, override)
	if got.DeduplicateRoots {
		t.Error("bool override of false should win over base true")
	}
}

func TestMergeSlice(t *testing.T) {
	tests := []struct {
		name     string
		base     []string
		override []string
		want     []string
	}{
		{"override wins", []string{"a"}, []string{"b", "c"}, []string{"b", "c"}},
		{"empty override keeps base", []string{"a"}, nil, []string{"a"}},
		{"both empty", nil, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mergeSlice(tt.base, tt.override)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("mergeSlice(%v, %v) = %v, want %v", tt.base, tt.override, got, tt.want)
			}
		})
	}
}

func TestMergeSliceDoesNotAliasInputs(t *testing.T) {
	base := []string{"a"}
	got := mergeSlice(base, nil)
	got[0] = "mutated"
	if base[0] == "mutated" {
		t.Error("mergeSlice must copy, not alias, the base slice")
	}
}

func TestMergeScenario(t *testing.T) {
	base := []ScenarioRule{{Min: 0, Max: 1024, Strategy: "buffer"}}
	override := []ScenarioRule{{Min: 0, Max: 0, Strategy: "mmap"}}

	got := mergeScenario(base, override)
	if !reflect.DeepEqual(got, override) {
		t.Errorf("mergeScenario = %+v, want %+v", got, override)
	}

	got = mergeScenario(base, nil)
	if !reflect.DeepEqual(got, base) {
		t.Errorf("mergeScenario with nil override = %+v, want base %+v", got, base)
	}
}
