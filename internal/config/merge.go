package config

// mergeProfile creates a new Profile by applying override on top of base.
// The merge rules are:
//   - String scalars: use override if non-empty; otherwise keep base.
//   - Pointer-int scalars (Threads, Progress): use override if it is
//     present (non-nil) at all, even when it points at zero; otherwise keep
//     base. This lets a child profile explicitly restore "0" (hardware
//     concurrency / progress disabled) even when its parent set a non-zero
//     value -- a TOML field's presence, not its value, carries the override
//     signal.
//   - Bool scalars: always use override (false is a valid override value).
//   - Slice fields (Include, Exclude): use override slice if it is non-nil
//     and non-empty; otherwise keep base slice.
//   - Scenario: override replaces base entirely when non-nil and non-empty.
//
// Neither base nor override is mutated. A fresh Profile is always returned.
// The Extends field is always cleared on the returned profile.
func mergeProfile(base, override *Profile) *Profile {
	result := &Profile{
		// Scalar: string
		Tolerance: mergeString(base.Tolerance, override.Tolerance),
		Hasher:    mergeString(base.Hasher, override.Hasher),
		Strategy:  mergeString(base.Strategy, override.Strategy),
		Format:    mergeString(base.Format, override.Format),

		// Scalar: pointer-int -- presence, not value, signals an override
		Threads:  mergeIntPtr(base.Threads, override.Threads),
		Progress: mergeIntPtr(base.Progress, override.Progress),

		// Scalar: bool -- override always wins (false is meaningful)
		DeduplicateRoots: override.DeduplicateRoots,

		// Slices: child replaces parent entirely when non-nil and non-empty
		Include:  mergeSlice(base.Include, override.Include),
		Exclude:  mergeSlice(base.Exclude, override.Exclude),
		Pattern:  mergeSlice(base.Pattern, override.Pattern),
		Scenario: mergeScenario(base.Scenario, override.Scenario),

		// Extends is always cleared after merge (profile is fully resolved)
		Extends: nil,
	}
	return result
}

// mergeString returns override if non-empty, otherwise base.
func mergeString(base, override string) string {
	if override != "" {
		return override
	}
	return base
}

// mergeIntPtr returns a copy of override if it is present (non-nil),
// otherwise base. A present-but-zero override takes precedence over a
// non-zero base, distinguishing "explicitly set to 0" from "not set".
func mergeIntPtr(base, override *int) *int {
	if override != nil {
		v := *override
		return &v
	}
	return base
}

// mergeSlice returns a copy of override if it is non-nil and non-empty,
// otherwise returns a copy of base. Copies are made at the boundary to
// prevent callers from sharing slice backing arrays.
func mergeSlice(base, override []string) []string {
	if len(override) > 0 {
		result := make([]string, len(override))
		copy(result, override)
		return result
	}
	if len(base) > 0 {
		result := make([]string, len(base))
		copy(result, base)
		return result
	}
	return nil
}

// mergeScenario returns a copy of override if it is non-nil and non-empty,
// otherwise a copy of base.
func mergeScenario(base, override []ScenarioRule) []ScenarioRule {
	if len(override) > 0 {
		result := make([]ScenarioRule, len(override))
		copy(result, override)
		return result
	}
	if len(base) > 0 {
		result := make([]ScenarioRule, len(base))
		copy(result, base)
		return result
	}
	return nil
}
