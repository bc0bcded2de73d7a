package walk

// StrategyKind tags a ReadingStrategy variant.
type StrategyKind int

const (
	StrategyBuffer StrategyKind = iota
	StrategyComplete
	StrategyMemoryMapped
	StrategyScenario
)

// SizeRange is a half-open byte-size interval [Min, Max) used by Scenario.
// Max of -1 means unbounded.
type SizeRange struct {
	Min int64
	Max int64 // -1 == unbounded
}

func (r SizeRange) contains(size int64) bool {
	if size < r.Min {
		return false
	}
	if r.Max < 0 {
		return true
	}
	return size < r.Max
}

// ScenarioRule pairs a SizeRange with the terminal strategy to use when a
// file's size falls in that range.
type ScenarioRule struct {
	Range    SizeRange
	Strategy ReadingStrategy
}

// ReadingStrategy selects between chunked, whole-file, and memory-mapped
// I/O, optionally dispatched by file size via Scenario. Scenario is not
// re-nested at the strategy level the resolver returns: nested strategies
// inside a Scenario must themselves be non-Scenario (enforced by
// validateStrategy, invoked from the Options builder).
type ReadingStrategy struct {
	kind     StrategyKind
	scenario []ScenarioRule
}

// Buffer is the StrategyBuffer terminal.
func Buffer() ReadingStrategy { return ReadingStrategy{kind: StrategyBuffer} }

// Complete is the StrategyComplete terminal.
func Complete() ReadingStrategy { return ReadingStrategy{kind: StrategyComplete} }

// MemoryMapped is the StrategyMemoryMapped terminal.
func MemoryMapped() ReadingStrategy { return ReadingStrategy{kind: StrategyMemoryMapped} }

// Scenario builds a size-dispatched strategy. Each rule's Strategy must be
// non-Scenario (one-level nesting only); validated by validateStrategy.
func Scenario(rules ...ScenarioRule) ReadingStrategy {
	cp := make([]ScenarioRule, len(rules))
	copy(cp, rules)
	return ReadingStrategy{kind: StrategyScenario, scenario: cp}
}

// validateStrategy enforces the one-level-nesting rule: a Scenario strategy
// may not contain another Scenario. Called at Options-build time.
func validateStrategy(s ReadingStrategy) error {
	if s.kind != StrategyScenario {
		return nil
	}
	for _, rule := range s.scenario {
		if rule.Strategy.kind == StrategyScenario {
			return ErrInvalidStrategy
		}
	}
	return nil
}

// Resolve implements the reading-strategy resolver (C4): given a file size,
// returns the concrete non-Scenario strategy to use. For a non-Scenario
// strategy it is returned unchanged. For Scenario, the first range (in
// declared order) containing size wins; if none matches, falls back to
// Buffer.
func Resolve(s ReadingStrategy, size int64) ReadingStrategy {
	if s.kind != StrategyScenario {
		return s
	}
	for _, rule := range s.scenario {
		if rule.Range.contains(size) {
			return rule.Strategy
		}
	}
	return Buffer()
}

// Kind exposes the resolved terminal kind to readers/hashers selecting an
// implementation.
func (s ReadingStrategy) Kind() StrategyKind { return s.kind }
