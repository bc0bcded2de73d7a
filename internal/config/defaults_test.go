package config

import "testing"

func TestDefaultProfile(t *testing.T) {
	p := DefaultProfile()

	if p.ThreadsOrDefault() <= 0 {
		t.Errorf("Threads = %d, want > 0", p.ThreadsOrDefault())
	}
	if p.Tolerance != "log_errors" {
		t.Errorf("Tolerance = %q, want log_errors", p.Tolerance)
	}
	if p.Hasher != "blake3" {
		t.Errorf("Hasher = %q, want blake3", p.Hasher)
	}
	if p.Strategy != "buffer" {
		t.Errorf("Strategy = %q, want buffer", p.Strategy)
	}
	if p.Format != "hex" {
		t.Errorf("Format = %q, want hex", p.Format)
	}
	if len(p.Exclude) == 0 {
		t.Error("Exclude should not be empty")
	}
}

func TestDefaultProfileReturnsFreshCopy(t *testing.T) {
	a := DefaultProfile()
	a.Exclude[0] = "mutated"

	b := DefaultProfile()
	if b.Exclude[0] == "mutated" {
		t.Error("DefaultProfile shares backing array across calls")
	}
}
