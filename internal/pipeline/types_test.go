package pipeline

import (
	"encoding/json"
	"testing"
)

func TestExitCodeConstants(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		code ExitCode
		want int
	}{
		{name: "ExitSuccess is 0", code: ExitSuccess, want: 0},
		{name: "ExitError is 1", code: ExitError, want: 1},
		{name: "ExitPartial is 2", code: ExitPartial, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if int(tt.code) != tt.want {
				t.Errorf("got %d, want %d", int(tt.code), tt.want)
			}
		})
	}
}

func TestResult_ZeroValue(t *testing.T) {
	t.Parallel()

	var r Result

	if r.Digest != nil {
		t.Errorf("zero-value Digest = %v, want nil", r.Digest)
	}
	if r.Encoded != "" {
		t.Errorf("zero-value Encoded = %q, want empty", r.Encoded)
	}
	if r.FilesHashed != 0 {
		t.Errorf("zero-value FilesHashed = %d, want 0", r.FilesHashed)
	}
	if r.Ignored != nil {
		t.Errorf("zero-value Ignored = %v, want nil", r.Ignored)
	}
}

func TestIgnoredSummary_JSONRoundTrip(t *testing.T) {
	t.Parallel()

	r := Result{
		Digest:      []byte{0xde, 0xad, 0xbe, 0xef},
		Encoded:     "deadbeef",
		FilesHashed: 3,
		Ignored: []IgnoredSummary{
			{Path: "node_modules/pkg/index.js", Reason: "excluded"},
			{Path: "bin/tool", Reason: "permission_denied"},
		},
	}

	data, err := json.Marshal(r.Ignored)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var got []IgnoredSummary
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if len(got) != len(r.Ignored) {
		t.Fatalf("len = %d, want %d", len(got), len(r.Ignored))
	}
	for i, ig := range r.Ignored {
		if got[i].Path != ig.Path {
			t.Errorf("Ignored[%d].Path = %q, want %q", i, got[i].Path, ig.Path)
		}
		if got[i].Reason != ig.Reason {
			t.Errorf("Ignored[%d].Reason = %q, want %q", i, got[i].Reason, ig.Reason)
		}
	}
}
