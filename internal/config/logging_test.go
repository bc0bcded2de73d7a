package config

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestResolveLogLevel(t *testing.T) {
	tests := []struct {
		name           string
		debugEnv       string
		verbose, quiet bool
		want           slog.Level
	}{
		{"default", "", false, false, slog.LevelInfo},
		{"verbose", "", true, false, slog.LevelDebug},
		{"quiet", "", false, true, slog.LevelError},
		{"verbose wins over quiet", "", true, true, slog.LevelDebug},
		{"debug env wins over all", "1", false, true, slog.LevelDebug},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DIRSUM_DEBUG", tt.debugEnv)
			if got := ResolveLogLevel(tt.verbose, tt.quiet); got != tt.want {
				t.Errorf("ResolveLogLevel(%v, %v) = %v, want %v", tt.verbose, tt.quiet, got, tt.want)
			}
		})
	}
}

func TestResolveLogFormat(t *testing.T) {
	t.Setenv("DIRSUM_LOG_FORMAT", "JSON")
	if got := ResolveLogFormat(); got != "json" {
		t.Errorf("ResolveLogFormat() = %q, want json", got)
	}

	t.Setenv("DIRSUM_LOG_FORMAT", "")
	if got := ResolveLogFormat(); got != "text" {
		t.Errorf("ResolveLogFormat() = %q, want text", got)
	}
}

func TestSetupLoggingWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	SetupLoggingWithWriter(slog.LevelInfo, "json", &buf)
	slog.Default().Info("hello")

	if !strings.Contains(buf.String(), `"msg":"hello"`) {
		t.Errorf("expected JSON log output, got %q", buf.String())
	}
}

func TestNewLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	SetupLoggingWithWriter(slog.LevelInfo, "text", &buf)

	logger := NewLogger("hashpool")
	logger.Info("absorbing")

	if !strings.Contains(buf.String(), "component=hashpool") {
		t.Errorf("expected component attribute in output, got %q", buf.String())
	}
}
