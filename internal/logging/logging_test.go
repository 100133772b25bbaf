package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestLevelFromString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want slog.Level
	}{
		{"error", slog.LevelError},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{" info ", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{"", slog.LevelDebug},
		{"nonsense", slog.LevelDebug},
	}

	for _, tt := range tests {
		if got := levelFromString(tt.in); got != tt.want {
			t.Errorf("levelFromString(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewWithFileCreatesLogFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "logs", "run.log")
	logger := NewWithFile("info", path)
	logger.Info("hello")

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if len(raw) == 0 {
		t.Error("log file is empty")
	}
}
