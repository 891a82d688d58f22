package app

import (
	"context"
	"log/slog"
	"testing"
)

func TestNewLoggerHonoursLevel(t *testing.T) {
	logger := NewLogger(&Config{LogFormat: "json", LogLevel: "error"})
	if logger.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("info should be suppressed at error level")
	}
	if !logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("error level should be enabled")
	}

	logger = NewLogger(&Config{LogLevel: "nonsense"})
	if !logger.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("unknown level should fall back to info")
	}
}
