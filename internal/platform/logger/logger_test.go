package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromStrings(t *testing.T) {
	tests := []struct {
		level      string
		format     string
		wantLevel  slog.Level
		wantFormat string
	}{
		{"debug", "text", slog.LevelDebug, "text"},
		{"WARN", "json", slog.LevelWarn, "json"},
		{"error", "", slog.LevelError, "json"},
		{"verbose", "TEXT", slog.LevelInfo, "text"},
	}

	for _, tt := range tests {
		cfg := FromStrings(tt.level, tt.format)
		assert.Equal(t, tt.wantLevel, cfg.Level, tt.level)
		assert.Equal(t, tt.wantFormat, cfg.Format, tt.format)
	}
}

func TestNew_WritesJSON(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Output = &buf

	log := New(cfg)
	log.Debug("hidden")
	log.Info("retrieval completed", "strategy", "keyword")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "retrieval completed", entry["msg"])
	assert.Equal(t, "keyword", entry["strategy"])
	assert.Same(t, log, slog.Default())
}
