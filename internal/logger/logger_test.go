package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("info"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer

	log := NewLoggerWithWriter("warn", &buf)
	log.Info("hidden")
	log.Warn("document skipped", "path", "a.rdf")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "document skipped")
	assert.Contains(t, out, "path=a.rdf")
}

func TestLogger_WithKeepsLevel(t *testing.T) {
	var buf bytes.Buffer

	log := NewLoggerWithWriter("info", &buf)
	child := log.With("source", "chicago")

	child.Debug("row dropped")
	child.Info("extracted rows")

	out := buf.String()
	assert.NotContains(t, out, "row dropped")
	assert.Contains(t, out, "source=chicago")
	assert.Contains(t, out, "extracted rows")
}

func TestLogger_Log(t *testing.T) {
	var buf bytes.Buffer

	log := NewLoggerWithWriter("warn", &buf)
	log.Log(context.Background(), slog.LevelInfo, "quiet run")
	log.Log(context.Background(), slog.LevelWarn, "run finished with skipped documents", "failed", 2)

	out := buf.String()
	assert.NotContains(t, out, "quiet run")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "failed=2")
}
