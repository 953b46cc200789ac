package log

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilteringHandlerKeepsEnabledSections(t *testing.T) {
	buf := &bytes.Buffer{}
	opts := &slog.HandlerOptions{Level: slog.LevelDebug}
	logger := slog.New(&filteringHandler{underlying: slog.NewTextHandler(buf, opts)})
	SetSections([]string{"resolve"})
	defer SetSections([]string{"check", "project"})

	logger.With("section", "resolve").Debug("kept")
	logger.With("section", "match").Debug("dropped")
	logger.Debug("also kept", "section", "resolve.vid")
	logger.With("section", "match").Warn("warnings always pass")

	out := buf.String()
	assert.Contains(t, out, "kept")
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, "also kept")
	assert.Contains(t, out, "warnings always pass")
}
