package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, slog.LevelWarn)

	logger.Info("hidden", "k", "v")
	assert.Zero(t, buf.Len())

	logger.Warn("settlement computed", "group_id", "g1")
	out := buf.String()
	assert.Contains(t, out, "settlement computed")
	assert.Contains(t, out, "group_id=g1")
	assert.NotContains(t, out, "\x1b[", "no color codes outside a terminal")
}

func TestDiscard(t *testing.T) {
	Discard().Error("nothing to see")
}
