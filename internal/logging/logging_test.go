package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewWithWriter(t *testing.T) {
	t.Run("JSON形式", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewWithWriter(&buf, Config{Level: "info", Format: "json"})
		logger.Info("✅ 完了", slog.String("run_id", "r1"))
		assert.Contains(t, buf.String(), `"run_id":"r1"`)
	})

	t.Run("レベル未満は出力しない", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewWithWriter(&buf, Config{Level: "warn"})
		logger.Info("info")
		assert.Empty(t, buf.String())
		logger.Warn("warn")
		assert.Contains(t, buf.String(), "warn")
	})
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
	assert.NotNil(t, OrDiscard(nil))
}
