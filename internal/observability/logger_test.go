package observability

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/chargesim/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(config.LoggingConfig{Level: "debug", Format: "console"}, zapcore.AddSync(&buf))
	require.NoError(t, err)

	logger.Named("scene").Debug("added particle", zap.Uint64("id", 3))
	require.NoError(t, logger.Sync())

	out := buf.String()
	assert.Contains(t, out, "DEBUG")
	assert.Contains(t, out, colorBlue)
	assert.Contains(t, out, "chargesim.scene.")
	assert.Contains(t, out, "added particle")
	assert.Contains(t, out, `"id": 3`)
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(config.LoggingConfig{Level: "info", Format: "json"}, zapcore.AddSync(&buf))
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("particle system reset", zap.Int("particles", 2))
	require.NoError(t, logger.Sync())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1, "debug entries should be filtered at info level")

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "particle system reset", entry["msg"])
	assert.Equal(t, "chargesim", entry["logger"])
	assert.EqualValues(t, 2, entry["particles"])
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chargesim.log")
	logger, err := New(config.LoggingConfig{Level: "info", File: path, MaxSizeMB: 1}, nil)
	require.NoError(t, err)

	logger.Warn("dragged particle vanished")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"dragged particle vanished"`)
	assert.Contains(t, string(data), `"level":"WARN"`)
}

func TestNew_NoOutputs(t *testing.T) {
	logger, err := New(config.LoggingConfig{}, nil)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zap.ErrorLevel))
}

func TestNew_BadLevel(t *testing.T) {
	_, err := New(config.LoggingConfig{Level: "loud"}, nil)
	assert.Error(t, err)
}

func TestSync_Nil(t *testing.T) {
	assert.NotPanics(t, func() { Sync(nil) })
	assert.NotPanics(t, func() { Sync(Nop()) })
}
