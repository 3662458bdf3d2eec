package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/ecoquest/ecoquest-engine/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		" WARN ":  zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), in)
	}
}

func TestBuild_FiltersByLevelAndWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := build(config.LogConfig{Level: "warn"}, zapcore.AddSync(&buf))
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("storage write failed")
	require.NoError(t, logger.Sync())

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "storage write failed", line["msg"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestBuild_RollingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "ecoquest.log")

	var buf bytes.Buffer
	logger, err := build(config.LogConfig{Level: "info", Path: path}, zapcore.AddSync(&buf))
	require.NoError(t, err)

	logger.Info("session started")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "session started")
	assert.Contains(t, buf.String(), "session started")
}
