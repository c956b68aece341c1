package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLoggerWithWritersFansOut(t *testing.T) {
	var stderr, file bytes.Buffer
	logger := SetupLoggerWithWriters(&stderr, &file, slog.LevelInfo)

	logger.Info("session restored", "chat_id", 7)

	assert.Contains(t, stderr.String(), "level=INFO")
	assert.Contains(t, stderr.String(), "session restored")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(file.Bytes(), &entry))
	assert.Equal(t, "session restored", entry["msg"])
	assert.Equal(t, float64(7), entry["chat_id"])
}

func TestSetupLoggerWithWritersRespectsLevel(t *testing.T) {
	var stderr, file bytes.Buffer
	logger := SetupLoggerWithWriters(&stderr, &file, slog.LevelWarn)

	logger.Debug("request finished")
	logger.Info("request finished")

	assert.Empty(t, stderr.String())
	assert.Empty(t, file.String())

	logger.Warn("request slow")

	assert.Contains(t, stderr.String(), "request slow")
	assert.Equal(t, 1, strings.Count(file.String(), "\n"), "one JSON line per record")
}
