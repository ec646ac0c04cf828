package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/phrazzld/asyncq/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLevels(t *testing.T) {
	tests := []struct {
		level      string
		debugShown bool
		infoShown  bool
		errorShown bool
	}{
		{"debug", true, true, true},
		{"info", false, true, true},
		{"warn", false, false, true},
		{"error", false, false, true},
		{"DEBUG", true, true, true},     // case-insensitive
		{"nonsense", false, true, true}, // falls back to info
	}

	for _, tc := range tests {
		t.Run(tc.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger, err := setup(config.Config{Capacity: 1, LogLevel: tc.level}, &buf)
			require.NoError(t, err)
			require.NotNil(t, logger)

			logger.Debug("debug line")
			logger.Info("info line")
			logger.Error("error line")

			out := buf.String()
			assert.Equal(t, tc.debugShown, bytes.Contains(buf.Bytes(), []byte("debug line")), out)
			assert.Equal(t, tc.infoShown, bytes.Contains(buf.Bytes(), []byte("info line")), out)
			assert.Equal(t, tc.errorShown, bytes.Contains(buf.Bytes(), []byte("error line")), out)
		})
	}
}

func TestSetupEmitsJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := setup(config.Config{Capacity: 1, LogLevel: "info"}, &buf)
	require.NoError(t, err)

	logger.Info("structured", "task_id", "abc")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "structured", record["msg"])
	assert.Equal(t, "abc", record["task_id"])
}
