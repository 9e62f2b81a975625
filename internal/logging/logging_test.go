package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestLevel(t *testing.T) {
	assert.Equal(t, zapcore.InfoLevel, Options{}.Level())
	assert.Equal(t, zapcore.DebugLevel, Options{Verbose: true, Quiet: true}.Level())
	assert.Equal(t, zapcore.WarnLevel, Options{Quiet: true}.Level())
}

func TestNew_JSON(t *testing.T) {
	var b bytes.Buffer
	log := New(&b, Options{JSON: true})
	log.Debug("hidden")
	log.Info("run finished", zap.Int("molecules", 6))
	require.NoError(t, log.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(b.Bytes(), &entry))
	assert.Equal(t, "run finished", entry["msg"])
	assert.Equal(t, float64(6), entry["molecules"])
	assert.NotContains(t, b.String(), "hidden")
}

func TestNew_QuietConsole(t *testing.T) {
	var b bytes.Buffer
	log := New(&b, Options{Quiet: true})
	log.Info("chatty")
	log.Warn("careful")
	assert.NotContains(t, b.String(), "chatty")
	assert.Contains(t, b.String(), "WARN")
	assert.Contains(t, b.String(), "careful")
}
