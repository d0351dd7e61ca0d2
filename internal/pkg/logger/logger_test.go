package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/qs3c/predict_admin_server/config"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("WARN"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel(" error "))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel(""))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("verbose"))
}

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "predict.log")

	log := New(&config.LogConfig{Level: "info", File: path, JSON: true})
	log.Info("daily summary finished", zap.Int("topics", 4))
	log.Debug("not written")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "daily summary finished")
	assert.Contains(t, string(data), `"topics":4`)
	assert.NotContains(t, string(data), "not written")
}

func TestNew_ConsoleOnly(t *testing.T) {
	log := New(&config.LogConfig{Level: "debug"})
	require.NotNil(t, log)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))
}
