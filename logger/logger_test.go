package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snpmix.log")

	l, err := New("info", "json", path)
	require.NoError(t, err)

	l.Debug("hidden")
	l.Info("cutoff finished", zap.Int("cutoff", 5))
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"cutoff finished"`)
	assert.Contains(t, string(data), `"cutoff":5`)
	assert.NotContains(t, string(data), "hidden")
}

func TestNewRejectsBadSettings(t *testing.T) {
	_, err := New("loud", "json", "stderr")
	assert.Error(t, err)

	_, err = New("info", "xml", "stderr")
	assert.Error(t, err)
}

func TestInit(t *testing.T) {
	defer func(l *zap.Logger) { Log = l }(Log)

	require.NoError(t, Init("warn", "console", "stderr"))
	assert.False(t, Log.Core().Enabled(zap.InfoLevel))
	assert.True(t, Log.Core().Enabled(zap.WarnLevel))
}
