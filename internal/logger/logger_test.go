package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reset(t *testing.T) {
	t.Cleanup(func() {
		_ = Close()
		Logger = nil
	})
}

func TestInitWritesLogFile(t *testing.T) {
	reset(t)
	configDir := filepath.Join(t.TempDir(), "config")
	require.NoError(t, Init(Config{ConfigDir: configDir}))
	require.NotNil(t, Logger)
	assert.Equal(t, log.InfoLevel, Logger.GetLevel())

	Debug("hidden")
	Info("habit completed", "id", "h1")
	require.NoError(t, Close())

	data, err := os.ReadFile(filepath.Join(configDir, "logs", "habitual.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "habit completed")
	assert.False(t, strings.Contains(string(data), "hidden"))
}

func TestInitDebugMode(t *testing.T) {
	reset(t)
	require.NoError(t, Init(Config{Debug: true, ConfigDir: t.TempDir()}))
	assert.Equal(t, log.DebugLevel, Logger.GetLevel())
}

func TestHelpersBeforeInit(t *testing.T) {
	reset(t)
	Logger = nil
	assert.NotPanics(t, func() {
		Debug("d")
		Info("i")
		Warn("w")
		Error("e")
		For("state").Info("discarded")
	})
	assert.NoError(t, Close())
}

func TestForTagsComponent(t *testing.T) {
	reset(t)
	configDir := t.TempDir()
	require.NoError(t, Init(Config{ConfigDir: configDir}))
	For("state").Info("sweep finished")
	require.NoError(t, Close())

	data, err := os.ReadFile(filepath.Join(configDir, "logs", "habitual.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "component=state")
}
