package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitSelectsLevelByEnv(t *testing.T) {
	t.Cleanup(func() { Set(nil) })

	require.NoError(t, Init("test"))
	assert.True(t, L().Core().Enabled(zapcore.DebugLevel))

	require.NoError(t, Init("production"))
	assert.False(t, L().Core().Enabled(zapcore.DebugLevel))
	assert.True(t, L().Core().Enabled(zapcore.InfoLevel))
}

func TestHelpersWriteToGlobalLogger(t *testing.T) {
	t.Cleanup(func() { Set(nil) })

	core, logs := observer.New(zapcore.InfoLevel)
	Set(zap.New(core))

	Info("started", zap.String("address", ":8080"))
	Warn("slow")
	Error("failed")

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "started", entries[0].Message)
	assert.Equal(t, ":8080", entries[0].ContextMap()["address"])
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)

	Set(nil)
	assert.NotNil(t, L())
}
