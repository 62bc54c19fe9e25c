package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLoggerWritesKeyValues(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewZapLogger(zap.New(core))

	logger.Debug("debug line", "k", 1)
	logger.Info("info line", "user_id", "u-1")
	logger.Warn("warn line")
	logger.Error("error line", "error", "boom")

	entries := logs.All()
	require.Len(t, entries, 4)
	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
	assert.Equal(t, "info line", entries[1].Message)
	assert.Equal(t, "u-1", entries[1].ContextMap()["user_id"])
	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
}

func TestNewZapLoggerNilFallsBack(t *testing.T) {
	assert.IsType(t, defLogger{}, NewZapLogger(nil))
	assert.IsType(t, defLogger{}, normalizeLogger(nil))
}

func TestNewZapProduction(t *testing.T) {
	z, err := NewZapProduction("debug", "json")
	require.NoError(t, err)
	assert.True(t, z.Core().Enabled(zapcore.DebugLevel))

	z, err = NewZapProduction("bogus", "console")
	require.NoError(t, err)
	assert.False(t, z.Core().Enabled(zapcore.DebugLevel))
}

func TestFormatLine(t *testing.T) {
	assert.Equal(t, "hello user_id=u-1\n", formatLine("hello", "user_id", "u-1"))
}
