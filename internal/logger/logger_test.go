package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLogUsableBeforeInit(t *testing.T) {
	require.NotNil(t, Log)
	Log.Info("no-op")
}

func TestSetLevel(t *testing.T) {
	defer level.SetLevel(zapcore.InfoLevel)

	require.NoError(t, SetLevel("debug"))
	assert.Equal(t, zapcore.DebugLevel, level.Level())

	require.NoError(t, SetLevel("warn"))
	assert.Equal(t, zapcore.WarnLevel, level.Level())

	assert.Error(t, SetLevel("loud"))
	assert.Equal(t, zapcore.WarnLevel, level.Level())
}

func TestInitWithProduction(t *testing.T) {
	require.NoError(t, InitWith(false))
	assert.NotNil(t, Log)
}
