package logging

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"garagesite/pkg/apperr"
)

func TestNew(t *testing.T) {
	l, err := New("debug", "production")
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	l, err = New("nonsense", "development")
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, zapcore.InfoLevel, LevelFor(apperr.Validation("bad", nil)))
	assert.Equal(t, zapcore.WarnLevel, LevelFor(apperr.Network("down", nil)))
	assert.Equal(t, zapcore.ErrorLevel, LevelFor(apperr.Server("email", nil)))
	assert.Equal(t, zapcore.ErrorLevel, LevelFor(errors.New("plain")))
}

func TestLogError(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	LogError(zap.New(core), "captcha rejected", apperr.Authorization("low score", nil), zap.String("route", "/api/lead"))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	assert.Equal(t, "authorization", entry.ContextMap()["kind"])
	assert.Equal(t, "/api/lead", entry.ContextMap()["route"])
}
