package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewRespectsLevel(t *testing.T) {
	l, err := New("production", "warn")
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zap.InfoLevel))
	assert.True(t, l.Core().Enabled(zap.WarnLevel))

	l, err = New("development", "debug")
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zap.DebugLevel))
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New("development", "loud")
	assert.Error(t, err)
}

func TestZapLoggerForwardsToSugar(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	var l Logger = NewZapLogger(zap.New(core).Sugar())

	l.Infof("checkin saved for %s", "user-1")
	l.Debugf("dropped at info level")
	l.Warn("slow query")

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "checkin saved for user-1", logs.All()[0].Message)
	assert.Equal(t, zap.WarnLevel, logs.All()[1].Level)
}
