package eventbus

import (
	"errors"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLoggerAdapter_WithAndError(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	adapter := NewZapLoggerAdapter(zap.New(core)).With(watermill.LogFields{"topic": HitsTopic})

	adapter.Error("publish failed", errors.New("closed"), watermill.LogFields{"message_id": "m-1"})

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.ErrorLevel, entry.Level)
	assert.Equal(t, "publish failed", entry.Message)
	fields := entry.ContextMap()
	assert.Equal(t, HitsTopic, fields["topic"])
	assert.Equal(t, "m-1", fields["message_id"])
	assert.Equal(t, "closed", fields["error"])
}

func TestZapLoggerAdapter_Levels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	adapter := NewZapLoggerAdapter(zap.New(core))

	adapter.Info("info", nil)
	adapter.Debug("debug", nil)
	adapter.Trace("trace", nil)

	require.Equal(t, 3, logs.Len())
	assert.Equal(t, zapcore.InfoLevel, logs.All()[0].Level)
	assert.Equal(t, zapcore.DebugLevel, logs.All()[1].Level)
	assert.Equal(t, zapcore.DebugLevel, logs.All()[2].Level)
}

func TestZapLoggerAdapter_WithDoesNotMutateParent(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	parent := NewZapLoggerAdapter(zap.New(core))
	_ = parent.With(watermill.LogFields{"child": true})

	parent.Info("parent", nil)

	require.Equal(t, 1, logs.Len())
	assert.NotContains(t, logs.All()[0].ContextMap(), "child")
}
