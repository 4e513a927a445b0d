package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapWrapper_FieldsReachCore(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core)).WithFields(map[string]interface{}{"form": "signin"})

	log.Debug("field changed", map[string]interface{}{"field": "username", "valid": true})
	log.WithError(errors.New("boom")).Error("submit failed", nil)

	entries := logs.AllUntimed()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, "field changed", entries[0].Message)
		ctx := entries[0].ContextMap()
		assert.Equal(t, "signin", ctx["form"])
		assert.Equal(t, "username", ctx["field"])
		assert.Equal(t, true, ctx["valid"])
		assert.Equal(t, "boom", entries[1].ContextMap()["error"])
	}
}

func TestZapWrapper_ErrorValuesAreNamed(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	NewZapAdapter(zap.New(core)).Warn("send failed", map[string]interface{}{"cause": errors.New("smtp down")})

	entries := logs.AllUntimed()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "smtp down", entries[0].ContextMap()["cause"])
	}
}

func TestNew_Levels(t *testing.T) {
	assert.True(t, New("debug", "console").Core().Enabled(zapcore.DebugLevel))
	assert.False(t, New("warn", "json").Core().Enabled(zapcore.InfoLevel))
	assert.True(t, New("", "json").Core().Enabled(zapcore.InfoLevel))
	assert.False(t, New("error", "json", "stderr").Core().Enabled(zapcore.WarnLevel))
	assert.True(t, New("verbose", "console").Core().Enabled(zapcore.InfoLevel))
}

func TestRedactValues(t *testing.T) {
	out := RedactValues(
		map[string]string{"username": "abcd1", "password": "hunter22"},
		map[string]bool{"password": true},
	)
	assert.Equal(t, "abcd1", out["username"])
	assert.Equal(t, Redacted, out["password"])
}

func TestNoOpAndTestLoggers(t *testing.T) {
	assert.NotPanics(t, func() {
		NewNoOpLogger().With(map[string]interface{}{"a": 1}).Info("x", nil)
		NewTestLogger(t).Warn("y", map[string]interface{}{"b": 2})
	})
}
