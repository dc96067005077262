package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedZap(t *testing.T) (*ZapLogger, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	return NewZapLogger(zap.New(core)), logs
}

func TestZapLogger_LevelsAndFields(t *testing.T) {
	log, logs := newObservedZap(t)
	ctx := context.Background()

	log.Debug(ctx, "dbg", "a", 1)
	log.Info(ctx, "inf", "b", 2)
	log.Warn(ctx, "wrn", "c", 3)
	log.Error(ctx, "err", "d", 4)

	entries := logs.AllUntimed()
	require.Len(t, entries, 4)

	wantLevels := []zapcore.Level{zapcore.DebugLevel, zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel}
	wantKeys := []string{"a", "b", "c", "d"}
	for i, e := range entries {
		assert.Equal(t, wantLevels[i], e.Level)
		assert.Contains(t, e.ContextMap(), wantKeys[i])
	}
}

func TestZapLogger_With(t *testing.T) {
	log, logs := newObservedZap(t)

	log.With("module", "engine").Info(context.Background(), "hello", "k", "v")

	entries := logs.FilterMessage("hello").AllUntimed()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "engine", fields["module"])
	assert.Equal(t, "v", fields["k"])
}

func TestNew_Backends(t *testing.T) {
	l, err := New(Config{Backend: BackendSlog, Level: "debug", Format: FormatConsole}, nil)
	require.NoError(t, err)
	assert.IsType(t, &SlogLogger{}, l)

	l, err = New(Config{Backend: BackendZap, Level: "info", Format: FormatJSON}, nil)
	require.NoError(t, err)
	assert.IsType(t, &ZapLogger{}, l)

	_, err = New(Config{Backend: "logrus"}, nil)
	require.Error(t, err)

	_, err = New(Config{Backend: BackendSlog, Level: "loud"}, nil)
	require.Error(t, err)
}
