package telemetry

import (
	"context"
	"testing"

	"github.com/botforce/unity/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLoggerProvider_Disabled(t *testing.T) {
	ctx := context.Background()

	for name, cfg := range map[string]config.TelemetryConfig{
		"telemetry off": {Enabled: false, LogsEnabled: true},
		"logs off":      {Enabled: true, LogsEnabled: false},
	} {
		t.Run(name, func(t *testing.T) {
			lp, err := NewLoggerProvider(ctx, cfg, zaptest.NewLogger(t))
			require.NoError(t, err)
			assert.False(t, lp.IsEnabled())
			assert.False(t, lp.Core(zapcore.InfoLevel).Enabled(zapcore.ErrorLevel))
			assert.NoError(t, lp.Shutdown(ctx))
		})
	}
}

func TestLoggerProvider_NilCore(t *testing.T) {
	var lp *LoggerProvider
	assert.False(t, lp.Core(zapcore.InfoLevel).Enabled(zapcore.ErrorLevel))
}

func TestLevelFilterCore(t *testing.T) {
	inner, logs := observer.New(zapcore.DebugLevel)
	core := &levelFilterCore{Core: inner, minLevel: zapcore.WarnLevel}

	assert.False(t, core.Enabled(zapcore.InfoLevel))
	assert.True(t, core.Enabled(zapcore.ErrorLevel))

	withField := core.With([]zapcore.Field{{Key: "k", Type: zapcore.StringType, String: "v"}})
	for _, lvl := range []zapcore.Level{zapcore.DebugLevel, zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel} {
		entry := zapcore.Entry{Level: lvl, Message: lvl.String()}
		if ce := withField.Check(entry, nil); ce != nil {
			ce.Write()
		}
	}

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "warn", logs.All()[0].Message)
	assert.Equal(t, "v", logs.All()[0].ContextMap()["k"])
}
