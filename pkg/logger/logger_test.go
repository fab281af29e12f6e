package logger

import (
	"context"
	"testing"

	"DateServer/config"
	"DateServer/pkg/ctxmeta"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestBuildFallsBackToInfo(t *testing.T) {
	cfg := config.DefaultLoggerConfig()
	cfg.Level = "not-a-level"

	l, err := Build(cfg)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
}

func TestContextFieldsAppended(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	prev := L()
	ReplaceGlobal(zap.New(core))
	t.Cleanup(func() { ReplaceGlobal(prev) })

	ctx := ctxmeta.WithUserID(ctxmeta.WithTraceID(context.Background(), "t-1"), "u-1")
	ctx = ctxmeta.WithConnID(ctx, "c-1")
	Info(ctx, "hello", String("k", "v"))
	Warn(nil, "no ctx")

	entries := logs.All()
	require.Len(t, entries, 2)
	fields := entries[0].ContextMap()
	assert.Equal(t, "t-1", fields["trace_id"])
	assert.Equal(t, "u-1", fields["user_id"])
	assert.Equal(t, "c-1", fields["conn_id"])
	assert.Equal(t, "v", fields["k"])
	assert.NotContains(t, entries[1].ContextMap(), "trace_id")
}

func TestServiceFieldAndNopDefault(t *testing.T) {
	ReplaceGlobal(nil)
	assert.NotPanics(t, func() { Info(context.Background(), "dropped") })

	cfg := config.DefaultLoggerConfig()
	cfg.Service = "connect"
	cfg.OutputPaths = []string{"/nonexistent-dir/x.log"}
	l, err := Build(cfg)
	require.NoError(t, err)
	assert.NotNil(t, l)
}
