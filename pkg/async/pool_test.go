package async

import (
	"context"
	"sync"
	"testing"
	"time"

	"DateServer/config"
	"DateServer/pkg/ctxmeta"
	"DateServer/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func initPool(t *testing.T) {
	t.Helper()
	logger.ReplaceGlobal(zap.NewNop())
	cfg := config.DefaultAsyncConfig()
	cfg.PoolSize = 4
	require.NoError(t, Init(cfg))
	t.Cleanup(func() { _ = Release() })
}

func TestSubmitWithoutInit(t *testing.T) {
	require.NoError(t, Release())
	assert.ErrorIs(t, Submit(func() {}), ErrNotInitialized)
}

func TestRunSafePropagatesTraceAndDetaches(t *testing.T) {
	initPool(t)

	parent, cancel := context.WithCancel(ctxmeta.WithTraceID(context.Background(), "t-1"))
	var wg sync.WaitGroup
	wg.Add(1)

	var gotTrace string
	var gotErr error
	RunSafe(parent, func(ctx context.Context) {
		defer wg.Done()
		gotTrace = ctxmeta.TraceID(ctx)
		gotErr = ctx.Err()
	}, time.Second)
	cancel()
	wg.Wait()

	assert.Equal(t, "t-1", gotTrace)
	assert.NoError(t, gotErr)
}

func TestRunSafeRecoversPanic(t *testing.T) {
	initPool(t)

	done := make(chan struct{})
	RunSafe(context.Background(), func(ctx context.Context) {
		defer close(done)
		panic("boom")
	}, time.Second)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task did not run")
	}

	ok := make(chan struct{})
	require.NoError(t, Submit(func() { close(ok) }))
	<-ok
}
