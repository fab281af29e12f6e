package mq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"DateServer/pkg/ctxmeta"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRedis struct {
	calls [][]interface{}
	err   error
	pipe  redis.Pipeliner
}

func (f *fakeRedis) Do(ctx context.Context, args ...interface{}) *redis.Cmd {
	f.calls = append(f.calls, args)
	cmd := redis.NewCmd(ctx, args...)
	if f.err != nil {
		cmd.SetErr(f.err)
	}
	return cmd
}

func (f *fakeRedis) Pipeline() redis.Pipeliner { return f.pipe }

func TestBuildDelTaskWithContext(t *testing.T) {
	ctx := ctxmeta.WithUserID(ctxmeta.WithTraceID(context.Background(), "t-1"), "u-1")

	task := BuildDelTask("user:card:1").WithContext(ctx).WithError(errors.New("timeout")).WithSource("card-cache")

	assert.Equal(t, CmdSimple, task.Type)
	assert.Equal(t, "del", task.Command)
	assert.Equal(t, "t-1", task.TraceID)
	assert.Equal(t, "u-1", task.UserID)
	assert.Equal(t, "timeout", task.OriginalErr)
	assert.Equal(t, "user:card:1", task.Key())
	assert.Equal(t, defaultMaxRetries, task.MaxRetries)
}

func TestBuildSetTaskTTL(t *testing.T) {
	task := BuildSetTask("k", "v", 90*time.Second)
	assert.Equal(t, []interface{}{"k", "v", "EX", 90}, task.Args)
}

func TestExecuteSimple(t *testing.T) {
	r := &fakeRedis{}
	require.NoError(t, execute(context.Background(), r, BuildDelTask("a", "b")))
	assert.Equal(t, [][]interface{}{{"del", "a", "b"}}, r.calls)

	r = &fakeRedis{err: redis.Nil}
	assert.NoError(t, execute(context.Background(), r, BuildDelTask("a")), "redis.Nil is not a failure")

	r = &fakeRedis{err: errors.New("conn refused")}
	assert.Error(t, execute(context.Background(), r, BuildDelTask("a")))

	assert.Error(t, execute(context.Background(), r, RedisTask{Type: "bogus"}))
}

func TestExecutePipeline(t *testing.T) {
	// 指向不可达地址，Exec 必然失败
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 100 * time.Millisecond})
	defer client.Close()

	task := BuildPipelineTask([]RedisCmd{
		{Command: "DEL", Args: []interface{}{"auth:session:u-1"}},
		{Command: "del", Args: []interface{}{"user:otp:a@b.c:1"}},
	})
	assert.Equal(t, CmdPipeline, task.Type)
	assert.Len(t, task.PipelineCmds, 2)
	assert.Error(t, execute(context.Background(), &fakeRedis{pipe: client.Pipeline()}, task))

	assert.NoError(t, execute(context.Background(), &fakeRedis{pipe: client.Pipeline()}, BuildPipelineTask(nil)))
}

func TestNextAttempt(t *testing.T) {
	task := BuildDelTask("a").WithMaxRetries(2)
	boom := errors.New("boom")

	next, ok := nextAttempt(task, boom)
	require.True(t, ok)
	assert.Equal(t, 1, next.RetryCount)
	assert.Equal(t, "boom", next.OriginalErr)

	next, ok = nextAttempt(next, boom)
	require.True(t, ok)
	assert.Equal(t, 2, next.RetryCount)

	_, ok = nextAttempt(next, boom)
	assert.False(t, ok)
}

func TestSendRedisTaskWithoutProducer(t *testing.T) {
	SetGlobalProducer(nil)
	assert.ErrorIs(t, SendRedisTask(context.Background(), BuildDelTask("a")), ErrProducerNotReady)
}

func TestRoomEventWireFormat(t *testing.T) {
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	ev := NewMessageEvent("1_2", "2", "1", "hi", ts)

	raw, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "newMessage",
		"room": "1_2",
		"data": {
			"sender": {"_id": "2"},
			"receiver": {"_id": "1"},
			"content": "hi",
			"timestamp": "2024-05-01T10:00:00Z"
		}
	}`, string(raw))
}
