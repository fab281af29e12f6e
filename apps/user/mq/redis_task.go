package mq

import (
	"context"
	"time"

	"DateServer/pkg/ctxmeta"
)

// ==================== Redis 任务定义 ====================

type CommandType string

const (
	CmdSimple   CommandType = "simple"   // Set, Del ...
	CmdPipeline CommandType = "pipeline" // 批量操作
)

// defaultMaxRetries 任务默认最多重试次数
const defaultMaxRetries = 3

// RedisTask 写入 Redis 失败后投递到 Kafka 的补偿任务
type RedisTask struct {
	Type CommandType `json:"type"`

	// 普通命令 (如 DEL key)
	Command string        `json:"command,omitempty"`
	Args    []interface{} `json:"args,omitempty"`

	// Pipeline (一组命令)
	PipelineCmds []RedisCmd `json:"pipeline_cmds,omitempty"`

	// 元数据（用于追踪和重试控制）
	TraceID     string    `json:"trace_id,omitempty"`
	UserID      string    `json:"user_id,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	RetryCount  int       `json:"retry_count"`      // 已重试次数
	MaxRetries  int       `json:"max_retries"`      // 最大重试次数
	OriginalErr string    `json:"original_err"`     // 原始错误信息
	Source      string    `json:"source,omitempty"` // 操作来源
}

type RedisCmd struct {
	Command string        `json:"command"`
	Args    []interface{} `json:"args"`
}

// ==================== 构造器函数 ====================

// BuildDelTask 构造一个 DEL 任务
func BuildDelTask(keys ...string) RedisTask {
	args := make([]interface{}, 0, len(keys))
	for _, k := range keys {
		args = append(args, k)
	}
	return RedisTask{
		Type:       CmdSimple,
		Command:    "del",
		Args:       args,
		Timestamp:  time.Now(),
		MaxRetries: defaultMaxRetries,
	}
}

// BuildSetTask 构造一个 SET 任务
func BuildSetTask(key string, val interface{}, ttl time.Duration) RedisTask {
	args := []interface{}{key, val}
	if ttl > 0 {
		args = append(args, "EX", int(ttl.Seconds()))
	}
	return RedisTask{
		Type:       CmdSimple,
		Command:    "set",
		Args:       args,
		Timestamp:  time.Now(),
		MaxRetries: defaultMaxRetries,
	}
}

// BuildPipelineTask 构造一个 Pipeline 任务
func BuildPipelineTask(cmds []RedisCmd) RedisTask {
	return RedisTask{
		Type:         CmdPipeline,
		PipelineCmds: cmds,
		Timestamp:    time.Now(),
		MaxRetries:   defaultMaxRetries,
	}
}

// ==================== 链式方法 ====================

// WithContext 为任务添加追踪信息
func (t RedisTask) WithContext(ctx context.Context) RedisTask {
	t.TraceID = ctxmeta.TraceID(ctx)
	t.UserID = ctxmeta.UserID(ctx)
	return t
}

// WithError 为任务添加错误信息
func (t RedisTask) WithError(err error) RedisTask {
	if err != nil {
		t.OriginalErr = err.Error()
	}
	return t
}

// WithSource 为任务添加来源信息
func (t RedisTask) WithSource(source string) RedisTask {
	t.Source = source
	return t
}

// WithMaxRetries 设置最大重试次数
func (t RedisTask) WithMaxRetries(maxRetries int) RedisTask {
	t.MaxRetries = maxRetries
	return t
}

// Key 任务的分区键：同一个 Redis key 的补偿任务落在同一分区，保证顺序
func (t RedisTask) Key() string {
	if t.Type == CmdSimple && len(t.Args) > 0 {
		if k, ok := t.Args[0].(string); ok {
			return k
		}
	}
	if len(t.PipelineCmds) > 0 && len(t.PipelineCmds[0].Args) > 0 {
		if k, ok := t.PipelineCmds[0].Args[0].(string); ok {
			return k
		}
	}
	return t.TraceID
}
