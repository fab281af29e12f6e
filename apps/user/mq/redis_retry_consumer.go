package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"DateServer/config"
	"DateServer/pkg/ctxmeta"
	pkgkafka "DateServer/pkg/kafka"
	"DateServer/pkg/logger"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
)

// redisExecutor 重试消费者需要的 Redis 能力
type redisExecutor interface {
	Do(ctx context.Context, args ...interface{}) *redis.Cmd
	Pipeline() redis.Pipeliner
}

// taskSender 重新投递任务
type taskSender interface {
	SendJSON(ctx context.Context, key string, v any, headers ...kafka.Header) error
}

// RedisRetryConsumer 消费 Redis 补偿任务：执行失败则递增重试次数重新投递，超过上限后丢弃并告警
type RedisRetryConsumer struct {
	reader   *kafka.Reader
	redis    redisExecutor
	producer taskSender
	backoff  time.Duration
}

// NewRedisRetryConsumer 创建重试消费者
func NewRedisRetryConsumer(cfg config.KafkaConfig, redisClient *redis.Client, producer *pkgkafka.Producer, errLogger kafka.Logger) *RedisRetryConsumer {
	return &RedisRetryConsumer{
		reader:   pkgkafka.NewReader(cfg, cfg.RedisRetryTopic, cfg.ConsumerConfig.GroupID, errLogger),
		redis:    redisClient,
		producer: producer,
		backoff:  500 * time.Millisecond,
	}
}

// Start 阻塞消费直到 ctx 结束
func (c *RedisRetryConsumer) Start(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("fetch redis retry task: %w", err)
		}

		c.handle(ctx, msg.Value)

		if err := c.reader.CommitMessages(ctx, msg); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn(ctx, "提交 Redis 重试任务 offset 失败", logger.ErrorField("error", err))
		}
	}
}

// Close 关闭读取器
func (c *RedisRetryConsumer) Close() error {
	return c.reader.Close()
}

// handle 执行一条任务，失败时决定重投或丢弃
func (c *RedisRetryConsumer) handle(ctx context.Context, raw []byte) {
	var task RedisTask
	if err := json.Unmarshal(raw, &task); err != nil {
		logger.Error(ctx, "Redis 重试任务格式错误，丢弃", logger.ErrorField("error", err))
		return
	}
	taskCtx := ctxmeta.WithTraceID(ctx, task.TraceID)

	err := execute(taskCtx, c.redis, task)
	if err == nil {
		logger.Info(taskCtx, "Redis 重试任务执行成功",
			logger.String("command", task.Command),
			logger.Int("retry_count", task.RetryCount),
		)
		return
	}

	next, retry := nextAttempt(task, err)
	if !retry {
		logger.Error(taskCtx, "Redis 重试任务超过最大重试次数，放弃",
			logger.String("command", task.Command),
			logger.Int("retry_count", task.RetryCount),
			logger.String("original_err", task.OriginalErr),
			logger.ErrorField("error", err),
		)
		return
	}

	// 简单线性退避，避免 Redis 未恢复时立即打满重试
	select {
	case <-time.After(c.backoff * time.Duration(next.RetryCount)):
	case <-ctx.Done():
		return
	}
	if sendErr := c.producer.SendJSON(ctx, next.Key(), next); sendErr != nil {
		logger.Error(taskCtx, "Redis 重试任务重新投递失败",
			logger.ErrorField("error", sendErr),
			logger.String("command", task.Command),
		)
	}
}

// nextAttempt 计算下一次重试任务，返回 false 表示不再重试
func nextAttempt(task RedisTask, err error) (RedisTask, bool) {
	maxRetries := task.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	if task.RetryCount+1 > maxRetries {
		return task, false
	}
	task.RetryCount++
	task.OriginalErr = err.Error()
	return task, true
}

// execute 执行任务中的 Redis 命令
func execute(ctx context.Context, client redisExecutor, task RedisTask) error {
	if client == nil {
		return errors.New("redis client is nil")
	}
	switch task.Type {
	case CmdSimple:
		if task.Command == "" {
			return errors.New("empty redis command")
		}
		args := append([]interface{}{strings.ToLower(task.Command)}, task.Args...)
		if err := client.Do(ctx, args...).Err(); err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		return nil
	case CmdPipeline:
		pipe := client.Pipeline()
		for _, cmd := range task.PipelineCmds {
			args := append([]interface{}{strings.ToLower(cmd.Command)}, cmd.Args...)
			pipe.Do(ctx, args...)
		}
		if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		return nil
	default:
		return fmt.Errorf("unknown redis task type: %s", task.Type)
	}
}
