package mq

import (
	"context"
	"errors"
	"sync"

	pkgkafka "DateServer/pkg/kafka"
)

// ErrProducerNotReady Kafka 未启用（如 Redis 降级启动时）
var ErrProducerNotReady = errors.New("redis retry producer not ready")

var (
	globalProducer   *pkgkafka.Producer
	globalProducerMu sync.RWMutex
)

// SetGlobalProducer 设置 Redis 重试任务使用的生产者
func SetGlobalProducer(p *pkgkafka.Producer) {
	globalProducerMu.Lock()
	defer globalProducerMu.Unlock()
	globalProducer = p
}

func producer() *pkgkafka.Producer {
	globalProducerMu.RLock()
	defer globalProducerMu.RUnlock()
	return globalProducer
}

// SendRedisTask 投递 Redis 补偿任务到重试 topic
func SendRedisTask(ctx context.Context, task RedisTask) error {
	p := producer()
	if p == nil {
		return ErrProducerNotReady
	}
	return p.SendJSON(ctx, task.Key(), task)
}
