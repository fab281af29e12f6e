package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"DateServer/config"

	"github.com/segmentio/kafka-go"
)

// ErrProducerClosed 生产者已关闭
var ErrProducerClosed = errors.New("kafka producer closed")

// Producer 单 topic 生产者（kafka.Writer 封装，线程安全）
type Producer struct {
	writer *kafka.Writer
	topic  string
}

// NewProducer 创建生产者，按消息 key 哈希分区（同一房间/同一用户的消息保持有序）
func NewProducer(brokers []string, topic string) *Producer {
	return NewProducerWithConfig(config.KafkaConfig{
		Brokers:      brokers,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 3 * time.Second,
	}, topic)
}

// NewProducerWithConfig 使用完整配置创建生产者
func NewProducerWithConfig(cfg config.KafkaConfig, topic string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(cfg.Brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			BatchTimeout:           cfg.BatchTimeout,
			WriteTimeout:           cfg.WriteTimeout,
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		},
		topic: topic,
	}
}

// Topic 目标 topic
func (p *Producer) Topic() string { return p.topic }

// Send 发送原始消息
func (p *Producer) Send(ctx context.Context, key string, value []byte, headers ...kafka.Header) error {
	if p == nil || p.writer == nil {
		return ErrProducerClosed
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:     []byte(key),
		Value:   value,
		Headers: headers,
		Time:    time.Now(),
	})
}

// SendJSON 序列化后发送
func (p *Producer) SendJSON(ctx context.Context, key string, v any, headers ...kafka.Header) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal kafka message: %w", err)
	}
	return p.Send(ctx, key, data, headers...)
}

// Close 刷新缓冲并关闭连接
func (p *Producer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
