package kafka

import (
	"DateServer/config"

	"github.com/segmentio/kafka-go"
)

// NewReader 按配置创建消费组读取器。groupID 为空时使用配置中的默认消费组。
func NewReader(cfg config.KafkaConfig, topic, groupID string, logger kafka.Logger) *kafka.Reader {
	if groupID == "" {
		groupID = cfg.ConsumerConfig.GroupID
	}
	rc := kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       cfg.ConsumerConfig.MinBytes,
		MaxBytes:       cfg.ConsumerConfig.MaxBytes,
		CommitInterval: cfg.ConsumerConfig.CommitInterval,
		StartOffset:    kafka.LastOffset,
	}
	if logger != nil {
		rc.ErrorLogger = logger
	}
	return kafka.NewReader(rc)
}
