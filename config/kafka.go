package config

import "time"

// KafkaConsumerConfig 消费者配置
type KafkaConsumerConfig struct {
	GroupID        string        `json:"groupId" yaml:"groupId"`               // 消费组
	MinBytes       int           `json:"minBytes" yaml:"minBytes"`             // 单次拉取最小字节
	MaxBytes       int           `json:"maxBytes" yaml:"maxBytes"`             // 单次拉取最大字节
	CommitInterval time.Duration `json:"commitInterval" yaml:"commitInterval"` // offset 提交间隔
}

// KafkaConfig Kafka 配置
type KafkaConfig struct {
	Brokers         []string            `json:"brokers" yaml:"brokers"`
	RoomEventTopic  string              `json:"roomEventTopic" yaml:"roomEventTopic"`   // 聊天房间事件
	RedisRetryTopic string              `json:"redisRetryTopic" yaml:"redisRetryTopic"` // Redis 失败重试
	BatchTimeout    time.Duration       `json:"batchTimeout" yaml:"batchTimeout"`       // 生产者攒批等待
	WriteTimeout    time.Duration       `json:"writeTimeout" yaml:"writeTimeout"`
	ConsumerConfig  KafkaConsumerConfig `json:"consumerConfig" yaml:"consumerConfig"`
}

// DefaultKafkaConfig 返回本地开发的默认配置
func DefaultKafkaConfig() KafkaConfig {
	return KafkaConfig{
		Brokers:         []string{"kafka:9092"},
		RoomEventTopic:  "justdate.room-events",
		RedisRetryTopic: "justdate.redis-retry",
		BatchTimeout:    10 * time.Millisecond,
		WriteTimeout:    3 * time.Second,
		ConsumerConfig: KafkaConsumerConfig{
			GroupID:        "justdate-user",
			MinBytes:       1,
			MaxBytes:       10 << 20,
			CommitInterval: time.Second,
		},
	}
}
