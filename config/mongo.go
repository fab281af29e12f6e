package config

import "time"

// MongoConfig MongoDB 配置
type MongoConfig struct {
	URI            string        `json:"uri" yaml:"uri"`                       // 连接串
	Database       string        `json:"database" yaml:"database"`             // 数据库名
	MaxPoolSize    uint64        `json:"maxPoolSize" yaml:"maxPoolSize"`       // 最大连接数
	MinPoolSize    uint64        `json:"minPoolSize" yaml:"minPoolSize"`       // 最小连接数
	ConnectTimeout time.Duration `json:"connectTimeout" yaml:"connectTimeout"` // 建连超时
	OpTimeout      time.Duration `json:"opTimeout" yaml:"opTimeout"`           // 单次操作超时
}

// DefaultMongoConfig 返回本地开发的默认配置（与 docker-compose.yml 对齐）
func DefaultMongoConfig() MongoConfig {
	return MongoConfig{
		URI:            "mongodb://mongo:27017",
		Database:       "justdate",
		MaxPoolSize:    100,
		MinPoolSize:    5,
		ConnectTimeout: 10 * time.Second,
		OpTimeout:      3 * time.Second,
	}
}
