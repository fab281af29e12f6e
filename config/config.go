package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig 进程级配置汇总。
// 各子配置先取 DefaultXConfig()，再由环境变量（含 .env 文件）覆盖。
type AppConfig struct {
	Logger    LoggerConfig    `json:"logger" yaml:"logger"`
	Server    ServerConfig    `json:"server" yaml:"server"`
	Connect   ServerConfig    `json:"connect" yaml:"connect"`
	Mongo     MongoConfig     `json:"mongo" yaml:"mongo"`
	Redis     RedisConfig     `json:"redis" yaml:"redis"`
	Kafka     KafkaConfig     `json:"kafka" yaml:"kafka"`
	Async     AsyncConfig     `json:"async" yaml:"async"`
	MinIO     MinIOConfig     `json:"minio" yaml:"minio"`
	Mail      MailConfig      `json:"mail" yaml:"mail"`
	JWT       JWTConfig       `json:"jwt" yaml:"jwt"`
	Match     MatchConfig     `json:"match" yaml:"match"`
	RateLimit RateLimitConfig `json:"rateLimit" yaml:"rateLimit"`
	NodeID    int64           `json:"nodeId" yaml:"nodeId"` // 雪花算法节点号
}

// Load 读取 .env（不存在时忽略）并返回完整配置。
// files 为空时读取当前目录下的 .env。
func Load(files ...string) AppConfig {
	_ = godotenv.Load(files...)

	cfg := AppConfig{
		Logger:    DefaultLoggerConfig(),
		Server:    DefaultServerConfig(),
		Connect:   DefaultConnectServerConfig(),
		Mongo:     DefaultMongoConfig(),
		Redis:     DefaultRedisConfig(),
		Kafka:     DefaultKafkaConfig(),
		Async:     DefaultAsyncConfig(),
		MinIO:     DefaultMinIOConfig(),
		Mail:      DefaultMailConfig(),
		JWT:       DefaultJWTConfig(),
		Match:     DefaultMatchConfig(),
		RateLimit: DefaultRateLimitConfig(),
		NodeID:    1,
	}

	cfg.Logger.Level = getEnv("LOG_LEVEL", cfg.Logger.Level)
	cfg.Logger.Encoding = getEnv("LOG_ENCODING", cfg.Logger.Encoding)

	cfg.Server.Addr = getEnv("SERVER_ADDR", cfg.Server.Addr)
	cfg.Server.Mode = getEnv("GIN_MODE", cfg.Server.Mode)
	cfg.Server.AllowedOrigins = getEnvList("ALLOWED_ORIGINS", cfg.Server.AllowedOrigins)
	cfg.Connect.Addr = getEnv("CONNECT_ADDR", cfg.Connect.Addr)
	cfg.Connect.Mode = cfg.Server.Mode
	cfg.Connect.AllowedOrigins = cfg.Server.AllowedOrigins

	cfg.Mongo.URI = getEnv("DATABASE_URL", cfg.Mongo.URI)
	cfg.Mongo.Database = getEnv("DATABASE_NAME", cfg.Mongo.Database)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvInt("REDIS_DB", cfg.Redis.DB)

	cfg.Kafka.Brokers = getEnvList("KAFKA_BROKERS", cfg.Kafka.Brokers)
	cfg.Kafka.RoomEventTopic = getEnv("KAFKA_ROOM_TOPIC", cfg.Kafka.RoomEventTopic)
	cfg.Kafka.RedisRetryTopic = getEnv("KAFKA_REDIS_RETRY_TOPIC", cfg.Kafka.RedisRetryTopic)

	cfg.MinIO.Endpoint = getEnv("MINIO_ENDPOINT", cfg.MinIO.Endpoint)
	cfg.MinIO.AccessKeyID = getEnv("MINIO_ACCESS_KEY", cfg.MinIO.AccessKeyID)
	cfg.MinIO.SecretAccessKey = getEnv("MINIO_SECRET_KEY", cfg.MinIO.SecretAccessKey)
	cfg.MinIO.BaseURL = getEnv("MINIO_BASE_URL", cfg.MinIO.BaseURL)

	cfg.Mail.Host = getEnv("EMAIL_HOST", cfg.Mail.Host)
	cfg.Mail.Port = getEnvInt("EMAIL_PORT", cfg.Mail.Port)
	cfg.Mail.Username = getEnv("EMAIL_USER", cfg.Mail.Username)
	cfg.Mail.Password = getEnv("EMAIL_PASS", cfg.Mail.Password)
	cfg.Mail.From = getEnv("EMAIL_FROM", cfg.Mail.From)

	cfg.JWT.Secret = getEnv("JWT_SECRET_KEY", cfg.JWT.Secret)
	cfg.JWT.TTL = getEnvDuration("JWT_TTL", cfg.JWT.TTL)

	cfg.Match.MessageWindow = getEnvDuration("MATCH_MESSAGE_WINDOW", cfg.Match.MessageWindow)
	cfg.Match.UnverifiedTTL = getEnvDuration("UNVERIFIED_TTL", cfg.Match.UnverifiedTTL)
	cfg.Match.CancelOnDissolve = getEnvBool("MATCH_CANCEL_ON_DISSOLVE", cfg.Match.CancelOnDissolve)

	cfg.NodeID = int64(getEnvInt("NODE_ID", int(cfg.NodeID)))
	return cfg
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return v
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if v, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return v
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v, err := time.ParseDuration(getEnv(key, "")); err == nil && v > 0 {
		return v
	}
	return defaultValue
}

// getEnvList 读取逗号分隔的列表
func getEnvList(key string, defaultValue []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
