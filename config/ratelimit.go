package config

// RateLimitConfig 网关限流配置
type RateLimitConfig struct {
	Rate         float64 `json:"rate" yaml:"rate"`                 // 每秒产生的令牌数
	Burst        int     `json:"burst" yaml:"burst"`               // 令牌桶容量
	BlacklistKey string  `json:"blacklistKey" yaml:"blacklistKey"` // IP 黑名单 Set
}

// DefaultRateLimitConfig 300 次 / 15 分钟的平均速率，允许短时突发
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Rate:         300.0 / (15 * 60),
		Burst:        60,
		BlacklistKey: "gateway:blacklist:ips",
	}
}
