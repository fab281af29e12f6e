package config

import "time"

// JWTConfig 令牌配置
type JWTConfig struct {
	Secret string        `json:"secret" yaml:"secret"` // HS256 密钥
	Issuer string        `json:"issuer" yaml:"issuer"`
	TTL    time.Duration `json:"ttl" yaml:"ttl"` // 令牌有效期
}

// DefaultJWTConfig 返回默认配置，Secret 必须通过环境变量覆盖
func DefaultJWTConfig() JWTConfig {
	return JWTConfig{
		Secret: "justdate-dev-secret",
		Issuer: "justdate",
		TTL:    24 * time.Hour,
	}
}
