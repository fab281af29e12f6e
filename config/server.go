package config

import "time"

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Addr            string        `json:"addr" yaml:"addr"`                       // 监听地址
	Mode            string        `json:"mode" yaml:"mode"`                       // gin 模式: release/debug/test
	ReadTimeout     time.Duration `json:"readTimeout" yaml:"readTimeout"`         // 读取超时
	WriteTimeout    time.Duration `json:"writeTimeout" yaml:"writeTimeout"`       // 写入超时
	RequestTimeout  time.Duration `json:"requestTimeout" yaml:"requestTimeout"`   // 单个请求处理超时
	ShutdownTimeout time.Duration `json:"shutdownTimeout" yaml:"shutdownTimeout"` // 优雅停机等待时间
	AllowedOrigins  []string      `json:"allowedOrigins" yaml:"allowedOrigins"`   // 跨域白名单，为空表示全部放行
}

// DefaultServerConfig 返回 user 服务的默认 HTTP 配置
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:            ":8080",
		Mode:            "release",
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    10 * time.Second,
		RequestTimeout:  5 * time.Second,
		ShutdownTimeout: 30 * time.Second,
		AllowedOrigins: []string{
			"http://localhost:5173",
			"https://justdate.netlify.app",
		},
	}
}

// DefaultConnectServerConfig 返回 connect 服务的默认 HTTP 配置
func DefaultConnectServerConfig() ServerConfig {
	cfg := DefaultServerConfig()
	cfg.Addr = ":8081"
	cfg.ReadTimeout = 30 * time.Second
	cfg.WriteTimeout = 30 * time.Second
	cfg.ShutdownTimeout = 15 * time.Second
	return cfg
}
