package config

import "time"

// MatchConfig 配对与消息窗口配置
type MatchConfig struct {
	// MessageWindow 配对成功后，发起方必须在该时间内发出第一条消息，否则自动解除配对
	MessageWindow time.Duration `json:"messageWindow" yaml:"messageWindow"`
	// UnverifiedTTL 注册后未验证账号的保留时间，超时自动删除
	UnverifiedTTL time.Duration `json:"unverifiedTTL" yaml:"unverifiedTTL"`
	// CheckTimeout 单次后台检查任务的执行超时
	CheckTimeout time.Duration `json:"checkTimeout" yaml:"checkTimeout"`
	// CancelOnDissolve 注销账号时是否主动取消该用户未触发的窗口检查
	CancelOnDissolve bool `json:"cancelOnDissolve" yaml:"cancelOnDissolve"`
}

// DefaultMatchConfig 返回默认配置
func DefaultMatchConfig() MatchConfig {
	return MatchConfig{
		MessageWindow:    10 * time.Minute,
		UnverifiedTTL:    2 * time.Minute,
		CheckTimeout:     10 * time.Second,
		CancelOnDissolve: false,
	}
}
