package config

import "time"

// MailConfig SMTP 发信配置
type MailConfig struct {
	Host        string        `json:"host" yaml:"host"`
	Port        int           `json:"port" yaml:"port"`
	Username    string        `json:"username" yaml:"username"`
	Password    string        `json:"password" yaml:"password"`
	From        string        `json:"from" yaml:"from"`               // 发件人地址
	FromName    string        `json:"fromName" yaml:"fromName"`       // 发件人名称
	SendTimeout time.Duration `json:"sendTimeout" yaml:"sendTimeout"` // 单封邮件发送超时
}

// DefaultMailConfig 返回本地开发的默认配置
func DefaultMailConfig() MailConfig {
	return MailConfig{
		Host:        "smtp.gmail.com",
		Port:        587,
		Username:    "",
		Password:    "",
		From:        "no-reply@justdate.app",
		FromName:    "Just Date",
		SendTimeout: 10 * time.Second,
	}
}
