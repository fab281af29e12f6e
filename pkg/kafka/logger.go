package kafka

import (
	"fmt"

	"go.uber.org/zap"
)

// ZapLoggerAdapter 把 kafka-go 的 Printf 风格日志接到 zap
type ZapLoggerAdapter struct {
	l *zap.Logger
}

// NewZapLoggerAdapter 创建适配器，l 为 nil 时丢弃日志
func NewZapLoggerAdapter(l *zap.Logger) *ZapLoggerAdapter {
	if l == nil {
		l = zap.NewNop()
	}
	return &ZapLoggerAdapter{l: l.WithOptions(zap.AddCallerSkip(1))}
}

// Printf 实现 kafka.Logger
func (a *ZapLoggerAdapter) Printf(format string, args ...interface{}) {
	a.l.Error(fmt.Sprintf(format, args...), zap.String("component", "kafka"))
}

// Infof 普通日志
func (a *ZapLoggerAdapter) Infof(format string, args ...interface{}) {
	a.l.Info(fmt.Sprintf(format, args...), zap.String("component", "kafka"))
}

// Errorf 错误日志
func (a *ZapLoggerAdapter) Errorf(format string, args ...interface{}) {
	a.l.Error(fmt.Sprintf(format, args...), zap.String("component", "kafka"))
}
