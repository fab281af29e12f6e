package breaker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"DateServer/pkg/logger"

	"github.com/sony/gobreaker"
)

// ErrOpen 熔断器开启（或半开状态请求数已满），调用被直接拒绝
var ErrOpen = errors.New("circuit breaker open")

// Settings 熔断参数
type Settings struct {
	MaxRequests uint32        // 半开状态下允许的探测请求数
	Interval    time.Duration // 闭合状态下清除计数的周期
	Timeout     time.Duration // 开启后多久进入半开
	MinRequests uint32        // 统计窗口内至少多少请求才判断失败率
	FailRatio   float64       // 触发熔断的失败率
}

// DefaultSettings 半开 3 个探测，15s 统计窗口，5 个请求以上失败率过半即熔断，45s 后半开
func DefaultSettings() Settings {
	return Settings{
		MaxRequests: 3,
		Interval:    15 * time.Second,
		Timeout:     45 * time.Second,
		MinRequests: 5,
		FailRatio:   0.5,
	}
}

// New 创建命名熔断器，状态变化写日志
func New(name string, s Settings) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= s.FailRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if logger.L() == nil {
				return
			}
			logger.Warn(context.Background(), "熔断器状态变化",
				logger.String("name", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		},
	})
}

// Do 在熔断器保护下执行 fn，熔断拒绝统一返回 ErrOpen
func Do(cb *gobreaker.CircuitBreaker, fn func() error) error {
	_, err := cb.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %s", ErrOpen, cb.Name())
	}
	return err
}
