package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"DateServer/config"
	"DateServer/pkg/breaker"
	"DateServer/pkg/logger"

	"github.com/sony/gobreaker"
	"gopkg.in/gomail.v2"
)

//go:generate mockgen -destination=mocks/mock_sender.go -package=mocks DateServer/pkg/mail Sender

// Sender 邮件发送能力
type Sender interface {
	// Send 发送 HTML 邮件
	Send(ctx context.Context, to, subject, html string) error
}

// dialer 便于测试替换 gomail.Dialer
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPSender 基于 gomail 的 SMTP 发送器，外层套熔断器
type SMTPSender struct {
	cfg     config.MailConfig
	dialer  dialer
	breaker *gobreaker.CircuitBreaker
}

// NewSMTPSender 创建 SMTP 发送器
func NewSMTPSender(cfg config.MailConfig) (*SMTPSender, error) {
	if strings.TrimSpace(cfg.Host) == "" || cfg.Port <= 0 {
		return nil, errors.New("mail host/port is empty")
	}
	return newSMTPSender(cfg, gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)), nil
}

func newSMTPSender(cfg config.MailConfig, d dialer) *SMTPSender {
	return &SMTPSender{
		cfg:     cfg,
		dialer:  d,
		breaker: breaker.New("smtp", breaker.DefaultSettings()),
	}
}

// Send gomail 本身不支持 ctx，这里在独立 goroutine 中发送并按 ctx / SendTimeout 放弃等待
func (s *SMTPSender) Send(ctx context.Context, to, subject, html string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.cfg.From, s.cfg.FromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", html)

	if s.cfg.SendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.SendTimeout)
		defer cancel()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- breaker.Do(s.breaker, func() error { return s.dialer.DialAndSend(m) })
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error(ctx, "邮件发送失败",
				logger.String("subject", subject),
				logger.ErrorField("error", err),
			)
			return fmt.Errorf("send mail: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Warn(ctx, "邮件发送超时", logger.String("subject", subject))
		return fmt.Errorf("send mail: %w", ctx.Err())
	}
}
