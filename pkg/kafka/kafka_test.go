package kafka

import (
	"context"
	"testing"

	"DateServer/config"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNilProducer(t *testing.T) {
	var p *Producer
	assert.ErrorIs(t, p.Send(context.Background(), "k", nil), ErrProducerClosed)
	assert.NoError(t, p.Close())
}

func TestSendJSONRejectsUnmarshalable(t *testing.T) {
	p := NewProducer([]string{"127.0.0.1:1"}, "t")
	defer p.Close()

	err := p.SendJSON(context.Background(), "k", map[string]any{"ch": make(chan int)})
	assert.ErrorContains(t, err, "marshal")
	assert.Equal(t, "t", p.Topic())
}

func TestZapLoggerAdapter(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	a := NewZapLoggerAdapter(zap.New(core))

	a.Printf("dial %s failed", "broker-1")

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "dial broker-1 failed", entries[0].Message)
		assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	}
	assert.NotNil(t, NewZapLoggerAdapter(nil))
}

func TestNewReaderDefaultsGroup(t *testing.T) {
	cfg := config.DefaultKafkaConfig()
	r := NewReader(cfg, "topic-a", "", nil)
	defer r.Close()

	assert.Equal(t, cfg.ConsumerConfig.GroupID, r.Config().GroupID)
	assert.Equal(t, "topic-a", r.Config().Topic)
}
