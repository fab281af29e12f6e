package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"DateServer/apps/user/mq"
	"DateServer/config"
	pkgkafka "DateServer/pkg/kafka"
	"DateServer/pkg/logger"
	"DateServer/pkg/util"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/segmentio/kafka-go"
)

var roomEventsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "justdate_connect_room_events_total",
		Help: "Room events consumed by result",
	},
	[]string{"result"},
)

func init() {
	prometheus.MustRegister(roomEventsTotal)
}

// Broadcaster 按房间广播下行帧，由 manager.ConnectionManager 实现
type Broadcaster interface {
	BroadcastRoom(room string, msg []byte) int
}

// messageReader kafka.Reader 的最小能力，便于测试替换
type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// downFrame 推给客户端的帧，与客户端监听的事件名一致
type downFrame struct {
	Type string            `json:"type"`
	Room string            `json:"room"`
	Data mq.NewMessageData `json:"data"`
}

// RoomConsumer 消费房间事件并广播给本实例上加入该房间的连接。
// 每个 connect 实例使用独立消费组，保证所有实例都能收到全部事件。
type RoomConsumer struct {
	reader      messageReader
	broadcaster Broadcaster
}

// NewRoomConsumer 创建房间事件消费者
func NewRoomConsumer(cfg config.KafkaConfig, broadcaster Broadcaster, errLogger kafka.Logger) *RoomConsumer {
	groupID := fmt.Sprintf("%s-connect-%s", cfg.ConsumerConfig.GroupID, util.NewUUID())
	return &RoomConsumer{
		reader:      pkgkafka.NewReader(cfg, cfg.RoomEventTopic, groupID, errLogger),
		broadcaster: broadcaster,
	}
}

// Start 阻塞消费直到 ctx 结束
func (c *RoomConsumer) Start(ctx context.Context) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read room event: %w", err)
		}
		c.handle(ctx, msg.Value)
	}
}

// handle 解析并广播单条事件，坏消息丢弃
func (c *RoomConsumer) handle(ctx context.Context, value []byte) int {
	var event mq.RoomEvent
	if err := json.Unmarshal(value, &event); err != nil || event.Room == "" {
		roomEventsTotal.WithLabelValues("invalid").Inc()
		logger.Warn(ctx, "房间事件格式错误，已丢弃",
			logger.Int("size", len(value)),
			logger.ErrorField("error", err),
		)
		return 0
	}

	payload, err := json.Marshal(downFrame{Type: event.Type, Room: event.Room, Data: event.Data})
	if err != nil {
		roomEventsTotal.WithLabelValues("invalid").Inc()
		return 0
	}

	sent := c.broadcaster.BroadcastRoom(event.Room, payload)
	if sent == 0 {
		roomEventsTotal.WithLabelValues("no_listener").Inc()
	} else {
		roomEventsTotal.WithLabelValues("delivered").Inc()
	}
	logger.Debug(ctx, "房间事件已广播",
		logger.String("room", event.Room),
		logger.String("type", event.Type),
		logger.Int("sent", sent),
	)
	return sent
}

// Close 关闭读取器
func (c *RoomConsumer) Close() error {
	return c.reader.Close()
}
