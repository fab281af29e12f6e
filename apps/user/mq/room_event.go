package mq

import (
	"context"
	"time"

	"DateServer/apps/user/internal/conversation"
	"DateServer/pkg/breaker"
	pkgkafka "DateServer/pkg/kafka"

	"github.com/sony/gobreaker"
)

//go:generate mockgen -destination=mocks/mock_room_publisher.go -package=mocks DateServer/apps/user/mq RoomPublisher

// EventNewMessage 新消息事件
const EventNewMessage = "newMessage"

// UserRef 事件中的用户引用
type UserRef struct {
	ID string `json:"_id"`
}

// NewMessageData newMessage 事件负载
type NewMessageData struct {
	Sender    UserRef   `json:"sender"`
	Receiver  UserRef   `json:"receiver"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// RoomEvent 推送到聊天房间的事件，connect 服务消费后广播给房间内所有连接
type RoomEvent struct {
	Type string         `json:"type"`
	Room string         `json:"room"`
	Data NewMessageData `json:"data"`
}

// NewMessageEvent 构造 newMessage 事件
func NewMessageEvent(room, senderID, receiverID, content string, ts time.Time) RoomEvent {
	return RoomEvent{
		Type: EventNewMessage,
		Room: room,
		Data: NewMessageData{
			Sender:    UserRef{ID: senderID},
			Receiver:  UserRef{ID: receiverID},
			Content:   content,
			Timestamp: ts,
		},
	}
}

// RoomPublisher 房间事件发布能力
type RoomPublisher interface {
	// Publish 向房间发布事件，room 为两个用户 ID 排序后以下划线连接的房间号
	Publish(ctx context.Context, room string, event RoomEvent) error
}

// KafkaRoomPublisher 通过 Kafka 发布房间事件，消息 key 为房间号保证同房间有序
type KafkaRoomPublisher struct {
	producer *pkgkafka.Producer
	breaker  *gobreaker.CircuitBreaker
}

// NewKafkaRoomPublisher 创建房间事件发布者
func NewKafkaRoomPublisher(producer *pkgkafka.Producer) *KafkaRoomPublisher {
	return &KafkaRoomPublisher{
		producer: producer,
		breaker:  breaker.New("room-events", breaker.DefaultSettings()),
	}
}

// Publish 实现 RoomPublisher
func (p *KafkaRoomPublisher) Publish(ctx context.Context, room string, event RoomEvent) error {
	return breaker.Do(p.breaker, func() error {
		return p.producer.SendJSON(ctx, room, event)
	})
}

// NopRoomPublisher Kafka 未启用时使用，丢弃所有事件
type NopRoomPublisher struct{}

// Publish 实现 RoomPublisher
func (NopRoomPublisher) Publish(context.Context, string, RoomEvent) error { return nil }

// RoomKey 两个用户的房间号，connect 服务加入房间时使用同一规则
func RoomKey(a, b string) string {
	return conversation.RoomKey(a, b)
}
