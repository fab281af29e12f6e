package dto

import (
	"time"

	"DateServer/model"
)

// ==================== 消息相关 DTO ====================

// SendMessageRequest 发送消息请求 DTO。
// senderId 必须与登录用户一致，由 handler 校验
type SendMessageRequest struct {
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	Content    string `json:"content" binding:"max=2000"`
}

// SendMessageResponse 发送消息响应 DTO
type SendMessageResponse struct {
	Message *MessageItem `json:"message"`
	Room    string       `json:"room"`
}

// MessageItem 消息
type MessageItem struct {
	ID        string    `json:"_id"`
	Sender    string    `json:"sender"`
	Receiver  string    `json:"receiver"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ConversationResponse 会话响应 DTO
type ConversationResponse struct {
	Chat     []*MessageItem  `json:"chat"`
	Receiver *model.UserCard `json:"receiver"`
}

// NewMessageItem 消息投影
func NewMessageItem(m *model.Message) *MessageItem {
	return &MessageItem{ID: m.ID, Sender: m.Sender, Receiver: m.Receiver, Content: m.Content, Timestamp: m.Timestamp}
}

// NewMessageItems 批量消息投影，结果非 nil
func NewMessageItems(msgs []model.Message) []*MessageItem {
	out := make([]*MessageItem, 0, len(msgs))
	for i := range msgs {
		out = append(out, NewMessageItem(&msgs[i]))
	}
	return out
}
