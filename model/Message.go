package model

import "time"

// Message 聊天消息，内嵌在发送方的 User 文档中
type Message struct {
	ID        string    `bson:"_id" json:"_id"`
	Sender    string    `bson:"sender" json:"sender"`
	Receiver  string    `bson:"receiver" json:"receiver"`
	Content   string    `bson:"content" json:"content"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// Involves 判断消息是否与 userID 有关（发送方或接收方）
func (m Message) Involves(userID string) bool {
	return m.Sender == userID || m.Receiver == userID
}

// Between 判断消息是否属于 a、b 两人之间（不区分方向）
func (m Message) Between(a, b string) bool {
	return (m.Sender == a && m.Receiver == b) || (m.Sender == b && m.Receiver == a)
}
