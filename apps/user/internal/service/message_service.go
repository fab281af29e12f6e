package service

import (
	"context"
	"strings"
	"time"

	"DateServer/apps/user/internal/conversation"
	"DateServer/apps/user/internal/dto"
	"DateServer/apps/user/internal/repository"
	"DateServer/apps/user/mq"
	"DateServer/consts"
	"DateServer/model"
	"DateServer/pkg/ctxmeta"
	"DateServer/pkg/errorx"
	"DateServer/pkg/logger"
	"DateServer/pkg/scheduler"
	"DateServer/pkg/util"
)

// publishTimeout 推送房间事件的超时时间，推送失败不影响发送结果
const publishTimeout = 3 * time.Second

// messageServiceImpl 消息服务实现
type messageServiceImpl struct {
	users     repository.IUserRepository
	publisher mq.RoomPublisher
	clock     scheduler.Clock
}

// NewMessageService 创建消息服务实例
func NewMessageService(users repository.IUserRepository, publisher mq.RoomPublisher, clock scheduler.Clock) IMessageService {
	if publisher == nil {
		publisher = mq.NopRoomPublisher{}
	}
	if clock == nil {
		clock = scheduler.RealClock()
	}
	return &messageServiceImpl{users: users, publisher: publisher, clock: clock}
}

// Send 发送消息
// 业务流程：
//  1. 校验发送方、接收方、内容均不为空
//  2. 读取发送方消息日志，追加新消息；与接收方的消息已满 10 条时淘汰最早的一条
//  3. 持久化：先移除被淘汰的消息，再追加新消息
//  4. 推送 newMessage 事件到双方的聊天房间
func (s *messageServiceImpl) Send(ctx context.Context, senderID, receiverID, content string) (*dto.SendMessageResponse, error) {
	if strings.TrimSpace(senderID) == "" || strings.TrimSpace(receiverID) == "" || strings.TrimSpace(content) == "" {
		return nil, errorx.Validation(consts.CodeMessageFieldsRequired, "")
	}

	sender, err := findUser(ctx, s.users, senderID)
	if err != nil {
		return nil, err
	}

	msg := model.Message{
		ID:        util.GenIDString(),
		Sender:    senderID,
		Receiver:  receiverID,
		Content:   content,
		Timestamp: s.clock.Now().UTC().Truncate(time.Millisecond),
	}

	log := conversation.Load(sender.Messages, consts.MessageCapPerPartner)
	if evicted := log.Append(msg); evicted != nil {
		if err := s.users.PullMessages(ctx, senderID, evicted.ID); err != nil {
			logger.Error(ctx, "淘汰旧消息失败",
				logger.String("sender_id", senderID),
				logger.String("message_id", evicted.ID),
				logger.ErrorField("error", err),
			)
			return nil, errorx.Dependency("evict message", err)
		}
		messagesEvictedTotal.Inc()
	}
	if err := s.users.PushMessage(ctx, senderID, &msg); err != nil {
		logger.Error(ctx, "保存消息失败",
			logger.String("sender_id", senderID),
			logger.String("receiver_id", receiverID),
			logger.ErrorField("error", err),
		)
		return nil, errorx.Dependency("push message", err)
	}
	messagesSentTotal.Inc()

	room := conversation.RoomKey(senderID, receiverID)
	s.publish(ctx, room, mq.NewMessageEvent(room, senderID, receiverID, content, msg.Timestamp))

	return &dto.SendMessageResponse{Message: dto.NewMessageItem(&msg), Room: room}, nil
}

// publish 推送房间事件，请求结束后推送仍可完成
func (s *messageServiceImpl) publish(ctx context.Context, room string, event mq.RoomEvent) {
	pubCtx, cancel := context.WithTimeout(ctxmeta.Detach(ctx), publishTimeout)
	defer cancel()

	if err := s.publisher.Publish(pubCtx, room, event); err != nil {
		roomPublishFailuresTotal.Inc()
		logger.Warn(ctx, "推送房间事件失败",
			logger.String("room", room),
			logger.String("type", event.Type),
			logger.ErrorField("error", err),
		)
	}
}

// GetConversation 获取会话
// 双方各自只保存自己发出的消息，这里合并两份日志后去重并按时间升序排列
func (s *messageServiceImpl) GetConversation(ctx context.Context, userA, userB string) (*dto.ConversationResponse, error) {
	if strings.TrimSpace(userA) == "" || strings.TrimSpace(userB) == "" {
		return nil, errorx.Validation(consts.CodeParamError, "")
	}

	a, err := findUser(ctx, s.users, userA)
	if err != nil {
		return nil, err
	}
	b, err := findUser(ctx, s.users, userB)
	if err != nil {
		return nil, err
	}

	chat := conversation.Merge(userA, userB, a.Messages, b.Messages)
	return &dto.ConversationResponse{
		Chat: dto.NewMessageItems(chat),
		Receiver: &model.UserCard{
			ID:         b.ID,
			FirstName:  b.FirstName,
			LastName:   b.LastName,
			IsVerified: b.IsVerified,
		},
	}, nil
}
