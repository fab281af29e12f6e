package handler

import (
	"DateServer/apps/user/internal/dto"
	"DateServer/apps/user/internal/service"
	"DateServer/consts"
	"DateServer/pkg/ctxmeta"
	"DateServer/pkg/logger"
	"DateServer/pkg/result"

	"github.com/gin-gonic/gin"
)

// MessageHandler 消息处理器
type MessageHandler struct {
	messageService service.IMessageService
}

// NewMessageHandler 创建消息处理器
func NewMessageHandler(messageService service.IMessageService) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
	}
}

// Send 发送消息接口
// @Summary 发送消息
// @Description 写入发送方消息日志并推送到双方聊天房间，senderId 为空时取当前登录用户
// @Tags 消息接口
// @Accept json
// @Produce json
// @Param request body dto.SendMessageRequest true "消息"
// @Success 200 {object} dto.SendMessageResponse
// @Router /api/v1/messages [post]
func (h *MessageHandler) Send(c *gin.Context) {
	ctx := ctxmeta.FromGin(c)

	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	// 只能以自己的身份发送
	if req.SenderID == "" {
		req.SenderID = userID
	}
	if req.SenderID != userID {
		logger.Warn(ctx, "发送方与登录用户不一致",
			logger.String("user_id", userID),
			logger.String("sender_id", req.SenderID),
		)
		result.Fail(c, nil, consts.CodePermissionDeny)
		return
	}

	resp, err := h.messageService.Send(ctx, req.SenderID, req.ReceiverID, req.Content)
	if err != nil {
		replyError(ctx, c, "发送消息服务内部错误", err)
		return
	}

	result.Success(c, resp)
}

// GetConversation 获取聊天记录接口
// @Summary 获取两人之间的聊天记录
// @Description 合并双方消息日志，按消息 ID 去重后按时间升序返回，当前用户必须是其中一方
// @Tags 消息接口
// @Produce json
// @Param senderId path string true "用户ID"
// @Param receiverId path string true "对方用户ID"
// @Success 200 {object} dto.ConversationResponse
// @Router /api/v1/messages/{senderId}/{receiverId} [get]
func (h *MessageHandler) GetConversation(c *gin.Context) {
	ctx := ctxmeta.FromGin(c)

	userID, ok := currentUser(c)
	if !ok {
		return
	}

	senderID := c.Param("senderId")
	receiverID := c.Param("receiverId")
	if senderID == "" || receiverID == "" {
		result.Fail(c, nil, consts.CodeMessageFieldsRequired)
		return
	}
	if userID != senderID && userID != receiverID {
		result.Fail(c, nil, consts.CodePermissionDeny)
		return
	}

	resp, err := h.messageService.GetConversation(ctx, senderID, receiverID)
	if err != nil {
		replyError(ctx, c, "获取聊天记录服务内部错误", err)
		return
	}

	result.Success(c, resp)
}
