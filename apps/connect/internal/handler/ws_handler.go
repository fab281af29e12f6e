package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"DateServer/apps/connect/internal/manager"
	"DateServer/apps/connect/internal/svc"
	"DateServer/consts"
	"DateServer/pkg/ctxmeta"
	"DateServer/pkg/logger"
	"DateServer/pkg/result"
	"DateServer/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	// WebSocket 协议层错误码，仅用于 ws 帧内的 error 消息
	wsMessageInvalidFormatCode = 10001
	wsMessageUnsupportedCode   = 10002
	wsRoomInvalidCode          = 10003
	wsRoomForbiddenCode        = 10004
)

// 上下行帧类型
const (
	frameHeartbeat    = "heartbeat"
	frameHeartbeatAck = "heartbeat_ack"
	frameJoinRoom     = "joinRoom"
	frameJoinedRoom   = "joinedRoom"
	frameLeaveRoom    = "leaveRoom"
	frameLeftRoom     = "leftRoom"
	frameError        = "error"
)

// WSHandler 处理 /ws 接入请求：握手鉴权、协议升级、房间加入与心跳
type WSHandler struct {
	connManager *manager.ConnectionManager
	connectSvc  *svc.ConnectService
	upgrader    websocket.Upgrader
}

// NewWSHandler 创建 WebSocket 入口处理器。allowedOrigins 为空时不校验来源。
func NewWSHandler(connManager *manager.ConnectionManager, connectSvc *svc.ConnectService, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		connManager: connManager,
		connectSvc:  connectSvc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     checkOrigin(allowedOrigins),
		},
	}
}

func checkOrigin(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		if len(allowed) == 0 {
			return true
		}
		origin := r.Header.Get("Origin")
		for _, o := range allowed {
			if strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}
}

// ServeWS 处理 WebSocket 握手与接入。
// token 优先取 query，其次取 Authorization: Bearer 头（浏览器无法自定义握手头）。
func (h *WSHandler) ServeWS(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	}
	connID := util.NewUUID()

	session, err := h.connectSvc.Authenticate(ctxmeta.FromGin(c), token, connID, c.ClientIP())
	if err != nil {
		h.writeAuthError(c, err)
		return
	}

	connCtx := context.Background()
	if traceID := ctxmeta.TraceIDFromGin(c); traceID != "" {
		connCtx = ctxmeta.WithTraceID(connCtx, traceID)
	}
	connCtx = ctxmeta.WithUserID(connCtx, session.UserID)
	connCtx = ctxmeta.WithConnID(connCtx, session.ConnID)
	connCtx = ctxmeta.WithClientIP(connCtx, session.ClientIP)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn(connCtx, "WebSocket 升级失败",
			logger.ErrorField("error", err),
		)
		return
	}

	h.handleConnection(connCtx, conn, session)
}

// handleConnection 承载单个连接的完整生命周期
func (h *WSHandler) handleConnection(ctx context.Context, conn manager.Conn, session *svc.Session) {
	client := manager.NewClient(conn, session.UserID, session.ConnID)
	if !h.connManager.Register(client) {
		client.Close()
		return
	}

	h.connectSvc.OnConnect(ctx, session)
	onlineConnections.Inc()
	logger.Info(ctx, "WebSocket 连接已建立",
		logger.String("user_id", session.UserID),
		logger.String("conn_id", session.ConnID),
		logger.String("client_ip", session.ClientIP),
		logger.Int("online_count", h.connManager.Count()),
	)

	client.Run(ctx, func(raw []byte) {
		h.handleMessage(ctx, client, session, raw)
	}, func() {
		h.connManager.Unregister(client)
		h.connectSvc.OnDisconnect(ctx, session)
		onlineConnections.Dec()
		logger.Info(ctx, "WebSocket 连接已断开",
			logger.String("user_id", session.UserID),
			logger.String("conn_id", session.ConnID),
			logger.Int("online_count", h.connManager.Count()),
		)
	})
}

// handleMessage 处理客户端上行帧：heartbeat / joinRoom / leaveRoom
func (h *WSHandler) handleMessage(ctx context.Context, client *manager.Client, session *svc.Session, raw []byte) {
	envelope, err := h.connectSvc.ParseEnvelope(raw)
	if err != nil {
		h.sendErrorFrame(ctx, client, wsMessageInvalidFormatCode, "invalid frame format")
		return
	}

	switch envelope.Type {
	case frameHeartbeat:
		h.connectSvc.OnHeartbeat(ctx, session)
		h.reply(ctx, client, frameHeartbeatAck, nil)
	case frameJoinRoom, frameLeaveRoom:
		room, roomErr := h.connectSvc.ResolveRoom(session, envelope.Data)
		if roomErr != nil {
			if errors.Is(roomErr, svc.ErrNotRoomMember) {
				logger.Warn(ctx, "拒绝加入他人房间",
					logger.String("user_id", session.UserID),
				)
				h.sendErrorFrame(ctx, client, wsRoomForbiddenCode, roomErr.Error())
				return
			}
			h.sendErrorFrame(ctx, client, wsRoomInvalidCode, roomErr.Error())
			return
		}
		if envelope.Type == frameJoinRoom {
			h.connManager.Join(client, room)
			logger.Debug(ctx, "加入聊天房间",
				logger.String("room", room),
				logger.Int("room_size", h.connManager.RoomSize(room)),
			)
			h.reply(ctx, client, frameJoinedRoom, svc.RoomData{Room: room})
			return
		}
		h.connManager.Leave(client, room)
		h.reply(ctx, client, frameLeftRoom, svc.RoomData{Room: room})
	default:
		h.sendErrorFrame(ctx, client, wsMessageUnsupportedCode, "unsupported message type")
	}
}

// reply 发送下行帧，入队失败时关闭连接
func (h *WSHandler) reply(ctx context.Context, client *manager.Client, msgType string, data any) {
	payload, err := h.connectSvc.MarshalEnvelope(msgType, data)
	if err != nil {
		logger.Warn(ctx, "下行帧序列化失败",
			logger.String("type", msgType),
			logger.ErrorField("error", err),
		)
		return
	}
	if !client.Enqueue(payload) {
		client.Close()
	}
}

// sendErrorFrame 发送 ws 协议层错误帧
func (h *WSHandler) sendErrorFrame(ctx context.Context, client *manager.Client, code int, message string) {
	h.reply(ctx, client, frameError, svc.ErrorData{
		Code:    code,
		Message: message,
	})
}

// writeAuthError 握手阶段还未升级为 WebSocket，用统一 HTTP 响应返回鉴权错误
func (h *WSHandler) writeAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, svc.ErrTokenRequired):
		result.AbortWithCode(c, http.StatusUnauthorized, consts.CodeUnauthorized)
	case errors.Is(err, svc.ErrTokenInvalid):
		result.AbortWithCode(c, http.StatusUnauthorized, consts.CodeInvalidToken)
	default:
		logger.Error(ctxmeta.FromGin(c), "WebSocket 鉴权异常", logger.ErrorField("error", err))
		result.AbortWithCode(c, http.StatusInternalServerError, consts.CodeInternalError)
	}
}
