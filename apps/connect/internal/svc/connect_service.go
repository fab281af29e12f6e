package svc

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"DateServer/apps/user/mq"
	rediskey "DateServer/consts/redisKey"
	"DateServer/pkg/logger"
	"DateServer/pkg/util"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrTokenRequired 握手参数中缺少 token
	ErrTokenRequired = errors.New("token is required")
	// ErrTokenInvalid token 非法、已过期，或登录会话已失效
	ErrTokenInvalid = errors.New("token is invalid")
	// ErrRoomMembersRequired joinRoom 缺少 senderId / receiverId
	ErrRoomMembersRequired = errors.New("senderId and receiverId are required")
	// ErrNotRoomMember 当前用户不是房间的任何一方
	ErrNotRoomMember = errors.New("not a member of the room")
)

// Session 连接鉴权后的身份信息，整个连接生命周期复用
type Session struct {
	UserID   string
	ConnID   string
	ClientIP string
}

// Envelope WebSocket 通用消息包：Type 为消息类型，Data 由上层按 Type 再解析
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// ErrorData type=error 时的 data 结构
type ErrorData struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// JoinRoomData joinRoom / leaveRoom 的 data 结构
type JoinRoomData struct {
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
}

// RoomData 房间操作回执
type RoomData struct {
	Room string `json:"room"`
}

// ConnectService connect 的核心业务逻辑
type ConnectService struct {
	redisClient *redis.Client
	now         func() time.Time
}

// NewConnectService 创建业务服务实例，redisClient 可以为空
func NewConnectService(redisClient *redis.Client) *ConnectService {
	return &ConnectService{redisClient: redisClient, now: time.Now}
}

// Authenticate 校验 WebSocket 握手令牌。
// 1. 解析 JWT；
// 2. Redis 可用时校验 auth:session:{user_id} 中存储的 token md5，登出或注销后立即失效。
//
// Redis 异常时退化为仅 JWT 校验。
func (s *ConnectService) Authenticate(ctx context.Context, token, connID, clientIP string) (*Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrTokenRequired
	}

	claims, err := util.ParseToken(token)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	if s.redisClient != nil {
		storedHash, getErr := s.redisClient.Get(ctx, rediskey.SessionKey(claims.UserID)).Result()
		switch {
		case errors.Is(getErr, redis.Nil):
			return nil, ErrTokenInvalid
		case getErr != nil:
			logger.Warn(ctx, "连接鉴权读取 Redis 失败，降级为仅 JWT 校验",
				logger.String("user_id", claims.UserID),
				logger.ErrorField("error", getErr),
			)
		default:
			if storedHash != util.MD5Hex(token) {
				return nil, ErrTokenInvalid
			}
		}
	}

	return &Session{
		UserID:   claims.UserID,
		ConnID:   connID,
		ClientIP: strings.TrimSpace(clientIP),
	}, nil
}

// ResolveRoom 解析 joinRoom/leaveRoom 负载并返回房间号。
// 房间号与双方顺序无关，当前用户必须是其中一方。
func (s *ConnectService) ResolveRoom(session *Session, data json.RawMessage) (string, error) {
	var req JoinRoomData
	if len(data) == 0 {
		return "", ErrRoomMembersRequired
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return "", err
	}
	req.SenderID = strings.TrimSpace(req.SenderID)
	req.ReceiverID = strings.TrimSpace(req.ReceiverID)
	if req.SenderID == "" || req.ReceiverID == "" {
		return "", ErrRoomMembersRequired
	}
	if session.UserID != req.SenderID && session.UserID != req.ReceiverID {
		return "", ErrNotRoomMember
	}
	return mq.RoomKey(req.SenderID, req.ReceiverID), nil
}

// OnConnect 连接建立后记录在线状态
func (s *ConnectService) OnConnect(ctx context.Context, session *Session) {
	s.touchOnline(ctx, session)
}

// OnHeartbeat 收到心跳后续期在线状态
func (s *ConnectService) OnHeartbeat(ctx context.Context, session *Session) {
	s.touchOnline(ctx, session)
}

// OnDisconnect 连接断开后清除在线记录
func (s *ConnectService) OnDisconnect(ctx context.Context, session *Session) {
	if s.redisClient == nil || session.UserID == "" {
		return
	}
	if err := s.redisClient.HDel(ctx, rediskey.OnlineKey(session.UserID), session.ConnID).Err(); err != nil {
		logger.Warn(ctx, "清除在线状态失败",
			logger.String("user_id", session.UserID),
			logger.String("conn_id", session.ConnID),
			logger.ErrorField("error", err),
		)
	}
}

// ParseEnvelope 解析客户端上行帧，type 缺失或 JSON 不合法时返回错误
func (s *ConnectService) ParseEnvelope(raw []byte) (*Envelope, error) {
	var envelope Envelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, err
	}
	envelope.Type = strings.TrimSpace(envelope.Type)
	if envelope.Type == "" {
		return nil, errors.New("type is required")
	}
	return &envelope, nil
}

// MarshalEnvelope 组装并序列化下行帧，data=nil 时省略 data 字段
func (s *ConnectService) MarshalEnvelope(msgType string, data any) ([]byte, error) {
	envelope := map[string]any{
		"type": msgType,
	}
	if data != nil {
		envelope["data"] = data
	}
	return json.Marshal(envelope)
}

// touchOnline 在线记录：connect:online:{user_id} field=conn_id value=unix 秒，每次写入续期 TTL
func (s *ConnectService) touchOnline(ctx context.Context, session *Session) {
	if s.redisClient == nil || session.UserID == "" || session.ConnID == "" {
		return
	}

	key := rediskey.OnlineKey(session.UserID)
	pipe := s.redisClient.Pipeline()
	pipe.HSet(ctx, key, session.ConnID, s.now().Unix())
	pipe.Expire(ctx, key, rediskey.OnlineTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		logger.Warn(ctx, "更新在线状态失败",
			logger.String("user_id", session.UserID),
			logger.String("conn_id", session.ConnID),
			logger.ErrorField("error", err),
		)
	}
}
