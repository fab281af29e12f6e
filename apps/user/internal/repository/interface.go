package repository

import (
	"context"
	"time"

	"DateServer/model"
)

// ==================== 用户文档 Repository ====================

// DiscoverFilter 发现页查询条件，零值字段表示不过滤
type DiscoverFilter struct {
	ExcludeIDs []string // 排除的用户（自己 + 已配对）
	MinAge     int
	MaxAge     int
	Gender     string
	BodyType   string
	Location   string
}

// IUserRepository 用户文档数据访问接口。
// 所有写操作都是单文档原子更新，不使用跨文档事务。
type IUserRepository interface {
	// EnsureIndexes 创建集合索引（email 唯一等）
	EnsureIndexes(ctx context.Context) error

	// FindByID 根据 ID 查询完整用户文档（含消息），不存在返回 ErrRecordNotFound
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail 根据邮箱查询用户，不存在返回 ErrRecordNotFound
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// FindByIDs 批量查询用户（不含消息与密码），结果按传入顺序排列，不存在的跳过
	FindByIDs(ctx context.Context, ids []string) ([]*model.User, error)

	// Create 创建用户，邮箱冲突返回 ErrDuplicateKey
	Create(ctx context.Context, user *model.User) error

	// Delete 删除用户，返回是否确实删除
	Delete(ctx context.Context, id string) (bool, error)

	// DeleteIfUnverified 仅当用户仍未验证时删除
	DeleteIfUnverified(ctx context.Context, id string) (bool, error)

	// UpdateFields 部分更新：set 中的字段覆盖，unset 中的字段移除
	UpdateFields(ctx context.Context, id string, set map[string]interface{}, unset ...string) error

	// Discover 发现页分页查询，返回当前页与总数
	Discover(ctx context.Context, filter DiscoverFilter, skip, limit int64) ([]*model.User, int64, error)

	// ==================== 配对关系 ====================

	// AddLike 将 likerID 加入 targetID 的 likes（$addToSet）
	AddLike(ctx context.Context, targetID, likerID string) error

	// LinkMatch 单文档原子操作：从 userID 的 likes 移除 otherID，并将 otherID 加入 matches
	LinkMatch(ctx context.Context, userID, otherID string) error

	// UnlinkMatch 从 userID 的 matches 移除 otherID
	UnlinkMatch(ctx context.Context, userID, otherID string) error

	// ==================== 消息 ====================

	// PushMessage 追加一条消息到 ownerID 的消息日志
	PushMessage(ctx context.Context, ownerID string, msg *model.Message) error

	// PullMessages 从 ownerID 的消息日志中移除指定 ID 的消息
	PullMessages(ctx context.Context, ownerID string, messageIDs ...string) error
}

// ==================== 认证 Repository ====================

// IAuthRepository 验证码与登录会话（Redis）
type IAuthRepository interface {
	// StoreOTP 存储验证码（带过期时间）
	// otpType: 验证码类型 (1:注册 2:重置密码)
	StoreOTP(ctx context.Context, email, otp string, otpType int32, ttl time.Duration) error

	// GetOTP 获取验证码，不存在或已过期返回 ErrRedisNil
	GetOTP(ctx context.Context, email string, otpType int32) (string, error)

	// DeleteOTP 删除验证码（消耗验证码）
	DeleteOTP(ctx context.Context, email string, otpType int32) error

	// AcquireResend 验证码重发限流，返回 false 表示间隔内已发送过
	AcquireResend(ctx context.Context, email string) (bool, error)

	// StoreSession 保存登录会话（token 摘要）
	StoreSession(ctx context.Context, userID, tokenHash string, ttl time.Duration) error

	// GetSession 获取登录会话，不存在返回 ErrRedisNil
	GetSession(ctx context.Context, userID string) (string, error)

	// DeleteSession 删除登录会话
	DeleteSession(ctx context.Context, userID string) error

	// ClearAccount 注销账号时一次性清理会话、验证码与重发限流，失败时投递重试任务
	ClearAccount(ctx context.Context, userID, email string) error
}

// ==================== 用户名片缓存 ====================

// ICardCache 用户名片多级缓存：进程内 LRU -> Redis -> Mongo
type ICardCache interface {
	// Get 获取用户名片，用户不存在返回 ErrRecordNotFound
	Get(ctx context.Context, userID string) (*model.UserCard, error)

	// Invalidate 失效名片缓存，Redis 删除失败时投递重试任务
	Invalidate(ctx context.Context, userIDs ...string)
}
