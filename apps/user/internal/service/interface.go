package service

import (
	"context"
	"io"

	"DateServer/apps/user/internal/dto"
	"DateServer/model"
)

// ==================== 认证服务接口 ====================

// IAuthService 认证服务接口
// 职责：注册、邮箱验证、登录登出、找回密码、注销账号、Token 校验
type IAuthService interface {
	// Signup 用户注册：创建未验证账号并发送验证码，超时未验证自动删除
	Signup(ctx context.Context, req *dto.SignupRequest) (*dto.SignupResponse, error)

	// VerifyOtp 校验注册验证码并激活账号
	VerifyOtp(ctx context.Context, req *dto.VerifyOtpRequest) error

	// Login 邮箱密码登录
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)

	// Logout 登出，删除登录会话
	Logout(ctx context.Context, userID string) error

	// ForgotPassword 发送重置密码验证码
	ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) (*dto.ForgotPasswordResponse, error)

	// ResetPassword 校验验证码并重置密码
	ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error

	// DeleteAccount 校验密码后删除账号
	DeleteAccount(ctx context.Context, req *dto.DeleteAccountRequest) error

	// Authenticate 校验 Token 与登录会话，返回用户 ID
	Authenticate(ctx context.Context, token string) (string, error)
}

// ==================== 用户资料服务接口 ====================

// IProfileService 用户资料服务接口
type IProfileService interface {
	// GetMe 获取本人资料
	GetMe(ctx context.Context, userID string) (*dto.Profile, error)

	// UpdateProfile 更新姓名、兴趣与外部链接
	UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*dto.Profile, error)

	// UpdateDetails 更新详细资料
	UpdateDetails(ctx context.Context, userID string, req *dto.UpdateDetailsRequest) (*dto.Profile, error)

	// UpdateShows 更新喜欢的剧集
	UpdateShows(ctx context.Context, userID string, req *dto.UpdateShowsRequest) (*dto.Profile, error)

	// UploadPoster 上传剧集海报，返回可公开访问的地址
	UploadPoster(ctx context.Context, userID string, file io.Reader, size int64, fileName, contentType string) (*dto.UploadPosterResponse, error)

	// GetCard 获取用户名片
	GetCard(ctx context.Context, userID string) (*model.UserCard, error)
}

// ==================== 发现页服务接口 ====================

// IDiscoverService 发现页服务接口
type IDiscoverService interface {
	// Discover 按条件分页查询候选人，排除自己与已配对用户
	Discover(ctx context.Context, userID string, req *dto.DiscoverRequest) (*dto.DiscoverResponse, error)
}

// ==================== 配对服务接口 ====================

// IMatchService 配对服务接口
type IMatchService interface {
	// Like 喜欢一个用户，双向喜欢时配对成功并开启消息窗口
	Like(ctx context.Context, likerID, likedID string) (*dto.LikeResponse, error)

	// ListMatches 配对列表
	ListMatches(ctx context.Context, userID string) (*dto.ListMatchesResponse, error)

	// ListLikes 喜欢我、等待我回应的用户列表
	ListLikes(ctx context.Context, userID string) (*dto.ListLikesResponse, error)
}

// ==================== 消息服务接口 ====================

// IMessageService 消息服务接口
type IMessageService interface {
	// Send 发送消息：写入发送方消息日志（每个聊天对象最多保留 10 条）并推送到聊天房间
	Send(ctx context.Context, senderID, receiverID, content string) (*dto.SendMessageResponse, error)

	// GetConversation 合并双方消息日志，去重后按时间升序返回
	GetConversation(ctx context.Context, userA, userB string) (*dto.ConversationResponse, error)
}
