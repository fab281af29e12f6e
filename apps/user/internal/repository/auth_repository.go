package repository

import (
	"context"
	"time"

	"DateServer/apps/user/mq"
	rediskey "DateServer/consts/redisKey"

	"github.com/redis/go-redis/v9"
)

// authRepositoryImpl 验证码与会话数据访问层实现
type authRepositoryImpl struct {
	redisClient *redis.Client
}

// NewAuthRepository 创建认证仓储实例
func NewAuthRepository(redisClient *redis.Client) IAuthRepository {
	return &authRepositoryImpl{redisClient: redisClient}
}

// StoreOTP 存储验证码
func (r *authRepositoryImpl) StoreOTP(ctx context.Context, email, otp string, otpType int32, ttl time.Duration) error {
	if r.redisClient == nil {
		return ErrRedisUnavailable
	}
	return WrapRedisError(r.redisClient.Set(ctx, rediskey.OTPKey(email, otpType), otp, ttl).Err())
}

// GetOTP 获取验证码
func (r *authRepositoryImpl) GetOTP(ctx context.Context, email string, otpType int32) (string, error) {
	if r.redisClient == nil {
		return "", ErrRedisUnavailable
	}
	val, err := r.redisClient.Get(ctx, rediskey.OTPKey(email, otpType)).Result()
	if err != nil {
		return "", WrapRedisError(err)
	}
	return val, nil
}

// DeleteOTP 删除验证码
func (r *authRepositoryImpl) DeleteOTP(ctx context.Context, email string, otpType int32) error {
	if r.redisClient == nil {
		return ErrRedisUnavailable
	}
	return WrapRedisError(r.redisClient.Del(ctx, rediskey.OTPKey(email, otpType)).Err())
}

// AcquireResend 同一邮箱一分钟内只允许发送一次
func (r *authRepositoryImpl) AcquireResend(ctx context.Context, email string) (bool, error) {
	if r.redisClient == nil {
		return false, ErrRedisUnavailable
	}
	ok, err := r.redisClient.SetNX(ctx, rediskey.OTPResendKey(email), 1, rediskey.OTPResendTTL).Result()
	if err != nil {
		return false, WrapRedisError(err)
	}
	return ok, nil
}

// StoreSession 保存登录会话
func (r *authRepositoryImpl) StoreSession(ctx context.Context, userID, tokenHash string, ttl time.Duration) error {
	if r.redisClient == nil {
		return ErrRedisUnavailable
	}
	return WrapRedisError(r.redisClient.Set(ctx, rediskey.SessionKey(userID), tokenHash, ttl).Err())
}

// GetSession 获取登录会话
func (r *authRepositoryImpl) GetSession(ctx context.Context, userID string) (string, error) {
	if r.redisClient == nil {
		return "", ErrRedisUnavailable
	}
	val, err := r.redisClient.Get(ctx, rediskey.SessionKey(userID)).Result()
	if err != nil {
		return "", WrapRedisError(err)
	}
	return val, nil
}

// DeleteSession 删除登录会话
func (r *authRepositoryImpl) DeleteSession(ctx context.Context, userID string) error {
	if r.redisClient == nil {
		return ErrRedisUnavailable
	}
	return WrapRedisError(r.redisClient.Del(ctx, rediskey.SessionKey(userID)).Err())
}

// ClearAccount 用 Pipeline 删除账号相关的所有 Key
func (r *authRepositoryImpl) ClearAccount(ctx context.Context, userID, email string) error {
	if r.redisClient == nil {
		return ErrRedisUnavailable
	}
	keys := []string{
		rediskey.SessionKey(userID),
		rediskey.OTPKey(email, rediskey.OTPTypeSignup),
		rediskey.OTPKey(email, rediskey.OTPTypeReset),
		rediskey.OTPResendKey(email),
	}
	_, err := r.redisClient.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, k := range keys {
			pipe.Del(ctx, k)
		}
		return nil
	})
	if err != nil {
		cmds := make([]mq.RedisCmd, 0, len(keys))
		for _, k := range keys {
			cmds = append(cmds, mq.RedisCmd{Command: "del", Args: []interface{}{k}})
		}
		LogAndRetryRedisError(ctx, mq.BuildPipelineTask(cmds).WithSource("delete-account"), err)
		return WrapRedisError(err)
	}
	return nil
}
