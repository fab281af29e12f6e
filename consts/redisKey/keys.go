package rediskey

import (
	"fmt"
	"time"
)

// ==================== TTL 常量 ====================

const (
	// SignupOTPTTL 注册验证码有效期
	SignupOTPTTL = 2 * time.Minute
	// ResetOTPTTL 重置密码验证码有效期
	ResetOTPTTL = 10 * time.Minute
	// OTPResendTTL 同一邮箱验证码重发间隔
	OTPResendTTL = 1 * time.Minute

	// UserCardTTL 用户名片缓存 TTL
	UserCardTTL = 1 * time.Hour
	// UserCardEmptyTTL 用户名片空值缓存 TTL
	UserCardEmptyTTL = 5 * time.Minute
)

// OTP 类型
const (
	OTPTypeSignup int32 = 1 // 注册验证
	OTPTypeReset  int32 = 2 // 重置密码
)

// ==================== Key 构造函数 ====================

// OTPKey 生成验证码 Key: user:otp:{email}:{type}
func OTPKey(email string, otpType int32) string {
	return fmt.Sprintf("user:otp:%s:%d", email, otpType)
}

// OTPResendKey 生成验证码重发限流 Key: user:otp:1m:{email}
func OTPResendKey(email string) string {
	return fmt.Sprintf("user:otp:1m:%s", email)
}

// SessionKey 生成登录会话 Key: auth:session:{user_id}
func SessionKey(userID string) string {
	return fmt.Sprintf("auth:session:%s", userID)
}

// UserCardKey 生成用户名片缓存 Key: user:card:{user_id}
func UserCardKey(userID string) string {
	return fmt.Sprintf("user:card:%s", userID)
}

// ==================== Gateway Key 构造函数 ====================

// GatewayUserRateLimitKey 网关用户限流 Key: gateway:rate:limit:user:{user_id}
func GatewayUserRateLimitKey(userID string) string {
	return fmt.Sprintf("gateway:rate:limit:user:%s", userID)
}

// GatewayIPRateLimitKey 网关 IP 限流 Key: rate:limit:ip:{ip}
func GatewayIPRateLimitKey(ip string) string {
	return fmt.Sprintf("rate:limit:ip:%s", ip)
}

// ==================== Connect Key 构造函数 ====================

// OnlineTTL 在线连接活跃记录 TTL，心跳会续期
const OnlineTTL = 2 * time.Minute

// OnlineKey 生成用户在线连接 Key: connect:online:{user_id}，field 为连接 ID，value 为最近活跃的 unix 秒
func OnlineKey(userID string) string {
	return fmt.Sprintf("connect:online:%s", userID)
}
