package dto

// ==================== 认证相关 DTO ====================

// SignupRequest 注册请求 DTO
type SignupRequest struct {
	FirstName       string `json:"firstName" binding:"required,max=50"`                 // 名
	LastName        string `json:"lastName" binding:"required,max=50"`                  // 姓
	Email           string `json:"email" binding:"required,email"`                      // 邮箱
	Password        string `json:"password" binding:"required,min=8,max=50"`            // 密码
	ConfirmPassword string `json:"confirmPassword" binding:"required,eqfield=Password"` // 确认密码
}

// SignupResponse 注册响应 DTO
type SignupResponse struct {
	UserID        string `json:"userId"`        // 用户ID
	Email         string `json:"email"`         // 邮箱
	ExpireSeconds int64  `json:"expireSeconds"` // 验证码有效期(秒)
}

// VerifyOtpRequest 注册验证码校验请求 DTO
type VerifyOtpRequest struct {
	Email string `json:"email" binding:"required,email"`
	Otp   string `json:"otp" binding:"required,len=6,numeric"`
}

// LoginRequest 登录请求 DTO
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=50"`
}

// LoginResponse 登录响应 DTO
type LoginResponse struct {
	Token     string   `json:"token"`     // 访问令牌
	TokenType string   `json:"tokenType"` // 令牌类型
	ExpiresIn int64    `json:"expiresIn"` // 过期时间(秒)
	User      *Profile `json:"user"`      // 用户信息
}

// ForgotPasswordRequest 忘记密码请求 DTO
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ForgotPasswordResponse 忘记密码响应 DTO
type ForgotPasswordResponse struct {
	ExpireSeconds int64 `json:"expireSeconds"`
}

// ResetPasswordRequest 重置密码请求 DTO
type ResetPasswordRequest struct {
	Email              string `json:"email" binding:"required,email"`
	Otp                string `json:"otp" binding:"required,len=6,numeric"`
	NewPassword        string `json:"newPassword" binding:"required,min=8,max=50"`
	ConfirmNewPassword string `json:"confirmNewPassword" binding:"required,eqfield=NewPassword"`
}

// DeleteAccountRequest 注销账号请求 DTO
type DeleteAccountRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
