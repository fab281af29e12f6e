package handler

import (
	"DateServer/apps/user/internal/dto"
	"DateServer/apps/user/internal/service"
	"DateServer/consts"
	"DateServer/pkg/ctxmeta"
	"DateServer/pkg/logger"
	"DateServer/pkg/result"
	"DateServer/pkg/util"

	"github.com/gin-gonic/gin"
)

// AuthHandler 认证处理器
type AuthHandler struct {
	authService service.IAuthService
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(authService service.IAuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Signup 用户注册接口
// @Summary 用户注册
// @Description 创建未验证账号，并向邮箱发送 6 位验证码
// @Tags 认证接口
// @Accept json
// @Produce json
// @Param request body dto.SignupRequest true "注册请求"
// @Success 200 {object} dto.SignupResponse
// @Router /api/v1/auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	ctx := ctxmeta.FromGin(c)

	// 1. 绑定请求数据
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// 参数错误属于客户端错误，不记录日志
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	// 2. 调用服务层
	resp, err := h.authService.Signup(ctx, &req)
	if err != nil {
		replyError(ctx, c, "注册服务内部错误", err)
		return
	}

	logger.Info(ctx, "用户注册成功，等待邮箱验证",
		logger.String("user_id", resp.UserID),
		logger.String("email", util.MaskEmail(resp.Email)),
	)
	result.Success(c, resp)
}

// VerifyOtp 邮箱验证接口
// @Summary 校验注册验证码
// @Tags 认证接口
// @Accept json
// @Produce json
// @Param request body dto.VerifyOtpRequest true "验证请求"
// @Router /api/v1/auth/verify-otp [post]
func (h *AuthHandler) VerifyOtp(c *gin.Context) {
	ctx := ctxmeta.FromGin(c)

	var req dto.VerifyOtpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	if err := h.authService.VerifyOtp(ctx, &req); err != nil {
		replyError(ctx, c, "邮箱验证服务内部错误", err)
		return
	}

	result.Success(c, nil)
}

// Login 用户登录接口
// @Summary 邮箱密码登录
// @Tags 认证接口
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "登录请求"
// @Success 200 {object} dto.LoginResponse
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	ctx := ctxmeta.FromGin(c)

	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	resp, err := h.authService.Login(ctx, &req)
	if err != nil {
		replyError(ctx, c, "登录服务内部错误", err)
		return
	}

	result.Success(c, resp)
}

// Logout 用户登出接口
// @Summary 登出
// @Description 删除当前登录会话，旧 Token 立即失效
// @Tags 认证接口
// @Produce json
// @Router /api/v1/auth/logout [get]
func (h *AuthHandler) Logout(c *gin.Context) {
	ctx := ctxmeta.FromGin(c)

	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.authService.Logout(ctx, userID); err != nil {
		replyError(ctx, c, "登出服务内部错误", err)
		return
	}

	result.Success(c, nil)
}

// ForgotPassword 忘记密码接口
// @Summary 发送重置密码验证码
// @Tags 认证接口
// @Accept json
// @Produce json
// @Param request body dto.ForgotPasswordRequest true "邮箱"
// @Success 200 {object} dto.ForgotPasswordResponse
// @Router /api/v1/auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	ctx := ctxmeta.FromGin(c)

	var req dto.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	resp, err := h.authService.ForgotPassword(ctx, &req)
	if err != nil {
		replyError(ctx, c, "发送重置验证码服务内部错误", err)
		return
	}

	result.Success(c, resp)
}

// ResetPassword 重置密码接口
// @Summary 校验验证码并重置密码
// @Tags 认证接口
// @Accept json
// @Produce json
// @Param request body dto.ResetPasswordRequest true "重置密码请求"
// @Router /api/v1/auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	ctx := ctxmeta.FromGin(c)

	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	if err := h.authService.ResetPassword(ctx, &req); err != nil {
		replyError(ctx, c, "重置密码服务内部错误", err)
		return
	}

	result.Success(c, nil)
}

// DeleteAccount 注销账号接口
// @Summary 校验邮箱密码后删除账号
// @Tags 认证接口
// @Accept json
// @Produce json
// @Param request body dto.DeleteAccountRequest true "注销请求"
// @Router /api/v1/auth/delete-user [delete]
func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	ctx := ctxmeta.FromGin(c)

	var req dto.DeleteAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	if err := h.authService.DeleteAccount(ctx, &req); err != nil {
		replyError(ctx, c, "注销账号服务内部错误", err)
		return
	}

	logger.Info(ctx, "账号已注销",
		logger.String("email", util.MaskEmail(req.Email)),
	)
	result.Success(c, nil)
}
