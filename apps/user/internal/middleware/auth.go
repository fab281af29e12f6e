package middleware

import (
	"context"
	"net/http"
	"strings"

	"DateServer/consts"
	"DateServer/pkg/ctxmeta"
	"DateServer/pkg/errorx"
	"DateServer/pkg/logger"
	"DateServer/pkg/result"

	"github.com/gin-gonic/gin"
)

// Authenticator 校验令牌并返回用户 ID，由 service.IAuthService 实现
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (string, error)
}

// JWTAuthMiddleware JWT 认证中间件
// 从请求头中提取 Token 并验证，验证通过后将用户 ID 存入 Context
func JWTAuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. 从 Header 中获取 Authorization
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			// 客户端请求错误,属于正常业务流程,不记录日志
			result.AbortWithCode(c, http.StatusUnauthorized, consts.CodeUnauthorized)
			return
		}

		// 2. 验证格式: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			result.AbortWithCode(c, http.StatusUnauthorized, consts.CodeInvalidToken)
			return
		}

		// 3. 校验签名与登录会话
		userID, err := auth.Authenticate(ctxmeta.FromGin(c), strings.TrimSpace(parts[1]))
		if err != nil {
			code := errorx.CodeOf(err)
			if !consts.IsNonServerError(code) {
				logger.Error(ctxmeta.FromGin(c), "认证服务异常", logger.ErrorField("error", err))
				code = consts.CodeInvalidToken
			}
			result.AbortWithCode(c, http.StatusUnauthorized, int32(code))
			return
		}

		// 4. 将用户信息存入 Context，供后续 Handler 使用
		c.Set(ctxmeta.GinKeyUserID, userID)

		c.Next()
	}
}

// GetUserID 从 Context 中获取当前登录用户的 ID
func GetUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(ctxmeta.GinKeyUserID)
	return userID, userID != ""
}
