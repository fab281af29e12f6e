package handler

import (
	"context"

	"DateServer/apps/user/internal/middleware"
	"DateServer/consts"
	"DateServer/pkg/errorx"
	"DateServer/pkg/logger"
	"DateServer/pkg/result"

	"github.com/gin-gonic/gin"
)

// replyError 把 service 层错误转换为统一响应
// 业务错误直接返回对应错误码，服务端错误记录日志后统一返回内部错误
func replyError(ctx context.Context, c *gin.Context, msg string, err error) {
	code := errorx.CodeOf(err)
	if consts.IsNonServerError(code) {
		result.Fail(c, nil, int32(code))
		return
	}

	logger.Error(ctx, msg,
		logger.ErrorField("error", err),
	)
	if code == consts.CodeServiceUnavailable || code == consts.CodeTimeoutError {
		result.Fail(c, nil, int32(code))
		return
	}
	result.Fail(c, nil, consts.CodeInternalError)
}

// currentUser 读取认证中间件写入的用户 ID，缺失时直接返回未认证
func currentUser(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		result.Fail(c, nil, consts.CodeUnauthorized)
		return "", false
	}
	return userID, true
}
