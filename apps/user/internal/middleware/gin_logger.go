package middleware

import (
	"errors"
	"net"
	"net/http"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"DateServer/consts"
	"DateServer/pkg/ctxmeta"
	"DateServer/pkg/logger"
	"DateServer/pkg/result"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// slowRequestThreshold 超过该耗时的请求记为慢请求
const slowRequestThreshold = 2 * time.Second

// GinLogger 请求日志中间件
// 只记录服务端错误(5xx)和慢请求(>2s)，正常请求不记录
func GinLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		cost := time.Since(start)
		status := c.Writer.Status()
		if status >= http.StatusInternalServerError || cost > slowRequestThreshold {
			logger.Warn(ctxmeta.FromGin(c), "慢请求或服务端错误",
				logger.Int("status", status),
				logger.String("method", c.Request.Method),
				logger.String("path", path),
				logger.String("query", query),
				logger.String("ip", c.GetString(ctxmeta.GinKeyClientIP)),
				logger.String("user-agent", c.Request.UserAgent()),
				logger.String("errors", c.Errors.ByType(gin.ErrorTypePrivate).String()),
				logger.Duration("cost", cost),
			)
		}
	}
}

// GinRecovery 捕获 panic，记录堆栈并返回统一的内部错误响应
func GinRecovery(stack bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			ctx := ctxmeta.FromGin(c)

			// 客户端断开连接时无法再写响应
			if isBrokenPipe(rec) {
				logger.Warn(ctx, "客户端连接已断开",
					logger.String("path", c.Request.URL.Path),
					logger.Any("error", rec),
				)
				c.Abort()
				return
			}

			fields := []zap.Field{
				logger.Any("error", rec),
				logger.String("method", c.Request.Method),
				logger.String("path", c.Request.URL.Path),
			}
			if stack {
				fields = append(fields, logger.String("stack", string(debug.Stack())))
			}
			logger.Error(ctx, "请求处理发生 panic", fields...)
			result.AbortWithCode(c, http.StatusInternalServerError, consts.CodeInternalError)
		}()
		c.Next()
	}
}

func isBrokenPipe(rec any) bool {
	err, ok := rec.(error)
	if !ok {
		return false
	}
	var opErr *net.OpError
	if !errors.As(err, &opErr) {
		return false
	}
	var sysErr *os.SyscallError
	if !errors.As(opErr, &sysErr) {
		return false
	}
	msg := strings.ToLower(sysErr.Error())
	return strings.Contains(msg, "broken pipe") || strings.Contains(msg, "connection reset by peer")
}
