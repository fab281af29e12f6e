package ctxmeta

import (
	"context"

	"github.com/gin-gonic/gin"
)

// ctxKey 避免与其它包的 context key 冲突
type ctxKey string

const (
	keyTraceID  ctxKey = "trace_id"
	keyUserID   ctxKey = "user_id"
	keyClientIP ctxKey = "client_ip"
	keyConnID   ctxKey = "conn_id"
)

// Gin 上下文中使用的 key（由 TraceLogger / JWTAuthMiddleware / ClientIPMiddleware 写入）
const (
	GinKeyTraceID  = "trace_id"
	GinKeyUserID   = "user_id"
	GinKeyClientIP = "client_ip"
)

// WithTraceID 写入 trace_id
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, keyTraceID, traceID)
}

// TraceID 读取 trace_id。
// 同时兼容直接传入 *gin.Context 的场景（gin 以字符串 key 存储）。
func TraceID(ctx context.Context) string {
	return stringValue(ctx, keyTraceID, GinKeyTraceID)
}

// WithUserID 写入当前用户 ID
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, keyUserID, userID)
}

// UserID 读取当前用户 ID
func UserID(ctx context.Context) string {
	return stringValue(ctx, keyUserID, GinKeyUserID)
}

// WithClientIP 写入客户端 IP
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, keyClientIP, ip)
}

// ClientIP 读取客户端 IP
func ClientIP(ctx context.Context) string {
	return stringValue(ctx, keyClientIP, GinKeyClientIP)
}

// WithConnID 写入长连接 ID
func WithConnID(ctx context.Context, connID string) context.Context {
	return context.WithValue(ctx, keyConnID, connID)
}

// ConnID 读取长连接 ID
func ConnID(ctx context.Context) string {
	return stringValue(ctx, keyConnID, "")
}

// TraceIDFromGin 从 gin 上下文读取 trace_id
func TraceIDFromGin(c *gin.Context) string {
	return c.GetString(GinKeyTraceID)
}

// FromGin 把 gin 上下文中的元数据复制到 request context，
// 供 service 层以标准 context 传递。
func FromGin(c *gin.Context) context.Context {
	ctx := c.Request.Context()
	if v := c.GetString(GinKeyTraceID); v != "" {
		ctx = WithTraceID(ctx, v)
	}
	if v := c.GetString(GinKeyUserID); v != "" {
		ctx = WithUserID(ctx, v)
	}
	if v := c.GetString(GinKeyClientIP); v != "" {
		ctx = WithClientIP(ctx, v)
	}
	return ctx
}

// Detach 返回只携带元数据、不继承取消信号的新 context，
// 用于请求结束后仍需执行的后台任务。
func Detach(parent context.Context) context.Context {
	ctx := context.Background()
	if parent == nil {
		return ctx
	}
	if v := TraceID(parent); v != "" {
		ctx = WithTraceID(ctx, v)
	}
	if v := UserID(parent); v != "" {
		ctx = WithUserID(ctx, v)
	}
	if v := ClientIP(parent); v != "" {
		ctx = WithClientIP(ctx, v)
	}
	return ctx
}

func stringValue(ctx context.Context, key ctxKey, ginKey string) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	if ginKey != "" {
		if v, ok := ctx.Value(ginKey).(string); ok {
			return v
		}
	}
	return ""
}
