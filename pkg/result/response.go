package result

import (
	"net/http"

	"DateServer/consts"
	"DateServer/pkg/ctxmeta"

	"github.com/gin-gonic/gin"
)

// Response 统一响应结构体
type Response struct {
	Code    int32       `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
	TraceId string      `json:"trace_id"`
}

// Result 返回响应（HTTP 状态码恒为 200，业务状态看 code）
func Result(c *gin.Context, data interface{}, message string, code int32) {
	traceId := ctxmeta.TraceIDFromGin(c)
	if message == "" {
		message = consts.GetMessage(code)
	}
	c.JSON(http.StatusOK, Response{
		Code:    code,
		Message: message,
		Data:    data,
		TraceId: traceId,
	})
}

// Success 返回成功响应
func Success(c *gin.Context, data interface{}) {
	Result(c, data, "", consts.CodeSuccess)
}

// Fail 返回失败响应
func Fail(c *gin.Context, data interface{}, code int32) {
	Result(c, data, "", code)
}

// SuccessWithMessage 返回成功响应并自定义消息
func SuccessWithMessage(c *gin.Context, data interface{}, message string) {
	Result(c, data, message, consts.CodeSuccess)
}

// AbortWithCode 以指定 HTTP 状态码中断请求（中间件使用）
func AbortWithCode(c *gin.Context, status int, code int32) {
	c.AbortWithStatusJSON(status, Response{
		Code:    code,
		Message: consts.GetMessage(code),
		TraceId: ctxmeta.TraceIDFromGin(c),
	})
}
