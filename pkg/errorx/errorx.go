package errorx

import (
	"context"
	"errors"
	"fmt"

	"DateServer/consts"
)

// Kind 错误类别，决定 handler 如何对外响应
type Kind string

const (
	KindNotFound        Kind = "NOT_FOUND"
	KindValidation      Kind = "VALIDATION"
	KindConflict        Kind = "CONFLICT"
	KindUnauthenticated Kind = "UNAUTHENTICATED"
	KindUnauthorized    Kind = "UNAUTHORIZED"
	KindIntegrity       Kind = "INTEGRITY"  // 两份文档之间状态不一致，需要人工排查
	KindDependency      Kind = "DEPENDENCY" // 存储/缓存/邮件等外部依赖失败
	KindInternal        Kind = "INTERNAL"
)

// AppError 业务错误：类别 + 业务错误码 + 可选的底层原因
type AppError struct {
	Kind    Kind   `json:"kind"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Cause }

// New 创建业务错误，message 为空时取错误码默认文案
func New(kind Kind, code int, message string) error {
	if message == "" {
		message = consts.GetMessage(int32(code))
	}
	return &AppError{Kind: kind, Code: code, Message: message}
}

// Wrap 创建携带底层原因的业务错误
func Wrap(kind Kind, code int, message string, cause error) error {
	if message == "" {
		message = consts.GetMessage(int32(code))
	}
	return &AppError{Kind: kind, Code: code, Message: message, Cause: cause}
}

func NotFound(code int) error {
	return New(KindNotFound, code, "")
}

func Validation(code int, message string) error {
	return New(KindValidation, code, message)
}

func Conflict(code int) error {
	return New(KindConflict, code, "")
}

func Unauthenticated(code int) error {
	return New(KindUnauthenticated, code, "")
}

func Unauthorized(code int) error {
	return New(KindUnauthorized, code, "")
}

// Integrity 一致性错误，对外统一报 CodeIntegrityError
func Integrity(message string, cause error) error {
	return Wrap(KindIntegrity, consts.CodeIntegrityError, message, cause)
}

// Dependency 外部依赖错误，对外统一报 CodeServiceUnavailable
func Dependency(message string, cause error) error {
	return Wrap(KindDependency, consts.CodeServiceUnavailable, message, cause)
}

// Internal 未归类的内部错误
func Internal(message string, cause error) error {
	return Wrap(KindInternal, consts.CodeInternalError, message, cause)
}

// As 提取 *AppError
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf 提取业务错误码。
// 非 AppError：超时映射为 CodeTimeoutError，其余为 CodeInternalError。
func CodeOf(err error) int {
	if err == nil {
		return consts.CodeSuccess
	}
	if appErr, ok := As(err); ok {
		return appErr.Code
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return consts.CodeTimeoutError
	}
	return consts.CodeInternalError
}

// KindOf 提取错误类别，非 AppError 归为 KindInternal
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind 判断 err 是否属于指定类别
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
