package consts

// 通用错误码
const (
	CodeSuccess = 0 // 成功
)

// 客户端错误 (1xxxx)
const (
	CodeParamError       = 10001 // 参数验证失败
	CodeBodyError        = 10002 // 请求体格式错误
	CodeResourceNotFound = 10003 // 资源不存在
	CodeMethodNotAllowed = 10004 // 请求方法不允许
	CodeTooManyRequests  = 10005 // 请求过于频繁
	CodeBodyTooLarge     = 10006 // 请求体过大
)

// 认证错误 (2xxxx)
const (
	CodeUnauthorized   = 20001 // 未认证
	CodeInvalidToken   = 20002 // Token 无效
	CodeTokenExpired   = 20003 // Token 已过期
	CodePermissionDeny = 20004 // 权限不足
)

// 用户模块错误 (11xxx)
const (
	CodeUserNotFound      = 11001 // 用户不存在
	CodeUserAlreadyExist  = 11002 // 用户已存在
	CodePasswordError     = 11003 // 密码错误
	CodeUserNotVerified   = 11004 // 邮箱未验证
	CodeVerifyCodeError   = 11006 // 验证码错误
	CodeVerifyCodeExpire  = 11007 // 验证码已过期
	CodeVerifyCodeTooMany = 11008 // 验证码发送过于频繁
	CodeFileTypeError     = 11009 // 文件类型不支持
	CodeFileTooLarge      = 11010 // 文件过大
)

// 配对模块错误 (12xxx)
const (
	CodeAlreadyMatched = 12001 // 已经配对
	CodeAlreadyLiked   = 12002 // 已经喜欢过
	CodeCannotLikeSelf = 12003 // 不能喜欢自己
)

// 消息模块错误 (13xxx)
const (
	CodeMessageNotFound       = 13001 // 消息不存在
	CodeMessageSendFail       = 13002 // 消息发送失败
	CodeMessageFieldsRequired = 13003 // 发送方、接收方、内容均不能为空
)

// 服务端错误 (3xxxx)
const (
	CodeInternalError      = 30001 // 服务器内部错误
	CodeServiceUnavailable = 30002 // 服务暂不可用
	CodeTimeoutError       = 30003 // 请求超时
	CodeIntegrityError     = 30004 // 数据一致性异常
)

// MessageCapPerPartner 每个用户针对同一聊天对象保留的消息上限
const MessageCapPerPartner = 10

// 错误消息映射
var CodeMessage = map[int32]string{
	CodeSuccess: "success",

	// 客户端错误
	CodeParamError:       "参数验证失败",
	CodeBodyError:        "请求体格式错误",
	CodeResourceNotFound: "资源不存在",
	CodeMethodNotAllowed: "请求方法不允许",
	CodeTooManyRequests:  "请求过于频繁",
	CodeBodyTooLarge:     "请求体过大",

	// 认证错误
	CodeUnauthorized:   "未认证",
	CodeInvalidToken:   "Token 无效",
	CodeTokenExpired:   "Token 已过期",
	CodePermissionDeny: "权限不足",

	// 用户模块
	CodeUserNotFound:      "用户不存在",
	CodeUserAlreadyExist:  "用户已存在",
	CodePasswordError:     "邮箱或密码错误",
	CodeUserNotVerified:   "邮箱未验证",
	CodeVerifyCodeError:   "验证码错误",
	CodeVerifyCodeExpire:  "验证码已过期",
	CodeVerifyCodeTooMany: "验证码发送过于频繁",
	CodeFileTypeError:     "文件类型不支持",
	CodeFileTooLarge:      "文件过大",

	// 配对模块
	CodeAlreadyMatched: "已经配对",
	CodeAlreadyLiked:   "已经喜欢过该用户",
	CodeCannotLikeSelf: "不能喜欢自己",

	// 消息模块
	CodeMessageNotFound:       "消息不存在",
	CodeMessageSendFail:       "消息发送失败",
	CodeMessageFieldsRequired: "发送方、接收方、内容均不能为空",

	// 服务端错误
	CodeInternalError:      "服务器内部错误",
	CodeServiceUnavailable: "服务暂不可用",
	CodeTimeoutError:       "请求超时",
	CodeIntegrityError:     "数据一致性异常",
}

// GetMessage 根据错误码获取错误消息
func GetMessage(code int32) string {
	if msg, ok := CodeMessage[code]; ok {
		return msg
	}
	return "未知错误"
}

// IsNonServerError 判断是否为可直接返回给客户端的业务错误（非 3xxxx 服务端错误）
func IsNonServerError(code int) bool {
	return code != CodeSuccess && code < 30000
}
