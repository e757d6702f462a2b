// Package errors 提供统一的错误定义
package errors

import (
	"fmt"
	"net/http"
	"strings"
)

// ErrorCode 错误码类型，对外暴露为机器可读的 code 字段
type ErrorCode string

// 预定义错误码
const (
	// 认证错误
	CodeAuthRequired      ErrorCode = "AUTH_REQUIRED"
	CodeAuthHeaderInvalid ErrorCode = "AUTH_HEADER_INVALID"

	// 请求校验错误
	CodeMethodNotAllowed       ErrorCode = "METHOD_NOT_ALLOWED"
	CodeValidationFailed       ErrorCode = "VALIDATION_FAILED"
	CodeModeInvalid            ErrorCode = "MODE_INVALID"
	CodeSettingsRequired       ErrorCode = "SETTINGS_REQUIRED"
	CodeNovelIDRequired        ErrorCode = "NOVEL_ID_REQUIRED"
	CodeRewriteContentRequired ErrorCode = "REWRITE_CONTENT_REQUIRED"

	// 连接配置错误
	CodeAPIBaseURLRequired ErrorCode = "API_BASE_URL_REQUIRED"
	CodeModelRequired      ErrorCode = "MODEL_REQUIRED"

	// 上游与内部错误
	CodeRateLimited   ErrorCode = "RATE_LIMITED"
	CodeUpstreamError ErrorCode = "UPSTREAM_ERROR"
	CodeInternalError ErrorCode = "INTERNAL_ERROR"
)

// AppError 应用错误
type AppError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	HTTPStatus int       `json:"-"`
	Err        error     `json:"-"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail 添加详细信息
func (e *AppError) WithDetail(detail string) *AppError {
	e.Detail = detail
	return e
}

// WithError 添加底层错误
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

// New 创建新的应用错误
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

// Wrap 包装错误
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Err:        err,
	}
}

// APIKeyRequired 创建指定提供商的密钥缺失错误
// 错误码形如 API_KEY_REQUIRED_DEEPSEEK，方便前端定位需要配置哪家密钥
func APIKeyRequired(providerKey string) *AppError {
	return &AppError{
		Code:       ErrorCode("API_KEY_REQUIRED_" + strings.ToUpper(providerKey)),
		Message:    fmt.Sprintf("请先配置 %s 的 API 密钥", providerKey),
		HTTPStatus: http.StatusBadRequest,
	}
}

// IsAPIKeyRequired 检查是否为密钥缺失错误
func IsAPIKeyRequired(err error) bool {
	appErr, ok := err.(*AppError)
	return ok && strings.HasPrefix(string(appErr.Code), "API_KEY_REQUIRED_")
}

// codeToHTTPStatus 错误码转 HTTP 状态码
func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case CodeAuthRequired, CodeAuthHeaderInvalid:
		return http.StatusUnauthorized
	case CodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case CodeValidationFailed, CodeModeInvalid, CodeSettingsRequired,
		CodeNovelIDRequired, CodeRewriteContentRequired,
		CodeAPIBaseURLRequired, CodeModelRequired:
		return http.StatusBadRequest
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeUpstreamError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// 预定义错误
var (
	ErrAuthRequired      = New(CodeAuthRequired, "未授权")
	ErrAuthHeaderInvalid = New(CodeAuthHeaderInvalid, "认证头格式错误")
	ErrModeInvalid       = New(CodeModeInvalid, "不支持的生成模式")
	ErrSettingsRequired  = New(CodeSettingsRequired, "缺少小说设定")
	ErrNovelIDRequired   = New(CodeNovelIDRequired, "续写模式需要指定小说 ID")
	ErrRewriteRequired   = New(CodeRewriteContentRequired, "重写模式需要提供原章节内容")
	ErrBaseURLRequired   = New(CodeAPIBaseURLRequired, "请配置 API Base URL")
	ErrModelRequired     = New(CodeModelRequired, "请配置模型名称")
	ErrInternal          = New(CodeInternalError, "internal server error")
)

// IsAppError 检查是否为 AppError
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// AsAppError 将错误转换为 AppError
func AsAppError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return Wrap(err, CodeInternalError, "internal server error")
}
