package dto

import (
	"github.com/gin-gonic/gin"

	"novelforge-api/pkg/errors"
)

// ErrorResponse 错误响应结构
// error 为人类可读消息，code 为机器可读错误码，前端按 code 分支处理
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	TraceID string `json:"trace_id,omitempty"`
}

// Error 按 AppError 的状态码与错误码返回错误响应
func Error(c *gin.Context, appErr *errors.AppError) {
	c.JSON(appErr.HTTPStatus, ErrorResponse{
		Error:   appErr.Message,
		Code:    string(appErr.Code),
		TraceID: c.GetString("trace_id"),
	})
}

// AbortError 终止请求并返回错误响应，中间件使用
func AbortError(c *gin.Context, appErr *errors.AppError) {
	c.AbortWithStatusJSON(appErr.HTTPStatus, ErrorResponse{
		Error:   appErr.Message,
		Code:    string(appErr.Code),
		TraceID: c.GetString("trace_id"),
	})
}
