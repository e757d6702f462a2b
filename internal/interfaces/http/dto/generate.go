// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"novelforge-api/internal/application/generation"
)

// GenerateRequest 生成请求
// 字段命名与前端提交的 JSON 保持一致（camelCase）
type GenerateRequest struct {
	Mode     string               `json:"mode" binding:"required"`
	Settings *generation.Settings `json:"settings,omitempty"`

	// Model 提供商提示：可能是提供商标识（如 "deepseek"），也可能是
	// 历史设置残留的自由文本模型名
	Model string `json:"model,omitempty"`
	// ActualModel 显式指定的真实模型名，优先于 Model
	ActualModel string   `json:"actualModel,omitempty"`
	APIKey      string   `json:"apiKey,omitempty"`
	APIBaseURL  string   `json:"apiBaseUrl,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`

	// NovelID continue 模式必填
	NovelID string `json:"novelId,omitempty"`
	// ChapterNumber generate 模式的目标章节号
	ChapterNumber int `json:"chapterNumber,omitempty"`
	// RewriteContent rewrite 模式必填
	RewriteContent string `json:"rewriteContent,omitempty"`
}

// TestResponse 连通性测试响应
type TestResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}
