package generation

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// UpstreamError 上游提供商调用失败
// StatusCode 为 0 表示网络层失败，未拿到任何 HTTP 状态
type UpstreamError struct {
	StatusCode int
	Provider   string
	Message    string
}

// Error 实现 error 接口
func (e *UpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("LLM API error [%d]: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("LLM API error: %s", e.Message)
}

// 上游错误响应体的常见 JSON 形状
type upstreamErrorBody struct {
	Error   json.RawMessage `json:"error"`
	Message string          `json:"message"`
}

type upstreamErrorDetail struct {
	Message string `json:"message"`
}

var messageTokenRe = regexp.MustCompile(`"?message"?\s*[:=]\s*"([^"]+)"`)

const maxRawBodyChars = 300

// normalizeUpstreamMessage 从上游错误响应体提取人类可读的错误消息
// 依次尝试：JSON 的 error / error.message / message 字段、
// message: 令牌的正则启发式，最后回退到截断的原始响应体
func normalizeUpstreamMessage(body []byte) string {
	raw := strings.TrimSpace(string(body))
	if raw == "" {
		return "upstream returned an empty error body"
	}

	var parsed upstreamErrorBody
	if err := json.Unmarshal(body, &parsed); err == nil {
		if len(parsed.Error) > 0 {
			// error 可能是字符串，也可能是 {message: ...} 对象
			var s string
			if err := json.Unmarshal(parsed.Error, &s); err == nil && s != "" {
				return s
			}
			var detail upstreamErrorDetail
			if err := json.Unmarshal(parsed.Error, &detail); err == nil && detail.Message != "" {
				return detail.Message
			}
		}
		if parsed.Message != "" {
			return parsed.Message
		}
	}

	if m := messageTokenRe.FindStringSubmatch(raw); len(m) == 2 {
		return m[1]
	}

	if runes := []rune(raw); len(runes) > maxRawBodyChars {
		return string(runes[:maxRawBodyChars])
	}
	return raw
}
