package generation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeUpstreamMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "openai 对象形式",
			body: `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`,
			want: "Incorrect API key provided",
		},
		{
			name: "error 为字符串",
			body: `{"error":"model not found"}`,
			want: "model not found",
		},
		{
			name: "顶层 message",
			body: `{"message":"quota exceeded"}`,
			want: "quota exceeded",
		},
		{
			name: "非 JSON 但含 message 令牌",
			body: `upstream said message: "bad gateway" at 12:00`,
			want: "bad gateway",
		},
		{
			name: "纯文本原样返回",
			body: "service unavailable",
			want: "service unavailable",
		},
		{
			name: "空响应体",
			body: "",
			want: "upstream returned an empty error body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeUpstreamMessage([]byte(tt.body)))
		})
	}
}

func TestNormalizeUpstreamMessageTruncatesRawBody(t *testing.T) {
	raw := strings.Repeat("x", 1000)
	got := normalizeUpstreamMessage([]byte(raw))
	assert.Equal(t, 300, len(got))
}

func TestUpstreamErrorString(t *testing.T) {
	err := &UpstreamError{StatusCode: 502, Provider: "deepseek", Message: "bad gateway"}
	assert.Equal(t, "LLM API error [502]: bad gateway", err.Error())

	err = &UpstreamError{Provider: "deepseek", Message: "connection refused"}
	assert.Equal(t, "LLM API error: connection refused", err.Error())
}
