package generation

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// openAIAdapter openai-compatible 协议适配器
// openai、deepseek、grok、qwen、siliconflow、ollama 与 custom 共用该协议
type openAIAdapter struct{}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Stream      bool            `json:"stream"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float64         `json:"temperature"`
}

type openAICompletion struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (a *openAIAdapter) buildBody(conn *ResolvedConnection, prompts Prompts, opts StreamOptions, stream bool) ([]byte, error) {
	return json.Marshal(openAIRequest{
		Model: conn.Model,
		Messages: []openAIMessage{
			{Role: "system", Content: prompts.System},
			{Role: "user", Content: prompts.User},
		},
		Stream:      stream,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	})
}

func (a *openAIAdapter) setHeaders(h http.Header, conn *ResolvedConnection) {
	// ollama 与部分自建服务无密钥，此时不发 Authorization 头
	if conn.APIKey != "" {
		h.Set("Authorization", "Bearer "+conn.APIKey)
	}
}

// stream 上游本身就是 openai 风格 SSE，直接透传
func (a *openAIAdapter) stream(body io.ReadCloser) io.ReadCloser {
	return body
}

func (a *openAIAdapter) parseCompletion(body []byte) (string, error) {
	var completion openAICompletion
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", fmt.Errorf("failed to parse upstream completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("upstream completion has no choices")
	}
	return completion.Choices[0].Message.Content, nil
}
