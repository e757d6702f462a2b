package generation

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"novelforge-api/pkg/sse"
)

const anthropicVersion = "2023-06-01"

// anthropicAdapter anthropic 协议适配器
// 请求侧：system 独立于 messages；认证用 x-api-key 而非 Bearer。
// 响应侧：把 anthropic 的事件流翻译成 openai 风格的 delta 流，
// 下游只需要处理一种格式
type anthropicAdapter struct{}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	System      string             `json:"system"`
	Messages    []anthropicMessage `json:"messages"`
	Stream      bool               `json:"stream"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
}

// anthropicStreamEvent 流式事件，按 type 分发
type anthropicStreamEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta"`
}

type anthropicCompletion struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// openAIDelta 翻译输出的 openai 风格增量块
type openAIDelta struct {
	Choices []openAIDeltaChoice `json:"choices"`
}

type openAIDeltaChoice struct {
	Delta struct {
		Content string `json:"content"`
	} `json:"delta"`
}

func (a *anthropicAdapter) buildBody(conn *ResolvedConnection, prompts Prompts, opts StreamOptions, stream bool) ([]byte, error) {
	return json.Marshal(anthropicRequest{
		Model:  conn.Model,
		System: prompts.System,
		Messages: []anthropicMessage{
			{Role: "user", Content: prompts.User},
		},
		Stream:      stream,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	})
}

func (a *anthropicAdapter) setHeaders(h http.Header, conn *ResolvedConnection) {
	h.Set("x-api-key", conn.APIKey)
	h.Set("anthropic-version", anthropicVersion)
}

// stream 边读边把 anthropic 事件流翻译成 openai 风格 SSE
// content_block_delta 的文本增量转成 choices[0].delta.content；
// message_stop 或上游流结束时补发单条 data: [DONE]
func (a *anthropicAdapter) stream(body io.ReadCloser) io.ReadCloser {
	pr, pw := io.Pipe()

	go func() {
		defer body.Close()

		var decoder sse.LineDecoder
		done := false
		buf := make([]byte, 4096)

		emit := func(line string) bool {
			if done {
				return false
			}
			stop, err := a.translateLine(pw, line)
			if err != nil {
				pw.CloseWithError(err)
				done = true
				return false
			}
			if stop {
				done = true
				pw.Close()
				return false
			}
			return true
		}

		for {
			n, err := body.Read(buf)
			if n > 0 {
				for _, line := range decoder.Feed(buf[:n]) {
					if !emit(line) {
						return
					}
				}
			}
			if err != nil {
				if rest := decoder.Rest(); rest != "" {
					if !emit(rest) {
						return
					}
				}
				if done {
					return
				}
				if err != io.EOF {
					pw.CloseWithError(err)
					return
				}
				// 上游没发 message_stop 就正常收流，补发结束哨兵
				io.WriteString(pw, "data: "+sse.Done+"\n\n")
				pw.Close()
				return
			}
		}
	}()

	return pr
}

// translateLine 翻译单行事件，stop=true 表示已写出结束哨兵
func (a *anthropicAdapter) translateLine(w io.Writer, line string) (stop bool, err error) {
	payload, ok := sse.Data(line)
	if !ok || payload == sse.Done {
		return false, nil
	}

	var event anthropicStreamEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		// 非 JSON 的事件行（如 event: 行已被 sse.Data 过滤，这里兜底）直接跳过
		return false, nil
	}

	switch event.Type {
	case "content_block_delta":
		if event.Delta.Text == "" {
			return false, nil
		}
		chunk := openAIDelta{Choices: make([]openAIDeltaChoice, 1)}
		chunk.Choices[0].Delta.Content = event.Delta.Text
		data, err := json.Marshal(chunk)
		if err != nil {
			return false, err
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return false, err
		}
		return false, nil

	case "message_stop":
		_, err := io.WriteString(w, "data: "+sse.Done+"\n\n")
		return true, err

	default:
		// message_start、content_block_start、ping 等事件对下游无意义
		return false, nil
	}
}

func (a *anthropicAdapter) parseCompletion(body []byte) (string, error) {
	var completion anthropicCompletion
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", fmt.Errorf("failed to parse upstream completion: %w", err)
	}
	for _, block := range completion.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("upstream completion has no text content")
}
