package generation

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"novelforge-api/pkg/logger"
	"novelforge-api/pkg/metrics"
	"novelforge-api/pkg/tracer"
)

// StreamOptions 单次上游调用的生成参数
type StreamOptions struct {
	MaxTokens   int
	Temperature float64
}

// protocolAdapter 协议适配器
// 负责构造请求体与请求头，并把上游响应流统一成 openai 风格的 SSE 流
type protocolAdapter interface {
	// buildBody 序列化请求体，stream 控制是否请求流式响应
	buildBody(conn *ResolvedConnection, prompts Prompts, opts StreamOptions, stream bool) ([]byte, error)
	// setHeaders 设置协议特定的认证与版本头
	setHeaders(h http.Header, conn *ResolvedConnection)
	// stream 把上游响应体转换为 openai 风格 SSE 流
	// openai-compatible 协议透传，anthropic 协议边读边翻译
	stream(body io.ReadCloser) io.ReadCloser
	// parseCompletion 从非流式响应体中提取生成文本
	parseCompletion(body []byte) (string, error)
}

// Streamer 上游流式调用器
// 按协议族选择适配器，失败时按策略重试，每次重试重建请求
type Streamer struct {
	client   *http.Client
	policy   RetryPolicy
	adapters map[Protocol]protocolAdapter
}

// NewStreamer 创建上游调用器
// client 可注入以便测试，为 nil 时使用不限时的默认客户端
// （流式生成耗时由请求上下文控制，不设客户端级超时）
func NewStreamer(client *http.Client, policy RetryPolicy) *Streamer {
	if client == nil {
		client = &http.Client{}
	}
	return &Streamer{
		client: client,
		policy: policy,
		adapters: map[Protocol]protocolAdapter{
			ProtocolOpenAI:    &openAIAdapter{},
			ProtocolAnthropic: &anthropicAdapter{},
		},
	}
}

// Stream 发起流式生成调用
// 返回的流已统一为 openai 风格 SSE，以单条 data: [DONE] 结束；
// 调用方负责关闭返回的 ReadCloser
func (s *Streamer) Stream(ctx context.Context, conn *ResolvedConnection, prompts Prompts, opts StreamOptions) (io.ReadCloser, error) {
	ctx, span := tracer.Start(ctx, "generation.Streamer.Stream")
	defer span.End()

	adapter, err := s.adapter(conn.Protocol)
	if err != nil {
		return nil, err
	}

	body, err := adapter.buildBody(conn, prompts, opts, true)
	if err != nil {
		return nil, fmt.Errorf("failed to build upstream request body: %w", err)
	}

	resp, err := s.doWithRetry(ctx, adapter, conn, body)
	if err != nil {
		return nil, err
	}
	return adapter.stream(resp.Body), nil
}

// Complete 发起非流式生成调用并返回完整文本
// 测试连通性等小流量场景使用
func (s *Streamer) Complete(ctx context.Context, conn *ResolvedConnection, prompts Prompts, opts StreamOptions) (string, error) {
	ctx, span := tracer.Start(ctx, "generation.Streamer.Complete")
	defer span.End()

	adapter, err := s.adapter(conn.Protocol)
	if err != nil {
		return "", err
	}

	body, err := adapter.buildBody(conn, prompts, opts, false)
	if err != nil {
		return "", fmt.Errorf("failed to build upstream request body: %w", err)
	}

	resp, err := s.doWithRetry(ctx, adapter, conn, body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &UpstreamError{Provider: conn.ProviderKey, Message: err.Error()}
	}
	return adapter.parseCompletion(raw)
}

// doWithRetry 执行上游调用，5xx 与网络层失败按策略重试
// 请求体在每次尝试时重建，避免复用已消费的 Reader
func (s *Streamer) doWithRetry(ctx context.Context, adapter protocolAdapter, conn *ResolvedConnection, body []byte) (*http.Response, error) {
	var lastErr error

	for attempt := 1; attempt <= s.policy.MaxAttempts; attempt++ {
		if attempt > 1 {
			metrics.UpstreamRetriesTotal.WithLabelValues(conn.ProviderKey).Inc()
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.policy.Backoff(attempt - 1)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, conn.Endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to build upstream request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		adapter.setHeaders(req.Header, conn)

		start := time.Now()
		resp, err := s.client.Do(req)
		if err != nil {
			s.observe(conn, "network_error", start)
			lastErr = &UpstreamError{Provider: conn.ProviderKey, Message: err.Error()}
			if s.policy.Retryable(0, err) && attempt < s.policy.MaxAttempts {
				logger.Warn(ctx, "upstream call failed, retrying",
					"provider", conn.ProviderKey,
					"attempt", attempt,
					"error", err.Error(),
				)
				continue
			}
			return nil, lastErr
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			s.observe(conn, strconv.Itoa(resp.StatusCode), start)
			return resp, nil
		}

		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		resp.Body.Close()
		s.observe(conn, strconv.Itoa(resp.StatusCode), start)

		lastErr = &UpstreamError{
			StatusCode: resp.StatusCode,
			Provider:   conn.ProviderKey,
			Message:    normalizeUpstreamMessage(raw),
		}
		if s.policy.Retryable(resp.StatusCode, nil) && attempt < s.policy.MaxAttempts {
			logger.Warn(ctx, "upstream returned server error, retrying",
				"provider", conn.ProviderKey,
				"status", resp.StatusCode,
				"attempt", attempt,
			)
			continue
		}
		return nil, lastErr
	}

	return nil, lastErr
}

func (s *Streamer) adapter(protocol Protocol) (protocolAdapter, error) {
	adapter, ok := s.adapters[protocol]
	if !ok {
		return nil, fmt.Errorf("unsupported upstream protocol: %s", protocol)
	}
	return adapter, nil
}

func (s *Streamer) observe(conn *ResolvedConnection, status string, start time.Time) {
	metrics.UpstreamCallTotal.WithLabelValues(conn.ProviderKey, conn.Model, status).Inc()
	metrics.UpstreamCallDuration.WithLabelValues(conn.ProviderKey, conn.Model).Observe(time.Since(start).Seconds())
}
