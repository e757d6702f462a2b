// Package handler 提供 HTTP 请求处理器
package handler

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"novelforge-api/internal/application/generation"
	"novelforge-api/internal/config"
	"novelforge-api/internal/domain/entity"
	"novelforge-api/internal/domain/repository"
	"novelforge-api/internal/interfaces/http/dto"
	"novelforge-api/pkg/errors"
	"novelforge-api/pkg/logger"
	"novelforge-api/pkg/metrics"

	"github.com/gin-gonic/gin"
)

const (
	defaultTemperature = 0.7
	minTemperature     = 0.0
	maxTemperature     = 2.0
)

// GenerateHandler 生成请求网关
// 串联校验、提供商解析、提示词组装与上游流式转发
type GenerateHandler struct {
	cfg            *config.Config
	resolver       *generation.Resolver
	promptBuilder  *generation.PromptBuilder
	contextBuilder *generation.ContextBuilder
	streamer       *generation.Streamer
	providerRepo   repository.ModelProviderRepository
}

// NewGenerateHandler 创建生成处理器
func NewGenerateHandler(
	cfg *config.Config,
	resolver *generation.Resolver,
	promptBuilder *generation.PromptBuilder,
	contextBuilder *generation.ContextBuilder,
	streamer *generation.Streamer,
	providerRepo repository.ModelProviderRepository,
) *GenerateHandler {
	return &GenerateHandler{
		cfg:            cfg,
		resolver:       resolver,
		promptBuilder:  promptBuilder,
		contextBuilder: contextBuilder,
		streamer:       streamer,
		providerRepo:   providerRepo,
	}
}

// Generate 生成接口
// @Summary 流式生成小说内容
// @Description 按模式生成大纲/人物卡/章节/重写/续写，SSE 流式返回；mode=test 做连通性检查
// @Tags Generation
// @Accept json
// @Produce text/event-stream
// @Param request body dto.GenerateRequest true "生成请求"
// @Success 200 "SSE stream 或 {ok} JSON"
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /v1/generate [post]
func (h *GenerateHandler) Generate(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		dto.Error(c, errors.New(errors.CodeMethodNotAllowed, "method not allowed"))
		return
	}

	var req dto.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.Error(c, errors.Wrap(err, errors.CodeValidationFailed, "请求体格式错误"))
		return
	}

	mode := generation.Mode(req.Mode)
	if appErr := validateRequest(mode, &req); appErr != nil {
		dto.Error(c, appErr)
		return
	}

	ctx := c.Request.Context()
	start := time.Now()

	// 加载用户已配置的提供商，匹配请求提示选出生效行
	stored := h.loadStoredProvider(c, req.Model)

	conn, err := h.resolver.Resolve(generation.ResolveRequest{
		Hint:        req.Model,
		BaseURL:     req.APIBaseURL,
		APIKey:      req.APIKey,
		ActualModel: req.ActualModel,
	}, stored)
	if err != nil {
		h.observe(mode, "unknown", "resolve_error", start)
		dto.Error(c, errors.AsAppError(err))
		return
	}

	prompts, appErr := h.buildPrompts(c, mode, &req)
	if appErr != nil {
		h.observe(mode, conn.ProviderKey, "prompt_error", start)
		dto.Error(c, appErr)
		return
	}

	opts := generation.StreamOptions{
		MaxTokens:   h.cfg.LLM.MaxTokens,
		Temperature: clampTemperature(req.Temperature),
	}

	// 连通性测试：非流式小请求，总是返回 200 JSON
	if mode == generation.ModeTest {
		opts.MaxTokens = h.cfg.LLM.TestMaxTokens
		if h.cfg.LLM.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, h.cfg.LLM.Timeout)
			defer cancel()
		}
		if _, err := h.streamer.Complete(ctx, conn, prompts, opts); err != nil {
			h.observe(mode, conn.ProviderKey, "error", start)
			c.JSON(http.StatusOK, dto.TestResponse{OK: false, Error: err.Error()})
			return
		}
		h.observe(mode, conn.ProviderKey, "ok", start)
		c.JSON(http.StatusOK, dto.TestResponse{OK: true})
		return
	}

	stream, err := h.streamer.Stream(ctx, conn, prompts, opts)
	if err != nil {
		h.observe(mode, conn.ProviderKey, "error", start)
		h.respondUpstreamError(c, err)
		return
	}
	defer stream.Close()

	logger.Info(ctx, "generation stream started",
		"mode", string(mode),
		"provider", conn.ProviderKey,
		"model", conn.Model,
	)

	h.relay(c, conn.ProviderKey, stream)
	h.observe(mode, conn.ProviderKey, "ok", start)
}

// validateRequest 模式相关的请求校验，全部在提供商解析之前完成
func validateRequest(mode generation.Mode, req *dto.GenerateRequest) *errors.AppError {
	if !generation.ValidMode(mode) {
		return errors.ErrModeInvalid
	}
	if mode != generation.ModeTest && req.Settings == nil {
		return errors.ErrSettingsRequired
	}
	if mode == generation.ModeContinue && strings.TrimSpace(req.NovelID) == "" {
		return errors.ErrNovelIDRequired
	}
	if mode == generation.ModeRewrite && strings.TrimSpace(req.RewriteContent) == "" {
		return errors.ErrRewriteRequired
	}
	return nil
}

// loadStoredProvider 选出请求生效的用户提供商配置
// 优先取与请求提示推断出的提供商同类型的行（默认项在前），否则回退到
// 用户的默认行；读库失败按无配置处理，让环境兜底仍有机会生效
func (h *GenerateHandler) loadStoredProvider(c *gin.Context, hint string) *entity.ModelProvider {
	userID := c.GetString("user_id")
	if userID == "" || h.providerRepo == nil {
		return nil
	}

	rows, err := h.providerRepo.ListEnabledByUser(c.Request.Context(), userID)
	if err != nil {
		logger.Warn(c.Request.Context(), "failed to load provider configs", "error", err.Error())
		return nil
	}
	if len(rows) == 0 {
		return nil
	}

	if strings.TrimSpace(hint) != "" {
		inferred := h.resolver.InferProviderKey(hint)
		for _, row := range rows {
			if strings.EqualFold(row.ProviderType, inferred) {
				return row
			}
		}
	}

	// 行已按 is_default DESC 排序，首行即默认项
	return rows[0]
}

// buildPrompts 组装提示词，continue 模式先构建小说上下文
func (h *GenerateHandler) buildPrompts(c *gin.Context, mode generation.Mode, req *dto.GenerateRequest) (generation.Prompts, *errors.AppError) {
	input := generation.BuildInput{
		Mode:           mode,
		Settings:       req.Settings,
		ChapterNumber:  req.ChapterNumber,
		RewriteContent: req.RewriteContent,
	}
	if req.Settings != nil {
		input.TotalWords = req.Settings.TotalWords
	}

	if mode == generation.ModeContinue {
		genCtx, err := h.contextBuilder.Build(c.Request.Context(), req.NovelID)
		if err != nil {
			return generation.Prompts{}, errors.Wrap(err, errors.CodeInternalError, "加载小说上下文失败")
		}
		input.Context = genCtx
	}

	prompts, err := h.promptBuilder.Build(input)
	if err != nil {
		return generation.Prompts{}, errors.AsAppError(err)
	}
	return prompts, nil
}

// relay 把上游 SSE 流透传给客户端，每次读取后立即 Flush
// 客户端断开时请求上下文取消，上游连接随之关闭
func (h *GenerateHandler) relay(c *gin.Context, providerKey string, stream io.Reader) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	buf := make([]byte, 4096)
	for {
		n, err := stream.Read(buf)
		if n > 0 {
			if _, werr := c.Writer.Write(buf[:n]); werr != nil {
				return
			}
			c.Writer.Flush()
			metrics.StreamBytesRelayed.WithLabelValues(providerKey).Add(float64(n))
		}
		if err != nil {
			if err != io.EOF {
				logger.Warn(c.Request.Context(), "upstream stream interrupted",
					"provider", providerKey,
					"error", err.Error(),
				)
			}
			return
		}
	}
}

// respondUpstreamError 上游失败映射为 502，其余归 500
func (h *GenerateHandler) respondUpstreamError(c *gin.Context, err error) {
	if upstreamErr, ok := err.(*generation.UpstreamError); ok {
		dto.Error(c, errors.Wrap(upstreamErr, errors.CodeUpstreamError, upstreamErr.Message))
		return
	}
	dto.Error(c, errors.AsAppError(err))
}

func (h *GenerateHandler) observe(mode generation.Mode, provider, status string, start time.Time) {
	metrics.GenerationTotal.WithLabelValues(string(mode), provider, status).Inc()
	metrics.GenerationDuration.WithLabelValues(string(mode), provider).Observe(time.Since(start).Seconds())
}

// clampTemperature 缺省 0.7，越界值夹到 [0, 2]
func clampTemperature(t *float64) float64 {
	if t == nil {
		return defaultTemperature
	}
	switch {
	case *t < minTemperature:
		return minTemperature
	case *t > maxTemperature:
		return maxTemperature
	default:
		return *t
	}
}
