package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"novelforge-api/internal/application/generation"
	"novelforge-api/internal/config"
	"novelforge-api/internal/domain/entity"
	"novelforge-api/internal/interfaces/http/dto"
)

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.LLM.MaxTokens = 16000
	cfg.LLM.TestMaxTokens = 16

	registry := generation.NewRegistry()
	resolver := generation.NewResolver(registry, generation.EnvKeys{})
	streamer := generation.NewStreamer(nil, generation.DefaultRetryPolicy(1, 0))

	h := NewGenerateHandler(cfg, resolver, generation.NewPromptBuilder(), nil, streamer, nil)

	engine := gin.New()
	engine.POST("/v1/generate", h.Generate)
	return engine
}

func doGenerate(t *testing.T, engine *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/generate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestGenerateInvalidMode(t *testing.T) {
	engine := newTestEngine(t)

	w := doGenerate(t, engine, `{"mode":"bogus","settings":{}}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "MODE_INVALID", decodeError(t, w).Code)
}

func TestGenerateSettingsRequired(t *testing.T) {
	engine := newTestEngine(t)

	w := doGenerate(t, engine, `{"mode":"generate"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "SETTINGS_REQUIRED", decodeError(t, w).Code)
}

func TestGenerateContinueRequiresNovelID(t *testing.T) {
	engine := newTestEngine(t)

	w := doGenerate(t, engine, `{"mode":"continue","settings":{}}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "NOVEL_ID_REQUIRED", decodeError(t, w).Code)
}

func TestGenerateRewriteRequiresContent(t *testing.T) {
	engine := newTestEngine(t)

	// 校验发生在提供商解析之前，未配置密钥也要先报这个错
	w := doGenerate(t, engine, `{"mode":"rewrite","settings":{},"rewriteContent":"  "}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "REWRITE_CONTENT_REQUIRED", decodeError(t, w).Code)
}

func TestGenerateAPIKeyRequired(t *testing.T) {
	engine := newTestEngine(t)

	w := doGenerate(t, engine, `{"mode":"outline","settings":{},"model":"deepseek"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "API_KEY_REQUIRED_DEEPSEEK", decodeError(t, w).Code)
}

func TestGenerateOutlineStreaming(t *testing.T) {
	upstream := "data: {\"choices\":[{\"delta\":{\"content\":\"第一卷\"}}]}\n\ndata: [DONE]\n\n"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model    string `json:"model"`
			Stream   bool   `json:"stream"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "deepseek-chat", req.Model)
		assert.True(t, req.Stream)
		require.Len(t, req.Messages, 2)
		assert.Contains(t, req.Messages[1].Content, "类型：玄幻")
		assert.Contains(t, req.Messages[1].Content, "预计总字数：200000字")

		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, upstream)
	}))
	defer srv.Close()

	engine := newTestEngine(t)
	w := doGenerate(t, engine,
		`{"mode":"outline","settings":{"genres":["玄幻"],"totalWords":200000},"model":"deepseek","apiKey":"sk-test","apiBaseUrl":"`+srv.URL+`"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", w.Header().Get("Cache-Control"))
	assert.Equal(t, "no", w.Header().Get("X-Accel-Buffering"))
	assert.Equal(t, upstream, w.Body.String())
}

func TestGenerateTestModeOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Stream    bool `json:"stream"`
			MaxTokens int  `json:"max_tokens"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.False(t, req.Stream)
		assert.Equal(t, 16, req.MaxTokens)

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]any{"content": "你好！"}}},
		})
	}))
	defer srv.Close()

	engine := newTestEngine(t)
	w := doGenerate(t, engine,
		`{"mode":"test","model":"deepseek","apiKey":"sk-test","apiBaseUrl":"`+srv.URL+`"}`)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.TestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Empty(t, resp.Error)
}

func TestGenerateTestModeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"Incorrect API key provided"}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	engine := newTestEngine(t)
	w := doGenerate(t, engine,
		`{"mode":"test","model":"deepseek","apiKey":"sk-bad","apiBaseUrl":"`+srv.URL+`"}`)

	// 测试模式总是返回 200，失败信息放在响应体里
	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.TestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.OK)
	assert.Contains(t, resp.Error, "Incorrect API key provided")
}

func TestGenerateUpstreamErrorMapsTo502(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"model offline"}}`, http.StatusNotFound)
	}))
	defer srv.Close()

	engine := newTestEngine(t)
	w := doGenerate(t, engine,
		`{"mode":"outline","settings":{},"model":"deepseek","apiKey":"sk","apiBaseUrl":"`+srv.URL+`"}`)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "UPSTREAM_ERROR", resp.Code)
	assert.Contains(t, resp.Error, "model offline")
}

type fakeNovelRepo struct{}

func (r *fakeNovelRepo) GetByID(ctx context.Context, id string) (*entity.Novel, error) {
	return nil, nil
}
func (r *fakeNovelRepo) Create(ctx context.Context, n *entity.Novel) error { return nil }
func (r *fakeNovelRepo) Update(ctx context.Context, n *entity.Novel) error { return nil }

type fakeChapterRepo struct{}

func (r *fakeChapterRepo) ListByNovel(ctx context.Context, novelID string) ([]*entity.Chapter, error) {
	return nil, nil
}
func (r *fakeChapterRepo) CountByNovel(ctx context.Context, novelID string) (int64, error) {
	return 0, nil
}
func (r *fakeChapterRepo) Create(ctx context.Context, ch *entity.Chapter) error { return nil }

type fakeCharacterRepo struct{}

func (r *fakeCharacterRepo) ListByNovel(ctx context.Context, novelID string) ([]*entity.Character, error) {
	return nil, nil
}
func (r *fakeCharacterRepo) Create(ctx context.Context, ch *entity.Character) error { return nil }

func TestGenerateContinueMissingNovel(t *testing.T) {
	gin.SetMode(gin.TestMode)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		// 小说不存在时按空上下文续写，从第 1 章开始
		assert.Contains(t, req.Messages[1].Content, "请生成第1章")
		assert.NotContains(t, req.Messages[1].Content, "【前文摘要")

		io.WriteString(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	cfg := &config.Config{}
	cfg.LLM.MaxTokens = 16000
	resolver := generation.NewResolver(generation.NewRegistry(), generation.EnvKeys{})
	contextBuilder := generation.NewContextBuilder(&fakeNovelRepo{}, &fakeChapterRepo{}, &fakeCharacterRepo{})
	streamer := generation.NewStreamer(nil, generation.DefaultRetryPolicy(1, 0))
	h := NewGenerateHandler(cfg, resolver, generation.NewPromptBuilder(), contextBuilder, streamer, nil)

	engine := gin.New()
	engine.POST("/v1/generate", h.Generate)
	w := doGenerate(t, engine,
		`{"mode":"continue","novelId":"missing-id","settings":{"genres":["玄幻"]},"model":"deepseek","apiKey":"sk","apiBaseUrl":"`+srv.URL+`"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "data: [DONE]")
}

type fakeProviderRepo struct {
	rows []*entity.ModelProvider
}

func (r *fakeProviderRepo) ListEnabledByUser(ctx context.Context, userID string) ([]*entity.ModelProvider, error) {
	return r.rows, nil
}
func (r *fakeProviderRepo) Create(ctx context.Context, p *entity.ModelProvider) error { return nil }
func (r *fakeProviderRepo) Update(ctx context.Context, p *entity.ModelProvider) error { return nil }

func TestLoadStoredProviderSelection(t *testing.T) {
	gin.SetMode(gin.TestMode)

	deepseekRow := &entity.ModelProvider{ProviderType: "deepseek", IsDefault: true, APIKey: "sk-ds"}
	claudeRow := &entity.ModelProvider{ProviderType: "claude", APIKey: "sk-ant"}
	repo := &fakeProviderRepo{rows: []*entity.ModelProvider{deepseekRow, claudeRow}}

	cfg := &config.Config{}
	resolver := generation.NewResolver(generation.NewRegistry(), generation.EnvKeys{})
	h := NewGenerateHandler(cfg, resolver, generation.NewPromptBuilder(), nil, nil, repo)

	newCtx := func() *gin.Context {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/v1/generate", nil)
		c.Set("user_id", "user-1")
		return c
	}

	// 提示匹配到非默认行时优先选它
	got := h.loadStoredProvider(newCtx(), "some-claude-variant")
	assert.Same(t, claudeRow, got)

	// 提示无法匹配任何已配置行时回退到默认行
	got = h.loadStoredProvider(newCtx(), "qwen")
	assert.Same(t, deepseekRow, got)

	// 无提示直接取默认行
	got = h.loadStoredProvider(newCtx(), "")
	assert.Same(t, deepseekRow, got)
}

func TestClampTemperature(t *testing.T) {
	assert.Equal(t, 0.7, clampTemperature(nil))

	low := -1.0
	assert.Equal(t, 0.0, clampTemperature(&low))

	high := 5.0
	assert.Equal(t, 2.0, clampTemperature(&high))

	ok := 1.2
	assert.Equal(t, 1.2, clampTemperature(&ok))
}
