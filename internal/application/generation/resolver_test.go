package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"novelforge-api/internal/domain/entity"
	"novelforge-api/pkg/errors"
)

func newTestResolver(envKeys EnvKeys) *Resolver {
	return NewResolver(NewRegistry(), envKeys)
}

func TestInferProviderKey(t *testing.T) {
	resolver := newTestResolver(EnvKeys{})

	tests := []struct {
		hint string
		want string
	}{
		{"", ProviderCustom},
		{"deepseek", ProviderDeepSeek},
		{"DeepSeek", ProviderDeepSeek},
		{"claude", ProviderClaude},
		{"some-claude-variant", ProviderClaude},
		{"anthropic-latest", ProviderClaude},
		{"gpt-4-turbo", ProviderOpenAI},
		{"my-openai-proxy", ProviderOpenAI},
		{"deepseek-reasoner", ProviderDeepSeek},
		{"grok-beta", ProviderGrok},
		{"qwen-max", ProviderQwen},
		{"siliconflow-free", ProviderSiliconFlow},
		{"ollama-local", ProviderOllama},
		{"llama3", ProviderCustom},
		{"mistral-large", ProviderCustom},
	}

	for _, tt := range tests {
		t.Run(tt.hint, func(t *testing.T) {
			assert.Equal(t, tt.want, resolver.InferProviderKey(tt.hint))
		})
	}
}

func TestResolveRegistryDefaults(t *testing.T) {
	resolver := newTestResolver(EnvKeys{})

	conn, err := resolver.Resolve(ResolveRequest{Hint: "deepseek", APIKey: "sk-test"}, nil)
	require.NoError(t, err)

	assert.Equal(t, ProviderDeepSeek, conn.ProviderKey)
	assert.Equal(t, ProtocolOpenAI, conn.Protocol)
	assert.Equal(t, "https://api.deepseek.com/v1", conn.BaseURL)
	assert.Equal(t, "deepseek-chat", conn.Model)
	assert.Equal(t, "https://api.deepseek.com/v1/chat/completions", conn.Endpoint)
}

func TestResolveAnthropicEndpoint(t *testing.T) {
	resolver := newTestResolver(EnvKeys{})

	conn, err := resolver.Resolve(ResolveRequest{Hint: "claude", APIKey: "sk-ant"}, nil)
	require.NoError(t, err)

	assert.Equal(t, ProtocolAnthropic, conn.Protocol)
	assert.Equal(t, "https://api.anthropic.com/v1/messages", conn.Endpoint)
}

func TestResolveEndpointSuffixNotDuplicated(t *testing.T) {
	resolver := newTestResolver(EnvKeys{})

	conn, err := resolver.Resolve(ResolveRequest{
		Hint:    "deepseek",
		BaseURL: "https://proxy.example.com/v1/chat/completions",
		APIKey:  "sk-test",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://proxy.example.com/v1/chat/completions", conn.Endpoint)
}

func TestResolveBaseURLTrailingSlash(t *testing.T) {
	resolver := newTestResolver(EnvKeys{})

	conn, err := resolver.Resolve(ResolveRequest{
		Hint:    "deepseek",
		BaseURL: "https://proxy.example.com/v1/",
		APIKey:  "sk-test",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://proxy.example.com/v1", conn.BaseURL)
	assert.Equal(t, "https://proxy.example.com/v1/chat/completions", conn.Endpoint)
}

func TestResolveModelPrecedence(t *testing.T) {
	resolver := newTestResolver(EnvKeys{})
	stored := &entity.ModelProvider{
		ProviderType: "deepseek",
		APIKey:       "sk-stored",
		DefaultModel: "deepseek-reasoner",
	}

	// 请求显式模型优先
	conn, err := resolver.Resolve(ResolveRequest{Hint: "deepseek", ActualModel: "deepseek-coder"}, stored)
	require.NoError(t, err)
	assert.Equal(t, "deepseek-coder", conn.Model)

	// 其次是存储配置的默认模型
	conn, err = resolver.Resolve(ResolveRequest{Hint: "deepseek"}, stored)
	require.NoError(t, err)
	assert.Equal(t, "deepseek-reasoner", conn.Model)
}

func TestResolveHintAsModelName(t *testing.T) {
	resolver := newTestResolver(EnvKeys{})

	// 提示是自由文本模型名而非提供商标识时，直接用作模型
	conn, err := resolver.Resolve(ResolveRequest{Hint: "grok-4-fast", APIKey: "sk"}, nil)
	require.NoError(t, err)
	assert.Equal(t, ProviderGrok, conn.ProviderKey)
	assert.Equal(t, "grok-4-fast", conn.Model)

	// 提示恰好是提供商标识时落回注册表默认模型
	conn, err = resolver.Resolve(ResolveRequest{Hint: "grok", APIKey: "sk"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "grok-3", conn.Model)
}

func TestResolveStoredConfig(t *testing.T) {
	resolver := newTestResolver(EnvKeys{})
	stored := &entity.ModelProvider{
		ProviderType: "custom",
		APIBaseURL:   "http://llm.internal:8080/v1",
		DefaultModel: "local-model",
		APIKey:       "sk-internal",
	}

	// 请求未带提示时使用存储配置的提供商类型
	conn, err := resolver.Resolve(ResolveRequest{}, stored)
	require.NoError(t, err)
	assert.Equal(t, ProviderCustom, conn.ProviderKey)
	assert.Equal(t, "http://llm.internal:8080/v1", conn.BaseURL)
	assert.Equal(t, "local-model", conn.Model)
	assert.Equal(t, "sk-internal", conn.APIKey)
}

func TestResolveAPIKeyRequiredMatrix(t *testing.T) {
	resolver := newTestResolver(EnvKeys{})

	required := []string{"openai", "deepseek", "claude", "qwen", "siliconflow"}
	for _, key := range required {
		t.Run(key, func(t *testing.T) {
			_, err := resolver.Resolve(ResolveRequest{Hint: key}, nil)
			require.Error(t, err)
			assert.True(t, errors.IsAPIKeyRequired(err))
		})
	}

	// ollama 无密钥可用
	conn, err := resolver.Resolve(ResolveRequest{Hint: "ollama"}, nil)
	require.NoError(t, err)
	assert.Empty(t, conn.APIKey)

	// custom 无密钥可用，但必须有 Base URL 与模型
	conn, err = resolver.Resolve(ResolveRequest{Hint: "custom", BaseURL: "http://localhost:8000/v1", ActualModel: "local"}, nil)
	require.NoError(t, err)
	assert.Empty(t, conn.APIKey)
}

func TestResolveAPIKeyErrorCode(t *testing.T) {
	resolver := newTestResolver(EnvKeys{})

	_, err := resolver.Resolve(ResolveRequest{Hint: "deepseek"}, nil)
	require.Error(t, err)
	appErr := errors.AsAppError(err)
	assert.Equal(t, errors.ErrorCode("API_KEY_REQUIRED_DEEPSEEK"), appErr.Code)
	assert.Equal(t, 400, appErr.HTTPStatus)
}

func TestResolveEnvKeyFallback(t *testing.T) {
	resolver := newTestResolver(EnvKeys{Grok: "env-grok", Claude: "env-claude"})

	conn, err := resolver.Resolve(ResolveRequest{Hint: "grok"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "env-grok", conn.APIKey)

	conn, err = resolver.Resolve(ResolveRequest{Hint: "claude"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "env-claude", conn.APIKey)

	// 其他提供商没有环境兜底
	_, err = resolver.Resolve(ResolveRequest{Hint: "deepseek"}, nil)
	assert.Error(t, err)
}

func TestResolveRequestKeyBeatsEnvKey(t *testing.T) {
	resolver := newTestResolver(EnvKeys{Grok: "env-grok"})

	conn, err := resolver.Resolve(ResolveRequest{Hint: "grok", APIKey: "req-key"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "req-key", conn.APIKey)
}

func TestResolveCustomRequiresBaseURL(t *testing.T) {
	resolver := newTestResolver(EnvKeys{})

	_, err := resolver.Resolve(ResolveRequest{Hint: "custom"}, nil)
	require.Error(t, err)
	appErr := errors.AsAppError(err)
	assert.Equal(t, errors.CodeAPIBaseURLRequired, appErr.Code)
}

func TestResolveCustomRequiresModel(t *testing.T) {
	resolver := newTestResolver(EnvKeys{})

	_, err := resolver.Resolve(ResolveRequest{Hint: "custom", BaseURL: "http://localhost:8000/v1"}, &entity.ModelProvider{ProviderType: "custom"})
	require.Error(t, err)
	appErr := errors.AsAppError(err)
	assert.Equal(t, errors.CodeModelRequired, appErr.Code)
}
