package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryDefaults(t *testing.T) {
	registry := NewRegistry()

	tests := []struct {
		key         string
		protocol    Protocol
		baseURL     string
		model       string
		requiresKey bool
	}{
		{ProviderOpenAI, ProtocolOpenAI, "https://api.openai.com/v1", "gpt-4o", true},
		{ProviderDeepSeek, ProtocolOpenAI, "https://api.deepseek.com/v1", "deepseek-chat", true},
		{ProviderClaude, ProtocolAnthropic, "https://api.anthropic.com/v1", "claude-3-5-sonnet-20241022", true},
		{ProviderGrok, ProtocolOpenAI, "https://api.x.ai/v1", "grok-3", true},
		{ProviderQwen, ProtocolOpenAI, "https://dashscope.aliyuncs.com/compatible-mode/v1", "qwen-plus", true},
		{ProviderSiliconFlow, ProtocolOpenAI, "https://api.siliconflow.cn/v1", "deepseek-ai/DeepSeek-V3", true},
		{ProviderOllama, ProtocolOpenAI, "http://localhost:11434/v1", "llama3", false},
		{ProviderCustom, ProtocolOpenAI, "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			d, ok := registry.Lookup(tt.key)
			require.True(t, ok)
			assert.Equal(t, tt.protocol, d.Protocol)
			assert.Equal(t, tt.baseURL, d.DefaultBaseURL)
			assert.Equal(t, tt.model, d.DefaultModel)
			assert.Equal(t, tt.requiresKey, d.RequiresKey)
		})
	}
}

func TestRegistryLookupCaseInsensitive(t *testing.T) {
	registry := NewRegistry()

	d, ok := registry.Lookup("  DeepSeek ")
	require.True(t, ok)
	assert.Equal(t, ProviderDeepSeek, d.ProviderKey)
}

func TestRegistryLookupUnknown(t *testing.T) {
	registry := NewRegistry()

	_, ok := registry.Lookup("not-a-provider")
	assert.False(t, ok)
}

func TestRegistryKeys(t *testing.T) {
	registry := NewRegistry()
	assert.Len(t, registry.Keys(), 8)
}
