package generation

import "strings"

// 已知提供商标识
const (
	ProviderOpenAI      = "openai"
	ProviderDeepSeek    = "deepseek"
	ProviderClaude      = "claude"
	ProviderGrok        = "grok"
	ProviderQwen        = "qwen"
	ProviderSiliconFlow = "siliconflow"
	ProviderOllama      = "ollama"
	ProviderCustom      = "custom"
)

// Registry 提供商注册表，进程启动时初始化一次，之后只读
type Registry struct {
	descriptors map[string]ProviderDescriptor
}

// NewRegistry 创建内置提供商注册表
// ollama 与 custom 面向本地/自建部署，允许无密钥访问；
// custom 没有默认 Base URL，必须由调用方或用户配置提供
func NewRegistry() *Registry {
	descriptors := map[string]ProviderDescriptor{
		ProviderOpenAI: {
			ProviderKey:    ProviderOpenAI,
			Protocol:       ProtocolOpenAI,
			DefaultBaseURL: "https://api.openai.com/v1",
			DefaultModel:   "gpt-4o",
			RequiresKey:    true,
		},
		ProviderDeepSeek: {
			ProviderKey:    ProviderDeepSeek,
			Protocol:       ProtocolOpenAI,
			DefaultBaseURL: "https://api.deepseek.com/v1",
			DefaultModel:   "deepseek-chat",
			RequiresKey:    true,
		},
		ProviderClaude: {
			ProviderKey:    ProviderClaude,
			Protocol:       ProtocolAnthropic,
			DefaultBaseURL: "https://api.anthropic.com/v1",
			DefaultModel:   "claude-3-5-sonnet-20241022",
			RequiresKey:    true,
		},
		ProviderGrok: {
			ProviderKey:    ProviderGrok,
			Protocol:       ProtocolOpenAI,
			DefaultBaseURL: "https://api.x.ai/v1",
			DefaultModel:   "grok-3",
			RequiresKey:    true,
		},
		ProviderQwen: {
			ProviderKey:    ProviderQwen,
			Protocol:       ProtocolOpenAI,
			DefaultBaseURL: "https://dashscope.aliyuncs.com/compatible-mode/v1",
			DefaultModel:   "qwen-plus",
			RequiresKey:    true,
		},
		ProviderSiliconFlow: {
			ProviderKey:    ProviderSiliconFlow,
			Protocol:       ProtocolOpenAI,
			DefaultBaseURL: "https://api.siliconflow.cn/v1",
			DefaultModel:   "deepseek-ai/DeepSeek-V3",
			RequiresKey:    true,
		},
		ProviderOllama: {
			ProviderKey:    ProviderOllama,
			Protocol:       ProtocolOpenAI,
			DefaultBaseURL: "http://localhost:11434/v1",
			DefaultModel:   "llama3",
			RequiresKey:    false,
		},
		ProviderCustom: {
			ProviderKey:    ProviderCustom,
			Protocol:       ProtocolOpenAI,
			DefaultBaseURL: "",
			DefaultModel:   "",
			RequiresKey:    false,
		},
	}
	return &Registry{descriptors: descriptors}
}

// Lookup 按标识查找提供商描述
func (r *Registry) Lookup(providerKey string) (ProviderDescriptor, bool) {
	d, ok := r.descriptors[strings.ToLower(strings.TrimSpace(providerKey))]
	return d, ok
}

// Keys 返回全部已知提供商标识
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.descriptors))
	for k := range r.descriptors {
		keys = append(keys, k)
	}
	return keys
}
