package generation

import (
	"strings"

	"novelforge-api/internal/domain/entity"
	"novelforge-api/pkg/errors"
)

// ResolveRequest 解析连接所需的请求侧输入
type ResolveRequest struct {
	// Hint 客户端传来的提供商提示，可能是提供商标识，也可能是历史设置
	// 里残留的自由文本模型名
	Hint string
	// BaseURL 请求显式指定的 Base URL
	BaseURL string
	// APIKey 请求显式指定的密钥
	APIKey string
	// ActualModel 请求显式指定的模型名
	ActualModel string
}

// EnvKeys 进程级密钥兜底，仅 grok 与 claude 生效
type EnvKeys struct {
	Grok   string
	Claude string
}

// Resolver 根据请求提示与用户存储配置计算生效的连接参数
// 纯函数式：不持有可变状态，并发安全
type Resolver struct {
	registry *Registry
	envKeys  EnvKeys
}

// NewResolver 创建解析器
func NewResolver(registry *Registry, envKeys EnvKeys) *Resolver {
	return &Resolver{
		registry: registry,
		envKeys:  envKeys,
	}
}

// InferProviderKey 从提示文本推断提供商标识
// 优先精确匹配（大小写不敏感），否则做子串推断，让历史设置里残留的
// 自由文本模型名（如 "some-claude-variant"）也能落到正确的提供商，
// 都不中则归入 custom
func (r *Resolver) InferProviderKey(hint string) string {
	h := strings.ToLower(strings.TrimSpace(hint))
	if h == "" {
		return ProviderCustom
	}
	if _, ok := r.registry.Lookup(h); ok {
		return h
	}

	switch {
	case strings.Contains(h, "claude") || strings.Contains(h, "anthropic"):
		return ProviderClaude
	case strings.Contains(h, "gpt") || strings.Contains(h, "openai"):
		return ProviderOpenAI
	case strings.Contains(h, "deepseek"):
		return ProviderDeepSeek
	case strings.Contains(h, "grok"):
		return ProviderGrok
	case strings.Contains(h, "qwen"):
		return ProviderQwen
	case strings.Contains(h, "siliconflow"):
		return ProviderSiliconFlow
	case strings.Contains(h, "ollama"):
		return ProviderOllama
	default:
		return ProviderCustom
	}
}

// Resolve 计算生效的 {协议, Base URL, 模型, 密钥}
// 优先级：请求显式字段 > 用户存储配置 > 注册表默认值 > 进程级环境兜底。
// 每次请求都重新计算，配置可能随时被用户修改
func (r *Resolver) Resolve(req ResolveRequest, stored *entity.ModelProvider) (*ResolvedConnection, error) {
	hint := strings.TrimSpace(req.Hint)
	if hint == "" && stored != nil {
		hint = stored.ProviderType
	}
	providerKey := r.InferProviderKey(hint)
	descriptor, _ := r.registry.Lookup(providerKey)

	// Base URL：请求 > 存储配置 > 注册表默认
	baseURL := normalizeBaseURL(req.BaseURL)
	if baseURL == "" && stored != nil {
		baseURL = normalizeBaseURL(stored.APIBaseURL)
	}
	if baseURL == "" {
		baseURL = descriptor.DefaultBaseURL
	}
	if baseURL == "" {
		return nil, errors.ErrBaseURLRequired
	}

	// 模型：请求显式模型 > 存储配置默认模型 > 提示本身（若不是提供商标识）> 注册表默认
	// 注意：若用户把与提供商标识同名的字符串当模型名用，这里会落回注册表默认，
	// 这是沿用既有解析链的已知边界情况
	model := strings.TrimSpace(req.ActualModel)
	if model == "" && stored != nil {
		model = strings.TrimSpace(stored.DefaultModel)
	}
	if model == "" && hint != "" {
		if _, isKey := r.registry.Lookup(hint); !isKey {
			model = hint
		}
	}
	if model == "" {
		model = descriptor.DefaultModel
	}
	if model == "" {
		return nil, errors.ErrModelRequired
	}

	// 密钥：请求 > 存储配置 > 环境兜底（仅 grok/claude）
	apiKey := strings.TrimSpace(req.APIKey)
	if apiKey == "" && stored != nil {
		apiKey = strings.TrimSpace(stored.APIKey)
	}
	if apiKey == "" {
		switch providerKey {
		case ProviderGrok:
			apiKey = r.envKeys.Grok
		case ProviderClaude:
			apiKey = r.envKeys.Claude
		}
	}
	if apiKey == "" && (descriptor.RequiresKey || descriptor.Protocol == ProtocolAnthropic) {
		return nil, errors.APIKeyRequired(providerKey)
	}

	return &ResolvedConnection{
		ProviderKey: providerKey,
		Protocol:    descriptor.Protocol,
		BaseURL:     baseURL,
		Model:       model,
		APIKey:      apiKey,
		Endpoint:    buildEndpoint(descriptor.Protocol, baseURL),
	}, nil
}

// normalizeBaseURL 去除首尾空白与尾部斜杠
func normalizeBaseURL(raw string) string {
	return strings.TrimRight(strings.TrimSpace(raw), "/")
}

// buildEndpoint 按协议拼接请求路径，已带路径的 Base URL 不重复拼接
func buildEndpoint(protocol Protocol, baseURL string) string {
	switch protocol {
	case ProtocolAnthropic:
		if strings.HasSuffix(baseURL, "/messages") {
			return baseURL
		}
		return baseURL + "/messages"
	default:
		if strings.HasSuffix(baseURL, "/chat/completions") {
			return baseURL
		}
		return baseURL + "/chat/completions"
	}
}
