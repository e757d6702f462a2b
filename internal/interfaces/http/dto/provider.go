package dto

// ProviderRequest 创建/更新提供商配置请求
type ProviderRequest struct {
	Name         string `json:"name" binding:"required"`
	ProviderType string `json:"provider_type" binding:"required"`
	APIKey       string `json:"api_key,omitempty"`
	APIBaseURL   string `json:"api_base_url,omitempty"`
	DefaultModel string `json:"default_model,omitempty"`
	IsDefault    bool   `json:"is_default"`
	Enabled      *bool  `json:"enabled,omitempty"`
	ConfigJSON   string `json:"config_json,omitempty"`
}
