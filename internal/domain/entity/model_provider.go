// Package entity 定义领域实体
package entity

import (
	"time"
)

// ModelProvider 用户配置的 LLM 提供商记录
// 对应 model_providers 表，每个用户可配置多条，is_default 标记首选项
type ModelProvider struct {
	ID           string    `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID       string    `json:"user_id" gorm:"type:uuid;index;not null"`
	Name         string    `json:"name" gorm:"type:varchar(255);not null"`
	ProviderType string    `json:"provider_type" gorm:"type:varchar(64);not null"`
	APIKey       string    `json:"-" gorm:"column:api_key;type:text"`
	APIBaseURL   string    `json:"api_base_url,omitempty" gorm:"column:api_base_url;type:varchar(512)"`
	DefaultModel string    `json:"default_model,omitempty" gorm:"type:varchar(128)"`
	IsDefault    bool      `json:"is_default" gorm:"default:false"`
	Enabled      bool      `json:"enabled" gorm:"default:true"`
	ConfigJSON   string    `json:"config_json,omitempty" gorm:"column:config_json;type:jsonb"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (ModelProvider) TableName() string {
	return "model_providers"
}
