// Package entity 定义领域实体
package entity

import (
	"encoding/json"
	"time"
)

// Character 人物卡实体
type Character struct {
	ID        string          `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NovelID   string          `json:"novel_id" gorm:"type:uuid;index;not null"`
	Name      string          `json:"name" gorm:"type:varchar(255);not null"`
	CardJSON  json.RawMessage `json:"card_json,omitempty" gorm:"type:jsonb"`
	CreatedAt time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (Character) TableName() string {
	return "characters"
}
