// Package entity 定义领域实体
package entity

import (
	"time"
)

// Chapter 章节实体
type Chapter struct {
	ID            string    `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NovelID       string    `json:"novel_id" gorm:"type:uuid;index;not null"`
	ChapterNumber int       `json:"chapter_number" gorm:"not null"`
	Title         string    `json:"title,omitempty" gorm:"type:varchar(255)"`
	Content       string    `json:"content,omitempty" gorm:"type:text"`
	WordCount     int       `json:"word_count" gorm:"default:0"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (Chapter) TableName() string {
	return "chapters"
}

// SetContent 设置章节内容并更新字数
func (c *Chapter) SetContent(content string) {
	c.Content = content
	c.WordCount = len([]rune(content))
	c.UpdatedAt = time.Now()
}
