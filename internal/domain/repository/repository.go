// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"novelforge-api/internal/domain/entity"
)

// NovelRepository 小说仓储接口
type NovelRepository interface {
	// GetByID 根据 ID 获取小说，不存在时返回 (nil, nil)
	GetByID(ctx context.Context, id string) (*entity.Novel, error)
	Create(ctx context.Context, novel *entity.Novel) error
	Update(ctx context.Context, novel *entity.Novel) error
}

// ChapterRepository 章节仓储接口
type ChapterRepository interface {
	// ListByNovel 按章节号升序返回小说的全部章节
	ListByNovel(ctx context.Context, novelID string) ([]*entity.Chapter, error)
	CountByNovel(ctx context.Context, novelID string) (int64, error)
	Create(ctx context.Context, chapter *entity.Chapter) error
}

// CharacterRepository 人物卡仓储接口
type CharacterRepository interface {
	ListByNovel(ctx context.Context, novelID string) ([]*entity.Character, error)
	Create(ctx context.Context, character *entity.Character) error
}

// ModelProviderRepository 用户 LLM 提供商配置仓储接口
type ModelProviderRepository interface {
	// ListEnabledByUser 返回用户启用的提供商配置，默认项排在最前
	ListEnabledByUser(ctx context.Context, userID string) ([]*entity.ModelProvider, error)
	Create(ctx context.Context, provider *entity.ModelProvider) error
	Update(ctx context.Context, provider *entity.ModelProvider) error
}
