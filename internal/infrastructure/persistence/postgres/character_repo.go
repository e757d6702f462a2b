// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"novelforge-api/internal/domain/entity"
)

// CharacterRepository 人物卡仓储实现
type CharacterRepository struct {
	client *Client
}

// NewCharacterRepository 创建人物卡仓储
func NewCharacterRepository(client *Client) *CharacterRepository {
	return &CharacterRepository{client: client}
}

// ListByNovel 返回小说的全部人物卡
func (r *CharacterRepository) ListByNovel(ctx context.Context, novelID string) ([]*entity.Character, error) {
	ctx, span := tracer.Start(ctx, "postgres.CharacterRepository.ListByNovel")
	defer span.End()

	var characters []*entity.Character
	if err := r.client.db.WithContext(ctx).
		Where("novel_id = ?", novelID).
		Find(&characters).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list characters: %w", err)
	}
	return characters, nil
}

// Create 创建人物卡
func (r *CharacterRepository) Create(ctx context.Context, character *entity.Character) error {
	ctx, span := tracer.Start(ctx, "postgres.CharacterRepository.Create")
	defer span.End()

	if err := r.client.db.WithContext(ctx).Create(character).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create character: %w", err)
	}
	return nil
}
