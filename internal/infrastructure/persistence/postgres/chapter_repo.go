// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"novelforge-api/internal/domain/entity"
)

// ChapterRepository 章节仓储实现
type ChapterRepository struct {
	client *Client
}

// NewChapterRepository 创建章节仓储
func NewChapterRepository(client *Client) *ChapterRepository {
	return &ChapterRepository{client: client}
}

// ListByNovel 按章节号升序返回小说的全部章节
func (r *ChapterRepository) ListByNovel(ctx context.Context, novelID string) ([]*entity.Chapter, error) {
	ctx, span := tracer.Start(ctx, "postgres.ChapterRepository.ListByNovel")
	defer span.End()

	var chapters []*entity.Chapter
	if err := r.client.db.WithContext(ctx).
		Where("novel_id = ?", novelID).
		Order("chapter_number ASC").
		Find(&chapters).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list chapters: %w", err)
	}
	return chapters, nil
}

// CountByNovel 统计小说已有章节数
func (r *ChapterRepository) CountByNovel(ctx context.Context, novelID string) (int64, error) {
	ctx, span := tracer.Start(ctx, "postgres.ChapterRepository.CountByNovel")
	defer span.End()

	var total int64
	if err := r.client.db.WithContext(ctx).
		Model(&entity.Chapter{}).
		Where("novel_id = ?", novelID).
		Count(&total).Error; err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("failed to count chapters: %w", err)
	}
	return total, nil
}

// Create 创建章节
func (r *ChapterRepository) Create(ctx context.Context, chapter *entity.Chapter) error {
	ctx, span := tracer.Start(ctx, "postgres.ChapterRepository.Create")
	defer span.End()

	if err := r.client.db.WithContext(ctx).Create(chapter).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create chapter: %w", err)
	}
	return nil
}
