// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"novelforge-api/internal/domain/entity"
)

// ModelProviderRepository 用户 LLM 提供商配置仓储实现
type ModelProviderRepository struct {
	client *Client
}

// NewModelProviderRepository 创建提供商配置仓储
func NewModelProviderRepository(client *Client) *ModelProviderRepository {
	return &ModelProviderRepository{client: client}
}

// ListEnabledByUser 返回用户启用的提供商配置，默认项排在最前
// 配置可能在两次请求之间被修改，因此每次请求都重新读取，不做缓存
func (r *ModelProviderRepository) ListEnabledByUser(ctx context.Context, userID string) ([]*entity.ModelProvider, error) {
	ctx, span := tracer.Start(ctx, "postgres.ModelProviderRepository.ListEnabledByUser")
	defer span.End()

	var providers []*entity.ModelProvider
	if err := r.client.db.WithContext(ctx).
		Where("user_id = ? AND enabled = ?", userID, true).
		Order("is_default DESC, created_at ASC").
		Find(&providers).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list model providers: %w", err)
	}
	return providers, nil
}

// Create 创建提供商配置
func (r *ModelProviderRepository) Create(ctx context.Context, provider *entity.ModelProvider) error {
	ctx, span := tracer.Start(ctx, "postgres.ModelProviderRepository.Create")
	defer span.End()

	if err := r.client.db.WithContext(ctx).Create(provider).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create model provider: %w", err)
	}
	return nil
}

// Update 更新提供商配置
func (r *ModelProviderRepository) Update(ctx context.Context, provider *entity.ModelProvider) error {
	ctx, span := tracer.Start(ctx, "postgres.ModelProviderRepository.Update")
	defer span.End()

	if err := r.client.db.WithContext(ctx).Save(provider).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update model provider: %w", err)
	}
	return nil
}
