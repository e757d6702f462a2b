package generation

import (
	"context"
	"fmt"
	"strings"

	"novelforge-api/internal/domain/entity"
	"novelforge-api/internal/domain/repository"
	"novelforge-api/pkg/tracer"
)

// 前文摘要取最近的章节数与每章摘要字符数
const (
	recentChapterCount  = 3
	chapterSummaryChars = 500
)

// ContextBuilder 为续写模式构建生成上下文
// 每次请求独立读取持久化数据，不做缓存
type ContextBuilder struct {
	novels     repository.NovelRepository
	chapters   repository.ChapterRepository
	characters repository.CharacterRepository
}

// NewContextBuilder 创建上下文构建器
func NewContextBuilder(
	novels repository.NovelRepository,
	chapters repository.ChapterRepository,
	characters repository.CharacterRepository,
) *ContextBuilder {
	return &ContextBuilder{
		novels:     novels,
		chapters:   chapters,
		characters: characters,
	}
}

// Build 读取大纲、人物卡与已有章节，计算下一章号
// 小说不存在时按空上下文处理：无大纲、无摘要、下一章号为 1
func (b *ContextBuilder) Build(ctx context.Context, novelID string) (*Context, error) {
	ctx, span := tracer.Start(ctx, "generation.ContextBuilder.Build")
	defer span.End()

	genCtx := &Context{NextChapterNumber: 1}

	novel, err := b.novels.GetByID(ctx, novelID)
	if err != nil {
		return nil, fmt.Errorf("failed to load novel: %w", err)
	}
	if novel != nil {
		genCtx.Outline = TruncateTail(novel.Outline, maxOutlineChars)
	}

	chapters, err := b.chapters.ListByNovel(ctx, novelID)
	if err != nil {
		return nil, fmt.Errorf("failed to load chapters: %w", err)
	}
	genCtx.PreviousSummary = TruncateTail(buildPreviousSummary(chapters), maxSummaryChars)
	genCtx.NextChapterNumber = len(chapters) + 1

	characters, err := b.characters.ListByNovel(ctx, novelID)
	if err != nil {
		return nil, fmt.Errorf("failed to load characters: %w", err)
	}
	for _, c := range characters {
		genCtx.CharacterCards = append(genCtx.CharacterCards, CharacterCard{
			Name:     c.Name,
			CardJSON: c.CardJSON,
		})
	}

	return genCtx, nil
}

// buildPreviousSummary 汇总最近 3 章，每章取开头 500 字
func buildPreviousSummary(chapters []*entity.Chapter) string {
	if len(chapters) == 0 {
		return ""
	}

	recent := chapters
	if len(recent) > recentChapterCount {
		recent = recent[len(recent)-recentChapterCount:]
	}

	parts := make([]string, 0, len(recent))
	for _, ch := range recent {
		summary := ch.Content
		if runes := []rune(summary); len(runes) > chapterSummaryChars {
			summary = string(runes[:chapterSummaryChars]) + "..."
		}
		parts = append(parts, fmt.Sprintf("第%d章 %s：%s", ch.ChapterNumber, ch.Title, summary))
	}
	return strings.Join(parts, "\n\n")
}
