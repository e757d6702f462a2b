package generation

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"novelforge-api/internal/domain/entity"
)

type fakeNovelRepo struct {
	novel *entity.Novel
	err   error
}

func (r *fakeNovelRepo) GetByID(ctx context.Context, id string) (*entity.Novel, error) {
	return r.novel, r.err
}
func (r *fakeNovelRepo) Create(ctx context.Context, novel *entity.Novel) error { return nil }
func (r *fakeNovelRepo) Update(ctx context.Context, novel *entity.Novel) error { return nil }

type fakeChapterRepo struct {
	chapters []*entity.Chapter
}

func (r *fakeChapterRepo) ListByNovel(ctx context.Context, novelID string) ([]*entity.Chapter, error) {
	return r.chapters, nil
}
func (r *fakeChapterRepo) CountByNovel(ctx context.Context, novelID string) (int64, error) {
	return int64(len(r.chapters)), nil
}
func (r *fakeChapterRepo) Create(ctx context.Context, chapter *entity.Chapter) error { return nil }

type fakeCharacterRepo struct {
	characters []*entity.Character
}

func (r *fakeCharacterRepo) ListByNovel(ctx context.Context, novelID string) ([]*entity.Character, error) {
	return r.characters, nil
}
func (r *fakeCharacterRepo) Create(ctx context.Context, character *entity.Character) error {
	return nil
}

func TestContextBuildEmptyNovel(t *testing.T) {
	builder := NewContextBuilder(&fakeNovelRepo{}, &fakeChapterRepo{}, &fakeCharacterRepo{})

	genCtx, err := builder.Build(context.Background(), "missing-novel")
	require.NoError(t, err)

	assert.Equal(t, 1, genCtx.NextChapterNumber)
	assert.Empty(t, genCtx.Outline)
	assert.Empty(t, genCtx.PreviousSummary)
	assert.Empty(t, genCtx.CharacterCards)
}

func TestContextBuildNextChapterNumber(t *testing.T) {
	chapters := make([]*entity.Chapter, 0, 5)
	for i := 1; i <= 5; i++ {
		chapters = append(chapters, &entity.Chapter{
			ChapterNumber: i,
			Title:         fmt.Sprintf("章节%d", i),
			Content:       fmt.Sprintf("第%d章的内容", i),
		})
	}

	builder := NewContextBuilder(
		&fakeNovelRepo{novel: &entity.Novel{Outline: "大纲内容"}},
		&fakeChapterRepo{chapters: chapters},
		&fakeCharacterRepo{},
	)

	genCtx, err := builder.Build(context.Background(), "novel-1")
	require.NoError(t, err)

	assert.Equal(t, 6, genCtx.NextChapterNumber)
	assert.Equal(t, "大纲内容", genCtx.Outline)

	// 摘要只包含最近 3 章
	assert.NotContains(t, genCtx.PreviousSummary, "第1章 章节1")
	assert.NotContains(t, genCtx.PreviousSummary, "第2章 章节2")
	assert.Contains(t, genCtx.PreviousSummary, "第3章 章节3")
	assert.Contains(t, genCtx.PreviousSummary, "第4章 章节4")
	assert.Contains(t, genCtx.PreviousSummary, "第5章 章节5")
}

func TestContextBuildSummaryTruncation(t *testing.T) {
	longContent := strings.Repeat("文", 800)
	builder := NewContextBuilder(
		&fakeNovelRepo{},
		&fakeChapterRepo{chapters: []*entity.Chapter{
			{ChapterNumber: 1, Title: "开端", Content: longContent},
		}},
		&fakeCharacterRepo{},
	)

	genCtx, err := builder.Build(context.Background(), "novel-1")
	require.NoError(t, err)

	// 每章摘要取前 500 字并加省略号
	assert.True(t, strings.HasPrefix(genCtx.PreviousSummary, "第1章 开端："))
	assert.True(t, strings.HasSuffix(genCtx.PreviousSummary, "..."))
	body := strings.TrimSuffix(strings.TrimPrefix(genCtx.PreviousSummary, "第1章 开端："), "...")
	assert.Equal(t, 500, len([]rune(body)))
}

func TestContextBuildCharacterCards(t *testing.T) {
	builder := NewContextBuilder(
		&fakeNovelRepo{},
		&fakeChapterRepo{},
		&fakeCharacterRepo{characters: []*entity.Character{
			{Name: "林凡", CardJSON: []byte(`{"age":18}`)},
			{Name: "苏瑶", CardJSON: []byte(`{"age":17}`)},
		}},
	)

	genCtx, err := builder.Build(context.Background(), "novel-1")
	require.NoError(t, err)

	require.Len(t, genCtx.CharacterCards, 2)
	assert.Equal(t, "林凡", genCtx.CharacterCards[0].Name)
}
