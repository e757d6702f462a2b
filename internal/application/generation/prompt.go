package generation

import (
	"encoding/json"
	"fmt"
	"strings"
)

// 各模式的系统提示词
// generate/continue 共用；outline、characters、rewrite 各自独立
const (
	systemPromptGenerate = `You are a top Chinese web novelist with 15 years experience. Write in beautiful, addictive simplified Chinese. Follow all user settings strictly. Every chapter must end with a hook. Never add author notes. Output ONLY the chapter title and pure text content.`

	systemPromptOutline = `You are a top Chinese web novelist. Generate a detailed novel outline in simplified Chinese. Include: overall story arc, chapter breakdown with brief descriptions, major plot points, climax, and ending. Format as structured markdown. Output ONLY the outline content.`

	systemPromptCharacters = `You are a top Chinese web novelist. Generate detailed character cards in simplified Chinese as a JSON array. Each character should have: name, gender, age, personality, appearance, background, abilities, relationships, and role in the story. Output ONLY valid JSON.`

	systemPromptRewrite = `You are a top Chinese web novelist with 15 years experience. Rewrite the given chapter in simplified Chinese, improving quality, pacing, and engagement. Keep the core plot points but enhance the writing. Every chapter must end with a hook. Never add author notes. Output ONLY the chapter title and pure text content.`

	systemPromptTest = `You are a helpful assistant.`
)

// 上下文注入的字符预算，超出部分从头部截断以保留最新内容
const (
	maxOutlineChars = 4000
	maxSummaryChars = 8000
)

// PromptBuilder 按模式组装系统/用户提示词对
// 纯函数式，并发安全
type PromptBuilder struct{}

// NewPromptBuilder 创建提示词构建器
func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildInput 提示词构建输入
type BuildInput struct {
	Mode     Mode
	Settings *Settings
	// Context 仅 continue 模式使用
	Context *Context
	// ChapterNumber generate 模式的目标章节号，缺省为 1
	ChapterNumber int
	// RewriteContent rewrite 模式待重写的原文
	RewriteContent string
	// TotalWords outline 模式的预计总字数，缺省为 100000
	TotalWords int
}

// Build 组装提示词
func (b *PromptBuilder) Build(in BuildInput) (Prompts, error) {
	settings := in.Settings
	if settings == nil {
		settings = &Settings{}
	}

	switch in.Mode {
	case ModeGenerate:
		chapterNumber := in.ChapterNumber
		if chapterNumber <= 0 {
			chapterNumber = 1
		}
		user := b.buildUserPrompt(settings, &Context{NextChapterNumber: chapterNumber})
		return Prompts{System: systemPromptGenerate, User: user}, nil

	case ModeContinue:
		return Prompts{
			System: systemPromptGenerate,
			User:   b.buildUserPrompt(settings, in.Context),
		}, nil

	case ModeOutline:
		totalWords := in.TotalWords
		if totalWords <= 0 {
			totalWords = settings.TotalWords
		}
		if totalWords <= 0 {
			totalWords = 100000
		}
		user := b.buildUserPrompt(settings, nil) +
			fmt.Sprintf("\n\n请生成一个详细的长篇小说大纲，包含章节规划。预计总字数：%d字。", totalWords)
		return Prompts{System: systemPromptOutline, User: user}, nil

	case ModeCharacters:
		user := b.buildUserPrompt(settings, nil) +
			"\n\n请为这部小说生成3-5个主要角色的详细人物卡，以JSON数组格式输出。"
		return Prompts{System: systemPromptCharacters, User: user}, nil

	case ModeRewrite:
		user := fmt.Sprintf("以下是需要重写的章节内容：\n\n%s\n\n设定信息：\n%s",
			in.RewriteContent, b.buildUserPrompt(settings, nil))
		return Prompts{System: systemPromptRewrite, User: user}, nil

	case ModeTest:
		return Prompts{System: systemPromptTest, User: "你好"}, nil

	default:
		return Prompts{}, fmt.Errorf("unknown generation mode: %s", in.Mode)
	}
}

// buildUserPrompt 按固定顺序拼接非空设定行，空字段整行省略
func (b *PromptBuilder) buildUserPrompt(settings *Settings, ctx *Context) string {
	var parts []string

	if len(settings.Genres) > 0 {
		parts = append(parts, "类型："+strings.Join(settings.Genres, "、"))
	}
	if p := settings.Protagonist; p != nil && p.Name != "" {
		age := p.Age
		if age == "" {
			age = "未知"
		}
		personality := p.Personality
		if personality == "" {
			personality = "未设定"
		}
		parts = append(parts, fmt.Sprintf("主角：%s，%s，%s岁，性格：%s", p.Name, p.Gender, age, personality))
	}
	if settings.WorldSetting != "" {
		parts = append(parts, "世界观："+settings.WorldSetting)
	}
	if settings.Conflict != "" {
		parts = append(parts, "核心冲突："+settings.Conflict)
	}
	if settings.Synopsis != "" {
		parts = append(parts, "简介："+settings.Synopsis)
	}
	if settings.Style != "" {
		parts = append(parts, "风格："+settings.Style)
	}
	if settings.Narration != "" {
		parts = append(parts, "视角："+settings.Narration)
	}
	if settings.ChapterWords > 0 {
		parts = append(parts, fmt.Sprintf("本章字数要求：约%d字", settings.ChapterWords))
	}
	if settings.NSFW {
		parts = append(parts, "允许成人内容")
	}
	if settings.SystemNovel {
		parts = append(parts, "这是一本系统文，主角拥有系统")
	}
	if settings.Harem {
		parts = append(parts, "后宫元素")
	}

	if ctx != nil {
		if ctx.Outline != "" {
			parts = append(parts, "\n【大纲】\n"+TruncateTail(ctx.Outline, maxOutlineChars))
		}
		if len(ctx.CharacterCards) > 0 {
			if cards, err := json.MarshalIndent(ctx.CharacterCards, "", "  "); err == nil {
				parts = append(parts, "\n【人物卡】\n"+string(cards))
			}
		}
		if ctx.PreviousSummary != "" {
			parts = append(parts, "\n【前文摘要（最近3章）】\n"+TruncateTail(ctx.PreviousSummary, maxSummaryChars))
		}
		if ctx.NextChapterNumber > 0 {
			parts = append(parts, fmt.Sprintf("\n请生成第%d章", ctx.NextChapterNumber))
		}
	}

	return strings.Join(parts, "\n")
}

// TruncateTail 按字符数从尾部保留，超出预算时丢弃头部
// 续写场景下越新的上下文越重要，所以保留的是尾部切片
func TruncateTail(s string, maxChars int) string {
	if maxChars <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[len(runes)-maxChars:])
}
