// Package generation 实现多提供商 LLM 流式生成网关的核心逻辑：
// 提供商注册表、连接参数解析、提示词组装与上游流式调用
package generation

import (
	"encoding/json"
)

// Mode 生成模式
type Mode string

const (
	ModeGenerate   Mode = "generate"
	ModeOutline    Mode = "outline"
	ModeCharacters Mode = "characters"
	ModeRewrite    Mode = "rewrite"
	ModeContinue   Mode = "continue"
	ModeTest       Mode = "test"
)

// ValidMode 检查模式是否合法
func ValidMode(m Mode) bool {
	switch m {
	case ModeGenerate, ModeOutline, ModeCharacters, ModeRewrite, ModeContinue, ModeTest:
		return true
	}
	return false
}

// Protocol 上游协议族
// 多个提供商共用 openai-compatible 协议，适配器按协议划分而非按提供商划分
type Protocol string

const (
	ProtocolOpenAI    Protocol = "openai-compatible"
	ProtocolAnthropic Protocol = "anthropic"
)

// Protagonist 主角设定
type Protagonist struct {
	Name        string `json:"name"`
	Gender      string `json:"gender"`
	Age         string `json:"age"`
	Personality string `json:"personality"`
}

// Settings 小说生成设定，对应前端设置表单提交的字段
// 所有字段均可为空，空字段不会出现在提示词里
type Settings struct {
	Genres       []string     `json:"genres"`
	Protagonist  *Protagonist `json:"protagonist"`
	WorldSetting string       `json:"worldSetting"`
	Conflict     string       `json:"conflict"`
	Synopsis     string       `json:"synopsis"`
	Style        string       `json:"style"`
	Narration    string       `json:"narration"`
	ChapterWords int          `json:"chapterWords"`
	NSFW         bool         `json:"nsfw"`
	SystemNovel  bool         `json:"systemNovel"`
	Harem        bool         `json:"harem"`
	TotalWords   int          `json:"totalWords"`
}

// Prompts 一次生成的系统/用户提示词对
type Prompts struct {
	System string
	User   string
}

// CharacterCard 注入提示词的人物卡记录
type CharacterCard struct {
	Name     string          `json:"name"`
	CardJSON json.RawMessage `json:"card_json"`
}

// Context 续写模式的上下文，按请求构建、用完即弃
type Context struct {
	Outline           string
	CharacterCards    []CharacterCard
	PreviousSummary   string
	NextChapterNumber int
}

// ProviderDescriptor 提供商静态描述，进程生命周期内只读
type ProviderDescriptor struct {
	ProviderKey    string
	Protocol       Protocol
	DefaultBaseURL string
	DefaultModel   string
	// RequiresKey 为 true 时解析出的连接必须携带 API 密钥
	RequiresKey bool
}

// ResolvedConnection 单次请求解析出的连接参数，不跨请求缓存
type ResolvedConnection struct {
	ProviderKey string
	Protocol    Protocol
	BaseURL     string
	Model       string
	APIKey      string
	// Endpoint 已拼接协议路径的完整请求地址
	Endpoint string
}
