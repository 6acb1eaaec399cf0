package domain

import (
	"strings"
	"time"
)

// Repo 代表一个来自某个托管平台的趋势项目
type Repo struct {
	// Provider 标识来源平台: "github" / "gitlab" / "gitea"
	Provider string `json:"provider"`

	// Name 是 "owner/repo" 格式的全名，也是去重/已读判断的唯一键
	// 注意：跨平台可能撞名，按约定视为同一个项目（已知歧义，保持现状）
	Name string `json:"name"`

	Language    string `json:"language,omitempty"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url"`

	// StarsToday 当日新增 Star 数（部分平台拿不到，为 0）
	StarsToday int `json:"stars_today,omitempty"`
	// StarsTotal 总 Star 数
	StarsTotal int `json:"stars_total,omitempty"`

	LastActivity time.Time `json:"last_activity,omitempty"`
	Topics       []string  `json:"topics,omitempty"`

	// IsStarred 是抓取完成后唯一允许修改的字段，由星标覆盖层填写
	IsStarred bool `json:"is_starred"`
}

// ProviderCfg 每个 provider 的配置，纯数据注入，避免编排层里散落平台分支
type ProviderCfg struct {
	TimeoutSecs   int
	Token         string
	BaseURL       string   // 目前只有 gitea 用
	ExcludeTopics []string // 目前只有 github 用
}

// ProviderRunResult 单次编排中一个 provider 的产出，只在 channel 里流转，不落盘
type ProviderRunResult struct {
	ProviderID string
	Repos      []*Repo
	FromCache  bool
	Err        error
}

// LanguageFilter 语言过滤器，空列表表示不过滤
type LanguageFilter struct {
	langs map[string]struct{}
}

// NewLanguageFilter 创建语言过滤器，语言名不区分大小写
func NewLanguageFilter(langs []string) *LanguageFilter {
	f := &LanguageFilter{langs: make(map[string]struct{}, len(langs))}
	for _, l := range langs {
		l = strings.TrimSpace(l)
		if l != "" {
			f.langs[strings.ToLower(l)] = struct{}{}
		}
	}
	return f
}

// IsEmpty 是否未配置任何语言
func (f *LanguageFilter) IsEmpty() bool {
	return f == nil || len(f.langs) == 0
}

// Matches 判断语言是否通过过滤（未配置时全部通过）
func (f *LanguageFilter) Matches(language string) bool {
	if f.IsEmpty() {
		return true
	}
	_, ok := f.langs[strings.ToLower(language)]
	return ok
}

// Languages 返回过滤器里的语言列表（小写），供 provider 拼查询条件
func (f *LanguageFilter) Languages() []string {
	if f == nil {
		return nil
	}
	out := make([]string, 0, len(f.langs))
	for l := range f.langs {
		out = append(out, l)
	}
	return out
}
