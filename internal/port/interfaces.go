package port

import (
	"context"

	"trotd/internal/domain"
)

// Provider (趋势源): 统一抓取能力，GitHub/GitLab/Gitea 各实现一份
// offset 是榜单内的条目偏移，limit 是软上限，filter 为空时不过滤语言
type Provider interface {
	TopToday(ctx context.Context, cfg *domain.ProviderCfg, offset, limit int, filter *domain.LanguageFilter) ([]*domain.Repo, error)
}

// ResultCache (结果缓存): 按 provider id 缓存原始抓取结果，TTL 由实现方配置
type ResultCache interface {
	// Get 命中返回 (repos, true)；不存在/过期/损坏 都算未命中
	Get(providerID string) ([]*domain.Repo, bool)

	// Set 覆盖写入并刷新时间戳，写失败由调用方自行吞掉
	Set(providerID string, repos []*domain.Repo) error
}

// SeenStore (已读管理员): 当日已展示项目集合 + 分页偏移，跨天自动作废
type SeenStore interface {
	GetSeen() map[string]struct{}
	GetFetchOffset() int
	MarkSeen(repos []*domain.Repo) error
	IncrementFetchOffset(n int) error
	FilterUnseen(repos []*domain.Repo) []*domain.Repo
	Clear() error
}

// StarredStore (星标缓存): 用户已 star 项目名集合，带 TTL
type StarredStore interface {
	// GetStarred 过期/缺失/损坏 返回 (nil, false)
	GetStarred() (map[string]struct{}, bool)
	SaveStarred(starred map[string]struct{}) error
	Clear() error
}

// StarManager (星标操作): 读取用户 star 列表、给项目加 star
// 目前只有 GitHub 实现
type StarManager interface {
	ListUserStars(ctx context.Context, token string) ([]string, error)
	StarRepo(ctx context.Context, owner, repo, token string) error
}
