package filter

import (
	"trotd/internal/domain"
)

// ASCII 占比阈值，低于阈值的项目会被 FilterMostlyASCII 过滤掉
const (
	nameASCIIThreshold = 0.8
	descASCIIThreshold = 0.7
)

// RepoFilter 合并结果上的后置过滤器集合
type RepoFilter struct{}

// NewRepoFilter 创建过滤器实例
func NewRepoFilter() *RepoFilter {
	return &RepoFilter{}
}

// FilterMostlyASCII 过滤掉名称/描述以非 ASCII 字符为主的项目
// （把 CJK 等非拉丁文项目从榜单里去掉）
func (f *RepoFilter) FilterMostlyASCII(repos []*domain.Repo) []*domain.Repo {
	filtered := make([]*domain.Repo, 0, len(repos))
	for _, repo := range repos {
		if isMostlyASCII(repo) {
			filtered = append(filtered, repo)
		}
	}
	return filtered
}

// FilterByMinStars 过滤掉总 Star 数低于阈值的项目，minStars <= 0 时不过滤
func (f *RepoFilter) FilterByMinStars(repos []*domain.Repo, minStars int) []*domain.Repo {
	if minStars <= 0 {
		return repos
	}
	filtered := make([]*domain.Repo, 0, len(repos))
	for _, repo := range repos {
		if repo.StarsTotal >= minStars {
			filtered = append(filtered, repo)
		}
	}
	return filtered
}

// FilterByLanguage 按语言过滤（provider 端漏掉的兜底，比如多语言配置）
func (f *RepoFilter) FilterByLanguage(repos []*domain.Repo, langFilter *domain.LanguageFilter) []*domain.Repo {
	if langFilter.IsEmpty() {
		return repos
	}
	filtered := make([]*domain.Repo, 0, len(repos))
	for _, repo := range repos {
		// 语言字段缺失的项目放行，避免误杀 GitLab 结果
		if repo.Language == "" || langFilter.Matches(repo.Language) {
			filtered = append(filtered, repo)
		}
	}
	return filtered
}

// isMostlyASCII 判断项目名称和描述是否以 ASCII 为主
func isMostlyASCII(repo *domain.Repo) bool {
	if asciiRatio(repo.Name) < nameASCIIThreshold {
		return false
	}
	if repo.Description != "" && asciiRatio(repo.Description) < descASCIIThreshold {
		return false
	}
	return true
}

// asciiRatio 计算字符串里 ASCII 字符的占比，空串算 1.0
func asciiRatio(s string) float64 {
	if s == "" {
		return 1.0
	}
	total, ascii := 0, 0
	for _, r := range s {
		total++
		if r < 128 {
			ascii++
		}
	}
	return float64(ascii) / float64(total)
}
