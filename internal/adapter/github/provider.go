package github

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"trotd/internal/common"
	"trotd/internal/domain"

	"github.com/google/go-github/v53/github"
	"golang.org/x/oauth2"
)

// ProviderID 在缓存键和结果里标识本平台
const ProviderID = "github"

// Provider 实现了 port.Provider 和 port.StarManager 接口
type Provider struct {
	client  *github.Client
	nowFunc func() time.Time
}

// newClient 构造 GitHub 客户端
// token 为空时匿名访问（限制 60次/小时）
func newClient(token string, timeoutSecs int) *github.Client {
	httpClient := &http.Client{Timeout: time.Duration(timeoutSecs) * time.Second}

	if token == "" {
		return github.NewClient(httpClient)
	}

	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	return github.NewClient(oauth2.NewClient(ctx, ts))
}

// New 初始化 GitHub provider
func New(token string, timeoutSecs int) (*Provider, error) {
	if timeoutSecs <= 0 {
		return nil, common.NewError(common.ErrCodeProviderUnavailable, "GitHub provider 超时配置必须大于 0")
	}
	return &Provider{
		client:  newClient(token, timeoutSecs),
		nowFunc: time.Now,
	}, nil
}

// TopToday 获取当日趋势项目
// GitHub 没有官方 Trending API，用搜索接口按 Star 排序来近似：
// 搜索最近一天创建的项目，offset 在放宽后的首页窗口内截取（上限 100 条）
func (p *Provider) TopToday(ctx context.Context, cfg *domain.ProviderCfg, offset, limit int, filter *domain.LanguageFilter) ([]*domain.Repo, error) {
	since := p.nowFunc().UTC().AddDate(0, 0, -1).Format("2006-01-02")
	query := fmt.Sprintf("created:>%s", since)
	if langs := filter.Languages(); len(langs) == 1 {
		// 单语言直接下推到查询条件，多语言时在下面本地过滤
		query = fmt.Sprintf("language:%s %s", langs[0], query)
	}

	window := offset + limit
	if window > 100 {
		window = 100
	}
	if offset >= window {
		return []*domain.Repo{}, nil
	}

	opts := &github.SearchOptions{
		Sort:  "stars",
		Order: "desc",
		ListOptions: github.ListOptions{
			PerPage: window,
		},
	}

	var result *github.RepositoriesSearchResult
	err := common.Do(ctx, func() error {
		var apiErr error
		result, _, apiErr = p.client.Search.Repositories(ctx, query, opts)
		return apiErr
	},
		common.WithMaxRetries(2),
		common.WithInitialDelay(time.Second),
	)
	if err != nil {
		return nil, common.WrapError(common.ErrCodeProviderFetch, "GitHub API 调用失败", err)
	}

	items := result.Repositories
	if offset >= len(items) {
		return []*domain.Repo{}, nil
	}
	items = items[offset:]

	excluded := make(map[string]struct{}, len(cfg.ExcludeTopics))
	for _, t := range cfg.ExcludeTopics {
		excluded[t] = struct{}{}
	}

	var repos []*domain.Repo
	for _, item := range items {
		if len(repos) >= limit {
			break
		}
		if !filter.Matches(item.GetLanguage()) {
			continue
		}
		if hasExcludedTopic(item.Topics, excluded) {
			continue
		}
		repos = append(repos, &domain.Repo{
			Provider:     ProviderID,
			Name:         item.GetFullName(),
			URL:          item.GetHTMLURL(),
			Description:  item.GetDescription(),
			StarsTotal:   item.GetStargazersCount(),
			Language:     item.GetLanguage(),
			LastActivity: item.GetPushedAt().Time,
			Topics:       item.Topics,
		})
	}

	if repos == nil {
		repos = []*domain.Repo{}
	}
	return repos, nil
}

// hasExcludedTopic 判断项目是否带有任一排除的 topic
func hasExcludedTopic(topics []string, excluded map[string]struct{}) bool {
	if len(excluded) == 0 {
		return false
	}
	for _, t := range topics {
		if _, ok := excluded[t]; ok {
			return true
		}
	}
	return false
}

// ListUserStars 分页拉取当前用户已 star 的项目全名列表
func (p *Provider) ListUserStars(ctx context.Context, token string) ([]string, error) {
	if token == "" {
		return nil, common.NewError(common.ErrCodeInvalidInput, "读取星标列表需要 GitHub token")
	}
	return p.listStarsWithClient(ctx, newClient(token, 10))
}

// listStarsWithClient 用指定客户端走分页拉取
func (p *Provider) listStarsWithClient(ctx context.Context, client *github.Client) ([]string, error) {
	const maxPages = 10 // 最多 1000 个，再多的星标对覆盖层意义不大
	var starred []string

	opts := &github.ActivityListStarredOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}
	for page := 1; page <= maxPages; page++ {
		opts.Page = page

		var repos []*github.StarredRepository
		var resp *github.Response
		err := common.Do(ctx, func() error {
			var apiErr error
			repos, resp, apiErr = client.Activity.ListStarred(ctx, "", opts)
			return apiErr
		},
			common.WithMaxRetries(2),
			common.WithInitialDelay(500*time.Millisecond),
		)
		if err != nil {
			return nil, common.WrapError(common.ErrCodeProviderFetch, "读取星标列表失败", err)
		}

		for _, sr := range repos {
			if name := sr.GetRepository().GetFullName(); name != "" {
				starred = append(starred, name)
			}
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
	}

	return starred, nil
}

// StarRepo 给指定项目加 star
func (p *Provider) StarRepo(ctx context.Context, owner, repo, token string) error {
	if token == "" {
		return common.NewError(common.ErrCodeInvalidInput, "加星标需要 GitHub token")
	}
	client := newClient(token, 10)

	err := common.Do(ctx, func() error {
		_, apiErr := client.Activity.Star(ctx, owner, repo)
		return apiErr
	},
		common.WithMaxRetries(2),
		common.WithInitialDelay(500*time.Millisecond),
	)
	if err != nil {
		return common.WrapError(common.ErrCodeProviderFetch, fmt.Sprintf("给 %s/%s 加星标失败", owner, repo), err)
	}
	return nil
}
