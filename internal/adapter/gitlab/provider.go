package gitlab

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"trotd/internal/common"
	"trotd/internal/domain"
)

// ProviderID 在缓存键和结果里标识本平台
const ProviderID = "gitlab"

const defaultBaseURL = "https://gitlab.com"

// glProject 是 GitLab /api/v4/projects 响应里我们关心的字段
type glProject struct {
	PathWithNamespace string    `json:"path_with_namespace"`
	WebURL            string    `json:"web_url"`
	Description       string    `json:"description"`
	StarCount         int       `json:"star_count"`
	LastActivityAt    time.Time `json:"last_activity_at"`
	Topics            []string  `json:"topics"`
}

// Provider 实现了 port.Provider 接口
// GitLab 没有趋势榜 API，用 projects 接口按 star 数排序、
// 限定最近一天有活动的项目来近似
type Provider struct {
	baseURL    string
	httpClient *http.Client
	nowFunc    func() time.Time
}

// New 初始化 GitLab provider
func New(timeoutSecs int) (*Provider, error) {
	if timeoutSecs <= 0 {
		return nil, common.NewError(common.ErrCodeProviderUnavailable, "GitLab provider 超时配置必须大于 0")
	}
	return &Provider{
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: time.Duration(timeoutSecs) * time.Second,
		},
		nowFunc: time.Now,
	}, nil
}

// TopToday 获取当日活跃、按 star 排序的项目
func (p *Provider) TopToday(ctx context.Context, cfg *domain.ProviderCfg, offset, limit int, filter *domain.LanguageFilter) ([]*domain.Repo, error) {
	window := offset + limit
	if window > 100 {
		window = 100
	}
	if offset >= window {
		return []*domain.Repo{}, nil
	}

	params := url.Values{}
	params.Set("order_by", "star_count")
	params.Set("sort", "desc")
	params.Set("per_page", strconv.Itoa(window))
	params.Set("last_activity_after", p.nowFunc().UTC().AddDate(0, 0, -1).Format(time.RFC3339))
	if langs := filter.Languages(); len(langs) == 1 {
		// 列表响应里没有语言字段，只能把单语言过滤下推给 API
		params.Set("with_programming_language", langs[0])
	}

	reqURL := fmt.Sprintf("%s/api/v4/projects?%s", p.baseURL, params.Encode())

	var projects []glProject
	err := common.Do(ctx, func() error {
		return p.getJSON(ctx, reqURL, cfg.Token, &projects)
	},
		common.WithMaxRetries(2),
		common.WithInitialDelay(time.Second),
	)
	if err != nil {
		return nil, common.WrapError(common.ErrCodeProviderFetch, "GitLab API 调用失败", err)
	}

	if offset >= len(projects) {
		return []*domain.Repo{}, nil
	}

	repos := make([]*domain.Repo, 0, limit)
	for _, proj := range projects[offset:] {
		if len(repos) >= limit {
			break
		}
		repos = append(repos, &domain.Repo{
			Provider:     ProviderID,
			Name:         proj.PathWithNamespace,
			URL:          proj.WebURL,
			Description:  proj.Description,
			StarsTotal:   proj.StarCount,
			LastActivity: proj.LastActivityAt,
			Topics:       proj.Topics,
		})
	}
	return repos, nil
}

// getJSON 发送 GET 请求并解析 JSON 响应，token 放在 PRIVATE-TOKEN 头里
func (p *Provider) getJSON(ctx context.Context, reqURL, token string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	if token != "" {
		req.Header.Set("PRIVATE-TOKEN", token)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("GitLab API 报错: 状态码 %d: %s", resp.StatusCode, body)
	}

	return json.NewDecoder(resp.Body).Decode(v)
}
