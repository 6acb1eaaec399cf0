package gitea

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"trotd/internal/common"
	"trotd/internal/domain"
)

// ProviderID 在缓存键和结果里标识本平台
const ProviderID = "gitea"

// searchResponse 是 Gitea /api/v1/repos/search 的响应结构
type searchResponse struct {
	OK   bool        `json:"ok"`
	Data []giteaRepo `json:"data"`
}

type giteaRepo struct {
	FullName    string    `json:"full_name"`
	HTMLURL     string    `json:"html_url"`
	Description string    `json:"description"`
	StarsCount  int       `json:"stars_count"`
	Language    string    `json:"language"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Provider 实现了 port.Provider 接口
// Gitea 没有趋势榜 API，用 repos/search 按 star 数排序来近似，
// 实例地址通过 ProviderCfg.BaseURL 注入（默认 gitea.com）
type Provider struct {
	httpClient *http.Client
	nowFunc    func() time.Time
}

// New 初始化 Gitea provider
func New(timeoutSecs int) (*Provider, error) {
	if timeoutSecs <= 0 {
		return nil, common.NewError(common.ErrCodeProviderUnavailable, "Gitea provider 超时配置必须大于 0")
	}
	return &Provider{
		httpClient: &http.Client{
			Timeout: time.Duration(timeoutSecs) * time.Second,
		},
		nowFunc: time.Now,
	}, nil
}

// TopToday 获取按 star 排序的项目，本地保留最近一天有更新的
func (p *Provider) TopToday(ctx context.Context, cfg *domain.ProviderCfg, offset, limit int, filter *domain.LanguageFilter) ([]*domain.Repo, error) {
	if cfg.BaseURL == "" {
		return nil, common.NewError(common.ErrCodeProviderFetch, "Gitea base URL 未配置")
	}

	window := offset + limit
	if window > 100 {
		window = 100
	}
	if offset >= window {
		return []*domain.Repo{}, nil
	}

	params := url.Values{}
	params.Set("sort", "stars")
	params.Set("order", "desc")
	params.Set("limit", strconv.Itoa(window))

	reqURL := fmt.Sprintf("%s/api/v1/repos/search?%s",
		strings.TrimRight(cfg.BaseURL, "/"), params.Encode())

	var result searchResponse
	err := common.Do(ctx, func() error {
		return p.getJSON(ctx, reqURL, cfg.Token, &result)
	},
		common.WithMaxRetries(2),
		common.WithInitialDelay(time.Second),
	)
	if err != nil {
		return nil, common.WrapError(common.ErrCodeProviderFetch, "Gitea API 调用失败", err)
	}
	if !result.OK {
		return nil, common.NewError(common.ErrCodeProviderFetch, "Gitea API 返回 ok=false")
	}

	// search 接口不支持按活跃时间过滤，本地截掉超过一天没动静的项目
	activeSince := p.nowFunc().UTC().AddDate(0, 0, -1)

	items := result.Data
	if offset >= len(items) {
		return []*domain.Repo{}, nil
	}

	repos := make([]*domain.Repo, 0, limit)
	for _, item := range items[offset:] {
		if len(repos) >= limit {
			break
		}
		if item.UpdatedAt.Before(activeSince) {
			continue
		}
		if !filter.Matches(item.Language) {
			continue
		}
		repos = append(repos, &domain.Repo{
			Provider:     ProviderID,
			Name:         item.FullName,
			URL:          item.HTMLURL,
			Description:  item.Description,
			StarsTotal:   item.StarsCount,
			Language:     item.Language,
			LastActivity: item.UpdatedAt,
		})
	}
	return repos, nil
}

// getJSON 发送 GET 请求并解析 JSON 响应
func (p *Provider) getJSON(ctx context.Context, reqURL, token string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	if token != "" {
		req.Header.Set("Authorization", "token "+token)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("Gitea API 报错: 状态码 %d: %s", resp.StatusCode, body)
	}

	return json.NewDecoder(resp.Body).Decode(v)
}
