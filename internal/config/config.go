package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// General 通用配置
type General struct {
	MaxPerProvider    int      // 每个 provider 最多取多少条
	TimeoutSecs       int      // 单次 HTTP 请求超时
	CacheTTLMins      int      // 结果缓存有效期（分钟）
	LanguageFilter    []string // 语言过滤，空表示全部
	MinStars          int      // 最低总 Star 数，0 表示不过滤
	ASCIIOnly         bool     // 过滤掉名称/描述以非 ASCII 为主的项目
	ShowStarredStatus bool     // 是否叠加星标状态（需要 GitHub token）
}

// Auth 各平台的访问令牌，全部可选
type Auth struct {
	GitHubToken string
	GitLabToken string
	GiteaToken  string
}

// GitHubCfg GitHub 专属配置
type GitHubCfg struct {
	ExcludeTopics []string
}

// GiteaCfg Gitea 专属配置
type GiteaCfg struct {
	BaseURL string
}

// Config 程序配置，来自环境变量（可选 .env 文件）
type Config struct {
	General   General
	Auth      Auth
	GitHub    GitHubCfg
	Gitea     GiteaCfg
	Providers []string
}

// Load 读取配置：先尝试加载 .env（不存在则忽略），再读 TROTD_* 环境变量
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		General: General{
			MaxPerProvider:    envInt("TROTD_MAX_PER_PROVIDER", 10),
			TimeoutSecs:       envInt("TROTD_TIMEOUT_SECS", 10),
			CacheTTLMins:      envInt("TROTD_CACHE_TTL_MINS", 60),
			LanguageFilter:    envList("TROTD_LANG"),
			MinStars:          envInt("TROTD_MIN_STARS", 0),
			ASCIIOnly:         envBool("TROTD_ASCII_ONLY", true),
			ShowStarredStatus: envBool("TROTD_SHOW_STARRED", true),
		},
		Auth: Auth{
			GitHubToken: os.Getenv("TROTD_GITHUB_TOKEN"),
			GitLabToken: os.Getenv("TROTD_GITLAB_TOKEN"),
			GiteaToken:  os.Getenv("TROTD_GITEA_TOKEN"),
		},
		GitHub: GitHubCfg{
			ExcludeTopics: envList("TROTD_EXCLUDE_TOPICS"),
		},
		Gitea: GiteaCfg{
			BaseURL: envDefault("TROTD_GITEA_BASE_URL", "https://gitea.com"),
		},
		Providers: envList("TROTD_PROVIDERS"),
	}

	if len(cfg.Providers) == 0 {
		cfg.Providers = []string{"github", "gitlab"}
	}

	return cfg
}

// EnabledProviders 返回启用的 provider id 列表
func (c *Config) EnabledProviders() []string {
	return c.Providers
}

// TokenFor 返回指定 provider 的令牌，没有则为空串
func (c *Config) TokenFor(providerID string) string {
	switch providerID {
	case "github":
		return c.Auth.GitHubToken
	case "gitlab":
		return c.Auth.GitLabToken
	case "gitea":
		return c.Auth.GiteaToken
	}
	return ""
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
