package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, 10, cfg.General.MaxPerProvider)
	assert.Equal(t, 60, cfg.General.CacheTTLMins)
	assert.True(t, cfg.General.ASCIIOnly)
	assert.True(t, cfg.General.ShowStarredStatus)
	assert.Equal(t, []string{"github", "gitlab"}, cfg.Providers)
	assert.Equal(t, "https://gitea.com", cfg.Gitea.BaseURL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TROTD_MAX_PER_PROVIDER", "5")
	t.Setenv("TROTD_CACHE_TTL_MINS", "15")
	t.Setenv("TROTD_ASCII_ONLY", "false")
	t.Setenv("TROTD_PROVIDERS", "github, gitea")
	t.Setenv("TROTD_LANG", "go,rust")
	t.Setenv("TROTD_GITHUB_TOKEN", "gh-token")
	t.Setenv("TROTD_GITEA_BASE_URL", "https://git.example.com")

	cfg := Load()

	assert.Equal(t, 5, cfg.General.MaxPerProvider)
	assert.Equal(t, 15, cfg.General.CacheTTLMins)
	assert.False(t, cfg.General.ASCIIOnly)
	assert.Equal(t, []string{"github", "gitea"}, cfg.Providers)
	assert.Equal(t, []string{"go", "rust"}, cfg.General.LanguageFilter)
	assert.Equal(t, "gh-token", cfg.Auth.GitHubToken)
	assert.Equal(t, "https://git.example.com", cfg.Gitea.BaseURL)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("TROTD_MAX_PER_PROVIDER", "not-a-number")
	t.Setenv("TROTD_ASCII_ONLY", "maybe")

	cfg := Load()

	assert.Equal(t, 10, cfg.General.MaxPerProvider)
	assert.True(t, cfg.General.ASCIIOnly)
}

func TestConfig_TokenFor(t *testing.T) {
	cfg := &Config{
		Auth: Auth{
			GitHubToken: "gh",
			GitLabToken: "gl",
			GiteaToken:  "ge",
		},
	}

	assert.Equal(t, "gh", cfg.TokenFor("github"))
	assert.Equal(t, "gl", cfg.TokenFor("gitlab"))
	assert.Equal(t, "ge", cfg.TokenFor("gitea"))
	assert.Equal(t, "", cfg.TokenFor("unknown"))
}
