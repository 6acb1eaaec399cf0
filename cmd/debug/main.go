package main

import (
	"context"
	"fmt"
	"log"

	"trotd/internal/adapter/gitea"
	"trotd/internal/adapter/github"
	"trotd/internal/adapter/gitlab"
	"trotd/internal/config"
	"trotd/internal/domain"
	"trotd/internal/port"
)

// 调试入口：逐个 provider 直接抓取并打印，不走缓存和已读过滤
func main() {
	cfg := config.Load()
	ctx := context.Background()
	langFilter := domain.NewLanguageFilter(cfg.General.LanguageFilter)

	fmt.Println("🔍 调试模式：逐个 provider 直接抓取")

	for _, id := range []string{"github", "gitlab", "gitea"} {
		pcfg := &domain.ProviderCfg{
			TimeoutSecs: cfg.General.TimeoutSecs,
			Token:       cfg.TokenFor(id),
		}

		var provider port.Provider
		var err error
		switch id {
		case "github":
			pcfg.ExcludeTopics = cfg.GitHub.ExcludeTopics
			provider, err = github.New(pcfg.Token, pcfg.TimeoutSecs)
		case "gitlab":
			provider, err = gitlab.New(pcfg.TimeoutSecs)
		case "gitea":
			pcfg.BaseURL = cfg.Gitea.BaseURL
			provider, err = gitea.New(pcfg.TimeoutSecs)
		}
		if err != nil {
			log.Printf("✗ 初始化 %s provider 失败: %v", id, err)
			continue
		}

		fmt.Printf("\n📥 正在抓取 %s...\n", id)
		repos, err := provider.TopToday(ctx, pcfg, 0, cfg.General.MaxPerProvider, langFilter)
		if err != nil {
			log.Printf("❌ %s 抓取失败: %v", id, err)
			continue
		}

		fmt.Printf("✅ %s 返回 %d 个项目\n", id, len(repos))
		for i, repo := range repos {
			fmt.Printf("  #%d %s (★ %d, %s)\n", i+1, repo.Name, repo.StarsTotal, repo.Language)
			fmt.Printf("      %s\n", repo.URL)
		}
	}
}
