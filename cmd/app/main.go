package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"

	"trotd/internal/adapter/cache"
	"trotd/internal/adapter/gitea"
	"trotd/internal/adapter/github"
	"trotd/internal/adapter/gitlab"
	"trotd/internal/adapter/render"
	"trotd/internal/adapter/state"
	"trotd/internal/config"
	"trotd/internal/domain"
	"trotd/internal/port"
	"trotd/internal/service"
)

func main() {
	// 1. 定义命令行参数
	mode := flag.String("mode", "digest", "运行模式: digest (趋势日报) / star (加星标) / clone (克隆项目)")
	repoArg := flag.String("repo", "", "目标项目 (owner/repo 或 URL，star/clone 模式用)")
	maxPerProvider := flag.Int("n", 0, "每个 provider 最多展示多少条 (0 表示用配置值)")
	providersArg := flag.String("provider", "", "启用的 provider，逗号分隔 (gh,gl,ge 或全名)")
	langArg := flag.String("lang", "", "语言过滤，逗号分隔 (例如 go,rust)")
	noCache := flag.Bool("no-cache", false, "禁用结果缓存")
	jsonOut := flag.Bool("json", false, "输出 JSON 而不是 MOTD")
	verbose := flag.Bool("verbose", false, "输出调试信息")
	minStars := flag.Int("min-stars", 0, "最低总 Star 数")
	excludeTopics := flag.String("exclude-topics", "", "排除这些 topic 的 GitHub 项目，逗号分隔")
	showAll := flag.Bool("show-all", false, "展示全部项目，包括今天已经看过的")
	flag.Parse()

	// 2. 加载配置并应用命令行覆盖
	cfg := config.Load()
	if *verbose {
		fmt.Fprintln(os.Stderr, "📋 配置加载完成")
	}

	if *maxPerProvider > 0 {
		cfg.General.MaxPerProvider = *maxPerProvider
	}
	if *langArg != "" {
		cfg.General.LanguageFilter = splitList(*langArg)
	}
	if *minStars > 0 {
		cfg.General.MinStars = *minStars
	}
	if *excludeTopics != "" {
		cfg.GitHub.ExcludeTopics = splitList(*excludeTopics)
	}

	// 3. 根据模式分流
	switch *mode {
	case "star":
		runStar(cfg, *repoArg)
	case "clone":
		runClone(*repoArg)
	case "digest":
		runDigest(cfg, *providersArg, *noCache, *jsonOut, *verbose, *showAll)
	default:
		fmt.Fprintln(os.Stderr, "❌ 未知模式，请使用 -mode=digest / star / clone")
		os.Exit(1)
	}
}

// runDigest 执行一轮趋势日报
func runDigest(cfg *config.Config, providersArg string, noCache, jsonOut, verbose, showAll bool) {
	ctx := context.Background()

	// 结果缓存
	var resultCache port.ResultCache
	if noCache {
		if verbose {
			fmt.Fprintln(os.Stderr, "🚫 缓存已禁用")
		}
	} else {
		c, err := cache.New(cfg.General.CacheTTLMins)
		if err != nil {
			log.Printf("⚠ 初始化缓存失败，本轮不用缓存: %v", err)
		} else {
			resultCache = c
			if verbose {
				fmt.Fprintf(os.Stderr, "💾 缓存已就绪 (TTL: %d 分钟)\n", cfg.General.CacheTTLMins)
			}
		}
	}

	// 已读跟踪，--show-all 或初始化失败时整体关闭
	var seen port.SeenStore
	if !showAll {
		tracker, err := state.NewSeenTracker()
		if err != nil {
			log.Printf("⚠ 初始化已读跟踪失败，本轮不做已读过滤: %v", err)
		} else {
			seen = tracker
		}
	}

	// 星标缓存
	var starred port.StarredStore
	if sc, err := state.NewStarredCache(); err == nil {
		starred = sc
	} else if verbose {
		log.Printf("⚠ 初始化星标缓存失败: %v", err)
	}

	// 星标操作走 GitHub（有 token 才有意义）
	var stars port.StarManager
	if gh, err := github.New(cfg.Auth.GitHubToken, cfg.General.TimeoutSecs); err == nil {
		stars = gh
	}

	// 组装启用的 provider
	instances := buildProviders(cfg, providersArg, verbose)
	if len(instances) == 0 {
		log.Fatal("❌ 没有启用或可用的 provider")
	}

	langFilter := domain.NewLanguageFilter(cfg.General.LanguageFilter)
	if verbose {
		if langFilter.IsEmpty() {
			fmt.Fprintln(os.Stderr, "🌐 语言过滤: 全部语言")
		} else {
			fmt.Fprintf(os.Stderr, "🌐 语言过滤: %v\n", cfg.General.LanguageFilter)
		}
	}

	format := render.FormatMOTD
	if jsonOut {
		format = render.FormatJSON
	}

	fetcher := service.NewFetchService(resultCache, verbose)
	digest := service.NewDigestService(cfg, fetcher, seen, starred, stars, os.Stdout, format, verbose)

	if err := digest.Run(ctx, instances, langFilter); err != nil {
		log.Fatalf("❌ %v", err)
	}
}

// buildProviders 解析 provider 列表并初始化实例
// 初始化失败的 provider 打印错误后排除，不拖累其他 provider
func buildProviders(cfg *config.Config, providersArg string, verbose bool) []service.ProviderInstance {
	enabled := cfg.EnabledProviders()
	if providersArg != "" {
		enabled = nil
		for _, p := range splitList(providersArg) {
			// 短名展开: gh -> github, gl -> gitlab, ge -> gitea
			switch p {
			case "gh":
				p = "github"
			case "gl":
				p = "gitlab"
			case "ge":
				p = "gitea"
			}
			enabled = append(enabled, p)
		}
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "🔌 启用的 provider: %v\n", enabled)
	}

	var instances []service.ProviderInstance
	for _, id := range enabled {
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
		default:
			fmt.Fprintf(os.Stderr, "⚠ 未知的 provider: %s\n", id)
			continue
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "✗ 初始化 %s provider 失败: %v\n", id, err)
			continue
		}

		if verbose {
			fmt.Fprintf(os.Stderr, "  ✓ %s provider 已就绪 (超时: %ds)\n", id, pcfg.TimeoutSecs)
		}
		instances = append(instances, service.ProviderInstance{ID: id, Provider: provider, Cfg: pcfg})
	}
	return instances
}

// runStar 给 GitHub 项目加星标，成功后让星标缓存失效
func runStar(cfg *config.Config, repo string) {
	if cfg.Auth.GitHubToken == "" {
		log.Fatal("❌ 未配置 GitHub token，请设置 TROTD_GITHUB_TOKEN")
	}

	parts := strings.Split(repo, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		log.Fatal("❌ 项目格式不对，应为 owner/repo")
	}
	owner, name := parts[0], parts[1]

	gh, err := github.New(cfg.Auth.GitHubToken, cfg.General.TimeoutSecs)
	if err != nil {
		log.Fatalf("❌ 初始化 GitHub provider 失败: %v", err)
	}

	fmt.Printf("⭐ 正在给 %s/%s 加星标...\n", owner, name)
	if err := gh.StarRepo(context.Background(), owner, name, cfg.Auth.GitHubToken); err != nil {
		log.Fatalf("❌ %v", err)
	}
	fmt.Printf("✓ 已成功给 %s/%s 加星标\n", owner, name)

	// 让星标缓存失效，下次运行重新拉取
	if sc, err := state.NewStarredCache(); err == nil {
		_ = sc.Clear()
	}
}

// runClone 克隆项目，支持 owner/repo（默认 GitHub）和完整 URL
func runClone(repo string) {
	if repo == "" {
		log.Fatal("❌ 请用 -repo 指定要克隆的项目")
	}

	cloneURL := repo
	if !strings.HasPrefix(repo, "http://") && !strings.HasPrefix(repo, "https://") {
		cloneURL = fmt.Sprintf("https://github.com/%s.git", repo)
	}

	fmt.Printf("📦 正在克隆 %s...\n", cloneURL)
	out, err := exec.Command("git", "clone", cloneURL).CombinedOutput()
	if err != nil {
		log.Fatalf("❌ git clone 失败: %v\n%s", err, out)
	}
	fmt.Printf("✓ 已成功克隆 %s\n", repo)
}

// splitList 按逗号切分并去掉空白项
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
