package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"trotd/internal/adapter/filter"
	"trotd/internal/adapter/render"
	"trotd/internal/config"
	"trotd/internal/domain"
	"trotd/internal/port"
)

// DigestService 串起一次完整的"今日趋势"流程：
// 取偏移 → 并发抓取 → 已读过滤 → 后置过滤 → 星标覆盖 → 渲染 → 记录已读/推进偏移
//
// seen / starred / stars 都允许为 nil，对应能力整体降级关闭，
// 任何状态文件问题都只影响本轮的跟踪，不中断主流程。
type DigestService struct {
	cfg        *config.Config
	fetcher    *FetchService
	seen       port.SeenStore    // nil = 已读跟踪关闭（--show-all 或初始化失败）
	starred    port.StarredStore // nil = 星标缓存不可用
	stars      port.StarManager  // nil = 不做星标覆盖
	repoFilter *filter.RepoFilter
	out        io.Writer
	format     render.Format
	verbose    bool
}

// NewDigestService 创建流程服务
func NewDigestService(
	cfg *config.Config,
	fetcher *FetchService,
	seen port.SeenStore,
	starred port.StarredStore,
	stars port.StarManager,
	out io.Writer,
	format render.Format,
	verbose bool,
) *DigestService {
	// 空结果警告只在 MOTD 输出时展示；诊断走 stderr，JSON 流保持干净
	fetcher.warnEmpty = format == render.FormatMOTD
	return &DigestService{
		cfg:        cfg,
		fetcher:    fetcher,
		seen:       seen,
		starred:    starred,
		stars:      stars,
		repoFilter: filter.NewRepoFilter(),
		out:        out,
		format:     format,
		verbose:    verbose,
	}
}

// Run 执行一轮完整流程
func (d *DigestService) Run(ctx context.Context, providers []ProviderInstance, langFilter *domain.LanguageFilter) error {
	// 1. 分页偏移：已读跟踪关闭时永远从榜首开始
	offset := 0
	if d.seen != nil {
		offset = d.seen.GetFetchOffset()
	}
	if d.verbose && offset > 0 {
		fmt.Fprintf(os.Stderr, "📖 从榜单第 %d 位开始抓取\n", offset)
	}

	// 已读跟踪关闭时缓存结果不影响新鲜度，可以直接用
	preferCache := d.seen == nil

	// 2. 并发抓取
	if d.verbose {
		fmt.Fprintln(os.Stderr, "🚀 开始抓取趋势项目...")
	}
	allRepos, errs, err := d.fetcher.FetchAll(ctx, providers, offset, d.cfg.General.MaxPerProvider, langFilter, preferCache)
	for _, e := range errs {
		fmt.Fprintf(os.Stderr, "✗ 错误: %v\n", e)
	}
	if err != nil {
		return err
	}

	// 3. 已读过滤
	noNewRepos := false
	if d.seen != nil {
		before := len(allRepos)
		filtered := d.seen.FilterUnseen(allRepos)
		if removed := before - len(filtered); removed > 0 && d.verbose {
			fmt.Fprintf(os.Stderr, "👀 已读过滤: 跳过今天展示过的 %d 个项目\n", removed)
		}
		if len(filtered) == 0 && before > 0 {
			noNewRepos = true
		}
		allRepos = filtered
	}

	// 4. 后置过滤
	if d.cfg.General.ASCIIOnly {
		before := len(allRepos)
		allRepos = d.repoFilter.FilterMostlyASCII(allRepos)
		if d.verbose {
			fmt.Fprintf(os.Stderr, "🔤 ASCII 过滤: 去掉 %d 个非 ASCII 项目\n", before-len(allRepos))
		}
	}
	if d.cfg.General.MinStars > 0 {
		before := len(allRepos)
		allRepos = d.repoFilter.FilterByMinStars(allRepos, d.cfg.General.MinStars)
		if d.verbose {
			fmt.Fprintf(os.Stderr, "⭐ Star 过滤: 去掉 %d 个低于 %d star 的项目\n", before-len(allRepos), d.cfg.General.MinStars)
		}
	}
	allRepos = d.repoFilter.FilterByLanguage(allRepos, langFilter)

	if d.verbose {
		fmt.Fprintf(os.Stderr, "📊 最终项目数: %d\n", len(allRepos))
	}
	if noNewRepos {
		fmt.Fprintln(os.Stderr, "👀 今天的趋势项目都已经看过了，用 --show-all 可以重新展示")
	}

	// 5. 星标覆盖
	d.applyStarredStatus(ctx, allRepos)

	// 6. 渲染
	if err := render.Render(d.out, allRepos, d.format); err != nil {
		return err
	}

	// 7. 记录已读并推进偏移，失败只警告
	if d.seen != nil && len(allRepos) > 0 {
		if err := d.seen.MarkSeen(allRepos); err != nil {
			log.Printf("⚠ 记录已读失败: %v", err)
		}
		if err := d.seen.IncrementFetchOffset(len(allRepos)); err != nil {
			log.Printf("⚠ 更新分页偏移失败: %v", err)
		} else if d.verbose {
			fmt.Fprintf(os.Stderr, "📈 下次运行从第 %d 位开始\n", offset+len(allRepos))
		}
	}

	return nil
}

// applyStarredStatus 给 GitHub 项目叠加星标状态
// 优先用缓存；缓存过期则在线拉取并写回。任何失败都只是放弃覆盖
func (d *DigestService) applyStarredStatus(ctx context.Context, repos []*domain.Repo) {
	if !d.cfg.General.ShowStarredStatus || d.cfg.Auth.GitHubToken == "" {
		return
	}
	if d.starred == nil || d.stars == nil {
		return
	}

	starredSet, ok := d.starred.GetStarred()
	if ok {
		if d.verbose {
			fmt.Fprintf(os.Stderr, "⭐ 使用缓存的星标状态 (%d 个项目)\n", len(starredSet))
		}
	} else {
		if d.verbose {
			fmt.Fprintln(os.Stderr, "⭐ 正在拉取星标列表...")
		}
		names, err := d.stars.ListUserStars(ctx, d.cfg.Auth.GitHubToken)
		if err != nil {
			log.Printf("⚠ 拉取星标列表失败: %v", err)
			return
		}
		starredSet = make(map[string]struct{}, len(names))
		for _, name := range names {
			starredSet[name] = struct{}{}
		}
		if d.verbose {
			fmt.Fprintf(os.Stderr, "⭐ 拉到 %d 个星标项目\n", len(starredSet))
		}
		if err := d.starred.SaveStarred(starredSet); err != nil {
			log.Printf("⚠ 写入星标缓存失败: %v", err)
		}
	}

	for _, repo := range repos {
		if repo.Provider == "github" {
			_, repo.IsStarred = starredSet[repo.Name]
		}
	}
}
