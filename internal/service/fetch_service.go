package service

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"trotd/internal/common"
	"trotd/internal/domain"
	"trotd/internal/port"
)

// 慢警告和单 provider 硬超时，从同一起点计时，慢警告先到
const (
	DefaultSlowWarn     = 10 * time.Second
	DefaultFetchTimeout = 30 * time.Second
)

// ProviderInstance 一个已初始化好的 provider 及其配置
type ProviderInstance struct {
	ID       string
	Provider port.Provider
	Cfg      *domain.ProviderCfg
}

// FetchService 并发编排所有启用的 provider
//
// 两种模式，每轮选定一次：
//   - prefer-cache: 先查缓存，命中就完全跳过在线抓取（--show-all 时用，
//     因为没有已读过滤，缓存结果不影响新鲜度）
//   - race（默认）: 总是发起在线抓取，只有抓取变慢时才回退到缓存
//
// 单个 provider 的执行：在线抓取跑在自己的 goroutine 里，用的是整轮的
// 父 context，所以槽位被放弃后它还能在后台跑完并刷新缓存（尽力而为的
// 后台完成，不是真取消）。慢警告在 10 秒触发一次，尝试读缓存顶上；
// 30 秒硬超时后该 provider 以超时错误收场，不影响其他 provider。
// 诊断信息一律走 stderr，stdout 留给渲染结果（JSON 模式下不能被污染）
type FetchService struct {
	cache        port.ResultCache // 可以为 nil（--no-cache）
	slowWarn     time.Duration
	fetchTimeout time.Duration
	verbose      bool
	warnEmpty    bool // 空结果警告只在 MOTD 输出时有意义
}

// NewFetchService 创建编排器
func NewFetchService(cache port.ResultCache, verbose bool) *FetchService {
	return &FetchService{
		cache:        cache,
		slowWarn:     DefaultSlowWarn,
		fetchTimeout: DefaultFetchTimeout,
		verbose:      verbose,
		warnEmpty:    true,
	}
}

// FetchAll 并发抓取所有 provider，按完成顺序合并结果
//
// 返回值: (合并结果, 各 provider 的错误列表, 整体错误)
// 只有所有 provider 都没有产出且至少有一个报错时，整体错误才非 nil
func (s *FetchService) FetchAll(
	ctx context.Context,
	providers []ProviderInstance,
	offset, limit int,
	filter *domain.LanguageFilter,
	preferCache bool,
) ([]*domain.Repo, []error, error) {
	if len(providers) == 0 {
		return nil, nil, common.NewError(common.ErrCodeAllProvidersFailed, "没有可用的 provider")
	}

	results := make(chan domain.ProviderRunResult, len(providers))

	var wg sync.WaitGroup
	for _, inst := range providers {
		wg.Add(1)
		go func(inst ProviderInstance) {
			defer wg.Done()
			results <- s.fetchOne(ctx, inst, offset, limit, filter, preferCache)
		}(inst)
	}

	// 所有 goroutine 结束后关闭 channel
	go func() {
		wg.Wait()
		close(results)
	}()

	// 按完成顺序收集，不保证 provider 间的先后
	var allRepos []*domain.Repo
	var errs []error
	succeeded := 0

	for res := range results {
		if res.Err != nil {
			if s.verbose {
				fmt.Fprintf(os.Stderr, "  ✗ %s 抓取失败: %v\n", res.ProviderID, res.Err)
			}
			errs = append(errs, res.Err)
			continue
		}

		succeeded++
		if s.verbose {
			source := "在线"
			if res.FromCache {
				source = "缓存"
			}
			fmt.Fprintf(os.Stderr, "  📦 %s: %d 个项目 (%s)\n", res.ProviderID, len(res.Repos), source)
		}
		if len(res.Repos) == 0 {
			// 空结果不算错误，但在 MOTD 输出时要让用户知道
			if s.warnEmpty {
				fmt.Fprintf(os.Stderr, "⚠ %s 没有返回任何项目\n", res.ProviderID)
			}
			continue
		}
		allRepos = append(allRepos, res.Repos...)
	}

	if succeeded == 0 {
		return nil, errs, common.WrapError(common.ErrCodeAllProvidersFailed, "所有 provider 都失败了", joinErrs(errs))
	}
	return allRepos, errs, nil
}

// fetchOne 单个 provider 的完整执行序列
func (s *FetchService) fetchOne(
	ctx context.Context,
	inst ProviderInstance,
	offset, limit int,
	filter *domain.LanguageFilter,
	preferCache bool,
) domain.ProviderRunResult {
	// prefer-cache 模式：缓存命中就不发起在线抓取
	if preferCache && s.cache != nil {
		if repos, ok := s.cache.Get(inst.ID); ok {
			if s.verbose {
				fmt.Fprintf(os.Stderr, "  💾 %s (缓存命中)\n", inst.ID)
			}
			return domain.ProviderRunResult{ProviderID: inst.ID, Repos: repos, FromCache: true}
		}
	}

	// 在线抓取跑在父 context 上：槽位被放弃后仍可后台完成并写缓存
	liveCh := make(chan domain.ProviderRunResult, 1)
	go func() {
		repos, err := inst.Provider.TopToday(ctx, inst.Cfg, offset, limit, filter)
		if err == nil && s.cache != nil {
			// 缓存写失败只吞掉，绝不影响结果
			_ = s.cache.Set(inst.ID, repos)
		}
		liveCh <- domain.ProviderRunResult{ProviderID: inst.ID, Repos: repos, Err: err}
	}()

	slow := time.NewTimer(s.slowWarn)
	defer slow.Stop()
	hard := time.NewTimer(s.fetchTimeout)
	defer hard.Stop()

	for {
		select {
		case res := <-liveCh:
			if res.Err != nil {
				res.Err = common.WrapError(common.ErrCodeProviderFetch,
					fmt.Sprintf("%s 抓取失败", inst.ID), res.Err)
			}
			return res

		case <-slow.C:
			// 一次性的慢警告；缓存里有数据就先用，在线抓取继续在后台刷新缓存
			fmt.Fprintf(os.Stderr, "⏳ %s 还在抓取...\n", inst.ID)
			if s.cache != nil {
				if repos, ok := s.cache.Get(inst.ID); ok {
					fmt.Fprintf(os.Stderr, "⚠ 先用 %s 的缓存结果，等后台抓取完成刷新\n", inst.ID)
					return domain.ProviderRunResult{ProviderID: inst.ID, Repos: repos, FromCache: true}
				}
			}

		case <-hard.C:
			return domain.ProviderRunResult{
				ProviderID: inst.ID,
				Err: common.NewError(common.ErrCodeProviderTimeout,
					fmt.Sprintf("%s 抓取超过 %s 硬超时", inst.ID, s.fetchTimeout)),
			}

		case <-ctx.Done():
			return domain.ProviderRunResult{
				ProviderID: inst.ID,
				Err: common.WrapError(common.ErrCodeProviderFetch,
					fmt.Sprintf("%s 抓取被取消", inst.ID), ctx.Err()),
			}
		}
	}
}

// joinErrs 把 provider 错误拼成一个可读的错误
func joinErrs(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	msg := ""
	for i, err := range errs {
		if i > 0 {
			msg += "; "
		}
		msg += err.Error()
	}
	return fmt.Errorf("%s", msg)
}
