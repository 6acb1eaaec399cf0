package state

import (
	"encoding/json"
	"log"
	"path/filepath"
	"time"

	"trotd/internal/common"
	"trotd/internal/domain"
)

// seenEntry 是 seen.json 的落盘结构
type seenEntry struct {
	Date        string   `json:"date"` // YYYY-MM-DD (UTC)
	SeenRepos   []string `json:"seen_repos"`
	FetchOffset int      `json:"fetch_offset"`
}

// SeenTracker 实现了 port.SeenStore 接口
//
// 已读集合和分页偏移都只对"今天"（UTC 日历日）有效：
// 文件里的 date 不是今天时整条记录视同不存在，即每日自动清零。
// 每次调用都是 读取-修改-写回 一个完整事务，文件读写失败一律降级为
// "没有已读数据"，绝不让已读过滤拖垮主流程。
type SeenTracker struct {
	seenFile string
	nowFunc  func() time.Time // 便于测试注入当前时间
}

// NewSeenTracker 创建已读跟踪器，状态文件为 <用户缓存目录>/trotd/seen.json
func NewSeenTracker() (*SeenTracker, error) {
	dir, err := DefaultDir()
	if err != nil {
		return nil, err
	}
	return NewSeenTrackerAt(filepath.Join(dir, "seen.json")), nil
}

// NewSeenTrackerAt 指定状态文件路径创建跟踪器（测试用）
func NewSeenTrackerAt(path string) *SeenTracker {
	return &SeenTracker{
		seenFile: path,
		nowFunc:  time.Now,
	}
}

// today 当前 UTC 日期，YYYY-MM-DD
func (t *SeenTracker) today() string {
	return t.nowFunc().UTC().Format("2006-01-02")
}

// getEntry 读取当天的记录；过期/缺失/损坏 都返回 nil
func (t *SeenTracker) getEntry() *seenEntry {
	var entry seenEntry
	ok, err := readJSON(t.seenFile, &entry)
	if err != nil {
		// 文件损坏或读不了：视同不存在，下次成功写入会自愈
		log.Printf("[Seen] 读取 %s 失败，按空记录处理: %v", t.seenFile, err)
		return nil
	}
	if !ok || entry.Date != t.today() {
		return nil
	}
	return &entry
}

// GetSeen 返回当天已展示的项目名集合，没有记录时为空集合
func (t *SeenTracker) GetSeen() map[string]struct{} {
	entry := t.getEntry()
	if entry == nil {
		return map[string]struct{}{}
	}
	return toSet(entry.SeenRepos)
}

// GetFetchOffset 返回当天的分页偏移，没有记录时为 0
func (t *SeenTracker) GetFetchOffset() int {
	entry := t.getEntry()
	if entry == nil {
		return 0
	}
	return entry.FetchOffset
}

// MarkSeen 把项目名并入已读集合，保留现有偏移
func (t *SeenTracker) MarkSeen(repos []*domain.Repo) error {
	seen := t.GetSeen()
	for _, repo := range repos {
		seen[repo.Name] = struct{}{}
	}
	return t.save(seen, t.GetFetchOffset())
}

// IncrementFetchOffset 偏移加 n，保留已读集合
func (t *SeenTracker) IncrementFetchOffset(n int) error {
	return t.save(t.GetSeen(), t.GetFetchOffset()+n)
}

// FilterUnseen 过滤掉已读项目，保持输入顺序
func (t *SeenTracker) FilterUnseen(repos []*domain.Repo) []*domain.Repo {
	seen := t.GetSeen()
	filtered := make([]*domain.Repo, 0, len(repos))
	for _, repo := range repos {
		if _, ok := seen[repo.Name]; !ok {
			filtered = append(filtered, repo)
		}
	}
	return filtered
}

// Clear 删除已读记录文件
func (t *SeenTracker) Clear() error {
	return removeIfExists(t.seenFile)
}

// save 写回当天的完整记录
func (t *SeenTracker) save(seen map[string]struct{}, offset int) error {
	entry := seenEntry{
		Date:        t.today(),
		SeenRepos:   marshalSet(seen),
		FetchOffset: offset,
	}
	data, err := json.MarshalIndent(&entry, "", "  ")
	if err != nil {
		return err
	}
	if err := writeFileAtomic(t.seenFile, data); err != nil {
		return common.WrapError(common.ErrCodeCacheIO, "写入已读记录失败", err)
	}
	return nil
}
