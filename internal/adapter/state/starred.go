package state

import (
	"encoding/json"
	"path/filepath"
	"time"

	"trotd/internal/common"
)

// DefaultStarredTTL 星标缓存有效期
const DefaultStarredTTL = 3600 * time.Second

// starredEntry 是 starred.json 的落盘结构
type starredEntry struct {
	Timestamp    int64    `json:"timestamp"` // unix 秒
	StarredRepos []string `json:"starred_repos"`
}

// StarredCache 实现了 port.StarredStore 接口
//
// 简单的 TTL 缓存：整个集合一起生效、一起过期，没有局部失效。
// 过期数据留在磁盘上不清理，只是读取时忽略，下次成功抓取会整体覆盖。
type StarredCache struct {
	cacheFile string
	ttl       time.Duration
	nowFunc   func() time.Time
}

// NewStarredCache 创建星标缓存，1 小时 TTL，
// 缓存文件为 <用户缓存目录>/trotd/starred.json
func NewStarredCache() (*StarredCache, error) {
	dir, err := DefaultDir()
	if err != nil {
		return nil, err
	}
	return NewStarredCacheAt(filepath.Join(dir, "starred.json"), DefaultStarredTTL), nil
}

// NewStarredCacheAt 指定路径和 TTL 创建缓存（测试用）
func NewStarredCacheAt(path string, ttl time.Duration) *StarredCache {
	return &StarredCache{
		cacheFile: path,
		ttl:       ttl,
		nowFunc:   time.Now,
	}
}

// GetStarred 读取星标集合；缺失/损坏/过期 返回 (nil, false)
func (c *StarredCache) GetStarred() (map[string]struct{}, bool) {
	var entry starredEntry
	ok, err := readJSON(c.cacheFile, &entry)
	if err != nil || !ok {
		return nil, false
	}

	age := c.nowFunc().Unix() - entry.Timestamp
	if age < 0 || time.Duration(age)*time.Second > c.ttl {
		return nil, false
	}

	return toSet(entry.StarredRepos), true
}

// SaveStarred 整体覆盖写入并刷新时间戳
func (c *StarredCache) SaveStarred(starred map[string]struct{}) error {
	entry := starredEntry{
		Timestamp:    c.nowFunc().Unix(),
		StarredRepos: marshalSet(starred),
	}
	data, err := json.MarshalIndent(&entry, "", "  ")
	if err != nil {
		return err
	}
	if err := writeFileAtomic(c.cacheFile, data); err != nil {
		return common.WrapError(common.ErrCodeCacheIO, "写入星标缓存失败", err)
	}
	return nil
}

// Clear 删除星标缓存文件（star 子命令成功后调用，强制下次重新抓取）
func (c *StarredCache) Clear() error {
	return removeIfExists(c.cacheFile)
}
