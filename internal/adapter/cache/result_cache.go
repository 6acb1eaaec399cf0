// Package cache 提供按 provider 存放的原始抓取结果缓存。
//
// 每个 provider 一个 JSON 文件（<状态目录>/cache/<provider>.json），
// 带时间戳，TTL 以分钟配置。读到过期/损坏的文件一律当未命中，
// 写入用 临时文件+rename 保证原子性。
package cache

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"trotd/internal/adapter/state"
	"trotd/internal/domain"
)

// provider id 只允许出现在文件名里安全的字符
var safeKeyPattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

// cacheEntry 单个 provider 的落盘结构
type cacheEntry struct {
	Timestamp int64          `json:"timestamp"` // unix 秒
	Repos     []*domain.Repo `json:"repos"`
}

// ResultCache 实现了 port.ResultCache 接口
type ResultCache struct {
	dir     string
	ttl     time.Duration
	nowFunc func() time.Time
}

// New 创建结果缓存，目录为 <用户缓存目录>/trotd/cache
func New(ttlMins int) (*ResultCache, error) {
	base, err := state.DefaultDir()
	if err != nil {
		return nil, err
	}
	return NewAt(filepath.Join(base, "cache"), time.Duration(ttlMins)*time.Minute), nil
}

// NewAt 指定目录和 TTL 创建缓存（测试用）
func NewAt(dir string, ttl time.Duration) *ResultCache {
	return &ResultCache{
		dir:     dir,
		ttl:     ttl,
		nowFunc: time.Now,
	}
}

// Get 读取某个 provider 的缓存结果；缺失/损坏/过期 都算未命中
func (c *ResultCache) Get(providerID string) ([]*domain.Repo, bool) {
	path, ok := c.pathFor(providerID)
	if !ok {
		return nil, false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		// 损坏的缓存文件直接忽略，下次 Set 会覆盖
		log.Printf("[Cache] 解析 %s 失败，忽略: %v", path, err)
		return nil, false
	}

	age := c.nowFunc().Unix() - entry.Timestamp
	if age < 0 || time.Duration(age)*time.Second > c.ttl {
		return nil, false
	}

	return entry.Repos, true
}

// Set 覆盖写入某个 provider 的结果并刷新时间戳
func (c *ResultCache) Set(providerID string, repos []*domain.Repo) error {
	path, ok := c.pathFor(providerID)
	if !ok {
		return nil
	}

	entry := cacheEntry{
		Timestamp: c.nowFunc().Unix(),
		Repos:     repos,
	}
	data, err := json.MarshalIndent(&entry, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(c.dir, providerID+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}

// pathFor 拼缓存文件路径，非法的 provider id 直接拒绝
func (c *ResultCache) pathFor(providerID string) (string, bool) {
	if !safeKeyPattern.MatchString(providerID) {
		return "", false
	}
	return filepath.Join(c.dir, providerID+".json"), true
}
