package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestStarredCache(t *testing.T, ttl time.Duration) *StarredCache {
	t.Helper()
	return NewStarredCacheAt(filepath.Join(t.TempDir(), "starred.json"), ttl)
}

func TestStarredCache_Roundtrip(t *testing.T) {
	cache := newTestStarredCache(t, time.Hour)

	// 初始为空
	_, ok := cache.GetStarred()
	assert.False(t, ok)

	starred := map[string]struct{}{
		"owner1/repo1": {},
		"owner2/repo2": {},
	}
	assert.NoError(t, cache.SaveStarred(starred))

	got, ok := cache.GetStarred()
	assert.True(t, ok)
	assert.Len(t, got, 2)
	assert.Contains(t, got, "owner1/repo1")
	assert.Contains(t, got, "owner2/repo2")
}

func TestStarredCache_Expiry(t *testing.T) {
	cache := newTestStarredCache(t, time.Hour)

	assert.NoError(t, cache.SaveStarred(map[string]struct{}{"a/b": {}}))

	// TTL 内有效
	_, ok := cache.GetStarred()
	assert.True(t, ok)

	// 时间拨过 TTL 之后视同不存在
	cache.nowFunc = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, ok = cache.GetStarred()
	assert.False(t, ok)

	// 过期数据留在磁盘上，重新写入整体覆盖后又有效
	cache.nowFunc = time.Now
	assert.NoError(t, cache.SaveStarred(map[string]struct{}{"c/d": {}}))
	got, ok := cache.GetStarred()
	assert.True(t, ok)
	assert.Contains(t, got, "c/d")
	assert.NotContains(t, got, "a/b")
}

func TestStarredCache_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "starred.json")
	assert.NoError(t, os.WriteFile(path, []byte("???"), 0o644))

	cache := NewStarredCacheAt(path, time.Hour)

	_, ok := cache.GetStarred()
	assert.False(t, ok)
}

func TestStarredCache_Clear(t *testing.T) {
	cache := newTestStarredCache(t, time.Hour)

	assert.NoError(t, cache.SaveStarred(map[string]struct{}{"a/b": {}}))
	assert.NoError(t, cache.Clear())

	_, ok := cache.GetStarred()
	assert.False(t, ok)
}
