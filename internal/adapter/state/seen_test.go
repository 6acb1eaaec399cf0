package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"trotd/internal/domain"

	"github.com/stretchr/testify/assert"
)

func testRepo(name string) *domain.Repo {
	return &domain.Repo{
		Provider:   "github",
		Name:       name,
		Language:   "Go",
		URL:        "https://github.com/" + name,
		StarsTotal: 100,
	}
}

func newTestTracker(t *testing.T) *SeenTracker {
	t.Helper()
	return NewSeenTrackerAt(filepath.Join(t.TempDir(), "seen.json"))
}

func TestSeenTracker_FreshState(t *testing.T) {
	tracker := newTestTracker(t)

	// 没有任何记录时：空集合、偏移为 0
	assert.Empty(t, tracker.GetSeen())
	assert.Equal(t, 0, tracker.GetFetchOffset())
}

func TestSeenTracker_MarkSeen(t *testing.T) {
	tracker := newTestTracker(t)

	err := tracker.MarkSeen([]*domain.Repo{
		testRepo("owner1/repo1"),
		testRepo("owner2/repo2"),
	})
	assert.NoError(t, err)

	seen := tracker.GetSeen()
	assert.Len(t, seen, 2)
	assert.Contains(t, seen, "owner1/repo1")
	assert.Contains(t, seen, "owner2/repo2")

	// MarkSeen 不会动偏移
	assert.Equal(t, 0, tracker.GetFetchOffset())
}

func TestSeenTracker_FilterUnseen(t *testing.T) {
	tracker := newTestTracker(t)

	err := tracker.MarkSeen([]*domain.Repo{testRepo("owner1/repo1")})
	assert.NoError(t, err)

	all := []*domain.Repo{
		testRepo("owner1/repo1"), // 已读
		testRepo("owner2/repo2"),
		testRepo("owner3/repo3"),
	}

	unseen := tracker.FilterUnseen(all)
	assert.Len(t, unseen, 2)
	// 保持输入顺序
	assert.Equal(t, "owner2/repo2", unseen[0].Name)
	assert.Equal(t, "owner3/repo3", unseen[1].Name)

	// 幂等：再过滤一次不再变化
	again := tracker.FilterUnseen(unseen)
	assert.Equal(t, unseen, again)
}

func TestSeenTracker_MarkThenFilterYieldsEmpty(t *testing.T) {
	tracker := newTestTracker(t)

	repos := []*domain.Repo{testRepo("a/b"), testRepo("c/d")}
	assert.NoError(t, tracker.MarkSeen(repos))

	assert.Empty(t, tracker.FilterUnseen(repos))
}

func TestSeenTracker_IncrementFetchOffset(t *testing.T) {
	tracker := newTestTracker(t)

	assert.NoError(t, tracker.MarkSeen([]*domain.Repo{testRepo("a/b")}))

	// 偏移可加性: n 再 m 等价于一次 n+m
	assert.NoError(t, tracker.IncrementFetchOffset(3))
	assert.NoError(t, tracker.IncrementFetchOffset(4))
	assert.Equal(t, 7, tracker.GetFetchOffset())

	// 已读集合不受影响
	assert.Contains(t, tracker.GetSeen(), "a/b")
}

func TestSeenTracker_PaginationScenario(t *testing.T) {
	tracker := newTestTracker(t)

	// 初始状态: 已读 {"x/a"}，偏移 5
	assert.NoError(t, tracker.MarkSeen([]*domain.Repo{testRepo("x/a")}))
	assert.NoError(t, tracker.IncrementFetchOffset(5))

	batch := []*domain.Repo{testRepo("x/a"), testRepo("x/b"), testRepo("x/c")}
	unseen := tracker.FilterUnseen(batch)
	assert.Len(t, unseen, 2)
	assert.Equal(t, "x/b", unseen[0].Name)
	assert.Equal(t, "x/c", unseen[1].Name)

	assert.NoError(t, tracker.MarkSeen(unseen))
	assert.NoError(t, tracker.IncrementFetchOffset(2))

	assert.Equal(t, 7, tracker.GetFetchOffset())
	seen := tracker.GetSeen()
	assert.Len(t, seen, 3)
	assert.Contains(t, seen, "x/a")
	assert.Contains(t, seen, "x/b")
	assert.Contains(t, seen, "x/c")
}

func TestSeenTracker_DailyReset(t *testing.T) {
	tracker := newTestTracker(t)

	// 昨天写入的记录
	yesterday := time.Now().UTC().AddDate(0, 0, -1)
	tracker.nowFunc = func() time.Time { return yesterday }
	assert.NoError(t, tracker.MarkSeen([]*domain.Repo{testRepo("old/repo")}))
	assert.NoError(t, tracker.IncrementFetchOffset(9))

	// 回到今天：昨天的记录视同不存在，已读和偏移一起清零
	tracker.nowFunc = time.Now
	assert.Empty(t, tracker.GetSeen())
	assert.Equal(t, 0, tracker.GetFetchOffset())

	// 新的一天第一次写入后，旧数据被整体覆盖
	assert.NoError(t, tracker.MarkSeen([]*domain.Repo{testRepo("new/repo")}))
	seen := tracker.GetSeen()
	assert.Len(t, seen, 1)
	assert.Contains(t, seen, "new/repo")
}

func TestSeenTracker_CorruptFileTreatedAsAbsent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seen.json")
	assert.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	tracker := NewSeenTrackerAt(path)

	// 损坏的文件按空记录处理，不报错
	assert.Empty(t, tracker.GetSeen())
	assert.Equal(t, 0, tracker.GetFetchOffset())

	// 下一次成功写入自愈
	assert.NoError(t, tracker.MarkSeen([]*domain.Repo{testRepo("a/b")}))
	assert.Contains(t, tracker.GetSeen(), "a/b")
}

func TestSeenTracker_Clear(t *testing.T) {
	tracker := newTestTracker(t)

	assert.NoError(t, tracker.MarkSeen([]*domain.Repo{testRepo("a/b")}))
	assert.NoError(t, tracker.Clear())
	assert.Empty(t, tracker.GetSeen())

	// 文件不存在时 Clear 也不报错
	assert.NoError(t, tracker.Clear())
}
