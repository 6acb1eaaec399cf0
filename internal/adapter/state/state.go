// Package state 管理落盘的 seen/starred 状态文件。
//
// 两个文件都放在用户缓存目录下的 trotd/ 里，JSON 格式，方便人工查看。
// 并发运行的多个进程之间不做协调，后写的覆盖先写的（接受的范围限制）。
package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"trotd/internal/common"
)

// DefaultDir 返回 trotd 的状态目录（<用户缓存目录>/trotd）
func DefaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "trotd"), nil
}

// writeFileAtomic 先写同目录临时文件再 rename，读方不会看到半截文件
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
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

// marshalSet 把集合序列化成排好序的 JSON 数组，保证文件内容稳定
func marshalSet(set map[string]struct{}) []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}

// removeIfExists 删除文件，不存在不算错
func removeIfExists(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// readJSON 读取并解析 JSON 文件
// 不存在返回 (false, nil)；损坏返回 (false, err) 由调用方决定是否降级
func readJSON(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, common.WrapError(common.ErrCodeStateCorrupt, path+" 解析失败", err)
	}
	return true, nil
}
