package store

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/winspan/listsync/internal/lists"
	"github.com/winspan/listsync/pkg/utils"
)

// FileStore 旧版纯文本存储
//
// 主文件没有逐行来源标记，因此用附属快照文件记录上次同步的远程集合。
type FileStore struct {
	dir string
}

// NewFileStore 创建文件存储
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Mode 存储模式
func (fs *FileStore) Mode() Mode {
	return ModeFile
}

func (fs *FileStore) primary(l lists.List) string {
	return filepath.Join(fs.dir, l.File)
}

func (fs *FileStore) sidecar(l lists.List) string {
	return filepath.Join(fs.dir, l.Sidecar)
}

// Load 读取主文件与快照文件，缺失的文件视为空集合
func (fs *FileStore) Load(ctx context.Context, l lists.List) (*State, error) {
	present, err := readEntries(fs.primary(l))
	if err != nil {
		return nil, err
	}
	owned, err := readEntries(fs.sidecar(l))
	if err != nil {
		return nil, err
	}
	return &State{Present: present, Owned: owned}, nil
}

// Apply 重写主文件为 (当前 - 删除) ∪ 新增，快照文件为 remote
func (fs *FileStore) Apply(ctx context.Context, l lists.List, remote lists.Set, change Change) error {
	current, err := readEntries(fs.primary(l))
	if err != nil {
		return err
	}

	// 无增删时主文件保持原样
	if !change.Empty() {
		next := current.Difference(change.Removed).Union(change.Added)
		if _, err := writeEntries(fs.primary(l), next.Sorted()); err != nil {
			return err
		}
	}
	if _, err := writeEntries(fs.sidecar(l), remote.Sorted()); err != nil {
		return err
	}
	return nil
}

// Entries 返回主文件中的全部条目
func (fs *FileStore) Entries(ctx context.Context, l lists.List) ([]string, error) {
	set, err := readEntries(fs.primary(l))
	if err != nil {
		return nil, err
	}
	return set.Sorted(), nil
}

// Purge 从主文件移除快照中的条目并删除快照文件
func (fs *FileStore) Purge(ctx context.Context, l lists.List) (lists.Set, error) {
	st, err := fs.Load(ctx, l)
	if err != nil {
		return nil, err
	}

	removed := st.Present.Intersect(st.Owned)
	if utils.FileExists(fs.primary(l)) {
		if _, err := writeEntries(fs.primary(l), st.Present.Difference(st.Owned).Sorted()); err != nil {
			return nil, err
		}
	}

	if err := os.Remove(fs.sidecar(l)); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("删除快照文件失败: %w", err)
	}
	return removed, nil
}

// Close 文件存储无需释放资源
func (fs *FileStore) Close() error {
	return nil
}

// readEntries 读取每行一个条目的文件，跳过空行与注释
func readEntries(path string) (lists.Set, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return make(lists.Set), nil
	}
	if err != nil {
		return nil, fmt.Errorf("读取 %s 失败: %w", path, err)
	}
	return lists.Parse(string(data), lists.FormatPlain), nil
}

// writeEntries 原子写入条目，内容未变化时不写，返回是否发生写入
func writeEntries(path string, entries []string) (bool, error) {
	var buf bytes.Buffer
	if len(entries) > 0 {
		buf.WriteString(strings.Join(entries, "\n"))
		buf.WriteByte('\n')
	}

	old, err := os.ReadFile(path)
	if err == nil && bytes.Equal(old, buf.Bytes()) {
		return false, nil
	}

	mode := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	// 创建临时文件
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return false, fmt.Errorf("创建临时文件失败: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return false, fmt.Errorf("写入临时文件失败: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return false, fmt.Errorf("关闭临时文件失败: %w", err)
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		return false, fmt.Errorf("设置文件权限失败: %w", err)
	}

	// 原子性重命名
	if err := os.Rename(tmpName, path); err != nil {
		return false, fmt.Errorf("重命名文件失败: %w", err)
	}
	return true, nil
}
