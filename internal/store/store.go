package store

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/winspan/listsync/internal/lists"
	"github.com/winspan/listsync/pkg/utils"
)

// DefaultDatabase 设备数据库的常规文件名
const DefaultDatabase = "gravity.db"

// Mode 存储模式
type Mode string

const (
	ModeTable Mode = "table" // domainlist 表
	ModeFile  Mode = "file"  // 旧版纯文本文件
)

// ErrNoSchema 数据库中缺少 domainlist 表
var ErrNoSchema = errors.New("数据库缺少 domainlist 表")

// State 本地存储中某个列表槽位的状态
type State struct {
	Present lists.Set // 槽位中的全部条目
	Owned   lists.Set // 可归属于本工具的条目（表模式按来源标记，文件模式按快照）
}

// Change 一次同步需要施加的增删
type Change struct {
	Added   lists.Set
	Removed lists.Set
}

// Empty 是否无需任何修改
func (c Change) Empty() bool {
	return c.Added.Len() == 0 && c.Removed.Len() == 0
}

// Store 本地列表存储接口
type Store interface {
	Mode() Mode

	// Load 读取列表槽位的当前状态
	Load(ctx context.Context, l lists.List) (*State, error)

	// Apply 施加增删，remote 为本次远程集合（文件模式用于写快照）
	Apply(ctx context.Context, l lists.List, remote lists.Set, change Change) error

	// Entries 返回槽位中的全部条目，已排序
	Entries(ctx context.Context, l lists.List) ([]string, error)

	// Purge 移除本工具写入的全部条目，返回被移除的条目
	Purge(ctx context.Context, l lists.List) (lists.Set, error)

	Close() error
}

// Detect 根据数据库文件是否存在且非空判断存储模式
func Detect(dir, database string) Mode {
	if database == "" {
		database = DefaultDatabase
	}
	if utils.IsNonEmptyFile(filepath.Join(dir, database)) {
		return ModeTable
	}
	return ModeFile
}

// Open 根据检测到的模式创建相应的存储
func Open(dir, database string) (Store, error) {
	if database == "" {
		database = DefaultDatabase
	}
	if Detect(dir, database) == ModeTable {
		return OpenSQLite(dir, database)
	}

	// 回退到文件存储
	return NewFileStore(dir), nil
}
