package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/winspan/listsync/internal/lists"
)

// SQLiteStore 基于 domainlist 表的存储
//
// 只增删行，不修改表结构。已存在的行（无论来源标记为何）保持原样。
type SQLiteStore struct {
	db  *sql.DB
	dir string
}

// OpenSQLite 打开设备数据库
func OpenSQLite(dir, database string) (*SQLiteStore, error) {
	path := filepath.Join(dir, database)

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("打开数据库失败: %w", err)
	}

	// SQLite 只支持单个写连接
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	var n int
	err = db.QueryRow(`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = 'domainlist'`).Scan(&n)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("检查表结构失败: %w", err)
	}
	if n == 0 {
		db.Close()
		return nil, fmt.Errorf("%s: %w", path, ErrNoSchema)
	}

	return &SQLiteStore{db: db, dir: dir}, nil
}

// Mode 存储模式
func (s *SQLiteStore) Mode() Mode {
	return ModeTable
}

// Load 读取指定类型的全部行，并按来源标记区分本工具写入的行
func (s *SQLiteStore) Load(ctx context.Context, l lists.List) (*State, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT domain, comment FROM domainlist WHERE type = ?`, int(l.Kind))
	if err != nil {
		return nil, fmt.Errorf("查询 domainlist 失败: %w", err)
	}
	defer rows.Close()

	st := &State{Present: make(lists.Set), Owned: make(lists.Set)}
	for rows.Next() {
		var (
			domain  string
			comment sql.NullString
		)
		if err := rows.Scan(&domain, &comment); err != nil {
			return nil, fmt.Errorf("扫描 domainlist 记录失败: %w", err)
		}
		st.Present.Add(domain)
		if comment.Valid && comment.String == l.Comment {
			st.Owned.Add(domain)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("遍历 domainlist 失败: %w", err)
	}

	return st, nil
}

// Apply 新增与删除分别在各自的事务中提交
func (s *SQLiteStore) Apply(ctx context.Context, l lists.List, remote lists.Set, change Change) error {
	if change.Empty() {
		return s.removeLegacySidecar(l)
	}

	if change.Added.Len() > 0 {
		if err := s.insert(ctx, l, change.Added); err != nil {
			return err
		}
	}

	if change.Removed.Len() > 0 {
		if err := s.delete(ctx, l, change.Removed); err != nil {
			return err
		}
	}

	// 已迁移到数据库，旧版快照文件不再需要
	return s.removeLegacySidecar(l)
}

// insert 批量插入，(domain, type) 已存在时忽略
func (s *SQLiteStore) insert(ctx context.Context, l lists.List, entries lists.Set) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("开始事务失败: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO domainlist (type, domain, enabled, comment) VALUES (?, ?, 1, ?)`)
	if err != nil {
		return fmt.Errorf("准备语句失败: %w", err)
	}
	defer stmt.Close()

	for _, entry := range entries.Sorted() {
		if _, err := stmt.ExecContext(ctx, int(l.Kind), entry, l.Comment); err != nil {
			return fmt.Errorf("插入 %q 失败: %w", entry, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}
	return nil
}

// delete 批量删除，仅删除带本工具来源标记的行
func (s *SQLiteStore) delete(ctx context.Context, l lists.List, entries lists.Set) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("开始事务失败: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `DELETE FROM domainlist WHERE type = ? AND domain = ? AND comment = ?`)
	if err != nil {
		return fmt.Errorf("准备语句失败: %w", err)
	}
	defer stmt.Close()

	for _, entry := range entries.Sorted() {
		if _, err := stmt.ExecContext(ctx, int(l.Kind), entry, l.Comment); err != nil {
			return fmt.Errorf("删除 %q 失败: %w", entry, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}
	return nil
}

// Entries 返回指定类型的全部条目
func (s *SQLiteStore) Entries(ctx context.Context, l lists.List) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT domain FROM domainlist WHERE type = ? ORDER BY domain`, int(l.Kind))
	if err != nil {
		return nil, fmt.Errorf("查询 domainlist 失败: %w", err)
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var domain string
		if err := rows.Scan(&domain); err != nil {
			return nil, fmt.Errorf("扫描 domainlist 记录失败: %w", err)
		}
		out = append(out, domain)
	}
	return out, rows.Err()
}

// Purge 删除本工具写入的全部行
func (s *SQLiteStore) Purge(ctx context.Context, l lists.List) (lists.Set, error) {
	st, err := s.Load(ctx, l)
	if err != nil {
		return nil, err
	}

	if st.Owned.Len() > 0 {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("开始事务失败: %w", err)
		}
		defer tx.Rollback()

		if _, err := tx.ExecContext(ctx, `DELETE FROM domainlist WHERE type = ? AND comment = ?`, int(l.Kind), l.Comment); err != nil {
			return nil, fmt.Errorf("删除失败: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("提交事务失败: %w", err)
		}
	}

	if err := s.removeLegacySidecar(l); err != nil {
		return nil, err
	}
	return st.Owned, nil
}

func (s *SQLiteStore) removeLegacySidecar(l lists.List) error {
	if l.Sidecar == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, l.Sidecar))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("删除旧版快照文件失败: %w", err)
	}
	return nil
}

// Close 关闭数据库连接
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
