// Package storetest 为测试提供与设备一致的 domainlist 表结构
package storetest

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// Schema 设备 gravity.db 中 domainlist 表的结构
const Schema = `CREATE TABLE domainlist (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	type INTEGER NOT NULL DEFAULT 0,
	domain TEXT NOT NULL,
	enabled BOOLEAN NOT NULL DEFAULT 1,
	date_added INTEGER NOT NULL DEFAULT (cast(strftime('%s', 'now') as int)),
	date_modified INTEGER NOT NULL DEFAULT (cast(strftime('%s', 'now') as int)),
	comment TEXT,
	UNIQUE(domain, type)
)`

// Row domainlist 中的一行
type Row struct {
	Type    int
	Domain  string
	Comment string
}

// NewGravity 在 dir 下创建 gravity.db 并写入初始行，返回数据库路径
func NewGravity(t testing.TB, dir string, rows ...Row) string {
	t.Helper()

	path := filepath.Join(dir, "gravity.db")
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer db.Close()

	if _, err := db.Exec(Schema); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	for _, r := range rows {
		var comment any
		if r.Comment != "" {
			comment = r.Comment
		}
		if _, err := db.Exec(`INSERT INTO domainlist (type, domain, comment) VALUES (?, ?, ?)`, r.Type, r.Domain, comment); err != nil {
			t.Fatalf("seed %q: %v", r.Domain, err)
		}
	}
	return path
}

// Dump 读取 domainlist 的全部行，按 type、domain 排序
func Dump(t testing.TB, path string) []Row {
	t.Helper()

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer db.Close()

	rows, err := db.Query(`SELECT type, domain, coalesce(comment, '') FROM domainlist ORDER BY type, domain`)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.Type, &r.Domain, &r.Comment); err != nil {
			t.Fatalf("scan: %v", err)
		}
		out = append(out, r)
	}
	return out
}
