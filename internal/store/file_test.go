package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/winspan/listsync/internal/lists"
	"github.com/winspan/listsync/internal/store/storetest"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestFileLoadMissingFiles(t *testing.T) {
	fs := NewFileStore(t.TempDir())

	st, err := fs.Load(context.Background(), regexList())
	require.NoError(t, err)
	assert.Zero(t, st.Present.Len())
	assert.Zero(t, st.Owned.Len())
	assert.Equal(t, ModeFile, fs.Mode())
}

func TestFileApplyKeepsUserEntries(t *testing.T) {
	dir := t.TempDir()
	fs := NewFileStore(dir)
	l := regexList()
	writeFile(t, filepath.Join(dir, l.File), "# mine\nuser1.com\na.com\n")
	writeFile(t, filepath.Join(dir, l.Sidecar), "a.com\n")

	st, err := fs.Load(context.Background(), l)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.com", "user1.com"}, st.Present.Sorted())
	assert.Equal(t, []string{"a.com"}, st.Owned.Sorted())

	remote := lists.NewSet("a.com", "d.com")
	change := Change{Added: lists.NewSet("d.com"), Removed: lists.NewSet()}
	require.NoError(t, fs.Apply(context.Background(), l, remote, change))

	assert.Equal(t, "a.com\nd.com\nuser1.com\n", readFile(t, filepath.Join(dir, l.File)))
	assert.Equal(t, "a.com\nd.com\n", readFile(t, filepath.Join(dir, l.Sidecar)))
}

func TestFileApplyRemovesDroppedEntries(t *testing.T) {
	dir := t.TempDir()
	fs := NewFileStore(dir)
	l := regexList()
	writeFile(t, filepath.Join(dir, l.File), "a.com\nb.com\nuser.com\n")
	writeFile(t, filepath.Join(dir, l.Sidecar), "a.com\nb.com\n")

	change := Change{Added: lists.NewSet("c.com"), Removed: lists.NewSet("a.com")}
	require.NoError(t, fs.Apply(context.Background(), l, lists.NewSet("b.com", "c.com"), change))

	got, err := fs.Entries(context.Background(), l)
	require.NoError(t, err)
	assert.Equal(t, []string{"b.com", "c.com", "user.com"}, got)
}

func TestFileApplyNoChangeKeepsPrimary(t *testing.T) {
	dir := t.TempDir()
	fs := NewFileStore(dir)
	l := regexList()
	writeFile(t, filepath.Join(dir, l.File), "# mine\nuser.com\na.com\n")
	writeFile(t, filepath.Join(dir, l.Sidecar), "a.com\nold.com\n")

	change := Change{Added: lists.NewSet(), Removed: lists.NewSet()}
	require.True(t, change.Empty())
	require.NoError(t, fs.Apply(context.Background(), l, lists.NewSet("a.com"), change))

	assert.Equal(t, "# mine\nuser.com\na.com\n", readFile(t, filepath.Join(dir, l.File)))
	assert.Equal(t, "a.com\n", readFile(t, filepath.Join(dir, l.Sidecar)))
}

func TestWriteEntriesSkipsIdenticalContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.txt")

	changed, err := writeEntries(path, []string{"a.com", "b.com"})
	require.NoError(t, err)
	assert.True(t, changed)

	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(path, past, past))

	changed, err = writeEntries(path, []string{"a.com", "b.com"})
	require.NoError(t, err)
	assert.False(t, changed)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.WithinDuration(t, past, info.ModTime(), time.Second)
}

func TestWriteEntriesPreservesMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.txt")
	require.NoError(t, os.WriteFile(path, []byte("old.com\n"), 0600))

	_, err := writeEntries(path, []string{"new.com"})
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	assert.Equal(t, "new.com\n", readFile(t, path))
}

func TestFilePurge(t *testing.T) {
	dir := t.TempDir()
	fs := NewFileStore(dir)
	l := regexList()
	writeFile(t, filepath.Join(dir, l.File), "a.com\nb.com\nuser.com\n")
	writeFile(t, filepath.Join(dir, l.Sidecar), "a.com\nb.com\ngone.com\n")

	removed, err := fs.Purge(context.Background(), l)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.com", "b.com"}, removed.Sorted())

	assert.Equal(t, "user.com\n", readFile(t, filepath.Join(dir, l.File)))
	_, err = os.Stat(filepath.Join(dir, l.Sidecar))
	assert.True(t, os.IsNotExist(err))
}

func TestDetectAndOpen(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, ModeFile, Detect(dir, ""))

	// 空数据库文件按旧版文件模式处理
	writeFile(t, filepath.Join(dir, DefaultDatabase), "")
	assert.Equal(t, ModeFile, Detect(dir, DefaultDatabase))

	s, err := Open(dir, "")
	require.NoError(t, err)
	assert.Equal(t, ModeFile, s.Mode())
	require.NoError(t, s.Close())

	tableDir := t.TempDir()
	storetest.NewGravity(t, tableDir)
	assert.Equal(t, ModeTable, Detect(tableDir, ""))

	s, err = Open(tableDir, "")
	require.NoError(t, err)
	assert.Equal(t, ModeTable, s.Mode())
	require.NoError(t, s.Close())
}
