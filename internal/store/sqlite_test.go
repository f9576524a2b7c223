package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/winspan/listsync/internal/lists"
	"github.com/winspan/listsync/internal/store/storetest"
)

const regexMarker = "SlyRBL - github.com/slyfox1186/pihole-regex"

func regexList() lists.List {
	return lists.List{
		Name:    "regex-blacklist",
		URL:     "https://example.com/regex.txt",
		Kind:    lists.KindRegex,
		Comment: regexMarker,
		File:    "regex-blacklist.txt",
		Sidecar: "slyfox1186-regex-blacklist.txt",
		Format:  lists.FormatPlain,
	}
}

func openSeeded(t *testing.T, rows ...storetest.Row) (*SQLiteStore, string) {
	t.Helper()
	dir := t.TempDir()
	path := storetest.NewGravity(t, dir, rows...)

	s, err := OpenSQLite(dir, DefaultDatabase)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestSQLiteLoadSeparatesOwned(t *testing.T) {
	s, _ := openSeeded(t,
		storetest.Row{Type: 3, Domain: "a.com", Comment: regexMarker},
		storetest.Row{Type: 3, Domain: "user.com", Comment: "my own"},
		storetest.Row{Type: 3, Domain: "nocomment.com"},
		storetest.Row{Type: 1, Domain: "exact.com", Comment: regexMarker},
	)

	st, err := s.Load(context.Background(), regexList())
	require.NoError(t, err)

	assert.Equal(t, []string{"a.com", "nocomment.com", "user.com"}, st.Present.Sorted())
	assert.Equal(t, []string{"a.com"}, st.Owned.Sorted())
	assert.Equal(t, ModeTable, s.Mode())
}

func TestSQLiteApply(t *testing.T) {
	s, path := openSeeded(t,
		storetest.Row{Type: 3, Domain: "a.com", Comment: regexMarker},
		storetest.Row{Type: 3, Domain: "b.com", Comment: regexMarker},
		storetest.Row{Type: 3, Domain: "user.com", Comment: "mine"},
	)
	ctx := context.Background()
	l := regexList()

	change := Change{Added: lists.NewSet("c.com", "user.com"), Removed: lists.NewSet("a.com")}
	require.NoError(t, s.Apply(ctx, l, lists.NewSet("b.com", "c.com", "user.com"), change))

	assert.Equal(t, []storetest.Row{
		{Type: 3, Domain: "b.com", Comment: regexMarker},
		{Type: 3, Domain: "c.com", Comment: regexMarker},
		{Type: 3, Domain: "user.com", Comment: "mine"},
	}, storetest.Dump(t, path))
}

func TestSQLiteDeleteOnlyOwnedRows(t *testing.T) {
	s, path := openSeeded(t,
		storetest.Row{Type: 3, Domain: "user.com", Comment: "mine"},
	)

	change := Change{Added: lists.NewSet(), Removed: lists.NewSet("user.com")}
	require.NoError(t, s.Apply(context.Background(), regexList(), lists.NewSet("x.com"), change))

	assert.Len(t, storetest.Dump(t, path), 1)
}

func TestSQLiteEntries(t *testing.T) {
	s, _ := openSeeded(t,
		storetest.Row{Type: 3, Domain: "z.com"},
		storetest.Row{Type: 3, Domain: "a.com", Comment: regexMarker},
		storetest.Row{Type: 2, Domain: "allow.com"},
	)

	got, err := s.Entries(context.Background(), regexList())
	require.NoError(t, err)
	assert.Equal(t, []string{"a.com", "z.com"}, got)
}

func TestSQLitePurge(t *testing.T) {
	s, path := openSeeded(t,
		storetest.Row{Type: 3, Domain: "a.com", Comment: regexMarker},
		storetest.Row{Type: 3, Domain: "b.com", Comment: regexMarker},
		storetest.Row{Type: 3, Domain: "user.com", Comment: "mine"},
		storetest.Row{Type: 1, Domain: "exact.com", Comment: regexMarker},
	)

	removed, err := s.Purge(context.Background(), regexList())
	require.NoError(t, err)
	assert.Equal(t, []string{"a.com", "b.com"}, removed.Sorted())

	assert.Equal(t, []storetest.Row{
		{Type: 1, Domain: "exact.com", Comment: regexMarker},
		{Type: 3, Domain: "user.com", Comment: "mine"},
	}, storetest.Dump(t, path))
}

func TestSQLiteApplyRemovesLegacySidecar(t *testing.T) {
	s, _ := openSeeded(t)
	l := regexList()
	sidecar := filepath.Join(s.dir, l.Sidecar)
	require.NoError(t, os.WriteFile(sidecar, []byte("old.com\n"), 0644))

	change := Change{Added: lists.NewSet("a.com"), Removed: lists.NewSet()}
	require.NoError(t, s.Apply(context.Background(), l, lists.NewSet("a.com"), change))

	_, err := os.Stat(sidecar)
	assert.True(t, os.IsNotExist(err))
}

func TestSQLiteApplyNoChange(t *testing.T) {
	rows := []storetest.Row{{Type: 3, Domain: "a.com", Comment: regexMarker}}
	s, path := openSeeded(t, rows...)
	l := regexList()
	sidecar := filepath.Join(s.dir, l.Sidecar)
	require.NoError(t, os.WriteFile(sidecar, []byte("a.com\n"), 0644))

	change := Change{Added: lists.NewSet(), Removed: lists.NewSet()}
	require.True(t, change.Empty())
	require.NoError(t, s.Apply(context.Background(), l, lists.NewSet("a.com"), change))

	assert.Equal(t, rows, storetest.Dump(t, path))
	assert.NoFileExists(t, sidecar)
}

func TestOpenSQLiteWithoutSchema(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultDatabase), nil, 0644))

	_, err := OpenSQLite(dir, DefaultDatabase)
	assert.ErrorIs(t, err, ErrNoSchema)
}
