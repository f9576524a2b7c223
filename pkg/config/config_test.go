package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/winspan/listsync/internal/lists"
	"github.com/winspan/listsync/pkg/logger"
)

func TestDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "/etc/pihole", cfg.Store.Dir)
	assert.Equal(t, "gravity.db", cfg.Store.Database)
	assert.Equal(t, "pihole", cfg.Docker.Container)
	assert.Equal(t, 60*time.Second, cfg.Fetch.Timeout)

	ls, err := cfg.ToLists()
	require.NoError(t, err)
	require.Len(t, ls, 3)

	assert.Equal(t, "regex-blacklist", ls[0].Name)
	assert.Equal(t, lists.KindRegex, ls[0].Kind)
	assert.Equal(t, "regex-blacklist.txt", ls[0].File)
	assert.Equal(t, lists.KindExact, ls[1].Kind)
	assert.Equal(t, "blacklist.txt", ls[1].File)
	assert.Equal(t, lists.KindAllow, ls[2].Kind)
	assert.Equal(t, "SlyRWL - github.com/slyfox1186/pihole-regex", ls[2].Comment)
	assert.Equal(t, lists.FormatPlain, ls[2].Format)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "listsync.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
store:
  dir: /srv/pihole
fetch:
  timeout: 15s
lists:
  - name: ads
    url: https://lists.example.org/hosts
    kind: exact
    comment: "example hosts"
    file: blacklist.txt
    sidecar: example-blacklist.txt
    format: hosts
logging:
  level: debug
  format: json
serve:
  admin_token: secret
  interval: 6h
`), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/pihole", cfg.Store.Dir)
	assert.Equal(t, 15*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, 6*time.Hour, cfg.Serve.Interval)
	assert.Equal(t, "secret", cfg.Serve.AdminToken)

	ls, err := cfg.ToLists()
	require.NoError(t, err)
	require.Len(t, ls, 1)
	assert.Equal(t, lists.FormatHosts, ls[0].Format)

	lc := cfg.LoggerConfig()
	assert.Equal(t, logger.DEBUG, lc.Level)
	assert.Equal(t, "json", lc.Format)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad level", "logging:\n  level: loud\n"},
		{"bad format", "logging:\n  format: xml\n"},
		{"bad kind", "lists:\n  - {name: a, url: https://x.org/a, kind: block, comment: c, file: f, sidecar: s}\n"},
		{"bad url", "lists:\n  - {name: a, url: ftp//x, kind: regex, comment: c, file: f, sidecar: s}\n"},
		{"duplicate name", "lists:\n" +
			"  - {name: a, url: https://x.org/a, kind: regex, comment: c1, file: f1, sidecar: s1}\n" +
			"  - {name: a, url: https://x.org/b, kind: regex, comment: c2, file: f2, sidecar: s2}\n"},
		{"duplicate marker", "lists:\n" +
			"  - {name: a, url: https://x.org/a, kind: regex, comment: c, file: f1, sidecar: s1}\n" +
			"  - {name: b, url: https://x.org/b, kind: regex, comment: c, file: f2, sidecar: s2}\n"},
		{"database path", "store:\n  database: sub/gravity.db\n"},
		{"negative interval", "serve:\n  interval: -1m\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestSelectLists(t *testing.T) {
	cfg := Default()

	ls, err := cfg.SelectLists([]string{"regex-whitelist", "regex-blacklist"})
	require.NoError(t, err)
	require.Len(t, ls, 2)
	// 保持配置顺序
	assert.Equal(t, "regex-blacklist", ls[0].Name)
	assert.Equal(t, "regex-whitelist", ls[1].Name)

	_, err = cfg.SelectLists([]string{"nope"})
	assert.Error(t, err)
}

