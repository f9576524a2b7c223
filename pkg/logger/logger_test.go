package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", DEBUG, false},
		{"INFO", INFO, false},
		{"", INFO, false},
		{"warning", WARN, false},
		{"error", ERROR, false},
		{"verbose", INFO, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestLoggerFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "json", WARN)

	l.Info("dropped %d", 1)
	assert.Zero(t, buf.Len())

	l.Warn("kept %s", "warn")
	require.NotZero(t, buf.Len())

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "kept warn", line["message"])
}

func TestLoggerWithAddsField(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "json", DEBUG).With("list", "regex-blacklist")

	l.Debug("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "regex-blacklist", line["list"])
}

func TestLoggerTextFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "text", INFO)

	l.Info("fetching %s", "https://example.com/list.txt")
	assert.True(t, strings.Contains(buf.String(), "fetching https://example.com/list.txt"))
}

func TestNewLoggerFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "listsync.log")

	l, err := NewLogger(&Config{Level: INFO, Format: "json", Output: path, Prefix: "listsync"})
	require.NoError(t, err)
	l.Info("written")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"prefix":"listsync"`)
	assert.Contains(t, string(data), "written")
}

func TestDiscard(t *testing.T) {
	l := Discard()
	l.Error("nothing happens")
	assert.False(t, l.IsDebug())
}
