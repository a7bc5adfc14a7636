package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/nexus-client/nexustypes"
)

var (
	dirEntry = nexustypes.DirEntry{
		Name:         "sub",
		RelativePath: "/org/sub",
		Size:         nexustypes.SizeNotApplicable,
		LastModified: "2024-01-02 10:00:00.0 UTC",
	}
	fileEntry = nexustypes.DirEntry{
		Name:         "a.txt",
		RelativePath: "/org/sub/a.txt",
		Leaf:         true,
		Size:         1234,
		LastModified: "2024-01-02 11:00:00.0 UTC",
	}
)

func TestShortLine(t *testing.T) {
	tests := []struct {
		name  string
		start string
		entry nexustypes.DirEntry
		want  string
	}{
		{name: "directory", start: "/org/", entry: dirEntry, want: "sub/"},
		{name: "nested file", start: "/org/", entry: fileEntry, want: "sub/a.txt"},
		{name: "root", start: "/", entry: fileEntry, want: "org/sub/a.txt"},
		{name: "outside start", start: "/other/", entry: fileEntry, want: "a.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shortLine(tt.start, tt.entry))
		})
	}
}

func TestLongLine(t *testing.T) {
	assert.Equal(t, "2024-01-02 10:00:00.0 UTC\t         /\torg/sub", longLine(dirEntry))
	assert.Equal(t, "2024-01-02 11:00:00.0 UTC\t      1234\torg/sub/a.txt", longLine(fileEntry))
}

func TestPrinter(t *testing.T) {
	t.Run("short", func(t *testing.T) {
		var buf bytes.Buffer
		p, err := newPrinter(formatShort, "/org", &buf)
		require.NoError(t, err)
		p.print(dirEntry)
		p.print(fileEntry)
		require.NoError(t, p.flush())
		assert.Equal(t, "sub/\nsub/a.txt\n", buf.String())
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		p, err := newPrinter(formatJSON, "/org/", &buf)
		require.NoError(t, err)
		p.print(fileEntry)
		require.NoError(t, p.flush())

		var decoded []map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		require.Len(t, decoded, 1)
		assert.Equal(t, "a.txt", decoded[0]["text"])
		assert.Equal(t, true, decoded[0]["leaf"])
		assert.InDelta(t, 1234, decoded[0]["sizeOnDisk"], 0)
	})

	t.Run("json empty", func(t *testing.T) {
		var buf bytes.Buffer
		p, err := newPrinter(formatJSON, "/", &buf)
		require.NoError(t, err)
		require.NoError(t, p.flush())
		assert.Equal(t, "[]\n", buf.String())
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := newPrinter("xml", "/", &bytes.Buffer{})
		require.Error(t, err)
		assert.True(t, isUsage(err))
	})
}
