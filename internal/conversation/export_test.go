package conversation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/diogo/chatllm/internal/models"
)

func sampleSnapshot() Snapshot {
	at := time.Date(2026, 10, 17, 14, 5, 9, 0, time.UTC)
	return Snapshot{
		ID: "abc-123",
		Messages: []models.Message{
			{ID: 1, Role: models.RoleUser, Content: "Hello", CreatedAt: at},
			{ID: 2, Role: models.RoleAssistant, Content: "Hi there", CreatedAt: at},
			{ID: 3, Role: models.RoleUser, Content: "Still there?", CreatedAt: at},
			{ID: 4, Role: models.RoleAssistant, Content: "Error: chat service returned HTTP 500", CreatedAt: at, Failed: true},
		},
		State: StateIdle,
	}
}

func TestFormatForPath(t *testing.T) {
	tests := map[string]ExportFormat{
		"chat.json":     ExportFormatJSON,
		"CHAT.JSON":     ExportFormatJSON,
		"chat.md":       ExportFormatMarkdown,
		"chat":          ExportFormatMarkdown,
		"dir.json/chat": ExportFormatMarkdown,
	}
	for path, want := range tests {
		assert.Equal(t, want, FormatForPath(path), path)
	}
}

func TestExportMarkdown(t *testing.T) {
	md := ExportMarkdown(sampleSnapshot())

	assert.True(t, strings.HasPrefix(md, "# Conversation abc-123\n"))
	assert.Contains(t, md, "**Started:** 2026-10-17 14:05:09")
	assert.Contains(t, md, "**Messages:** 4")
	assert.Contains(t, md, "## User (14:05:09)\n\nHello\n")
	assert.Contains(t, md, "## Assistant (14:05:09)\n\nHi there\n")
	assert.Equal(t, 4, strings.Count(md, "\n---\n"), "header rule plus one between each message")

	userIdx := strings.Index(md, "Hello")
	replyIdx := strings.Index(md, "Hi there")
	assert.Less(t, userIdx, replyIdx)
}

func TestExportMarkdown_Empty(t *testing.T) {
	md := ExportMarkdown(Snapshot{ID: "empty"})
	assert.Contains(t, md, "**Messages:** 0")
	assert.NotContains(t, md, "**Started:**")
}

func TestExportJSON(t *testing.T) {
	data, err := ExportJSON(sampleSnapshot())
	require.NoError(t, err)

	parsed := gjson.ParseBytes(data)
	assert.Equal(t, "abc-123", parsed.Get("id").String())
	assert.Equal(t, int64(4), parsed.Get("messages.#").Int())
	assert.Equal(t, "user", parsed.Get("messages.0.role").String())
	assert.Equal(t, "Hi there", parsed.Get("messages.1.content").String())
	assert.False(t, parsed.Get("messages.1.error").Exists())
	assert.True(t, parsed.Get("messages.3.error").Bool())
	assert.Equal(t, int64(4), parsed.Get("messages.3.id").Int())
}

func TestWriteTranscript(t *testing.T) {
	dir := t.TempDir()
	snap := sampleSnapshot()

	mdPath := filepath.Join(dir, "out", "chat.md")
	require.NoError(t, WriteTranscript(mdPath, snap))
	md, err := os.ReadFile(mdPath)
	require.NoError(t, err)
	assert.Equal(t, ExportMarkdown(snap), string(md))

	jsonPath := filepath.Join(dir, "chat.json")
	require.NoError(t, WriteTranscript(jsonPath, snap))
	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	assert.True(t, gjson.ValidBytes(data))
	assert.Equal(t, "abc-123", gjson.GetBytes(data, "id").String())

	assert.Error(t, WriteTranscript("  ", snap))
}
