package conversation

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/diogo/chatllm/internal/models"
)

// ExportFormat represents the format for exporting conversations
type ExportFormat string

const (
	ExportFormatMarkdown ExportFormat = "markdown"
	ExportFormatJSON     ExportFormat = "json"
)

// FormatForPath picks the export format from a file extension
func FormatForPath(path string) ExportFormat {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ExportFormatJSON
	}
	return ExportFormatMarkdown
}

// ExportMarkdown renders a snapshot as a Markdown transcript
func ExportMarkdown(snap Snapshot) string {
	var sb strings.Builder

	sb.WriteString("# Conversation ")
	sb.WriteString(snap.ID)
	sb.WriteString("\n\n")

	if len(snap.Messages) > 0 {
		sb.WriteString("**Started:** ")
		sb.WriteString(snap.Messages[0].CreatedAt.Format("2006-01-02 15:04:05"))
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("**Messages:** %d\n\n---\n\n", len(snap.Messages)))

	for i, msg := range snap.Messages {
		role := "User"
		if msg.Role == models.RoleAssistant {
			role = "Assistant"
		}

		sb.WriteString("## ")
		sb.WriteString(role)
		if !msg.CreatedAt.IsZero() {
			sb.WriteString(" (")
			sb.WriteString(msg.CreatedAt.Format("15:04:05"))
			sb.WriteString(")")
		}
		sb.WriteString("\n\n")

		sb.WriteString(msg.Content)
		sb.WriteString("\n")

		if i < len(snap.Messages)-1 {
			sb.WriteString("\n---\n\n")
		}
	}

	return sb.String()
}

type exportMessage struct {
	ID        uint64    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Error     bool      `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type exportConversation struct {
	ID       string          `json:"id"`
	Messages []exportMessage `json:"messages"`
}

// ExportJSON renders a snapshot as indented JSON
func ExportJSON(snap Snapshot) ([]byte, error) {
	export := exportConversation{
		ID:       snap.ID,
		Messages: make([]exportMessage, len(snap.Messages)),
	}

	for i, msg := range snap.Messages {
		export.Messages[i] = exportMessage{
			ID:        msg.ID,
			Role:      string(msg.Role),
			Content:   msg.Content,
			Error:     msg.Failed,
			Timestamp: msg.CreatedAt,
		}
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode transcript: %w", err)
	}
	return data, nil
}

// WriteTranscript writes snap to path, as JSON for .json files and Markdown otherwise
func WriteTranscript(path string, snap Snapshot) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("transcript path cannot be empty")
	}

	var data []byte
	switch FormatForPath(path) {
	case ExportFormatJSON:
		encoded, err := ExportJSON(snap)
		if err != nil {
			return err
		}
		data = append(encoded, '\n')
	default:
		data = []byte(ExportMarkdown(snap))
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write transcript: %w", err)
	}
	return nil
}
