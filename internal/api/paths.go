// Package api provides the chat completion service client.
package api

// GJSON paths probed, in order, for a human-readable message in an error body.
// FastAPI reports {"detail": "..."} (or a list of validation errors), Ollama
// reports {"error": "..."} and OpenAI-style servers {"error": {"message": ...}}.
var errorDetailPaths = []string{
	"detail",
	"detail.0.msg",
	"error.message",
	"error",
	"message",
}

// Limits for bodies kept in memory
const (
	maxResponseBytes  = 16 << 20
	maxErrorBodyBytes = 4096
	maxDetailLength   = 200
)
