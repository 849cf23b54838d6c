// Package models contains data types and constants shared by the chat client.
package models

// Chat service defaults. They match a local Ollama server, which accepts the
// full-history request body and answers with {"message":{"content":...}}.
const (
	DefaultBaseURL      = "http://127.0.0.1:11434"
	DefaultChatPath     = "/api/chat"
	DefaultModel        = "qwen2.5:0.5b"
	DefaultResponsePath = "message.content"
)

// ErrorPrefix starts the content of every assistant message that reports a
// failed round trip.
const ErrorPrefix = "Error: "

// DefaultHeaders returns the headers sent with every chat request
func DefaultHeaders() map[string]string {
	return map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
		"User-Agent":   "chatllm/" + Version,
	}
}

// Version is the client version reported in the User-Agent (set at build time)
var Version = "0.1.0"
