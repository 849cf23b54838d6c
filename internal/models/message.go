package models

import "time"

// Role identifies the author of a chat message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Message is a single entry of a conversation. Messages are created once and
// never modified; their order in the conversation is their ID order.
type Message struct {
	ID        uint64
	Role      Role
	Content   string
	CreatedAt time.Time
	// Failed marks an assistant turn that reports a failed round trip
	Failed bool
}

// WireMessage is the part of a Message that is sent to the chat service
type WireMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Wire returns the role and content of m without its internal fields
func (m Message) Wire() WireMessage {
	return WireMessage{Role: m.Role, Content: m.Content}
}

// IsUser returns true for messages typed by the user
func (m Message) IsUser() bool {
	return m.Role == RoleUser
}

// WireHistory converts an ordered conversation into the request history
func WireHistory(messages []Message) []WireMessage {
	out := make([]WireMessage, len(messages))
	for i, msg := range messages {
		out[i] = msg.Wire()
	}
	return out
}
