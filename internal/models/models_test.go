package models

import (
	"testing"
	"time"
)

func TestRoleValid(t *testing.T) {
	tests := []struct {
		role Role
		want bool
	}{
		{RoleUser, true},
		{RoleAssistant, true},
		{Role("system"), false},
		{Role(""), false},
	}

	for _, tt := range tests {
		if got := tt.role.Valid(); got != tt.want {
			t.Errorf("Role(%q).Valid() = %v, want %v", tt.role, got, tt.want)
		}
	}
}

func TestWireHistoryDropsInternalFields(t *testing.T) {
	messages := []Message{
		{ID: 1, Role: RoleUser, Content: "Hello", CreatedAt: time.Now()},
		{ID: 2, Role: RoleAssistant, Content: "Hi there", CreatedAt: time.Now()},
	}

	wire := WireHistory(messages)
	if len(wire) != 2 {
		t.Fatalf("len(WireHistory()) = %d, want 2", len(wire))
	}
	if wire[0] != (WireMessage{Role: RoleUser, Content: "Hello"}) {
		t.Errorf("wire[0] = %+v", wire[0])
	}
	if wire[1] != (WireMessage{Role: RoleAssistant, Content: "Hi there"}) {
		t.Errorf("wire[1] = %+v", wire[1])
	}
}

func TestWireHistoryEmpty(t *testing.T) {
	if got := WireHistory(nil); len(got) != 0 {
		t.Errorf("WireHistory(nil) = %v, want empty", got)
	}
}

func TestIsUser(t *testing.T) {
	if !(Message{Role: RoleUser}).IsUser() {
		t.Error("user message not recognised")
	}
	if (Message{Role: RoleAssistant}).IsUser() {
		t.Error("assistant message reported as user")
	}
}

func TestDefaultHeaders(t *testing.T) {
	headers := DefaultHeaders()
	if headers["Content-Type"] != "application/json" {
		t.Errorf("Content-Type = %q", headers["Content-Type"])
	}
	if headers["User-Agent"] == "" {
		t.Error("User-Agent should be set")
	}
}
