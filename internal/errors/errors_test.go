package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestNetworkError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewNetworkError("chat", "http://localhost:11434/api/chat", cause)

	expected := "network error during chat at http://localhost:11434/api/chat: connection refused"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}

	if !errors.Is(err, ErrNetworkFailure) {
		t.Error("Expected NetworkError to match ErrNetworkFailure")
	}
	if !errors.Is(err, cause) {
		t.Error("Expected NetworkError to unwrap to its cause")
	}
	if errors.Is(err, ErrServerError) {
		t.Error("NetworkError must not match ErrServerError")
	}
}

func TestTimeoutError(t *testing.T) {
	err := NewTimeoutError("http://svc/chat", context.DeadlineExceeded)

	if err.Error() != "request to http://svc/chat timed out" {
		t.Errorf("Error() = %s", err.Error())
	}
	if !IsNetworkError(err) {
		t.Error("TimeoutError should be classified as a network failure")
	}
	if !IsTimeoutError(err) {
		t.Error("IsTimeoutError() = false")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("TimeoutError should unwrap to context.DeadlineExceeded")
	}

	if NewTimeoutError("", nil).Error() != "request timed out" {
		t.Error("unexpected message for empty endpoint")
	}
}

func TestServerError(t *testing.T) {
	tests := []struct {
		name     string
		err      *ServerError
		expected string
	}{
		{
			name:     "with detail",
			err:      NewServerError(500, "http://svc/chat", "Could not connect to Ollama", `{"detail":"Could not connect to Ollama"}`),
			expected: "server returned HTTP 500 at http://svc/chat: Could not connect to Ollama",
		},
		{
			name:     "without detail",
			err:      NewServerError(404, "http://svc/chat", "", ""),
			expected: "server returned HTTP 404 at http://svc/chat",
		},
		{
			name:     "without endpoint",
			err:      NewServerError(502, "", "", ""),
			expected: "server returned HTTP 502",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.expected {
				t.Errorf("Error() = %s, want %s", tt.err.Error(), tt.expected)
			}
			if !IsServerError(tt.err) {
				t.Error("IsServerError() = false")
			}
		})
	}
}

func TestParseError(t *testing.T) {
	err := NewParseError("missing field", "message.content")
	if err.Error() != `parse error: missing field (path "message.content")` {
		t.Errorf("Error() = %s", err.Error())
	}
	if NewParseError("invalid JSON", "").Error() != "parse error: invalid JSON" {
		t.Error("unexpected message without path")
	}
	if !errors.Is(err, ErrMalformedResponse) {
		t.Error("ParseError should match ErrMalformedResponse")
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, KindUnknown},
		{"plain", errors.New("boom"), KindUnknown},
		{"network", NewNetworkError("chat", "", nil), KindNetwork},
		{"timeout", NewTimeoutError("", nil), KindNetwork},
		{"server", NewServerError(500, "", "", ""), KindServer},
		{"malformed", NewParseError("bad", ""), KindMalformed},
		{"wrapped server", fmt.Errorf("chat: %w", NewServerError(503, "", "", "")), KindServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Kind(tt.err); got != tt.want {
				t.Errorf("Kind() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorKindString(t *testing.T) {
	names := map[ErrorKind]string{
		KindUnknown:   "unknown",
		KindNetwork:   "network",
		KindServer:    "server",
		KindMalformed: "malformed",
	}
	for kind, want := range names {
		if kind.String() != want {
			t.Errorf("%d.String() = %s, want %s", kind, kind.String(), want)
		}
	}
}

func TestAccessors(t *testing.T) {
	server := fmt.Errorf("wrapped: %w", NewServerError(500, "http://svc/chat", "d", "body"))
	if GetHTTPStatus(server) != 500 {
		t.Errorf("GetHTTPStatus() = %d", GetHTTPStatus(server))
	}
	if GetEndpoint(server) != "http://svc/chat" {
		t.Errorf("GetEndpoint() = %s", GetEndpoint(server))
	}
	if GetResponseBody(server) != "body" {
		t.Errorf("GetResponseBody() = %s", GetResponseBody(server))
	}

	network := NewNetworkError("chat", "http://svc/chat", nil)
	if GetHTTPStatus(network) != 0 {
		t.Error("network errors carry no status")
	}
	if GetEndpoint(network) != "http://svc/chat" {
		t.Error("network error endpoint not returned")
	}
	if GetEndpoint(NewTimeoutError("http://t", nil)) != "http://t" {
		t.Error("timeout error endpoint not returned")
	}
	if GetEndpoint(errors.New("x")) != "" || GetResponseBody(errors.New("x")) != "" {
		t.Error("plain errors carry no endpoint or body")
	}
}
