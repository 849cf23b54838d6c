package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	http "github.com/bogdanfinn/fhttp"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/chatllm/internal/errors"
	"github.com/diogo/chatllm/internal/models"
)

// chatRequest is the JSON body of a chat request. The full history is sent on
// every turn; the service keeps no conversation state of its own.
type chatRequest struct {
	Model    string               `json:"model,omitempty"`
	Messages []models.WireMessage `json:"messages"`
	Stream   bool                 `json:"stream"`
}

// Complete sends the conversation history to the chat service and returns the
// reply text. Failures are typed: NetworkError/TimeoutError, ServerError or
// ParseError from the internal errors package.
func (c *Client) Complete(ctx context.Context, history []models.WireMessage) (string, error) {
	if len(history) == 0 {
		return "", fmt.Errorf("history cannot be empty")
	}

	endpoint := c.ChatURL()

	payload, err := json.Marshal(chatRequest{
		Model:    c.model,
		Messages: history,
		Stream:   false,
	})
	if err != nil {
		return "", fmt.Errorf("failed to build payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Str("endpoint", endpoint).Dur("elapsed", time.Since(start)).Msg("chat request failed")
		return "", transportError(ctx, "chat", endpoint, err)
	}
	defer func() {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", transportError(ctx, "read response", endpoint, err)
	}

	c.logger.Debug().
		Str("endpoint", endpoint).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Int("history", len(history)).
		Dur("elapsed", time.Since(start)).
		Msg("chat request completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", newServerError(resp.StatusCode, endpoint, body)
	}

	return parseReply(body, c.responsePath)
}

// Ping checks that the service answers on its base URL
func (c *Client) Ping(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.headers["User-Agent"])

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, transportError(ctx, "ping", c.baseURL, err)
	}
	defer func() {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
	}()

	if resp.StatusCode >= 500 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return resp.StatusCode, newServerError(resp.StatusCode, c.baseURL, body)
	}
	return resp.StatusCode, nil
}

// parseReply extracts the reply text at path from a successful response body
func parseReply(body []byte, path string) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", apierrors.NewParseError("response is not valid JSON", "")
	}

	result := gjson.GetBytes(body, path)
	if !result.Exists() {
		return "", apierrors.NewParseError("missing reply field", path)
	}
	if result.Type != gjson.String {
		return "", apierrors.NewParseError(fmt.Sprintf("reply field is %s, not a string", result.Type), path)
	}

	return result.String(), nil
}

// newServerError builds a ServerError, pulling a readable detail out of body
func newServerError(status int, endpoint string, body []byte) *apierrors.ServerError {
	raw := body
	if len(raw) > maxErrorBodyBytes {
		raw = raw[:runeBoundary(raw, maxErrorBodyBytes)]
	}
	return apierrors.NewServerError(status, endpoint, errorDetail(body), string(raw))
}

// errorDetail returns the most specific message found in an error body
func errorDetail(body []byte) string {
	if gjson.ValidBytes(body) {
		for _, path := range errorDetailPaths {
			if r := gjson.GetBytes(body, path); r.Type == gjson.String && r.String() != "" {
				return truncate(r.String(), maxDetailLength)
			}
		}
		return ""
	}

	text := strings.TrimSpace(string(body))
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	return truncate(text, maxDetailLength)
}

// transportError classifies a failed Do or body read
func transportError(ctx context.Context, operation, endpoint string, err error) error {
	var timeout interface{ Timeout() bool }
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) ||
		(errors.As(err, &timeout) && timeout.Timeout()) {
		return apierrors.NewTimeoutError(endpoint, err)
	}
	return apierrors.NewNetworkError(operation, endpoint, err)
}

// truncate shortens s to at most n bytes without splitting a UTF-8 sequence
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:runeBoundary([]byte(s), n-3)] + "..."
}

// runeBoundary returns the largest cut point <= n that starts a rune in b
func runeBoundary(b []byte, n int) int {
	if n >= len(b) {
		return len(b)
	}
	for n > 0 && !utf8.RuneStart(b[n]) {
		n--
	}
	return n
}
