package conversation

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diogo/chatllm/internal/api"
	apierrors "github.com/diogo/chatllm/internal/errors"
	"github.com/diogo/chatllm/internal/models"
)

var fixedTime = time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedTime }

func newTestController(completer Completer) *Controller {
	return New(completer, WithClock(fixedClock), WithID("test-conversation"))
}

type turn struct {
	role    models.Role
	content string
}

func turns(msgs []models.Message) []turn {
	out := make([]turn, len(msgs))
	for i, m := range msgs {
		out[i] = turn{m.Role, m.Content}
	}
	return out
}

func TestNew(t *testing.T) {
	c := New(&api.MockClient{})
	assert.NotEmpty(t, c.ID())
	assert.Equal(t, StateIdle, c.State())
	assert.False(t, c.Pending())
	assert.Zero(t, c.Len())

	other := New(&api.MockClient{})
	assert.NotEqual(t, c.ID(), other.ID())

	assert.Equal(t, "fixed", New(&api.MockClient{}, WithID("fixed")).ID())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "awaiting", StateAwaiting.String())
}

func TestSend_AppendsReply(t *testing.T) {
	mock := &api.MockClient{Reply: "Hi there"}
	c := newTestController(mock)

	reply, err := c.Send(context.Background(), "Hello")
	require.NoError(t, err)

	assert.Equal(t, models.RoleAssistant, reply.Role)
	assert.Equal(t, "Hi there", reply.Content)
	assert.False(t, reply.Failed)
	assert.Equal(t, []turn{
		{models.RoleUser, "Hello"},
		{models.RoleAssistant, "Hi there"},
	}, turns(c.Messages()))
	assert.False(t, c.Pending())

	require.Equal(t, 1, mock.CallCount())
	assert.Equal(t, []models.WireMessage{{Role: models.RoleUser, Content: "Hello"}}, mock.Calls()[0])
}

func TestSend_ReplyLookingLikeErrorIsNotFailed(t *testing.T) {
	c := newTestController(&api.MockClient{Reply: "Error: is a Go interface type with one method."})

	reply, err := c.Send(context.Background(), "What is error in Go?")
	require.NoError(t, err)
	assert.False(t, reply.Failed)
	assert.Equal(t, "Error: is a Go interface type with one method.", reply.Content)
}

func TestSend_NetworkFailureBecomesReply(t *testing.T) {
	mock := &api.MockClient{
		Err: apierrors.NewNetworkError("chat", "http://127.0.0.1:11434/api/chat", errors.New("connection refused")),
	}
	c := newTestController(mock)

	reply, err := c.Send(context.Background(), "Hello")
	require.NoError(t, err, "round trip failures are never returned")

	msgs := c.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, turn{models.RoleUser, "Hello"}, turns(msgs)[0])
	assert.Equal(t, models.RoleAssistant, msgs[1].Role)
	assert.True(t, msgs[1].Failed)
	assert.False(t, msgs[0].Failed)
	assert.True(t, strings.HasPrefix(msgs[1].Content, "Error: "))
	assert.Contains(t, msgs[1].Content, "connection refused")
	assert.Equal(t, msgs[1], reply)
	assert.False(t, c.Pending())
}

func TestSend_RejectsEmptyMessage(t *testing.T) {
	mock := &api.MockClient{Reply: "unused"}
	c := newTestController(mock)
	before := c.Snapshot()

	for _, text := range []string{"", "   ", "\n\t "} {
		_, err := c.Send(context.Background(), text)
		assert.ErrorIs(t, err, ErrEmptyMessage)
	}

	after := c.Snapshot()
	assert.Equal(t, before, after)
	assert.False(t, after.Pending())
	assert.Zero(t, mock.CallCount())
}

func TestSend_RejectsWhileAwaiting(t *testing.T) {
	mock := &api.MockClient{
		Started: make(chan struct{}, 2),
		Gate:    make(chan struct{}),
		Handler: func(history []models.WireMessage) (string, error) {
			return "reply to " + history[len(history)-1].Content, nil
		},
	}
	c := newTestController(mock)

	done := make(chan error, 1)
	go func() {
		_, err := c.Send(context.Background(), "A")
		done <- err
	}()

	<-mock.Started
	assert.True(t, c.Pending())
	snap := c.Snapshot()

	_, err := c.Send(context.Background(), "B")
	assert.ErrorIs(t, err, ErrBusy)
	assert.Equal(t, snap, c.Snapshot(), "a busy rejection changes nothing")
	assert.Equal(t, 1, mock.CallCount())

	close(mock.Gate)
	require.NoError(t, <-done)
	assert.False(t, c.Pending())

	_, err = c.Send(context.Background(), "B")
	require.NoError(t, err)

	assert.Equal(t, []turn{
		{models.RoleUser, "A"},
		{models.RoleAssistant, "reply to A"},
		{models.RoleUser, "B"},
		{models.RoleAssistant, "reply to B"},
	}, turns(c.Messages()))

	calls := mock.Calls()
	require.Len(t, calls, 2)
	assert.Len(t, calls[1], 3, "second request carries the full history")
}

func TestSend_IdleAfterFailure(t *testing.T) {
	completers := map[string]Completer{
		"success": &api.MockClient{Reply: "ok"},
		"network": &api.MockClient{Err: apierrors.NewNetworkError("chat", "http://x", errors.New("down"))},
		"server":  &api.MockClient{Err: apierrors.NewServerError(500, "http://x", "boom", "")},
		"parse":   &api.MockClient{Err: apierrors.NewParseError("missing reply field", "message.content")},
		"unknown": &api.MockClient{Err: errors.New("weird")},
	}

	for name, completer := range completers {
		t.Run(name, func(t *testing.T) {
			c := newTestController(completer)
			_, err := c.Send(context.Background(), "hi")
			require.NoError(t, err)
			assert.Equal(t, StateIdle, c.State())
		})
	}
}

func TestSend_TwoMessagesPerTurn(t *testing.T) {
	calls := 0
	mock := &api.MockClient{
		Handler: func(history []models.WireMessage) (string, error) {
			calls++
			if calls%2 == 0 {
				return "", errors.New("every other call fails")
			}
			return "ok", nil
		},
	}
	c := newTestController(mock)

	for i := 1; i <= 6; i++ {
		_, err := c.Send(context.Background(), "message")
		require.NoError(t, err)

		msgs := c.Messages()
		require.Len(t, msgs, 2*i)
		assert.Equal(t, models.RoleUser, msgs[2*i-2].Role)
		assert.Equal(t, models.RoleAssistant, msgs[2*i-1].Role)
	}

	msgs := c.Messages()
	for i := 1; i < len(msgs); i++ {
		assert.Greater(t, msgs[i].ID, msgs[i-1].ID, "ids increase with position")
	}
	assert.Equal(t, uint64(1), msgs[0].ID)
}

func TestSend_ServerErrorBecomesReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail":"upstream model crashed"}`))
	}))
	defer server.Close()

	client, err := api.NewClient(server.URL)
	require.NoError(t, err)
	c := newTestController(client)

	reply, err := c.Send(context.Background(), "Hello")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAssistant, reply.Role)
	assert.Equal(t, "Error: chat service returned HTTP 500: upstream model crashed", reply.Content)
	assert.False(t, c.Pending())
}

func TestSend_OverHTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":{"content":"Hi there"}}`))
	}))
	defer server.Close()

	client, err := api.NewClient(server.URL)
	require.NoError(t, err)
	c := newTestController(client)

	_, err = c.Send(context.Background(), "Hello")
	require.NoError(t, err)
	assert.Equal(t, []turn{
		{models.RoleUser, "Hello"},
		{models.RoleAssistant, "Hi there"},
	}, turns(c.Messages()))
}

func TestSend_WhitespaceWhileAwaiting(t *testing.T) {
	mock := &api.MockClient{Started: make(chan struct{}, 1), Gate: make(chan struct{})}
	c := newTestController(mock)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = c.Send(context.Background(), "first")
	}()
	<-mock.Started

	_, err := c.Send(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.True(t, c.Pending(), "pending is unchanged by a rejected send")
	assert.Equal(t, 1, c.Len())

	close(mock.Gate)
	wg.Wait()
	assert.Equal(t, 2, c.Len())
}

func TestSend_TrimsContent(t *testing.T) {
	mock := &api.MockClient{Reply: "ok"}
	c := newTestController(mock)

	_, err := c.Send(context.Background(), "  Hello\n")
	require.NoError(t, err)
	assert.Equal(t, "Hello", c.Messages()[0].Content)
	assert.Equal(t, "Hello", mock.Calls()[0][0].Content)
}

func TestSend_ContextCancelled(t *testing.T) {
	mock := &api.MockClient{Gate: make(chan struct{})}
	c := newTestController(mock)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reply, err := c.Send(ctx, "Hello")
	require.NoError(t, err)
	assert.Equal(t, "Error: request cancelled", reply.Content)
	assert.False(t, c.Pending())
}

func TestSend_PanickingCompleterLeavesIdle(t *testing.T) {
	mock := &api.MockClient{
		Handler: func([]models.WireMessage) (string, error) {
			panic("completer bug")
		},
	}
	c := newTestController(mock)

	assert.Panics(t, func() {
		_, _ = c.Send(context.Background(), "Hello")
	})
	assert.Equal(t, StateIdle, c.State())

	mock.Handler = nil
	mock.Reply = "recovered"
	_, err := c.Send(context.Background(), "again")
	require.NoError(t, err)
	assert.Equal(t, "recovered", c.Messages()[c.Len()-1].Content)
}

func TestSnapshot_IsACopy(t *testing.T) {
	c := newTestController(&api.MockClient{Reply: "Hi"})
	_, err := c.Send(context.Background(), "Hello")
	require.NoError(t, err)

	snap := c.Snapshot()
	snap.Messages[0].Content = "tampered"
	snap.Messages = append(snap.Messages, models.Message{})

	assert.Equal(t, "Hello", c.Messages()[0].Content)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, "test-conversation", snap.ID)
	assert.Equal(t, fixedTime, c.Messages()[0].CreatedAt)
}

func TestSnapshot_VersionAdvances(t *testing.T) {
	c := newTestController(&api.MockClient{Reply: "Hi"})
	v0 := c.Snapshot().Version

	_, err := c.Send(context.Background(), "Hello")
	require.NoError(t, err)
	v1 := c.Snapshot().Version
	assert.Greater(t, v1, v0)

	_, _ = c.Send(context.Background(), " ")
	assert.Equal(t, v1, c.Snapshot().Version)
}

func TestSend_Logging(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	c := New(&api.MockClient{Err: apierrors.NewServerError(503, "http://x", "", "")},
		WithLogger(logger), WithID("log-test"))
	_, err := c.Send(context.Background(), "Hello")
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"conversation":"log-test"`)
	assert.Contains(t, out, `"kind":"server"`)
	assert.Contains(t, out, "chat round trip failed")
}
