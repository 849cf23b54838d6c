// Package conversation implements the chat turn state machine.
package conversation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	apierrors "github.com/diogo/chatllm/internal/errors"
	"github.com/diogo/chatllm/internal/models"
)

// State is the controller's in-flight flag
type State int

const (
	StateIdle State = iota
	StateAwaiting
)

func (s State) String() string {
	if s == StateAwaiting {
		return "awaiting"
	}
	return "idle"
}

// Rejections returned by Send. Neither one changes the conversation.
var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrBusy         = errors.New("a reply is already pending")
)

// Completer is the remote chat service as seen by the controller
type Completer interface {
	Complete(ctx context.Context, history []models.WireMessage) (string, error)
}

// Snapshot is a read-only copy of the conversation
type Snapshot struct {
	ID       string
	Messages []models.Message
	State    State
	Version  uint64 // incremented on every change
}

// Pending reports whether a reply is outstanding
func (s Snapshot) Pending() bool {
	return s.State == StateAwaiting
}

// Controller owns the message list and sends user turns to a Completer.
// It is safe for concurrent use.
type Controller struct {
	completer Completer
	id        string
	now       func() time.Time
	logger    zerolog.Logger

	mu       sync.Mutex
	messages []models.Message
	state    State
	lastID   uint64
	version  uint64
}

// Option configures a Controller
type Option func(*Controller)

// WithLogger sets the controller logger
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithClock overrides the timestamp source
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// WithID sets the conversation ID instead of generating one
func WithID(id string) Option {
	return func(c *Controller) {
		c.id = id
	}
}

// New creates an idle, empty conversation backed by completer
func New(completer Completer, opts ...Option) *Controller {
	c := &Controller{
		completer: completer,
		now:       time.Now,
		logger:    zerolog.Nop(),
		state:     StateIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.id == "" {
		c.id = uuid.NewString()
	}
	c.logger = c.logger.With().Str("conversation", c.id).Logger()
	return c
}

// Send submits one user turn and blocks until the assistant turn is appended.
//
// Whitespace-only text returns ErrEmptyMessage and a call made while another
// is pending returns ErrBusy; both leave the conversation untouched. Otherwise
// exactly two messages are appended, the user turn then the assistant turn,
// and the error is nil: a failed round trip becomes an assistant message
// with Failed set and content starting with "Error: ".
func (c *Controller) Send(ctx context.Context, text string) (models.Message, error) {
	content := strings.TrimSpace(text)
	if content == "" {
		c.logger.Debug().Msg("rejected empty message")
		return models.Message{}, ErrEmptyMessage
	}

	c.mu.Lock()
	if c.state == StateAwaiting {
		c.mu.Unlock()
		c.logger.Warn().Msg("rejected message while a reply is pending")
		return models.Message{}, ErrBusy
	}
	user := c.appendLocked(models.RoleUser, content, false)
	c.state = StateAwaiting
	c.version++
	history := models.WireHistory(c.messages)
	c.mu.Unlock()

	defer c.settle()

	c.logger.Debug().Uint64("message", user.ID).Int("history", len(history)).Msg("sending message")

	start := c.now()
	reply, err := c.completer.Complete(ctx, history)
	if err != nil {
		c.logger.Warn().
			Err(err).
			Str("kind", apierrors.Kind(err).String()).
			Dur("elapsed", c.now().Sub(start)).
			Msg("chat round trip failed")
		reply = ErrorContent(err)
	} else {
		c.logger.Debug().Int("length", len(reply)).Dur("elapsed", c.now().Sub(start)).Msg("received reply")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	assistant := c.appendLocked(models.RoleAssistant, reply, err != nil)
	c.state = StateIdle
	c.version++
	return assistant, nil
}

// settle returns the controller to Idle if Send exits without appending a
// reply, which only happens when the completer panics.
func (c *Controller) settle() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateAwaiting {
		c.state = StateIdle
		c.version++
	}
}

func (c *Controller) appendLocked(role models.Role, content string, failed bool) models.Message {
	c.lastID++
	msg := models.Message{
		ID:        c.lastID,
		Role:      role,
		Content:   content,
		CreatedAt: c.now(),
		Failed:    failed,
	}
	c.messages = append(c.messages, msg)
	return msg
}

// Snapshot returns a consistent copy of the conversation
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		ID:       c.id,
		Messages: c.copyLocked(),
		State:    c.state,
		Version:  c.version,
	}
}

// Messages returns a copy of the message list
func (c *Controller) Messages() []models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copyLocked()
}

func (c *Controller) copyLocked() []models.Message {
	out := make([]models.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// State returns the current state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Pending reports whether a reply is outstanding
func (c *Controller) Pending() bool {
	return c.State() == StateAwaiting
}

// Len returns the number of messages
func (c *Controller) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

// ID returns the conversation ID
func (c *Controller) ID() string {
	return c.id
}
