package commands

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/atotto/clipboard"
	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/diogo/chatllm/internal/api"
	"github.com/diogo/chatllm/internal/config"
	"github.com/diogo/chatllm/internal/conversation"
	"github.com/diogo/chatllm/internal/tui"
)

// Dependencies holds the external dependencies for the commands.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	// LoadConfig reads the layered configuration (file, .env, environment)
	LoadConfig func() (config.Config, error)

	// NewCompleter builds the chat service client for cfg
	NewCompleter func(cfg config.Config, logger zerolog.Logger) (conversation.Completer, error)

	// RunChat runs the interactive TUI until the user quits
	RunChat func(ctx context.Context, conv tui.Conversation, opts tui.Options) error

	// CopyToClipboard places text on the system clipboard
	CopyToClipboard func(text string) error

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// StdinPiped reports whether Stdin carries redirected input
	StdinPiped func() bool

	// Interactive reports whether decorations (spinner, colors) should be drawn
	Interactive func() bool
}

// NewDependencies creates a new Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		LoadConfig:      config.Load,
		NewCompleter:    newAPICompleter,
		RunChat:         tui.RunChat,
		CopyToClipboard: clipboard.WriteAll,
		Stdin:           os.Stdin,
		Stdout:          os.Stdout,
		Stderr:          os.Stderr,
		StdinPiped:      stdinPiped,
		Interactive:     isStderrTTY,
	}
}

// newAPICompleter creates the HTTP chat client described by cfg
func newAPICompleter(cfg config.Config, logger zerolog.Logger) (conversation.Completer, error) {
	return newAPIClient(cfg, logger)
}

func newAPIClient(cfg config.Config, logger zerolog.Logger) (*api.Client, error) {
	return api.NewClient(cfg.BaseURL,
		api.WithChatPath(cfg.ChatPath),
		api.WithModel(cfg.Model),
		api.WithResponsePath(cfg.ResponsePath),
		api.WithTimeout(time.Duration(cfg.TimeoutSeconds)*time.Second),
		api.WithLogger(logger),
	)
}

// stdinPiped returns true if stdin is not a terminal
func stdinPiped() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// isStderrTTY returns true if stderr is connected to a terminal
func isStderrTTY() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}

// isStdoutTTY returns true if stdout is connected to a terminal
func isStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// getTerminalWidth returns the terminal width or a default value
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}
