package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	bubblespinner "github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/chatllm/internal/conversation"
	apierrors "github.com/diogo/chatllm/internal/errors"
	"github.com/diogo/chatllm/internal/models"
)

// errAlreadyReported marks a failure that has already been shown to the user,
// such as an error turn in a one-shot query.
var errAlreadyReported = errors.New("chat request failed")

var (
	colorText    = lipgloss.Color("#c0caf5")
	colorTextDim = lipgloss.Color("#565f89")
	colorSuccess = lipgloss.Color("#9ece6a")
	colorPrimary = lipgloss.Color("#7aa2f7")
	colorAccent  = lipgloss.Color("#bb9af7")
	colorError   = lipgloss.Color("#f7768e")
)

// Styles matching the chat TUI
var (
	assistantLabelStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	assistantBubbleStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary).
				Foreground(colorText).
				Padding(0, 1).
				MarginTop(1).
				MarginBottom(1)
)

// queryOptions holds the flags of a one-shot query
type queryOptions struct {
	output     string
	file       string
	raw        bool
	copy       bool
	transcript string
}

// spinner draws a waiting line on out until stopped. Frames come from the
// bubbles spinner set used by the chat TUI.
type spinner struct {
	out     io.Writer
	message string
	frames  bubblespinner.Spinner
	started time.Time

	stop    chan struct{}
	done    chan struct{}
	mu      sync.Mutex
	stopped bool
}

func newSpinner(out io.Writer, message string) *spinner {
	return &spinner{
		out:     out,
		message: message,
		frames:  bubblespinner.MiniDot,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

func (s *spinner) start() {
	s.started = time.Now()
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(s.frames.FPS)
		defer ticker.Stop()

		fmt.Fprint(s.out, "\033[?25l")
		for frame := 0; ; frame++ {
			select {
			case <-s.stop:
				fmt.Fprint(s.out, "\r\033[K\033[?25h")
				return
			case <-ticker.C:
				s.render(frame)
			}
		}
	}()
}

func (s *spinner) render(frame int) {
	glyph := lipgloss.NewStyle().Foreground(colorAccent).Bold(true).
		Render(s.frames.Frames[frame%len(s.frames.Frames)])
	msg := lipgloss.NewStyle().Foreground(colorText).Render(s.message)
	waited := lipgloss.NewStyle().Foreground(colorTextDim).
		Render(time.Since(s.started).Truncate(time.Second).String())
	fmt.Fprintf(s.out, "\r\033[K%s %s %s", glyph, msg, waited)
}

// stopOnce closes the stop channel at most once
func (s *spinner) stopOnce() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		close(s.stop)
		s.stopped = true
	}
}

func (s *spinner) stopWithSuccess(message string) {
	s.stopOnce()
	<-s.done

	checkmark := lipgloss.NewStyle().Foreground(colorSuccess).Bold(true).Render("✓")
	msg := lipgloss.NewStyle().Foreground(colorSuccess).Render(message)
	fmt.Fprintf(s.out, "%s %s\n", checkmark, msg)
}

func (s *spinner) stopWithError() {
	s.stopOnce()
	<-s.done
}

// readPrompt picks the prompt from --file, the positional argument or piped
// stdin, in that order. ok is false when no input was given.
func readPrompt(deps *Dependencies, qopts *queryOptions, args []string) (prompt string, ok bool, err error) {
	if qopts.file != "" {
		data, err := os.ReadFile(qopts.file)
		if err != nil {
			return "", false, fmt.Errorf("failed to read file: %w", err)
		}
		return string(data), true, nil
	}

	if len(args) > 0 {
		return args[0], true, nil
	}

	// Redirected but empty stdin (cron, CI, </dev/null) counts as no input
	if deps.StdinPiped() {
		data, err := io.ReadAll(deps.Stdin)
		if err != nil {
			return "", false, fmt.Errorf("failed to read stdin: %w", err)
		}
		if strings.TrimSpace(string(data)) != "" {
			return string(data), true, nil
		}
	}

	return "", false, nil
}

// runQuery sends a single user turn through a fresh conversation and prints the reply
func runQuery(ctx context.Context, deps *Dependencies, gopts *globalOptions, qopts *queryOptions, prompt string) error {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return fmt.Errorf("prompt cannot be empty")
	}

	sess, err := newSession(deps, gopts, deps.Stderr)
	if err != nil {
		return err
	}
	defer sess.Close()

	decorate := !qopts.raw && deps.Interactive()

	var spin *spinner
	if decorate {
		spin = newSpinner(deps.Stderr, fmt.Sprintf("Waiting for %s", sess.cfg.Model))
		spin.start()
	}

	reply, err := sess.conv.Send(ctx, prompt)
	if err != nil {
		if spin != nil {
			spin.stopWithError()
		}
		return err
	}

	if qopts.transcript != "" {
		if err := conversation.WriteTranscript(qopts.transcript, sess.conv.Snapshot()); err != nil {
			sess.logger.Warn().Err(err).Str("path", qopts.transcript).Msg("transcript not written")
			fmt.Fprintf(deps.Stderr, "Warning: %v\n", err)
		}
	}

	if failure := sess.recorder.lastErr; failure != nil {
		if spin != nil {
			spin.stopWithError()
		}
		if qopts.raw {
			fmt.Fprintln(deps.Stderr, reply.Content)
		} else {
			fmt.Fprintln(deps.Stderr, formatErrorMessage(failure, strings.TrimPrefix(reply.Content, models.ErrorPrefix)))
		}
		return errAlreadyReported
	}

	if spin != nil {
		spin.stopWithSuccess("Done")
	}

	text := reply.Content

	if qopts.raw {
		if qopts.output != "" {
			if err := os.WriteFile(qopts.output, []byte(text), 0o644); err != nil {
				return fmt.Errorf("failed to write output file: %w", err)
			}
			return nil
		}
		fmt.Fprint(deps.Stdout, text)
		return nil
	}

	if qopts.copy || sess.cfg.CopyToClipboard {
		if err := deps.CopyToClipboard(text); err != nil {
			warnMsg := lipgloss.NewStyle().Foreground(colorError).Render(
				fmt.Sprintf("⚠ Failed to copy to clipboard: %v", err),
			)
			fmt.Fprintln(deps.Stderr, warnMsg)
		} else {
			fmt.Fprintln(deps.Stderr, lipgloss.NewStyle().Foreground(colorSuccess).Render("✓ Copied to clipboard"))
		}
	}

	if qopts.output != "" {
		if err := os.WriteFile(qopts.output, []byte(text), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Fprintln(deps.Stderr, lipgloss.NewStyle().Foreground(colorSuccess).Render(
			fmt.Sprintf("✓ Response saved to %s", qopts.output),
		))
		return nil
	}

	// Piped stdout gets the bare reply
	if !isStdoutTTY() {
		fmt.Fprintln(deps.Stdout, text)
		return nil
	}

	bubbleWidth := getTerminalWidth() - 4
	if bubbleWidth < 40 {
		bubbleWidth = 40
	}
	if bubbleWidth > 120 {
		bubbleWidth = 120
	}

	fmt.Fprintln(deps.Stdout, assistantLabelStyle.Render("✦ "+sess.cfg.Model))
	fmt.Fprintln(deps.Stdout, assistantBubbleStyle.Width(bubbleWidth).Render(text))
	return nil
}

// formatErrorMessage formats an error with additional context from structured errors
func formatErrorMessage(err error, summary string) string {
	if err == nil {
		return ""
	}

	errorStyle := lipgloss.NewStyle().Foreground(colorError)
	dimStyle := lipgloss.NewStyle().Foreground(colorTextDim)

	var sb strings.Builder
	sb.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s", summary)))

	if status := apierrors.GetHTTPStatus(err); status > 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  HTTP Status: %d", status)))
	}

	if endpoint := apierrors.GetEndpoint(err); endpoint != "" {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  Endpoint: %s", endpoint)))
	}

	switch {
	case apierrors.IsTimeoutError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: The request timed out. Raise timeout_seconds or try again"))
	case apierrors.IsNetworkError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Check that the chat service is running (chatllm doctor)"))
	case apierrors.IsMalformedResponse(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Check response_path matches the service's reply format"))
	case apierrors.IsServerError(err):
		if body := apierrors.GetResponseBody(err); body != "" {
			sb.WriteString(dimStyle.Render(fmt.Sprintf("\n\n  %s", strings.ReplaceAll(body, "\n", "\n  "))))
		}
	}

	return sb.String()
}
