package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/chatllm/internal/conversation"
	"github.com/diogo/chatllm/internal/models"
)

// Layout rows taken by the panels around the message viewport
const (
	headerRows  = 4
	inputRows   = 6
	statusRows  = 2
	paddingRows = 2
	minViewport = 5
)

type (
	// sentMsg is delivered when a Send call returns
	sentMsg struct {
		err error
	}
	exportedMsg struct {
		path string
		err  error
	}
)

// Conversation is the part of conversation.Controller the TUI drives
type Conversation interface {
	Send(ctx context.Context, text string) (models.Message, error)
	Snapshot() conversation.Snapshot
}

// Options describes the session shown in the header
type Options struct {
	ModelName string
	BaseURL   string
}

// Model represents the TUI state. Messages are never edited here; they are
// copied from the conversation snapshot whenever its version changes.
type Model struct {
	ctx  context.Context
	conv Conversation
	opts Options

	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	messages []models.Message
	version  uint64
	loading  bool
	sentAt   time.Time
	ready    bool
	notice   string
	err      error

	// Dimensions
	width  int
	height int
}

// NewChatModel creates a chat model bound to conv
func NewChatModel(ctx context.Context, conv Conversation, opts Options) Model {
	ta := textarea.New()
	ta.Placeholder = "Type your message here..."
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(loadingStyle))

	snap := conv.Snapshot()

	return Model{
		ctx:      ctx,
		conv:     conv,
		opts:     opts,
		textarea: ta,
		spinner:  s,
		messages: snap.Messages,
		version:  snap.Version,
		loading:  snap.Pending(),
	}
}

func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update routes key presses to submit and polls the conversation while a
// reply is pending.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := max(m.height-headerRows-inputRows-statusRows-paddingRows, minViewport)
		width := m.width - 4

		if m.ready {
			m.viewport.Width, m.viewport.Height = width, vpHeight
		} else {
			m.viewport = viewport.New(width, vpHeight)
			m.ready = true
		}
		m.textarea.SetWidth(width - 4)
		m.updateViewport()
		m.viewport.GotoBottom()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "esc":
			if m.loading {
				m.notice = "Waiting for the reply. Press Ctrl+C to quit anyway."
				return m, nil
			}
			return m, tea.Quit

		case "enter":
			return m.submit()
		}

	case sentMsg:
		m.loading = false
		switch {
		case errors.Is(msg.err, conversation.ErrBusy):
			m.notice = "A reply is still pending."
		case errors.Is(msg.err, conversation.ErrEmptyMessage):
			m.notice = ""
		case msg.err != nil:
			m.err = msg.err
		}
		m.syncFromSnapshot()

	case exportedMsg:
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.notice = fmt.Sprintf("Transcript saved to %s", msg.path)
		}

	case spinner.TickMsg:
		// Ticks stop once the reply lands
		if m.loading {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
			m.syncFromSnapshot()
		}
	}

	// Only pass KeyMsg to textarea to prevent escape sequence leaks
	if !m.loading {
		if _, ok := msg.(tea.KeyMsg); ok {
			m.textarea, cmd = m.textarea.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// submit handles Enter: commands, or a new user turn when idle
func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.loading || m.conv.Snapshot().Pending() {
		return m, nil
	}

	input := strings.TrimSpace(m.textarea.Value())
	if input == "" {
		m.textarea.Reset()
		return m, nil
	}

	switch input {
	case "exit", "quit", "/exit", "/quit":
		return m, tea.Quit
	}

	if fields := strings.Fields(input); fields[0] == "/export" {
		m.textarea.Reset()
		if len(fields) != 2 {
			m.notice = "Usage: /export <file.md|file.json>"
			return m, nil
		}
		return m, m.exportTranscript(fields[1])
	}

	m.textarea.Reset()
	m.loading = true
	m.sentAt = time.Now()
	m.err = nil
	m.notice = ""

	return m, tea.Batch(m.send(input), m.spinner.Tick)
}

// send runs one controller turn off the update loop
func (m Model) send(text string) tea.Cmd {
	ctx, conv := m.ctx, m.conv
	return func() tea.Msg {
		_, err := conv.Send(ctx, text)
		return sentMsg{err: err}
	}
}

func (m Model) exportTranscript(path string) tea.Cmd {
	snap := m.conv.Snapshot()
	return func() tea.Msg {
		return exportedMsg{path: path, err: conversation.WriteTranscript(path, snap)}
	}
}

// syncFromSnapshot copies the conversation into the view when it changed
func (m *Model) syncFromSnapshot() {
	snap := m.conv.Snapshot()
	if snap.Version == m.version {
		return
	}
	m.messages = snap.Messages
	m.version = snap.Version
	if m.ready {
		m.updateViewport()
		m.viewport.GotoBottom()
	}
}

func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	var sections []string
	contentWidth := m.width - 4

	headerParts := []string{
		titleStyle.Render("✦ chatllm"),
		hintStyle.Render("  •  "),
		subtitleStyle.Render(m.opts.ModelName),
	}
	if m.opts.BaseURL != "" {
		headerParts = append(headerParts,
			hintStyle.Render("  •  "),
			hintStyle.Render(m.opts.BaseURL),
		)
	}
	sections = append(sections, headerStyle.Width(contentWidth).Render(
		lipgloss.JoinHorizontal(lipgloss.Center, headerParts...),
	))

	body := m.viewport.View()
	if len(m.messages) == 0 {
		body = m.renderWelcome()
	}
	sections = append(sections, messagesAreaStyle.Width(contentWidth).Height(m.viewport.Height).Render(body))

	input := lipgloss.JoinVertical(lipgloss.Left, inputLabelStyle.Render("You"), m.textarea.View())
	if m.loading {
		input = m.renderPending()
	}
	sections = append(sections, inputPanelStyle.Width(contentWidth).Render(input))

	sections = append(sections, m.renderStatusBar(contentWidth))

	switch {
	case m.err != nil:
		sections = append(sections, errorStyle.Render(fmt.Sprintf("⚠ %v", m.err)))
	case m.notice != "":
		sections = append(sections, noticeStyle.Render(m.notice))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderWelcome renders the welcome screen when no messages exist
func (m Model) renderWelcome() string {
	width := m.viewport.Width - 4
	height := m.viewport.Height

	icon := welcomeIconStyle.Width(width).Render("✦")
	title := welcomeTitleStyle.Width(width).Render("Welcome to chatllm")
	subtitle := welcomeStyle.Width(width).Render("Start a conversation by typing a message below")

	content := lipgloss.JoinVertical(lipgloss.Center, "", icon, "", title, "", subtitle, "")

	topPadding := (height - lipgloss.Height(content)) / 2
	if topPadding < 0 {
		topPadding = 0
	}
	return strings.Repeat("\n", topPadding) + content
}

// renderPending shows the spinner and how long the current turn has waited
func (m Model) renderPending() string {
	waited := time.Since(m.sentAt).Truncate(time.Second)
	return lipgloss.JoinHorizontal(lipgloss.Center,
		m.spinner.View(),
		loadingStyle.Render(" Waiting for reply"),
		hintStyle.Render(fmt.Sprintf(" from %s · %s", m.opts.ModelName, waited)),
	)
}

type shortcut struct {
	key  string
	desc string
}

func (m Model) renderStatusBar(width int) string {
	quit := shortcut{"Esc", "Quit"}
	if m.loading {
		quit = shortcut{"Ctrl+C", "Quit"}
	}
	shortcuts := []shortcut{
		{"Enter", "Send"},
		{"/export", "Save"},
		quit,
		{"↑↓", "Scroll"},
	}

	var items []string
	for _, s := range shortcuts {
		items = append(items, lipgloss.JoinHorizontal(
			lipgloss.Center,
			statusKeyStyle.Render(s.key),
			statusDescStyle.Render(" "+s.desc),
		))
	}

	bar := strings.Join(items, "  │  ")
	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(bar)
}

// updateViewport lays out one labelled bubble per message. Error turns keep
// the assistant side but use the error palette.
func (m *Model) updateViewport() {
	var content strings.Builder
	bubbleWidth := m.viewport.Width - 6
	if bubbleWidth < 10 {
		bubbleWidth = 10
	}

	for i, msg := range m.messages {
		if i > 0 {
			content.WriteString("\n")
		}

		switch {
		case msg.IsUser():
			content.WriteString(userLabelStyle.Render("● You") + "\n")
			content.WriteString(userBubbleStyle.Width(bubbleWidth).Render(msg.Content))
		case msg.Failed:
			content.WriteString(errorLabelStyle.Render("✗ Assistant") + "\n")
			content.WriteString(errorBubbleStyle.Width(bubbleWidth).Render(msg.Content))
		default:
			content.WriteString(assistantLabelStyle.Render("✦ Assistant") + "\n")
			content.WriteString(assistantBubbleStyle.Width(bubbleWidth).Render(msg.Content))
		}
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
}

// RunChat starts the chat TUI and blocks until the user quits
func RunChat(ctx context.Context, conv Conversation, opts Options) error {
	p := tea.NewProgram(
		NewChatModel(ctx, conv, opts),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	return err
}
