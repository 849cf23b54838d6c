// Package tui provides the interactive terminal chat interface.
package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette taken from the current theme
var (
	colorBorder    lipgloss.Color
	colorPrimary   lipgloss.Color
	colorSecondary lipgloss.Color
	colorAccent    lipgloss.Color
	colorWarning   lipgloss.Color
	colorError     lipgloss.Color
	colorText      lipgloss.Color
	colorTextDim   lipgloss.Color
	colorTextMute  lipgloss.Color
)

// Styles rebuilt by UpdateTheme
var (
	headerStyle       lipgloss.Style
	titleStyle        lipgloss.Style
	subtitleStyle     lipgloss.Style
	hintStyle         lipgloss.Style
	messagesAreaStyle lipgloss.Style

	userBubbleStyle      lipgloss.Style
	userLabelStyle       lipgloss.Style
	assistantBubbleStyle lipgloss.Style
	assistantLabelStyle  lipgloss.Style
	errorBubbleStyle     lipgloss.Style
	errorLabelStyle      lipgloss.Style

	inputPanelStyle lipgloss.Style
	inputLabelStyle lipgloss.Style
	loadingStyle    lipgloss.Style

	statusBarStyle  lipgloss.Style
	statusKeyStyle  lipgloss.Style
	statusDescStyle lipgloss.Style
	noticeStyle     lipgloss.Style
	errorStyle      lipgloss.Style

	welcomeStyle      lipgloss.Style
	welcomeTitleStyle lipgloss.Style
	welcomeIconStyle  lipgloss.Style
)

func init() {
	UpdateTheme()
}

// UpdateTheme refreshes all styles from the current theme
func UpdateTheme() {
	t := CurrentTheme()

	colorBorder, colorPrimary, colorSecondary = t.Border, t.Primary, t.Secondary
	colorAccent, colorWarning, colorError = t.Accent, t.Warning, t.Error
	colorText, colorTextDim, colorTextMute = t.Text, t.TextDim, t.TextMute

	rebuildStyles()
}

func panel(border lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(border)
}

func bubble(border lipgloss.Color) lipgloss.Style {
	return panel(border).Padding(0, 1)
}

func bold(fg lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(fg).Bold(true)
}

func plain(fg lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(fg)
}

func rebuildStyles() {
	headerStyle = panel(colorBorder).Padding(0, 2).MarginBottom(1)
	titleStyle = bold(colorPrimary)
	subtitleStyle = plain(colorTextDim)
	hintStyle = plain(colorTextMute).Italic(true)
	messagesAreaStyle = panel(colorBorder).Padding(1)

	// User turns sit on the right, replies on the left
	userBubbleStyle = bubble(colorSecondary).MarginLeft(4)
	userLabelStyle = bold(colorSecondary).MarginLeft(4)
	assistantBubbleStyle = bubble(colorPrimary).Foreground(colorText).MarginRight(4)
	assistantLabelStyle = bold(colorPrimary)
	errorBubbleStyle = bubble(colorError).Foreground(colorError).MarginRight(4)
	errorLabelStyle = bold(colorError)

	inputPanelStyle = bubble(colorBorder).MarginTop(1)
	inputLabelStyle = bold(colorPrimary).MarginRight(1)
	loadingStyle = bold(colorAccent)

	statusBarStyle = plain(colorTextMute).MarginTop(1)
	statusKeyStyle = bold(colorTextDim)
	statusDescStyle = plain(colorTextMute)
	noticeStyle = plain(colorWarning).Italic(true)
	errorStyle = bold(colorError)

	welcomeStyle = panel(colorPrimary).Padding(1, 2).MarginBottom(1).Align(lipgloss.Center)
	welcomeTitleStyle = bold(colorPrimary).MarginBottom(1)
	welcomeIconStyle = plain(colorAccent).MarginBottom(1)
}
