package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diogo/chatllm/internal/tui"
)

// NewChatCmd creates the interactive chat command
func NewChatCmd(deps *Dependencies, gopts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Start an interactive chat session.

The whole conversation is sent with every message. It lives only for the
duration of the session; use /export <file> to save a transcript.
Type 'exit', 'quit', or press Ctrl+C to end the session.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// The TUI owns the terminal, so logs only go to a file
			sess, err := newSession(deps, gopts, nil)
			if err != nil {
				return err
			}
			defer sess.Close()

			if err := tui.SetTheme(sess.cfg.TUITheme); err != nil {
				sess.logger.Warn().Err(err).Msg("falling back to default theme")
				_ = tui.SetTheme(tui.DefaultThemeName)
			}

			sess.logger.Info().Str("conversation", sess.conv.ID()).Msg("chat started")
			err = deps.RunChat(cmd.Context(), sess.conv, tui.Options{
				ModelName: sess.cfg.Model,
				BaseURL:   sess.cfg.BaseURL,
			})
			sess.logger.Info().Int("messages", sess.conv.Len()).Msg("chat ended")
			if err != nil {
				return fmt.Errorf("chat session failed: %w", err)
			}
			return nil
		},
	}
}
