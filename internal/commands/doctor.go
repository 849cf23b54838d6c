package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/diogo/chatllm/internal/config"
	"github.com/diogo/chatllm/internal/logging"
)

const doctorTimeout = 5 * time.Second

// NewDoctorCmd creates the doctor command, which reports the effective
// settings and whether the chat service answers.
func NewDoctorCmd(deps *Dependencies, gopts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration and chat service reachability",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(deps, gopts)
			if err != nil {
				return err
			}

			logger, closer, err := logging.New(logging.Options{
				Level:    cfg.LogLevel,
				File:     cfg.LogFile,
				Fallback: deps.Stderr,
			})
			if err != nil {
				return err
			}
			defer closer.Close()

			keyStyle := lipgloss.NewStyle().Foreground(colorTextDim).Width(16)
			row := func(key, value string) {
				fmt.Fprintf(deps.Stdout, "%s %s\n", keyStyle.Render(key), value)
			}

			configPath, _ := config.GetConfigPath()
			timeout := "none"
			if cfg.TimeoutSeconds > 0 {
				timeout = (time.Duration(cfg.TimeoutSeconds) * time.Second).String()
			}

			row("Config file", configPath)
			row("Endpoint", cfg.ChatURL())
			row("Model", cfg.Model)
			row("Response path", cfg.ResponsePath)
			row("Timeout", timeout)
			row("Theme", cfg.TUITheme)

			client, err := newAPIClient(cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), doctorTimeout)
			defer cancel()

			status, err := client.Ping(ctx)
			if err != nil {
				fmt.Fprintln(deps.Stdout, formatErrorMessage(err, fmt.Sprintf("Chat service unreachable: %v", err)))
				return errAlreadyReported
			}

			fmt.Fprintln(deps.Stdout, lipgloss.NewStyle().Foreground(colorSuccess).Render(
				fmt.Sprintf("✓ Chat service reachable at %s (HTTP %d)", client.BaseURL(), status),
			))
			return nil
		},
	}
}
