// Package commands provides CLI commands for chatllm.
package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/diogo/chatllm/internal/models"
)

var (
	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// NewRootCmd builds the command tree around deps
func NewRootCmd(deps *Dependencies) *cobra.Command {
	gopts := &globalOptions{}
	qopts := &queryOptions{}

	rootCmd := &cobra.Command{
		Use:   "chatllm [prompt]",
		Short: "Terminal client for a chat completion service",
		Long: `chatllm talks to a chat completion HTTP service (Ollama by default).
Every turn sends the full conversation history and waits for one reply.

Examples:
  chatllm chat                          Start interactive chat
  chatllm "What is Go?"                 Send a single query
  chatllm -f prompt.md                  Read prompt from file
  cat prompt.md | chatllm               Read prompt from stdin
  chatllm "Hello" -o response.md        Save response to file
  chatllm config set model llama3       Change the default model
  chatllm doctor                        Check the chat service`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				fmt.Fprintf(deps.Stdout, "chatllm %s (built %s)\n", Version, BuildTime)
				return nil
			}

			prompt, ok, err := readPrompt(deps, qopts, args)
			if err != nil {
				return err
			}
			if !ok {
				return cmd.Help()
			}
			return runQuery(cmd.Context(), deps, gopts, qopts, prompt)
		},
	}

	rootCmd.SetOut(deps.Stdout)
	rootCmd.SetErr(deps.Stderr)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&gopts.baseURL, "base-url", "", "Chat service base URL (e.g., http://127.0.0.1:11434)")
	rootCmd.PersistentFlags().StringVarP(&gopts.model, "model", "m", "", "Model name sent with each request")
	rootCmd.PersistentFlags().StringVar(&gopts.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&gopts.logFile, "log-file", "", "Append logs to this file")

	// One-shot flags
	rootCmd.Flags().StringVarP(&qopts.output, "output", "o", "", "Save response to file")
	rootCmd.Flags().StringVarP(&qopts.file, "file", "f", "", "Read prompt from file")
	rootCmd.Flags().BoolVar(&qopts.raw, "raw", false, "Print only the reply text")
	rootCmd.Flags().BoolVar(&qopts.copy, "copy", false, "Copy the reply to the clipboard")
	rootCmd.Flags().StringVar(&qopts.transcript, "transcript", "", "Write the exchange to a .md or .json file")
	rootCmd.Flags().BoolP("version", "v", false, "Show version and exit")

	// Add subcommands
	rootCmd.AddCommand(NewChatCmd(deps, gopts))
	rootCmd.AddCommand(NewConfigCmd(deps))
	rootCmd.AddCommand(NewDoctorCmd(deps, gopts))

	return rootCmd
}

// Execute runs the root command
func Execute() {
	models.Version = Version

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	deps := NewDependencies()
	if err := NewRootCmd(deps).ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errAlreadyReported) {
			fmt.Fprintln(os.Stderr, formatErrorMessage(err, err.Error()))
		}
		stop()
		os.Exit(1)
	}
}
