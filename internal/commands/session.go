package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/diogo/chatllm/internal/config"
	"github.com/diogo/chatllm/internal/conversation"
	"github.com/diogo/chatllm/internal/logging"
	"github.com/diogo/chatllm/internal/models"
)

// globalOptions holds the persistent flags shared by every command
type globalOptions struct {
	baseURL  string
	model    string
	logLevel string
	logFile  string
}

// resolveConfig layers flags over the loaded configuration and validates it
func resolveConfig(deps *Dependencies, opts *globalOptions) (config.Config, error) {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return cfg, fmt.Errorf("failed to load config: %w", err)
	}

	if opts.baseURL != "" {
		cfg.BaseURL = opts.baseURL
	}
	if opts.model != "" {
		cfg.Model = opts.model
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if opts.logFile != "" {
		cfg.LogFile = opts.logFile
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// recordingCompleter remembers the error of the last round trip, which the
// controller itself folds into an assistant message.
type recordingCompleter struct {
	conversation.Completer
	lastErr error
}

func (r *recordingCompleter) Complete(ctx context.Context, history []models.WireMessage) (string, error) {
	reply, err := r.Completer.Complete(ctx, history)
	r.lastErr = err
	return reply, err
}

// session is a configured controller plus the resources backing it
type session struct {
	cfg      config.Config
	logger   zerolog.Logger
	closer   io.Closer
	recorder *recordingCompleter
	conv     *conversation.Controller
}

// newSession wires config, logging, transport and controller.
// Logs go to logFallback unless a log file is configured.
func newSession(deps *Dependencies, opts *globalOptions, logFallback io.Writer) (*session, error) {
	cfg, err := resolveConfig(deps, opts)
	if err != nil {
		return nil, err
	}

	logger, closer, err := logging.New(logging.Options{
		Level:    cfg.LogLevel,
		File:     cfg.LogFile,
		Fallback: logFallback,
	})
	if err != nil {
		return nil, err
	}

	completer, err := deps.NewCompleter(cfg, logger)
	if err != nil {
		_ = closer.Close()
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	recorder := &recordingCompleter{Completer: completer}
	conv := conversation.New(recorder, conversation.WithLogger(logger))

	logger.Debug().
		Str("conversation", conv.ID()).
		Str("endpoint", cfg.ChatURL()).
		Str("model", cfg.Model).
		Msg("session ready")

	return &session{
		cfg:      cfg,
		logger:   logger,
		closer:   closer,
		recorder: recorder,
		conv:     conv,
	}, nil
}

// Close releases the log file
func (s *session) Close() error {
	return s.closer.Close()
}
