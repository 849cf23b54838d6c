// Package config handles configuration for chatllm.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"github.com/diogo/chatllm/internal/models"
)

// Config represents the user configuration
type Config struct {
	// BaseURL is the chat service root, e.g. http://127.0.0.1:11434
	BaseURL string `json:"base_url" env:"CHATLLM_BASE_URL"`
	// ChatPath is appended to BaseURL for the chat request
	ChatPath string `json:"chat_path" env:"CHATLLM_CHAT_PATH"`
	Model    string `json:"model" env:"CHATLLM_MODEL"`
	// ResponsePath is the gjson path of the reply text in the response body
	ResponsePath string `json:"response_path" env:"CHATLLM_RESPONSE_PATH"`
	// TimeoutSeconds bounds a round trip. Zero waits forever.
	TimeoutSeconds  int    `json:"timeout_seconds" env:"CHATLLM_TIMEOUT_SECONDS"`
	TUITheme        string `json:"tui_theme,omitempty" env:"CHATLLM_THEME"`
	CopyToClipboard bool   `json:"copy_to_clipboard" env:"CHATLLM_COPY_TO_CLIPBOARD"`
	LogLevel        string `json:"log_level,omitempty" env:"CHATLLM_LOG_LEVEL"`
	LogFile         string `json:"log_file,omitempty" env:"CHATLLM_LOG_FILE"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		BaseURL:         models.DefaultBaseURL,
		ChatPath:        models.DefaultChatPath,
		Model:           models.DefaultModel,
		ResponsePath:    models.DefaultResponsePath,
		TimeoutSeconds:  0,
		TUITheme:        "tokyonight",
		CopyToClipboard: false,
	}
}

// ChatURL returns BaseURL joined with ChatPath
func (c Config) ChatURL() string {
	return strings.TrimRight(c.BaseURL, "/") + "/" + strings.TrimLeft(c.ChatPath, "/")
}

// Validate checks that the configuration can be used to reach a chat service
func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base_url %q: %w", c.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid base_url %q: scheme must be http or https", c.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid base_url %q: missing host", c.BaseURL)
	}
	if strings.TrimSpace(c.ResponsePath) == "" {
		return fmt.Errorf("response_path cannot be empty")
	}
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds cannot be negative")
	}
	return nil
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, ".chatllm"), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// LoadConfig loads the configuration from disk. Missing files yield defaults.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	configPath, err := GetConfigPath()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Load reads the config file, then applies an optional .env file from the
// working directory and CHATLLM_* environment variables on top of it.
func Load() (Config, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return cfg, err
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("failed to load .env file: %w", err)
	}

	if err := ApplyEnv(&cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// ApplyEnv overrides cfg with any CHATLLM_* variables that are set
func ApplyEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}
	return nil
}

// SaveConfig saves the configuration to disk
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.json")

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

var setters = map[string]func(*Config, string) error{
	"base_url":      func(c *Config, v string) error { c.BaseURL = v; return nil },
	"chat_path":     func(c *Config, v string) error { c.ChatPath = v; return nil },
	"model":         func(c *Config, v string) error { c.Model = v; return nil },
	"response_path": func(c *Config, v string) error { c.ResponsePath = v; return nil },
	"tui_theme":     func(c *Config, v string) error { c.TUITheme = v; return nil },
	"log_level":     func(c *Config, v string) error { c.LogLevel = v; return nil },
	"log_file":      func(c *Config, v string) error { c.LogFile = v; return nil },
	"timeout_seconds": func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("timeout_seconds must be an integer: %w", err)
		}
		c.TimeoutSeconds = n
		return nil
	},
	"copy_to_clipboard": func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("copy_to_clipboard must be true or false: %w", err)
		}
		c.CopyToClipboard = b
		return nil
	},
}

// Set assigns value to the field named key and validates the result
func (c *Config) Set(key, value string) error {
	set, ok := setters[key]
	if !ok {
		return fmt.Errorf("unknown config key %q (valid keys: %s)", key, strings.Join(Keys(), ", "))
	}

	updated := *c
	if err := set(&updated, value); err != nil {
		return err
	}
	if err := updated.Validate(); err != nil {
		return err
	}

	*c = updated
	return nil
}

// Keys returns the settable configuration keys in sorted order
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
