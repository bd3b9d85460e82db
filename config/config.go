// Package config assembles runtime configuration from the environment with
// an optional JSON config file overlay. Environment variables seed the
// struct; values present in the file win.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Defaults applied when neither environment nor file set a value.
const (
	DefaultAddr     = ":8080"
	DefaultProvider = "anthropic"
)

// Config holds the runtime settings of the agent service. Secrets come
// from the environment or the config file; never committed.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `json:"addr"`
	// Provider selects the model backend: "anthropic" or "openai".
	Provider string `json:"provider"`
	// Model is the provider-specific model id. Empty uses the provider default.
	Model string `json:"model"`

	AnthropicAPIKey string `json:"anthropic_api_key"`
	OpenAIAPIKey    string `json:"openai_api_key"`

	// TokenStorePath points at the persisted integration credentials.
	TokenStorePath string `json:"token_store_path"`
	// SchedulePath points at the schedule snapshot. Empty disables snapshots.
	SchedulePath string `json:"schedule_path"`

	// LogLevel is "debug", "info", "warn" or "error".
	LogLevel string `json:"log_level"`
	// LogFormat is "json" or "text".
	LogFormat string `json:"log_format"`
}

// Load builds the configuration. path may be empty or name a JSON file
// whose values override the environment.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Addr:            envOr("AGENDUM_ADDR", DefaultAddr),
		Provider:        envOr("AGENDUM_PROVIDER", DefaultProvider),
		Model:           os.Getenv("AGENDUM_MODEL"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		TokenStorePath:  os.Getenv("AGENDUM_TOKEN_STORE"),
		SchedulePath:    os.Getenv("AGENDUM_SCHEDULE_PATH"),
		LogLevel:        envOr("AGENDUM_LOG_LEVEL", "info"),
		LogFormat:       envOr("AGENDUM_LOG_FORMAT", "json"),
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		} else if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Provider {
	case "anthropic", "openai":
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	return nil
}

// APIKey returns the key matching the configured provider.
func (c *Config) APIKey() string {
	if c.Provider == "openai" {
		return c.OpenAIAPIKey
	}
	return c.AnthropicAPIKey
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
