// Package config loads the assistant settings from defaults, an optional
// YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables holding secrets.
const (
	EnvOAuthClientID     = "OAUTH_GOOGLE_CLIENT_ID"
	EnvOAuthClientSecret = "OAUTH_GOOGLE_CLIENT_SECRET"
	EnvGoogleAPIKey      = "GOOGLE_API_KEY"
)

type Config struct {
	HTTPAddr  string          `yaml:"http_addr"`
	OAuth     OAuthConfig     `yaml:"oauth"`
	Gmail     GmailConfig     `yaml:"gmail"`
	LLM       LLMConfig       `yaml:"llm"`
	Assistant AssistantConfig `yaml:"assistant"`
	Log       LogConfig       `yaml:"log"`
}

type OAuthConfig struct {
	TokenFile    string `yaml:"token_file"`
	RedirectURL  string `yaml:"redirect_url"`
	ClientID     string `yaml:"-"`
	ClientSecret string `yaml:"-"`
}

type GmailConfig struct {
	UserID           string `yaml:"user_id"`
	SearchMaxResults int64  `yaml:"search_max_results"`
	ListMaxResults   int64  `yaml:"list_max_results"`
	RecentQuery      string `yaml:"recent_query"`
	Concurrency      int    `yaml:"concurrency"`
}

type LLMConfig struct {
	Model            string `yaml:"model"`
	SummaryBodyLimit int    `yaml:"summary_body_limit"`
	ReplyBodyLimit   int    `yaml:"reply_body_limit"`
	APIKey           string `yaml:"-"`
}

type AssistantConfig struct {
	TurnTimeout  time.Duration `yaml:"turn_timeout"`
	HistoryLimit int           `yaml:"history_limit"`
	SessionTTL   time.Duration `yaml:"session_ttl"`
}

type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
	// Format is json or console.
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		HTTPAddr: "localhost:0",
		OAuth: OAuthConfig{
			TokenFile: "./data/gmail-assistant-token.json",
		},
		Gmail: GmailConfig{
			UserID:           "me",
			SearchMaxResults: 5,
			ListMaxResults:   50,
			RecentQuery:      "label:inbox newer_than:1d",
			Concurrency:      5,
		},
		LLM: LLMConfig{
			Model:            "gemini-2.0-flash",
			SummaryBodyLimit: 3000,
			ReplyBodyLimit:   2000,
		},
		Assistant: AssistantConfig{
			TurnTimeout:  60 * time.Second,
			HistoryLimit: 20,
			SessionTTL:   30 * time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads path over the defaults, then applies secrets from envFile and
// the process environment. Empty paths are skipped; a missing envFile is
// not an error.
func Load(path, envFile string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("os.ReadFile failed: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("yaml.Unmarshal failed: %w", err)
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("godotenv.Load failed: %w", err)
		}
	}

	cfg.OAuth.ClientID = os.Getenv(EnvOAuthClientID)
	cfg.OAuth.ClientSecret = os.Getenv(EnvOAuthClientSecret)
	cfg.LLM.APIKey = os.Getenv(EnvGoogleAPIKey)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate rejects settings the assistant cannot run with.
func (c Config) Validate() error {
	var errs []error

	if c.Gmail.UserID == "" {
		errs = append(errs, errors.New("gmail.user_id must not be empty"))
	}
	if c.Gmail.SearchMaxResults <= 0 {
		errs = append(errs, errors.New("gmail.search_max_results must be positive"))
	}
	if c.Gmail.ListMaxResults <= 0 {
		errs = append(errs, errors.New("gmail.list_max_results must be positive"))
	}
	if c.Gmail.Concurrency <= 0 {
		errs = append(errs, errors.New("gmail.concurrency must be positive"))
	}
	if c.LLM.SummaryBodyLimit <= 0 {
		errs = append(errs, errors.New("llm.summary_body_limit must be positive"))
	}
	if c.LLM.ReplyBodyLimit <= 0 {
		errs = append(errs, errors.New("llm.reply_body_limit must be positive"))
	}
	if c.Assistant.TurnTimeout <= 0 {
		errs = append(errs, errors.New("assistant.turn_timeout must be positive"))
	}
	if c.Assistant.HistoryLimit <= 0 {
		errs = append(errs, errors.New("assistant.history_limit must be positive"))
	}
	if c.Assistant.SessionTTL <= 0 {
		errs = append(errs, errors.New("assistant.session_ttl must be positive"))
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is not json or console", c.Log.Format))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// HasOAuthClient reports whether both OAuth client secrets are set.
func (c Config) HasOAuthClient() bool {
	return c.OAuth.ClientID != "" && c.OAuth.ClientSecret != ""
}
