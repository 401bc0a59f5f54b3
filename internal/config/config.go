// Package config provides configuration loading and management for grok.
package config

import (
	"time"

	"github.com/metalagman/grok/internal/grok"
	"github.com/metalagman/grok/internal/logging"
	"github.com/metalagman/grok/internal/retry"
)

// Environment variables read by the CLI.
const (
	EnvAPIKey   = "GROK_API_KEY"
	EnvEndpoint = "GROK_API_ENDPOINT"
	EnvModel    = "GROK_MODEL"
	EnvTimeout  = "GROK_TIMEOUT"
	EnvLogLevel = "GROK_LOG_LEVEL"
)

// Config is the root configuration.
type Config struct {
	APIKey   string        `json:"api_key"      mapstructure:"api_key"`
	Endpoint string        `json:"api_endpoint" mapstructure:"api_endpoint"`
	Model    string        `json:"model"        mapstructure:"model"`
	Timeout  time.Duration `json:"timeout"      mapstructure:"timeout"`
	Retry    RetryConfig   `json:"retry"        mapstructure:"retry"`
	Log      LogConfig     `json:"log"          mapstructure:"log"`
}

// RetryConfig bounds the retry loop around each completion request.
type RetryConfig struct {
	MaxAttempts int           `json:"max_attempts" mapstructure:"max_attempts"`
	MinWait     time.Duration `json:"min_wait"     mapstructure:"min_wait"`
	MaxWait     time.Duration `json:"max_wait"     mapstructure:"max_wait"`
}

// LogConfig selects log verbosity and encoding.
type LogConfig struct {
	Level  string `json:"level"  mapstructure:"level"`
	Format string `json:"format" mapstructure:"format"`
}

// Defaults returns the settings used when nothing overrides them.
// The API key has no default.
func Defaults() map[string]any {
	policy := retry.DefaultPolicy()
	return map[string]any{
		"api_endpoint":       grok.DefaultEndpoint,
		"model":              grok.DefaultModel,
		"timeout":            grok.DefaultTimeout.String(),
		"retry.max_attempts": policy.MaxAttempts,
		"retry.min_wait":     policy.Base.String(),
		"retry.max_wait":     policy.Cap.String(),
		"log.level":          "info",
		"log.format":         logging.FormatConsole,
	}
}

// EnvBindings maps setting keys to the environment variables that override them.
func EnvBindings() map[string]string {
	return map[string]string{
		"api_key":      EnvAPIKey,
		"api_endpoint": EnvEndpoint,
		"model":        EnvModel,
		"timeout":      EnvTimeout,
		"log.level":    EnvLogLevel,
	}
}

// ClientConfig converts c into grok client configuration.
func (c Config) ClientConfig() grok.Config {
	return grok.Config{
		APIKey:   c.APIKey,
		Endpoint: c.Endpoint,
		Model:    c.Model,
		Timeout:  c.Timeout,
		Retry: retry.Policy{
			MaxAttempts: c.Retry.MaxAttempts,
			Base:        c.Retry.MinWait,
			Cap:         c.Retry.MaxWait,
		},
	}
}

// LogOptions converts c into logger options.
func (c Config) LogOptions(debug bool) logging.Options {
	return logging.Options{
		Level:  c.Log.Level,
		Format: c.Log.Format,
		Debug:  debug,
	}
}
