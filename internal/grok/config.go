// Package grok is a small client for the xAI chat completions API.
package grok

import (
	"errors"
	"time"

	"github.com/metalagman/grok/internal/retry"
)

const (
	// DefaultEndpoint is used when Config.Endpoint is empty.
	DefaultEndpoint = "https://api.x.ai/v1/chat/completions"
	// DefaultModel is used when Config.Model is empty.
	DefaultModel = "grok-3"
	// DefaultTimeout bounds a single attempt.
	DefaultTimeout = 120 * time.Second
)

// ErrMissingAPIKey is returned by NewClient when no API key is configured.
var ErrMissingAPIKey = errors.New("grok api key is required (set GROK_API_KEY)")

// Config is grok API client configuration.
type Config struct {
	APIKey   string
	Endpoint string
	Model    string
	Timeout  time.Duration
	Retry    retry.Policy
}
