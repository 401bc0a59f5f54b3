package grok

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/metalagman/grok/internal/retry"
	"github.com/rs/zerolog"
)

// Client sends chat completion requests with bounded retries.
// It is safe for concurrent use; only read-only state is shared between calls.
type Client struct {
	cfg        Config
	headers    http.Header
	httpClient *http.Client
	logger     zerolog.Logger
	sleep      retry.Sleeper
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client used for every attempt.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.httpClient = c
		}
	}
}

// WithLogger sets the logger for diagnostics. Credentials are never logged.
func WithLogger(l zerolog.Logger) Option {
	return func(cl *Client) {
		cl.logger = l
	}
}

// WithSleeper replaces the wait between attempts.
func WithSleeper(s retry.Sleeper) Option {
	return func(cl *Client) {
		if s != nil {
			cl.sleep = s
		}
	}
}

// NewClient constructs a new grok API client.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse grok endpoint: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("grok endpoint must be an absolute http(s) url, got %q", endpoint)
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	policy := cfg.Retry.WithDefaults()
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	headers := make(http.Header)
	headers.Set("Authorization", "Bearer "+apiKey)
	headers.Set("Content-Type", "application/json")

	c := &Client{
		cfg: Config{
			APIKey:   apiKey,
			Endpoint: endpoint,
			Model:    model,
			Timeout:  timeout,
			Retry:    policy,
		},
		headers:    headers,
		httpClient: &http.Client{},
		logger:     zerolog.Nop(),
		sleep:      retry.Sleep,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("model", model).
		Dur("timeout", timeout).
		Int("max_attempts", policy.MaxAttempts).
		Msg("grok client configured")
	c.logger.Debug().Interface("headers", RedactHeaders(headers)).Msg("headers configured")

	return c, nil
}

// Endpoint returns the resolved endpoint URL.
func (c *Client) Endpoint() string {
	return c.cfg.Endpoint
}

// Model returns the resolved model identifier.
func (c *Client) Model() string {
	return c.cfg.Model
}

// Complete sends prompt as a single user message.
func (c *Client) Complete(ctx context.Context, prompt string) (*Response, error) {
	return c.Chat(ctx, []Message{{Role: RoleUser, Content: prompt}})
}

// Chat sends messages and returns the decoded response body. Network errors,
// timeouts, non-2xx responses and undecodable bodies are retried; once
// attempts run out the last one's error is returned as is.
func (c *Client) Chat(ctx context.Context, messages []Message) (*Response, error) {
	payload, err := json.Marshal(Request{
		Model:    c.cfg.Model,
		Messages: messages,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	c.logger.Info().
		Str("model", c.cfg.Model).
		Int("messages", len(messages)).
		Msg("sending request to grok api")
	c.logger.Debug().RawJSON("payload", payload).Msg("request payload")

	var resp *Response
	err = retry.Do(ctx, c.cfg.Retry, func(ctx context.Context, attempt int) error {
		c.logger.Debug().Int("attempt", attempt).Msg("posting completion request")
		r, err := c.post(ctx, payload)
		if err != nil {
			if isTransient(err) {
				return retry.Retryable(err)
			}
			return err
		}
		resp = r
		return nil
	},
		retry.WithSleeper(c.sleep),
		retry.WithNotify(func(attempt int, err error, wait time.Duration) {
			c.logger.Warn().Err(err).Int("attempt", attempt).Dur("wait", wait).Msg("grok request failed, retrying")
		}),
	)
	if err != nil {
		c.logger.Error().Err(err).Msg("grok api request failed")
		return nil, err
	}

	return resp, nil
}

func (c *Client) post(ctx context.Context, payload []byte) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header = c.headers.Clone()

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RequestError{Err: err}
	}
	defer func() { _ = httpResp.Body.Close() }()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &RequestError{Err: fmt.Errorf("read response body: %w", err)}
	}

	c.logger.Debug().
		Int("status", httpResp.StatusCode).
		Interface("headers", RedactHeaders(httpResp.Header)).
		Str("body", string(body)).
		Msg("grok api response")

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		statusErr := newStatusError(httpResp.StatusCode, httpResp.Status, body)
		c.logger.Error().
			Int("status", httpResp.StatusCode).
			Str("body", statusErr.Body).
			Msg("error response from grok api")
		return nil, statusErr
	}

	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, &DecodeError{Err: err, Body: truncate(body)}
	}

	return &Response{raw: body, body: decoded}, nil
}

func isTransient(err error) bool {
	var reqErr *RequestError
	var statusErr *StatusError
	var decodeErr *DecodeError
	return errors.As(err, &reqErr) || errors.As(err, &statusErr) || errors.As(err, &decodeErr)
}
