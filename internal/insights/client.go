// Package insights asks a hosted language model for advice on the real
// (never obfuscated) dataset summary.
package insights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	DefaultBaseURL    = "https://api.anthropic.com"
	DefaultModel      = "claude-3-5-sonnet-20241022"
	DefaultMaxTokens  = 1024
	DefaultTimeout    = 60 * time.Second
	DefaultMaxRetries = 2
)

var (
	// ErrNotConfigured is returned when no API key is set.
	ErrNotConfigured = errors.New("ANTHROPIC_API_KEY not configured")
	// ErrUpstream wraps failures reported by the model service.
	ErrUpstream = errors.New("AI service error")
)

type Config struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Timeout   time.Duration
	// MaxRetries bounds SDK retries of rate-limited or failed calls.
	// Negative means DefaultMaxRetries.
	MaxRetries int
}

// Client calls the Messages API through the Anthropic SDK.
type Client struct {
	api       anthropic.Client
	model     string
	maxTokens int64
	apiKey    string
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}

	c := &Client{
		model:     cfg.Model,
		maxTokens: int64(cfg.MaxTokens),
		apiKey:    cfg.APIKey,
	}
	if c.apiKey != "" {
		c.api = anthropic.NewClient(
			option.WithoutEnvironmentDefaults(),
			option.WithAPIKey(cfg.APIKey),
			option.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")+"/"),
			option.WithRequestTimeout(cfg.Timeout),
			option.WithMaxRetries(cfg.MaxRetries),
		)
	}
	return c
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c != nil && c.apiKey != ""
}

// Complete sends a single user message and returns the first text block.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	msg, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", upstreamError(err)
	}
	for _, block := range msg.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("%w: empty response", ErrUpstream)
}

// upstreamError wraps err in ErrUpstream, keeping the service's own message
// when the response carried one.
func upstreamError(err error) error {
	var apiErr *anthropic.Error
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal([]byte(apiErr.RawJSON()), &body) == nil && body.Error.Message != "" {
		return fmt.Errorf("%w: %s", ErrUpstream, body.Error.Message)
	}
	return fmt.Errorf("%w: unexpected status: %d %s", ErrUpstream,
		apiErr.StatusCode, http.StatusText(apiErr.StatusCode))
}
