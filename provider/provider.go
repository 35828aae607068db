// Package provider implements stream.Provider for the Anthropic Messages
// API, AWS Bedrock and a scripted offline source.
package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iw2rmb/quill/stream"
)

var (
	ErrUnknownKind   = errors.New("provider: unknown kind")
	ErrMissingAPIKey = errors.New("provider: api key required")
)

type Kind string

const (
	KindAnthropic Kind = "anthropic"
	KindBedrock   Kind = "bedrock"
	KindScripted  Kind = "scripted"
)

// ParseKind accepts provider names and their common aliases.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "anthropic", "claude":
		return KindAnthropic, nil
	case "bedrock", "aws":
		return KindBedrock, nil
	case "scripted", "offline", "":
		return KindScripted, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

const (
	DefaultAnthropicModel = "claude-sonnet-4-5-20250929"
	DefaultBedrockModel   = "global.anthropic.claude-sonnet-4-5-20250929-v1:0"
	DefaultMaxTokens      = 1024
	DefaultRegion         = "us-east-1"
)

// Config selects and configures a provider.
type Config struct {
	Kind Kind

	APIKey   string // anthropic
	Endpoint string // anthropic; default https://api.anthropic.com/v1/messages
	Region   string // bedrock

	Model     string
	MaxTokens int

	// Script and Interval drive the scripted provider.
	Script   []string
	Interval time.Duration

	HTTPClient *http.Client
	Logger     *zap.Logger
}

func (c Config) normalized() Config {
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{}
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return c
}

// New builds the provider cfg.Kind names.
func New(ctx context.Context, cfg Config) (stream.Provider, error) {
	cfg = cfg.normalized()
	switch cfg.Kind {
	case KindAnthropic:
		return NewAnthropic(cfg)
	case KindBedrock:
		return NewBedrock(ctx, cfg)
	case KindScripted, "":
		return NewScripted(cfg.Script, cfg.Interval), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, cfg.Kind)
	}
}

// APIError is a non-2xx response from a provider endpoint.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("provider: api error (status %d): %s", e.Status, e.Body)
}

const defaultSystemPrompt = "You are a writing assistant embedded in a rich-text editor. " +
	"Continue the user's document in the same language, tone and format. " +
	"Reply with the continuation text only: no preamble, no markdown fences."

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// buildMessages turns a generation request into the Messages API shape
// shared by Anthropic and Bedrock.
func buildMessages(req stream.Request) (system string, msgs []message) {
	system = req.System
	if system == "" {
		system = defaultSystemPrompt
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		prompt = "Continue writing from where the document ends."
	}

	var sb strings.Builder
	if req.Context != "" {
		sb.WriteString("<document>\n")
		sb.WriteString(req.Context)
		sb.WriteString("\n</document>\n\n")
	}
	sb.WriteString(prompt)
	return system, []message{{Role: "user", Content: sb.String()}}
}
