package provider

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/iw2rmb/quill/stream"
)

const anthropicAPIURL = "https://api.anthropic.com/v1/messages"

var _ stream.Provider = (*Anthropic)(nil)

// Anthropic streams completions from the Anthropic Messages API over SSE.
type Anthropic struct {
	apiKey     string
	endpoint   string
	model      string
	maxTokens  int
	httpClient *http.Client
	log        *zap.Logger
}

type anthropicRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []message `json:"messages"`
	Stream    bool      `json:"stream"`
}

func NewAnthropic(cfg Config) (*Anthropic, error) {
	cfg = cfg.normalized()
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: %w", ErrMissingAPIKey)
	}
	a := &Anthropic{
		apiKey:     cfg.APIKey,
		endpoint:   cfg.Endpoint,
		model:      cfg.Model,
		maxTokens:  cfg.MaxTokens,
		httpClient: cfg.HTTPClient,
		log:        cfg.Logger,
	}
	if a.endpoint == "" {
		a.endpoint = anthropicAPIURL
	}
	if a.model == "" {
		a.model = DefaultAnthropicModel
	}
	return a, nil
}

func (a *Anthropic) Name() string { return "Anthropic" }

// Stream opens the HTTP stream synchronously so request errors surface
// here; events are read in the background.
func (a *Anthropic) Stream(ctx context.Context, req stream.Request) (stream.Subscription, error) {
	system, msgs := buildMessages(req)
	maxTokens := a.maxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}
	body, err := json.Marshal(anthropicRequest{
		Model:     a.model,
		MaxTokens: maxTokens,
		System:    system,
		Messages:  msgs,
		Stream:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic: marshal request: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(body))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("anthropic: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("x-api-key", a.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("anthropic: request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer cancel()
		defer func() { _ = resp.Body.Close() }()
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}
	a.log.Debug("anthropic stream opened", zap.String("model", a.model), zap.Int("max_tokens", maxTokens))

	sub := stream.Go(ctx, func(ctx context.Context, emit stream.Emitter) error {
		defer func() { _ = resp.Body.Close() }()
		return readSSE(resp.Body, emit)
	})
	return &cancelSubscription{Subscription: sub, cancel: cancel}, nil
}

// readSSE reads "data:" lines of a server-sent event stream until
// message_stop or EOF.
func readSSE(r io.Reader, emit stream.Emitter) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		data, ok := strings.CutPrefix(line, "data:")
		if !ok {
			continue
		}
		data = strings.TrimSpace(data)
		if data == "" || data == "[DONE]" {
			continue
		}
		text, done, err := decodeEvent([]byte(data))
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if text != "" && !emit(text) {
			return nil
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("anthropic: read stream: %w", err)
	}
	return nil
}

// cancelSubscription also releases the request context on Cancel.
type cancelSubscription struct {
	stream.Subscription
	cancel context.CancelFunc
}

func (s *cancelSubscription) Cancel() {
	s.Subscription.Cancel()
	s.cancel()
}
