package provider

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"go.uber.org/zap"

	"github.com/iw2rmb/quill/stream"
)

var _ stream.Provider = (*Bedrock)(nil)

// Bedrock streams Anthropic models through AWS Bedrock Runtime.
type Bedrock struct {
	client    *bedrockruntime.Client
	model     string
	maxTokens int
	log       *zap.Logger
}

type bedrockRequest struct {
	AnthropicVersion string    `json:"anthropic_version"`
	MaxTokens        int       `json:"max_tokens"`
	System           string    `json:"system,omitempty"`
	Messages         []message `json:"messages"`
}

// NewBedrock loads AWS configuration from the environment and shared
// credentials files.
func NewBedrock(ctx context.Context, cfg Config) (*Bedrock, error) {
	cfg = cfg.normalized()
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("bedrock: load aws config: %w", err)
	}
	model := cfg.Model
	if model == "" {
		model = DefaultBedrockModel
	}
	return &Bedrock{
		client:    bedrockruntime.NewFromConfig(awsCfg),
		model:     model,
		maxTokens: cfg.MaxTokens,
		log:       cfg.Logger,
	}, nil
}

func (b *Bedrock) Name() string { return "Bedrock" }

func (b *Bedrock) Stream(ctx context.Context, req stream.Request) (stream.Subscription, error) {
	system, msgs := buildMessages(req)
	maxTokens := b.maxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}
	body, err := json.Marshal(bedrockRequest{
		AnthropicVersion: "bedrock-2023-05-31",
		MaxTokens:        maxTokens,
		System:           system,
		Messages:         msgs,
	})
	if err != nil {
		return nil, fmt.Errorf("bedrock: marshal request: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	out, err := b.client.InvokeModelWithResponseStream(ctx, &bedrockruntime.InvokeModelWithResponseStreamInput{
		ModelId:     aws.String(b.model),
		Body:        body,
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("bedrock: invoke %s: %w", b.model, err)
	}
	b.log.Debug("bedrock stream opened", zap.String("model", b.model), zap.Int("max_tokens", maxTokens))

	es := out.GetStream()
	sub := stream.Go(ctx, func(ctx context.Context, emit stream.Emitter) error {
		defer func() { _ = es.Close() }()
		if err := readBedrock(ctx, es.Events(), emit); err != nil {
			return err
		}
		if err := es.Err(); err != nil {
			return fmt.Errorf("bedrock: read stream: %w", err)
		}
		return nil
	})
	return &cancelSubscription{Subscription: sub, cancel: cancel}, nil
}

// readBedrock decodes chunk events until message_stop or the channel closes.
func readBedrock(ctx context.Context, events <-chan types.ResponseStream, emit stream.Emitter) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			chunk, isChunk := ev.(*types.ResponseStreamMemberChunk)
			if !isChunk {
				continue
			}
			text, done, err := decodeEvent(chunk.Value.Bytes)
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
	}
}
