package provider

import (
	"context"
	"time"

	"github.com/iw2rmb/quill/stream"
)

var _ stream.Provider = (*Scripted)(nil)

// DefaultScript is used by the offline demo.
var DefaultScript = []string{
	"Drafting", " offline:", " this text", " comes from", " a scripted", " provider,", " one chunk", " at a time.",
}

// Scripted replays fixed chunks. It is the offline provider of the demo and
// the deterministic provider of tests.
type Scripted struct {
	chunks   []string
	interval time.Duration
}

// NewScripted returns a provider that emits chunks with interval between
// them. Nil chunks use DefaultScript.
func NewScripted(chunks []string, interval time.Duration) *Scripted {
	if chunks == nil {
		chunks = DefaultScript
	}
	return &Scripted{chunks: append([]string(nil), chunks...), interval: interval}
}

func (s *Scripted) Name() string { return "Scripted" }

func (s *Scripted) Stream(ctx context.Context, _ stream.Request) (stream.Subscription, error) {
	return stream.Go(ctx, func(ctx context.Context, emit stream.Emitter) error {
		for i, c := range s.chunks {
			if i > 0 && s.interval > 0 {
				t := time.NewTimer(s.interval)
				select {
				case <-ctx.Done():
					t.Stop()
					return ctx.Err()
				case <-t.C:
				}
			}
			if !emit(c) {
				return ctx.Err()
			}
		}
		return nil
	}), nil
}
