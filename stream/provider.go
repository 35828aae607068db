package stream

import (
	"context"
	"sync"
)

// Request is what a provider is asked to generate.
type Request struct {
	// Prompt is the user instruction.
	Prompt string
	// Context is the document text preceding the insertion point.
	Context string
	System  string

	MaxTokens int
}

// Event is one ordered item of a generation: a text chunk, or a terminal
// Done or Err.
type Event struct {
	Text string
	Done bool
	Err  error
}

// Subscription delivers events in order. The channel is closed after the
// terminal event, or without one after Cancel.
type Subscription interface {
	Events() <-chan Event
	Cancel()
}

type Provider interface {
	Name() string
	Stream(ctx context.Context, req Request) (Subscription, error)
}

// Emitter sends a chunk and reports false once the subscription is
// cancelled.
type Emitter func(text string) bool

// Go runs fn in a goroutine and exposes its output as a Subscription. A nil
// return from fn ends with Done, an error with Err. Nothing terminal is sent
// after Cancel.
func Go(ctx context.Context, fn func(ctx context.Context, emit Emitter) error) Subscription {
	ctx, cancel := context.WithCancel(ctx)
	s := &goSubscription{ch: make(chan Event, 16), cancel: cancel}

	go func() {
		defer close(s.ch)
		emit := func(text string) bool {
			select {
			case s.ch <- Event{Text: text}:
				return true
			case <-ctx.Done():
				return false
			}
		}

		err := fn(ctx, emit)
		if ctx.Err() != nil {
			return
		}
		final := Event{Done: true}
		if err != nil {
			final = Event{Err: err}
		}
		select {
		case s.ch <- final:
		case <-ctx.Done():
		}
	}()
	return s
}

type goSubscription struct {
	ch     chan Event
	cancel context.CancelFunc
	once   sync.Once
}

func (s *goSubscription) Events() <-chan Event { return s.ch }

func (s *goSubscription) Cancel() { s.once.Do(s.cancel) }
