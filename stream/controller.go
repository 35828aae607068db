package stream

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iw2rmb/quill/document"
)

// ErrInvalidTransition is returned for calls that are illegal in the current
// phase. The controller state is unchanged when it is returned.
var ErrInvalidTransition = errors.New("stream: invalid transition")

type Phase uint8

const (
	Idle Phase = iota
	Streaming
	AwaitingDecision
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Streaming:
		return "streaming"
	case AwaitingDecision:
		return "awaiting_decision"
	default:
		return "unknown"
	}
}

// Target is the document surface a generation writes into.
// *document.Document satisfies it.
type Target interface {
	InsertText(pos document.Pos, s string) (document.Pos, error)
	DeleteRange(r document.Range) error
	ClampRange(r document.Range) document.Range
}

// Session is a snapshot of the current generation.
type Session struct {
	ID    string
	Phase Phase

	// Range is the generated span. It is only meaningful when HasRange.
	Range    document.Range
	HasRange bool

	// Stopped is set when the user stopped the generation.
	Stopped bool
	// Err is the provider failure that ended the generation, if any.
	Err error
}

// Transition is reported to the OnTransition hook.
type Transition struct {
	From, To Phase
	Session  Session
}

// Controller is not safe for concurrent use. It lives on the UI loop.
type Controller struct {
	target Target
	log    *zap.Logger

	sess   Session
	cancel func()
	hook   func(Transition)
}

func NewController(target Target, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{target: target, log: log}
}

// OnTransition registers fn to be called after every phase change.
func (c *Controller) OnTransition(fn func(Transition)) { c.hook = fn }

func (c *Controller) Session() Session { return c.sess }

func (c *Controller) Phase() Phase { return c.sess.Phase }

// Begin starts a generation at pos. cancel is called at most once, by Stop.
// Only one generation may be active.
func (c *Controller) Begin(pos document.Pos, cancel func()) (Session, error) {
	if c.sess.Phase != Idle {
		return c.sess, fmt.Errorf("begin in %s: %w", c.sess.Phase, ErrInvalidTransition)
	}
	r := c.target.ClampRange(document.Collapsed(pos))
	if r.Start != pos {
		return c.sess, fmt.Errorf("begin at %v: %w", pos, document.ErrOutOfRange)
	}

	c.cancel = cancel
	c.transition(Session{
		ID:       uuid.NewString(),
		Phase:    Streaming,
		Range:    r,
		HasRange: true,
	})
	return c.sess, nil
}

// Append inserts text at the end of the generated range and extends it.
func (c *Controller) Append(text string) error {
	if c.sess.Phase != Streaming {
		return fmt.Errorf("append in %s: %w", c.sess.Phase, ErrInvalidTransition)
	}
	if text == "" {
		return nil
	}

	r := c.target.ClampRange(c.sess.Range)
	end, err := c.target.InsertText(r.End, text)
	if err != nil {
		return fmt.Errorf("append chunk: %w", err)
	}
	c.sess.Range = document.Range{Start: r.Start, End: end}
	c.log.Debug("generation chunk",
		zap.String("session", c.sess.ID),
		zap.Int("bytes", len(text)),
		zap.Int("end_block", end.Block),
		zap.Int("end_col", end.Col),
	)
	return nil
}

// Complete records natural completion of the provider.
func (c *Controller) Complete() error {
	if c.sess.Phase != Streaming {
		return fmt.Errorf("complete in %s: %w", c.sess.Phase, ErrInvalidTransition)
	}
	next := c.sess
	next.Phase = AwaitingDecision
	c.transition(next)
	return nil
}

// Fail records a provider failure. The partial range is kept so the user can
// still accept or reject it.
func (c *Controller) Fail(err error) error {
	if c.sess.Phase != Streaming {
		return fmt.Errorf("fail in %s: %w", c.sess.Phase, ErrInvalidTransition)
	}
	c.log.Warn("generation failed", zap.String("session", c.sess.ID), zap.Error(err))
	next := c.sess
	next.Phase = AwaitingDecision
	next.Err = err
	c.transition(next)
	return nil
}

// Stop ends a running generation and cancels the provider. It reports
// whether it changed anything; calling it again, or after completion, is a
// no-op.
func (c *Controller) Stop() bool {
	if c.sess.Phase != Streaming {
		return false
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	next := c.sess
	next.Phase = AwaitingDecision
	next.Stopped = true
	c.transition(next)
	return true
}

// Accept keeps the generated text.
func (c *Controller) Accept() error {
	if c.sess.Phase != AwaitingDecision {
		return fmt.Errorf("accept in %s: %w", c.sess.Phase, ErrInvalidTransition)
	}
	c.finish()
	return nil
}

// Reject deletes the generated text and returns to Idle. The controller
// returns to Idle even when the deletion fails.
func (c *Controller) Reject() error {
	if c.sess.Phase != AwaitingDecision {
		return fmt.Errorf("reject in %s: %w", c.sess.Phase, ErrInvalidTransition)
	}
	r := c.target.ClampRange(c.sess.Range)
	err := c.target.DeleteRange(r)
	if err != nil {
		c.log.Warn("reject: delete generated range", zap.String("session", c.sess.ID), zap.Error(err))
		err = fmt.Errorf("reject: %w", err)
	}
	c.finish()
	return err
}

func (c *Controller) finish() {
	c.cancel = nil
	c.transition(Session{ID: c.sess.ID, Phase: Idle})
}

func (c *Controller) transition(next Session) {
	from := c.sess.Phase
	c.sess = next
	c.log.Debug("generation transition",
		zap.String("session", next.ID),
		zap.Stringer("from", from),
		zap.Stringer("to", next.Phase),
	)
	if c.hook != nil {
		c.hook(Transition{From: from, To: next.Phase, Session: next})
	}
}
