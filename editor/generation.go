package editor

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/iw2rmb/quill/document"
	"github.com/iw2rmb/quill/stream"
	"github.com/iw2rmb/quill/telemetry"
)

var (
	// ErrNoProvider is returned when a generation is requested without a
	// configured provider.
	ErrNoProvider = errors.New("editor: no generation provider configured")
	// ErrBusy is returned for mutations attempted while a generation is
	// streaming or awaiting a decision.
	ErrBusy = errors.New("editor: generation in progress")
	// ErrReadOnly is returned for mutations on a read-only editor.
	ErrReadOnly = errors.New("editor: read only")
	// ErrPaletteOpen is returned when a generation is requested while the
	// slash palette session is open.
	ErrPaletteOpen = errors.New("editor: palette open")
)

// generation ties the streaming controller to the provider subscription.
type generation struct {
	ctrl     *stream.Controller
	provider stream.Provider
	sub      stream.Subscription
	cancel   func()
	metrics  *telemetry.Metrics
	log      *zap.Logger

	// placeholder is the block index of the paragraph created for a
	// generation that started on a divider, or -1.
	placeholder int
}

func newGeneration(doc *document.Document, cfg Config, log *zap.Logger) *generation {
	g := &generation{
		ctrl:     stream.NewController(doc, log.Named("stream")),
		provider: cfg.Provider,
		metrics:  cfg.Metrics,
		log:      log,

		placeholder: -1,
	}
	g.ctrl.OnTransition(func(tr stream.Transition) {
		if tr.To != stream.AwaitingDecision {
			return
		}
		switch {
		case tr.Session.Err != nil:
			g.metrics.ObserveGenerationEnded("failed")
		case tr.Session.Stopped:
			g.metrics.ObserveGenerationEnded("stopped")
		default:
			g.metrics.ObserveGenerationEnded("completed")
		}
	})
	return g
}

// release drops the subscription and cancels its request context.
func (g *generation) release() {
	if g.cancel != nil {
		g.cancel()
	}
	g.sub, g.cancel = nil, nil
}

func (g *generation) providerName() string {
	if g.provider == nil {
		return ""
	}
	return g.provider.Name()
}

// BeginGeneration starts streaming AI text at the cursor. The returned
// command delivers chunks back to Update. It fails with ErrPaletteOpen while
// the slash palette is open.
func (m Model) BeginGeneration(prompt string) (Model, tea.Cmd, error) {
	return m.beginGenerationAt(m.doc.Cursor(), prompt)
}

func (m Model) beginGenerationAt(at document.Pos, prompt string) (Model, tea.Cmd, error) {
	if m.cfg.ReadOnly {
		return m, nil, ErrReadOnly
	}
	if m.gen.ctrl.Phase() != stream.Idle {
		return m, nil, fmt.Errorf("begin generation: %w", stream.ErrInvalidTransition)
	}
	if m.menu.IsOpen() {
		return m, nil, ErrPaletteOpen
	}
	if m.gen.provider == nil {
		return m, nil, ErrNoProvider
	}
	if !m.doc.Valid(at) {
		return m, nil, fmt.Errorf("begin generation at %v: %w", at, document.ErrOutOfRange)
	}

	// Text inserted into a divider would replace it. Generate into a fresh
	// paragraph below instead; reject removes it again.
	if b, _ := m.doc.Block(at.Block); b.Kind == document.Divider {
		p, err := m.doc.InsertParagraph(at.Block + 1)
		if err != nil {
			return m, nil, fmt.Errorf("begin generation: %w", err)
		}
		at = p
		m.gen.placeholder = p.Block
	}

	ctx, cancel := context.WithCancel(context.Background())
	sub, err := m.gen.provider.Stream(ctx, stream.Request{
		Prompt:    prompt,
		Context:   m.doc.TextBetween(document.Pos{}, at),
		System:    m.cfg.SystemPrompt,
		MaxTokens: m.cfg.MaxTokens,
	})
	if err != nil {
		cancel()
		m.dropPlaceholder()
		m.syncFromDocument()
		m.log.Warn("generation request", zap.String("provider", m.gen.providerName()), zap.Error(err))
		return m, nil, fmt.Errorf("begin generation: %w", err)
	}

	stop := func() {
		sub.Cancel()
		cancel()
	}
	sess, err := m.gen.ctrl.Begin(at, stop)
	if err != nil {
		stop()
		m.dropPlaceholder()
		m.syncFromDocument()
		return m, nil, err
	}
	m.gen.sub, m.gen.cancel = sub, stop
	m.doc.SetCursor(at)
	m.gen.metrics.ObserveGenerationStarted(m.gen.providerName())
	m.log.Debug("generation started",
		zap.String("session", sess.ID),
		zap.String("provider", m.gen.providerName()),
	)

	m.syncFromDocument()
	return m, tea.Batch(stream.Listen(sess.ID, sub), m.spinner.Tick), nil
}

// StopGeneration stops a running generation. Calling it again is a no-op.
func (m Model) StopGeneration() Model {
	if m.gen.ctrl.Stop() {
		m.gen.release()
		m.syncFromDocument()
	}
	return m
}

// AcceptGeneration keeps the generated text.
func (m Model) AcceptGeneration() (Model, error) {
	s := m.gen.ctrl.Session()
	if err := m.gen.ctrl.Accept(); err != nil {
		return m, err
	}
	m.gen.release()
	m.gen.placeholder = -1
	m.gen.metrics.ObserveGenerationEnded("accepted")
	if s.HasRange {
		m.doc.SetCursor(m.doc.ClampRange(s.Range).End)
	}
	m.syncFromDocument()
	return m, nil
}

// RejectGeneration deletes the generated text.
func (m Model) RejectGeneration() (Model, error) {
	r := m.gen.ctrl.Session().Range
	err := m.gen.ctrl.Reject()
	if errors.Is(err, stream.ErrInvalidTransition) {
		return m, err
	}
	m.gen.release()
	m.gen.metrics.ObserveGenerationEnded("rejected")
	cursor := r.Start
	if m.dropPlaceholder() {
		cursor = document.Pos{Block: r.Start.Block - 1}
	}
	m.doc.SetCursor(cursor)
	m.syncFromDocument()
	return m, err
}

// dropPlaceholder removes the paragraph created for a generation on a
// divider if it is still empty. It reports whether a block was removed.
func (m Model) dropPlaceholder() bool {
	at := m.gen.placeholder
	m.gen.placeholder = -1
	if at < 0 {
		return false
	}
	if b, ok := m.doc.Block(at); !ok || b.Kind != document.Paragraph || b.Len() != 0 {
		return false
	}
	return m.doc.RemoveBlock(at) == nil
}

func (m Model) generatedRange() (document.Range, bool) {
	s := m.gen.ctrl.Session()
	if s.Phase == stream.Idle || !s.HasRange {
		return document.Range{}, false
	}
	r := m.doc.ClampRange(s.Range)
	return r, !r.IsEmpty()
}

// updateGeneration applies provider messages. Messages for any session other
// than the live streaming one are dropped.
func (m Model) updateGeneration(msg tea.Msg) (Model, tea.Cmd) {
	sess := m.gen.ctrl.Session()
	live := func(id string) bool {
		return sess.Phase == stream.Streaming && id == sess.ID
	}

	switch msg := msg.(type) {
	case stream.ChunkMsg:
		if !live(msg.ID) {
			return m, nil
		}
		if err := m.gen.ctrl.Append(msg.Text); err != nil {
			m.log.Warn("generation append", zap.String("session", msg.ID), zap.Error(err))
			if m.gen.ctrl.Phase() == stream.Streaming {
				_ = m.gen.ctrl.Fail(err)
				m.gen.release()
			}
			return m, nil
		}
		m.gen.metrics.ObserveChunk(len(msg.Text))
		if m.gen.sub == nil {
			return m, nil
		}
		return m, stream.Listen(msg.ID, m.gen.sub)

	case stream.DoneMsg:
		if !live(msg.ID) {
			return m, nil
		}
		_ = m.gen.ctrl.Complete()
		m.gen.release()

	case stream.ErrorMsg:
		if !live(msg.ID) {
			return m, nil
		}
		_ = m.gen.ctrl.Fail(msg.Err)
		m.gen.release()
	}
	return m, nil
}
