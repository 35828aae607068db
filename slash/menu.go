package slash

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/iw2rmb/quill/document"
	"github.com/iw2rmb/quill/internal/grapheme"
)

// Session is the palette lifecycle state.
type Session struct {
	Open        bool
	Trigger     document.Pos
	Query       string
	Highlighted int
}

// Menu owns one palette session over a registry.
type Menu struct {
	reg    *Registry
	filter Filter
	log    *zap.Logger

	sess  Session
	items []*Command
}

// NewMenu returns a closed menu. A nil filter uses SubstringFilter; a nil
// logger discards logs.
func NewMenu(reg *Registry, filter Filter, log *zap.Logger) *Menu {
	if filter == nil {
		filter = SubstringFilter
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Menu{reg: reg, filter: filter, log: log}
}

func (m *Menu) Registry() *Registry { return m.reg }

func (m *Menu) Session() Session { return m.sess }

func (m *Menu) IsOpen() bool { return m.sess.Open }

// Items returns the filtered commands for the current query.
func (m *Menu) Items() []*Command {
	if !m.sess.Open {
		return nil
	}
	return append([]*Command(nil), m.items...)
}

// Apply performs a Decide action.
func (m *Menu) Apply(a Action) {
	switch a.Kind {
	case Open:
		m.Open(a.Trigger)
	case Update:
		m.SetQuery(a.Query)
	case Close:
		m.close(a.Reason)
	}
}

// Open starts a session at trigger. An existing session is replaced.
func (m *Menu) Open(trigger document.Pos) {
	m.sess = Session{Open: true, Trigger: trigger}
	m.items = m.filter("", m.reg.cmds)
	m.log.Debug("palette opened",
		zap.Int("block", trigger.Block),
		zap.Int("col", trigger.Col),
		zap.Int("items", len(m.items)),
	)
}

// SetQuery refilters and resets the highlight when q changes.
func (m *Menu) SetQuery(q string) {
	if !m.sess.Open || q == m.sess.Query {
		return
	}
	m.sess.Query = q
	m.sess.Highlighted = 0
	m.items = m.filter(q, m.reg.cmds)
}

// Move moves the highlight by delta with wraparound over the filtered list.
func (m *Menu) Move(delta int) {
	n := len(m.items)
	if !m.sess.Open || n == 0 {
		return
	}
	i := (m.sess.Highlighted + delta) % n
	if i < 0 {
		i += n
	}
	m.sess.Highlighted = i
}

// Highlighted returns the highlighted command. The index is re-clamped
// against the current list.
func (m *Menu) Highlighted() (*Command, bool) {
	if !m.sess.Open || len(m.items) == 0 {
		return nil, false
	}
	i := m.sess.Highlighted
	if i < 0 || i >= len(m.items) {
		i = 0
		m.sess.Highlighted = 0
	}
	return m.items[i], true
}

func (m *Menu) Close() { m.close(CloseNone) }

func (m *Menu) close(reason CloseReason) {
	if !m.sess.Open {
		return
	}
	m.log.Debug("palette closed", zap.Stringer("reason", reason), zap.String("query", m.sess.Query))
	m.sess = Session{}
	m.items = nil
}

// Execute runs the highlighted command. It removes the "/query" text, places
// the cursor at the trigger and calls the command. The session is closed
// afterwards whatever the outcome, including a panicking command.
//
// With an empty filtered list Execute is a no-op and the session stays open.
func (m *Menu) Execute(doc Document, emit func(any)) (cmd *Command, err error) {
	cmd, ok := m.Highlighted()
	if !ok {
		return nil, nil
	}
	sess := m.sess
	defer m.close(CloseExecuted)

	if emit == nil {
		emit = func(any) {}
	}
	end := document.Pos{Block: sess.Trigger.Block, Col: sess.Trigger.Col + 1 + grapheme.Count(sess.Query)}
	if got := doc.TextBetween(sess.Trigger, end); got != TriggerChar+sess.Query {
		return cmd, fmt.Errorf("%w: %s: trigger text %q not found", ErrCommandFailed, cmd.ID, TriggerChar+sess.Query)
	}
	if err := doc.DeleteRange(document.Range{Start: sess.Trigger, End: end}); err != nil {
		return cmd, fmt.Errorf("%w: %s: remove trigger text: %w", ErrCommandFailed, cmd.ID, err)
	}
	doc.SetCursor(sess.Trigger)

	if err := Run(cmd, &Context{Doc: doc, Trigger: sess.Trigger, Emit: emit}); err != nil {
		m.log.Warn("palette command failed", zap.String("command", cmd.ID), zap.Error(err))
		return cmd, err
	}
	m.log.Debug("palette command executed", zap.String("command", cmd.ID))
	return cmd, nil
}

// Run executes cmd. Errors and panics are reported wrapped in
// ErrCommandFailed.
func Run(cmd *Command, ctx *Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: panic: %v", ErrCommandFailed, cmd.ID, r)
		}
	}()
	if cmd.Execute == nil {
		return nil
	}
	if err := cmd.Execute(ctx); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrCommandFailed, cmd.ID, err)
	}
	return nil
}
