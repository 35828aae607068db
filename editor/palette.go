package editor

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/iw2rmb/quill/document"
	"github.com/iw2rmb/quill/slash"
	"github.com/iw2rmb/quill/stream"
)

// slashInput gathers what trigger detection needs from the current state.
func (m Model) slashInput() slash.Input {
	caret := m.doc.Cursor()
	if r, ok := m.doc.Selection(); ok {
		caret = r.Start
	}
	before := m.doc.TextBetween(document.Pos{Block: caret.Block}, caret)
	return slash.Input{
		Before:  slash.Window(before),
		Caret:   caret,
		Session: m.menu.Session(),
		Blocked: m.cfg.ReadOnly || m.gen.ctrl.Phase() != stream.Idle,
	}
}

// decideKey runs trigger detection for a key before it is applied. handled
// reports that the key was consumed.
func (m *Model) decideKey(msg tea.KeyMsg) (handled bool) {
	a := slash.Decide(slash.Event{Kind: slash.KeyPressed, Key: keyName(msg)}, m.slashInput())
	switch a.Kind {
	case slash.Open:
		// The keystroke is consumed: the trigger character is inserted here,
		// exactly once.
		m.doc.InsertAtCursor(slash.TriggerChar)
		if m.menu.IsOpen() {
			m.closePalette(slash.CloseNone)
		}
		m.menu.Apply(a)
		m.cfg.Metrics.ObservePaletteOpened()
		return true
	case slash.Close:
		m.closePalette(a.Reason)
		// Escape is consumed; backspace still deletes the trigger.
		return a.Reason == slash.CloseEscape
	}
	return false
}

// checkPalette re-evaluates an open session after content or the caret
// changed.
func (m *Model) checkPalette() {
	if !m.menu.IsOpen() {
		return
	}
	a := slash.Decide(slash.Event{Kind: slash.Changed}, m.slashInput())
	switch a.Kind {
	case slash.Close:
		m.closePalette(a.Reason)
	case slash.Update:
		m.menu.Apply(a)
	}
}

func (m *Model) closePalette(reason slash.CloseReason) {
	if !m.menu.IsOpen() {
		return
	}
	m.menu.Apply(slash.Action{Kind: slash.Close, Reason: reason})
	m.cfg.Metrics.ObservePaletteClosed(reason.String())
}

// updatePaletteKey handles navigation and execution keys while the palette
// is open.
func (m Model) updatePaletteKey(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	km := m.cfg.PaletteKeyMap
	switch {
	case key.Matches(msg, km.Prev):
		m.menu.Move(-1)
		return m, nil, true
	case key.Matches(msg, km.Next):
		m.menu.Move(1)
		return m, nil, true
	case key.Matches(msg, km.Execute):
		if len(m.menu.Items()) == 0 {
			// Nothing matches: the session stays open and the key is ignored.
			return m, nil, true
		}
		m, cmd := m.executePalette()
		return m, cmd, true
	}
	return m, nil, false
}

// executePalette runs the highlighted command and handles the requests it
// emitted.
func (m Model) executePalette() (Model, tea.Cmd) {
	var requests []any
	cmd, err := m.menu.Execute(m.doc, func(req any) { requests = append(requests, req) })
	if cmd == nil {
		return m, nil
	}
	m.cfg.Metrics.ObservePaletteClosed(slash.CloseExecuted.String())

	var teaCmd tea.Cmd
	if err == nil {
		m, teaCmd, err = m.handleRequests(requests)
	}
	m.cfg.Metrics.ObserveCommand(cmd.ID, "palette", err)
	if err != nil {
		m.log.Warn("palette command", zap.String("command", cmd.ID), zap.Error(err))
	}
	return m, teaCmd
}

func (m Model) handleRequests(requests []any) (Model, tea.Cmd, error) {
	var cmds []tea.Cmd
	for _, req := range requests {
		switch req := req.(type) {
		case slash.GenerateRequest:
			var (
				cmd tea.Cmd
				err error
			)
			m, cmd, err = m.beginGenerationAt(req.At, req.Prompt)
			if err != nil {
				return m, tea.Batch(cmds...), err
			}
			cmds = append(cmds, cmd)
		default:
			return m, tea.Batch(cmds...), fmt.Errorf("unsupported command request %T", req)
		}
	}
	return m, tea.Batch(cmds...), nil
}

// OpenPalette opens the palette at the cursor as if the trigger was typed.
func (m Model) OpenPalette() Model {
	if m.cfg.ReadOnly || m.gen.ctrl.Phase() != stream.Idle {
		return m
	}
	if r, ok := m.doc.Selection(); ok {
		_ = m.doc.DeleteRange(r)
	}
	at := m.doc.Cursor()
	m.doc.InsertAtCursor(slash.TriggerChar)
	m.closePalette(slash.CloseNone)
	m.menu.Open(at)
	m.cfg.Metrics.ObservePaletteOpened()
	m.syncFromDocument()
	return m
}

// ClosePalette closes an open palette session and leaves the text in place.
func (m Model) ClosePalette() Model {
	m.closePalette(slash.CloseEscape)
	return m
}

func keyName(msg tea.KeyMsg) string {
	if msg.Type == tea.KeyRunes && msg.Paste {
		return ""
	}
	return msg.String()
}
