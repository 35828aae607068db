package editor

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/iw2rmb/quill/document"
	"github.com/iw2rmb/quill/stream"
)

func (m Model) updateKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if !m.focused || m.doc == nil {
		return m, nil
	}

	if m.gen.ctrl.Phase() != stream.Idle {
		return m.updateStreamKey(msg)
	}

	if m.menu.IsOpen() {
		if next, cmd, ok := m.updatePaletteKey(msg); ok {
			return next, cmd
		}
	}
	if !m.cfg.ReadOnly && m.decideKey(msg) {
		return m, nil
	}

	// Paste events should always insert literal text and never trigger shortcuts.
	if msg.Type == tea.KeyRunes && msg.Paste && len(msg.Runes) > 0 {
		if !m.cfg.ReadOnly {
			m.doc.InsertAtCursor(normalizeNewlines(string(msg.Runes)))
		}
		return m, nil
	}

	if m.moveKey(msg) {
		return m, nil
	}

	km := m.cfg.KeyMap
	switch {
	case key.Matches(msg, km.Copy):
		m.copySelection()
		return m, nil
	case m.cfg.ReadOnly:
		if key.Matches(msg, km.Cut) {
			m.copySelection()
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, km.Backspace):
		m.doc.DeleteBackward()
	case key.Matches(msg, km.Delete):
		m.doc.DeleteForward()
	case key.Matches(msg, km.Enter):
		m.doc.SplitBlock()

	case key.Matches(msg, km.Undo):
		_ = m.doc.Undo()
	case key.Matches(msg, km.Redo):
		_ = m.doc.Redo()

	case key.Matches(msg, km.Cut):
		m.cutSelection()
	case key.Matches(msg, km.Paste):
		m.pasteClipboard()

	case key.Matches(msg, km.Bold):
		_ = m.toggleMark(document.MarkBold)
	case key.Matches(msg, km.Italic):
		_ = m.toggleMark(document.MarkItalic)
	case key.Matches(msg, km.Underline):
		_ = m.toggleMark(document.MarkUnderline)
	case key.Matches(msg, km.Strike):
		_ = m.toggleMark(document.MarkStrike)
	case key.Matches(msg, km.Code):
		_ = m.toggleMark(document.MarkCode)
	case key.Matches(msg, km.ToggleTask):
		_ = m.doc.ToggleTask(m.doc.Cursor().Block)

	default:
		switch {
		case msg.Type == tea.KeyTab:
			m.doc.InsertAtCursor("\t")
		case msg.Type == tea.KeySpace:
			m.doc.InsertAtCursor(" ")
		case msg.Type == tea.KeyRunes && len(msg.Runes) > 0 && !msg.Alt:
			m.doc.InsertAtCursor(string(msg.Runes))
		}
	}

	return m, nil
}

// moveKey applies cursor movement keys. Movement never changes content, so
// it is allowed while a generation is running.
func (m Model) moveKey(msg tea.KeyMsg) bool {
	km := m.cfg.KeyMap
	var mv document.Move
	switch {
	case key.Matches(msg, km.Left):
		mv = document.Move{Unit: document.MoveGrapheme, Dir: document.DirLeft}
	case key.Matches(msg, km.Right):
		mv = document.Move{Unit: document.MoveGrapheme, Dir: document.DirRight}
	case key.Matches(msg, km.Up):
		mv = document.Move{Unit: document.MoveBlock, Dir: document.DirUp}
	case key.Matches(msg, km.Down):
		mv = document.Move{Unit: document.MoveBlock, Dir: document.DirDown}

	case key.Matches(msg, km.ShiftLeft):
		mv = document.Move{Unit: document.MoveGrapheme, Dir: document.DirLeft, Extend: true}
	case key.Matches(msg, km.ShiftRight):
		mv = document.Move{Unit: document.MoveGrapheme, Dir: document.DirRight, Extend: true}
	case key.Matches(msg, km.ShiftUp):
		mv = document.Move{Unit: document.MoveBlock, Dir: document.DirUp, Extend: true}
	case key.Matches(msg, km.ShiftDown):
		mv = document.Move{Unit: document.MoveBlock, Dir: document.DirDown, Extend: true}

	case key.Matches(msg, km.WordLeft):
		mv = document.Move{Unit: document.MoveWord, Dir: document.DirLeft}
	case key.Matches(msg, km.WordRight):
		mv = document.Move{Unit: document.MoveWord, Dir: document.DirRight}

	case key.Matches(msg, km.Home):
		mv = document.Move{Unit: document.MoveBlock, Dir: document.DirHome}
	case key.Matches(msg, km.End):
		mv = document.Move{Unit: document.MoveBlock, Dir: document.DirEnd}
	case key.Matches(msg, km.DocStart):
		mv = document.Move{Unit: document.MoveDoc, Dir: document.DirHome}
	case key.Matches(msg, km.DocEnd):
		mv = document.Move{Unit: document.MoveDoc, Dir: document.DirEnd}
	default:
		return false
	}
	m.doc.Move(mv)
	return true
}

// updateStreamKey handles keys while a generation is streaming or awaiting a
// decision. Only the overlay controls and cursor movement are honored; every
// other key is swallowed so the generated range cannot be edited.
func (m Model) updateStreamKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	km := m.cfg.StreamKeyMap
	switch m.gen.ctrl.Phase() {
	case stream.Streaming:
		if key.Matches(msg, km.Stop) {
			return m.StopGeneration(), nil
		}
	case stream.AwaitingDecision:
		switch {
		case key.Matches(msg, km.Accept):
			m, _ = m.AcceptGeneration()
			return m, nil
		case key.Matches(msg, km.Reject):
			m, _ = m.RejectGeneration()
			return m, nil
		}
	}
	if key.Matches(msg, m.cfg.KeyMap.Copy) {
		m.copySelection()
		return m, nil
	}
	m.moveKey(msg)
	return m, nil
}
