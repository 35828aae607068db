package editor

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/iw2rmb/quill/document"
)

func (m Model) updateMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)

	if !m.focused || m.doc == nil {
		return m, cmd
	}

	// Only handle selection/cursor changes for left button interactions.
	switch msg.Action { //nolint:exhaustive
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, cmd
		}
		if !m.mouseInBounds(msg.X, msg.Y) {
			return m, cmd
		}

		p := m.screenToDocPos(msg.X, msg.Y)
		if msg.Shift {
			anchor := m.doc.Cursor()
			if r, ok := m.doc.Selection(); ok {
				anchor = r.Start
			}
			m.mouseAnchor = anchor
			m.doc.SetSelection(document.Range{Start: anchor, End: p})
		} else {
			m.mouseAnchor = p
			m.doc.SetCursor(p)
		}
		m.mouseDragging = true

	case tea.MouseActionMotion:
		if !m.mouseDragging {
			return m, cmd
		}

		x, y := m.clampMouseToBounds(msg.X, msg.Y)
		p := m.screenToDocPos(x, y)
		if p == m.mouseAnchor {
			m.doc.SetCursor(p)
		} else {
			m.doc.SetSelection(document.Range{Start: m.mouseAnchor, End: p})
		}

	case tea.MouseActionRelease:
		m.mouseDragging = false
	}

	return m, cmd
}

func (m Model) mouseInBounds(x, y int) bool {
	if m.viewport.Width <= 0 || m.viewport.Height <= 0 {
		return false
	}
	return x >= 0 && x < m.viewport.Width && y >= 0 && y < m.viewport.Height
}

func (m Model) clampMouseToBounds(x, y int) (int, int) {
	if m.viewport.Width > 0 {
		x = clampInt(x, 0, m.viewport.Width-1)
	}
	if m.viewport.Height > 0 {
		y = clampInt(y, 0, m.viewport.Height-1)
	}
	return x, y
}
