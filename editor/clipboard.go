package editor

import (
	"strings"

	"go.uber.org/zap"
)

// Clipboard provides editor-level clipboard integration.
//
// Errors must not crash the UI; failures are logged and ignored.
type Clipboard interface {
	ReadText() (string, error)
	WriteText(s string) error
}

func (m Model) copySelection() {
	if m.cfg.Clipboard == nil || m.doc == nil {
		return
	}
	r, ok := m.doc.Selection()
	if !ok {
		return
	}
	s := m.doc.TextBetween(r.Start, r.End)
	if s == "" {
		return
	}
	if err := m.cfg.Clipboard.WriteText(s); err != nil {
		m.log.Warn("clipboard write", zap.Error(err))
	}
}

func (m Model) cutSelection() {
	if m.cfg.Clipboard == nil || m.doc == nil {
		return
	}
	r, ok := m.doc.Selection()
	if !ok {
		return
	}
	m.copySelection()
	_ = m.doc.DeleteRange(r)
}

func (m Model) pasteClipboard() {
	if m.cfg.Clipboard == nil || m.doc == nil {
		return
	}
	s, err := m.cfg.Clipboard.ReadText()
	if err != nil {
		m.log.Warn("clipboard read", zap.Error(err))
		return
	}
	if s == "" {
		return
	}
	m.doc.InsertAtCursor(normalizeNewlines(s))
}

// Normalize newlines from external sources.
func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
