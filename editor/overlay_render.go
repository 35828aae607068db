package editor

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/iw2rmb/quill/document"
	"github.com/iw2rmb/quill/internal/grapheme"
	"github.com/iw2rmb/quill/stream"
)

// streamControlsRender composites the generation controls under the end of
// the generated range: a spinner with Stop while streaming, Accept and
// Reject (and the failure, if any) while awaiting a decision.
func (m Model) streamControlsRender(base string) (string, bool) {
	sess := m.gen.ctrl.Session()
	if sess.Phase == stream.Idle || !sess.HasRange {
		return "", false
	}

	viewportWidth := m.contentWidth()
	viewportHeight := m.visibleRowCount()
	if viewportWidth <= 0 || viewportHeight <= 0 {
		return "", false
	}
	anchorX, anchorY, ok := m.DocToScreen(m.doc.ClampRange(sess.Range).End)
	if !ok {
		return "", false
	}

	st := m.cfg.Style
	km := m.cfg.StreamKeyMap
	var rows []string
	if sess.Phase == stream.Streaming {
		rows = append(rows, st.Overlay.Render(" "+m.spinner.View()+" Writing ")+
			st.OverlayButton.Render(buttonLabel("Stop", km.Stop)))
	} else {
		if sess.Err != nil {
			msg := truncateCells(" "+sess.Err.Error()+" ", viewportWidth)
			rows = append(rows, st.OverlayError.Render(msg))
		}
		rows = append(rows, st.OverlayButton.Render(buttonLabel("Accept", km.Accept))+
			st.Overlay.Render(" ")+
			st.OverlayButton.Render(buttonLabel("Reject", km.Reject)))
	}

	width := 0
	for _, r := range rows {
		width = maxInt(width, lipgloss.Width(r))
	}
	rowCount, below := popupRows(len(rows), anchorY, viewportHeight)
	if rowCount < len(rows) {
		rows = rows[len(rows)-maxInt(rowCount, 1):]
	}
	x, y := placePopup(anchorX, anchorY, minInt(width, viewportWidth), len(rows), below, viewportWidth, viewportHeight)
	return m.composite(rows, base, x, y), true
}

func buttonLabel(label string, b key.Binding) string {
	if h := b.Help().Key; h != "" {
		return " " + label + " " + h + " "
	}
	return " " + label + " "
}

// BubbleMenuVisible reports whether the formatting bubble menu is shown: a
// non-empty selection exists, the editor is focused and editable, and no
// palette or generation is active.
func (m Model) BubbleMenuVisible() bool {
	if !m.focused || m.cfg.ReadOnly || m.menu.IsOpen() || m.gen.ctrl.Phase() != stream.Idle {
		return false
	}
	_, ok := m.doc.Selection()
	return ok
}

var bubbleItems = []struct {
	label string
	mark  document.Mark
}{
	{"B", document.MarkBold},
	{"I", document.MarkItalic},
	{"U", document.MarkUnderline},
	{"S", document.MarkStrike},
	{"<>", document.MarkCode},
}

// bubbleMenuRender composites the bubble menu above the selection start, or
// under it when the selection starts on the first visible row.
func (m Model) bubbleMenuRender(base string) (string, bool) {
	if !m.BubbleMenuVisible() {
		return "", false
	}
	r, _ := m.doc.Selection()

	viewportWidth := m.contentWidth()
	viewportHeight := m.visibleRowCount()
	anchorX, anchorY, ok := m.DocToScreen(r.Start)
	if !ok || viewportHeight < 2 {
		return "", false
	}

	active := m.SelectionMarks()
	st := m.cfg.Style
	var sb strings.Builder
	width := 0
	for _, it := range bubbleItems {
		cell := " " + it.label + " "
		width += grapheme.StringWidth(cell)
		if active.Has(it.mark) {
			sb.WriteString(st.BubbleActive.Inherit(st.Bubble).Render(cell))
		} else {
			sb.WriteString(st.Bubble.Render(cell))
		}
	}

	y := anchorY - 1
	if y < 0 {
		y = anchorY + 1
	}
	x := clampInt(anchorX, 0, maxInt(viewportWidth-width, 0))
	return m.composite([]string{sb.String()}, base, x, y), true
}
