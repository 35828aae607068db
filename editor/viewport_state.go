package editor

// ViewportState is a stable host-facing snapshot of editor camera state.
type ViewportState struct {
	// TopVisualRow is the visual row index rendered at viewport screen row 0.
	TopVisualRow int
	// VisibleRows is the number of content rows available for rendering.
	VisibleRows int
	// Width is the content width in cells that rows wrap at.
	Width int
	// TotalRows is the number of visual rows of the whole document.
	TotalRows int
}

// ViewportState returns the current host-facing viewport state.
func (m Model) ViewportState() ViewportState {
	return ViewportState{
		TopVisualRow: maxInt(m.viewport.YOffset, 0),
		VisibleRows:  m.visibleRowCount(),
		Width:        m.contentWidth(),
		TotalRows:    len(m.layout().rows),
	}
}

func (m Model) visibleRowCount() int {
	h := m.viewport.Height - m.viewport.Style.GetVerticalFrameSize()
	if h < 0 {
		return 0
	}
	return h
}

func (m Model) contentWidth() int {
	w := m.viewport.Width - m.viewport.Style.GetHorizontalFrameSize()
	if w < 0 {
		return 0
	}
	return w
}
