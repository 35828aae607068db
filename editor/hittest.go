package editor

import "github.com/iw2rmb/quill/document"

// layout builds the current visual layout.
func (m Model) layout() layout {
	if m.doc == nil {
		return buildLayout(nil, 0)
	}
	return buildLayout(m.doc.Blocks(), m.contentWidth())
}

// screenToDocPos maps viewport-local mouse coordinates to a document position.
//
// Coordinates are in terminal cells and are relative to the editor's viewport:
// (0,0) is the top-left of the visible content region. Clicks on a block
// prefix map to the start of the row; x/y are clamped into document bounds.
func (m Model) screenToDocPos(x, y int) document.Pos {
	if m.doc == nil {
		return document.Pos{}
	}

	l := m.layout()
	ref := l.rows[l.clampRow(m.viewport.YOffset+y)]
	ln := l.lines[ref.line]
	seg := ln.segments[ref.segment]

	cellX := x - ln.prefixWidth
	if cellX <= 0 {
		return document.Pos{Block: ln.block, Col: seg.start}
	}

	target := seg.startCell + cellX
	col := seg.start
	for col < seg.end && ln.offsets[col+1] <= target {
		col++
	}
	// A click past the end of a wrapped row stays on that row.
	if col == seg.end && seg.end < len(ln.cells) && col > seg.start {
		col--
	}
	return document.Pos{Block: ln.block, Col: col}
}

// DocToScreen maps a document position to viewport-local cell coordinates:
// x is the column and y the row relative to the top-left of the visible
// content. The layout is computed fresh on every call, so the result always
// reflects the current scroll offset, size and content.
//
// ok is false when the editor has no size yet, the position does not exist
// in the current document, or it is scrolled out of view. A caret past the last column of a full row is reported on the
// last column.
func (m Model) DocToScreen(pos document.Pos) (x int, y int, ok bool) {
	if m.doc == nil {
		return 0, 0, false
	}
	width := m.contentWidth()
	rows := m.visibleRowCount()
	if width <= 0 || rows <= 0 || !m.doc.Valid(pos) {
		return 0, 0, false
	}

	row, x := m.layout().visualPos(pos)
	y = row - m.viewport.YOffset
	if y < 0 || y >= rows {
		return x, y, false
	}
	if x >= width {
		x = width - 1
	}
	return x, y, true
}

// ScreenToDoc maps viewport-local screen coordinates to a document position.
func (m Model) ScreenToDoc(x, y int) document.Pos {
	return m.screenToDocPos(x, y)
}
