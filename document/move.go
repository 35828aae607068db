package document

import "github.com/iw2rmb/quill/internal/grapheme"

type MoveUnit int

const (
	MoveGrapheme MoveUnit = iota
	MoveWord
	MoveBlock
	MoveDoc
)

type MoveDir int

const (
	DirLeft MoveDir = iota
	DirRight
	DirUp
	DirDown
	DirHome // block start (or doc start for MoveDoc)
	DirEnd  // block end (or doc end for MoveDoc)
)

type Move struct {
	Unit   MoveUnit
	Dir    MoveDir
	Extend bool // if true, extends the selection; if false clears it
}

func (d *Document) Move(m Move) {
	prevCursor := d.cursor
	prevSel := d.sel

	nextCursor := d.clampPos(d.moveCursor(prevCursor, m))

	nextSel := selectionState{}
	if m.Extend {
		anchor := prevCursor
		if prevSel.active && prevSel.anchor != prevSel.end {
			anchor = prevSel.anchor
		}
		if anchor != nextCursor {
			nextSel = selectionState{active: true, anchor: anchor, end: nextCursor}
		}
	}

	if prevCursor == nextCursor && prevSel == nextSel {
		return
	}

	d.cursor = nextCursor
	d.sel = nextSel
	d.storedSet = false
	d.version++
}

func (d *Document) moveCursor(p Pos, m Move) Pos {
	switch m.Unit {
	case MoveGrapheme:
		return d.moveGrapheme(p, m.Dir)
	case MoveWord:
		return d.moveWord(p, m.Dir)
	case MoveBlock:
		return d.moveBlock(p, m.Dir)
	case MoveDoc:
		return d.moveDoc(p, m.Dir)
	default:
		return p
	}
}

func (d *Document) moveGrapheme(p Pos, dir MoveDir) Pos {
	b, col := p.Block, p.Col
	last := len(d.blocks) - 1

	switch dir {
	case DirLeft:
		if b == 0 && col == 0 {
			return p
		}
		if col > 0 {
			return Pos{Block: b, Col: col - 1}
		}
		return Pos{Block: b - 1, Col: d.blocks[b-1].Len()}
	case DirRight:
		if b == last && col == d.blocks[last].Len() {
			return p
		}
		if col < d.blocks[b].Len() {
			return Pos{Block: b, Col: col + 1}
		}
		return Pos{Block: b + 1}
	case DirUp, DirDown, DirHome, DirEnd:
		return d.moveBlock(p, dir)
	default:
		return p
	}
}

func (d *Document) moveWord(p Pos, dir MoveDir) Pos {
	cells := d.blocks[p.Block].Cells

	switch dir {
	case DirLeft:
		if p.Col == 0 {
			return d.moveGrapheme(p, DirLeft)
		}
		return Pos{Block: p.Block, Col: prevWordBoundary(cells, p.Col)}
	case DirRight:
		if p.Col == len(cells) {
			return d.moveGrapheme(p, DirRight)
		}
		return Pos{Block: p.Block, Col: nextWordBoundary(cells, p.Col)}
	default:
		return d.moveBlock(p, dir)
	}
}

func (d *Document) moveBlock(p Pos, dir MoveDir) Pos {
	b, col := p.Block, p.Col
	last := len(d.blocks) - 1

	switch dir {
	case DirHome:
		return Pos{Block: b}
	case DirEnd:
		return Pos{Block: b, Col: d.blocks[b].Len()}
	case DirUp:
		if b == 0 {
			return Pos{Block: 0}
		}
		return Pos{Block: b - 1, Col: minInt(col, d.blocks[b-1].Len())}
	case DirDown:
		if b == last {
			return Pos{Block: last, Col: d.blocks[last].Len()}
		}
		return Pos{Block: b + 1, Col: minInt(col, d.blocks[b+1].Len())}
	default:
		return p
	}
}

func (d *Document) moveDoc(p Pos, dir MoveDir) Pos {
	switch dir {
	case DirHome, DirUp:
		return Pos{}
	case DirEnd, DirDown:
		return d.End()
	default:
		return p
	}
}

// Word boundary rules: skip whitespace, then skip non-whitespace. Block edges
// are hard boundaries.
func prevWordBoundary(cells []Cell, col int) int {
	i := clampInt(col, 0, len(cells))
	for i > 0 && grapheme.IsSpace(cells[i-1].Text) {
		i--
	}
	for i > 0 && !grapheme.IsSpace(cells[i-1].Text) {
		i--
	}
	return i
}

func nextWordBoundary(cells []Cell, col int) int {
	i := clampInt(col, 0, len(cells))
	for i < len(cells) && grapheme.IsSpace(cells[i].Text) {
		i++
	}
	for i < len(cells) && !grapheme.IsSpace(cells[i].Text) {
		i++
	}
	return i
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
