package document

import (
	"fmt"
	"strings"
)

// InsertText inserts s at pos. '\n' splits the block; the tail keeps the
// block's structure so a later DeleteRange over the inserted span restores
// the original blocks. The cursor moves to the end of the inserted text.
func (d *Document) InsertText(pos Pos, s string) (Pos, error) {
	if !d.Valid(pos) {
		return pos, fmt.Errorf("insert at %v: %w", pos, ErrOutOfRange)
	}
	if s == "" {
		return pos, nil
	}

	prev := d.snapshot()
	change := d.beginChange()
	end, applied, changed := d.replaceRange(Collapsed(pos), s)
	if !changed {
		return pos, nil
	}
	d.finishEdit(prev, &change, applied, end)
	return end, nil
}

// InsertAtCursor inserts s at the cursor, or replaces the active selection.
func (d *Document) InsertAtCursor(s string) {
	r, ok := d.Selection()
	if !ok {
		r = Collapsed(d.cursor)
	}
	if s == "" && r.IsEmpty() {
		return
	}

	prev := d.snapshot()
	change := d.beginChange()
	end, applied, changed := d.replaceRange(r, s)
	if !changed {
		return
	}
	d.finishEdit(prev, &change, applied, end)
}

// DeleteRange removes the content of r. Deleting across blocks joins the
// remainder of the last block into the first one.
func (d *Document) DeleteRange(r Range) error {
	r = NormalizeRange(r)
	if !d.Valid(r.Start) || !d.Valid(r.End) {
		return fmt.Errorf("delete %v-%v: %w", r.Start, r.End, ErrOutOfRange)
	}
	if r.IsEmpty() {
		return nil
	}

	prev := d.snapshot()
	change := d.beginChange()
	end, applied, changed := d.replaceRange(r, "")
	if !changed {
		return nil
	}
	d.finishEdit(prev, &change, applied, end)
	return nil
}

// DeleteBackward applies backspace semantics. At the start of a structured
// block (heading, list item, quote, code) the block is lifted back to a
// paragraph instead of joining with the previous block.
func (d *Document) DeleteBackward() {
	if r, ok := d.Selection(); ok {
		_ = d.DeleteRange(r)
		return
	}

	p := d.cursor
	if p.Col > 0 {
		_ = d.DeleteRange(Range{Start: Pos{Block: p.Block, Col: p.Col - 1}, End: p})
		return
	}
	if kind := d.blocks[p.Block].Kind; kind != Paragraph && kind != Divider {
		_ = d.SetBlockType(p.Block, Paragraph, 0)
		return
	}
	if p.Block == 0 {
		return
	}
	if d.blocks[p.Block-1].Kind == Divider {
		d.removeBlock(p.Block - 1)
		return
	}
	_ = d.DeleteRange(Range{Start: Pos{Block: p.Block - 1, Col: d.blocks[p.Block-1].Len()}, End: p})
}

// DeleteForward applies delete-key semantics.
func (d *Document) DeleteForward() {
	if r, ok := d.Selection(); ok {
		_ = d.DeleteRange(r)
		return
	}

	p := d.cursor
	if p.Col < d.blocks[p.Block].Len() {
		_ = d.DeleteRange(Range{Start: p, End: Pos{Block: p.Block, Col: p.Col + 1}})
		return
	}
	if p.Block == len(d.blocks)-1 {
		return
	}
	if d.blocks[p.Block+1].Kind == Divider {
		d.removeBlock(p.Block + 1)
		return
	}
	_ = d.DeleteRange(Range{Start: p, End: Pos{Block: p.Block + 1}})
}

// SplitBlock applies enter-key semantics at the cursor.
//
// An empty list item or quote line is lifted to a paragraph. Splitting a
// heading starts a paragraph.
func (d *Document) SplitBlock() {
	if r, ok := d.Selection(); ok {
		_ = d.DeleteRange(r)
	}

	p := d.cursor
	cur := d.blocks[p.Block]
	if cur.Len() == 0 && (cur.Kind.IsList() || cur.Kind == Quote) {
		_ = d.SetBlockType(p.Block, Paragraph, 0)
		return
	}
	if cur.Kind == Divider {
		d.insertBlock(p.Block+1, Block{Kind: Paragraph})
		return
	}

	prev := d.snapshot()
	change := d.beginChange()
	end, applied, changed := d.replaceRange(Collapsed(p), "\n")
	if !changed {
		return
	}
	if cur.Kind == Heading {
		d.blocks[end.Block].Kind = Paragraph
		d.blocks[end.Block].Level = 0
	}
	d.finishEdit(prev, &change, applied, end)
}

// SetBlockType changes the structural type of a block. Setting Divider on a
// non-empty block inserts a divider after it; on an empty block the block
// itself becomes the divider and a paragraph follows it.
func (d *Document) SetBlockType(block int, kind BlockKind, level int) error {
	if block < 0 || block >= len(d.blocks) {
		return fmt.Errorf("set block type %d: %w", block, ErrOutOfRange)
	}
	if kind > Divider {
		return fmt.Errorf("set block type %v: %w", kind, ErrInvalidBlock)
	}
	level = normalizeLevel(kind, level)

	if kind == Divider {
		d.insertDivider(block)
		return nil
	}

	cur := d.blocks[block]
	if cur.Kind == kind && cur.Level == level {
		return nil
	}

	prev := d.snapshot()
	change := d.beginChange()
	next := cur.clone()
	next.Kind = kind
	next.Level = level
	if kind != TaskList {
		next.Checked = false
	}
	if kind == CodeBlock {
		for i := range next.Cells {
			next.Cells[i].Marks = 0
			next.Cells[i].Href = ""
		}
	}
	d.blocks[block] = next
	d.finishEdit(prev, &change, AppliedEdit{
		RangeBefore: Range{Start: Pos{Block: block}, End: Pos{Block: block, Col: cur.Len()}},
		RangeAfter:  Range{Start: Pos{Block: block}, End: Pos{Block: block, Col: next.Len()}},
	}, d.cursor)
	return nil
}

// ToggleTask flips the checked state of a task list item.
func (d *Document) ToggleTask(block int) error {
	if block < 0 || block >= len(d.blocks) {
		return fmt.Errorf("toggle task %d: %w", block, ErrOutOfRange)
	}
	if d.blocks[block].Kind != TaskList {
		return fmt.Errorf("toggle task on %s: %w", d.blocks[block].Kind, ErrInvalidBlock)
	}
	prev := d.snapshot()
	change := d.beginChange()
	d.blocks[block].Checked = !d.blocks[block].Checked
	span := Range{Start: Pos{Block: block}, End: Pos{Block: block, Col: d.blocks[block].Len()}}
	d.finishEdit(prev, &change, AppliedEdit{RangeBefore: span, RangeAfter: span}, d.cursor)
	return nil
}

// InsertParagraph inserts an empty paragraph at block index at and moves the
// cursor into it.
func (d *Document) InsertParagraph(at int) (Pos, error) {
	if at < 0 || at > len(d.blocks) {
		return Pos{}, fmt.Errorf("insert paragraph %d: %w", at, ErrOutOfRange)
	}
	d.insertBlock(at, Block{Kind: Paragraph})
	return Pos{Block: at}, nil
}

// RemoveBlock deletes the block at index at. The only remaining block is
// never removed.
func (d *Document) RemoveBlock(at int) error {
	if at < 0 || at >= len(d.blocks) {
		return fmt.Errorf("remove block %d: %w", at, ErrOutOfRange)
	}
	d.removeBlock(at)
	return nil
}

func (d *Document) insertDivider(block int) {
	prev := d.snapshot()
	change := d.beginChange()

	at := block + 1
	if d.blocks[block].Len() == 0 {
		d.blocks[block] = Block{Kind: Divider}
	} else {
		d.blocks = append(d.blocks[:at], append([]Block{{Kind: Divider}}, d.blocks[at:]...)...)
		block = at
	}
	follow := block + 1
	if follow >= len(d.blocks) || d.blocks[follow].Kind == Divider {
		d.blocks = append(d.blocks[:follow], append([]Block{{Kind: Paragraph}}, d.blocks[follow:]...)...)
	}
	d.finishEdit(prev, &change, AppliedEdit{
		RangeBefore: Collapsed(Pos{Block: block}),
		RangeAfter:  Collapsed(Pos{Block: follow}),
	}, Pos{Block: follow})
}

func (d *Document) insertBlock(at int, b Block) {
	prev := d.snapshot()
	change := d.beginChange()
	d.blocks = append(d.blocks[:at], append([]Block{b}, d.blocks[at:]...)...)
	d.finishEdit(prev, &change, AppliedEdit{
		RangeBefore: Collapsed(Pos{Block: at}),
		RangeAfter:  Collapsed(Pos{Block: at}),
	}, Pos{Block: at})
}

func (d *Document) removeBlock(at int) {
	if len(d.blocks) == 1 {
		return
	}
	prev := d.snapshot()
	change := d.beginChange()
	d.blocks = append(d.blocks[:at], d.blocks[at+1:]...)
	cursor := d.cursor
	if cursor.Block > at {
		cursor.Block--
	}
	d.finishEdit(prev, &change, AppliedEdit{
		RangeBefore: Collapsed(Pos{Block: at}),
		RangeAfter:  Collapsed(Pos{Block: at}),
	}, d.clampPos(cursor))
}

func (d *Document) finishEdit(prev docSnapshot, change *changeBuilder, applied AppliedEdit, cursor Pos) {
	d.cursor = d.clampPos(cursor)
	d.sel = selectionState{}
	d.storedSet = false
	d.bumpText()
	d.recordUndo(prev)
	change.addAppliedEdit(applied)
	d.commitChange(*change)
}

// insertionStyle returns the marks and link new text at p should carry.
func (d *Document) insertionStyle(p Pos) (Mark, string) {
	if d.storedSet {
		return d.stored, ""
	}
	if p.Col == 0 {
		return 0, ""
	}
	left := d.blocks[p.Block].Cells[p.Col-1]
	return left.Marks, left.Href
}

func (d *Document) replaceRange(r Range, text string) (end Pos, applied AppliedEdit, changed bool) {
	r = NormalizeRange(d.ClampRange(r))
	if r.IsEmpty() && text == "" {
		return r.Start, AppliedEdit{}, false
	}

	deleted := d.textInRange(r)
	first := d.blocks[r.Start.Block]
	last := d.blocks[r.End.Block]
	prefix := cloneCells(first.Cells[:r.Start.Col])
	suffix := cloneCells(last.Cells[r.End.Col:])
	marks, href := d.insertionStyle(r.Start)
	if first.Kind == CodeBlock {
		marks, href = 0, ""
	}

	parts := strings.Split(text, "\n")
	repl := make([]Block, 0, len(parts))
	for i, part := range parts {
		var b Block
		if i == 0 {
			b = first.clone()
			b.Cells = append(prefix, makeCells(part, marks, href)...)
		} else {
			b = first.continuation()
			b.Cells = makeCells(part, marks, href)
		}
		repl = append(repl, b)
	}
	lastIdx := len(repl) - 1
	end = Pos{Block: r.Start.Block + lastIdx, Col: repl[lastIdx].Len()}
	repl[lastIdx].Cells = append(repl[lastIdx].Cells, suffix...)
	for i := range repl {
		if repl[i].Kind == Divider && repl[i].Len() > 0 {
			repl[i].Kind = Paragraph
		}
	}

	out := make([]Block, 0, len(d.blocks)-(r.End.Block-r.Start.Block)+lastIdx)
	out = append(out, d.blocks[:r.Start.Block]...)
	out = append(out, repl...)
	out = append(out, d.blocks[r.End.Block+1:]...)
	d.blocks = out

	return end, AppliedEdit{
		RangeBefore: r,
		RangeAfter:  Range{Start: r.Start, End: end},
		InsertText:  text,
		DeletedText: deleted,
	}, true
}
