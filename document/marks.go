package document

import "fmt"

// ToggleMark toggles an inline mark over r. When every cell in r already has
// the mark it is removed, otherwise it is added. On an empty range the mark
// is toggled in the stored marks applied to the next insertion.
func (d *Document) ToggleMark(r Range, mark Mark) error {
	r = NormalizeRange(r)
	if !d.Valid(r.Start) || !d.Valid(r.End) {
		return fmt.Errorf("toggle mark %v-%v: %w", r.Start, r.End, ErrOutOfRange)
	}

	if r.IsEmpty() {
		cur, _ := d.insertionStyle(r.Start)
		d.stored = cur ^ mark
		d.storedSet = true
		d.version++
		return nil
	}

	all := true
	d.eachCell(r, func(c *Cell, kind BlockKind) {
		if kind != CodeBlock && !c.Marks.Has(mark) {
			all = false
		}
	})

	return d.mutateCells(r, func(c *Cell) {
		if all {
			c.Marks &^= mark
		} else {
			c.Marks |= mark
		}
	})
}

// SetLink sets href on every cell in r. An empty href removes the link.
func (d *Document) SetLink(r Range, href string) error {
	r = NormalizeRange(r)
	if !d.Valid(r.Start) || !d.Valid(r.End) {
		return fmt.Errorf("set link %v-%v: %w", r.Start, r.End, ErrOutOfRange)
	}
	if r.IsEmpty() {
		return nil
	}
	return d.mutateCells(r, func(c *Cell) { c.Href = href })
}

// ClearFormatting lifts a block back to a paragraph and drops all inline
// marks and links in it.
func (d *Document) ClearFormatting(block int) error {
	if block < 0 || block >= len(d.blocks) {
		return fmt.Errorf("clear formatting %d: %w", block, ErrOutOfRange)
	}
	if d.blocks[block].Kind != Paragraph && d.blocks[block].Kind != Divider {
		if err := d.SetBlockType(block, Paragraph, 0); err != nil {
			return err
		}
	}
	r := Range{Start: Pos{Block: block}, End: Pos{Block: block, Col: d.blocks[block].Len()}}
	if r.IsEmpty() {
		return nil
	}
	return d.mutateCells(r, func(c *Cell) {
		c.Marks = 0
		c.Href = ""
	})
}

// MarksAt returns the marks of the cell before p, which is what typing at p
// would inherit.
func (d *Document) MarksAt(p Pos) Mark {
	if !d.Valid(p) {
		return 0
	}
	m, _ := d.insertionStyle(p)
	return m
}

func (d *Document) eachCell(r Range, fn func(c *Cell, kind BlockKind)) {
	for b := r.Start.Block; b <= r.End.Block; b++ {
		cells := d.blocks[b].Cells
		start, end := 0, len(cells)
		if b == r.Start.Block {
			start = r.Start.Col
		}
		if b == r.End.Block {
			end = r.End.Col
		}
		for i := start; i < end; i++ {
			fn(&cells[i], d.blocks[b].Kind)
		}
	}
}

func (d *Document) mutateCells(r Range, fn func(c *Cell)) error {
	prev := d.snapshot()
	change := d.beginChange()

	changed := false
	d.eachCell(r, func(c *Cell, kind BlockKind) {
		if kind == CodeBlock {
			return
		}
		next := *c
		fn(&next)
		if next != *c {
			*c = next
			changed = true
		}
	})
	if !changed {
		return nil
	}

	// Selection survives formatting so toolbar toggles can be chained.
	d.storedSet = false
	d.bumpText()
	d.recordUndo(prev)
	text := d.textInRange(r)
	change.addAppliedEdit(AppliedEdit{
		RangeBefore: r,
		RangeAfter:  r,
		InsertText:  text,
		DeletedText: text,
	})
	d.commitChange(change)
	return nil
}
