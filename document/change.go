package document

import "strings"

// SelectionState captures normalized selection state at a point in time.
type SelectionState struct {
	Active bool
	Range  Range
}

// AppliedEdit describes one effective edit in a change.
type AppliedEdit struct {
	RangeBefore Range
	RangeAfter  Range
	InsertText  string
	DeletedText string
}

// Change is a normalized, versioned mutation record.
type Change struct {
	VersionBefore     uint64
	VersionAfter      uint64
	TextVersionBefore uint64
	TextVersionAfter  uint64
	CursorBefore      Pos
	CursorAfter       Pos
	SelectionBefore   SelectionState
	SelectionAfter    SelectionState
	AppliedEdits      []AppliedEdit
}

type changeBuilder struct {
	versionBefore     uint64
	textVersionBefore uint64
	cursorBefore      Pos
	selectionBefore   SelectionState
	appliedEdits      []AppliedEdit
}

// LastChange returns the most recent content change.
func (d *Document) LastChange() (Change, bool) {
	if !d.hasLastChange {
		return Change{}, false
	}
	out := d.lastChange
	out.AppliedEdits = append([]AppliedEdit(nil), d.lastChange.AppliedEdits...)
	return out, true
}

func (d *Document) selectionState() SelectionState {
	if r, ok := d.Selection(); ok {
		return SelectionState{Active: true, Range: r}
	}
	return SelectionState{}
}

func (d *Document) beginChange() changeBuilder {
	return changeBuilder{
		versionBefore:     d.version,
		textVersionBefore: d.textVersion,
		cursorBefore:      d.cursor,
		selectionBefore:   d.selectionState(),
	}
}

func (cb *changeBuilder) addAppliedEdit(edit AppliedEdit) {
	edit.RangeBefore = NormalizeRange(edit.RangeBefore)
	edit.RangeAfter = NormalizeRange(edit.RangeAfter)
	cb.appliedEdits = append(cb.appliedEdits, edit)
}

func (cb *changeBuilder) addWholeDocumentEdit(before, after []Block) {
	beforeText, afterText := blocksText(before), blocksText(after)
	cb.addAppliedEdit(AppliedEdit{
		RangeBefore: Range{End: blocksEnd(before)},
		RangeAfter:  Range{End: blocksEnd(after)},
		InsertText:  afterText,
		DeletedText: beforeText,
	})
}

func (d *Document) commitChange(cb changeBuilder) {
	if d.textVersion == cb.textVersionBefore {
		return
	}
	d.lastChange = Change{
		VersionBefore:     cb.versionBefore,
		VersionAfter:      d.version,
		TextVersionBefore: cb.textVersionBefore,
		TextVersionAfter:  d.textVersion,
		CursorBefore:      cb.cursorBefore,
		CursorAfter:       d.cursor,
		SelectionBefore:   cb.selectionBefore,
		SelectionAfter:    d.selectionState(),
		AppliedEdits:      append([]AppliedEdit(nil), cb.appliedEdits...),
	}
	d.hasLastChange = true
}

func blocksText(blocks []Block) string {
	parts := make([]string, len(blocks))
	for i, b := range blocks {
		parts[i] = b.Text()
	}
	return strings.Join(parts, "\n")
}

func blocksEnd(blocks []Block) Pos {
	if len(blocks) == 0 {
		return Pos{}
	}
	last := len(blocks) - 1
	return Pos{Block: last, Col: blocks[last].Len()}
}
