package document

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrOutOfRange is returned when a position or range does not address the
	// current document snapshot.
	ErrOutOfRange = errors.New("document: position out of range")
	// ErrInvalidBlock is returned for unknown block kinds or block indexes.
	ErrInvalidBlock = errors.New("document: invalid block")
)

type Options struct {
	HistoryLimit int // default: 1000

	// ID identifies the document to hosts (cache keys, logs). Generated when
	// empty.
	ID string
}

type selectionState struct {
	active bool
	anchor Pos
	end    Pos
}

// Document is the mutable document state: blocks, cursor, selection, stored
// marks and history.
//
// A Document is not safe for concurrent use; the editor owns it and mutates
// it from the UI loop only.
type Document struct {
	id     string
	blocks []Block

	version     uint64
	textVersion uint64

	cursor Pos
	sel    selectionState

	stored    Mark
	storedSet bool

	opt  Options
	hist historyState

	lastChange    Change
	hasLastChange bool
}

// New builds a document from plain text: one paragraph per line.
func New(text string, opt Options) *Document {
	lines := strings.Split(text, "\n")
	blocks := make([]Block, 0, len(lines))
	for _, line := range lines {
		blocks = append(blocks, Block{Kind: Paragraph, Cells: makeCells(line, 0, "")})
	}
	return newFromBlocks(blocks, opt)
}

// NewFromBlocks builds a document from explicit blocks. The blocks are copied.
func NewFromBlocks(blocks []Block, opt Options) *Document {
	copied := make([]Block, 0, len(blocks))
	for _, b := range blocks {
		b = b.clone()
		b.Level = normalizeLevel(b.Kind, b.Level)
		if b.Kind == Divider {
			b.Cells = nil
		}
		copied = append(copied, b)
	}
	return newFromBlocks(copied, opt)
}

func newFromBlocks(blocks []Block, opt Options) *Document {
	if opt.HistoryLimit == 0 {
		opt.HistoryLimit = 1000
	}
	if opt.ID == "" {
		opt.ID = uuid.NewString()
	}
	if len(blocks) == 0 {
		blocks = []Block{{Kind: Paragraph}}
	}
	return &Document{
		id:     opt.ID,
		blocks: blocks,
		opt:    opt,
	}
}

func (d *Document) ID() string { return d.id }

// Text returns the plain text of the document, blocks joined by '\n'.
func (d *Document) Text() string {
	var sb strings.Builder
	for i, b := range d.blocks {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(b.Text())
	}
	return sb.String()
}

// Version changes on every effective state change, including cursor moves.
func (d *Document) Version() uint64 { return d.version }

// TextVersion changes only when content or block structure changes.
func (d *Document) TextVersion() uint64 { return d.textVersion }

func (d *Document) BlockCount() int { return len(d.blocks) }

// Block returns a copy of the block at index i.
func (d *Document) Block(i int) (Block, bool) {
	if i < 0 || i >= len(d.blocks) {
		return Block{}, false
	}
	return d.blocks[i].clone(), true
}

// Blocks returns a copy of all blocks.
func (d *Document) Blocks() []Block {
	out := make([]Block, len(d.blocks))
	for i, b := range d.blocks {
		out[i] = b.clone()
	}
	return out
}

func (d *Document) BlockText(i int) string {
	if i < 0 || i >= len(d.blocks) {
		return ""
	}
	return d.blocks[i].Text()
}

// End returns the position after the last cell of the document.
func (d *Document) End() Pos {
	last := len(d.blocks) - 1
	return Pos{Block: last, Col: d.blocks[last].Len()}
}

func (d *Document) Cursor() Pos { return d.cursor }

func (d *Document) SetCursor(p Pos) {
	next := d.clampPos(p)
	if next == d.cursor && !d.sel.active {
		return
	}
	d.cursor = next
	d.sel = selectionState{}
	d.storedSet = false
	d.version++
}

func (d *Document) Selection() (Range, bool) {
	if !d.sel.active {
		return Range{}, false
	}
	r := NormalizeRange(Range{Start: d.sel.anchor, End: d.sel.end})
	if r.IsEmpty() {
		return Range{}, false
	}
	return r, true
}

// SetSelection selects r and places the cursor at r.End.
func (d *Document) SetSelection(r Range) {
	clamped := d.ClampRange(r)
	if clamped.Start == clamped.End {
		d.ClearSelection()
		return
	}
	next := selectionState{active: true, anchor: clamped.Start, end: clamped.End}
	if next == d.sel && d.cursor == clamped.End {
		return
	}
	d.sel = next
	d.cursor = clamped.End
	d.version++
}

func (d *Document) ClearSelection() {
	if !d.sel.active {
		return
	}
	d.sel = selectionState{}
	d.version++
}

// StoredMarks returns the marks that the next insertion will carry when they
// were set explicitly by toggling a mark on an empty selection.
func (d *Document) StoredMarks() (Mark, bool) {
	return d.stored, d.storedSet
}

// ClampRange clamps both ends of r into the current document bounds.
func (d *Document) ClampRange(r Range) Range {
	return ClampRange(r, len(d.blocks), d.blockLen)
}

func (d *Document) ClampPos(p Pos) Pos { return d.clampPos(p) }

// Valid reports whether p addresses the current document snapshot.
func (d *Document) Valid(p Pos) bool {
	if p.Block < 0 || p.Block >= len(d.blocks) {
		return false
	}
	return p.Col >= 0 && p.Col <= d.blocks[p.Block].Len()
}

// TextBetween returns the plain text in [from, to). Blocks are joined by '\n'.
func (d *Document) TextBetween(from, to Pos) string {
	r := NormalizeRange(d.ClampRange(Range{Start: from, End: to}))
	return d.textInRange(r)
}

func (d *Document) textInRange(r Range) string {
	if r.IsEmpty() {
		return ""
	}
	if r.Start.Block == r.End.Block {
		return cellsText(d.blocks[r.Start.Block].Cells[r.Start.Col:r.End.Col])
	}

	var sb strings.Builder
	for i := r.Start.Block; i <= r.End.Block; i++ {
		if i > r.Start.Block {
			sb.WriteByte('\n')
		}
		cells := d.blocks[i].Cells
		start, end := 0, len(cells)
		if i == r.Start.Block {
			start = r.Start.Col
		}
		if i == r.End.Block {
			end = r.End.Col
		}
		sb.WriteString(cellsText(cells[start:end]))
	}
	return sb.String()
}

func (d *Document) blockLen(i int) int {
	if i < 0 || i >= len(d.blocks) {
		return 0
	}
	return d.blocks[i].Len()
}

func (d *Document) clampPos(p Pos) Pos {
	return ClampPos(p, len(d.blocks), d.blockLen)
}
