package document

import (
	"strings"

	"github.com/iw2rmb/quill/internal/grapheme"
)

// BlockKind identifies the structural type of a block.
type BlockKind uint8

const (
	Paragraph BlockKind = iota
	Heading
	BulletList
	OrderedList
	TaskList
	Quote
	CodeBlock
	Divider
)

func (k BlockKind) String() string {
	switch k {
	case Paragraph:
		return "paragraph"
	case Heading:
		return "heading"
	case BulletList:
		return "bullet_list"
	case OrderedList:
		return "ordered_list"
	case TaskList:
		return "task_list"
	case Quote:
		return "quote"
	case CodeBlock:
		return "code_block"
	case Divider:
		return "divider"
	default:
		return "unknown"
	}
}

// IsList reports whether blocks of this kind render as list items.
func (k BlockKind) IsList() bool {
	return k == BulletList || k == OrderedList || k == TaskList
}

const (
	MinHeadingLevel = 1
	MaxHeadingLevel = 3
)

// Mark is a bitmask of inline formatting.
type Mark uint8

const (
	MarkBold Mark = 1 << iota
	MarkItalic
	MarkStrike
	MarkUnderline
	MarkCode
)

func (m Mark) Has(o Mark) bool { return m&o == o }

// Cell is a single grapheme cluster with its inline formatting.
type Cell struct {
	Text  string
	Marks Mark
	Href  string
}

// Block is one structural unit of the document.
//
// Level is meaningful for headings only; Checked for task list items only.
type Block struct {
	Kind    BlockKind
	Level   int
	Checked bool
	Cells   []Cell
}

// Text returns the plain text of the block.
func (b Block) Text() string {
	var sb strings.Builder
	for _, c := range b.Cells {
		sb.WriteString(c.Text)
	}
	return sb.String()
}

// Len returns the block length in grapheme clusters.
func (b Block) Len() int { return len(b.Cells) }

func (b Block) clone() Block {
	out := b
	out.Cells = cloneCells(b.Cells)
	return out
}

// continuation returns an empty block that carries b's structure, used for
// the tail half of a split.
func (b Block) continuation() Block {
	next := Block{Kind: b.Kind, Level: b.Level}
	if next.Kind == Divider {
		next.Kind = Paragraph
	}
	return next
}

func cloneCells(in []Cell) []Cell {
	if len(in) == 0 {
		return nil
	}
	out := make([]Cell, len(in))
	copy(out, in)
	return out
}

func makeCells(text string, marks Mark, href string) []Cell {
	clusters := grapheme.Split(text)
	if len(clusters) == 0 {
		return nil
	}
	out := make([]Cell, 0, len(clusters))
	for _, g := range clusters {
		out = append(out, Cell{Text: g, Marks: marks, Href: href})
	}
	return out
}

func cellsText(cells []Cell) string {
	var sb strings.Builder
	for _, c := range cells {
		sb.WriteString(c.Text)
	}
	return sb.String()
}

func normalizeLevel(kind BlockKind, level int) int {
	if kind != Heading {
		return 0
	}
	return clampInt(level, MinHeadingLevel, MaxHeadingLevel)
}
