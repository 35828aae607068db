package editor

import (
	"strconv"
	"strings"

	"github.com/iw2rmb/quill/document"
	"github.com/iw2rmb/quill/internal/grapheme"
)

// layoutSegment is one visual row of a block: grapheme columns [start, end)
// and their cell span relative to the block's text origin.
type layoutSegment struct {
	start, end         int
	startCell, endCell int
}

type layoutLine struct {
	block       int
	kind        document.BlockKind
	prefix      string
	prefixWidth int

	cells []document.Cell
	// offsets[i] is the cell offset of column i; len(offsets) == len(cells)+1.
	offsets []int

	segments []layoutSegment
	firstRow int
}

type layoutRow struct {
	line, segment int
}

// layout is the soft-wrapped visual form of a document. It is rebuilt from
// the current document and viewport on every use and never cached across
// scrolls, resizes or edits.
type layout struct {
	width int // content width; <= 0 disables wrapping
	lines []layoutLine
	rows  []layoutRow
}

func buildLayout(blocks []document.Block, width int) layout {
	l := layout{
		width: width,
		lines: make([]layoutLine, 0, len(blocks)),
		rows:  make([]layoutRow, 0, len(blocks)),
	}

	ordinal := 0
	for i, b := range blocks {
		if b.Kind == document.OrderedList {
			ordinal++
		} else {
			ordinal = 0
		}

		prefix := blockPrefix(b, ordinal)
		line := layoutLine{
			block:       i,
			kind:        b.Kind,
			prefix:      prefix,
			prefixWidth: grapheme.StringWidth(prefix),
			cells:       b.Cells,
			offsets:     cellOffsets(b.Cells),
			firstRow:    len(l.rows),
		}

		avail := 0
		if width > 0 {
			avail = maxInt(width-line.prefixWidth, 1)
		}
		line.segments = wrapCells(b.Cells, line.offsets, avail)

		for seg := range line.segments {
			l.rows = append(l.rows, layoutRow{line: len(l.lines), segment: seg})
		}
		l.lines = append(l.lines, line)
	}

	// Keep a stable zero state when the document is unexpectedly empty.
	if len(l.lines) == 0 {
		l.lines = append(l.lines, layoutLine{offsets: []int{0}, segments: []layoutSegment{{}}})
		l.rows = append(l.rows, layoutRow{})
	}
	return l
}

func blockPrefix(b document.Block, ordinal int) string {
	switch b.Kind {
	case document.Heading:
		return strings.Repeat("#", maxInt(b.Level, 1)) + " "
	case document.BulletList:
		return "• "
	case document.OrderedList:
		return strconv.Itoa(ordinal) + ". "
	case document.TaskList:
		if b.Checked {
			return "[x] "
		}
		return "[ ] "
	case document.Quote:
		return "│ "
	case document.CodeBlock:
		return "  "
	default:
		return ""
	}
}

func cellOffsets(cells []document.Cell) []int {
	out := make([]int, len(cells)+1)
	for i, c := range cells {
		out[i+1] = out[i] + cellWidth(c.Text)
	}
	return out
}

func cellWidth(cluster string) int {
	if w := grapheme.Width(cluster); w > 0 {
		return w
	}
	return 1
}

// wrapCells splits a block into rows of at most avail cells, breaking after
// whitespace when possible. avail <= 0 disables wrapping.
func wrapCells(cells []document.Cell, offsets []int, avail int) []layoutSegment {
	n := len(cells)
	if n == 0 || avail <= 0 {
		return []layoutSegment{{start: 0, end: n, startCell: 0, endCell: offsets[n]}}
	}

	var segs []layoutSegment
	for start := 0; start < n; {
		end := start + 1
		for end < n && offsets[end+1]-offsets[start] <= avail {
			end++
		}
		if end < n {
			if brk, ok := findWordWrapBreak(cells, start, end); ok {
				end = brk
			}
		}
		segs = append(segs, layoutSegment{
			start:     start,
			end:       end,
			startCell: offsets[start],
			endCell:   offsets[end],
		})
		start = end
	}
	return segs
}

// findWordWrapBreak returns the column after the last whitespace run in
// [start, overflow).
func findWordWrapBreak(cells []document.Cell, start, overflow int) (int, bool) {
	lastBreak := -1
	for i := start; i < overflow; i++ {
		if !grapheme.IsSpace(cells[i].Text) {
			continue
		}
		j := i + 1
		for j < overflow && grapheme.IsSpace(cells[j].Text) {
			j++
		}
		lastBreak = j
		i = j - 1
	}
	if lastBreak <= start {
		return 0, false
	}
	return lastBreak, true
}

// segmentFor returns the segment index that shows col. A column on a wrap
// boundary belongs to the following row.
func (ln layoutLine) segmentFor(col int) int {
	for i, seg := range ln.segments {
		if col < seg.end || (seg.start == seg.end && col == seg.start) {
			return i
		}
	}
	return len(ln.segments) - 1
}

// visualPos returns the visual row and the cell column (prefix included) of
// a document position.
func (l layout) visualPos(p document.Pos) (row, x int) {
	li := clampInt(p.Block, 0, len(l.lines)-1)
	ln := l.lines[li]
	col := clampInt(p.Col, 0, len(ln.cells))
	si := ln.segmentFor(col)
	seg := ln.segments[si]
	return ln.firstRow + si, ln.prefixWidth + ln.offsets[col] - seg.startCell
}

func (l layout) clampRow(row int) int {
	return clampInt(row, 0, len(l.rows)-1)
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
