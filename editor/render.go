package editor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/iw2rmb/quill/document"
)

// cellState is what decides a cell's style; runs of equal states render as
// one styled string.
type cellState struct {
	marks     document.Mark
	link      bool
	selected  bool
	generated bool
	cursor    bool
}

func (m Model) renderContent() string {
	if m.doc == nil {
		return ""
	}

	l := m.layout()
	cursor := m.doc.Cursor()
	sel, selOK := m.doc.Selection()
	gen, genOK := m.generatedRange()

	out := make([]string, 0, len(l.rows))
	for _, ref := range l.rows {
		ln := l.lines[ref.line]
		seg := ln.segments[ref.segment]

		if ln.kind == document.Divider {
			out = append(out, m.renderDivider(l.width, ln.block == cursor.Block))
			continue
		}

		var sb strings.Builder
		if ref.segment == 0 {
			sb.WriteString(m.cfg.Style.Prefix.Render(ln.prefix))
		} else if ln.prefixWidth > 0 {
			sb.WriteString(m.cfg.Style.Prefix.Render(strings.Repeat(" ", ln.prefixWidth)))
		}

		base := m.blockStyle(ln.kind)
		cursorCol := -1
		if m.focused && cursor.Block == ln.block && ln.segmentFor(cursor.Col) == ref.segment {
			cursorCol = cursor.Col
		}
		// Cursor at the end of a full row is drawn on the row's last cell.
		eolFits := l.width <= 0 || ln.prefixWidth+seg.endCell-seg.startCell < l.width
		if cursorCol == seg.end && !eolFits && seg.end > seg.start {
			cursorCol = seg.end - 1
		}

		stateAt := func(col int) cellState {
			p := document.Pos{Block: ln.block, Col: col}
			c := ln.cells[col]
			return cellState{
				marks:     c.Marks,
				link:      c.Href != "",
				selected:  selOK && cellInRange(sel, p),
				generated: genOK && cellInRange(gen, p),
				cursor:    col == cursorCol,
			}
		}

		for start := seg.start; start < seg.end; {
			st := stateAt(start)
			end := start + 1
			for end < seg.end && stateAt(end) == st {
				end++
			}
			var text strings.Builder
			for _, c := range ln.cells[start:end] {
				if c.Text == "\t" {
					text.WriteByte(' ')
					continue
				}
				text.WriteString(c.Text)
			}
			sb.WriteString(m.cellStyle(base, st).Render(text.String()))
			start = end
		}

		if cursorCol == seg.end && eolFits {
			// Cursor at EOL is rendered as a 1-cell placeholder space.
			sb.WriteString(m.cfg.Style.Cursor.Render(" "))
		}
		out = append(out, sb.String())
	}

	return strings.Join(out, "\n")
}

func (m Model) renderDivider(width int, active bool) string {
	if width <= 0 {
		width = 3
	}
	if active && m.focused {
		return m.cfg.Style.Cursor.Render("─") + m.cfg.Style.Divider.Render(strings.Repeat("─", width-1))
	}
	return m.cfg.Style.Divider.Render(strings.Repeat("─", width))
}

func (m Model) blockStyle(kind document.BlockKind) lipgloss.Style {
	st := m.cfg.Style
	switch kind {
	case document.Heading:
		return st.Heading.Inherit(st.Text)
	case document.Quote:
		return st.Quote.Inherit(st.Text)
	case document.CodeBlock:
		return st.CodeBlock.Inherit(st.Text)
	default:
		return st.Text
	}
}

func (m Model) cellStyle(base lipgloss.Style, cs cellState) lipgloss.Style {
	st := m.cfg.Style
	if cs.cursor {
		return st.Cursor.Inherit(base)
	}

	s := base
	if cs.marks.Has(document.MarkBold) {
		s = s.Bold(true)
	}
	if cs.marks.Has(document.MarkItalic) {
		s = s.Italic(true)
	}
	if cs.marks.Has(document.MarkUnderline) {
		s = s.Underline(true)
	}
	if cs.marks.Has(document.MarkStrike) {
		s = s.Strikethrough(true)
	}
	if cs.marks.Has(document.MarkCode) {
		s = st.Code.Inherit(s)
	}
	if cs.link {
		s = st.Link.Inherit(s)
	}
	if cs.generated {
		s = st.Generated.Inherit(s)
	}
	if cs.selected {
		s = st.Selection.Inherit(s)
	}
	return s
}

// cellInRange reports whether the cell at p lies in the half-open range r.
func cellInRange(r document.Range, p document.Pos) bool {
	return document.ComparePos(p, r.Start) >= 0 && document.ComparePos(p, r.End) < 0
}
