package editor

import (
	"strings"

	overlay "github.com/rmhubbert/bubbletea-overlay"

	"github.com/iw2rmb/quill/internal/grapheme"
	"github.com/iw2rmb/quill/slash"
)

// paletteRender composites the palette popup over base. The popup is
// anchored under the trigger character and flips above it when there is not
// enough room below. It is not drawn when the trigger is off screen or no
// command matches.
func (m Model) paletteRender(base string) (string, bool) {
	sess := m.menu.Session()
	if !sess.Open {
		return "", false
	}
	items := m.menu.Items()
	if len(items) == 0 {
		return "", false
	}

	viewportWidth := m.contentWidth()
	viewportHeight := m.visibleRowCount()
	if viewportWidth <= 0 || viewportHeight <= 0 {
		return "", false
	}

	anchorX, anchorY, ok := m.DocToScreen(sess.Trigger)
	if !ok {
		m.log.Debug("palette anchor not visible")
		return "", false
	}

	rowCount, showBelow := popupRows(minInt(m.cfg.PaletteMaxRows, len(items)), anchorY, viewportHeight)
	if rowCount <= 0 {
		return "", false
	}

	selected := clampInt(sess.Highlighted, 0, len(items)-1)
	first := 0
	if selected >= rowCount {
		first = selected - rowCount + 1
	}
	visible := items[first : first+rowCount]

	texts := make([]string, len(visible))
	popupWidth := 0
	for i, cmd := range visible {
		texts[i] = paletteRowText(cmd)
		popupWidth = maxInt(popupWidth, grapheme.StringWidth(texts[i]))
	}
	popupWidth = minInt(popupWidth, minInt(m.cfg.PaletteMaxWidth, viewportWidth))
	if popupWidth <= 0 {
		return "", false
	}

	rendered := make([]string, len(visible))
	for i, text := range texts {
		style := m.cfg.Style.Palette
		if first+i == selected {
			style = m.cfg.Style.PaletteSelected.Inherit(m.cfg.Style.Palette)
		}
		rendered[i] = style.Render(padCells(truncateCells(text, popupWidth), popupWidth))
	}

	x, y := placePopup(anchorX, anchorY, popupWidth, len(rendered), showBelow, viewportWidth, viewportHeight)
	return m.composite(rendered, base, x, y), true
}

func paletteRowText(cmd *slash.Command) string {
	if cmd.Icon == "" {
		return " " + cmd.Label + " "
	}
	return " " + cmd.Icon + " " + cmd.Label + " "
}

// popupRows decides how many rows a popup anchored at anchorY gets and
// whether it opens below the anchor row.
func popupRows(target, anchorY, viewportHeight int) (rows int, below bool) {
	belowAvail := maxInt(viewportHeight-(anchorY+1), 0)
	aboveAvail := maxInt(anchorY, 0)
	rows, below = target, true
	if rows > belowAvail {
		switch {
		case aboveAvail >= rows:
			below = false
		case aboveAvail > belowAvail:
			below = false
			rows = aboveAvail
		default:
			rows = belowAvail
		}
	}
	return rows, below
}

func placePopup(anchorX, anchorY, width, height int, below bool, viewportWidth, viewportHeight int) (x, y int) {
	y = anchorY + 1
	if !below {
		y = anchorY - height
	}
	y = clampInt(y, 0, maxInt(viewportHeight-height, 0))
	x = clampInt(anchorX, 0, maxInt(viewportWidth-width, 0))
	return x, y
}

// composite draws rows over base at viewport-local (x, y).
func (m Model) composite(rows []string, base string, x, y int) string {
	leftFrame := m.viewport.Style.GetMarginLeft() + m.viewport.Style.GetBorderLeftSize() + m.viewport.Style.GetPaddingLeft()
	topFrame := m.viewport.Style.GetMarginTop() + m.viewport.Style.GetBorderTopSize() + m.viewport.Style.GetPaddingTop()
	return overlay.Composite(
		strings.Join(rows, "\n"),
		base,
		overlay.Left,
		overlay.Top,
		leftFrame+x,
		topFrame+y,
	)
}

func truncateCells(s string, width int) string {
	var sb strings.Builder
	used := 0
	for _, g := range grapheme.Split(s) {
		w := grapheme.Width(g)
		if used+w > width {
			break
		}
		sb.WriteString(g)
		used += w
	}
	return sb.String()
}

func padCells(s string, width int) string {
	if w := grapheme.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
