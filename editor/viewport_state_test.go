package editor

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/iw2rmb/quill/document"
)

func TestViewportState_ExposesOffsets(t *testing.T) {
	m := New(Config{Content: "<p>0</p><p>1</p><p>2</p><p>3 is a longer line</p>"})
	m = m.SetSize(10, 2)

	st := m.ViewportState()
	if st.TopVisualRow != 0 || st.VisibleRows != 2 || st.Width != 10 || st.TotalRows != 6 {
		t.Fatalf("initial viewport state: got %+v", st)
	}

	m, _ = m.Update(tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonWheelDown})
	st = m.ViewportState()
	if st.TopVisualRow <= 0 {
		t.Fatalf("top row after manual wheel scroll: got %d, want > 0", st.TopVisualRow)
	}
}

func TestDocScreenMapping_UsesViewportOffsets(t *testing.T) {
	m := New(Config{Content: "<p>ab</p><p>cd</p><p>ef</p>"})
	m = m.SetSize(10, 2)
	m, _ = m.Update(tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonWheelDown})
	top := m.ViewportState().TopVisualRow
	if top == 0 {
		t.Fatalf("wheel did not scroll")
	}

	if got, want := m.ScreenToDoc(1, 0), (document.Pos{Block: top, Col: 1}); got != want {
		t.Fatalf("ScreenToDoc at scrolled top: got %v, want %v", got, want)
	}

	x, y, ok := m.DocToScreen(document.Pos{Block: top, Col: 1})
	if !ok || x != 1 || y != 0 {
		t.Fatalf("DocToScreen visible pos: got (x=%d,y=%d,ok=%v), want (1,0,true)", x, y, ok)
	}
}
