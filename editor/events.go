package editor

import "github.com/iw2rmb/quill/document"

type ChangeEvent struct {
	// Version is the document TextVersion after the change.
	Version   uint64
	Cursor    document.Pos
	Selection struct {
		Range  document.Range
		Active bool
	}

	HTML string
	Text string
}

func buildChangeEvent(d *document.Document) ChangeEvent {
	ev := ChangeEvent{
		Version: d.TextVersion(),
		Cursor:  d.Cursor(),
		HTML:    d.HTML(),
		Text:    d.Text(),
	}
	if r, ok := d.Selection(); ok {
		ev.Selection.Active = true
		ev.Selection.Range = r
	}
	return ev
}

// notifyChange fires OnChange when content changed since the last call.
func (m *Model) notifyChange() {
	if m.doc == nil {
		return
	}
	v := m.doc.TextVersion()
	if v == m.lastTextVersion {
		return
	}
	m.lastTextVersion = v
	if m.cfg.OnChange != nil {
		m.cfg.OnChange(buildChangeEvent(m.doc))
	}
}
