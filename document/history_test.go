package document

import "testing"

func TestUndoRedo_RestoresContentAndCursor(t *testing.T) {
	d := New("ab", Options{})
	if _, err := d.InsertText(Pos{Col: 2}, "c"); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if !d.Undo() {
		t.Fatalf("expected undo")
	}
	if got, want := d.Text(), "ab"; got != want {
		t.Fatalf("text after undo=%q, want %q", got, want)
	}
	if got, want := d.Cursor(), (Pos{}); got != want {
		t.Fatalf("cursor after undo=%v, want %v", got, want)
	}
	if !d.CanRedo() {
		t.Fatalf("expected redo available")
	}

	if !d.Redo() {
		t.Fatalf("expected redo")
	}
	if got, want := d.Text(), "abc"; got != want {
		t.Fatalf("text after redo=%q, want %q", got, want)
	}
	if got, want := d.TextVersion(), uint64(3); got != want {
		t.Fatalf("text version=%d, want %d", got, want)
	}
}

func TestUndo_NewEditClearsRedo(t *testing.T) {
	d := New("", Options{})
	d.InsertAtCursor("a")
	d.Undo()
	d.InsertAtCursor("b")

	if d.CanRedo() {
		t.Fatalf("redo should be cleared after a new edit")
	}
	if got, want := d.Text(), "b"; got != want {
		t.Fatalf("text=%q, want %q", got, want)
	}
}

func TestUndo_HistoryLimit(t *testing.T) {
	d := New("", Options{HistoryLimit: 1})
	d.InsertAtCursor("a")
	d.InsertAtCursor("b")

	if !d.Undo() {
		t.Fatalf("expected one undo step")
	}
	if d.Undo() {
		t.Fatalf("expected history limit to drop older steps")
	}
	if got, want := d.Text(), "a"; got != want {
		t.Fatalf("text=%q, want %q", got, want)
	}
}

func TestUndo_RestoresBlockStructure(t *testing.T) {
	d := New("title", Options{})
	if err := d.SetBlockType(0, Heading, 1); err != nil {
		t.Fatalf("set heading: %v", err)
	}
	d.Undo()

	if got, want := d.HTML(), "<p>title</p>"; got != want {
		t.Fatalf("html=%q, want %q", got, want)
	}
}
