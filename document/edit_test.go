package document

import (
	"errors"
	"testing"
)

func TestInsertText_SplitsAndDeleteRangeRestores(t *testing.T) {
	d := NewFromBlocks([]Block{{Kind: Heading, Level: 2, Cells: makeCells("ab", 0, "")}}, Options{})
	before := d.HTML()

	end, err := d.InsertText(Pos{Block: 0, Col: 1}, "X\nY")
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if got, want := end, (Pos{Block: 1, Col: 1}); got != want {
		t.Fatalf("end=%v, want %v", got, want)
	}
	if got, want := d.Text(), "aX\nYb"; got != want {
		t.Fatalf("text=%q, want %q", got, want)
	}
	if got := d.Cursor(); got != end {
		t.Fatalf("cursor=%v, want %v", got, end)
	}

	if err := d.DeleteRange(Range{Start: Pos{Block: 0, Col: 1}, End: end}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := d.HTML(); got != before {
		t.Fatalf("html after delete=%q, want %q", got, before)
	}
}

func TestInsertText_RejectsInvalidPositions(t *testing.T) {
	d := New("ab", Options{})

	if _, err := d.InsertText(Pos{Block: 0, Col: 3}, "x"); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("insert past end: err=%v, want ErrOutOfRange", err)
	}
	if err := d.DeleteRange(Range{End: Pos{Block: 2}}); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("delete past end: err=%v, want ErrOutOfRange", err)
	}
	if d.TextVersion() != 0 {
		t.Fatalf("failed edits must not bump text version, got %d", d.TextVersion())
	}
}

func TestInsertAtCursor_ReplacesSelection(t *testing.T) {
	d := New("hello world", Options{})
	d.SetSelection(Range{Start: Pos{Col: 0}, End: Pos{Col: 5}})

	d.InsertAtCursor("bye")
	if got, want := d.Text(), "bye world"; got != want {
		t.Fatalf("text=%q, want %q", got, want)
	}
	if got, want := d.Cursor(), (Pos{Col: 3}); got != want {
		t.Fatalf("cursor=%v, want %v", got, want)
	}
}

func TestDeleteBackward_LiftsStructuredBlockAtStart(t *testing.T) {
	d := NewFromBlocks([]Block{
		{Kind: Paragraph, Cells: makeCells("a", 0, "")},
		{Kind: Heading, Level: 1, Cells: makeCells("b", 0, "")},
	}, Options{})
	d.SetCursor(Pos{Block: 1})

	d.DeleteBackward()
	b, _ := d.Block(1)
	if b.Kind != Paragraph {
		t.Fatalf("kind=%s, want paragraph", b.Kind)
	}

	d.DeleteBackward()
	if got, want := d.Text(), "ab"; got != want {
		t.Fatalf("text after join=%q, want %q", got, want)
	}
	if got, want := d.Cursor(), (Pos{Block: 0, Col: 1}); got != want {
		t.Fatalf("cursor=%v, want %v", got, want)
	}
}

func TestDeleteForward_JoinsNextBlock(t *testing.T) {
	d := New("a\nb", Options{})
	d.SetCursor(Pos{Block: 0, Col: 1})

	d.DeleteForward()
	if got, want := d.Text(), "ab"; got != want {
		t.Fatalf("text=%q, want %q", got, want)
	}
}

func TestSplitBlock(t *testing.T) {
	t.Run("heading continues as paragraph", func(t *testing.T) {
		d := NewFromBlocks([]Block{{Kind: Heading, Level: 1, Cells: makeCells("Title", 0, "")}}, Options{})
		d.SetCursor(Pos{Col: 5})

		d.SplitBlock()
		b, _ := d.Block(1)
		if d.BlockCount() != 2 || b.Kind != Paragraph {
			t.Fatalf("blocks=%d kind=%s, want 2 and paragraph", d.BlockCount(), b.Kind)
		}
		if got, want := d.Cursor(), (Pos{Block: 1}); got != want {
			t.Fatalf("cursor=%v, want %v", got, want)
		}
	})

	t.Run("list item continues list", func(t *testing.T) {
		d := NewFromBlocks([]Block{{Kind: BulletList, Cells: makeCells("one", 0, "")}}, Options{})
		d.SetCursor(Pos{Col: 3})

		d.SplitBlock()
		b, _ := d.Block(1)
		if b.Kind != BulletList {
			t.Fatalf("kind=%s, want bullet_list", b.Kind)
		}
	})

	t.Run("empty list item lifts to paragraph", func(t *testing.T) {
		d := NewFromBlocks([]Block{{Kind: TaskList, Checked: true}}, Options{})

		d.SplitBlock()
		b, _ := d.Block(0)
		if d.BlockCount() != 1 || b.Kind != Paragraph || b.Checked {
			t.Fatalf("blocks=%d block=%+v, want single unchecked paragraph", d.BlockCount(), b)
		}
	})
}

func TestSetBlockType(t *testing.T) {
	d := New("abc", Options{})
	d.SetCursor(Pos{Col: 2})

	if err := d.SetBlockType(0, Heading, 7); err != nil {
		t.Fatalf("set heading: %v", err)
	}
	b, _ := d.Block(0)
	if b.Kind != Heading || b.Level != 3 {
		t.Fatalf("block=%+v, want heading level 3", b)
	}
	if got, want := d.Cursor(), (Pos{Col: 2}); got != want {
		t.Fatalf("cursor moved to %v, want %v", got, want)
	}

	tv := d.TextVersion()
	if err := d.SetBlockType(0, Heading, 3); err != nil {
		t.Fatalf("same type: %v", err)
	}
	if d.TextVersion() != tv {
		t.Fatalf("no-op block type change bumped text version")
	}

	if err := d.SetBlockType(3, Quote, 0); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("err=%v, want ErrOutOfRange", err)
	}
	if err := d.SetBlockType(0, BlockKind(42), 0); !errors.Is(err, ErrInvalidBlock) {
		t.Fatalf("err=%v, want ErrInvalidBlock", err)
	}
}

func TestSetBlockType_Divider(t *testing.T) {
	t.Run("empty block becomes divider", func(t *testing.T) {
		d := New("", Options{})
		if err := d.SetBlockType(0, Divider, 0); err != nil {
			t.Fatalf("divider: %v", err)
		}
		if got, want := d.HTML(), "<hr/><p></p>"; got != want {
			t.Fatalf("html=%q, want %q", got, want)
		}
		if got, want := d.Cursor(), (Pos{Block: 1}); got != want {
			t.Fatalf("cursor=%v, want %v", got, want)
		}
	})

	t.Run("non-empty block keeps text", func(t *testing.T) {
		d := New("a", Options{})
		if err := d.SetBlockType(0, Divider, 0); err != nil {
			t.Fatalf("divider: %v", err)
		}
		if got, want := d.HTML(), "<p>a</p><hr/><p></p>"; got != want {
			t.Fatalf("html=%q, want %q", got, want)
		}
	})
}

func TestToggleTask(t *testing.T) {
	d := NewFromBlocks([]Block{{Kind: TaskList, Cells: makeCells("x", 0, "")}}, Options{})
	if err := d.ToggleTask(0); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if b, _ := d.Block(0); !b.Checked {
		t.Fatalf("expected checked")
	}

	p := New("x", Options{})
	if err := p.ToggleTask(0); !errors.Is(err, ErrInvalidBlock) {
		t.Fatalf("err=%v, want ErrInvalidBlock", err)
	}
}

func TestLastChange_RecordsAppliedEdit(t *testing.T) {
	d := New("ab", Options{})
	if _, ok := d.LastChange(); ok {
		t.Fatalf("fresh document should not have a change")
	}

	if _, err := d.InsertText(Pos{Col: 2}, "c"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	ch, ok := d.LastChange()
	if !ok {
		t.Fatalf("expected change")
	}
	if got, want := len(ch.AppliedEdits), 1; got != want {
		t.Fatalf("applied edits=%d, want %d", got, want)
	}
	if got, want := ch.AppliedEdits[0].InsertText, "c"; got != want {
		t.Fatalf("insert text=%q, want %q", got, want)
	}
	if ch.TextVersionAfter != ch.TextVersionBefore+1 {
		t.Fatalf("text versions %d -> %d", ch.TextVersionBefore, ch.TextVersionAfter)
	}
}

func TestInsertParagraphAndRemoveBlock(t *testing.T) {
	d, err := FromHTML("<p>a</p><hr/><p>b</p>", Options{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	p, err := d.InsertParagraph(2)
	if err != nil {
		t.Fatalf("insert paragraph: %v", err)
	}
	if got, want := p, (Pos{Block: 2}); got != want {
		t.Fatalf("pos=%v, want %v", got, want)
	}
	if got, want := d.HTML(), "<p>a</p><hr/><p></p><p>b</p>"; got != want {
		t.Fatalf("html=%q, want %q", got, want)
	}
	if got, want := d.Cursor(), (Pos{Block: 2}); got != want {
		t.Fatalf("cursor=%v, want %v", got, want)
	}

	if err := d.RemoveBlock(2); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if got, want := d.HTML(), "<p>a</p><hr/><p>b</p>"; got != want {
		t.Fatalf("html=%q, want %q", got, want)
	}

	if _, err := d.InsertParagraph(4); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("insert err=%v, want ErrOutOfRange", err)
	}
	if err := d.RemoveBlock(3); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("remove err=%v, want ErrOutOfRange", err)
	}
}
