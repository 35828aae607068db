package document

import (
	"errors"
	"testing"
)

func TestToggleMark_AddsThenRemoves(t *testing.T) {
	d := New("abc", Options{})

	if err := d.ToggleMark(Range{End: Pos{Col: 2}}, MarkBold); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if got, want := d.HTML(), "<p><strong>ab</strong>c</p>"; got != want {
		t.Fatalf("html=%q, want %q", got, want)
	}

	// Mixed range: not every cell is bold, so the mark is added everywhere.
	if err := d.ToggleMark(Range{End: Pos{Col: 3}}, MarkBold); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if got, want := d.HTML(), "<p><strong>abc</strong></p>"; got != want {
		t.Fatalf("html=%q, want %q", got, want)
	}

	if err := d.ToggleMark(Range{End: Pos{Col: 3}}, MarkBold); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if got, want := d.HTML(), "<p>abc</p>"; got != want {
		t.Fatalf("html=%q, want %q", got, want)
	}
}

func TestToggleMark_TypingInheritsLeftMarks(t *testing.T) {
	d := New("abc", Options{})
	if err := d.ToggleMark(Range{End: Pos{Col: 2}}, MarkBold); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	d.SetCursor(Pos{Col: 2})
	d.InsertAtCursor("x")
	if got, want := d.HTML(), "<p><strong>abx</strong>c</p>"; got != want {
		t.Fatalf("html=%q, want %q", got, want)
	}
}

func TestToggleMark_EmptyRangeSetsStoredMarks(t *testing.T) {
	d := New("a", Options{})
	d.SetCursor(Pos{Col: 1})
	tv := d.TextVersion()

	if err := d.ToggleMark(Collapsed(Pos{Col: 1}), MarkItalic); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if d.TextVersion() != tv {
		t.Fatalf("stored mark toggle must not change text version")
	}
	if m, ok := d.StoredMarks(); !ok || m != MarkItalic {
		t.Fatalf("stored marks=%v,%v want italic,true", m, ok)
	}

	d.InsertAtCursor("b")
	if got, want := d.HTML(), "<p>a<em>b</em></p>"; got != want {
		t.Fatalf("html=%q, want %q", got, want)
	}
	if _, ok := d.StoredMarks(); ok {
		t.Fatalf("stored marks should be consumed by insertion")
	}
}

func TestToggleMark_SkipsCodeBlocks(t *testing.T) {
	d := NewFromBlocks([]Block{{Kind: CodeBlock, Cells: makeCells("x := 1", 0, "")}}, Options{})
	tv := d.TextVersion()

	if err := d.ToggleMark(Range{End: Pos{Col: 6}}, MarkBold); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if d.TextVersion() != tv {
		t.Fatalf("code block cells must not take marks")
	}
}

func TestToggleMark_OutOfRange(t *testing.T) {
	d := New("a", Options{})
	if err := d.ToggleMark(Range{End: Pos{Col: 5}}, MarkBold); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("err=%v, want ErrOutOfRange", err)
	}
}

func TestToggleMark_KeepsSelection(t *testing.T) {
	d := New("abc", Options{})
	sel := Range{End: Pos{Col: 3}}
	d.SetSelection(sel)

	if err := d.ToggleMark(sel, MarkUnderline); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if got, ok := d.Selection(); !ok || got != sel {
		t.Fatalf("selection=%v,%v want %v,true", got, ok, sel)
	}
}

func TestSetLinkAndClearFormatting(t *testing.T) {
	d := NewFromBlocks([]Block{{Kind: Quote, Cells: makeCells("go now", 0, "")}}, Options{})

	if err := d.SetLink(Range{End: Pos{Col: 2}}, "https://x.io"); err != nil {
		t.Fatalf("link: %v", err)
	}
	if got, want := d.HTML(), `<blockquote><p><a href="https://x.io">go</a> now</p></blockquote>`; got != want {
		t.Fatalf("html=%q, want %q", got, want)
	}

	if err := d.ClearFormatting(0); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if got, want := d.HTML(), "<p>go now</p>"; got != want {
		t.Fatalf("html=%q, want %q", got, want)
	}
}

func TestMarksAt(t *testing.T) {
	d := New("ab", Options{})
	_ = d.ToggleMark(Range{End: Pos{Col: 1}}, MarkBold|MarkItalic)

	if got := d.MarksAt(Pos{Col: 1}); !got.Has(MarkBold) || !got.Has(MarkItalic) {
		t.Fatalf("marks at 1=%v, want bold|italic", got)
	}
	if got := d.MarksAt(Pos{Col: 0}); got != 0 {
		t.Fatalf("marks at 0=%v, want none", got)
	}
}
