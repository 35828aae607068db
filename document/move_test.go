package document

import "testing"

func TestMove(t *testing.T) {
	cases := []struct {
		name  string
		text  string
		start Pos
		move  Move
		want  Pos
	}{
		{"right wraps to next block", "ab\ncd", Pos{Col: 2}, Move{Unit: MoveGrapheme, Dir: DirRight}, Pos{Block: 1}},
		{"left wraps to previous block", "ab\ncd", Pos{Block: 1}, Move{Unit: MoveGrapheme, Dir: DirLeft}, Pos{Col: 2}},
		{"left at doc start stays", "ab", Pos{}, Move{Unit: MoveGrapheme, Dir: DirLeft}, Pos{}},
		{"word right", "foo bar", Pos{}, Move{Unit: MoveWord, Dir: DirRight}, Pos{Col: 3}},
		{"word right skips space", "foo bar", Pos{Col: 3}, Move{Unit: MoveWord, Dir: DirRight}, Pos{Col: 7}},
		{"word left", "foo bar", Pos{Col: 7}, Move{Unit: MoveWord, Dir: DirLeft}, Pos{Col: 4}},
		{"down clamps column", "abcdef\nab", Pos{Col: 5}, Move{Unit: MoveBlock, Dir: DirDown}, Pos{Block: 1, Col: 2}},
		{"up on first block goes home", "abc", Pos{Col: 2}, Move{Unit: MoveBlock, Dir: DirUp}, Pos{}},
		{"end of block", "abc\nd", Pos{Col: 1}, Move{Unit: MoveBlock, Dir: DirEnd}, Pos{Col: 3}},
		{"doc end", "abc\nde", Pos{}, Move{Unit: MoveDoc, Dir: DirEnd}, Pos{Block: 1, Col: 2}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := New(tc.text, Options{})
			d.SetCursor(tc.start)
			d.Move(tc.move)
			if got := d.Cursor(); got != tc.want {
				t.Fatalf("cursor=%v, want %v", got, tc.want)
			}
		})
	}
}

func TestMove_ExtendBuildsSelection(t *testing.T) {
	d := New("hello", Options{})
	d.SetCursor(Pos{Col: 5})

	d.Move(Move{Unit: MoveGrapheme, Dir: DirLeft, Extend: true})
	d.Move(Move{Unit: MoveGrapheme, Dir: DirLeft, Extend: true})

	r, ok := d.Selection()
	if !ok {
		t.Fatalf("expected selection")
	}
	if want := (Range{Start: Pos{Col: 3}, End: Pos{Col: 5}}); r != want {
		t.Fatalf("selection=%v, want %v", r, want)
	}

	d.Move(Move{Unit: MoveGrapheme, Dir: DirRight})
	if _, ok := d.Selection(); ok {
		t.Fatalf("plain move should clear selection")
	}
}
