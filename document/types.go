package document

// Pos points into the document by (block, col). Col counts grapheme clusters
// within the block.
type Pos struct {
	Block int
	Col   int
}

// Range is a half-open span in document coordinates: [Start, End).
// Start <= End in document order once normalized.
type Range struct {
	Start Pos
	End   Pos
}

// Collapsed returns the empty range at p.
func Collapsed(p Pos) Range {
	return Range{Start: p, End: p}
}

func ComparePos(a, b Pos) int {
	if a.Block < b.Block {
		return -1
	}
	if a.Block > b.Block {
		return 1
	}
	if a.Col < b.Col {
		return -1
	}
	if a.Col > b.Col {
		return 1
	}
	return 0
}

func NormalizeRange(r Range) Range {
	if ComparePos(r.Start, r.End) <= 0 {
		return r
	}
	return Range{Start: r.End, End: r.Start}
}

func (r Range) IsEmpty() bool {
	return r.Start == r.End
}

// Contains reports whether p lies within [Start, End]. The end position is
// inclusive so a caret sitting right after the range still counts.
func (r Range) Contains(p Pos) bool {
	r = NormalizeRange(r)
	return ComparePos(p, r.Start) >= 0 && ComparePos(p, r.End) <= 0
}

func clampInt(v, min, max int) int {
	if max < min {
		return min
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// ClampPos clamps p into document bounds described by blockCount and blockLen.
//
// The returned Pos always satisfies:
// - 0 <= Block < blockCount (with blockCount treated as at least 1)
// - 0 <= Col <= blockLen(Block)
func ClampPos(p Pos, blockCount int, blockLen func(block int) int) Pos {
	if blockCount <= 0 {
		blockCount = 1
	}

	block := clampInt(p.Block, 0, blockCount-1)

	maxCol := 0
	if blockLen != nil {
		maxCol = blockLen(block)
		if maxCol < 0 {
			maxCol = 0
		}
	}
	return Pos{Block: block, Col: clampInt(p.Col, 0, maxCol)}
}

func ClampRange(r Range, blockCount int, blockLen func(block int) int) Range {
	return Range{
		Start: ClampPos(r.Start, blockCount, blockLen),
		End:   ClampPos(r.End, blockCount, blockLen),
	}
}
