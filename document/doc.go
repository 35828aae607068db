// Package document implements the rich-text document model used by the quill
// editor.
//
// A document is an ordered list of blocks (paragraphs, headings, list items,
// quotes, code lines, dividers). Each block holds grapheme cells carrying
// inline marks. Coordinates are 0-based (Block, Col) where Col counts
// grapheme clusters. Ranges are half-open: [Start, End).
package document
