// Package editor provides a Bubble Tea rich-text editor component backed by
// the document package.
//
// The package is responsible for input handling, viewport behavior, layout
// and caret geometry, grapheme-aware rendering, the slash command palette,
// the AI streaming overlay, toolbar commands and change events.
package editor
