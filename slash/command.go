package slash

import "github.com/iw2rmb/quill/document"

// Document is the part of the document engine that commands mutate.
// *document.Document satisfies it.
type Document interface {
	Cursor() document.Pos
	SetCursor(p document.Pos)
	TextBetween(from, to document.Pos) string
	DeleteRange(r document.Range) error
	SetBlockType(block int, kind document.BlockKind, level int) error
	ClearFormatting(block int) error
}

// Context is passed to Command.Execute.
type Context struct {
	Doc Document

	// Trigger is where the trigger character was typed. The "/query" text
	// has already been removed, so Trigger is also the cursor position.
	Trigger document.Pos

	// Emit posts a request to the host, e.g. a GenerateRequest. Never nil.
	Emit func(any)
}

// Command describes one invocable editing action.
//
// Commands are immutable once registered. Icon is an opaque glyph the
// renderer may show; filtering never looks at it.
type Command struct {
	ID       string
	Label    string
	Keywords []string
	Icon     string
	Execute  func(ctx *Context) error
}

// GenerateRequest asks the host to start an AI generation at At.
type GenerateRequest struct {
	At     document.Pos
	Prompt string
}
