package editor

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/iw2rmb/quill/document"
	"github.com/iw2rmb/quill/slash"
	"github.com/iw2rmb/quill/stream"
)

// Toolbar and bubble menu commands. They act on the selection, or on the
// cursor's block when there is none, and return ErrBusy while a generation
// is active.

func (m Model) ToggleBold() (Model, error)      { return m.mark(document.MarkBold) }
func (m Model) ToggleItalic() (Model, error)    { return m.mark(document.MarkItalic) }
func (m Model) ToggleStrike() (Model, error)    { return m.mark(document.MarkStrike) }
func (m Model) ToggleUnderline() (Model, error) { return m.mark(document.MarkUnderline) }
func (m Model) ToggleCode() (Model, error)      { return m.mark(document.MarkCode) }

// SetLink links the selection to href. An empty href removes the link.
func (m Model) SetLink(href string) (Model, error) {
	if err := m.editable(); err != nil {
		return m, err
	}
	r, ok := m.doc.Selection()
	if !ok {
		return m, nil
	}
	err := m.doc.SetLink(r, href)
	return m.afterCommand("set_link", err)
}

// SetHeading toggles a heading of level on the selected blocks.
func (m Model) SetHeading(level int) (Model, error) {
	return m.toggleBlocks(fmt.Sprintf("heading%d", level), document.Heading, level)
}

func (m Model) SetParagraph() (Model, error) {
	return m.setBlocks("text", document.Paragraph, 0)
}

func (m Model) ToggleBulletList() (Model, error) {
	return m.toggleBlocks("bullet_list", document.BulletList, 0)
}

func (m Model) ToggleOrderedList() (Model, error) {
	return m.toggleBlocks("ordered_list", document.OrderedList, 0)
}

func (m Model) ToggleTaskList() (Model, error) {
	return m.toggleBlocks("task_list", document.TaskList, 0)
}

func (m Model) ToggleQuote() (Model, error) {
	return m.toggleBlocks("quote", document.Quote, 0)
}

func (m Model) ToggleCodeBlock() (Model, error) {
	return m.toggleBlocks("code_block", document.CodeBlock, 0)
}

func (m Model) InsertDivider() (Model, error) {
	if err := m.editable(); err != nil {
		return m, err
	}
	err := m.doc.SetBlockType(m.doc.Cursor().Block, document.Divider, 0)
	return m.afterCommand("divider", err)
}

func (m Model) Undo() Model {
	if m.editable() == nil {
		m.doc.Undo()
		m.syncFromDocument()
	}
	return m
}

func (m Model) Redo() Model {
	if m.editable() == nil {
		m.doc.Redo()
		m.syncFromDocument()
	}
	return m
}

// RunCommand runs a registered command by ID at the cursor, the way the
// palette would without the trigger text.
func (m Model) RunCommand(id string) (Model, tea.Cmd, error) {
	if err := m.editable(); err != nil {
		return m, nil, err
	}
	cmd, ok := m.menu.Registry().Lookup(id)
	if !ok {
		return m, nil, fmt.Errorf("run %q: %w", id, slash.ErrUnknownCommand)
	}

	var requests []any
	ctx := &slash.Context{
		Doc:     m.doc,
		Trigger: m.doc.Cursor(),
		Emit:    func(req any) { requests = append(requests, req) },
	}
	err := slash.Run(cmd, ctx)
	var teaCmd tea.Cmd
	if err == nil {
		m, teaCmd, err = m.handleRequests(requests)
	}
	m.cfg.Metrics.ObserveCommand(cmd.ID, "toolbar", err)
	if err != nil {
		m.log.Warn("toolbar command", zap.String("command", cmd.ID), zap.Error(err))
	}
	m.syncFromDocument()
	return m, teaCmd, err
}

// SelectionMarks returns the marks every selected cell carries. Without a
// selection it returns the marks the next insertion would carry.
func (m Model) SelectionMarks() document.Mark {
	r, ok := m.doc.Selection()
	if !ok {
		if stored, set := m.doc.StoredMarks(); set {
			return stored
		}
		return m.doc.MarksAt(m.doc.Cursor())
	}

	all := ^document.Mark(0)
	seen := false
	for b := r.Start.Block; b <= r.End.Block; b++ {
		blk, _ := m.doc.Block(b)
		start, end := 0, blk.Len()
		if b == r.Start.Block {
			start = r.Start.Col
		}
		if b == r.End.Block {
			end = r.End.Col
		}
		for _, c := range blk.Cells[start:end] {
			all &= c.Marks
			seen = true
		}
	}
	if !seen {
		return 0
	}
	return all
}

func (m Model) editable() error {
	if m.cfg.ReadOnly {
		return ErrReadOnly
	}
	if m.gen.ctrl.Phase() != stream.Idle {
		return ErrBusy
	}
	return nil
}

func (m Model) mark(mark document.Mark) (Model, error) {
	if err := m.editable(); err != nil {
		return m, err
	}
	return m.afterCommand("mark", m.toggleMark(mark))
}

func (m Model) toggleMark(mark document.Mark) error {
	r, ok := m.doc.Selection()
	if !ok {
		r = document.Collapsed(m.doc.Cursor())
	}
	return m.doc.ToggleMark(r, mark)
}

// selectedBlocks returns the block span of the selection or the cursor.
func (m Model) selectedBlocks() (first, last int) {
	if r, ok := m.doc.Selection(); ok {
		return r.Start.Block, r.End.Block
	}
	b := m.doc.Cursor().Block
	return b, b
}

// toggleBlocks sets kind on the selected blocks, or lifts them back to
// paragraphs when the first one already has it.
func (m Model) toggleBlocks(id string, kind document.BlockKind, level int) (Model, error) {
	first, _ := m.selectedBlocks()
	if b, ok := m.doc.Block(first); ok && b.Kind == kind && (kind != document.Heading || b.Level == level) {
		kind, level = document.Paragraph, 0
	}
	return m.setBlocks(id, kind, level)
}

func (m Model) setBlocks(id string, kind document.BlockKind, level int) (Model, error) {
	if err := m.editable(); err != nil {
		return m, err
	}
	first, last := m.selectedBlocks()
	var err error
	for b := first; b <= last && err == nil; b++ {
		err = m.doc.SetBlockType(b, kind, level)
	}
	return m.afterCommand(id, err)
}

func (m Model) afterCommand(id string, err error) (Model, error) {
	if err != nil {
		m.log.Warn("toolbar command", zap.String("command", id), zap.Error(err))
	}
	m.syncFromDocument()
	return m, err
}
