package editor

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the editor key bindings.
//
// Bindings must be portable across terminals (ctrl/alt fallbacks).
type KeyMap struct {
	Left, Right, Up, Down                     key.Binding
	ShiftLeft, ShiftRight, ShiftUp, ShiftDown key.Binding
	WordLeft, WordRight                       key.Binding
	Home, End                                 key.Binding
	DocStart, DocEnd                          key.Binding

	Backspace, Delete key.Binding
	Enter             key.Binding

	Undo, Redo       key.Binding
	Copy, Cut, Paste key.Binding

	Bold, Italic, Underline, Strike, Code key.Binding
	ToggleTask                            key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Left:  key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "left")),
		Right: key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "right")),
		Up:    key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "up")),
		Down:  key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "down")),

		ShiftLeft:  key.NewBinding(key.WithKeys("shift+left"), key.WithHelp("shift+←", "select left")),
		ShiftRight: key.NewBinding(key.WithKeys("shift+right"), key.WithHelp("shift+→", "select right")),
		ShiftUp:    key.NewBinding(key.WithKeys("shift+up"), key.WithHelp("shift+↑", "select up")),
		ShiftDown:  key.NewBinding(key.WithKeys("shift+down"), key.WithHelp("shift+↓", "select down")),

		// Portable word movement: terminals vary between alt+arrows and ctrl+arrows.
		WordLeft:  key.NewBinding(key.WithKeys("alt+left", "ctrl+left"), key.WithHelp("alt/ctrl+←", "word left")),
		WordRight: key.NewBinding(key.WithKeys("alt+right", "ctrl+right"), key.WithHelp("alt/ctrl+→", "word right")),

		Home:     key.NewBinding(key.WithKeys("home", "ctrl+a"), key.WithHelp("home", "block start")),
		End:      key.NewBinding(key.WithKeys("end", "ctrl+e"), key.WithHelp("end", "block end")),
		DocStart: key.NewBinding(key.WithKeys("ctrl+home"), key.WithHelp("ctrl+home", "document start")),
		DocEnd:   key.NewBinding(key.WithKeys("ctrl+end"), key.WithHelp("ctrl+end", "document end")),

		Backspace: key.NewBinding(key.WithKeys("backspace", "ctrl+h"), key.WithHelp("backspace", "delete left")),
		Delete:    key.NewBinding(key.WithKeys("delete"), key.WithHelp("del", "delete right")),
		Enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "split block")),

		Undo: key.NewBinding(key.WithKeys("ctrl+z"), key.WithHelp("ctrl+z", "undo")),
		Redo: key.NewBinding(key.WithKeys("ctrl+y", "ctrl+shift+z"), key.WithHelp("ctrl+y", "redo")),

		Copy:  key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "copy")),
		Cut:   key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "cut")),
		Paste: key.NewBinding(key.WithKeys("ctrl+v"), key.WithHelp("ctrl+v", "paste")),

		Bold:       key.NewBinding(key.WithKeys("ctrl+b"), key.WithHelp("ctrl+b", "bold")),
		Italic:     key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "italic")),
		Underline:  key.NewBinding(key.WithKeys("ctrl+u"), key.WithHelp("ctrl+u", "underline")),
		Strike:     key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "strikethrough")),
		Code:       key.NewBinding(key.WithKeys("ctrl+k"), key.WithHelp("ctrl+k", "inline code")),
		ToggleTask: key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "toggle task")),
	}
}

// PaletteKeyMap defines the keys the slash palette consumes while open.
// Escape is not listed: closing on escape is part of trigger detection.
type PaletteKeyMap struct {
	Prev, Next key.Binding
	Execute    key.Binding
}

func DefaultPaletteKeyMap() PaletteKeyMap {
	return PaletteKeyMap{
		Prev:    key.NewBinding(key.WithKeys("up", "ctrl+p"), key.WithHelp("↑", "previous command")),
		Next:    key.NewBinding(key.WithKeys("down", "ctrl+n"), key.WithHelp("↓", "next command")),
		Execute: key.NewBinding(key.WithKeys("enter", "tab"), key.WithHelp("enter", "run command")),
	}
}

// StreamKeyMap defines the streaming controls overlay keys.
type StreamKeyMap struct {
	Stop   key.Binding
	Accept key.Binding
	Reject key.Binding
}

func DefaultStreamKeyMap() StreamKeyMap {
	return StreamKeyMap{
		Stop:   key.NewBinding(key.WithKeys("esc", "ctrl+g"), key.WithHelp("esc", "stop")),
		Accept: key.NewBinding(key.WithKeys("enter", "tab"), key.WithHelp("enter", "accept")),
		Reject: key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "reject")),
	}
}
