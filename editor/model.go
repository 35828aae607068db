package editor

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/iw2rmb/quill/document"
	"github.com/iw2rmb/quill/slash"
	"github.com/iw2rmb/quill/stream"
)

// Model is a Bubble Tea component that renders and edits a rich-text
// document, with a slash command palette and an AI streaming overlay.
//
// Model is a value type; the document, palette and generation state it
// points to are shared between copies and owned by the UI loop.
type Model struct {
	cfg Config
	log *zap.Logger

	doc  *document.Document
	menu *slash.Menu
	gen  *generation

	focused bool

	viewport viewport.Model
	spinner  spinner.Model

	mouseDragging bool
	mouseAnchor   document.Pos

	lastVersion     uint64
	lastTextVersion uint64
	lastCursor      document.Pos
	lastPhase       stream.Phase
}

func New(cfg Config) Model {
	cfg = normalizeConfig(cfg)
	log := cfg.Logger.Named("editor")

	opt := document.Options{HistoryLimit: cfg.HistoryLimit}
	doc, err := document.FromHTML(cfg.Content, opt)
	if err != nil {
		log.Warn("initial content", zap.Error(err))
		doc = document.New("", opt)
	}

	reg, err := slash.NewRegistry(cfg.Commands...)
	if err != nil {
		log.Warn("command registry, using builtin commands", zap.Error(err))
		reg, _ = slash.NewRegistry(append(slash.Builtin(), slash.ContinueWriting(""))...)
	}

	m := Model{
		cfg:      cfg,
		log:      log,
		doc:      doc,
		menu:     slash.NewMenu(reg, cfg.Filter, log.Named("palette")),
		gen:      newGeneration(doc, cfg, log),
		focused:  true,
		viewport: viewport.New(0, 0),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
	m.lastVersion = doc.Version()
	m.lastTextVersion = doc.TextVersion()
	m.lastCursor = doc.Cursor()
	m.rebuildContent()
	return m
}

// Document returns the edited document. Hosts may read it freely; mutations
// from outside the editor are picked up on the next Update.
func (m Model) Document() *document.Document { return m.doc }

// Palette returns the current palette session.
func (m Model) Palette() slash.Session { return m.menu.Session() }

// PaletteItems returns the filtered palette commands.
func (m Model) PaletteItems() []*slash.Command { return m.menu.Items() }

// Generation returns the current streaming session.
func (m Model) Generation() stream.Session { return m.gen.ctrl.Session() }

func (m Model) HTML() string { return m.doc.HTML() }

func (m Model) Init() tea.Cmd { return nil }

func (m Model) SetSize(width, height int) Model {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	m.viewport.Width = width
	m.viewport.Height = height

	m.rebuildContent()
	m.followCursor()
	return m
}

func (m Model) Focus() Model {
	if !m.focused {
		m.focused = true
		m.rebuildContent()
		m.followCursor()
	}
	return m
}

func (m Model) Blur() Model {
	if m.focused {
		m.focused = false
		m.closePalette(slash.CloseNone)
		m.rebuildContent()
	}
	return m
}

func (m Model) Focused() bool { return m.focused }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.SetSize(msg.Width, msg.Height), nil
	case tea.KeyMsg:
		m, cmd = m.updateKey(msg)
	case tea.MouseMsg:
		m, cmd = m.updateMouse(msg)
	case spinner.TickMsg:
		if m.gen.ctrl.Phase() != stream.Streaming {
			return m, nil
		}
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case stream.ChunkMsg, stream.DoneMsg, stream.ErrorMsg:
		m, cmd = m.updateGeneration(msg)
	}

	m.syncFromDocument()
	return m, cmd
}

func (m Model) View() string {
	view := m.viewport.View()
	if v, ok := m.bubbleMenuRender(view); ok {
		view = v
	}
	if v, ok := m.streamControlsRender(view); ok {
		view = v
	}
	if v, ok := m.paletteRender(view); ok {
		view = v
	}
	return view
}

// syncFromDocument re-renders after any document change, keeps the cursor
// visible, re-evaluates the palette and fires OnChange.
func (m *Model) syncFromDocument() {
	if m.doc == nil {
		return
	}
	m.checkPalette()

	ver := m.doc.Version()
	cur := m.doc.Cursor()
	phase := m.gen.ctrl.Phase()
	if ver != m.lastVersion || cur != m.lastCursor || phase != m.lastPhase {
		m.lastVersion = ver
		m.lastCursor = cur
		m.lastPhase = phase
		m.rebuildContent()
		m.followCursor()
	}
	m.notifyChange()
}

func (m *Model) rebuildContent() {
	m.viewport.SetContent(m.renderContent())
}

func (m *Model) followCursor() {
	if m.doc == nil {
		return
	}
	h := m.visibleRowCount()
	if h <= 0 {
		return
	}

	target := m.doc.Cursor()
	if s := m.gen.ctrl.Session(); s.Phase == stream.Streaming && s.HasRange {
		target = s.Range.End
	}
	row, _ := m.layout().visualPos(target)

	y := m.viewport.YOffset
	if row < y {
		m.viewport.SetYOffset(row)
		return
	}
	if row >= y+h {
		m.viewport.SetYOffset(row - h + 1)
	}
}
