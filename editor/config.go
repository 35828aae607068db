package editor

import (
	"go.uber.org/zap"

	"github.com/iw2rmb/quill/slash"
	"github.com/iw2rmb/quill/stream"
	"github.com/iw2rmb/quill/telemetry"
)

const (
	defaultPaletteMaxRows  = 8
	defaultPaletteMaxWidth = 32
)

// Config configures the editor Model.
type Config struct {
	// Initial content as HTML. Plain text is accepted and becomes one
	// paragraph.
	Content string

	// OnChange is called once per update that changed document content.
	OnChange func(ChangeEvent)

	KeyMap        KeyMap
	PaletteKeyMap PaletteKeyMap
	StreamKeyMap  StreamKeyMap
	Style         Style

	// Commands is the palette catalog. Nil selects slash.Builtin followed by
	// the Continue Writing command.
	Commands []slash.Command
	// Filter narrows the palette. Nil selects slash.SubstringFilter.
	Filter slash.Filter

	// Provider generates text for Continue Writing and BeginGeneration.
	Provider     stream.Provider
	SystemPrompt string
	MaxTokens    int

	PaletteMaxRows  int // default: 8
	PaletteMaxWidth int // default: 32

	Logger  *zap.Logger
	Metrics *telemetry.Metrics

	Clipboard Clipboard

	ReadOnly     bool
	HistoryLimit int // forwarded to document.Options
}

func normalizeConfig(cfg Config) Config {
	if len(cfg.KeyMap.Left.Keys()) == 0 {
		cfg.KeyMap = DefaultKeyMap()
	}
	if len(cfg.PaletteKeyMap.Execute.Keys()) == 0 {
		cfg.PaletteKeyMap = DefaultPaletteKeyMap()
	}
	if len(cfg.StreamKeyMap.Stop.Keys()) == 0 {
		cfg.StreamKeyMap = DefaultStreamKeyMap()
	}
	if cfg.Commands == nil {
		cfg.Commands = append(slash.Builtin(), slash.ContinueWriting(""))
	}
	if cfg.PaletteMaxRows <= 0 {
		cfg.PaletteMaxRows = defaultPaletteMaxRows
	}
	if cfg.PaletteMaxWidth <= 0 {
		cfg.PaletteMaxWidth = defaultPaletteMaxWidth
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return cfg
}
