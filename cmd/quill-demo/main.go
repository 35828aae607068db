package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.uber.org/zap"

	"github.com/iw2rmb/quill"
	"github.com/iw2rmb/quill/editor"
	"github.com/iw2rmb/quill/internal/config"
	"github.com/iw2rmb/quill/internal/logging"
	"github.com/iw2rmb/quill/provider"
	"github.com/iw2rmb/quill/slash"
	"github.com/iw2rmb/quill/stream"
	"github.com/iw2rmb/quill/telemetry"
)

type systemClipboard struct{}

func (systemClipboard) ReadText() (string, error) { return clipboard.ReadAll() }
func (systemClipboard) WriteText(s string) error  { return clipboard.WriteAll(s) }

type model struct {
	editor editor.Model
	log    *zap.Logger
	status string
	words  int
}

func (m model) Init() tea.Cmd { return m.editor.Init() }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.editor = m.editor.SetSize(msg.Width, editorHeight(msg.Height))
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+q":
			return m, tea.Quit
		case "ctrl+l":
			var (
				cmd tea.Cmd
				err error
			)
			m.editor, cmd, err = m.editor.BeginGeneration("")
			m.setStatus(err)
			return m, cmd
		case "f2":
			return m.toolbar(func(e editor.Model) (editor.Model, error) { return e.SetHeading(1) })
		case "f3":
			return m.toolbar(editor.Model.ToggleBulletList)
		case "f4":
			return m.toolbar(editor.Model.ToggleQuote)
		case "f5":
			return m.toolbar(editor.Model.InsertDivider)
		}
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	m.words = len(strings.Fields(m.editor.Document().Text()))
	return m, cmd
}

func (m model) toolbar(fn func(editor.Model) (editor.Model, error)) (tea.Model, tea.Cmd) {
	var err error
	m.editor, err = fn(m.editor)
	m.setStatus(err)
	return m, nil
}

func (m *model) setStatus(err error) {
	if err == nil {
		m.status = ""
		return
	}
	m.log.Info("action rejected", zap.Error(err))
	m.status = err.Error()
}

var statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

func (m model) View() string {
	gen := m.editor.Generation()
	parts := []string{
		"quill " + quill.VersionTag(),
		fmt.Sprintf("%d words", m.words),
	}
	if gen.Phase != stream.Idle {
		parts = append(parts, strings.ReplaceAll(gen.Phase.String(), "_", " "))
	}
	if m.status != "" {
		parts = append(parts, m.status)
	}
	parts = append(parts, "/ commands · ctrl+l continue · f2-f5 format · ctrl+q quit")
	return m.editor.View() + "\n" + statusStyle.Render(strings.Join(parts, " · "))
}

func editorHeight(total int) int {
	if total <= 1 {
		return 0
	}
	return total - 1
}

func run() error {
	configPath := flag.String("config", "", "path to config.yaml (default: user config dir)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Options{File: cfg.Log.File, Level: cfg.Log.Level})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	popts, err := cfg.ProviderOptions()
	if err != nil {
		return err
	}
	popts.Logger = logger.Named("provider")
	prov, err := provider.New(ctx, popts)
	if err != nil {
		return err
	}

	content, err := cfg.InitialContent()
	if err != nil {
		return err
	}

	metrics := telemetry.New()
	if cfg.MetricsAddr != "" {
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: metrics.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Warn("metrics server", zap.Error(err))
			}
		}()
		defer func() { _ = srv.Shutdown(context.Background()) }()
	}

	style := editor.DefaultStyle()
	if termenv.EnvColorProfile() == termenv.Ascii {
		style = editor.Style{}
	}

	var filter slash.Filter
	if cfg.Editor.Fuzzy {
		filter = slash.FuzzyFilter
	}

	ed := editor.New(editor.Config{
		Content:        content,
		Style:          style,
		Filter:         filter,
		Provider:       prov,
		SystemPrompt:   cfg.Editor.SystemPrompt,
		MaxTokens:      cfg.Provider.MaxTokens,
		PaletteMaxRows: cfg.Editor.PaletteMaxRows,
		HistoryLimit:   cfg.Editor.HistoryLimit,
		ReadOnly:       cfg.Editor.ReadOnly,
		Clipboard:      systemClipboard{},
		Logger:         logger,
		Metrics:        metrics,
		OnChange: func(ev editor.ChangeEvent) {
			logger.Debug("document changed", zap.Uint64("version", ev.Version), zap.Int("html_bytes", len(ev.HTML)))
		},
	})

	logger.Info("starting", zap.String("version", quill.Version()), zap.String("provider", prov.Name()))
	p := tea.NewProgram(model{editor: ed, log: logger}, tea.WithAltScreen(), tea.WithMouseAllMotion())
	_, err = p.Run()
	return err
}

func main() {
	if err := run(); err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}
