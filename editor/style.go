package editor

import "github.com/charmbracelet/lipgloss"

// Style controls the editor's rendering.
//
// The zero Style renders plain text.
type Style struct {
	Text      lipgloss.Style
	Selection lipgloss.Style
	Cursor    lipgloss.Style

	// Block styles.
	Prefix    lipgloss.Style
	Heading   lipgloss.Style
	Quote     lipgloss.Style
	CodeBlock lipgloss.Style
	Divider   lipgloss.Style

	// Inline styles. Bold, italic, underline and strikethrough are applied as
	// attributes on top of the block style.
	Code lipgloss.Style
	Link lipgloss.Style

	// Generated marks AI text that is waiting for accept or reject.
	Generated lipgloss.Style

	Palette         lipgloss.Style
	PaletteSelected lipgloss.Style
	PaletteIcon     lipgloss.Style

	Overlay       lipgloss.Style
	OverlayButton lipgloss.Style
	OverlayError  lipgloss.Style

	Bubble       lipgloss.Style
	BubbleActive lipgloss.Style
}

func DefaultStyle() Style {
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	popup := lipgloss.NewStyle().Background(lipgloss.Color("236")).Foreground(lipgloss.Color("252"))
	return Style{
		Text:      lipgloss.NewStyle(),
		Selection: lipgloss.NewStyle().Background(lipgloss.Color("237")),
		Cursor:    lipgloss.NewStyle().Reverse(true),

		Prefix:    muted,
		Heading:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("75")),
		Quote:     lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("246")),
		CodeBlock: lipgloss.NewStyle().Foreground(lipgloss.Color("180")),
		Divider:   muted,

		Code: lipgloss.NewStyle().Foreground(lipgloss.Color("180")).Background(lipgloss.Color("235")),
		Link: lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color("39")),

		Generated: lipgloss.NewStyle().Foreground(lipgloss.Color("141")),

		Palette:         popup,
		PaletteSelected: lipgloss.NewStyle().Background(lipgloss.Color("62")).Foreground(lipgloss.Color("230")),
		PaletteIcon:     lipgloss.NewStyle().Foreground(lipgloss.Color("244")),

		Overlay:       popup,
		OverlayButton: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62")),
		OverlayError:  lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Background(lipgloss.Color("236")),

		Bubble:       popup,
		BubbleActive: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62")),
	}
}
