package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/strumcli/strum/internal/shared"
)

// interface Painter defines coloring text with [lipgloss] styles
type Painter interface {
	Title(string) string
	Accent(string) string
	Err(string) string
	Warn(string) string
	Muted(string) string
}

// struct Palette is a simple stylesheet built with named [lipgloss.Style]
// fields, derived from the user's color settings.
type Palette struct {
	title  lipgloss.Style
	accent lipgloss.Style
	err    lipgloss.Style
	warn   lipgloss.Style
	muted  lipgloss.Style
}

// NewPalette builds a Palette from the persisted color settings.
func NewPalette(colors shared.ColorSettings) *Palette {
	return &Palette{
		title:  NewBold(colors.Title),
		accent: NewBold(colors.Accent),
		err:    NewBold(colors.Error),
		warn:   NewStyle(colors.Warning),
		muted:  NewEm(colors.Muted),
	}
}

func (p *Palette) Title(s string) string  { return p.title.Render(s) }
func (p *Palette) Accent(s string) string { return p.accent.Render(s) }
func (p *Palette) Err(s string) string    { return p.err.Render(s) }
func (p *Palette) Warn(s string) string   { return p.warn.Render(s) }
func (p *Palette) Muted(s string) string  { return p.muted.Render(s) }

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
