package ui

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Layout constants - single source of truth for viewport dimensions
const (
	MinViewportWidth = 80
	MaxViewportWidth = 160
	DefaultWidth     = 110 // Used when terminal size is unknown
	DefaultHeight    = 30
	MinTableHeight   = 5
	chromeHeight     = 9 // header, caption, search bar, help box and borders
)

// Layout holds computed dimensions for the current terminal size
type Layout struct {
	ViewportWidth  int // clamped terminal width
	ViewportHeight int
	InnerWidth     int // exact width for content inside borders
	TableWidth     int // sum of column widths
	TableHeight    int // visible data rows
}

// NewLayout creates a Layout from the terminal size, clamping the width to min/max
func NewLayout(terminalWidth, terminalHeight int) Layout {
	width := clamp(terminalWidth, MinViewportWidth, MaxViewportWidth)
	if terminalHeight <= 0 {
		terminalHeight = DefaultHeight
	}
	tableHeight := terminalHeight - chromeHeight
	if tableHeight < MinTableHeight {
		tableHeight = MinTableHeight
	}
	return Layout{
		ViewportWidth:  width,
		ViewportHeight: terminalHeight,
		InnerWidth:     width - 2,
		TableWidth:     width - 4,
		TableHeight:    tableHeight,
	}
}

// DefaultLayout returns a layout using the default size
func DefaultLayout() Layout {
	return NewLayout(DefaultWidth, DefaultHeight)
}

func clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// Color palette
var (
	ColorBorder    = lipgloss.Color("99")  // violet
	ColorHighlight = lipgloss.Color("55")  // deep purple background
	ColorText      = lipgloss.Color("255") // near white
	ColorAccent    = lipgloss.Color("213") // pink
	ColorAccentDim = lipgloss.Color("183") // lilac (progress)
	ColorTextDim   = lipgloss.Color("245") // gray
)

// LevelColors maps issue levels to their badge color
var LevelColors = map[string]lipgloss.Color{
	"fatal":   lipgloss.Color("196"),
	"error":   lipgloss.Color("208"),
	"warning": lipgloss.Color("226"),
	"info":    lipgloss.Color("39"),
	"debug":   lipgloss.Color("241"),
}

// Common styles
var (
	// Border style for the main viewport. Always size with .Width(ViewportWidth), no padding.
	BorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder)

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(ColorText).
			Background(ColorHighlight).
			Bold(true)

	NormalStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	HintStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim).
			Italic(true)

	AccentStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	ProgressStyle = lipgloss.NewStyle().
			Foreground(ColorAccentDim)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorBorder).
			Bold(true)

	// Saved search tabs
	TabActiveStyle = lipgloss.NewStyle().
			Foreground(ColorText).
			Background(ColorHighlight).
			Bold(true).
			Padding(0, 1)

	TabInactiveStyle = lipgloss.NewStyle().
				Foreground(ColorText).
				Padding(0, 1)

	// Pagination arrows
	ArrowStyle = lipgloss.NewStyle().
			Foreground(ColorBorder).
			Bold(true)

	ArrowDisabledStyle = lipgloss.NewStyle().
				Foreground(ColorTextDim)
)

// RenderNormal renders text in the normal style
func RenderNormal(s string) string {
	return NormalStyle.Render(s)
}

// RenderLevel renders an issue level with its color
func RenderLevel(level string) string {
	color, ok := LevelColors[level]
	if !ok {
		color = ColorText
	}
	return lipgloss.NewStyle().Foreground(color).Render(level)
}

// BorderedBox returns a style for bordered content boxes with the layout width
func BorderedBox(layout Layout) lipgloss.Style {
	return BorderStyle.Width(layout.InnerWidth)
}

// ApplyTableStyles sets the header and selection styles on a table
func ApplyTableStyles(t *table.Model) {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorBorder).
		BorderBottom(true).
		Bold(true).
		Foreground(ColorText)
	s.Selected = s.Selected.
		Foreground(ColorText).
		Background(ColorHighlight).
		Bold(true)
	t.SetStyles(s)
}

// NewAppSpinner returns the white dot spinner used across the app
func NewAppSpinner() spinner.Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(ColorText)
	return s
}

// NewAppTheme creates a huh theme matching the app palette:
// light text with purple selection and violet buttons
func NewAppTheme() *huh.Theme {
	t := huh.ThemeBase()
	text := lipgloss.NewStyle().Foreground(ColorText)
	option := text.Padding(0, 1)
	active := option.Background(ColorHighlight).Bold(true)

	t.Focused.Base = text
	t.Focused.Title = text.Bold(true)
	t.Focused.Description = text.Foreground(ColorTextDim)
	t.Focused.SelectedOption = active
	t.Focused.UnselectedOption = option
	t.Focused.FocusedButton = active.Background(ColorBorder)
	t.Focused.BlurredButton = option
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(ColorAccent)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(ColorTextDim)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(ColorBorder)

	t.Blurred.Base = t.Focused.Base
	t.Blurred.Title = t.Focused.Title
	t.Blurred.Description = t.Focused.Description
	return t
}
