// Package cli holds the terminal output helpers shared by recipebook commands.
package cli

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette.
var (
	tomato  = lipgloss.Color("#FB8A4E")
	basil   = lipgloss.Color("#7BC47F")
	saffron = lipgloss.Color("#F4C542")
	chili   = lipgloss.Color("#E5484D")
	sage    = lipgloss.Color("#9DC3B0")
	ash     = lipgloss.Color("#6F6F6F")
	mint    = lipgloss.Color("86")
)

func fg(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

// Styles used by command output.
var (
	TitleStyle       = fg(tomato).Bold(true)
	SubtitleStyle    = fg(ash)
	SubtleStyle      = fg(ash)
	BoldStyle        = lipgloss.NewStyle().Bold(true)
	SuccessStyle     = fg(basil)
	WarningStyle     = fg(saffron)
	ErrorStyle       = fg(chili).Bold(true)
	InfoStyle        = fg(sage)
	PromptStyle      = fg(tomato).Bold(true)
	TableHeaderStyle = fg(mint).Bold(true)

	// BoxStyle frames recipe cards and summaries.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(tomato).
			Padding(0, 1)
)

// Icons.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "⚠️"
	InfoIcon    = "ℹ️"
	RecipeIcon  = "🍲"
	CacheIcon   = "🗄️"
)

func withIcon(style lipgloss.Style, icon, message string) string {
	return style.Render(icon + " " + message)
}

// FormatSuccess prefixes message with a check mark.
func FormatSuccess(message string) string { return withIcon(SuccessStyle, SuccessIcon, message) }

// FormatError prefixes message with a cross.
func FormatError(message string) string { return withIcon(ErrorStyle, ErrorIcon, message) }

// FormatWarning prefixes message with a warning sign.
func FormatWarning(message string) string { return withIcon(WarningStyle, WarningIcon, message) }

// FormatInfo prefixes message with an info sign.
func FormatInfo(message string) string { return withIcon(InfoStyle, InfoIcon, message) }

// FormatPrompt styles a question awaiting input.
func FormatPrompt(prompt string) string {
	return PromptStyle.Render(prompt + " → ")
}

// RenderBox draws content under a title inside a rounded border.
func RenderBox(title, content string) string {
	return BoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, TitleStyle.Render(title), content))
}
