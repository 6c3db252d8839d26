package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/webcreatorLuke/roblox-code-bot/internal/domain"
)

type theme struct {
	Header   lipgloss.Style
	Panel    lipgloss.Style
	Focused  lipgloss.Style
	Muted    lipgloss.Style
	Accent   lipgloss.Style
	Success  lipgloss.Style
	Danger   lipgloss.Style
	Selected lipgloss.Style
	Code     lipgloss.Style
}

var paletteColors = map[domain.Palette]lipgloss.Color{
	domain.PaletteBlue:   lipgloss.Color("#3B82F6"),
	domain.PalettePurple: lipgloss.Color("#8B5CF6"),
	domain.PaletteGreen:  lipgloss.Color("#22C55E"),
	domain.PaletteOrange: lipgloss.Color("#F97316"),
	domain.PalettePink:   lipgloss.Color("#EC4899"),
	domain.PaletteCyan:   lipgloss.Color("#06B6D4"),
	domain.PaletteGray:   lipgloss.Color("#6B7280"),
}

func defaultTheme() theme {
	accent := lipgloss.Color("#00A2FF")
	secondary := lipgloss.Color("#7D7D7D")
	success := lipgloss.Color("#00C853")
	danger := lipgloss.Color("#FF0055")

	return theme{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(secondary).
			Padding(0, 1),
		Focused: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1),
		Muted: lipgloss.NewStyle().
			Foreground(secondary),
		Accent: lipgloss.NewStyle().
			Foreground(accent),
		Success: lipgloss.NewStyle().
			Bold(true).
			Foreground(success),
		Danger: lipgloss.NewStyle().
			Foreground(danger),
		Selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent),
		Code: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(secondary).
			PaddingLeft(1),
	}
}

func (t theme) badge(category domain.Category) string {
	color, ok := paletteColors[category.Palette()]
	if !ok {
		color = paletteColors[domain.PaletteGray]
	}
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(color).
		Padding(0, 1).
		Render(category.Label())
}

func (t theme) kind(kind domain.ArtifactKind) string {
	color, ok := paletteColors[kind.Palette()]
	if !ok {
		color = paletteColors[domain.PaletteGray]
	}
	return lipgloss.NewStyle().Foreground(color).Render(string(kind))
}
