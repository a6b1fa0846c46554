package style

import "github.com/charmbracelet/lipgloss"

// Styles groups the lipgloss styles shared by the screens
type Styles struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Muted    lipgloss.Style
	Label    lipgloss.Style
	Value    lipgloss.Style
	Panel    lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Info     lipgloss.Style
	Selected lipgloss.Style
	Cursor   lipgloss.Style
}

// NewStyles builds the shared styles from palette
func NewStyles(palette Palette) Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Foreground(palette.Primary).
			Bold(true),

		Subtitle: lipgloss.NewStyle().
			Foreground(palette.Secondary).
			Bold(true),

		Muted: lipgloss.NewStyle().
			Foreground(palette.TextMuted),

		Label: lipgloss.NewStyle().
			Foreground(palette.TextSecondary),

		Value: lipgloss.NewStyle().
			Foreground(palette.Text).
			Bold(true),

		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.TextMuted).
			Padding(0, 1),

		Error: lipgloss.NewStyle().
			Foreground(palette.Error).
			Bold(true),

		Success: lipgloss.NewStyle().
			Foreground(palette.Success),

		Info: lipgloss.NewStyle().
			Foreground(palette.Info),

		Selected: lipgloss.NewStyle().
			Foreground(palette.Success).
			Bold(true),

		Cursor: lipgloss.NewStyle().
			Foreground(palette.Background).
			Background(palette.Primary),
	}
}

// Swatch renders a small block in the given hex color
func Swatch(hex string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render("■")
}

// AdaptiveWidth returns percentage of width, never less than 20 columns
func AdaptiveWidth(width, percentage int) int {
	w := width * percentage / 100
	if w < 20 {
		return 20
	}
	return w
}
