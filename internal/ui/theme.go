package ui

import "github.com/charmbracelet/lipgloss"

// ThemeConfig selects colours.
type ThemeConfig struct {
	NoColor bool
	// Mode is "dark" or "light"; it picks the glamour style.
	Mode string
}

// Colors holds hex colours used by every component.
type Colors struct {
	Primary   string
	Secondary string
	Success   string
	Warning   string
	Error     string
	Muted     string
}

// Theme carries colours and derived lipgloss styles.
type Theme struct {
	NoColor bool
	Mode    string
	Colors  Colors
}

// NewTheme returns the theme for cfg.
func NewTheme(cfg ThemeConfig) *Theme {
	mode := cfg.Mode
	if mode != "light" {
		mode = "dark"
	}
	return &Theme{
		NoColor: cfg.NoColor,
		Mode:    mode,
		Colors: Colors{
			Primary:   "#1E6FD9",
			Secondary: "#5FB3F9",
			Success:   "#2E9E48",
			Warning:   "#D98E04",
			Error:     "#D93025",
			Muted:     "#7A7A7A",
		},
	}
}

func (t *Theme) color(hex string) lipgloss.Style {
	if t.NoColor {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex))
}

// Title styles headings.
func (t *Theme) Title() lipgloss.Style { return t.color(t.Colors.Primary).Bold(true) }

// Muted styles secondary text and inactive keys.
func (t *Theme) Muted() lipgloss.Style {
	if t.NoColor {
		return lipgloss.NewStyle()
	}
	return t.color(t.Colors.Muted).Faint(true)
}

// Success styles confirmations.
func (t *Theme) Success() lipgloss.Style { return t.color(t.Colors.Success) }

// Error styles failures.
func (t *Theme) Error() lipgloss.Style { return t.color(t.Colors.Error).Bold(true) }

// Starboard styles marks rounded to starboard: green and underlined.
func (t *Theme) Starboard() lipgloss.Style {
	return t.color(t.Colors.Success).Underline(!t.NoColor)
}

// Card frames a block of text.
func (t *Theme) Card() lipgloss.Style {
	s := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	if !t.NoColor {
		s = s.BorderForeground(lipgloss.Color(t.Colors.Secondary))
	}
	return s
}
