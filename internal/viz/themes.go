package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines color scheme for the TUI
type Theme struct {
	Name      string
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Text      lipgloss.Color
	Muted     lipgloss.Color
	Positive  lipgloss.Color
	Negative  lipgloss.Color
	Neutral   lipgloss.Color
	Line      lipgloss.Color
	Warning   lipgloss.Color
}

// Available themes
var (
	ThemeCyberpunk = Theme{
		Name:      "cyberpunk",
		Primary:   lipgloss.Color("#ff00ff"),
		Secondary: lipgloss.Color("#00ffff"),
		Accent:    lipgloss.Color("#ffff00"),
		Text:      lipgloss.Color("#ffffff"),
		Muted:     lipgloss.Color("#666666"),
		Positive:  lipgloss.Color("#ff4d33"),
		Negative:  lipgloss.Color("#3380ff"),
		Neutral:   lipgloss.Color("#808080"),
		Line:      lipgloss.Color("#00aaaa"),
		Warning:   lipgloss.Color("#ff8800"),
	}

	ThemeRetroGreen = Theme{
		Name:      "retro",
		Primary:   lipgloss.Color("#00ff00"), // Green phosphor
		Secondary: lipgloss.Color("#00cc00"),
		Accent:    lipgloss.Color("#88ff88"),
		Text:      lipgloss.Color("#00ff00"),
		Muted:     lipgloss.Color("#005500"),
		Positive:  lipgloss.Color("#ccff66"),
		Negative:  lipgloss.Color("#00ffaa"),
		Neutral:   lipgloss.Color("#338833"),
		Line:      lipgloss.Color("#007700"),
		Warning:   lipgloss.Color("#ffff00"),
	}

	ThemeMinimal = Theme{
		Name:      "minimal",
		Primary:   lipgloss.Color("#ffffff"),
		Secondary: lipgloss.Color("#cccccc"),
		Accent:    lipgloss.Color("#0088ff"),
		Text:      lipgloss.Color("#ffffff"),
		Muted:     lipgloss.Color("#888888"),
		Positive:  lipgloss.Color("#ffffff"),
		Negative:  lipgloss.Color("#aaaaaa"),
		Neutral:   lipgloss.Color("#666666"),
		Line:      lipgloss.Color("#555555"),
		Warning:   lipgloss.Color("#ffaa00"),
	}

	ThemeOcean = Theme{
		Name:      "ocean",
		Primary:   lipgloss.Color("#0077be"), // Ocean blue
		Secondary: lipgloss.Color("#00a8cc"),
		Accent:    lipgloss.Color("#ffd700"),
		Text:      lipgloss.Color("#e0f0ff"),
		Muted:     lipgloss.Color("#4488aa"),
		Positive:  lipgloss.Color("#ff7f50"),
		Negative:  lipgloss.Color("#7fdbff"),
		Neutral:   lipgloss.Color("#6688aa"),
		Line:      lipgloss.Color("#336699"),
		Warning:   lipgloss.Color("#ffcc00"),
	}

	// Default theme
	CurrentTheme = ThemeCyberpunk

	// All available themes
	Themes = []Theme{
		ThemeCyberpunk,
		ThemeRetroGreen,
		ThemeMinimal,
		ThemeOcean,
	}
)

// GetTheme returns a theme by name
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeCyberpunk
}

// SetTheme changes the current theme
func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

// NextTheme switches to the theme after the current one and returns it.
func NextTheme() Theme {
	names := ThemeNames()
	for i, name := range names {
		if name == CurrentTheme.Name {
			SetTheme(names[(i+1)%len(names)])
			break
		}
	}
	return CurrentTheme
}

// ThemeNames returns list of available theme names
func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// ChargeColor picks the theme colour for a charge of the given sign.
func (t Theme) ChargeColor(sign int) lipgloss.Color {
	switch {
	case sign > 0:
		return t.Positive
	case sign < 0:
		return t.Negative
	default:
		return t.Neutral
	}
}
