// Package tui provides terminal UI bindings for the identity client: sign-in
// and registration forms, a profile editor, role-gated content, an admin user
// browser and a live statistics dashboard.
package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.Color("#7C3AED")
	colorOK      = lipgloss.Color("#10B981")
	colorWarn    = lipgloss.Color("#F59E0B")
	colorDanger  = lipgloss.Color("#EF4444")
	colorMuted   = lipgloss.Color("#6B7280")
	colorText    = lipgloss.Color("#F9FAFB")

	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			MarginBottom(1)

	styleSubtitle = lipgloss.NewStyle().
			Foreground(colorMuted).
			MarginBottom(1)

	styleError = lipgloss.NewStyle().
			Foreground(colorDanger).
			Bold(true)

	styleOK = lipgloss.NewStyle().
		Foreground(colorOK).
		Bold(true)

	styleWarn = lipgloss.NewStyle().
			Foreground(colorWarn)

	styleHelp = lipgloss.NewStyle().
			Foreground(colorMuted).
			MarginTop(1)

	styleKey = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	styleValue = lipgloss.NewStyle().
			Foreground(colorText).
			Bold(true)

	stylePanel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(1, 2)
)

// helpLine renders "key label" shortcut pairs for a footer.
func helpLine(pairs ...string) string {
	out := ""
	for i := 0; i+1 < len(pairs); i += 2 {
		if i > 0 {
			out += "  "
		}
		out += styleKey.Render(pairs[i]) + " " + styleSubtitle.Render(pairs[i+1])
	}
	return styleHelp.Render(out)
}
