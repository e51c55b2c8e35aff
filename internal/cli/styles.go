package cli

import "github.com/charmbracelet/lipgloss"

var (
	brandPrimary = lipgloss.Color("#7C3AED")
	brandAccent  = lipgloss.Color("#10B981")
	brandWarning = lipgloss.Color("#F59E0B")
	brandError   = lipgloss.Color("#EF4444")
	textMuted    = lipgloss.Color("#6B7280")

	titleStyle = lipgloss.NewStyle().
			Foreground(brandPrimary).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(brandAccent)

	warningStyle = lipgloss.NewStyle().
			Foreground(brandWarning)

	errorStyle = lipgloss.NewStyle().
			Foreground(brandError).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(textMuted)
)
