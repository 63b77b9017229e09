package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	primaryColor   = lipgloss.Color("#7C3AED")
	secondaryColor = lipgloss.Color("#6366F1")
	successColor   = lipgloss.Color("#10B981")
	warningColor   = lipgloss.Color("#F59E0B")
	errorColor     = lipgloss.Color("#EF4444")
	mutedColor     = lipgloss.Color("#6B7280")
	fgColor        = lipgloss.Color("#F9FAFB")
	cyanColor      = lipgloss.Color("#06B6D4")
	amberColor     = lipgloss.Color("#FCD34D")

	// Styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#374151")).
			Foreground(fgColor).
			Padding(0, 1)

	inputBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Background(primaryColor).
			Foreground(fgColor).
			Bold(true)

	itemStyle = lipgloss.NewStyle().
			Foreground(fgColor)

	helpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(0, 1)

	suggestionBoxStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(secondaryColor).
				Padding(0, 1)

	chipStyle = lipgloss.NewStyle().
			Foreground(cyanColor).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(0, 1)

	idlePillStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Bold(true)

	busyPillStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	// Transcript accents, one per event type.
	inputLineStyle   = lipgloss.NewStyle().Foreground(fgColor).Bold(true)
	systemLineStyle  = lipgloss.NewStyle().Foreground(cyanColor)
	agentLineStyle   = lipgloss.NewStyle().Foreground(successColor).Bold(true)
	toolLineStyle    = lipgloss.NewStyle().Foreground(secondaryColor)
	resultLineStyle  = lipgloss.NewStyle().Foreground(amberColor).Bold(true)
	warningLineStyle = lipgloss.NewStyle().Foreground(warningColor)
	errorLineStyle   = lipgloss.NewStyle().Foreground(errorColor).Bold(true)
	dividerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#3F3F46"))
	bodyStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#D4D4D8"))

	accentBar = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			PaddingLeft(1)
)
