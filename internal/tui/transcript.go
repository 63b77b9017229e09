package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fentz26/hyperplex/internal/models"
)

// renderEvent draws one transcript entry. Agent, tool, result, warning
// and error entries get a colored left rule.
func renderEvent(ev models.Event, width int) string {
	var (
		head   string
		accent lipgloss.Color
	)
	switch ev.Type {
	case models.EventInput:
		head = inputLineStyle.Render("$ " + ev.Headline)
	case models.EventSystem:
		head = systemLineStyle.Render(ev.Headline)
	case models.EventAgent:
		head, accent = agentLineStyle.Render(ev.Headline), successColor
	case models.EventTool:
		head, accent = toolLineStyle.Render(ev.Headline), secondaryColor
	case models.EventResult:
		head, accent = resultLineStyle.Render(ev.Headline), amberColor
	case models.EventWarning:
		head, accent = warningLineStyle.Render(ev.Headline), warningColor
	case models.EventError:
		head, accent = errorLineStyle.Render(ev.Headline), errorColor
	case models.EventDivider:
		return dividerStyle.Render(strings.Repeat("─", max(width, 1)))
	default:
		head = ev.Headline
	}

	var lines []string
	if ev.Headline != "" {
		lines = append(lines, head)
	}
	if ev.Body != "" {
		lines = append(lines, bodyStyle.Render(ev.Body))
	}
	block := strings.Join(lines, "\n")
	if accent == "" {
		return block
	}
	return accentBar.BorderForeground(accent).Width(max(width-2, 1)).Render(block)
}

// renderTranscript joins entries with blank lines between them.
func renderTranscript(events []models.Event, width int) string {
	blocks := make([]string, 0, len(events))
	for _, ev := range events {
		blocks = append(blocks, renderEvent(ev, width))
	}
	return strings.Join(blocks, "\n\n")
}
