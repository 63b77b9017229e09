// Package console renders engine events as plain terminal lines and runs
// the line-oriented shell and script modes.
package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fentz26/hyperplex/internal/models"
)

const dividerWidth = 48

// Printer writes events to w, one headline plus indented body lines each.
// Colors are applied only when w is a color-capable terminal.
type Printer struct {
	w io.Writer

	// OnClear runs for the clear sentinel instead of printing it.
	OnClear func()

	input   lipgloss.Style
	system  lipgloss.Style
	agent   lipgloss.Style
	tool    lipgloss.Style
	result  lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
	muted   lipgloss.Style
}

// NewPrinter creates a printer over w.
func NewPrinter(w io.Writer) *Printer {
	return newPrinter(w, lipgloss.NewRenderer(w))
}

// newPrinter styles output for r's terminal while writing to w.
func newPrinter(w io.Writer, r *lipgloss.Renderer) *Printer {
	return &Printer{
		w:       w,
		input:   r.NewStyle().Foreground(lipgloss.Color("#F9FAFB")).Bold(true),
		system:  r.NewStyle().Foreground(lipgloss.Color("#6366F1")),
		agent:   r.NewStyle().Foreground(lipgloss.Color("#7C3AED")).Bold(true),
		tool:    r.NewStyle().Foreground(lipgloss.Color("#06B6D4")),
		result:  r.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true),
		warning: r.NewStyle().Foreground(lipgloss.Color("#F59E0B")),
		failure: r.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true),
		muted:   r.NewStyle().Foreground(lipgloss.Color("#6B7280")),
	}
}

// Format renders ev without a trailing newline.
func (p *Printer) Format(ev models.Event) string {
	var head string
	switch ev.Type {
	case models.EventInput:
		head = p.input.Render("› " + ev.Headline)
	case models.EventSystem:
		head = p.system.Render("• " + ev.Headline)
	case models.EventAgent:
		head = p.agent.Render(ev.Headline)
	case models.EventTool:
		head = p.tool.Render("⚙ " + ev.Headline)
	case models.EventResult:
		head = p.result.Render("✔ " + ev.Headline)
	case models.EventWarning:
		head = p.warning.Render("! " + ev.Headline)
	case models.EventError:
		head = p.failure.Render("✖ " + ev.Headline)
	case models.EventDivider:
		return p.muted.Render(strings.Repeat("─", dividerWidth))
	default:
		head = ev.Headline
	}

	if ev.Body == "" {
		return head
	}
	var b strings.Builder
	b.WriteString(head)
	for _, line := range strings.Split(ev.Body, "\n") {
		b.WriteString("\n  ")
		b.WriteString(p.muted.Render(line))
	}
	return b.String()
}

// Print writes ev followed by a newline.
func (p *Printer) Print(ev models.Event) {
	if ev.IsClear() {
		if p.OnClear != nil {
			p.OnClear()
		}
		return
	}
	fmt.Fprintln(p.w, p.Format(ev))
}

// Divider writes a separator line.
func (p *Printer) Divider() {
	p.Print(models.NewEvent(models.EventDivider, "", ""))
}

// Stats writes the session summary line.
func (p *Printer) Stats(s models.Snapshot) {
	fmt.Fprintln(p.w, p.muted.Render(FormatStats(s)))
}

// FormatStats renders mission count, average squad size and stack depth.
func FormatStats(s models.Snapshot) string {
	return fmt.Sprintf("missions %02d · avg agents %.1f · stack %02d",
		s.Stats.Missions, s.Stats.AvgAgents, len(s.Stack))
}
