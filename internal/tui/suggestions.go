package tui

import (
	"fmt"
	"strings"

	"github.com/fentz26/hyperplex/internal/command"
	"github.com/fentz26/hyperplex/internal/models"
)

// Suggestions provides autocomplete for commands and agents
type Suggestions struct {
	commands    []SuggestionItem
	agents      []SuggestionItem
	filtered    []SuggestionItem
	selectedIdx int
	visible     bool
	prefix      string // "/" or "@"
}

// SuggestionItem represents a single autocomplete suggestion
type SuggestionItem struct {
	Text        string
	Description string
	Type        string // "command" or "agent"
}

// NewSuggestions builds the command list from the catalog and the agent
// list from the roster.
func NewSuggestions(agents []models.Agent) *Suggestions {
	s := &Suggestions{}
	for _, c := range command.Catalog() {
		s.commands = append(s.commands, SuggestionItem{
			Text:        c.Name,
			Description: c.Summary,
			Type:        "command",
		})
	}
	for _, sub := range []string{"add", "pop", "clear"} {
		s.commands = append(s.commands, SuggestionItem{
			Text:        "stack " + sub,
			Description: "Edit the task stack",
			Type:        "command",
		})
	}
	for _, a := range agents {
		s.agents = append(s.agents, SuggestionItem{
			Text:        a.Name,
			Description: a.Role,
			Type:        "agent",
		})
	}
	return s
}

// Update updates suggestions based on current input
func (s *Suggestions) Update(input string) {
	if input == "" {
		s.hide()
		return
	}

	switch input[0] {
	case '/':
		s.prefix = "/"
		s.visible = true
		s.filter(s.commands, strings.ToLower(input[1:]))
	case '@':
		s.prefix = "@"
		s.visible = true
		s.filter(s.agents, strings.ToLower(input[1:]))
	default:
		s.hide()
	}
}

func (s *Suggestions) hide() {
	s.visible = false
	s.filtered = nil
	s.prefix = ""
}

func (s *Suggestions) filter(items []SuggestionItem, query string) {
	s.selectedIdx = 0
	if query == "" {
		s.filtered = items
		return
	}
	s.filtered = []SuggestionItem{}
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Text), query) {
			s.filtered = append(s.filtered, item)
		}
	}
}

// Next moves to the next suggestion
func (s *Suggestions) Next() {
	if len(s.filtered) == 0 {
		return
	}
	s.selectedIdx = (s.selectedIdx + 1) % len(s.filtered)
}

// Prev moves to the previous suggestion
func (s *Suggestions) Prev() {
	if len(s.filtered) == 0 {
		return
	}
	s.selectedIdx--
	if s.selectedIdx < 0 {
		s.selectedIdx = len(s.filtered) - 1
	}
}

// Selected returns the currently selected suggestion
func (s *Suggestions) Selected() *SuggestionItem {
	if !s.visible || len(s.filtered) == 0 || s.selectedIdx >= len(s.filtered) {
		return nil
	}
	return &s.filtered[s.selectedIdx]
}

// Accept returns the text the input should hold after taking the
// selection. Agent references keep their @ marker.
func (s *Suggestions) Accept() (string, bool) {
	sel := s.Selected()
	if sel == nil {
		return "", false
	}
	text := sel.Text + " "
	if sel.Type == "agent" {
		text = "@" + text
	}
	s.hide()
	return text, true
}

// IsVisible returns whether suggestions are currently visible
func (s *Suggestions) IsVisible() bool {
	return s.visible && len(s.filtered) > 0
}

// Render renders the suggestions dropdown
func (s *Suggestions) Render(width int) string {
	if !s.IsVisible() {
		return ""
	}

	var b strings.Builder
	header := "Commands"
	if s.prefix == "@" {
		header = "Agents"
	}
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n")

	// Show max 5 suggestions
	maxVisible := 5
	for i, item := range s.filtered {
		if i >= maxVisible {
			more := len(s.filtered) - maxVisible
			b.WriteString(helpStyle.Render(fmt.Sprintf("  ... and %d more", more)))
			break
		}

		var line string
		if i == s.selectedIdx {
			line = selectedStyle.Render("▶ " + item.Text)
			if item.Description != "" {
				line += " " + selectedStyle.Render(item.Description)
			}
		} else {
			line = itemStyle.Render("  " + item.Text)
			if item.Description != "" {
				line += " " + helpStyle.Render(item.Description)
			}
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	return suggestionBoxStyle.Width(max(width-4, 10)).Render(b.String())
}
