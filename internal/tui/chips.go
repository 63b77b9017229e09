package tui

import (
	"fmt"
	"math/rand"
	"strings"
)

// Chip is a one-key shortcut for a canned command.
type Chip struct {
	Label   string
	Command string
}

var chipCatalog = []Chip{
	{Label: "Autopilot onboarding flow", Command: "run build frictionless onboarding --priority=high --deliverable=plan"},
	{Label: "Inspect agent swarm", Command: "agents"},
	{Label: "Queue growth experiments", Command: "stack add growth experiments roadmap"},
	{Label: "Review recent wins", Command: "history"},
	{Label: "Plugin surface", Command: "tools"},
}

const visibleChips = 3

// Chips shows a rotating window of three consecutive catalog entries.
type Chips struct {
	rng    *rand.Rand
	offset int
}

// NewChips starts at the head of the catalog.
func NewChips(rng *rand.Rand) *Chips {
	return &Chips{rng: rng}
}

// Rotate picks a new random window.
func (c *Chips) Rotate() {
	c.offset = c.rng.Intn(len(chipCatalog))
}

// Visible returns the chips currently on screen.
func (c *Chips) Visible() []Chip {
	out := make([]Chip, visibleChips)
	for i := range out {
		out[i] = chipCatalog[(c.offset+i)%len(chipCatalog)]
	}
	return out
}

// At returns the visible chip at 1-based position n.
func (c *Chips) At(n int) (Chip, bool) {
	if n < 1 || n > visibleChips {
		return Chip{}, false
	}
	return c.Visible()[n-1], true
}

// Render draws the chip row.
func (c *Chips) Render() string {
	parts := make([]string, 0, visibleChips)
	for i, chip := range c.Visible() {
		parts = append(parts, chipStyle.Render(fmt.Sprintf("alt+%d %s", i+1, chip.Label)))
	}
	return strings.Join(parts, " ")
}
