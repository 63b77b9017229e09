// Package roster holds the fixed set of virtual agents a Hyperplex engine
// can assign to missions.
package roster

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fentz26/hyperplex/internal/models"
)

var (
	ErrEmptyRoster    = errors.New("roster has no agents")
	ErrDuplicateAgent = errors.New("duplicate agent id")
)

// Roster is an ordered, immutable agent list.
type Roster struct {
	agents []models.Agent
	index  map[string]int
}

// New validates agents and builds a roster in the given order.
func New(agents []models.Agent) (*Roster, error) {
	if len(agents) == 0 {
		return nil, ErrEmptyRoster
	}
	r := &Roster{
		agents: make([]models.Agent, 0, len(agents)),
		index:  make(map[string]int, len(agents)),
	}
	for i, def := range agents {
		a := normalize(def)
		if a.ID == "" {
			return nil, fmt.Errorf("agent %d: id is required", i)
		}
		if a.Name == "" {
			return nil, fmt.Errorf("agent %s: name is required", a.ID)
		}
		if _, ok := r.index[a.ID]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateAgent, a.ID)
		}
		r.index[a.ID] = len(r.agents)
		r.agents = append(r.agents, a)
	}
	return r, nil
}

// MustDefault returns the built-in roster.
func MustDefault() *Roster {
	r, err := New(Defaults())
	if err != nil {
		panic(err)
	}
	return r
}

// Defaults returns the built-in agent agents.
func Defaults() []models.Agent {
	return []models.Agent{
		{ID: "atlas", Name: "Atlas", Role: "Mission planner · breaks goals into steps", Avatar: "🧭"},
		{ID: "nova", Name: "Nova", Role: "Research scout · gathers signals and prior art", Avatar: "🔭"},
		{ID: "forge", Name: "Forge", Role: "Builder · drafts artifacts and wiring", Avatar: "🛠"},
		{ID: "sentinel", Name: "Sentinel", Role: "Reviewer · checks risks and quality gates", Avatar: "🛡"},
		{ID: "echo", Name: "Echo", Role: "Narrator · packages results for humans", Avatar: "📣"},
	}
}

func normalize(a models.Agent) models.Agent {
	a.ID = strings.ToLower(strings.TrimSpace(a.ID))
	a.Name = strings.TrimSpace(a.Name)
	a.Role = strings.TrimSpace(a.Role)
	a.Avatar = strings.TrimSpace(a.Avatar)
	if a.Avatar == "" {
		a.Avatar = "◆"
	}
	return a
}

// Len returns the number of agents.
func (r *Roster) Len() int {
	return len(r.agents)
}

// At returns the agent at position i in roster order.
func (r *Roster) At(i int) models.Agent {
	return r.agents[i]
}

// Get looks an agent up by id.
func (r *Roster) Get(id string) (models.Agent, bool) {
	i, ok := r.index[strings.ToLower(id)]
	if !ok {
		return models.Agent{}, false
	}
	return r.agents[i], true
}

// Position returns the roster index of id, or -1.
func (r *Roster) Position(id string) int {
	if i, ok := r.index[strings.ToLower(id)]; ok {
		return i
	}
	return -1
}

// Agents returns a copy of the roster in order.
func (r *Roster) Agents() []models.Agent {
	return append([]models.Agent(nil), r.agents...)
}

// Names resolves ids to display names, skipping unknown ids.
func (r *Roster) Names(ids []string) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if a, ok := r.Get(id); ok {
			names = append(names, a.Name)
		}
	}
	return names
}
