package toolkit

import (
	"fmt"
	"sort"
	"sync"
)

func cloneToolset(s *Toolset) Toolset {
	c := *s
	if s.Tools != nil {
		c.Tools = append([]Tool(nil), s.Tools...)
	}
	if s.Categories != nil {
		c.Categories = append([]string(nil), s.Categories...)
	}
	return c
}

// Registry manages registered toolsets.
type Registry struct {
	toolsets map[string]*Toolset
	mu       sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		toolsets: make(map[string]*Toolset),
	}
}

// Register adds or replaces a toolset.
func (r *Registry) Register(ts Toolset) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ts.Name == "" {
		return fmt.Errorf("toolset name cannot be empty")
	}

	if ts.ToolCount == 0 && len(ts.Tools) > 0 {
		ts.ToolCount = len(ts.Tools)
	}
	ts.Tools = append([]Tool(nil), ts.Tools...)
	for i := range ts.Tools {
		ts.Tools[i].Toolset = ts.Name
	}

	r.toolsets[ts.Name] = &ts
	return nil
}

// Get retrieves a copy of a toolset by name.
func (r *Registry) Get(name string) (*Toolset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ts, ok := r.toolsets[name]
	if !ok {
		return nil, false
	}
	c := cloneToolset(ts)
	return &c, true
}

// Enable enables a toolset.
func (r *Registry) Enable(name string) error {
	return r.setEnabled(name, true)
}

// Disable disables a toolset.
func (r *Registry) Disable(name string) error {
	return r.setEnabled(name, false)
}

// Apply switches toolsets on or off by name, in name order. Unknown names
// are an error.
func (r *Registry) Apply(toggles map[string]bool) error {
	names := make([]string, 0, len(toggles))
	for name := range toggles {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		toggle := r.Disable
		if toggles[name] {
			toggle = r.Enable
		}
		if err := toggle(name); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) setEnabled(name string, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts, ok := r.toolsets[name]
	if !ok {
		return fmt.Errorf("toolset %q not found", name)
	}
	ts.Enabled = enabled
	return nil
}

// Count returns the number of registered toolsets.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.toolsets)
}

// GetEnabled returns only enabled toolsets, highest priority first.
func (r *Registry) GetEnabled() []Toolset {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Toolset, 0)
	for _, ts := range r.toolsets {
		if ts.Enabled {
			out = append(out, cloneToolset(ts))
		}
	}
	sortByPriority(out)
	return out
}

// TotalToolCount returns the number of tools across enabled toolsets.
func (r *Registry) TotalToolCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := 0
	for _, ts := range r.toolsets {
		if ts.Enabled {
			total += ts.ToolCount
		}
	}
	return total
}

// sortByPriority orders by priority desc, then name for a stable listing.
func sortByPriority(sets []Toolset) {
	sort.Slice(sets, func(i, j int) bool {
		if sets[i].Priority != sets[j].Priority {
			return sets[i].Priority > sets[j].Priority
		}
		return sets[i].Name < sets[j].Name
	})
}

// RegisterDefaults registers the built-in simulated toolsets. A duplicate
// built-in name is an error.
func (r *Registry) RegisterDefaults() error {
	for _, ts := range DefaultToolsets() {
		if _, ok := r.Get(ts.Name); ok {
			return fmt.Errorf("duplicate built-in toolset %q", ts.Name)
		}
		if err := r.Register(ts); err != nil {
			return fmt.Errorf("register %s: %w", ts.Name, err)
		}
	}
	return nil
}

// DefaultToolsets returns the built-in simulated tool surface.
func DefaultToolsets() []Toolset {
	return []Toolset{
		{Name: "workspace", Categories: []string{"core", "files"}, Priority: 100, Enabled: true, Tools: []Tool{
			{Name: "read_file", Description: "Read a workspace document"},
			{Name: "write_file", Description: "Write a draft artifact"},
			{Name: "search", Description: "Full-text search across the workspace"},
		}},
		{Name: "planner", Categories: []string{"core", "planning"}, Priority: 90, Enabled: true, Tools: []Tool{
			{Name: "decompose", Description: "Split a goal into milestones"},
			{Name: "estimate", Description: "Size milestones and flag unknowns"},
			{Name: "roadmap", Description: "Lay milestones onto a timeline"},
		}},
		{Name: "git", Categories: []string{"vcs"}, Priority: 85, Enabled: true, Tools: []Tool{
			{Name: "status", Description: "Inspect working tree"},
			{Name: "diff", Description: "Summarize pending changes"},
			{Name: "branch", Description: "Open a feature branch"},
		}},
		{Name: "github", Categories: []string{"vcs", "api"}, Priority: 80, Enabled: true, Tools: []Tool{
			{Name: "open_issue", Description: "File a tracking issue"},
			{Name: "open_pr", Description: "Open a pull request"},
			{Name: "review", Description: "Request and collect reviews"},
		}},
		{Name: "analytics", Categories: []string{"data"}, Priority: 70, Enabled: true, Tools: []Tool{
			{Name: "funnel", Description: "Chart a conversion funnel"},
			{Name: "cohort", Description: "Compare retention cohorts"},
			{Name: "experiment", Description: "Size an A/B experiment"},
		}},
		{Name: "deploy", Categories: []string{"deployment"}, Priority: 65, Enabled: true, Tools: []Tool{
			{Name: "preview", Description: "Ship a preview environment"},
			{Name: "promote", Description: "Promote a build to production"},
			{Name: "rollback", Description: "Roll back the last release"},
		}},
		{Name: "database", Categories: []string{"data"}, Priority: 60, Enabled: true, Tools: []Tool{
			{Name: "query", Description: "Run a read-only query"},
			{Name: "schema", Description: "Describe tables and relations"},
		}},
		{Name: "browser", Categories: []string{"web", "research"}, Priority: 55, Enabled: true, Tools: []Tool{
			{Name: "fetch", Description: "Fetch a web page"},
			{Name: "screenshot", Description: "Capture a page screenshot"},
			{Name: "scrape", Description: "Extract structured data"},
		}},
		{Name: "docs", Categories: []string{"writing"}, Priority: 50, Enabled: true, Tools: []Tool{
			{Name: "outline", Description: "Outline a document"},
			{Name: "draft", Description: "Draft prose from notes"},
			{Name: "summarize", Description: "Condense findings"},
		}},
		{Name: "slack", Categories: []string{"communication"}, Priority: 30, Enabled: false, Tools: []Tool{
			{Name: "post", Description: "Post an update to a channel"},
		}},
	}
}
