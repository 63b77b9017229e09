package toolkit

import (
	"context"
	"regexp"
	"strings"
)

// highPriorityFloor is the priority a toolset needs to be offered when no
// keyword rule matched under the "keywords" strategy.
const highPriorityFloor = 80

// Router picks toolsets for a task.
type Router interface {
	// Route returns the toolsets to expose for a given task.
	Route(ctx context.Context, task Task) (*RoutingResult, error)
	// GetToolManifest returns the flattened tool list.
	GetToolManifest(sets []Toolset) []Tool
}

// KeywordRouter implements keyword-based routing.
type KeywordRouter struct {
	config   *Config
	registry *Registry
}

// NewRouter creates a keyword router. Nil arguments fall back to defaults.
func NewRouter(cfg *Config, reg *Registry) *KeywordRouter {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if reg == nil {
		reg = NewRegistry()
		if err := reg.RegisterDefaults(); err != nil {
			panic(err)
		}
	}

	return &KeywordRouter{
		config:   cfg,
		registry: reg,
	}
}

// Route determines which toolsets to expose for a given task.
func (r *KeywordRouter) Route(ctx context.Context, task Task) (*RoutingResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !r.config.Enabled {
		sets := r.registry.GetEnabled()
		sets, total, filtered := r.applyToolBudget(sets)
		return &RoutingResult{
			Task:             task,
			SelectedToolsets: sets,
			TotalTools:       total,
			FilteredTools:    filtered,
		}, nil
	}

	text := strings.ToLower(task.Title + " " + task.Description)

	matched := make(map[string]bool)
	matchedRules := []string{}

	for _, name := range r.config.AlwaysOn {
		if !r.config.IsAlwaysOff(name) {
			matched[name] = true
		}
	}

	ruleHit := false
	for _, rule := range r.config.Rules {
		if !r.matchesRule(text, rule) {
			continue
		}
		ruleHit = true
		matchedRules = append(matchedRules, ruleLabel(rule))
		for _, enable := range rule.Enable {
			for _, name := range r.config.ExpandGroup(enable) {
				if !r.config.IsAlwaysOff(name) {
					matched[name] = true
				}
			}
		}
	}

	if !ruleHit {
		for _, ts := range r.registry.GetEnabled() {
			if r.config.IsAlwaysOff(ts.Name) {
				continue
			}
			if r.config.Strategy == "auto" || r.priority(ts) >= highPriorityFloor {
				matched[ts.Name] = true
			}
		}
	}

	selected := r.buildList(matched)
	selected, total, filtered := r.applyToolBudget(selected)

	return &RoutingResult{
		Task:             task,
		SelectedToolsets: selected,
		MatchedRules:     matchedRules,
		TotalTools:       total,
		FilteredTools:    filtered,
	}, nil
}

func ruleLabel(rule RoutingRule) string {
	if len(rule.Keywords) == 0 {
		return "pattern:" + rule.Pattern
	}
	return strings.Join(rule.Keywords, ",")
}

// matchesRule checks if text matches a routing rule.
func (r *KeywordRouter) matchesRule(text string, rule RoutingRule) bool {
	if rule.Pattern != "" {
		matched, err := regexp.MatchString(rule.Pattern, text)
		if err == nil && matched {
			return true
		}
	}

	for _, keyword := range rule.Keywords {
		if containsWord(text, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}

// containsWord checks if text contains keyword as a whole word.
func containsWord(text, keyword string) bool {
	// multi-word keywords like "pull request" use plain substring matching
	if strings.Contains(keyword, " ") {
		return strings.Contains(text, keyword)
	}

	for _, word := range strings.Fields(text) {
		cleaned := strings.Trim(word, ".,;:!?\"'()[]{}")
		if cleaned == keyword {
			return true
		}
	}
	return false
}

func (r *KeywordRouter) priority(ts Toolset) int {
	return r.config.GetPriority(ts.Name, ts.Priority)
}

// buildList converts matched names to toolsets sorted by priority.
func (r *KeywordRouter) buildList(matched map[string]bool) []Toolset {
	sets := make([]Toolset, 0, len(matched))
	for name := range matched {
		if ts, ok := r.registry.Get(name); ok && ts.Enabled {
			ts.Priority = r.priority(*ts)
			sets = append(sets, *ts)
		}
	}
	sortByPriority(sets)
	return sets
}

// applyToolBudget enforces the max tools per task limit.
func (r *KeywordRouter) applyToolBudget(sets []Toolset) ([]Toolset, int, int) {
	total := 0
	for _, ts := range sets {
		total += ts.ToolCount
	}

	if total <= r.config.MaxToolsPerTask {
		return sets, total, total
	}

	filtered := make([]Toolset, 0, len(sets))
	filteredTools := 0
	for _, ts := range sets {
		if filteredTools+ts.ToolCount <= r.config.MaxToolsPerTask || r.config.IsAlwaysOn(ts.Name) {
			filtered = append(filtered, ts)
			filteredTools += ts.ToolCount
		}
	}
	return filtered, total, filteredTools
}

// GetToolManifest flattens the tools of the given toolsets.
func (r *KeywordRouter) GetToolManifest(sets []Toolset) []Tool {
	tools := make([]Tool, 0)
	for _, ts := range sets {
		for _, tool := range ts.Tools {
			tool.Toolset = ts.Name
			tools = append(tools, tool)
		}
	}
	return tools
}

// Registry returns the router's registry.
func (r *KeywordRouter) Registry() *Registry {
	return r.registry
}
