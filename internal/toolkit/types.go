// Package toolkit provides the simulated tool surface agents appear to use
// during missions, and the keyword router that picks toolsets for a task.
package toolkit

// Toolset is a named group of simulated tools.
type Toolset struct {
	Name       string   `yaml:"name" json:"name"`
	Tools      []Tool   `yaml:"tools" json:"tools"`
	ToolCount  int      `yaml:"tool_count" json:"tool_count"`
	Categories []string `yaml:"categories" json:"categories"`
	Priority   int      `yaml:"priority" json:"priority"`
	Enabled    bool     `yaml:"enabled" json:"enabled"`
}

// Tool is an individual simulated tool.
type Tool struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Toolset     string `yaml:"toolset,omitempty" json:"toolset,omitempty"`
}

// QualifiedName returns toolset.tool.
func (t Tool) QualifiedName() string {
	if t.Toolset == "" {
		return t.Name
	}
	return t.Toolset + "." + t.Name
}

// Task is the text a routing decision is made on.
type Task struct {
	ID          string
	Title       string
	Description string
}

// RoutingResult contains the result of a routing decision.
type RoutingResult struct {
	Task             Task      `json:"task"`
	SelectedToolsets []Toolset `json:"selected_toolsets"`
	MatchedRules     []string  `json:"matched_rules"`
	TotalTools       int       `json:"total_tools"`
	FilteredTools    int       `json:"filtered_tools"`
}
