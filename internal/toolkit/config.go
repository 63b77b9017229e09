package toolkit

import "fmt"

// Config holds router configuration.
type Config struct {
	// Enabled toggles keyword routing; when off every enabled toolset is offered.
	Enabled bool `yaml:"enabled"`
	// Strategy determines routing approach: auto, keywords.
	Strategy string `yaml:"strategy"`
	// MaxToolsPerTask is the tool budget per mission.
	MaxToolsPerTask int `yaml:"max_tools_per_task"`
	// Priority overrides toolset importance (higher = more likely to include).
	Priority map[string]int `yaml:"priority,omitempty"`
	// Groups define named collections of toolsets.
	Groups map[string][]string `yaml:"groups"`
	// AlwaysOn lists toolsets that are always included.
	AlwaysOn []string `yaml:"always_on"`
	// AlwaysOff lists toolsets that are never included.
	AlwaysOff []string `yaml:"always_off"`
	// Toolsets switches registered toolsets on or off by name.
	Toolsets map[string]bool `yaml:"toolsets,omitempty"`
	// Rules define keyword-based routing rules.
	Rules []RoutingRule `yaml:"rules"`
}

// RoutingRule defines a keyword-based routing rule.
type RoutingRule struct {
	// Keywords trigger this rule when found in the task text.
	Keywords []string `yaml:"keywords"`
	// Enable specifies which toolsets or groups to enable.
	Enable []string `yaml:"enable"`
	// Pattern is an optional regex pattern for matching.
	Pattern string `yaml:"pattern,omitempty"`
}

// DefaultConfig returns the built-in routing configuration.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		Strategy:        "keywords",
		MaxToolsPerTask: 12,
		Groups: map[string][]string{
			"delivery":  {"git", "github", "deploy"},
			"insight":   {"analytics", "database"},
			"research":  {"browser", "docs"},
			"authoring": {"docs", "planner"},
		},
		AlwaysOn:  []string{"workspace"},
		AlwaysOff: []string{},
		Rules: []RoutingRule{
			{
				Keywords: []string{"plan", "roadmap", "strategy", "milestone", "onboarding"},
				Enable:   []string{"planner"},
			},
			{
				Keywords: []string{"growth", "experiment", "experiments", "funnel", "retention", "metrics", "onboarding"},
				Enable:   []string{"insight"},
			},
			{
				Keywords: []string{"ship", "deploy", "release", "launch", "production"},
				Enable:   []string{"delivery"},
			},
			{
				Keywords: []string{"github", "pr", "pull request", "issue", "repo", "refactor", "build"},
				Enable:   []string{"git", "github"},
			},
			{
				Keywords: []string{"research", "competitor", "competitors", "market", "web", "scrape"},
				Enable:   []string{"research"},
			},
			{
				Keywords: []string{"doc", "docs", "spec", "brief", "memo", "report", "write"},
				Enable:   []string{"authoring"},
			},
			{
				Keywords: []string{"sql", "query", "schema", "data", "database"},
				Enable:   []string{"database"},
			},
		},
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.MaxToolsPerTask < 1 {
		return fmt.Errorf("max_tools_per_task must be at least 1")
	}

	validStrategies := map[string]bool{
		"auto":     true,
		"keywords": true,
	}
	if !validStrategies[c.Strategy] {
		return fmt.Errorf("invalid strategy %q, must be: auto or keywords", c.Strategy)
	}

	for i, rule := range c.Rules {
		if len(rule.Keywords) == 0 && rule.Pattern == "" {
			return fmt.Errorf("rule %d: needs keywords or a pattern", i)
		}
		if len(rule.Enable) == 0 {
			return fmt.Errorf("rule %d: enable list is empty", i)
		}
	}
	return nil
}

// GetPriority returns the configured priority override for a toolset.
func (c *Config) GetPriority(name string, fallback int) int {
	if p, ok := c.Priority[name]; ok {
		return p
	}
	return fallback
}

// IsAlwaysOn checks if a toolset is in the always-on list.
func (c *Config) IsAlwaysOn(name string) bool {
	return contains(c.AlwaysOn, name)
}

// IsAlwaysOff checks if a toolset is in the always-off list.
func (c *Config) IsAlwaysOff(name string) bool {
	return contains(c.AlwaysOff, name)
}

// ExpandGroup expands a group name to its member toolsets.
func (c *Config) ExpandGroup(name string) []string {
	if members, ok := c.Groups[name]; ok {
		return members
	}
	return []string{name}
}

func contains(list []string, name string) bool {
	for _, n := range list {
		if n == name {
			return true
		}
	}
	return false
}
