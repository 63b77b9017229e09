// Package models defines the core domain types for Hyperplex.
package models

import (
	"strings"
	"time"
)

// Priority is the urgency attached to a mission.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// ParsePriority returns the priority named by s (case-insensitive).
func ParsePriority(s string) (Priority, bool) {
	switch Priority(strings.ToLower(strings.TrimSpace(s))) {
	case PriorityLow:
		return PriorityLow, true
	case PriorityNormal:
		return PriorityNormal, true
	case PriorityHigh:
		return PriorityHigh, true
	default:
		return PriorityNormal, false
	}
}

// Agent is a named virtual collaborator.
type Agent struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Role   string `json:"role" yaml:"role"`
	Avatar string `json:"avatar" yaml:"avatar"`
}

// Mission is one completed unit of simulated work.
type Mission struct {
	ID          string    `json:"id"`
	Task        string    `json:"task"`
	Priority    Priority  `json:"priority"`
	Deliverable string    `json:"deliverable"`
	AgentIDs    []string  `json:"agent_ids"`
	Tools       []string  `json:"tools,omitempty"`
	CompletedAt time.Time `json:"completed_at"`
}

// Clone returns a copy that shares no slices with m.
func (m Mission) Clone() Mission {
	c := m
	c.AgentIDs = append([]string(nil), m.AgentIDs...)
	if m.Tools != nil {
		c.Tools = append([]string(nil), m.Tools...)
	}
	return c
}

// StackEntry is a queued task that has not been run.
type StackEntry struct {
	ID        string    `json:"id"`
	Task      string    `json:"task"`
	Seq       int       `json:"seq"`
	CreatedAt time.Time `json:"created_at"`
}

// Stats are derived from live engine state on every snapshot.
type Stats struct {
	Missions  int     `json:"missions"`
	AvgAgents float64 `json:"avg_agents"`
}

// Snapshot is a point-in-time copy of engine state.
type Snapshot struct {
	Agents  []Agent      `json:"agents"`
	Stack   []StackEntry `json:"stack"`
	History []Mission    `json:"history"` // oldest first
	Stats   Stats        `json:"stats"`
}

// Latest returns up to n history entries, newest first.
func (s Snapshot) Latest(n int) []Mission {
	if n > len(s.History) {
		n = len(s.History)
	}
	out := make([]Mission, 0, n)
	for i := len(s.History) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.History[i])
	}
	return out
}

// ShortID trims an identifier for display.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
