package models

import "github.com/google/uuid"

// EventType is the closed set of event kinds the engine and consoles emit.
type EventType string

const (
	EventInput   EventType = "input"
	EventSystem  EventType = "system"
	EventAgent   EventType = "agent"
	EventTool    EventType = "tool"
	EventResult  EventType = "result"
	EventWarning EventType = "warning"
	EventError   EventType = "error"
	EventDivider EventType = "divider"
)

// EventTypes lists every EventType in declaration order.
var EventTypes = []EventType{
	EventInput, EventSystem, EventAgent, EventTool,
	EventResult, EventWarning, EventError, EventDivider,
}

// ClearSentinel in the body of a system event asks the presentation layer
// to drop its transcript.
const ClearSentinel = "__CLEAR__"

// Event is one narrated step or informational line.
// Body keeps embedded newlines for line-oriented rendering.
type Event struct {
	ID       string    `json:"id"`
	Type     EventType `json:"type"`
	Headline string    `json:"headline,omitempty"`
	Body     string    `json:"body,omitempty"`
	AgentID  string    `json:"agent_id,omitempty"`
}

// NewEvent creates an event with a fresh identifier.
func NewEvent(t EventType, headline, body string) Event {
	return Event{
		ID:       uuid.NewString(),
		Type:     t,
		Headline: headline,
		Body:     body,
	}
}

// IsClear reports whether e carries the clear sentinel.
func (e Event) IsClear() bool {
	return e.Type == EventSystem && e.Body == ClearSentinel
}
