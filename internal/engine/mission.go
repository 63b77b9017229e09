package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fentz26/hyperplex/internal/command"
	"github.com/fentz26/hyperplex/internal/models"
	"github.com/fentz26/hyperplex/internal/toolkit"
)

var narrations = []string{
	"Breaking \"{task}\" into milestones and owners.",
	"Scanning prior missions for signals relevant to \"{task}\".",
	"Drafting the {deliverable} outline and wiring dependencies.",
	"Stress-testing assumptions behind \"{task}\".",
	"Cross-checking the {deliverable} against open risks.",
	"Pairing on the hardest slice of \"{task}\".",
	"Condensing findings into the {deliverable}.",
}

var toolOutcomes = []string{
	"ok",
	"ok · cached",
	"ok · 2 results",
	"ok · warnings suppressed",
}

type toolCall struct {
	tool  toolkit.Tool
	agent models.Agent
}

// planMission builds the run sequence: acceptance, warnings, one
// narration per agent, tool calls, then the result. The mission is
// committed when the result event is produced.
func (e *Engine) planMission(ctx context.Context, in command.Intent) ([]step, error) {
	route, err := e.router.Route(ctx, toolkit.Task{Title: in.Task, Description: in.Deliverable})
	if err != nil {
		return nil, fmt.Errorf("route tools: %w", err)
	}

	agents := e.selectAgents(in)
	calls := e.selectTools(route, agents)

	mission := models.Mission{
		ID:          uuid.NewString(),
		Task:        in.Task,
		Priority:    in.Priority,
		Deliverable: in.Deliverable,
		AgentIDs:    make([]string, len(agents)),
	}
	names := make([]string, len(agents))
	for i, a := range agents {
		mission.AgentIDs[i] = a.ID
		names[i] = a.Name
	}
	for _, c := range calls {
		mission.Tools = append(mission.Tools, c.tool.QualifiedName())
	}

	steps := make([]step, 0, len(in.Warnings)+len(agents)+len(calls)+2)
	steps = append(steps, emit(e.pause(0.4), models.NewEvent(models.EventSystem,
		"Mission accepted · "+models.ShortID(mission.ID),
		fmt.Sprintf("task: %s\npriority: %s · deliverable: %s\nsquad: %s",
			mission.Task, mission.Priority, mission.Deliverable, strings.Join(names, ", ")),
	)))

	for _, w := range in.Warnings {
		steps = append(steps, emit(0, models.NewEvent(models.EventWarning, w, "")))
	}

	fill := strings.NewReplacer("{task}", in.Task, "{deliverable}", in.Deliverable)
	for _, a := range agents {
		delay := e.pause(1)
		ev := models.NewEvent(models.EventAgent,
			fmt.Sprintf("%s %s · %s", a.Avatar, a.Name, a.Role),
			fmt.Sprintf("%s\nstatus: done · simulated %.1fs",
				fill.Replace(narrations[e.rng.Intn(len(narrations))]), delay.Seconds()),
		)
		ev.AgentID = a.ID
		steps = append(steps, emit(delay, ev))
	}

	for _, c := range calls {
		delay := e.pause(0.5)
		ev := models.NewEvent(models.EventTool,
			c.tool.QualifiedName(),
			fmt.Sprintf("invoked by %s · %s\n%s · simulated %dms",
				c.agent.Name, c.tool.Description,
				toolOutcomes[e.rng.Intn(len(toolOutcomes))], delay.Milliseconds()),
		)
		ev.AgentID = c.agent.ID
		steps = append(steps, emit(delay, ev))
	}

	body := []string{
		"task: " + mission.Task,
		"agents: " + strings.Join(names, ", "),
	}
	if len(mission.Tools) > 0 {
		body = append(body, "tools: "+strings.Join(mission.Tools, ", "))
	}
	body = append(body, "mission: "+models.ShortID(mission.ID))
	result := models.NewEvent(models.EventResult,
		fmt.Sprintf("Mission complete · %s · %s", strings.ToUpper(string(mission.Priority)), mission.Deliverable),
		strings.Join(body, "\n"),
	)

	steps = append(steps, step{
		delay: e.pause(0.6),
		produce: func(ctx context.Context) models.Event {
			e.commit(ctx, mission)
			return result
		},
	})
	return steps, nil
}

// selectAgents sizes the squad from task length, priority and an explicit
// deliverable, then picks members at random. The squad keeps roster order.
// Callers hold e.mu.
func (e *Engine) selectAgents(in command.Intent) []models.Agent {
	n := e.roster.Len()
	want := 1 + len(strings.Fields(in.Task))/4
	if in.Priority == models.PriorityHigh {
		want++
	}
	if in.DeliverableSet {
		want++
	}
	want += e.rng.Intn(2)
	want = min(max(want, 1), n)

	picks := e.rng.Perm(n)[:want]
	sort.Ints(picks)

	agents := make([]models.Agent, want)
	for i, p := range picks {
		agents[i] = e.roster.At(p)
	}
	return agents
}

// selectTools draws distinct tools from the routed manifest and assigns
// each to a squad member. Callers hold e.mu.
func (e *Engine) selectTools(route *toolkit.RoutingResult, agents []models.Agent) []toolCall {
	manifest := e.router.GetToolManifest(route.SelectedToolsets)
	n := min(e.maxTools, len(manifest), len(agents)+1)
	if n <= 0 {
		return nil
	}
	calls := make([]toolCall, n)
	for i, idx := range e.rng.Perm(len(manifest))[:n] {
		calls[i] = toolCall{
			tool:  manifest[idx],
			agent: agents[e.rng.Intn(len(agents))],
		}
	}
	return calls
}

func (e *Engine) commit(ctx context.Context, m models.Mission) {
	m.CompletedAt = e.now()

	e.mu.Lock()
	evicted, ok := e.history.push(m.Clone())
	e.completed++
	e.mu.Unlock()

	fields := []zap.Field{
		zap.String("mission", m.ID),
		zap.String("priority", string(m.Priority)),
		zap.Int("agents", len(m.AgentIDs)),
	}
	if ok {
		fields = append(fields, zap.String("evicted", evicted.ID))
	}
	e.log.Info("mission committed", fields...)

	if err := e.recorder.RecordMission(ctx, m); err != nil {
		e.log.Warn("record mission", zap.String("mission", m.ID), zap.Error(err))
	}
}
