package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/fentz26/hyperplex/internal/command"
	"github.com/fentz26/hyperplex/internal/models"
)

// plan builds the pending steps for one intent. Callers hold e.mu.
func (e *Engine) plan(ctx context.Context, in command.Intent) ([]step, error) {
	switch in.Kind {
	case command.KindRun:
		return e.planMission(ctx, in)
	case command.KindAgents:
		return e.planAgents(), nil
	case command.KindStackAdd:
		return e.planStackAdd(in.Task), nil
	case command.KindStackList:
		return []step{emit(e.pause(0.2), e.stackEvent())}, nil
	case command.KindStackPop:
		return []step{{delay: e.pause(0.2), produce: e.popStack}}, nil
	case command.KindStackClear:
		return []step{{delay: e.pause(0.2), produce: e.clearStack}}, nil
	case command.KindHistory:
		return e.planHistory(), nil
	case command.KindTools:
		return e.planTools(), nil
	case command.KindHelp:
		return []step{emit(0, helpEvent())}, nil
	case command.KindClear:
		return []step{emit(0, models.NewEvent(models.EventSystem, "", models.ClearSentinel))}, nil
	case command.KindUsage:
		return []step{emit(0, models.NewEvent(models.EventWarning,
			"Usage: "+in.Usage,
			"Type `help` to view commands.",
		))}, nil
	default:
		name := in.Command
		if name == "" {
			name = strings.TrimSpace(in.Raw)
		}
		return []step{emit(0, models.NewEvent(models.EventError,
			fmt.Sprintf("Unknown command: %s", name),
			"Type `help` to view commands.",
		))}, nil
	}
}

func (e *Engine) planAgents() []step {
	agents := e.roster.Agents()
	steps := make([]step, 0, len(agents))
	for _, a := range agents {
		ev := models.NewEvent(models.EventAgent,
			fmt.Sprintf("%s %s", a.Avatar, a.Name),
			fmt.Sprintf("%s\nid: %s", a.Role, a.ID),
		)
		ev.AgentID = a.ID
		steps = append(steps, emit(e.pause(0.15), ev))
	}
	return steps
}

func (e *Engine) planStackAdd(task string) []step {
	return []step{{
		delay: e.pause(0.2),
		produce: func(ctx context.Context) models.Event {
			e.mu.Lock()
			e.stackSeq++
			entry := models.StackEntry{
				ID:        uuid.NewString(),
				Task:      task,
				Seq:       e.stackSeq,
				CreatedAt: e.now(),
			}
			e.stack = append(e.stack, entry)
			depth := len(e.stack)
			e.mu.Unlock()

			e.recordDecision(ctx, "stack.add", map[string]any{"task": task}, entry.ID, "")
			return models.NewEvent(models.EventSystem,
				"Stacked: "+task,
				fmt.Sprintf("position %d of %d · id %s", depth, depth, models.ShortID(entry.ID)),
			)
		},
	}}
}

// stackEvent enumerates the stack. Callers hold e.mu.
func (e *Engine) stackEvent() models.Event {
	if len(e.stack) == 0 {
		return models.NewEvent(models.EventSystem,
			"Stack is empty",
			"Queue work with `stack add <task>`.",
		)
	}
	lines := make([]string, len(e.stack))
	for i, entry := range e.stack {
		lines[i] = fmt.Sprintf("%d. %s", i+1, entry.Task)
	}
	return models.NewEvent(models.EventSystem,
		fmt.Sprintf("Stack · %d queued", len(e.stack)),
		strings.Join(lines, "\n"),
	)
}

func (e *Engine) popStack(ctx context.Context) models.Event {
	e.mu.Lock()
	if len(e.stack) == 0 {
		e.mu.Unlock()
		return models.NewEvent(models.EventWarning, "Stack is empty", "Nothing to pop.")
	}
	entry := e.stack[len(e.stack)-1]
	e.stack = e.stack[:len(e.stack)-1]
	left := len(e.stack)
	e.mu.Unlock()

	e.recordDecision(ctx, "stack.pop", map[string]any{"task": entry.Task}, entry.ID, "")
	return models.NewEvent(models.EventSystem,
		"Popped: "+entry.Task,
		fmt.Sprintf("%d remaining", left),
	)
}

func (e *Engine) clearStack(ctx context.Context) models.Event {
	e.mu.Lock()
	n := len(e.stack)
	e.stack = nil
	e.mu.Unlock()

	if n > 0 {
		e.recordDecision(ctx, "stack.clear", map[string]any{"removed": n}, "", "")
	}
	return models.NewEvent(models.EventSystem,
		"Stack cleared",
		fmt.Sprintf("%d removed", n),
	)
}

func (e *Engine) planHistory() []step {
	missions := e.history.list()
	if len(missions) == 0 {
		return []step{emit(e.pause(0.2), models.NewEvent(models.EventSystem,
			"No missions yet",
			"Completed missions appear here after `run`.",
		))}
	}
	steps := make([]step, 0, len(missions))
	for i := len(missions) - 1; i >= 0; i-- {
		m := missions[i]
		body := []string{
			fmt.Sprintf("%s · %s", strings.ToUpper(string(m.Priority)), m.Deliverable),
			"agents: " + strings.Join(e.roster.Names(m.AgentIDs), ", "),
		}
		if len(m.Tools) > 0 {
			body = append(body, "tools: "+strings.Join(m.Tools, ", "))
		}
		body = append(body, fmt.Sprintf("completed %s · id %s",
			m.CompletedAt.Format("15:04:05"), models.ShortID(m.ID)))
		steps = append(steps, emit(e.pause(0.1), models.NewEvent(models.EventResult,
			m.Task, strings.Join(body, "\n"))))
	}
	return steps
}

func (e *Engine) planTools() []step {
	sets := e.router.Registry().GetEnabled()
	if len(sets) == 0 {
		return []step{emit(0, models.NewEvent(models.EventWarning, "No toolsets enabled", ""))}
	}
	steps := make([]step, 0, len(sets))
	for _, ts := range sets {
		lines := make([]string, len(ts.Tools))
		for i, tool := range ts.Tools {
			lines[i] = fmt.Sprintf("%-10s %s", tool.Name, tool.Description)
		}
		steps = append(steps, emit(e.pause(0.1), models.NewEvent(models.EventTool,
			fmt.Sprintf("%s · %d tools", ts.Name, ts.ToolCount),
			strings.Join(lines, "\n"),
		)))
	}
	return steps
}

func helpEvent() models.Event {
	entries := command.Catalog()
	lines := make([]string, len(entries))
	for i, s := range entries {
		lines[i] = fmt.Sprintf("%s\n    %s", s.Usage, s.Summary)
	}
	return models.NewEvent(models.EventSystem, "Commands", strings.Join(lines, "\n"))
}
