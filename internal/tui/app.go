// Package tui provides the interactive terminal console for Hyperplex.
package tui

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/fentz26/hyperplex/internal/console"
	"github.com/fentz26/hyperplex/internal/engine"
	"github.com/fentz26/hyperplex/internal/models"
)

const (
	sidebarWidth   = 34
	recentMissions = 4
)

// Config configures the console.
type Config struct {
	// Rand rotates suggestion chips. Defaults to a time-seeded source.
	Rand   *rand.Rand
	Logger *zap.Logger
}

// App is the main TUI application model.
type App struct {
	eng         *engine.Engine
	log         *zap.Logger
	input       textinput.Model
	viewport    viewport.Model
	width       int
	height      int
	lines       []models.Event
	snap        models.Snapshot
	history     *InputHistory
	chips       *Chips
	suggestions *Suggestions

	ctx     context.Context
	runCtx  context.Context
	stream  *engine.Stream
	cancel  context.CancelFunc
	running bool
}

// eventMsg carries one event pulled from the running stream.
type eventMsg struct {
	stream *engine.Stream
	event  models.Event
}

// streamDoneMsg reports that the running stream is exhausted or cancelled.
type streamDoneMsg struct {
	stream *engine.Stream
	err    error
}

// New creates a new TUI application over eng.
func New(eng *engine.Engine, cfg Config) *App {
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	ti := textinput.New()
	ti.Placeholder = "run <task> --priority=high | agents | stack add <task> | help"
	ti.Prompt = "› "
	ti.Focus()
	ti.CharLimit = 512
	ti.Width = 80

	snap := eng.Snapshot()
	a := &App{
		eng:         eng,
		log:         cfg.Logger,
		input:       ti,
		viewport:    viewport.New(80, 20),
		snap:        snap,
		history:     NewInputHistory(),
		chips:       NewChips(cfg.Rand),
		suggestions: NewSuggestions(snap.Agents),
		ctx:         context.Background(),
		lines: []models.Event{
			models.NewEvent(models.EventSystem, "Hyperplex · Agentic CLI", "Booting swarm orchestration layer..."),
			models.NewEvent(models.EventSystem, "", "Type `help` to view commands · Ships with autoplan, stack queue, and telemetry"),
		},
	}
	a.refresh()
	return a
}

// Run starts the TUI application.
func (a *App) Run(ctx context.Context) error {
	a.ctx = ctx
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if model, cmd, handled := a.handleKey(msg); handled {
			return model, cmd
		}

	case tea.WindowSizeMsg:
		a.resize(msg.Width, msg.Height)

	case eventMsg:
		if msg.stream != a.stream {
			return a, nil
		}
		a.push(msg.event)
		return a, a.pull()

	case streamDoneMsg:
		if msg.stream != a.stream {
			return a, nil
		}
		a.finish(msg.err)
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	a.suggestions.Update(a.input.Value())
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c":
		if a.cancel != nil {
			a.cancel()
		}
		return a, tea.Quit, true

	case "esc":
		if a.running && a.cancel != nil {
			a.cancel()
			return a, nil, true
		}
		a.input.SetValue("")
		a.suggestions.Update("")
		return a, nil, true

	case "up":
		if a.suggestions.IsVisible() {
			a.suggestions.Prev()
		} else if cmd, ok := a.history.Older(); ok {
			a.input.SetValue(cmd)
			a.input.CursorEnd()
		}
		return a, nil, true

	case "down":
		if a.suggestions.IsVisible() {
			a.suggestions.Next()
		} else if cmd, ok := a.history.Newer(); ok {
			a.input.SetValue(cmd)
			a.input.CursorEnd()
		}
		return a, nil, true

	case "pgup", "pgdown":
		var cmd tea.Cmd
		a.viewport, cmd = a.viewport.Update(msg)
		return a, cmd, true

	case "tab":
		if text, ok := a.suggestions.Accept(); ok {
			a.input.SetValue(text)
			a.input.CursorEnd()
		}
		return a, nil, true

	case "alt+1", "alt+2", "alt+3":
		n := int(msg.String()[len("alt+")] - '0')
		if chip, ok := a.chips.At(n); ok {
			a.input.SetValue(chip.Command)
			a.input.CursorEnd()
			a.suggestions.Update("")
		}
		return a, nil, true

	case "ctrl+l":
		return a, a.submit("clear"), true

	case "enter":
		if text, ok := a.suggestions.Accept(); ok {
			a.input.SetValue(text)
			a.input.CursorEnd()
			return a, nil, true
		}
		return a, a.submit(a.input.Value()), true
	}
	return a, nil, false
}

// submit starts a command unless one is already running.
func (a *App) submit(raw string) tea.Cmd {
	value := strings.TrimSpace(raw)
	if value == "" || a.running {
		return nil
	}
	a.input.SetValue("")
	a.suggestions.Update("")
	a.history.Push(value)
	a.push(models.NewEvent(models.EventInput, value, ""))

	ctx, cancel := context.WithCancel(a.ctx)
	s, err := a.eng.Execute(ctx, value)
	if err != nil {
		cancel()
		a.log.Warn("execute", zap.String("input", value), zap.Error(err))
		a.push(engine.FailureEvent(err))
		return nil
	}

	a.stream, a.runCtx, a.cancel, a.running = s, ctx, cancel, true
	a.refresh()
	return a.pull()
}

// pull produces the next event off the UI goroutine.
func (a *App) pull() tea.Cmd {
	s, ctx := a.stream, a.runCtx
	return func() tea.Msg {
		if s.Next(ctx) {
			return eventMsg{stream: s, event: s.Event()}
		}
		return streamDoneMsg{stream: s, err: s.Err()}
	}
}

func (a *App) finish(err error) {
	if a.stream != nil {
		a.stream.Close()
	}
	if a.cancel != nil {
		a.cancel()
	}
	a.stream, a.runCtx, a.cancel, a.running = nil, nil, nil, false
	if err != nil {
		a.log.Info("mission cancelled", zap.Error(err))
		a.push(models.NewEvent(models.EventWarning, "Mission cancelled", "Partial work was discarded."))
		return
	}
	a.refresh()
}

// push appends ev to the transcript, honoring the clear sentinel.
func (a *App) push(ev models.Event) {
	if ev.IsClear() {
		a.lines = nil
	} else {
		a.lines = append(a.lines, ev)
	}
	a.chips.Rotate()
	a.refresh()
}

func (a *App) refresh() {
	a.snap = a.eng.Snapshot()
	a.viewport.SetContent(renderTranscript(a.lines, a.viewport.Width-1))
	a.viewport.GotoBottom()
}

func (a *App) resize(width, height int) {
	a.width, a.height = width, height
	a.input.Width = max(width-8, 10)
	a.viewport.Width = max(width-sidebarWidth-2, 20)
	a.viewport.Height = max(height-11, 5)
	a.refresh()
}

// Running reports whether a command is in flight.
func (a *App) Running() bool {
	return a.running
}

// Transcript returns the visible transcript entries.
func (a *App) Transcript() []models.Event {
	return append([]models.Event(nil), a.lines...)
}

// View implements tea.Model
func (a *App) View() string {
	var b strings.Builder

	b.WriteString(a.renderHeader())
	b.WriteString("\n")
	b.WriteString(dividerStyle.Render(strings.Repeat("─", max(a.width, 1))))
	b.WriteString("\n")

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		a.viewport.View(),
		" ",
		a.renderSidebar(a.viewport.Height),
	))
	b.WriteString("\n")

	b.WriteString(inputBoxStyle.Width(max(a.width-2, 20)).Render(a.input.View()))
	if a.suggestions.IsVisible() {
		b.WriteString("\n")
		b.WriteString(a.suggestions.Render(a.width))
	}
	b.WriteString("\n")
	b.WriteString(a.chips.Render())
	b.WriteString("\n")

	status := " Enter:run | ↑↓:history | /:commands | @:agents | alt+1-3:chips | Ctrl+L:clear | Ctrl+C:quit"
	if a.running {
		status = " Esc:cancel mission | PgUp/PgDn:scroll | Ctrl+C:quit"
	}
	b.WriteString(statusBarStyle.Width(max(a.width, 1)).Render(status))
	return b.String()
}

func (a *App) renderHeader() string {
	pill := idlePillStyle.Render("○ Idle")
	if a.running {
		pill = busyPillStyle.Render("● Autopilot engaged")
	}
	stats := lipgloss.NewStyle().Foreground(cyanColor).Render(console.FormatStats(a.snap))
	return titleStyle.Render("◆ HYPERPLEX") + "  " + pill + "  " + stats
}

func (a *App) renderSidebar(height int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Agents"))
	b.WriteString("\n")
	for _, ag := range a.snap.Agents {
		b.WriteString(fmt.Sprintf("%s %s\n", ag.Avatar, ag.Name))
		b.WriteString(helpStyle.Render("   "+truncate(ag.Role, sidebarWidth-7)) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(titleStyle.Render("Recent missions"))
	b.WriteString("\n")
	recent := a.snap.Latest(recentMissions)
	if len(recent) == 0 {
		b.WriteString(helpStyle.Render("No missions yet"))
		b.WriteString("\n")
	}
	for _, m := range recent {
		b.WriteString(truncate(m.Task, sidebarWidth-4) + "\n")
		b.WriteString(helpStyle.Render(fmt.Sprintf("   %s · %d agents", strings.ToUpper(string(m.Priority)), len(m.AgentIDs))) + "\n")
	}

	return panelStyle.Width(sidebarWidth - 2).Height(max(height-2, 1)).Render(strings.TrimRight(b.String(), "\n"))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n < 1 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
