package console

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fentz26/hyperplex/internal/engine"
	"github.com/fentz26/hyperplex/internal/models"
)

func newTestEngine() *engine.Engine {
	return engine.New(nil, engine.WithSeed(11), engine.WithPacer(engine.NoDelay))
}

func TestPrinter_FormatsEveryEventType(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	for _, typ := range models.EventTypes {
		out := p.Format(models.Event{Type: typ, Headline: "head", Body: "line one\nline two"})
		assert.NotEmpty(t, out, "type %s", typ)
		if typ == models.EventDivider {
			assert.Equal(t, strings.Repeat("─", dividerWidth), out)
			continue
		}
		lines := strings.Split(out, "\n")
		require.Len(t, lines, 3, "type %s", typ)
		assert.Contains(t, lines[0], "head")
		assert.Equal(t, "  line one", lines[1])
		assert.Equal(t, "  line two", lines[2])
	}
}

func TestPrinter_Prefixes(t *testing.T) {
	p := NewPrinter(&bytes.Buffer{})
	assert.Equal(t, "! careful", p.Format(models.Event{Type: models.EventWarning, Headline: "careful"}))
	assert.Equal(t, "✖ boom", p.Format(models.Event{Type: models.EventError, Headline: "boom"}))
	assert.Equal(t, "› run x", p.Format(models.Event{Type: models.EventInput, Headline: "run x"}))
}

func TestPrinter_ClearCallsHandler(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	cleared := 0
	p.OnClear = func() { cleared++ }

	p.Print(models.NewEvent(models.EventSystem, "", models.ClearSentinel))

	assert.Equal(t, 1, cleared)
	assert.Empty(t, buf.String())
}

func TestFormatStats(t *testing.T) {
	snap := models.Snapshot{
		Stack: make([]models.StackEntry, 3),
		Stats: models.Stats{Missions: 4, AvgAgents: 2.4},
	}
	assert.Equal(t, "missions 04 · avg agents 2.4 · stack 03", FormatStats(snap))
}

func TestReadScript(t *testing.T) {
	src := "# warm up\nagents\n\n  stack add ship it  \n# done\nhistory\n"
	lines, err := ReadScript(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, []string{"agents", "stack add ship it", "history"}, lines)
}

func TestRunScript(t *testing.T) {
	var buf bytes.Buffer
	eng := newTestEngine()

	err := RunScript(context.Background(), eng, NewPrinter(&buf), []string{
		"stack add ship onboarding",
		"run ship onboarding --priority=high",
		"bogus",
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Equal(t, 2, strings.Count(out, strings.Repeat("─", dividerWidth)))
	assert.Contains(t, out, "› run ship onboarding --priority=high")
	assert.Contains(t, out, "✔ Mission complete · HIGH")
	assert.Contains(t, out, "✖ Unknown command: bogus")
	assert.True(t, strings.HasSuffix(out, FormatStats(eng.Snapshot())+"\n"))
	assert.Equal(t, 1, eng.Snapshot().Stats.Missions)
}

func TestRunLine_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	eng := newTestEngine()
	err := RunLine(ctx, eng, NewPrinter(&bytes.Buffer{}), "run anything")
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, eng.Busy())
}

func TestRunLine_ReportsBusyEngine(t *testing.T) {
	var buf bytes.Buffer
	eng := newTestEngine()
	s, err := eng.Execute(context.Background(), "agents")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, RunLine(context.Background(), eng, NewPrinter(&buf), "help"))
	assert.Contains(t, buf.String(), "Runtime failure")
	assert.Contains(t, buf.String(), engine.ErrConcurrentExecution.Error())
}
