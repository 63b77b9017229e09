package engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/fentz26/hyperplex/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestEngine(opts ...Option) *Engine {
	base := []Option{
		WithSeed(7),
		WithPacer(NoDelay),
		WithClock(func() time.Time { return fixedNow }),
	}
	return New(nil, append(base, opts...)...)
}

func run(t *testing.T, e *Engine, input string) []models.Event {
	t.Helper()
	s, err := e.Execute(context.Background(), input)
	require.NoError(t, err)
	var events []models.Event
	require.NoError(t, Drain(context.Background(), s, func(ev models.Event) {
		events = append(events, ev)
	}))
	return events
}

func types(events []models.Event) []models.EventType {
	out := make([]models.EventType, len(events))
	for i, ev := range events {
		out[i] = ev.Type
	}
	return out
}

func TestExecute_EmptyInput(t *testing.T) {
	e := newTestEngine()
	for _, in := range []string{"", "   ", "\t"} {
		events := run(t, e, in)
		assert.Empty(t, events, "input %q", in)
	}
	assert.False(t, e.Busy())
}

func TestExecute_UnknownCommandLeavesStateUnchanged(t *testing.T) {
	e := newTestEngine()
	run(t, e, "stack add warm up")
	before := e.Snapshot()

	events := run(t, e, "launch rockets")

	require.Len(t, events, 1)
	assert.Contains(t, []models.EventType{models.EventError, models.EventWarning}, events[0].Type)
	assert.Contains(t, events[0].Headline, "launch")
	if diff := cmp.Diff(before, e.Snapshot()); diff != "" {
		t.Errorf("snapshot changed (-before +after):\n%s", diff)
	}
}

func TestExecute_UsageIsSingleWarning(t *testing.T) {
	e := newTestEngine()
	for _, in := range []string{"run", "run --priority=high", "stack add", "stack shuffle"} {
		events := run(t, e, in)
		require.Len(t, events, 1, in)
		assert.Equal(t, models.EventWarning, events[0].Type, in)
		assert.True(t, strings.HasPrefix(events[0].Headline, "Usage: "), in)
	}
	assert.Zero(t, e.Snapshot().Stats.Missions)
}

func TestExecute_Agents(t *testing.T) {
	e := newTestEngine()
	events := run(t, e, "agents")

	agents := e.Roster().Agents()
	require.Len(t, events, len(agents))
	for i, ev := range events {
		assert.Equal(t, models.EventAgent, ev.Type)
		assert.Contains(t, ev.Headline, agents[i].Name)
		assert.Equal(t, agents[i].ID, ev.AgentID)
	}
}

func TestExecute_StackAddThenList(t *testing.T) {
	e := newTestEngine()

	events := run(t, e, "stack add ship   onboarding --now")
	require.Len(t, events, 1)
	assert.Equal(t, models.EventSystem, events[0].Type)

	snap := e.Snapshot()
	require.Len(t, snap.Stack, 1)
	assert.Equal(t, "ship   onboarding --now", snap.Stack[0].Task)
	assert.Equal(t, 1, snap.Stack[0].Seq)
	assert.Equal(t, fixedNow, snap.Stack[0].CreatedAt)

	events = run(t, e, "stack")
	require.Len(t, events, 1)
	assert.Equal(t, models.EventSystem, events[0].Type)
	assert.Contains(t, events[0].Body, "1. ship   onboarding --now")
}

func TestExecute_StackPopAndClear(t *testing.T) {
	e := newTestEngine()
	run(t, e, "stack add first")
	run(t, e, "stack add second")
	run(t, e, "stack add third")

	events := run(t, e, "stack pop")
	require.Len(t, events, 1)
	assert.Contains(t, events[0].Headline, "third")
	assert.Len(t, e.Snapshot().Stack, 2)

	events = run(t, e, "stack clear")
	require.Len(t, events, 1)
	assert.Contains(t, events[0].Body, "2 removed")
	assert.Empty(t, e.Snapshot().Stack)

	events = run(t, e, "stack pop")
	require.Len(t, events, 1)
	assert.Equal(t, models.EventWarning, events[0].Type)

	events = run(t, e, "stack list")
	require.Len(t, events, 1)
	assert.Equal(t, "Stack is empty", events[0].Headline)
}

func TestExecute_RunCommitsOneMission(t *testing.T) {
	e := newTestEngine()
	events := run(t, e, "run ship onboarding flow --priority=high --deliverable=plan")

	snap := e.Snapshot()
	require.Len(t, snap.History, 1)
	m := snap.History[0]
	assert.Equal(t, "ship onboarding flow", m.Task)
	assert.Equal(t, models.PriorityHigh, m.Priority)
	assert.Equal(t, "plan", m.Deliverable)
	assert.Equal(t, fixedNow, m.CompletedAt)

	require.NotEmpty(t, m.AgentIDs)
	assert.LessOrEqual(t, len(m.AgentIDs), e.Roster().Len())
	seen := map[string]bool{}
	last := -1
	for _, id := range m.AgentIDs {
		pos := e.Roster().Position(id)
		require.GreaterOrEqual(t, pos, 0, "agent %s not in roster", id)
		assert.False(t, seen[id], "duplicate agent %s", id)
		assert.Greater(t, pos, last, "agents out of roster order")
		seen[id] = true
		last = pos
	}

	assert.Equal(t, 1, snap.Stats.Missions)
	assert.InDelta(t, float64(len(m.AgentIDs)), snap.Stats.AvgAgents, 1e-9)

	require.GreaterOrEqual(t, len(events), 3)
	assert.Equal(t, models.EventSystem, events[0].Type)
	assert.Equal(t, models.EventResult, events[len(events)-1].Type)
	assert.Contains(t, events[len(events)-1].Headline, "HIGH")
	assert.Contains(t, events[len(events)-1].Headline, "plan")

	var narrated []string
	for _, ev := range events {
		if ev.Type == models.EventAgent {
			narrated = append(narrated, ev.AgentID)
		}
	}
	assert.Equal(t, m.AgentIDs, narrated)
}

func TestExecute_RunEventOrder(t *testing.T) {
	e := newTestEngine()
	for i := 0; i < 10; i++ {
		events := run(t, e, "run compile the quarterly report for the board --priority=urgent --deliverable=")

		order := map[models.EventType]int{
			models.EventSystem:  0,
			models.EventWarning: 1,
			models.EventAgent:   2,
			models.EventTool:    3,
			models.EventResult:  4,
		}
		prev := -1
		results := 0
		for _, ev := range events {
			rank, ok := order[ev.Type]
			require.True(t, ok, "unexpected event type %s", ev.Type)
			assert.GreaterOrEqual(t, rank, prev, "event %s out of order", ev.Type)
			prev = rank
			if ev.Type == models.EventResult {
				results++
			}
		}
		assert.Equal(t, 1, results)
		assert.Equal(t, models.EventSystem, events[0].Type)
		assert.Equal(t, models.EventWarning, events[1].Type)
		assert.Equal(t, models.EventWarning, events[2].Type)
	}
}

func TestExecute_RunToolEventsAreAttributed(t *testing.T) {
	e := newTestEngine(WithMaxToolCalls(2))
	events := run(t, e, "run refactor the build pipeline for github")

	m := e.Snapshot().History[0]
	var tools []string
	for _, ev := range events {
		if ev.Type != models.EventTool {
			continue
		}
		tools = append(tools, ev.Headline)
		assert.Contains(t, m.AgentIDs, ev.AgentID)
	}
	assert.LessOrEqual(t, len(tools), 2)
	assert.Equal(t, m.Tools, tools)
}

func TestExecute_NoToolEventsWhenDisabled(t *testing.T) {
	e := newTestEngine(WithMaxToolCalls(0))
	events := run(t, e, "run deploy the release")
	assert.NotContains(t, types(events), models.EventTool)
	assert.Empty(t, e.Snapshot().History[0].Tools)
}

func TestStats_AverageMatchesHistory(t *testing.T) {
	e := newTestEngine()
	tasks := []string{
		"run a",
		"run write the onboarding memo for new hires this week --deliverable=memo",
		"run audit --priority=high",
		"run research competitor pricing across three markets and summarize",
	}
	for _, task := range tasks {
		run(t, e, task)
	}

	snap := e.Snapshot()
	require.Len(t, snap.History, len(tasks))
	total := 0
	for _, m := range snap.History {
		total += len(m.AgentIDs)
	}
	assert.Equal(t, len(tasks), snap.Stats.Missions)
	assert.InDelta(t, float64(total)/float64(len(tasks)), snap.Stats.AvgAgents, 1e-9)
}

func TestHistory_CapacityEvictsOldest(t *testing.T) {
	e := newTestEngine(WithHistoryCapacity(2))
	run(t, e, "run first")
	run(t, e, "run second")
	run(t, e, "run third")

	snap := e.Snapshot()
	require.Len(t, snap.History, 2)
	assert.Equal(t, "second", snap.History[0].Task)
	assert.Equal(t, "third", snap.History[1].Task)
	assert.Equal(t, 3, snap.Stats.Missions)

	total := len(snap.History[0].AgentIDs) + len(snap.History[1].AgentIDs)
	assert.InDelta(t, float64(total)/2, snap.Stats.AvgAgents, 1e-9)

	events := run(t, e, "history")
	require.Len(t, events, 2)
	assert.Equal(t, "third", events[0].Headline)
	assert.Equal(t, "second", events[1].Headline)
}

func TestExecute_HistoryEmpty(t *testing.T) {
	e := newTestEngine()
	events := run(t, e, "history")
	require.Len(t, events, 1)
	assert.Equal(t, models.EventSystem, events[0].Type)
}

func TestExecute_ReentrancyRejected(t *testing.T) {
	e := newTestEngine()
	s, err := e.Execute(context.Background(), "agents")
	require.NoError(t, err)
	require.True(t, s.Next(context.Background()))

	_, err = e.Execute(context.Background(), "help")
	assert.ErrorIs(t, err, ErrConcurrentExecution)

	// Even empty input is rejected while a stream is open.
	_, err = e.Execute(context.Background(), "")
	assert.ErrorIs(t, err, ErrConcurrentExecution)

	for s.Next(context.Background()) {
	}
	assert.False(t, e.Busy())

	_, err = e.Execute(context.Background(), "help")
	assert.NoError(t, err)
}

func TestExecute_ConcurrentCallersOnlyOneWins(t *testing.T) {
	e := newTestEngine()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		streams []*Stream
		busy    int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := e.Execute(context.Background(), "help")
			mu.Lock()
			defer mu.Unlock()
			if errors.Is(err, ErrConcurrentExecution) {
				busy++
				return
			}
			streams = append(streams, s)
		}()
	}
	wg.Wait()

	require.Len(t, streams, 1)
	assert.Equal(t, 7, busy)
	streams[0].Close()
	assert.False(t, e.Busy())
}

func TestStream_AbandonedRunDoesNotCommit(t *testing.T) {
	rec := &fakeRecorder{}
	e := newTestEngine(WithRecorder(rec))

	s, err := e.Execute(context.Background(), "run ship onboarding --priority=high")
	require.NoError(t, err)
	require.True(t, s.Next(context.Background()))
	assert.Greater(t, s.Remaining(), 0)
	s.Close()
	s.Close()

	snap := e.Snapshot()
	assert.Empty(t, snap.History)
	assert.Zero(t, snap.Stats.Missions)
	assert.Zero(t, snap.Stats.AvgAgents)
	assert.Empty(t, rec.missions)
	assert.False(t, s.Next(context.Background()))

	// The engine is usable again and the stale stream cannot release it.
	s2, err := e.Execute(context.Background(), "agents")
	require.NoError(t, err)
	s.Close()
	assert.True(t, e.Busy())
	s2.Close()
}

func TestStream_CancelledMidRun(t *testing.T) {
	e := newTestEngine()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s, err := e.Execute(ctx, "run migrate billing database")
	require.NoError(t, err)
	require.True(t, s.Next(ctx))
	cancel()

	assert.False(t, s.Next(ctx))
	assert.ErrorIs(t, s.Err(), context.Canceled)
	assert.Empty(t, e.Snapshot().History)
	assert.False(t, e.Busy())
}

func TestExecute_CancelledBeforeRun(t *testing.T) {
	e := newTestEngine()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Execute(ctx, "run migrate billing database")
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, e.Busy())
}

func TestStream_SleepPacerHonoursCancellation(t *testing.T) {
	e := New(nil, WithSeed(1), WithLatency(time.Hour, 0))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	s, err := e.Execute(ctx, "agents")
	require.NoError(t, err)
	assert.False(t, s.Next(ctx))
	assert.ErrorIs(t, s.Err(), context.DeadlineExceeded)
	assert.False(t, e.Busy())
}

func TestExecute_Clear(t *testing.T) {
	e := newTestEngine()
	events := run(t, e, "CLEAR")
	require.Len(t, events, 1)
	assert.True(t, events[0].IsClear())
	assert.Equal(t, models.ClearSentinel, events[0].Body)
}

func TestExecute_HelpAndTools(t *testing.T) {
	e := newTestEngine()

	events := run(t, e, "help")
	require.Len(t, events, 1)
	for _, name := range []string{"run", "agents", "stack", "history", "tools", "clear"} {
		assert.Contains(t, events[0].Body, name)
	}

	events = run(t, e, "tools")
	assert.Len(t, events, len(e.Router().Registry().GetEnabled()))
	for _, ev := range events {
		assert.Equal(t, models.EventTool, ev.Type)
	}
}

func TestSnapshot_IsDeepCopy(t *testing.T) {
	e := newTestEngine()
	run(t, e, "run ship it")
	run(t, e, "stack add later")

	snap := e.Snapshot()
	snap.History[0].AgentIDs[0] = "mutated"
	snap.Stack[0].Task = "mutated"
	snap.Agents[0].Name = "mutated"

	again := e.Snapshot()
	assert.NotEqual(t, "mutated", again.History[0].AgentIDs[0])
	assert.Equal(t, "later", again.Stack[0].Task)
	assert.NotEqual(t, "mutated", again.Agents[0].Name)
}

func TestExecute_SameSeedSameNarration(t *testing.T) {
	a := newTestEngine()
	b := newTestEngine()

	ignore := cmpopts.IgnoreFields(models.Event{}, "ID", "Headline", "Body")
	for _, in := range []string{"run draft launch plan --deliverable=plan", "run triage bugs"} {
		ea := run(t, a, in)
		eb := run(t, b, in)
		if diff := cmp.Diff(ea, eb, ignore); diff != "" {
			t.Errorf("%q diverged (-a +b):\n%s", in, diff)
		}
	}
	assert.Equal(t, a.Snapshot().History[1].AgentIDs, b.Snapshot().History[1].AgentIDs)
}

func TestExecute_EventIDsUnique(t *testing.T) {
	e := newTestEngine()
	seen := map[string]bool{}
	for _, in := range []string{"agents", "run one", "run two", "tools", "help"} {
		for _, ev := range run(t, e, in) {
			require.NotEmpty(t, ev.ID)
			assert.False(t, seen[ev.ID], "duplicate id %s", ev.ID)
			seen[ev.ID] = true
		}
	}
}

func TestExecute_MissionAndStackIDsNeverReused(t *testing.T) {
	e := newTestEngine(WithHistoryCapacity(3))
	seen := map[string]bool{}
	track := func(id string) {
		t.Helper()
		require.NotEmpty(t, id)
		assert.False(t, seen[id], "reused id %s", id)
		seen[id] = true
	}

	run(t, e, "stack add first draft")
	popped := e.Snapshot().Stack[0].ID
	track(popped)
	run(t, e, "stack pop")
	run(t, e, "stack add second draft")
	run(t, e, "stack add third draft")
	for _, entry := range e.Snapshot().Stack {
		track(entry.ID)
	}

	var missionIDs []string
	for _, in := range []string{"run one", "run two", "run three", "run four", "run five"} {
		run(t, e, in)
		h := e.Snapshot().History
		missionIDs = append(missionIDs, h[len(h)-1].ID)
	}
	for _, id := range missionIDs {
		track(id)
	}
	for _, m := range e.Snapshot().History {
		assert.True(t, seen[m.ID], "unexpected mission id %s", m.ID)
	}
	assert.Len(t, e.Snapshot().History, 3)
}

func TestSnapshot_RepeatedCallsDoNotDrift(t *testing.T) {
	e := newTestEngine()
	run(t, e, "run draft the launch memo --deliverable=memo")
	run(t, e, "run ship onboarding --priority=high")
	run(t, e, "stack add retro")

	first := e.Snapshot()
	for i := 0; i < 5; i++ {
		if diff := cmp.Diff(first.Stats, e.Snapshot().Stats); diff != "" {
			t.Fatalf("stats drifted on call %d (-first +now):\n%s", i, diff)
		}
	}
	if diff := cmp.Diff(first, e.Snapshot()); diff != "" {
		t.Errorf("snapshot drifted (-first +now):\n%s", diff)
	}
}

func TestRun_NarrationReportsSimulatedLatency(t *testing.T) {
	e := newTestEngine(WithLatency(time.Second, 0))
	events := run(t, e, "run refactor the billing repo")

	var narrated int
	for _, ev := range events {
		switch ev.Type {
		case models.EventAgent:
			narrated++
			assert.Contains(t, ev.Body, "status: done · simulated 1.0s")
			assert.NotContains(t, ev.Body, "done in")
		case models.EventTool:
			assert.Contains(t, ev.Body, "simulated 500ms")
		}
	}
	assert.Positive(t, narrated)
}

func TestRecorder_ReceivesCommitsAndDecisions(t *testing.T) {
	rec := &fakeRecorder{}
	e := newTestEngine(WithRecorder(rec))

	run(t, e, "stack add queued")
	run(t, e, "run ship it")
	run(t, e, "stack pop")

	require.Len(t, rec.missions, 1)
	assert.Equal(t, "ship it", rec.missions[0].Task)
	assert.Equal(t, []string{"stack.add", "stack.pop"}, rec.actions)
}

func TestRecorder_FailureDoesNotAffectState(t *testing.T) {
	rec := &fakeRecorder{err: errors.New("disk full")}
	e := newTestEngine(WithRecorder(rec))

	run(t, e, "run ship it")
	assert.Len(t, e.Snapshot().History, 1)
}

type fakeRecorder struct {
	err      error
	missions []models.Mission
	actions  []string
}

func (f *fakeRecorder) RecordMission(_ context.Context, m models.Mission) error {
	f.missions = append(f.missions, m)
	return f.err
}

func (f *fakeRecorder) RecordDecision(_ context.Context, action string, _ any, _, _, _ string) error {
	f.actions = append(f.actions, action)
	return f.err
}
