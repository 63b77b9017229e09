// Package engine owns the console's session state (agent roster, task
// stack, mission history) and turns classified commands into ordered,
// lazily produced event streams.
package engine

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fentz26/hyperplex/internal/command"
	"github.com/fentz26/hyperplex/internal/models"
	"github.com/fentz26/hyperplex/internal/roster"
	"github.com/fentz26/hyperplex/internal/toolkit"
)

const (
	// DefaultStep is the base simulated latency between events.
	DefaultStep = 450 * time.Millisecond
	// DefaultJitter is the maximum random latency added to a step.
	DefaultJitter = 350 * time.Millisecond
	// DefaultMaxToolCalls bounds tool events per mission.
	DefaultMaxToolCalls = 3
)

// Engine is the mission engine. It is not reentrant: one stream at a time.
type Engine struct {
	roster   *roster.Roster
	router   *toolkit.KeywordRouter
	rng      *rand.Rand
	now      func() time.Time
	pacer    Pacer
	step     time.Duration
	jitter   time.Duration
	maxTools int
	recorder Recorder
	log      *zap.Logger

	mu        sync.Mutex
	inFlight  bool
	history   *history
	stack     []models.StackEntry
	stackSeq  int
	completed int
}

// Option configures an Engine.
type Option func(*Engine)

// WithRand injects the random source used for agent, tool and phrasing picks.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) {
		if r != nil {
			e.rng = r
		}
	}
}

// WithSeed seeds a private random source.
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		e.rng = rand.New(rand.NewSource(seed))
	}
}

// WithClock overrides the mission completion clock.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithPacer replaces the latency model.
func WithPacer(p Pacer) Option {
	return func(e *Engine) {
		if p != nil {
			e.pacer = p
		}
	}
}

// WithLatency sets the base step latency and maximum jitter.
func WithLatency(step, jitter time.Duration) Option {
	return func(e *Engine) {
		e.step = max(step, 0)
		e.jitter = max(jitter, 0)
	}
}

// WithHistoryCapacity bounds mission history to the n most recent missions.
func WithHistoryCapacity(n int) Option {
	return func(e *Engine) {
		e.history = newHistory(n)
	}
}

// WithRouter sets the tool router used for tool events and `tools`.
func WithRouter(r *toolkit.KeywordRouter) Option {
	return func(e *Engine) {
		if r != nil {
			e.router = r
		}
	}
}

// WithMaxToolCalls bounds tool events per mission. Zero disables them.
func WithMaxToolCalls(n int) Option {
	return func(e *Engine) {
		e.maxTools = max(n, 0)
	}
}

// WithRecorder attaches an audit recorder.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) {
		if r != nil {
			e.recorder = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// New creates an engine over r. A nil roster uses the built-in roster.
func New(r *roster.Roster, opts ...Option) *Engine {
	if r == nil {
		r = roster.MustDefault()
	}
	e := &Engine{
		roster:   r,
		router:   toolkit.NewRouter(nil, nil),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		now:      time.Now,
		pacer:    SleepPacer{},
		step:     DefaultStep,
		jitter:   DefaultJitter,
		maxTools: DefaultMaxToolCalls,
		recorder: nopRecorder{},
		log:      zap.NewNop(),
		history:  newHistory(DefaultHistoryCapacity),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Roster returns the engine's fixed roster.
func (e *Engine) Roster() *roster.Roster {
	return e.roster
}

// Router returns the tool router.
func (e *Engine) Router() *toolkit.KeywordRouter {
	return e.router
}

// Busy reports whether a stream is in flight.
func (e *Engine) Busy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inFlight
}

// Execute classifies raw and returns the stream of events it produces.
// Empty input yields an empty stream. Execute fails with
// ErrConcurrentExecution while a previous stream is still open.
func (e *Engine) Execute(ctx context.Context, raw string) (*Stream, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.inFlight {
		e.log.Warn("rejected concurrent command", zap.String("input", raw))
		return nil, ErrConcurrentExecution
	}

	intent := command.Parse(raw)
	if intent.Kind == command.KindNone {
		return &Stream{}, nil
	}

	steps, err := e.plan(ctx, intent)
	if err != nil {
		return nil, err
	}

	e.log.Debug("dispatch",
		zap.String("kind", intent.Kind.String()),
		zap.Int("events", len(steps)),
	)
	e.inFlight = true
	return &Stream{engine: e, steps: steps}, nil
}

// Snapshot returns a deep copy of current state with freshly derived stats.
func (e *Engine) Snapshot() models.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	stack := make([]models.StackEntry, len(e.stack))
	copy(stack, e.stack)

	return models.Snapshot{
		Agents:  e.roster.Agents(),
		Stack:   stack,
		History: e.history.list(),
		Stats: models.Stats{
			Missions:  e.completed,
			AvgAgents: e.history.avgAgents(),
		},
	}
}

func (e *Engine) release() {
	e.mu.Lock()
	e.inFlight = false
	e.mu.Unlock()
}

// pause returns a step latency scaled by weight plus jitter.
// Callers hold e.mu.
func (e *Engine) pause(weight float64) time.Duration {
	d := time.Duration(float64(e.step) * weight)
	if e.jitter > 0 {
		d += time.Duration(e.rng.Int63n(int64(e.jitter) + 1))
	}
	return d
}

func (e *Engine) recordDecision(ctx context.Context, action string, inputs any, subjectID, details string) {
	if err := e.recorder.RecordDecision(ctx, action, inputs, "success", subjectID, details); err != nil {
		e.log.Warn("record decision", zap.String("action", action), zap.Error(err))
	}
}
