package engine

import (
	"context"
	"time"

	"github.com/fentz26/hyperplex/internal/models"
)

// step is one pending event. produce runs when the event is pulled, so any
// state change it makes happens only if the consumer gets that far.
type step struct {
	delay   time.Duration
	produce func(ctx context.Context) models.Event
}

func emit(delay time.Duration, ev models.Event) step {
	return step{delay: delay, produce: func(context.Context) models.Event { return ev }}
}

// Stream is the lazily evaluated event sequence of one Execute call.
//
//	for s.Next(ctx) {
//		render(s.Event())
//	}
//	if err := s.Err(); err != nil { ... }
//
// The engine stays busy until Next returns false or Close is called.
type Stream struct {
	engine *Engine
	steps  []step
	pos    int
	cur    models.Event
	err    error
	done   bool
}

// Next waits out the simulated latency and advances to the next event.
// It returns false when the sequence is exhausted, closed, or ctx ends.
func (s *Stream) Next(ctx context.Context) bool {
	if s.done {
		return false
	}
	if s.pos >= len(s.steps) {
		s.finish()
		return false
	}

	st := s.steps[s.pos]
	if err := s.engine.pacer.Wait(ctx, st.delay); err != nil {
		s.err = err
		s.finish()
		return false
	}
	s.cur = st.produce(ctx)
	s.pos++
	return true
}

// Event returns the event produced by the last successful Next.
func (s *Stream) Event() models.Event {
	return s.cur
}

// Err returns the cancellation error that ended the stream, if any.
func (s *Stream) Err() error {
	return s.err
}

// Remaining returns how many events have not been produced yet.
func (s *Stream) Remaining() int {
	return len(s.steps) - s.pos
}

// Close abandons the stream. Events not yet produced never take effect.
// Close is idempotent.
func (s *Stream) Close() {
	s.finish()
}

func (s *Stream) finish() {
	if s.done {
		return
	}
	s.done = true
	if s.engine != nil {
		s.engine.release()
	}
}

// Drain consumes s, passing each event to fn, and closes it.
func Drain(ctx context.Context, s *Stream, fn func(models.Event)) error {
	defer s.Close()
	for s.Next(ctx) {
		if fn != nil {
			fn(s.Event())
		}
	}
	return s.Err()
}
