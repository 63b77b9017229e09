package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/fentz26/hyperplex/internal/engine"
	"github.com/fentz26/hyperplex/internal/journal"
	"github.com/fentz26/hyperplex/internal/toolkit"
)

// session is a configured engine plus the resources it holds.
type session struct {
	engine  *engine.Engine
	journal *journal.Store
	seed    int64
}

// openSession builds the engine from the loaded config. A journal that
// cannot be opened is reported and skipped.
func openSession() (*session, error) {
	r, err := cfg.BuildRoster()
	if err != nil {
		return nil, fmt.Errorf("build roster: %w", err)
	}

	registry := toolkit.NewRegistry()
	if err := registry.RegisterDefaults(); err != nil {
		return nil, err
	}
	if cfg.Tools != nil {
		if err := registry.Apply(cfg.Tools.Toolsets); err != nil {
			return nil, fmt.Errorf("apply tools.toolsets: %w", err)
		}
	}
	router := toolkit.NewRouter(cfg.Tools, registry)

	step, jitter, err := cfg.Latency.Durations()
	if err != nil {
		return nil, err
	}

	s := &session{seed: cfg.Seed}
	if s.seed == 0 {
		s.seed = time.Now().UnixNano()
	}

	opts := []engine.Option{
		engine.WithSeed(s.seed),
		engine.WithLatency(step, jitter),
		engine.WithHistoryCapacity(cfg.HistoryCapacity),
		engine.WithMaxToolCalls(cfg.MaxToolCalls),
		engine.WithRouter(router),
		engine.WithLogger(logger.Named("engine")),
	}
	if noDelay {
		opts = append(opts, engine.WithPacer(engine.NoDelay))
	}

	if cfg.Journal.Enabled {
		store, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			logger.Warn("journal disabled", zap.String("path", cfg.Journal.Path), zap.Error(err))
			fmt.Fprintf(os.Stderr, "warning: journal disabled: %v\n", err)
		} else {
			s.journal = store
			opts = append(opts, engine.WithRecorder(store))
		}
	}

	s.engine = engine.New(r, opts...)
	logger.Info("session opened",
		zap.Int64("seed", s.seed),
		zap.Int("agents", r.Len()),
		zap.Int("toolsets", registry.Count()),
		zap.Bool("journal", s.journal != nil),
	)
	return s, nil
}

// rand returns a source for presentation-only randomness, derived from the
// session seed so seeded runs are reproducible end to end.
func (s *session) rand() *rand.Rand {
	return rand.New(rand.NewSource(s.seed + 1))
}

func (s *session) Close() {
	if s.journal != nil {
		if err := s.journal.Close(); err != nil {
			logger.Warn("close journal", zap.Error(err))
		}
	}
}
