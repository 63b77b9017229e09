package console

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/chzyer/readline"
	"go.uber.org/zap"

	"github.com/fentz26/hyperplex/internal/engine"
	"github.com/fentz26/hyperplex/internal/models"
)

// MaxHistory caps remembered input lines.
const MaxHistory = 30

// ShellConfig configures the readline shell.
type ShellConfig struct {
	Prompt      string
	HistoryFile string
	Stdin       io.ReadCloser
	Stdout      io.Writer
	Logger      *zap.Logger
}

// Shell is the line-mode console.
type Shell struct {
	eng     *engine.Engine
	rl      *readline.Instance
	printer *Printer
	log     *zap.Logger
}

// NewShell opens a readline session over eng.
func NewShell(eng *engine.Engine, cfg ShellConfig) (*Shell, error) {
	if cfg.Prompt == "" {
		cfg.Prompt = "hyperplex › "
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          cfg.Prompt,
		HistoryFile:     cfg.HistoryFile,
		HistoryLimit:    MaxHistory,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		Stdin:           cfg.Stdin,
		Stdout:          cfg.Stdout,
	})
	if err != nil {
		return nil, err
	}

	p := newPrinter(rl.Stdout(), lipgloss.DefaultRenderer())
	p.OnClear = func() {
		readline.ClearScreen(rl.Stdout())
	}
	return &Shell{eng: eng, rl: rl, printer: p, log: cfg.Logger}, nil
}

// Close releases the terminal.
func (s *Shell) Close() error {
	return s.rl.Close()
}

// Run reads commands until exit, quit, EOF or ctx ends. Ctrl-C while a
// mission is running cancels only that mission.
func (s *Shell) Run(ctx context.Context) error {
	s.printer.Print(models.NewEvent(models.EventSystem,
		"Hyperplex shell",
		"Type `help` to view commands, `exit` to leave.",
	))
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		line, err := s.rl.Readline()
		switch {
		case errors.Is(err, readline.ErrInterrupt):
			if line == "" {
				return nil
			}
			continue
		case errors.Is(err, io.EOF):
			return nil
		case err != nil:
			return err
		}

		line = strings.TrimSpace(line)
		switch strings.ToLower(line) {
		case "exit", "quit":
			return nil
		case "":
			continue
		}
		s.runLine(ctx, line)
	}
}

func (s *Shell) runLine(ctx context.Context, line string) {
	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	st, err := s.eng.Execute(runCtx, line)
	if err != nil {
		s.log.Warn("execute", zap.String("input", line), zap.Error(err))
		s.printer.Print(engine.FailureEvent(err))
		return
	}
	if err := engine.Drain(runCtx, st, s.printer.Print); err != nil {
		s.log.Info("mission cancelled", zap.String("input", line), zap.Error(err))
		s.printer.Print(models.NewEvent(models.EventWarning, "Mission cancelled", ""))
	}
	s.printer.Stats(s.eng.Snapshot())
}
