package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fentz26/hyperplex/internal/engine"
	"github.com/fentz26/hyperplex/internal/models"
)

// ReadScript returns the command lines of r, skipping blanks and # comments.
func ReadScript(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return lines, nil
}

// RunScript executes commands in order, echoing each as an input event and
// separating them with dividers, then prints the final stats line.
// It stops early only when ctx ends.
func RunScript(ctx context.Context, eng *engine.Engine, p *Printer, commands []string) error {
	for i, cmd := range commands {
		if i > 0 {
			p.Divider()
		}
		if err := RunLine(ctx, eng, p, cmd); err != nil {
			return err
		}
	}
	p.Stats(eng.Snapshot())
	return nil
}

// RunLine executes one command and prints its events. Cancellation is
// returned; any other engine error is printed as a runtime failure.
func RunLine(ctx context.Context, eng *engine.Engine, p *Printer, line string) error {
	p.Print(models.NewEvent(models.EventInput, line, ""))

	s, err := eng.Execute(ctx, line)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		p.Print(engine.FailureEvent(err))
		return nil
	}
	return engine.Drain(ctx, s, p.Print)
}
