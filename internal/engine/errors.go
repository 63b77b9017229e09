package engine

import (
	"errors"

	"github.com/fentz26/hyperplex/internal/models"
)

// ErrConcurrentExecution is returned by Execute while an earlier stream from
// the same engine has not been drained or closed.
var ErrConcurrentExecution = errors.New("engine: a command is already in flight")

// FailureEvent wraps an error that escaped command handling so consoles can
// show it in the transcript.
func FailureEvent(err error) models.Event {
	return models.NewEvent(models.EventError, "Runtime failure", err.Error())
}
