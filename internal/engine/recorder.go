package engine

import (
	"context"

	"github.com/fentz26/hyperplex/internal/models"
)

// Recorder receives committed state changes, e.g. for an audit journal.
// Failures are logged and never affect engine state.
type Recorder interface {
	RecordMission(ctx context.Context, m models.Mission) error
	RecordDecision(ctx context.Context, action string, inputs any, outcome, subjectID, details string) error
}

type nopRecorder struct{}

func (nopRecorder) RecordMission(context.Context, models.Mission) error { return nil }

func (nopRecorder) RecordDecision(context.Context, string, any, string, string, string) error {
	return nil
}
