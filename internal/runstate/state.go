// Package runstate tracks the lifecycle of a single pipeline run.
// A Tracker is the only mutator of a run's status, stage, counts and error.
package runstate

import (
	"context"
	"fmt"
	"time"

	"github.com/jonathan/recruit-pilot/internal/db"
)

// MaxErrorLength bounds the persisted error message
const MaxErrorLength = 1000

// Store persists run state changes. Implemented by *db.DB.
type Store interface {
	UpdateRunState(ctx context.Context, run *db.Run) error
}

// InvalidTransitionError indicates a disallowed status transition
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid run transition: %s -> %s", e.From, e.To)
}

// Tracker owns one run's state. Not safe for concurrent use; a run is
// driven by a single orchestrator goroutine.
type Tracker struct {
	store Store
	run   *db.Run
}

// NewTracker wraps an existing run
func NewTracker(store Store, run *db.Run) *Tracker {
	if run.Counts == nil {
		run.Counts = db.Counts{}
	}
	return &Tracker{store: store, run: run}
}

// Run returns the tracked run
func (t *Tracker) Run() *db.Run {
	return t.run
}

// MarkRunning transitions queued -> running and stamps started_at.
// The transition is strict: any status other than queued returns an
// InvalidTransitionError, including a second MarkRunning call.
func (t *Tracker) MarkRunning(ctx context.Context) error {
	if t.run.Status != db.StatusQueued {
		return &InvalidTransitionError{From: t.run.Status, To: db.StatusRunning}
	}
	now := time.Now()
	t.run.Status = db.StatusRunning
	t.run.StartedAt = &now
	return t.store.UpdateRunState(ctx, t.run)
}

// SetStage records the current pipeline stage. Stage ordering is not
// enforced; callers are trusted to move forward.
func (t *Tracker) SetStage(ctx context.Context, stage string) error {
	t.run.Stage = stage
	return t.store.UpdateRunState(ctx, t.run)
}

// MergeCounts shallow-merges partial into the run's counts and persists.
// Existing keys are overwritten, not summed.
func (t *Tracker) MergeCounts(ctx context.Context, partial db.Counts) error {
	t.run.Counts.Merge(partial)
	return t.store.UpdateRunState(ctx, t.run)
}

// MarkDone transitions the run to its terminal done state. A no-op when
// the run is already terminal.
func (t *Tracker) MarkDone(ctx context.Context) error {
	if t.run.Terminal() {
		return nil
	}
	now := time.Now()
	t.run.Status = db.StatusDone
	t.run.Stage = db.StageDone
	t.run.FinishedAt = &now
	return t.store.UpdateRunState(ctx, t.run)
}

// MarkError transitions the run to its terminal error state with a
// truncated message. Idempotent: once terminal, further calls are no-ops
// and the first message wins.
func (t *Tracker) MarkError(ctx context.Context, message string) error {
	if t.run.Terminal() {
		return nil
	}
	if len(message) > MaxErrorLength {
		message = message[:MaxErrorLength]
	}
	now := time.Now()
	t.run.Status = db.StatusError
	t.run.Stage = db.StageError
	t.run.Error = &message
	t.run.FinishedAt = &now
	return t.store.UpdateRunState(ctx, t.run)
}
