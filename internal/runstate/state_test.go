package runstate

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/recruit-pilot/internal/db"
)

// memStore records every persisted snapshot
type memStore struct {
	updates int
}

func (s *memStore) UpdateRunState(_ context.Context, _ *db.Run) error {
	s.updates++
	return nil
}

func newQueuedRun() *db.Run {
	return &db.Run{
		Query:  "python developer",
		Status: db.StatusQueued,
		Stage:  db.StageDiscover,
		Counts: db.Counts{},
	}
}

func TestMarkRunning(t *testing.T) {
	store := &memStore{}
	tracker := NewTracker(store, newQueuedRun())

	require.NoError(t, tracker.MarkRunning(context.Background()))
	assert.Equal(t, db.StatusRunning, tracker.Run().Status)
	assert.NotNil(t, tracker.Run().StartedAt)
	assert.Equal(t, 1, store.updates)
}

func TestMarkRunning_RejectsReentry(t *testing.T) {
	tracker := NewTracker(&memStore{}, newQueuedRun())
	require.NoError(t, tracker.MarkRunning(context.Background()))

	err := tracker.MarkRunning(context.Background())
	require.Error(t, err)
	var transitionErr *InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, db.StatusRunning, transitionErr.From)
}

func TestSetStage_Unconditional(t *testing.T) {
	tracker := NewTracker(&memStore{}, newQueuedRun())

	// No ordering enforcement: any stage can be set at any time
	require.NoError(t, tracker.SetStage(context.Background(), db.StageGenerate))
	assert.Equal(t, db.StageGenerate, tracker.Run().Stage)
	require.NoError(t, tracker.SetStage(context.Background(), db.StageDiscover))
	assert.Equal(t, db.StageDiscover, tracker.Run().Stage)
}

func TestMergeCounts(t *testing.T) {
	tracker := NewTracker(&memStore{}, newQueuedRun())
	ctx := context.Background()

	require.NoError(t, tracker.MergeCounts(ctx, db.Counts{"jobs": 3}))
	require.NoError(t, tracker.MergeCounts(ctx, db.Counts{"enriched": 2}))
	require.NoError(t, tracker.MergeCounts(ctx, db.Counts{"enriched": 3}))

	assert.Equal(t, 3, tracker.Run().Counts["jobs"])
	assert.Equal(t, 3, tracker.Run().Counts["enriched"])
}

func TestMarkDone(t *testing.T) {
	tracker := NewTracker(&memStore{}, newQueuedRun())
	ctx := context.Background()
	require.NoError(t, tracker.MarkRunning(ctx))

	require.NoError(t, tracker.MarkDone(ctx))
	assert.Equal(t, db.StatusDone, tracker.Run().Status)
	assert.Equal(t, db.StageDone, tracker.Run().Stage)
	assert.NotNil(t, tracker.Run().FinishedAt)
}

func TestMarkError_Idempotent(t *testing.T) {
	tracker := NewTracker(&memStore{}, newQueuedRun())
	ctx := context.Background()

	require.NoError(t, tracker.MarkError(ctx, "first failure"))
	require.NoError(t, tracker.MarkError(ctx, "second failure"))

	assert.Equal(t, db.StatusError, tracker.Run().Status)
	assert.Equal(t, db.StageError, tracker.Run().Stage)
	require.NotNil(t, tracker.Run().Error)
	assert.Equal(t, "first failure", *tracker.Run().Error)
}

func TestMarkError_TruncatesMessage(t *testing.T) {
	tracker := NewTracker(&memStore{}, newQueuedRun())

	long := strings.Repeat("x", MaxErrorLength+500)
	require.NoError(t, tracker.MarkError(context.Background(), long))

	require.NotNil(t, tracker.Run().Error)
	assert.Len(t, *tracker.Run().Error, MaxErrorLength)
}

func TestMarkDone_NoOpAfterError(t *testing.T) {
	tracker := NewTracker(&memStore{}, newQueuedRun())
	ctx := context.Background()

	require.NoError(t, tracker.MarkError(ctx, "boom"))
	require.NoError(t, tracker.MarkDone(ctx))

	// Terminal error state is immutable
	assert.Equal(t, db.StatusError, tracker.Run().Status)
}
