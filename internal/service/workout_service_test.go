package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"taskbuddy/internal/cache"
	"taskbuddy/internal/events"
	"taskbuddy/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestWorkoutService_CompleteWorkoutValidation(t *testing.T) {
	t.Parallel()
	svc := NewWorkoutService(&workoutRepoStub{}, &userRepoStub{}, nil)

	_, err := svc.CompleteWorkout(context.Background(), 0, "Boxing")
	assert.True(t, models.HasCode(err, models.CodeValidation))

	_, err = svc.CompleteWorkout(context.Background(), 1, " ")
	assert.True(t, models.HasCode(err, models.CodeValidation))
}

func TestWorkoutService_CompleteWorkoutPublishesAfterCommit(t *testing.T) {
	t.Parallel()
	repo := &workoutRepoStub{
		completeFn: func(_ context.Context, userID uint, workoutType string) (*models.User, error) {
			return &models.User{ID: userID, Username: "alice", WorkoutsCompleted: 4, CurrentStreak: 2}, nil
		},
	}
	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, mock.MatchedBy(func(e events.Event) bool {
		data, ok := e.Data.(map[string]interface{})
		return e.Type == events.WorkoutCompleted && e.UserID == 7 && ok && data["workout_type"] == "Wrestling"
	})).Once()

	svc := NewWorkoutService(repo, &userRepoStub{}, pub)
	stats, err := svc.CompleteWorkout(context.Background(), 7, "Wrestling")
	require.NoError(t, err)
	assert.Equal(t, 4, stats.WorkoutsCompleted)
	assert.Equal(t, 2, stats.CurrentStreak)
	pub.AssertExpectations(t)
}

// stalledSink blocks every send until the dispatcher gives up on it.
type stalledSink struct{}

func (stalledSink) Name() string { return "stalled" }
func (stalledSink) Send(ctx context.Context, _ events.Event, _ []byte) error {
	<-ctx.Done()
	return ctx.Err()
}
func (stalledSink) Close() error { return nil }

func TestWorkoutService_CompleteWorkoutDoesNotWaitOnSink(t *testing.T) {
	t.Parallel()
	repo := &workoutRepoStub{
		completeFn: func(_ context.Context, userID uint, _ string) (*models.User, error) {
			return &models.User{ID: userID, Username: "alice", WorkoutsCompleted: 1, CurrentStreak: 1}, nil
		},
	}
	pub := events.NewPublisherWithOptions(stalledSink{}, events.PublisherOptions{SendTimeout: 100 * time.Millisecond})
	t.Cleanup(func() { _ = pub.Close() })

	svc := NewWorkoutService(repo, &userRepoStub{}, pub)
	start := time.Now()
	for i := 0; i < 5; i++ {
		_, err := svc.CompleteWorkout(context.Background(), 1, "Boxing")
		require.NoError(t, err)
	}
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestWorkoutService_CompleteWorkoutFailureDoesNotPublish(t *testing.T) {
	t.Parallel()
	repo := &workoutRepoStub{
		completeFn: func(context.Context, uint, string) (*models.User, error) {
			return nil, models.NewInternalError(errors.New("tx aborted"))
		},
	}
	pub := &mockPublisher{}

	svc := NewWorkoutService(repo, &userRepoStub{}, pub)
	_, err := svc.CompleteWorkout(context.Background(), 1, "Boxing")
	assert.True(t, models.HasCode(err, models.CodeInternal))
	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestWorkoutService_GetStatsValidation(t *testing.T) {
	t.Parallel()
	svc := NewWorkoutService(&workoutRepoStub{}, &userRepoStub{}, nil)

	_, err := svc.GetStats(context.Background(), 0)
	assert.True(t, models.HasCode(err, models.CodeValidation))
}

func TestWorkoutService_StatsCacheInvalidatedOnComplete(t *testing.T) {
	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })

	counters := models.Stats{WorkoutsCompleted: 1, CurrentStreak: 1}
	reads := 0
	users := &userRepoStub{
		getStatsFn: func(context.Context, uint) (*models.Stats, error) {
			reads++
			s := counters
			return &s, nil
		},
	}
	workouts := &workoutRepoStub{
		completeFn: func(_ context.Context, userID uint, _ string) (*models.User, error) {
			counters.WorkoutsCompleted++
			counters.CurrentStreak++
			return &models.User{ID: userID, Username: "alice", WorkoutsCompleted: counters.WorkoutsCompleted, CurrentStreak: counters.CurrentStreak}, nil
		},
	}
	svc := NewWorkoutService(workouts, users, events.Noop())
	ctx := context.Background()

	first, err := svc.GetStats(ctx, 1)
	require.NoError(t, err)
	_, err = svc.GetStats(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, reads)
	assert.Equal(t, 1, first.WorkoutsCompleted)

	require.NoError(t, mr.Set(cache.UserProfileKey("alice"), "{}"))
	_, err = svc.CompleteWorkout(ctx, 1, "Boxing")
	require.NoError(t, err)
	assert.False(t, mr.Exists(cache.UserStatsKey(1)))
	assert.False(t, mr.Exists(cache.UserProfileKey("alice")))

	after, err := svc.GetStats(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, reads)
	assert.Equal(t, 2, after.WorkoutsCompleted)
}

func TestWorkoutService_StatsReadRacingCompletionIsNotCached(t *testing.T) {
	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })

	counters := models.Stats{WorkoutsCompleted: 1, CurrentStreak: 1}
	var svc *WorkoutService
	reads := 0
	users := &userRepoStub{
		getStatsFn: func(ctx context.Context, id uint) (*models.Stats, error) {
			reads++
			s := counters
			if reads == 1 {
				_, err := svc.CompleteWorkout(ctx, id, "Boxing")
				require.NoError(t, err)
			}
			return &s, nil
		},
	}
	workouts := &workoutRepoStub{
		completeFn: func(_ context.Context, userID uint, _ string) (*models.User, error) {
			counters.WorkoutsCompleted++
			counters.CurrentStreak++
			return &models.User{ID: userID, Username: "alice", WorkoutsCompleted: counters.WorkoutsCompleted, CurrentStreak: counters.CurrentStreak}, nil
		},
	}
	svc = NewWorkoutService(workouts, users, events.Noop())
	ctx := context.Background()

	stale, err := svc.GetStats(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, stale.WorkoutsCompleted)
	assert.False(t, mr.Exists(cache.UserStatsKey(1)))

	current, err := svc.GetStats(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, current.WorkoutsCompleted)
	assert.Equal(t, 2, reads)
}

func TestWorkoutService_GetStatsNotFound(t *testing.T) {
	t.Parallel()
	users := &userRepoStub{
		getStatsFn: func(_ context.Context, id uint) (*models.Stats, error) {
			return nil, models.NewNotFoundError("User", id)
		},
	}

	_, err := NewWorkoutService(&workoutRepoStub{}, users, nil).GetStats(context.Background(), 5)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestWorkoutService_History(t *testing.T) {
	t.Parallel()
	var gotLimit int
	repo := &workoutRepoStub{
		listByUserFn: func(_ context.Context, _ uint, limit int) ([]models.CompletedWorkout, error) {
			gotLimit = limit
			return []models.CompletedWorkout{{ID: 2, WorkoutType: "BJJ"}, {ID: 1, WorkoutType: "Boxing"}}, nil
		},
	}
	svc := NewWorkoutService(repo, &userRepoStub{}, nil)

	history, err := svc.History(context.Background(), 3, 5)
	require.NoError(t, err)
	assert.Len(t, history, 2)
	assert.Equal(t, 5, gotLimit)

	_, err = svc.History(context.Background(), 0, 5)
	assert.True(t, models.HasCode(err, models.CodeValidation))
}
