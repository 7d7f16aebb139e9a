package service

import (
	"context"
	"strings"

	"taskbuddy/internal/cache"
	"taskbuddy/internal/events"
	"taskbuddy/internal/models"
	"taskbuddy/internal/observability"
	"taskbuddy/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// WorkoutService is the workout ledger.
type WorkoutService struct {
	workoutRepo repository.WorkoutRepository
	userRepo    repository.UserRepository
	publisher   events.Publisher
}

func NewWorkoutService(workoutRepo repository.WorkoutRepository, userRepo repository.UserRepository, publisher events.Publisher) *WorkoutService {
	if publisher == nil {
		publisher = events.Noop()
	}
	return &WorkoutService{
		workoutRepo: workoutRepo,
		userRepo:    userRepo,
		publisher:   publisher,
	}
}

// CompleteWorkout records a completed workout and returns the updated counters.
// Cache invalidation, metrics and the domain event happen only after commit.
func (s *WorkoutService) CompleteWorkout(ctx context.Context, userID uint, workoutType string) (stats *models.Stats, err error) {
	if userID == 0 || strings.TrimSpace(workoutType) == "" {
		return nil, models.NewValidationError("userId and workoutType are required")
	}

	ctx, finish := observability.StartSpan(ctx, "WorkoutService.CompleteWorkout",
		attribute.Int("user.id", int(userID)),
		attribute.String("workout.type", workoutType),
	)
	defer func() { finish(err) }()

	user, err := s.workoutRepo.Complete(ctx, userID, workoutType)
	if err != nil {
		return nil, err
	}

	cache.InvalidateUser(ctx, user.ID, user.Username)
	observability.WorkoutsCompleted.WithLabelValues(workoutType).Inc()

	current := user.Stats()
	s.publisher.Publish(ctx, events.New(events.WorkoutCompleted, user.ID, map[string]interface{}{
		"workout_type":       workoutType,
		"workouts_completed": current.WorkoutsCompleted,
		"current_streak":     current.CurrentStreak,
	}))

	return &current, nil
}

// GetStats returns the user's counters.
func (s *WorkoutService) GetStats(ctx context.Context, userID uint) (*models.Stats, error) {
	if userID == 0 {
		return nil, models.NewValidationError("User ID is required")
	}

	var stats models.Stats
	err := cache.Aside(ctx, cache.UserStatsKey(userID), &stats, cache.UserStatsTTL, func() error {
		found, err := s.userRepo.GetStats(ctx, userID)
		if err != nil {
			return err
		}
		stats = *found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// History returns the user's completed workouts newest-first.
func (s *WorkoutService) History(ctx context.Context, userID uint, limit int) ([]models.CompletedWorkout, error) {
	if userID == 0 {
		return nil, models.NewValidationError("User ID is required")
	}
	return s.workoutRepo.ListByUser(ctx, userID, limit)
}
