package repository

import (
	"context"
	"errors"

	"taskbuddy/internal/models"
	"taskbuddy/internal/observability"

	"gorm.io/gorm"
)

// WorkoutRepository persists the workout log and keeps user counters in step with it.
type WorkoutRepository interface {
	Complete(ctx context.Context, userID uint, workoutType string) (*models.User, error)
	ListByUser(ctx context.Context, userID uint, limit int) ([]models.CompletedWorkout, error)
}

type workoutRepository struct {
	db *gorm.DB
}

// NewWorkoutRepository creates a new workout repository
func NewWorkoutRepository(db *gorm.DB) WorkoutRepository {
	return &workoutRepository{db: db}
}

// Complete appends a log entry and bumps workouts_completed and
// current_streak in one transaction. Either both writes commit or neither.
// It returns the user row as of the commit, without the password hash.
func (r *workoutRepository) Complete(ctx context.Context, userID uint, workoutType string) (*models.User, error) {
	var user models.User

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entry := &models.CompletedWorkout{UserID: userID, WorkoutType: workoutType}
		if err := tx.Create(entry).Error; err != nil {
			if isForeignKeyError(err) {
				return models.NewNotFoundError("User", userID)
			}
			return models.NewInternalError(err)
		}

		result := tx.Model(&models.User{}).
			Where("id = ?", userID).
			Updates(map[string]interface{}{
				"workouts_completed": gorm.Expr("workouts_completed + ?", 1),
				"current_streak":     gorm.Expr("current_streak + ?", 1),
			})
		if result.Error != nil {
			return models.NewInternalError(result.Error)
		}
		if result.RowsAffected == 0 {
			return models.NewNotFoundError("User", userID)
		}

		if err := tx.
			Select("id, username, email, workouts_completed, achievements_earned, current_streak, created_at, updated_at").
			Where("id = ?", userID).
			Take(&user).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		observability.TransactionRollbacks.WithLabelValues("complete_workout").Inc()
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

// ListByUser returns the user's log newest-first.
func (r *workoutRepository) ListByUser(ctx context.Context, userID uint, limit int) ([]models.CompletedWorkout, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	var workouts []models.CompletedWorkout
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("completed_at DESC, id DESC").
		Limit(limit).
		Find(&workouts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return workouts, nil
}
