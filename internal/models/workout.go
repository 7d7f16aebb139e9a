package models

import "time"

// CompletedWorkout is one append-only entry in the workout log.
type CompletedWorkout struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	WorkoutType string    `gorm:"not null" json:"workout_type"`
	CompletedAt time.Time `gorm:"not null;autoCreateTime" json:"completed_at"`
}

// TableName specifies the table name for GORM
func (CompletedWorkout) TableName() string {
	return "completed_workouts"
}
