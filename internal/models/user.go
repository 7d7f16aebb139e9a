// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents a registered TaskBuddy member and their aggregate workout stats.
// The stat counters are only ever changed by the workout ledger.
type User struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	Username           string    `gorm:"uniqueIndex;not null" json:"username"`
	Email              string    `gorm:"not null" json:"email"`
	Password           string    `gorm:"not null" json:"-"`
	WorkoutsCompleted  int       `gorm:"not null;default:0" json:"workouts_completed"`
	AchievementsEarned int       `gorm:"not null;default:0" json:"achievements_earned"`
	CurrentStreak      int       `gorm:"not null;default:0" json:"current_streak"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Stats is the aggregate counter view of a user.
type Stats struct {
	WorkoutsCompleted  int `json:"workouts_completed"`
	AchievementsEarned int `json:"achievements_earned"`
	CurrentStreak      int `json:"current_streak"`
}

// Stats returns the user's aggregate counters.
func (u *User) Stats() Stats {
	return Stats{
		WorkoutsCompleted:  u.WorkoutsCompleted,
		AchievementsEarned: u.AchievementsEarned,
		CurrentStreak:      u.CurrentStreak,
	}
}

// UserSummary is a search result annotated with the friendship status
// relative to the searching user. FriendshipStatus is nil when no edge exists.
type UserSummary struct {
	ID               uint              `json:"id"`
	Username         string            `json:"username"`
	Email            string            `json:"email"`
	FriendshipStatus *FriendshipStatus `json:"friendshipStatus"`
}
