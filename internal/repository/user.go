// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"taskbuddy/internal/cache"
	"taskbuddy/internal/models"

	"gorm.io/gorm"
)

// SearchLimit caps the number of users returned by Search.
const SearchLimit = 10

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetStats(ctx context.Context, id uint) (*models.Stats, error)
	Search(ctx context.Context, term string, currentUserID uint) ([]models.UserSummary, error)
	Count(ctx context.Context) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Username already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

// GetByID returns the public view of a user. The cached copy never carries
// the password hash.
func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	key := cache.UserKey(id)

	err := cache.Aside(ctx, key, &user, cache.UserTTL, func() error {
		if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	user.Password = ""
	return &user, nil
}

// GetByUsername returns nil, nil when no user has exactly this username.
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetStats(ctx context.Context, id uint) (*models.Stats, error) {
	var stats models.Stats
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("workouts_completed, achievements_earned, current_streak").
		Where("id = ?", id).
		Take(&stats).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &stats, nil
}

type userSearchRow struct {
	ID               uint
	Username         string
	Email            string
	FriendshipStatus *string
}

// Search matches usernames case-insensitively by substring and annotates each
// hit with the friendship status relative to currentUserID in the same query.
func (r *userRepository) Search(ctx context.Context, term string, currentUserID uint) ([]models.UserSummary, error) {
	pattern := "%" + strings.ToLower(escapeLike(term)) + "%"

	var rows []userSearchRow
	err := r.db.WithContext(ctx).
		Table("users").
		Select("users.id, users.username, users.email, f.status AS friendship_status").
		Joins(`LEFT JOIN friendships f ON ((f.requester_id = users.id AND f.addressee_id = ?) OR (f.addressee_id = users.id AND f.requester_id = ?))`,
			currentUserID, currentUserID).
		Where(`LOWER(users.username) LIKE ? ESCAPE '\'`, pattern).
		Order("users.id ASC").
		Limit(SearchLimit).
		Scan(&rows).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	results := make([]models.UserSummary, 0, len(rows))
	for _, row := range rows {
		summary := models.UserSummary{ID: row.ID, Username: row.Username, Email: row.Email}
		if row.FriendshipStatus != nil {
			status := models.FriendshipStatus(*row.FriendshipStatus)
			summary.FriendshipStatus = &status
		}
		results = append(results, summary)
	}
	return results, nil
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
