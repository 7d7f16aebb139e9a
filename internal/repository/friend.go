package repository

import (
	"context"
	"errors"

	"taskbuddy/internal/models"

	"gorm.io/gorm"
)

// FriendRepository defines the interface for friend data operations
type FriendRepository interface {
	CreateRequest(ctx context.Context, requesterID, addresseeID uint) (*models.Friendship, error)
	GetByID(ctx context.Context, id uint) (*models.Friendship, error)
	GetFriendshipBetweenUsers(ctx context.Context, userID1, userID2 uint) (*models.Friendship, error)
	GetFriends(ctx context.Context, userID uint) ([]models.User, error)
	TransitionStatus(ctx context.Context, friendshipID uint, from, to models.FriendshipStatus) error
}

// friendRepository implements FriendRepository
type friendRepository struct {
	db *gorm.DB
}

// NewFriendRepository creates a new friend repository
func NewFriendRepository(db *gorm.DB) FriendRepository {
	return &friendRepository{db: db}
}

// CreateRequest inserts a pending edge unless one already exists for the
// unordered pair. The check and the insert share a transaction.
func (r *friendRepository) CreateRequest(ctx context.Context, requesterID, addresseeID uint) (*models.Friendship, error) {
	friendship := &models.Friendship{
		RequesterID: requesterID,
		AddresseeID: addresseeID,
		Status:      models.FriendshipStatusPending,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := findBetween(tx, requesterID, addresseeID)
		if err != nil {
			return err
		}
		if existing != nil {
			return models.NewConflictError("Friendship already exists")
		}
		if err := tx.Create(friendship).Error; err != nil {
			if isUniqueConstraintError(err) {
				return models.NewConflictError("Friendship already exists")
			}
			if isForeignKeyError(err) {
				return models.NewNotFoundError("User", addresseeID)
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return friendship, nil
}

func (r *friendRepository) GetByID(ctx context.Context, id uint) (*models.Friendship, error) {
	var friendship models.Friendship
	if err := r.db.WithContext(ctx).First(&friendship, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Friendship", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &friendship, nil
}

// GetFriendshipBetweenUsers returns the edge between two users in either
// direction, or nil, nil if there is none.
func (r *friendRepository) GetFriendshipBetweenUsers(ctx context.Context, userID1, userID2 uint) (*models.Friendship, error) {
	return findBetween(r.db.WithContext(ctx), userID1, userID2)
}

func findBetween(db *gorm.DB, userID1, userID2 uint) (*models.Friendship, error) {
	var friendship models.Friendship
	if err := db.
		Where("(requester_id = ? AND addressee_id = ?) OR (requester_id = ? AND addressee_id = ?)",
			userID1, userID2, userID2, userID1).
		First(&friendship).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // No friendship exists
		}
		return nil, models.NewInternalError(err)
	}
	return &friendship, nil
}

func (r *friendRepository) GetFriends(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User

	// The other side of every accepted edge that involves userID.
	if err := r.db.WithContext(ctx).
		Table("users").
		Joins("JOIN friendships f ON (users.id = f.requester_id OR users.id = f.addressee_id)").
		Where("f.status = ? AND (f.requester_id = ? OR f.addressee_id = ?) AND users.id != ?",
			models.FriendshipStatusAccepted, userID, userID, userID).
		Order("users.username ASC").
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// TransitionStatus moves an edge from one status to another. It reports a
// conflict if the edge is no longer in the from status.
func (r *friendRepository) TransitionStatus(ctx context.Context, friendshipID uint, from, to models.FriendshipStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.Friendship{}).
		Where("id = ? AND status = ?", friendshipID, from).
		Update("status", to)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewConflictError("Friendship request is no longer " + string(from))
	}
	return nil
}
