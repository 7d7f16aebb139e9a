package service

import (
	"context"

	"taskbuddy/internal/events"
	"taskbuddy/internal/models"
	"taskbuddy/internal/observability"
	"taskbuddy/internal/repository"
)

// FriendService provides friend-request and friendship business logic.
type FriendService struct {
	friendRepo repository.FriendRepository
	publisher  events.Publisher
}

// NewFriendService returns a new FriendService.
func NewFriendService(friendRepo repository.FriendRepository, publisher events.Publisher) *FriendService {
	if publisher == nil {
		publisher = events.Noop()
	}
	return &FriendService{
		friendRepo: friendRepo,
		publisher:  publisher,
	}
}

// SendFriendRequest creates a pending request unless the two users already
// share an edge in either direction.
func (s *FriendService) SendFriendRequest(ctx context.Context, requesterID, addresseeID uint) (*models.Friendship, error) {
	if requesterID == 0 || addresseeID == 0 {
		return nil, models.NewValidationError("from_user_id and to_user_id are required")
	}

	friendship, err := s.friendRepo.CreateRequest(ctx, requesterID, addresseeID)
	if err != nil {
		if models.HasCode(err, models.CodeConflict) {
			observability.FriendRequests.WithLabelValues("conflict").Inc()
		}
		return nil, err
	}

	observability.FriendRequests.WithLabelValues("created").Inc()
	s.publisher.Publish(ctx, events.New(events.FriendshipRequested, requesterID, map[string]interface{}{
		"friendship_id": friendship.ID,
		"addressee_id":  addresseeID,
	}))
	return friendship, nil
}

// Exists returns the edge between a and b in either direction, or nil.
func (s *FriendService) Exists(ctx context.Context, a, b uint) (*models.Friendship, error) {
	return s.friendRepo.GetFriendshipBetweenUsers(ctx, a, b)
}

// StatusFor returns the status of the edge between userID and otherID, or nil.
func (s *FriendService) StatusFor(ctx context.Context, userID, otherID uint) (*models.FriendshipStatus, error) {
	friendship, err := s.Exists(ctx, userID, otherID)
	if err != nil || friendship == nil {
		return nil, err
	}
	status := friendship.Status
	return &status, nil
}

// Respond lets the addressee accept or reject a pending request.
func (s *FriendService) Respond(ctx context.Context, friendshipID, userID uint, accept bool) (*models.Friendship, error) {
	if friendshipID == 0 || userID == 0 {
		return nil, models.NewValidationError("Friendship ID and user_id are required")
	}

	friendship, err := s.friendRepo.GetByID(ctx, friendshipID)
	if err != nil {
		return nil, err
	}
	if friendship.AddresseeID != userID {
		return nil, models.NewUnauthorizedError("You can only respond to friend requests sent to you")
	}
	if friendship.Status != models.FriendshipStatusPending {
		return nil, models.NewConflictError("Friend request is not pending")
	}

	next := models.FriendshipStatusRejected
	if accept {
		next = models.FriendshipStatusAccepted
	}
	if err := s.friendRepo.TransitionStatus(ctx, friendshipID, models.FriendshipStatusPending, next); err != nil {
		return nil, err
	}

	updated, err := s.friendRepo.GetByID(ctx, friendshipID)
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(ctx, events.New(events.FriendshipResponded, userID, map[string]interface{}{
		"friendship_id": updated.ID,
		"requester_id":  updated.RequesterID,
		"status":        updated.Status,
	}))
	return updated, nil
}

// GetFriends returns the users with an accepted edge to userID.
func (s *FriendService) GetFriends(ctx context.Context, userID uint) ([]models.User, error) {
	if userID == 0 {
		return nil, models.NewValidationError("User ID is required")
	}
	return s.friendRepo.GetFriends(ctx, userID)
}
