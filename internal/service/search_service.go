package service

import (
	"context"
	"strings"

	"taskbuddy/internal/models"
	"taskbuddy/internal/repository"
)

// SearchService finds users by username for the friend search screen.
type SearchService struct {
	userRepo repository.UserRepository
}

func NewSearchService(userRepo repository.UserRepository) *SearchService {
	return &SearchService{userRepo: userRepo}
}

// Search returns at most repository.SearchLimit users whose username contains
// term, each annotated with its friendship status relative to currentUserID.
// A zero currentUserID yields nil statuses.
func (s *SearchService) Search(ctx context.Context, term string, currentUserID uint) ([]models.UserSummary, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	return s.userRepo.Search(ctx, term, currentUserID)
}
