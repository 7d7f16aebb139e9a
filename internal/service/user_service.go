// Package service implements the business rules for each component.
package service

import (
	"context"
	"strings"

	"taskbuddy/internal/cache"
	"taskbuddy/internal/models"
	"taskbuddy/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// UserService is the credential store: registration, login and profiles.
type UserService struct {
	userRepo repository.UserRepository
}

// RegisterInput carries the fields of a sign-up request.
type RegisterInput struct {
	Email    string
	Username string
	Password string
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// Register creates a user with a bcrypt hash and zeroed counters.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if strings.TrimSpace(in.Email) == "" || strings.TrimSpace(in.Username) == "" || strings.TrimSpace(in.Password) == "" {
		return nil, models.NewValidationError("Email, username, and password are required")
	}

	existing, err := s.userRepo.GetByUsername(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("Username already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: string(hash),
	}
	// The unique index catches a concurrent registration of the same name.
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate checks a username/password pair and returns the user.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, models.NewValidationError("Username and password are required")
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", username)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid password")
	}
	return user, nil
}

// GetUserByID returns the public view of a user.
func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	if id == 0 {
		return nil, models.NewValidationError("User ID is required")
	}
	return s.userRepo.GetByID(ctx, id)
}

// Profile returns the public profile for username.
func (s *UserService) Profile(ctx context.Context, username string) (*models.User, error) {
	if strings.TrimSpace(username) == "" {
		return nil, models.NewValidationError("Username is required")
	}

	var user models.User
	err := cache.Aside(ctx, cache.UserProfileKey(username), &user, cache.ProfileTTL, func() error {
		found, err := s.userRepo.GetByUsername(ctx, username)
		if err != nil {
			return err
		}
		if found == nil {
			return models.NewNotFoundError("User", username)
		}
		user = *found
		return nil
	})
	if err != nil {
		return nil, err
	}
	user.Password = ""
	return &user, nil
}
