package server

import (
	"strings"

	"taskbuddy/internal/models"

	"github.com/gofiber/fiber/v2"
)

// SearchUsers handles GET /search?q=term&currentUserId=N. When currentUserId
// is absent the caller is taken from the bearer token, if any.
func (s *Server) SearchUsers(c *fiber.Ctx) error {
	currentUserID := uint(0)
	if id := c.QueryInt("currentUserId", 0); id > 0 {
		currentUserID = uint(id)
	} else if id, ok := s.optionalUserID(c); ok {
		currentUserID = id
	}

	users, err := s.searchService.Search(c.UserContext(), c.Query("q"), currentUserID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	if users == nil {
		users = []models.UserSummary{}
	}
	return respond(c, fiber.StatusOK, fiber.Map{"users": users})
}

// GetUserProfile handles GET /users/:username
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	username := strings.TrimSpace(c.Params("username"))
	user, err := s.userService.Profile(c.UserContext(), username)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respond(c, fiber.StatusOK, fiber.Map{"user": user})
}
