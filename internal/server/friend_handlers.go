package server

import (
	"taskbuddy/internal/models"

	"github.com/gofiber/fiber/v2"
)

// SendFriendRequest handles POST /friendships
func (s *Server) SendFriendRequest(c *fiber.Ctx) error {
	var req struct {
		FromUserID uint `json:"from_user_id"`
		ToUserID   uint `json:"to_user_id"`
	}
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	friendship, err := s.friendService.SendFriendRequest(c.UserContext(), req.FromUserID, req.ToUserID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return respond(c, fiber.StatusOK, fiber.Map{
		"message":    "Friend request sent",
		"friendship": friendship,
	})
}

// AcceptFriendRequest handles POST /friendships/:id/accept
func (s *Server) AcceptFriendRequest(c *fiber.Ctx) error {
	return s.respondToFriendRequest(c, true)
}

// RejectFriendRequest handles POST /friendships/:id/reject
func (s *Server) RejectFriendRequest(c *fiber.Ctx) error {
	return s.respondToFriendRequest(c, false)
}

func (s *Server) respondToFriendRequest(c *fiber.Ctx, accept bool) error {
	friendshipID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		UserID uint `json:"user_id"`
	}
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	friendship, err := s.friendService.Respond(c.UserContext(), friendshipID, req.UserID, accept)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respond(c, fiber.StatusOK, fiber.Map{"friendship": friendship})
}

// GetFriends handles GET /users/:userId/friends
func (s *Server) GetFriends(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	friends, err := s.friendService.GetFriends(c.UserContext(), userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	if friends == nil {
		friends = []models.User{}
	}
	return respond(c, fiber.StatusOK, fiber.Map{"friends": friends})
}
