package server

import (
	"taskbuddy/internal/models"

	"github.com/gofiber/fiber/v2"
)

// CompleteWorkout handles POST /complete-workout
func (s *Server) CompleteWorkout(c *fiber.Ctx) error {
	var req struct {
		UserID      uint   `json:"userId"`
		WorkoutType string `json:"workoutType"`
	}
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	stats, err := s.workoutService.CompleteWorkout(c.UserContext(), req.UserID, req.WorkoutType)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return respond(c, fiber.StatusOK, fiber.Map{
		"message":            "Workout completed",
		"workouts_completed": stats.WorkoutsCompleted,
		"current_streak":     stats.CurrentStreak,
	})
}

// GetUserStats handles GET /user-stats/:userId
func (s *Server) GetUserStats(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	stats, err := s.workoutService.GetStats(c.UserContext(), userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return respond(c, fiber.StatusOK, fiber.Map{
		"workouts_completed":  stats.WorkoutsCompleted,
		"achievements_earned": stats.AchievementsEarned,
		"current_streak":      stats.CurrentStreak,
	})
}

// GetUserWorkouts handles GET /user-workouts/:userId?limit=N
func (s *Server) GetUserWorkouts(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	workouts, err := s.workoutService.History(c.UserContext(), userID, c.QueryInt("limit", 0))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	if workouts == nil {
		workouts = []models.CompletedWorkout{}
	}
	return respond(c, fiber.StatusOK, fiber.Map{"workouts": workouts})
}

// GetWorkoutCatalog handles GET /workouts
func (s *Server) GetWorkoutCatalog(c *fiber.Ctx) error {
	return respond(c, fiber.StatusOK, fiber.Map{"disciplines": s.catalog.Disciplines})
}

// GetDiscipline handles GET /workouts/:discipline
func (s *Server) GetDiscipline(c *fiber.Ctx) error {
	name := c.Params("discipline")
	d, ok := s.catalog.Discipline(name)
	if !ok {
		return models.RespondWithAppError(c, models.NewNotFoundError("Discipline", name))
	}
	return respond(c, fiber.StatusOK, fiber.Map{"discipline": d})
}

// GetCategory handles GET /workouts/:discipline/:category
func (s *Server) GetCategory(c *fiber.Ctx) error {
	name := c.Params("discipline")
	d, ok := s.catalog.Discipline(name)
	if !ok {
		return models.RespondWithAppError(c, models.NewNotFoundError("Discipline", name))
	}
	categoryName := c.Params("category")
	category, ok := d.Category(categoryName)
	if !ok {
		return models.RespondWithAppError(c, models.NewNotFoundError("Category", categoryName))
	}
	return respond(c, fiber.StatusOK, fiber.Map{"discipline": d.Name, "category": category})
}
