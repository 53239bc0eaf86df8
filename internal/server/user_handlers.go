package server

import (
	"olma/internal/models"
	"olma/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	user, err := s.userRepo.GetByIDWithSkills(c.Context(), userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, user)
}

// UpdateMyProfile handles PUT /api/users/me
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		Username *string `json:"username"`
		Bio      *string `json:"bio"`
		Avatar   *string `json:"avatar"`
		Location *string `json:"location"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userRepo.GetByID(c.Context(), userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	if req.Username != nil && *req.Username != user.Username {
		if err := validation.ValidateUsername(*req.Username); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError(err.Error()))
		}
		taken, err := s.userRepo.GetByUsername(c.Context(), *req.Username)
		if err != nil {
			return models.RespondWithAppError(c, err)
		}
		if taken != nil {
			return models.RespondWithError(c, fiber.StatusConflict,
				models.NewConflictError("Username already taken"))
		}
		user.Username = *req.Username
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.Avatar != nil {
		user.Avatar = *req.Avatar
	}
	if req.Location != nil {
		user.Location = *req.Location
	}

	if err := s.userRepo.Update(c.Context(), user); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, user)
}

// GetUserProfile handles GET /api/users/:id
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userRepo.GetByIDWithSkills(c.Context(), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	avg, count, err := s.ratingRepo.AverageForUser(c.Context(), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return models.RespondWithData(c, fiber.StatusOK, fiber.Map{
		"user":           user,
		"average_rating": avg,
		"rating_count":   count,
	})
}

// GetLeaderboard handles GET /api/users/leaderboard
func (s *Server) GetLeaderboard(c *fiber.Ctx) error {
	page := parsePagination(c, 20)

	users, err := s.userRepo.Leaderboard(c.Context(), page.Limit)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	board := make([]models.UserSummary, 0, len(users))
	for i := range users {
		board = append(board, users[i].Summary())
	}
	return models.RespondWithData(c, fiber.StatusOK, board)
}

// GetUserSkills handles GET /api/users/:id/skills
func (s *Server) GetUserSkills(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	skills, err := s.skillService.ListSkills(c.Context(), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, skills)
}

// GetUserRatings handles GET /api/users/:id/ratings
func (s *Server) GetUserRatings(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePagination(c, 20)

	ratings, err := s.feedbackService.ListRatingsForUser(c.Context(), id, page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, ratings)
}

// GetBanStatus handles GET /api/user/ban-status?user_id=
// Without user_id it reports on the caller. The view is informational:
// eligibility flags never flip a ban by themselves.
func (s *Server) GetBanStatus(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	target := uint(c.QueryInt("user_id", int(userID)))
	if target == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid user ID"))
	}

	status, err := s.feedbackService.BanStatus(c.Context(), target)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, status)
}
