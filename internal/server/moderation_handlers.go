package server

import (
	"time"

	"olma/internal/models"
	"olma/internal/repository"

	"github.com/gofiber/fiber/v2"
)

// GetAdminReports handles GET /api/admin/reports?status=&meeting_id=&user_id=
func (s *Server) GetAdminReports(c *fiber.Ctx) error {
	page := parsePagination(c, 50)

	reports, err := s.moderationService.ListReports(c.Context(), repository.ReportFilter{
		Status:         c.Query("status"),
		MeetingID:      uint(c.QueryInt("meeting_id", 0)),
		ReportedUserID: uint(c.QueryInt("user_id", 0)),
	}, page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, reports)
}

// ResolveReport handles POST /api/admin/reports/:id/resolve
func (s *Server) ResolveReport(c *fiber.Ctx) error {
	adminID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Action string `json:"action"`
		Note   string `json:"note"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	report, err := s.moderationService.ResolveReport(c.Context(), adminID, id, req.Action, req.Note)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, report)
}

// BanUser handles POST /api/admin/users/:id/ban
func (s *Server) BanUser(c *fiber.Ctx) error {
	adminID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Reason    string     `json:"reason"`
		ExpiresAt *time.Time `json:"expires_at"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.moderationService.BanUser(c.Context(), adminID, id, req.Reason, req.ExpiresAt)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, user)
}

// UnbanUser handles POST /api/admin/users/:id/unban
func (s *Server) UnbanUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.moderationService.UnbanUser(c.Context(), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, user)
}
