package server

import (
	"olma/internal/models"
	"olma/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type skillRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	HourlyRate  decimal.Decimal `json:"hourly_rate"`
}

func (r skillRequest) input() service.SkillInput {
	return service.SkillInput{
		Name:        r.Name,
		Description: r.Description,
		Category:    r.Category,
		HourlyRate:  r.HourlyRate,
	}
}

// CreateSkill handles POST /api/skills
func (s *Server) CreateSkill(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req skillRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	skill, err := s.skillService.CreateSkill(c.Context(), userID, req.input())
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusCreated, skill)
}

// GetSkill handles GET /api/skills/:id
func (s *Server) GetSkill(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	skill, err := s.skillService.GetSkill(c.Context(), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, skill)
}

// GetMySkills handles GET /api/skills/me
func (s *Server) GetMySkills(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	skills, err := s.skillService.ListSkills(c.Context(), userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, skills)
}

// UpdateSkill handles PUT /api/skills/:id
func (s *Server) UpdateSkill(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req skillRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	skill, err := s.skillService.UpdateSkill(c.Context(), userID, id, req.input())
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, skill)
}

// DeleteSkill handles DELETE /api/skills/:id
func (s *Server) DeleteSkill(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.skillService.DeleteSkill(c.Context(), userID, id); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return models.RespondWithMessage(c, fiber.StatusOK, "Skill deleted")
}

// SearchSkills handles GET /api/skills/search?q=&category=
func (s *Server) SearchSkills(c *fiber.Ctx) error {
	page := parsePagination(c, 20)

	skills, err := s.skillService.SearchSkills(c.Context(),
		c.Query("q"), c.Query("category"), page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, skills)
}
