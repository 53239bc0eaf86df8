package server

import (
	"olma/internal/models"

	"github.com/gofiber/fiber/v2"
)

// CreateConversation handles POST /api/conversations
func (s *Server) CreateConversation(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		UserID uint `json:"user_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.UserID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("user_id is required"))
	}

	conv, err := s.convService.StartConversation(c.Context(), userID, req.UserID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusCreated, conv)
}

// GetConversations handles GET /api/conversations
func (s *Server) GetConversations(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	convs, err := s.convService.ListConversations(c.Context(), userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, convs)
}

// SendMessage handles POST /api/conversations/:id/messages
func (s *Server) SendMessage(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	convID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	banned, err := s.isBannedByUserID(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	if banned {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("Banned users cannot send messages"))
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	msg, err := s.convService.SendMessage(c.Context(), userID, convID, req.Content)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	// Let the counterparty's open sockets know
	conv, cerr := s.convRepo.GetByID(c.Context(), convID)
	if cerr == nil {
		for _, p := range conv.Participants {
			if p.ID != userID {
				s.publishUserEvent(p.ID, EventMessageReceived, fiber.Map{
					"conversation_id": convID,
					"message":         msg,
				})
			}
		}
	}

	return models.RespondWithData(c, fiber.StatusCreated, msg)
}

// GetMessages handles GET /api/conversations/:id/messages
func (s *Server) GetMessages(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	convID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePagination(c, 50)

	msgs, err := s.convService.GetMessages(c.Context(), userID, convID, page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, msgs)
}
