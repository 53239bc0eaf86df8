package server

import (
	"time"

	"olma/internal/models"
	"olma/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateMeeting handles POST /api/meetings
func (s *Server) CreateMeeting(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	banned, err := s.isBannedByUserID(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	if banned {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("Banned users cannot create meeting offers"))
	}

	var req struct {
		InviteeID       uint      `json:"invitee_id"`
		SkillID         uint      `json:"skill_id"`
		ConversationID  uint      `json:"conversation_id"`
		MeetingLocation string    `json:"meeting_location"`
		MeetingDate     time.Time `json:"meeting_date"`
		MeetingDuration int       `json:"meeting_duration"`
		InviterMessage  string    `json:"inviter_message"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	offer, err := s.offerService.CreateOffer(c.Context(), userID, service.CreateOfferInput{
		InviteeID:       req.InviteeID,
		SkillID:         req.SkillID,
		ConversationID:  req.ConversationID,
		MeetingLocation: req.MeetingLocation,
		MeetingDate:     req.MeetingDate,
		MeetingDuration: req.MeetingDuration,
		InviterMessage:  req.InviterMessage,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	s.publishUserEvent(offer.InviteeID, EventOfferReceived, offer.View())

	return models.RespondWithData(c, fiber.StatusCreated, offer.View())
}

// GetMeeting handles GET /api/meetings/:id
func (s *Server) GetMeeting(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	offer, err := s.offerService.GetOffer(c.Context(), userID, id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, offer.View())
}

// UpdateMeetingStatus handles PATCH /api/meetings/:id
func (s *Server) UpdateMeetingStatus(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Status          string `json:"status"`
		InviteeResponse string `json:"invitee_response"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Status == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("status is required"))
	}

	result, err := s.offerService.Transition(c.Context(), userID, id,
		models.OfferStatus(req.Status), req.InviteeResponse)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	s.publishUserEvent(result.Counterparty, transitionEvent(string(result.To)), result.Offer.View())

	return models.RespondWithData(c, fiber.StatusOK, result.Offer.View())
}

// DeleteMeeting handles DELETE /api/meetings/:id
func (s *Server) DeleteMeeting(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.offerService.DeleteOffer(c.Context(), userID, id); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return models.RespondWithMessage(c, fiber.StatusOK, "Meeting offer deleted")
}
