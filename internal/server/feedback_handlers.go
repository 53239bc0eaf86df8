package server

import (
	"olma/internal/models"
	"olma/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SubmitRating handles POST /api/meetings/ratings
func (s *Server) SubmitRating(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		MeetingID   uint   `json:"meeting_id"`
		RatedUserID uint   `json:"rated_user_id"`
		Rating      int    `json:"rating"`
		Comment     string `json:"comment"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.MeetingID == 0 || req.RatedUserID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("meeting_id and rated_user_id are required"))
	}

	rating, err := s.feedbackService.SubmitRating(c.Context(), userID, service.SubmitRatingInput{
		MeetingID:   req.MeetingID,
		RatedUserID: req.RatedUserID,
		Rating:      req.Rating,
		Comment:     req.Comment,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	s.publishUserEvent(req.RatedUserID, EventRatingReceived, fiber.Map{
		"meeting_id": req.MeetingID,
		"rating":     req.Rating,
	})

	return models.RespondWithData(c, fiber.StatusCreated, rating)
}

// GetMeetingRatings handles GET /api/meetings/ratings?meeting_id=&user_id=
func (s *Server) GetMeetingRatings(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	meetingID := uint(c.QueryInt("meeting_id", 0))
	ratedUserID := uint(c.QueryInt("user_id", 0))
	page := parsePagination(c, 20)

	switch {
	case meetingID != 0:
		ratings, err := s.feedbackService.ListRatingsForMeeting(c.Context(), userID, meetingID)
		if err != nil {
			return models.RespondWithAppError(c, err)
		}
		return models.RespondWithData(c, fiber.StatusOK, ratings)
	case ratedUserID != 0:
		ratings, err := s.feedbackService.ListRatingsForUser(c.Context(), ratedUserID, page.Limit, page.Offset)
		if err != nil {
			return models.RespondWithAppError(c, err)
		}
		return models.RespondWithData(c, fiber.StatusOK, ratings)
	default:
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("meeting_id or user_id is required"))
	}
}

// SubmitReport handles POST /api/meetings/reports
func (s *Server) SubmitReport(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		MeetingID      uint   `json:"meeting_id"`
		ReportedUserID uint   `json:"reported_user_id"`
		Category       string `json:"report_category"`
		Reason         string `json:"report_reason"`
		Description    string `json:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.MeetingID == 0 || req.ReportedUserID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("meeting_id and reported_user_id are required"))
	}

	report, err := s.feedbackService.SubmitReport(c.Context(), userID, service.SubmitReportInput{
		MeetingID:      req.MeetingID,
		ReportedUserID: req.ReportedUserID,
		Category:       models.ReportCategory(req.Category),
		Reason:         req.Reason,
		Description:    req.Description,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	// Best-effort heads-up for the moderation queue
	s.publishModerationEvent(EventReportFiled, fiber.Map{
		"report_id":        report.ID,
		"meeting_id":       report.MeetingID,
		"reported_user_id": report.ReportedUserID,
		"category":         report.Category,
	})

	return models.RespondWithData(c, fiber.StatusCreated, report)
}
