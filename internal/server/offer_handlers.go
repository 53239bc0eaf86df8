package server

import (
	"olma/internal/middleware"
	"olma/internal/models"
	"olma/internal/repository"
	"olma/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetOffers handles GET /api/offers?status=&role=
// A best-effort sweep runs first so stale pending offers read as denied.
func (s *Server) GetOffers(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	if result, err := s.offerService.ReconcileExpired(c.Context(), "read"); err != nil {
		middleware.Logger.WarnContext(c.UserContext(), "pre-read sweep failed", "error", err)
	} else {
		s.notifyExpired(result)
	}

	page := parsePagination(c, 50)
	offers, err := s.offerService.ListOffers(c.Context(), userID, repository.OfferFilter{
		Status: models.OfferStatus(c.Query("status")),
		Role:   c.Query("role"),
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	views := make([]models.OfferView, 0, len(offers))
	for i := range offers {
		views = append(views, offers[i].View())
	}
	return models.RespondWithData(c, fiber.StatusOK, views)
}

// GetOfferStats handles GET /api/offers/stats
func (s *Server) GetOfferStats(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	stats, err := s.offerService.Stats(c.Context(), userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, stats)
}

// ExpireOffers handles POST /api/offers/expire: an explicit, idempotent
// sweep. Running it twice in a row changes nothing the second time.
func (s *Server) ExpireOffers(c *fiber.Ctx) error {
	result, err := s.offerService.ReconcileExpired(c.Context(), "endpoint")
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	s.notifyExpired(result)

	return models.RespondWithData(c, fiber.StatusOK, result)
}

// PreviewExpiredOffers handles GET /api/offers/expire: a read-only view of
// the caller's pending offers a sweep would deny. No mutation.
func (s *Server) PreviewExpiredOffers(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	due, err := s.offerService.PreviewExpired(c.Context(), userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	views := make([]models.OfferView, 0, len(due))
	for i := range due {
		views = append(views, due[i].View())
	}
	return models.RespondWithData(c, fiber.StatusOK, fiber.Map{
		"would_expire_count": len(views),
		"offers":             views,
	})
}

// notifyExpired tells both participants of each freshly expired offer.
func (s *Server) notifyExpired(result *service.SweepResult) {
	for i := range result.UpdatedOffers {
		view := result.UpdatedOffers[i]
		s.publishUserEvent(view.Inviter.ID, EventOfferExpired, view)
		s.publishUserEvent(view.Invitee.ID, EventOfferExpired, view)
	}
}
