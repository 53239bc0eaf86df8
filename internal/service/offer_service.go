// Package service implements business rules on top of the repository layer.
package service

import (
	"context"
	"time"

	"olma/internal/cache"
	"olma/internal/middleware"
	"olma/internal/models"
	"olma/internal/observability"
	"olma/internal/repository"

	"github.com/shopspring/decimal"
)

// XP awards for a completed meeting. Teaching pays more than attending.
const (
	XPTeachBonus  = 50
	XPLearnReward = 20
)

// CreateOfferInput carries the fields for a new meeting offer.
type CreateOfferInput struct {
	InviteeID       uint
	SkillID         uint
	ConversationID  uint
	MeetingLocation string
	MeetingDate     time.Time
	MeetingDuration int
	InviterMessage  string
}

// TransitionResult reports what a successful transition changed.
type TransitionResult struct {
	Offer        *models.MeetingOffer
	From         models.OfferStatus
	To           models.OfferStatus
	XPAwarded    bool
	Counterparty uint
}

// SweepResult reports what an expiration sweep changed.
type SweepResult struct {
	ExpiredCount  int                `json:"expired_count"`
	UpdatedOffers []models.OfferView `json:"updated_offers"`
}

// OfferStats is the aggregate view of one user's offers.
type OfferStats struct {
	Counts      map[models.OfferStatus]int `json:"counts"`
	TotalEarned decimal.Decimal            `json:"total_earned"`
	TotalSpent  decimal.Decimal            `json:"total_spent"`
	TotalHours  decimal.Decimal            `json:"total_hours"`
}

// OfferService provides meeting offer lifecycle business logic.
type OfferService struct {
	offerRepo repository.OfferRepository
	convRepo  repository.ConversationRepository
	skillRepo repository.SkillRepository
	userRepo  repository.UserRepository
}

// NewOfferService returns a new OfferService.
func NewOfferService(
	offerRepo repository.OfferRepository,
	convRepo repository.ConversationRepository,
	skillRepo repository.SkillRepository,
	userRepo repository.UserRepository,
) *OfferService {
	return &OfferService{
		offerRepo: offerRepo,
		convRepo:  convRepo,
		skillRepo: skillRepo,
		userRepo:  userRepo,
	}
}

// CreateOffer validates and persists a new pending offer.
func (s *OfferService) CreateOffer(ctx context.Context, inviterID uint, input CreateOfferInput) (*models.MeetingOffer, error) {
	if input.InviteeID == 0 || input.SkillID == 0 || input.ConversationID == 0 {
		return nil, models.NewValidationError("invitee_id, skill_id and conversation_id are required")
	}
	if input.InviteeID == inviterID {
		return nil, models.NewValidationError("Cannot send a meeting offer to yourself")
	}
	if input.MeetingLocation == "" {
		return nil, models.NewValidationError("meeting_location is required")
	}
	if input.MeetingDate.IsZero() {
		return nil, models.NewValidationError("meeting_date is required")
	}
	if !input.MeetingDate.After(time.Now()) {
		return nil, models.NewValidationError("meeting_date must be in the future")
	}
	if input.MeetingDuration < 0 {
		return nil, models.NewValidationError("meeting_duration must be positive")
	}
	if input.MeetingDuration == 0 {
		input.MeetingDuration = models.DefaultMeetingDuration
	}

	if _, err := s.skillRepo.GetByID(ctx, input.SkillID); err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByID(ctx, input.InviteeID); err != nil {
		return nil, err
	}

	// The offer must originate from an existing conversation both parties
	// belong to. A missing conversation is not-found, not a validation failure.
	if _, err := s.convRepo.GetByID(ctx, input.ConversationID); err != nil {
		return nil, err
	}
	for _, uid := range []uint{inviterID, input.InviteeID} {
		ok, err := s.convRepo.IsParticipant(ctx, input.ConversationID, uid)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, models.NewValidationError("Both participants must belong to the conversation")
		}
	}

	dup, err := s.offerRepo.HasPendingBetween(ctx, inviterID, input.InviteeID, input.SkillID)
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, models.NewConflictError("A pending offer for this skill already exists")
	}

	offer := &models.MeetingOffer{
		InviterID:       inviterID,
		InviteeID:       input.InviteeID,
		SkillID:         input.SkillID,
		ConversationID:  input.ConversationID,
		MeetingLocation: input.MeetingLocation,
		MeetingDate:     input.MeetingDate,
		MeetingDuration: input.MeetingDuration,
		Status:          models.OfferStatusPending,
		InviterMessage:  input.InviterMessage,
	}
	if err := s.offerRepo.Create(ctx, offer); err != nil {
		return nil, err
	}

	cache.InvalidateOfferStats(ctx, inviterID, input.InviteeID)
	return s.offerRepo.GetByID(ctx, offer.ID)
}

// GetOffer fetches one offer; only participants may see it.
func (s *OfferService) GetOffer(ctx context.Context, userID, offerID uint) (*models.MeetingOffer, error) {
	offer, err := s.offerRepo.GetByID(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if !offer.IsParticipant(userID) {
		return nil, models.NewForbiddenError("You are not a participant of this meeting")
	}
	return offer, nil
}

// ListOffers returns the caller's offers newest-first. The caller is
// expected to run a best-effort sweep beforehand so stale pending offers
// read as denied.
func (s *OfferService) ListOffers(ctx context.Context, userID uint, filter repository.OfferFilter) ([]models.MeetingOffer, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, models.NewValidationError("Unknown offer status")
	}
	return s.offerRepo.ListForUser(ctx, userID, filter)
}

// Transition applies the offer state machine for one caller-requested move.
// Invariants enforced here, in order: participant gate, status known,
// ordering legal, actor allowed. Persistence is a conditional update so a
// concurrent writer makes this call lose with CONFLICT instead of silently
// double-applying.
func (s *OfferService) Transition(ctx context.Context, userID, offerID uint, target models.OfferStatus, inviteeResponse string) (*TransitionResult, error) {
	offer, err := s.offerRepo.GetByID(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if !offer.IsParticipant(userID) {
		return nil, models.NewForbiddenError("You are not a participant of this meeting")
	}
	if !target.Valid() || target == models.OfferStatusPending {
		return nil, models.NewValidationError("Unknown target status")
	}

	from := offer.Status
	if offer.Expired(time.Now()) && target != models.OfferStatusDenied && target != models.OfferStatusCancelled {
		// Stale pending offers read as denied; reconcile this one on the way out.
		if _, err := s.offerRepo.UpdateStatusIf(ctx, offer.ID, from, models.OfferStatusDenied, ""); err == nil {
			observability.OffersExpired.Inc()
		}
		return nil, models.NewValidationError("Offer has expired")
	}
	if !from.CanTransitionTo(target) {
		return nil, models.NewValidationError("Cannot transition offer from " + string(from) + " to " + string(target))
	}

	switch target {
	case models.OfferStatusAccepted, models.OfferStatusDenied:
		if offer.InviteeID != userID {
			return nil, models.NewForbiddenError("Only the invitee may accept or deny an offer")
		}
	default:
		if inviteeResponse != "" {
			return nil, models.NewValidationError("invitee_response is only accepted with accept or deny")
		}
	}

	ok, err := s.offerRepo.UpdateStatusIf(ctx, offer.ID, from, target, inviteeResponse)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.NewConflictError("Offer was modified concurrently")
	}
	observability.OfferTransitions.WithLabelValues(string(target)).Inc()
	cache.InvalidateOfferStats(ctx, offer.InviterID, offer.InviteeID)

	result := &TransitionResult{
		From:         from,
		To:           target,
		Counterparty: offer.OtherParticipant(userID),
	}
	if target == models.OfferStatusCompleted {
		// Best-effort XP awards; the transition stands even if these fail.
		if err := s.userRepo.AddXP(ctx, offer.InviterID, XPTeachBonus); err != nil {
			middleware.Logger.WarnContext(ctx, "xp award failed", "user_id", offer.InviterID, "error", err)
		}
		if err := s.userRepo.AddXP(ctx, offer.InviteeID, XPLearnReward); err != nil {
			middleware.Logger.WarnContext(ctx, "xp award failed", "user_id", offer.InviteeID, "error", err)
		}
		result.XPAwarded = true
	}

	updated, err := s.offerRepo.GetByID(ctx, offer.ID)
	if err != nil {
		return nil, err
	}
	result.Offer = updated
	return result, nil
}

// DeleteOffer removes an offer entirely. Inviter only.
func (s *OfferService) DeleteOffer(ctx context.Context, userID, offerID uint) error {
	offer, err := s.offerRepo.GetByID(ctx, offerID)
	if err != nil {
		return err
	}
	if offer.InviterID != userID {
		return models.NewForbiddenError("Only the inviter may delete an offer")
	}
	if err := s.offerRepo.Delete(ctx, offerID); err != nil {
		return err
	}
	cache.InvalidateOfferStats(ctx, offer.InviterID, offer.InviteeID)
	return nil
}

// ReconcileExpired flips every overdue pending offer to denied and returns
// what changed. Idempotent: a second run right after finds nothing.
func (s *OfferService) ReconcileExpired(ctx context.Context, trigger string) (*SweepResult, error) {
	expired, err := s.offerRepo.ExpireDue(ctx, time.Now())
	if err != nil {
		return nil, err
	}

	observability.SweepRuns.WithLabelValues(trigger).Inc()
	result := &SweepResult{ExpiredCount: len(expired), UpdatedOffers: []models.OfferView{}}
	for i := range expired {
		observability.OffersExpired.Inc()
		cache.InvalidateOfferStats(ctx, expired[i].InviterID, expired[i].InviteeID)
		result.UpdatedOffers = append(result.UpdatedOffers, expired[i].View())
	}
	return result, nil
}

// PreviewExpired reports which pending offers would be denied by a sweep
// without mutating anything.
func (s *OfferService) PreviewExpired(ctx context.Context, userID uint) ([]models.MeetingOffer, error) {
	offers, err := s.offerRepo.ListForUser(ctx, userID, repository.OfferFilter{Status: models.OfferStatusPending})
	if err != nil {
		return nil, err
	}
	now := time.Now()
	var due []models.MeetingOffer
	for _, o := range offers {
		if o.Expired(now) {
			due = append(due, o)
		}
	}
	return due, nil
}

// Stats folds the caller's offers into per-status counts and money totals.
// Money math uses decimals: hourlyRate x minutes/60, rounded to cents.
func (s *OfferService) Stats(ctx context.Context, userID uint) (*OfferStats, error) {
	var stats OfferStats
	key := cache.OfferStatsKey(userID)

	err := cache.Aside(ctx, key, &stats, cache.OfferStatsTTL, func() error {
		offers, err := s.offerRepo.ListForUser(ctx, userID, repository.OfferFilter{})
		if err != nil {
			return err
		}

		stats = OfferStats{
			Counts:      make(map[models.OfferStatus]int),
			TotalEarned: decimal.Zero,
			TotalSpent:  decimal.Zero,
			TotalHours:  decimal.Zero,
		}
		sixty := decimal.NewFromInt(60)
		for i := range offers {
			o := &offers[i]
			stats.Counts[o.Status]++
			if o.Status != models.OfferStatusCompleted {
				continue
			}
			hours := decimal.NewFromInt(int64(o.MeetingDuration)).Div(sixty)
			amount := o.Skill.EffectiveHourlyRate().Mul(hours)
			if o.InviterID == userID {
				stats.TotalEarned = stats.TotalEarned.Add(amount)
			} else {
				stats.TotalSpent = stats.TotalSpent.Add(amount)
			}
			stats.TotalHours = stats.TotalHours.Add(hours)
		}
		stats.TotalEarned = stats.TotalEarned.Round(2)
		stats.TotalSpent = stats.TotalSpent.Round(2)
		stats.TotalHours = stats.TotalHours.Round(2)
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &stats, nil
}
