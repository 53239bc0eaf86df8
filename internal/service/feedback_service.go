package service

import (
	"context"

	"olma/internal/cache"
	"olma/internal/models"
	"olma/internal/observability"
	"olma/internal/repository"
)

// SubmitRatingInput carries the fields for a post-meeting rating.
type SubmitRatingInput struct {
	MeetingID   uint
	RatedUserID uint
	Rating      int
	Comment     string
}

// SubmitReportInput carries the fields for a post-meeting report.
type SubmitReportInput struct {
	MeetingID      uint
	ReportedUserID uint
	Category       models.ReportCategory
	Reason         string
	Description    string
}

// FeedbackService provides the post-completion workflow: ratings, reports
// and the derived ban-status view.
type FeedbackService struct {
	offerRepo  repository.OfferRepository
	ratingRepo repository.RatingRepository
	reportRepo repository.ReportRepository
	userRepo   repository.UserRepository
}

// NewFeedbackService returns a new FeedbackService.
func NewFeedbackService(
	offerRepo repository.OfferRepository,
	ratingRepo repository.RatingRepository,
	reportRepo repository.ReportRepository,
	userRepo repository.UserRepository,
) *FeedbackService {
	return &FeedbackService{
		offerRepo:  offerRepo,
		ratingRepo: ratingRepo,
		reportRepo: reportRepo,
		userRepo:   userRepo,
	}
}

// completedMeetingFor loads the meeting and checks the shared feedback
// guards: the meeting exists, is completed, the actor took part in it, and
// the subject is the actor's counterparty.
func (s *FeedbackService) completedMeetingFor(ctx context.Context, meetingID, actorID, subjectID uint) (*models.MeetingOffer, error) {
	offer, err := s.offerRepo.GetByID(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if !offer.IsParticipant(actorID) {
		return nil, models.NewForbiddenError("You are not a participant of this meeting")
	}
	if offer.Status != models.OfferStatusCompleted {
		return nil, models.NewValidationError("Meeting is not completed")
	}
	if subjectID != offer.OtherParticipant(actorID) {
		return nil, models.NewValidationError("Feedback must be about the other participant of the meeting")
	}
	return offer, nil
}

// SubmitRating records one participant's rating of the other for a
// completed meeting. Duplicate submissions fail validation.
func (s *FeedbackService) SubmitRating(ctx context.Context, raterID uint, input SubmitRatingInput) (*models.MeetingRating, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, models.NewValidationError("rating must be between 1 and 5")
	}
	if input.RatedUserID == raterID {
		return nil, models.NewValidationError("Cannot rate yourself")
	}

	if _, err := s.completedMeetingFor(ctx, input.MeetingID, raterID, input.RatedUserID); err != nil {
		return nil, err
	}

	rating := &models.MeetingRating{
		MeetingID:   input.MeetingID,
		RaterID:     raterID,
		RatedUserID: input.RatedUserID,
		Rating:      input.Rating,
		Comment:     input.Comment,
	}
	if err := s.ratingRepo.Create(ctx, rating); err != nil {
		return nil, err
	}
	return rating, nil
}

// ListRatingsForMeeting returns the ratings submitted for one meeting.
// Participants only.
func (s *FeedbackService) ListRatingsForMeeting(ctx context.Context, userID, meetingID uint) ([]models.MeetingRating, error) {
	offer, err := s.offerRepo.GetByID(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if !offer.IsParticipant(userID) {
		return nil, models.NewForbiddenError("You are not a participant of this meeting")
	}
	return s.ratingRepo.ListForMeeting(ctx, meetingID)
}

// ListRatingsForUser returns the ratings a user has received, newest first.
func (s *FeedbackService) ListRatingsForUser(ctx context.Context, ratedUserID uint, limit, offset int) ([]models.MeetingRating, error) {
	if _, err := s.userRepo.GetByID(ctx, ratedUserID); err != nil {
		return nil, err
	}
	return s.ratingRepo.ListForUser(ctx, ratedUserID, limit, offset)
}

// SubmitReport records one participant's complaint about the other for a
// completed meeting. Duplicate submissions fail validation.
func (s *FeedbackService) SubmitReport(ctx context.Context, reporterID uint, input SubmitReportInput) (*models.MeetingReport, error) {
	if !input.Category.Valid() {
		return nil, models.NewValidationError("report_category must be easy, medium or hard")
	}
	if input.Reason == "" {
		return nil, models.NewValidationError("report_reason is required")
	}
	if input.ReportedUserID == reporterID {
		return nil, models.NewValidationError("Cannot report yourself")
	}

	if _, err := s.completedMeetingFor(ctx, input.MeetingID, reporterID, input.ReportedUserID); err != nil {
		return nil, err
	}

	report := &models.MeetingReport{
		MeetingID:      input.MeetingID,
		ReporterID:     reporterID,
		ReportedUserID: input.ReportedUserID,
		Category:       input.Category,
		Reason:         input.Reason,
		Description:    input.Description,
		Status:         models.ReportStatusPending,
	}
	if err := s.reportRepo.Create(ctx, report); err != nil {
		return nil, err
	}

	observability.ReportsCreated.WithLabelValues(string(input.Category)).Inc()
	cache.Invalidate(ctx, cache.BanStatusKey(input.ReportedUserID))
	return report, nil
}

// BanStatus builds the informational ban view for a user: the derived
// violation ledger, the per-category thresholds and the current ban fields.
// It never flips a ban; that stays a moderation action.
func (s *FeedbackService) BanStatus(ctx context.Context, userID uint) (*models.BanStatus, error) {
	var status models.BanStatus
	key := cache.BanStatusKey(userID)

	err := cache.Aside(ctx, key, &status, cache.BanStatusTTL, func() error {
		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		counts, err := s.reportRepo.ViolationCounts(ctx, userID)
		if err != nil {
			return err
		}

		status = models.BanStatus{
			UserID:          user.ID,
			IsBanned:        user.IsBanned,
			BanReason:       user.BanReason,
			BannedAt:        user.BannedAt,
			BanExpiresAt:    user.BanExpiresAt,
			ViolationCounts: counts,
			Thresholds: models.ViolationCounts{
				Easy:   models.ViolationThresholdEasy,
				Medium: models.ViolationThresholdMedium,
				Hard:   models.ViolationThresholdHard,
			},
			EligibleEasy:   counts.Easy >= models.ViolationThresholdEasy,
			EligibleMedium: counts.Medium >= models.ViolationThresholdMedium,
			EligibleHard:   counts.Hard >= models.ViolationThresholdHard,
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &status, nil
}
