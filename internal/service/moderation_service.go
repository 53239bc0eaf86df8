package service

import (
	"context"
	"time"

	"olma/internal/cache"
	"olma/internal/models"
	"olma/internal/repository"
)

// ModerationService provides the admin-side moderation workflow: the report
// queue and manual ban actions.
type ModerationService struct {
	reportRepo repository.ReportRepository
	userRepo   repository.UserRepository
}

// NewModerationService returns a new ModerationService.
func NewModerationService(reportRepo repository.ReportRepository, userRepo repository.UserRepository) *ModerationService {
	return &ModerationService{reportRepo: reportRepo, userRepo: userRepo}
}

// ListReports returns the moderation queue, optionally narrowed by status,
// meeting, or reported user.
func (s *ModerationService) ListReports(ctx context.Context, filter repository.ReportFilter, limit, offset int) ([]models.MeetingReport, error) {
	switch filter.Status {
	case "", models.ReportStatusPending, models.ReportStatusResolved, models.ReportStatusDismissed:
	default:
		return nil, models.NewValidationError("Unknown report status")
	}
	return s.reportRepo.List(ctx, filter, limit, offset)
}

// ResolveReport closes a pending report as resolved or dismissed.
func (s *ModerationService) ResolveReport(ctx context.Context, resolverID, reportID uint, action, note string) (*models.MeetingReport, error) {
	if action != models.ReportStatusResolved && action != models.ReportStatusDismissed {
		return nil, models.NewValidationError("action must be resolved or dismissed")
	}

	report, err := s.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if err := s.reportRepo.Resolve(ctx, reportID, resolverID, action, note); err != nil {
		return nil, err
	}

	// Dismissal changes the violation ledger; drop the cached view.
	cache.Invalidate(ctx, cache.BanStatusKey(report.ReportedUserID))
	return s.reportRepo.GetByID(ctx, reportID)
}

// BanUser upserts the ban fields on the user row. Permanent when expiresAt
// is nil.
func (s *ModerationService) BanUser(ctx context.Context, adminID, userID uint, reason string, expiresAt *time.Time) (*models.User, error) {
	if reason == "" {
		return nil, models.NewValidationError("ban reason is required")
	}
	if adminID == userID {
		return nil, models.NewValidationError("Cannot ban yourself")
	}
	if expiresAt != nil && !expiresAt.After(time.Now()) {
		return nil, models.NewValidationError("ban expiry must be in the future")
	}

	if err := s.userRepo.SetBan(ctx, userID, reason, adminID, expiresAt); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, userID)
}

// UnbanUser clears the ban fields on the user row.
func (s *ModerationService) UnbanUser(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsBanned {
		return nil, models.NewValidationError("User is not banned")
	}
	if err := s.userRepo.ClearBan(ctx, userID); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, userID)
}
