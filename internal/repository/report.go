package repository

import (
	"context"
	"errors"
	"time"

	"olma/internal/models"

	"gorm.io/gorm"
)

// ReportFilter narrows report listings. Zero values mean "any".
type ReportFilter struct {
	Status         string
	MeetingID      uint
	ReportedUserID uint
}

// ReportRepository defines persistence operations for meeting reports.
type ReportRepository interface {
	Create(ctx context.Context, report *models.MeetingReport) error
	GetByID(ctx context.Context, id uint) (*models.MeetingReport, error)
	List(ctx context.Context, filter ReportFilter, limit, offset int) ([]models.MeetingReport, error)
	Resolve(ctx context.Context, id uint, resolverID uint, status, note string) error
	ViolationCounts(ctx context.Context, reportedUserID uint) (models.ViolationCounts, error)
}

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository returns a new ReportRepository implementation.
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

// Create inserts a report. The unique index on (meeting, reporter, reported)
// rejects a double-submit instead of storing a second row.
func (r *reportRepository) Create(ctx context.Context, report *models.MeetingReport) error {
	if err := r.db.WithContext(ctx).Create(report).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("Report already submitted for this meeting")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *reportRepository) GetByID(ctx context.Context, id uint) (*models.MeetingReport, error) {
	var report models.MeetingReport
	if err := r.db.WithContext(ctx).
		Preload("Reporter").
		Preload("ReportedUser").
		First(&report, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Report", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &report, nil
}

func (r *reportRepository) List(ctx context.Context, filter ReportFilter, limit, offset int) ([]models.MeetingReport, error) {
	q := r.db.WithContext(ctx).
		Preload("Reporter").
		Preload("ReportedUser")
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.MeetingID != 0 {
		q = q.Where("meeting_id = ?", filter.MeetingID)
	}
	if filter.ReportedUserID != 0 {
		q = q.Where("reported_user_id = ?", filter.ReportedUserID)
	}

	var reports []models.MeetingReport
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&reports).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return reports, nil
}

// Resolve closes a pending report. Only pending reports can be resolved;
// the conditional WHERE makes a second resolver lose cleanly.
func (r *reportRepository) Resolve(ctx context.Context, id uint, resolverID uint, status, note string) error {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).
		Model(&models.MeetingReport{}).
		Where("id = ? AND status = ?", id, models.ReportStatusPending).
		Updates(map[string]interface{}{
			"status":          status,
			"resolved_by_id":  resolverID,
			"resolved_at":     now,
			"resolution_note": note,
		})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		var report models.MeetingReport
		if err := r.db.WithContext(ctx).First(&report, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Report", id)
			}
			return models.NewInternalError(err)
		}
		return models.NewConflictError("Report already resolved")
	}
	return nil
}

// ViolationCounts tallies non-dismissed reports received per category.
// Dismissing a report in the moderation queue removes it from the ledger.
func (r *reportRepository) ViolationCounts(ctx context.Context, reportedUserID uint) (models.ViolationCounts, error) {
	type row struct {
		Category models.ReportCategory
		Count    int
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&models.MeetingReport{}).
		Select("category, COUNT(*) AS count").
		Where("reported_user_id = ? AND status != ?", reportedUserID, models.ReportStatusDismissed).
		Group("category").
		Scan(&rows).Error; err != nil {
		return models.ViolationCounts{}, models.NewInternalError(err)
	}

	var counts models.ViolationCounts
	for _, row := range rows {
		switch row.Category {
		case models.ReportCategoryEasy:
			counts.Easy = row.Count
		case models.ReportCategoryMedium:
			counts.Medium = row.Count
		case models.ReportCategoryHard:
			counts.Hard = row.Count
		}
	}
	return counts, nil
}
