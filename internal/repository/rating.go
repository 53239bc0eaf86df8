package repository

import (
	"context"

	"olma/internal/models"

	"gorm.io/gorm"
)

// RatingRepository defines persistence operations for meeting ratings.
type RatingRepository interface {
	Create(ctx context.Context, rating *models.MeetingRating) error
	ListForMeeting(ctx context.Context, meetingID uint) ([]models.MeetingRating, error)
	ListForUser(ctx context.Context, ratedUserID uint, limit, offset int) ([]models.MeetingRating, error)
	AverageForUser(ctx context.Context, ratedUserID uint) (float64, int64, error)
}

type ratingRepository struct {
	db *gorm.DB
}

// NewRatingRepository returns a new RatingRepository implementation.
func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

// Create inserts a rating. The unique index on (meeting, rater, rated)
// rejects a double-submit instead of storing a second row.
func (r *ratingRepository) Create(ctx context.Context, rating *models.MeetingRating) error {
	if err := r.db.WithContext(ctx).Create(rating).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("Rating already submitted for this meeting")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *ratingRepository) ListForMeeting(ctx context.Context, meetingID uint) ([]models.MeetingRating, error) {
	var ratings []models.MeetingRating
	if err := r.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Preload("Rater").
		Order("created_at ASC").
		Find(&ratings).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return ratings, nil
}

func (r *ratingRepository) ListForUser(ctx context.Context, ratedUserID uint, limit, offset int) ([]models.MeetingRating, error) {
	var ratings []models.MeetingRating
	if err := r.db.WithContext(ctx).
		Where("rated_user_id = ?", ratedUserID).
		Preload("Rater").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&ratings).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return ratings, nil
}

func (r *ratingRepository) AverageForUser(ctx context.Context, ratedUserID uint) (float64, int64, error) {
	type row struct {
		Avg   float64
		Count int64
	}
	var res row
	if err := r.db.WithContext(ctx).
		Model(&models.MeetingRating{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
		Where("rated_user_id = ?", ratedUserID).
		Scan(&res).Error; err != nil {
		return 0, 0, models.NewInternalError(err)
	}
	return res.Avg, res.Count, nil
}
