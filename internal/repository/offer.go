package repository

import (
	"context"
	"errors"
	"time"

	"olma/internal/models"

	"gorm.io/gorm"
)

// OfferFilter narrows offer listings.
type OfferFilter struct {
	Status models.OfferStatus // zero value means any status
	Role   string             // "inviter", "invitee", or "" for both
	Limit  int
	Offset int
}

// OfferRepository defines persistence operations for meeting offers.
type OfferRepository interface {
	Create(ctx context.Context, offer *models.MeetingOffer) error
	GetByID(ctx context.Context, id uint) (*models.MeetingOffer, error)
	ListForUser(ctx context.Context, userID uint, filter OfferFilter) ([]models.MeetingOffer, error)
	UpdateStatusIf(ctx context.Context, id uint, from, to models.OfferStatus, inviteeResponse string) (bool, error)
	ExpireDue(ctx context.Context, now time.Time) ([]models.MeetingOffer, error)
	Delete(ctx context.Context, id uint) error
	HasPendingBetween(ctx context.Context, inviterID, inviteeID, skillID uint) (bool, error)
}

type offerRepository struct {
	db *gorm.DB
}

// NewOfferRepository returns a new OfferRepository implementation.
func NewOfferRepository(db *gorm.DB) OfferRepository {
	return &offerRepository{db: db}
}

func (r *offerRepository) Create(ctx context.Context, offer *models.MeetingOffer) error {
	if err := r.db.WithContext(ctx).Create(offer).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *offerRepository) GetByID(ctx context.Context, id uint) (*models.MeetingOffer, error) {
	var offer models.MeetingOffer
	if err := r.db.WithContext(ctx).
		Preload("Inviter").
		Preload("Invitee").
		Preload("Skill").
		First(&offer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Meeting offer", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &offer, nil
}

func (r *offerRepository) ListForUser(ctx context.Context, userID uint, filter OfferFilter) ([]models.MeetingOffer, error) {
	q := r.db.WithContext(ctx).
		Preload("Inviter").
		Preload("Invitee").
		Preload("Skill")

	switch filter.Role {
	case "inviter":
		q = q.Where("inviter_id = ?", userID)
	case "invitee":
		q = q.Where("invitee_id = ?", userID)
	default:
		q = q.Where("inviter_id = ? OR invitee_id = ?", userID, userID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	var offers []models.MeetingOffer
	if err := q.Order("created_at DESC").Find(&offers).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return offers, nil
}

// UpdateStatusIf performs a conditional transition: the row is updated only
// while its status still equals from. A false return means another writer
// moved the offer first.
func (r *offerRepository) UpdateStatusIf(ctx context.Context, id uint, from, to models.OfferStatus, inviteeResponse string) (bool, error) {
	updates := map[string]interface{}{"status": to}
	if inviteeResponse != "" {
		updates["invitee_response"] = inviteeResponse
	}

	res := r.db.WithContext(ctx).
		Model(&models.MeetingOffer{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

// ExpireDue denies every pending offer whose meeting time has passed and
// returns the offers it changed. Safe to call concurrently: the UPDATE
// re-checks status so two sweepers never expire the same row twice.
func (r *offerRepository) ExpireDue(ctx context.Context, now time.Time) ([]models.MeetingOffer, error) {
	var due []models.MeetingOffer

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Associations are joined here so callers can build full views and
		// notify both participants of what the sweep changed.
		if err := tx.
			Preload("Inviter").
			Preload("Invitee").
			Preload("Skill").
			Where("status = ? AND meeting_date < ?", models.OfferStatusPending, now).
			Find(&due).Error; err != nil {
			return err
		}
		if len(due) == 0 {
			return nil
		}

		ids := make([]uint, 0, len(due))
		for _, o := range due {
			ids = append(ids, o.ID)
		}

		res := tx.Model(&models.MeetingOffer{}).
			Where("id IN ? AND status = ?", ids, models.OfferStatusPending).
			Update("status", models.OfferStatusDenied)
		if res.Error != nil {
			return res.Error
		}
		// Another sweeper may have raced us on some rows; report only what
		// this run actually flipped.
		if res.RowsAffected < int64(len(due)) {
			var stillDue []models.MeetingOffer
			for _, o := range due {
				var cur models.MeetingOffer
				if err := tx.Select("id", "status").First(&cur, o.ID).Error; err == nil &&
					cur.Status == models.OfferStatusDenied {
					stillDue = append(stillDue, o)
				}
			}
			due = stillDue
		}
		for i := range due {
			due[i].Status = models.OfferStatusDenied
		}
		return nil
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return due, nil
}

func (r *offerRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.MeetingOffer{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *offerRepository) HasPendingBetween(ctx context.Context, inviterID, inviteeID, skillID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.MeetingOffer{}).
		Where("inviter_id = ? AND invitee_id = ? AND skill_id = ? AND status = ?",
			inviterID, inviteeID, skillID, models.OfferStatusPending).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}
