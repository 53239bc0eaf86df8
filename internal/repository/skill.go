package repository

import (
	"context"
	"errors"

	"olma/internal/cache"
	"olma/internal/models"

	"gorm.io/gorm"
)

// SkillRepository defines persistence operations for skills.
type SkillRepository interface {
	Create(ctx context.Context, skill *models.Skill) error
	GetByID(ctx context.Context, id uint) (*models.Skill, error)
	Update(ctx context.Context, skill *models.Skill) error
	Delete(ctx context.Context, id uint) error
	ListByOwner(ctx context.Context, ownerID uint) ([]models.Skill, error)
	Search(ctx context.Context, query, category string, limit, offset int) ([]models.Skill, error)
}

type skillRepository struct {
	db *gorm.DB
}

// NewSkillRepository returns a new SkillRepository implementation.
func NewSkillRepository(db *gorm.DB) SkillRepository {
	return &skillRepository{db: db}
}

func (r *skillRepository) Create(ctx context.Context, skill *models.Skill) error {
	if err := r.db.WithContext(ctx).Create(skill).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *skillRepository) GetByID(ctx context.Context, id uint) (*models.Skill, error) {
	var skill models.Skill
	key := cache.SkillKey(id)

	err := cache.Aside(ctx, key, &skill, cache.SkillTTL, func() error {
		if err := r.db.WithContext(ctx).First(&skill, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Skill", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &skill, nil
}

func (r *skillRepository) Update(ctx context.Context, skill *models.Skill) error {
	if err := r.db.WithContext(ctx).Save(skill).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateSkill(ctx, skill.ID)
	return nil
}

func (r *skillRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Skill{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateSkill(ctx, id)
	return nil
}

func (r *skillRepository) ListByOwner(ctx context.Context, ownerID uint) ([]models.Skill, error) {
	var skills []models.Skill
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&skills).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return skills, nil
}

func (r *skillRepository) Search(ctx context.Context, query, category string, limit, offset int) ([]models.Skill, error) {
	var skills []models.Skill
	q := r.db.WithContext(ctx).Preload("Owner")
	if query != "" {
		like := "%" + query + "%"
		q = q.Where("name LIKE ? OR description LIKE ?", like, like)
	}
	if category != "" {
		q = q.Where("category = ?", category)
	}
	if err := q.Limit(limit).Offset(offset).Order("created_at DESC").Find(&skills).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return skills, nil
}
