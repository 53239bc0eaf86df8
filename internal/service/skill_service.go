package service

import (
	"context"

	"olma/internal/models"
	"olma/internal/repository"

	"github.com/shopspring/decimal"
)

// SkillInput carries the writable fields of a skill.
type SkillInput struct {
	Name        string
	Description string
	Category    string
	HourlyRate  decimal.Decimal
}

// SkillService provides skill catalog business logic.
type SkillService struct {
	skillRepo repository.SkillRepository
}

// NewSkillService returns a new SkillService.
func NewSkillService(skillRepo repository.SkillRepository) *SkillService {
	return &SkillService{skillRepo: skillRepo}
}

func validateSkillInput(input SkillInput) error {
	if input.Name == "" {
		return models.NewValidationError("name is required")
	}
	if len(input.Name) > 100 {
		return models.NewValidationError("name must be at most 100 characters")
	}
	if input.HourlyRate.IsNegative() {
		return models.NewValidationError("hourly_rate cannot be negative")
	}
	return nil
}

// CreateSkill adds a skill to the caller's catalog.
func (s *SkillService) CreateSkill(ctx context.Context, ownerID uint, input SkillInput) (*models.Skill, error) {
	if err := validateSkillInput(input); err != nil {
		return nil, err
	}
	skill := &models.Skill{
		OwnerID:     ownerID,
		Name:        input.Name,
		Description: input.Description,
		Category:    input.Category,
		HourlyRate:  input.HourlyRate,
	}
	if err := s.skillRepo.Create(ctx, skill); err != nil {
		return nil, err
	}
	return skill, nil
}

// GetSkill fetches one skill.
func (s *SkillService) GetSkill(ctx context.Context, id uint) (*models.Skill, error) {
	return s.skillRepo.GetByID(ctx, id)
}

// UpdateSkill modifies one of the caller's skills.
func (s *SkillService) UpdateSkill(ctx context.Context, userID, skillID uint, input SkillInput) (*models.Skill, error) {
	if err := validateSkillInput(input); err != nil {
		return nil, err
	}
	skill, err := s.skillRepo.GetByID(ctx, skillID)
	if err != nil {
		return nil, err
	}
	if skill.OwnerID != userID {
		return nil, models.NewForbiddenError("You can only update your own skills")
	}

	skill.Name = input.Name
	skill.Description = input.Description
	skill.Category = input.Category
	skill.HourlyRate = input.HourlyRate
	if err := s.skillRepo.Update(ctx, skill); err != nil {
		return nil, err
	}
	return skill, nil
}

// DeleteSkill removes one of the caller's skills.
func (s *SkillService) DeleteSkill(ctx context.Context, userID, skillID uint) error {
	skill, err := s.skillRepo.GetByID(ctx, skillID)
	if err != nil {
		return err
	}
	if skill.OwnerID != userID {
		return models.NewForbiddenError("You can only delete your own skills")
	}
	return s.skillRepo.Delete(ctx, skillID)
}

// ListSkills returns a user's skill catalog.
func (s *SkillService) ListSkills(ctx context.Context, ownerID uint) ([]models.Skill, error) {
	return s.skillRepo.ListByOwner(ctx, ownerID)
}

// SearchSkills browses the public catalog.
func (s *SkillService) SearchSkills(ctx context.Context, query, category string, limit, offset int) ([]models.Skill, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.skillRepo.Search(ctx, query, category, limit, offset)
}
