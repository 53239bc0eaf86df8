package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DefaultHourlyRate is used for earnings math when a skill has no rate set.
var DefaultHourlyRate = decimal.NewFromInt(10)

// Skill represents a skill a user offers to teach.
type Skill struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	OwnerID     uint            `gorm:"not null;index" json:"owner_id"`
	Name        string          `gorm:"not null" json:"name"`
	Description string          `json:"description"`
	Category    string          `gorm:"index" json:"category"`
	HourlyRate  decimal.Decimal `gorm:"type:numeric(10,2);default:0" json:"hourly_rate"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`

	Owner User `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
}

// TableName specifies the table name for GORM
func (Skill) TableName() string {
	return "skills"
}

// EffectiveHourlyRate returns the skill's rate, or the platform default when
// no rate was set.
func (s *Skill) EffectiveHourlyRate() decimal.Decimal {
	if s.HourlyRate.IsZero() {
		return DefaultHourlyRate
	}
	return s.HourlyRate
}

// SkillSummary is the reduced projection embedded in offer responses.
type SkillSummary struct {
	ID         uint            `json:"id"`
	Name       string          `json:"name"`
	Category   string          `json:"category,omitempty"`
	HourlyRate decimal.Decimal `json:"hourly_rate"`
}

// Summary returns the reduced projection of the skill.
func (s *Skill) Summary() SkillSummary {
	return SkillSummary{
		ID:         s.ID,
		Name:       s.Name,
		Category:   s.Category,
		HourlyRate: s.HourlyRate,
	}
}
