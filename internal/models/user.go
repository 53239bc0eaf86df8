// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// User represents a member of the OLMA platform.
type User struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Username  string          `gorm:"unique;not null" json:"username"`
	Email     string          `gorm:"unique;not null" json:"email"`
	Password  string          `gorm:"not null" json:"-"`
	Bio       string          `json:"bio"`
	Avatar    string          `json:"avatar"`
	Location  string          `json:"location"`
	XP        int             `gorm:"default:0" json:"xp"`
	Credits   decimal.Decimal `gorm:"type:numeric(12,2);default:0" json:"credits"`
	IsAdmin   bool            `gorm:"default:false" json:"is_admin"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"-"`

	// Ban status is upserted onto the user row by moderation actions,
	// never appended.
	IsBanned     bool       `gorm:"default:false" json:"is_banned"`
	BanReason    string     `json:"ban_reason,omitempty"`
	BannedAt     *time.Time `json:"banned_at,omitempty"`
	BanExpiresAt *time.Time `json:"ban_expires_at,omitempty"`
	BannedByID   *uint      `json:"banned_by_id,omitempty"`

	Skills []Skill `gorm:"foreignKey:OwnerID" json:"skills,omitempty"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}

// UserSummary is the participant projection embedded in offer responses.
type UserSummary struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
	XP       int    `json:"xp"`
}

// Summary returns the reduced projection of the user.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:       u.ID,
		Username: u.Username,
		Avatar:   u.Avatar,
		XP:       u.XP,
	}
}
