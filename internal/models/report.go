package models

import (
	"time"
)

// ReportCategory grades the severity of a meeting report.
type ReportCategory string

const (
	ReportCategoryEasy   ReportCategory = "easy"
	ReportCategoryMedium ReportCategory = "medium"
	ReportCategoryHard   ReportCategory = "hard"
)

// Valid reports whether c is a recognized category.
func (c ReportCategory) Valid() bool {
	switch c {
	case ReportCategoryEasy, ReportCategoryMedium, ReportCategoryHard:
		return true
	}
	return false
}

// Report statuses.
const (
	ReportStatusPending   = "pending"
	ReportStatusResolved  = "resolved"
	ReportStatusDismissed = "dismissed"
)

// Violation thresholds per category. Reaching a threshold marks the user
// ban-eligible; the actual ban remains a moderation action.
const (
	ViolationThresholdEasy   = 15
	ViolationThresholdMedium = 10
	ViolationThresholdHard   = 3
)

// ViolationThreshold returns the ban-eligibility threshold for c.
func (c ReportCategory) ViolationThreshold() int {
	switch c {
	case ReportCategoryMedium:
		return ViolationThresholdMedium
	case ReportCategoryHard:
		return ViolationThresholdHard
	default:
		return ViolationThresholdEasy
	}
}

// MeetingReport is one participant's complaint about the other for a
// completed meeting. Same uniqueness discipline as MeetingRating.
type MeetingReport struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	MeetingID      uint           `gorm:"not null;uniqueIndex:idx_report_once" json:"meeting_id"`
	ReporterID     uint           `gorm:"not null;uniqueIndex:idx_report_once" json:"reporter_id"`
	ReportedUserID uint           `gorm:"not null;uniqueIndex:idx_report_once;index" json:"reported_user_id"`
	Category       ReportCategory `gorm:"type:varchar(10);not null" json:"report_category"`
	Reason         string         `gorm:"not null" json:"report_reason"`
	Description    string         `json:"description,omitempty"`
	Status         string         `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	ResolvedByID   *uint          `json:"resolved_by_id,omitempty"`
	ResolvedAt     *time.Time     `json:"resolved_at,omitempty"`
	ResolutionNote string         `json:"resolution_note,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`

	Reporter     User         `gorm:"foreignKey:ReporterID" json:"reporter,omitempty"`
	ReportedUser User         `gorm:"foreignKey:ReportedUserID" json:"reported_user,omitempty"`
	Meeting      MeetingOffer `gorm:"foreignKey:MeetingID" json:"-"`
}

// TableName specifies the table name for GORM
func (MeetingReport) TableName() string {
	return "meeting_reports"
}

// ViolationCounts tallies reports received per category for one user.
type ViolationCounts struct {
	Easy   int `json:"easy"`
	Medium int `json:"medium"`
	Hard   int `json:"hard"`
}

// Count returns the tally for c.
func (v ViolationCounts) Count(c ReportCategory) int {
	switch c {
	case ReportCategoryMedium:
		return v.Medium
	case ReportCategoryHard:
		return v.Hard
	default:
		return v.Easy
	}
}

// BanStatus is the informational view returned by the ban-status endpoint.
// It combines the derived violation ledger with the user's current ban
// fields; it never flips the ban itself.
type BanStatus struct {
	UserID          uint            `json:"user_id"`
	IsBanned        bool            `json:"is_banned"`
	BanReason       string          `json:"ban_reason,omitempty"`
	BannedAt        *time.Time      `json:"banned_at,omitempty"`
	BanExpiresAt    *time.Time      `json:"ban_expires_at,omitempty"`
	ViolationCounts ViolationCounts `json:"violation_counts"`
	Thresholds      ViolationCounts `json:"thresholds"`
	EligibleEasy    bool            `json:"eligible_easy"`
	EligibleMedium  bool            `json:"eligible_medium"`
	EligibleHard    bool            `json:"eligible_hard"`
}
