package models

import (
	"time"
)

// MeetingRating is one participant's feedback on the other for a completed
// meeting. At most one rating exists per (meeting, rater, rated) triple; the
// unique index backs the application-level duplicate check.
type MeetingRating struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	MeetingID   uint      `gorm:"not null;uniqueIndex:idx_rating_once" json:"meeting_id"`
	RaterID     uint      `gorm:"not null;uniqueIndex:idx_rating_once" json:"rater_id"`
	RatedUserID uint      `gorm:"not null;uniqueIndex:idx_rating_once;index" json:"rated_user_id"`
	Rating      int       `gorm:"not null" json:"rating"`
	Comment     string    `json:"comment,omitempty"`
	CreatedAt   time.Time `json:"created_at"`

	Rater     User         `gorm:"foreignKey:RaterID" json:"rater,omitempty"`
	RatedUser User         `gorm:"foreignKey:RatedUserID" json:"rated_user,omitempty"`
	Meeting   MeetingOffer `gorm:"foreignKey:MeetingID" json:"-"`
}

// TableName specifies the table name for GORM
func (MeetingRating) TableName() string {
	return "meeting_ratings"
}
