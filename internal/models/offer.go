package models

import (
	"time"
)

// OfferStatus represents the lifecycle state of a meeting offer.
type OfferStatus string

const (
	// OfferStatusPending indicates the invitee has not yet responded.
	OfferStatusPending OfferStatus = "pending"
	// OfferStatusAccepted indicates the invitee accepted the offer.
	OfferStatusAccepted OfferStatus = "accepted"
	// OfferStatusDenied indicates the invitee declined the offer, or the
	// offer expired while still pending.
	OfferStatusDenied OfferStatus = "denied"
	// OfferStatusStarted indicates the meeting is in progress.
	OfferStatusStarted OfferStatus = "started"
	// OfferStatusCompleted indicates the meeting finished.
	OfferStatusCompleted OfferStatus = "completed"
	// OfferStatusCancelled indicates a participant called the meeting off.
	OfferStatusCancelled OfferStatus = "cancelled"
)

// DefaultMeetingDuration is the assumed session length in minutes when the
// inviter does not specify one.
const DefaultMeetingDuration = 60

// Valid reports whether s is a recognized offer status.
func (s OfferStatus) Valid() bool {
	switch s {
	case OfferStatusPending, OfferStatusAccepted, OfferStatusDenied,
		OfferStatusStarted, OfferStatusCompleted, OfferStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether s admits no further transitions.
func (s OfferStatus) Terminal() bool {
	switch s {
	case OfferStatusDenied, OfferStatusCompleted, OfferStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether the state machine permits moving from s to
// next. Invitee-only gating for accept/deny is enforced separately by the
// service layer; this covers ordering only.
func (s OfferStatus) CanTransitionTo(next OfferStatus) bool {
	if s.Terminal() {
		return false
	}
	if next == OfferStatusCancelled {
		return true
	}
	switch s {
	case OfferStatusPending:
		return next == OfferStatusAccepted || next == OfferStatusDenied
	case OfferStatusAccepted:
		return next == OfferStatusStarted
	case OfferStatusStarted:
		return next == OfferStatusCompleted
	}
	return false
}

// MeetingOffer represents a proposed skill-sharing session between two users.
// The inviter proposes; only the invitee may accept or deny.
type MeetingOffer struct {
	ID              uint        `gorm:"primaryKey" json:"id"`
	InviterID       uint        `gorm:"not null;index:idx_offers_inviter" json:"inviter_id"`
	InviteeID       uint        `gorm:"not null;index:idx_offers_invitee" json:"invitee_id"`
	SkillID         uint        `gorm:"not null" json:"skill_id"`
	ConversationID  uint        `gorm:"not null" json:"conversation_id"`
	MeetingLocation string      `gorm:"not null" json:"meeting_location"`
	MeetingDate     time.Time   `gorm:"not null;index" json:"meeting_date"`
	MeetingDuration int         `gorm:"default:60" json:"meeting_duration"`
	Status          OfferStatus `gorm:"type:varchar(20);default:'pending';index:idx_offers_status" json:"status"`
	InviterMessage  string      `json:"inviter_message,omitempty"`
	InviteeResponse string      `json:"invitee_response,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`

	// Relationships
	Inviter User  `gorm:"foreignKey:InviterID" json:"inviter,omitempty"`
	Invitee User  `gorm:"foreignKey:InviteeID" json:"invitee,omitempty"`
	Skill   Skill `gorm:"foreignKey:SkillID" json:"skill,omitempty"`
}

// TableName specifies the table name for GORM
func (MeetingOffer) TableName() string {
	return "meeting_offers"
}

// IsParticipant reports whether userID is the inviter or invitee.
func (o *MeetingOffer) IsParticipant(userID uint) bool {
	return o.InviterID == userID || o.InviteeID == userID
}

// OtherParticipant returns the counterparty of userID. The caller must have
// verified participation first.
func (o *MeetingOffer) OtherParticipant(userID uint) uint {
	if o.InviterID == userID {
		return o.InviteeID
	}
	return o.InviterID
}

// Expired reports whether a pending offer's scheduled time has passed.
func (o *MeetingOffer) Expired(now time.Time) bool {
	return o.Status == OfferStatusPending && o.MeetingDate.Before(now)
}

// OfferView is the API projection of an offer with joined participant and
// skill summaries.
type OfferView struct {
	ID              uint         `json:"id"`
	Status          OfferStatus  `json:"status"`
	ConversationID  uint         `json:"conversation_id"`
	MeetingLocation string       `json:"meeting_location"`
	MeetingDate     time.Time    `json:"meeting_date"`
	MeetingDuration int          `json:"meeting_duration"`
	InviterMessage  string       `json:"inviter_message,omitempty"`
	InviteeResponse string       `json:"invitee_response,omitempty"`
	Inviter         UserSummary  `json:"inviter"`
	Invitee         UserSummary  `json:"invitee"`
	Skill           SkillSummary `json:"skill"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// View returns the API projection of the offer. Preloaded associations are
// assumed.
func (o *MeetingOffer) View() OfferView {
	return OfferView{
		ID:              o.ID,
		Status:          o.Status,
		ConversationID:  o.ConversationID,
		MeetingLocation: o.MeetingLocation,
		MeetingDate:     o.MeetingDate,
		MeetingDuration: o.MeetingDuration,
		InviterMessage:  o.InviterMessage,
		InviteeResponse: o.InviteeResponse,
		Inviter:         o.Inviter.Summary(),
		Invitee:         o.Invitee.Summary(),
		Skill:           o.Skill.Summary(),
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}
