package models

import (
	"time"

	"gorm.io/gorm"
)

// Referral statuses.
const (
	ReferralPending   = "pending"
	ReferralConverted = "converted"
	ReferralExpired   = "expired"
)

// Participant is an end user enrolled in a referral program through the
// embedded widget. The referral code is what participants share.
type Participant struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	ProgramID    uint           `gorm:"uniqueIndex:idx_program_participant;not null" json:"program_id"`
	Program      *Program       `gorm:"foreignKey:ProgramID" json:"program,omitempty"`
	Email        string         `gorm:"uniqueIndex:idx_program_participant;size:255;not null" json:"email"`
	ReferralCode string         `gorm:"uniqueIndex;size:32;not null" json:"referral_code"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Participant) TableName() string { return "participants" }

// Referral is one attribution record: a visit through a participant's code,
// optionally converted into a signup.
type Referral struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	ProgramID   uint         `gorm:"index;not null" json:"program_id"`
	ReferrerID  uint         `gorm:"index;not null" json:"referrer_id"` // Participant.ID
	Referrer    *Participant `gorm:"foreignKey:ReferrerID" json:"referrer,omitempty"`
	RefereeMail string       `gorm:"size:255" json:"referee_email"`
	Status      string       `gorm:"size:20;default:pending;index" json:"status"`
	LandingURL  string       `gorm:"size:500" json:"landing_url"`
	VisitedAt   time.Time    `json:"visited_at"`
	ConvertedAt *time.Time   `json:"converted_at"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func (Referral) TableName() string { return "referrals" }
