package models

import (
	"time"

	"gorm.io/gorm"
)

// Invitation statuses.
const (
	InvitationPending   = "pending"
	InvitationAccepted  = "accepted"
	InvitationExpired   = "expired"
	InvitationCancelled = "cancelled"
)

// Invitation is a pending offer of project membership at a given role.
type Invitation struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	ProjectID uint           `gorm:"index:idx_invite_project_email;not null" json:"project_id"`
	Project   *Project       `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Email     string         `gorm:"index:idx_invite_project_email;size:255;not null" json:"email"`
	Role      Role           `gorm:"size:50;not null" json:"role"`
	Status    string         `gorm:"size:20;default:pending;index" json:"status"`
	Token     string         `gorm:"uniqueIndex;size:64;not null" json:"-"`
	InvitedBy uint           `gorm:"not null" json:"invited_by"`
	Inviter   *User          `gorm:"foreignKey:InvitedBy" json:"inviter,omitempty"`
	ExpiresAt time.Time      `gorm:"index;not null" json:"expires_at"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Invitation) TableName() string { return "invitations" }

// IsExpired reports whether the invitation's TTL has passed, independent of
// whether the expiry sweeper has flipped its status yet.
func (i *Invitation) IsExpired() bool {
	return time.Now().After(i.ExpiresAt)
}
