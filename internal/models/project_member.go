package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Role is the closed set of membership privilege tiers. Raw strings from the
// wire are converted through ParseRole at the boundary and never trusted
// beyond it.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// ParseRole validates a wire-level role string.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleOwner, RoleAdmin, RoleMember:
		return Role(s), nil
	}
	return "", fmt.Errorf("invalid role %q, must be 'owner', 'admin', or 'member'", s)
}

// CanManageMembers reports whether the role may invite, change roles, remove
// members, or manage invitations.
func (r Role) CanManageMembers() bool {
	return r == RoleOwner || r == RoleAdmin
}

// CanGrant reports whether a caller with role r may assign the target role.
// Only an owner may grant the owner role.
func (r Role) CanGrant(target Role) bool {
	if !r.CanManageMembers() {
		return false
	}
	if target == RoleOwner {
		return r == RoleOwner
	}
	return true
}

// ProjectMember is a (project, user) membership with a role.
type ProjectMember struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	ProjectID uint           `gorm:"uniqueIndex:idx_project_user;not null" json:"project_id"`
	Project   *Project       `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	UserID    uint           `gorm:"uniqueIndex:idx_project_user;not null" json:"user_id"`
	User      *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Role      Role           `gorm:"size:50;default:member" json:"role"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (ProjectMember) TableName() string { return "project_members" }
