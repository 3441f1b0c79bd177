package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BINU242/refref/internal/models"
	"github.com/BINU242/refref/pkg/logger"
	"github.com/BINU242/refref/pkg/response"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MembershipService enforces the project membership governance rules: who may
// invite, promote, demote or remove members, and the floors that keep a
// project from losing its last privileged member.
type MembershipService struct {
	db        *gorm.DB
	queue     TaskQueue
	configSvc *SystemConfigService
}

func NewMembershipService(db *gorm.DB, queue TaskQueue) *MembershipService {
	return &MembershipService{
		db:        db,
		queue:     queue,
		configSvc: NewSystemConfigService(db),
	}
}

// Actor is the caller's resolved membership within the active project.
type Actor struct {
	UserID uint
	Role   models.Role
}

// RoleCounts is the per-role member tally for a project.
type RoleCounts struct {
	Owners  int64 `json:"owners"`
	Admins  int64 `json:"admins"`
	Members int64 `json:"members"`
	Total   int64 `json:"total"`
}

type MemberListResponse struct {
	Items           []models.ProjectMember `json:"items"`
	Counts          RoleCounts             `json:"counts"`
	CurrentUserID   uint                   `json:"current_user_id"`
	CurrentUserRole models.Role            `json:"current_user_role"`
}

type InviteRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required"`
}

// countRoles tallies memberships for a project. It must run on the same
// transaction as the guarded mutation so the floor checks see the rows the
// mutation will see.
func countRoles(tx *gorm.DB, projectID uint) (RoleCounts, error) {
	var rows []struct {
		Role  models.Role
		Count int64
	}
	err := tx.Model(&models.ProjectMember{}).
		Select("role, COUNT(*) as count").
		Where("project_id = ?", projectID).
		Group("role").
		Scan(&rows).Error
	if err != nil {
		return RoleCounts{}, err
	}

	var counts RoleCounts
	for _, r := range rows {
		switch r.Role {
		case models.RoleOwner:
			counts.Owners = r.Count
		case models.RoleAdmin:
			counts.Admins = r.Count
		case models.RoleMember:
			counts.Members = r.Count
		}
		counts.Total += r.Count
	}
	return counts, nil
}

// ListMembers returns all members of the project with role counts and the
// caller's own identity, so clients can render governance controls.
func (s *MembershipService) ListMembers(projectID uint, actor Actor) (*MemberListResponse, error) {
	var members []models.ProjectMember
	if err := s.db.Where("project_id = ?", projectID).
		Preload("User").
		Order("created_at ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}

	counts, err := countRoles(s.db, projectID)
	if err != nil {
		return nil, err
	}

	return &MemberListResponse{
		Items:           members,
		Counts:          counts,
		CurrentUserID:   actor.UserID,
		CurrentUserRole: actor.Role,
	}, nil
}

// ListInvitations returns the project's pending invitations. Managing
// invitations is an owner/admin capability, listing included.
func (s *MembershipService) ListInvitations(projectID uint, actor Actor) ([]models.Invitation, error) {
	if !actor.Role.CanManageMembers() {
		return nil, response.NewForbidden("only owners and admins may manage invitations")
	}

	var invitations []models.Invitation
	if err := s.db.Where("project_id = ? AND status = ?", projectID, models.InvitationPending).
		Preload("Inviter").
		Order("created_at DESC").
		Find(&invitations).Error; err != nil {
		return nil, err
	}
	return invitations, nil
}

// Invite creates a pending invitation and queues the invitation email.
// All guards run before any row is written.
func (s *MembershipService) Invite(projectID uint, actor Actor, req *InviteRequest) (*models.Invitation, error) {
	if !actor.Role.CanManageMembers() {
		return nil, response.NewForbidden("only owners and admins may invite members")
	}

	role, err := models.ParseRole(req.Role)
	if err != nil {
		return nil, response.NewBadRequest(err.Error())
	}
	if !actor.Role.CanGrant(role) {
		return nil, response.NewForbidden("only an owner may grant the owner role")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, response.NewBadRequest("email is required")
	}

	// Already a member?
	var existing int64
	s.db.Model(&models.ProjectMember{}).
		Joins("JOIN users ON users.id = project_members.user_id").
		Where("project_members.project_id = ? AND users.email = ?", projectID, email).
		Count(&existing)
	if existing > 0 {
		return nil, response.NewBadRequest("user is already a member of this project")
	}

	// Duplicate pending invitation?
	var pending int64
	s.db.Model(&models.Invitation{}).
		Where("project_id = ? AND email = ? AND status = ?", projectID, email, models.InvitationPending).
		Count(&pending)
	if pending > 0 {
		return nil, response.NewConflict("an invitation for this email is already pending")
	}

	invitation := models.Invitation{
		ProjectID: projectID,
		Email:     email,
		Role:      role,
		Status:    models.InvitationPending,
		Token:     uuid.NewString(),
		InvitedBy: actor.UserID,
		ExpiresAt: time.Now().Add(s.invitationTTL()),
	}
	if err := s.db.Create(&invitation).Error; err != nil {
		return nil, err
	}

	s.enqueueInvitationEmail(&invitation)
	return &invitation, nil
}

// ChangeRole updates a member's role, preserving the ownership floors.
// The count check and the mutation run inside one transaction, and the update
// itself is a compare-and-swap on the role read within that transaction;
// a concurrent privilege change surfaces as a conflict instead of silently
// breaking the floor.
func (s *MembershipService) ChangeRole(projectID uint, actor Actor, targetUserID uint, newRoleStr string) error {
	if !actor.Role.CanManageMembers() {
		return response.NewForbidden("only owners and admins may change member roles")
	}

	newRole, err := models.ParseRole(newRoleStr)
	if err != nil {
		return response.NewBadRequest(err.Error())
	}
	if !actor.Role.CanGrant(newRole) {
		return response.NewForbidden("only an owner may grant the owner role")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var member models.ProjectMember
		if err := tx.Where("project_id = ? AND user_id = ?", projectID, targetUserID).
			First(&member).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NewNotFound("member not found")
			}
			return err
		}

		if member.Role == newRole {
			return nil
		}

		counts, err := countRoles(tx, projectID)
		if err != nil {
			return err
		}

		if err := checkPrivilegeFloor(member.Role, newRole, counts); err != nil {
			return err
		}

		res := tx.Model(&models.ProjectMember{}).
			Where("id = ? AND role = ?", member.ID, member.Role).
			Update("role", newRole)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return response.NewConflict("membership changed concurrently, retry")
		}

		logger.Info().
			Uint("project_id", projectID).
			Uint("user_id", targetUserID).
			Str("from", string(member.Role)).
			Str("to", string(newRole)).
			Msg("member role changed")
		return nil
	})
}

// Remove deletes a membership, preserving the ownership floors and never
// leaving a project empty.
func (s *MembershipService) Remove(projectID uint, actor Actor, targetUserID uint) error {
	if !actor.Role.CanManageMembers() {
		return response.NewForbidden("only owners and admins may remove members")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var member models.ProjectMember
		if err := tx.Where("project_id = ? AND user_id = ?", projectID, targetUserID).
			First(&member).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NewNotFound("member not found")
			}
			return err
		}

		counts, err := countRoles(tx, projectID)
		if err != nil {
			return err
		}

		if err := checkRemovalFloor(member.Role, counts); err != nil {
			return err
		}

		res := tx.Where("id = ? AND role = ?", member.ID, member.Role).
			Delete(&models.ProjectMember{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return response.NewConflict("membership changed concurrently, retry")
		}

		logger.Info().
			Uint("project_id", projectID).
			Uint("user_id", targetUserID).
			Str("role", string(member.Role)).
			Msg("member removed")
		return nil
	})
}

// checkRemovalFloor rejects removals that would empty the project or break
// the privilege floors. A removal is equivalent to demoting the member off
// the privilege ladder.
func checkRemovalFloor(target models.Role, counts RoleCounts) error {
	if counts.Total <= 1 {
		return response.NewBadRequest("cannot remove the last member of a project")
	}
	return checkPrivilegeFloor(target, models.RoleMember, counts)
}

// checkPrivilegeFloor rejects transitions that would leave a project without
// a privileged member: the sole owner cannot lose ownership, and the sole
// admin of an ownerless project cannot drop to member.
func checkPrivilegeFloor(current, next models.Role, counts RoleCounts) error {
	if current == models.RoleOwner && next != models.RoleOwner && counts.Owners <= 1 {
		return response.NewBadRequest("project must retain at least one owner, promote another member first")
	}
	if current == models.RoleAdmin && next == models.RoleMember &&
		counts.Owners == 0 && counts.Admins <= 1 {
		return response.NewBadRequest("project must retain at least one admin while it has no owner")
	}
	return nil
}

// CancelInvitation marks a pending invitation cancelled.
func (s *MembershipService) CancelInvitation(projectID uint, actor Actor, invitationID uint) error {
	if !actor.Role.CanManageMembers() {
		return response.NewForbidden("only owners and admins may cancel invitations")
	}

	var invitation models.Invitation
	if err := s.db.Where("id = ? AND project_id = ?", invitationID, projectID).
		First(&invitation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewNotFound("invitation not found")
		}
		return err
	}

	if invitation.Status != models.InvitationPending {
		return response.NewBadRequest(fmt.Sprintf("invitation is %s, only pending invitations can be cancelled", invitation.Status))
	}

	return s.db.Model(&invitation).Update("status", models.InvitationCancelled).Error
}

// ResendInvitation reissues a pending invitation with a fresh token and
// expiry and queues a new email. The role may be adjusted on resend, subject
// to the same grant rules as Invite.
func (s *MembershipService) ResendInvitation(projectID uint, actor Actor, email, roleStr string) (*models.Invitation, error) {
	if !actor.Role.CanManageMembers() {
		return nil, response.NewForbidden("only owners and admins may resend invitations")
	}

	role, err := models.ParseRole(roleStr)
	if err != nil {
		return nil, response.NewBadRequest(err.Error())
	}
	if !actor.Role.CanGrant(role) {
		return nil, response.NewForbidden("only an owner may grant the owner role")
	}

	email = strings.ToLower(strings.TrimSpace(email))

	var invitation models.Invitation
	if err := s.db.Where("project_id = ? AND email = ? AND status = ?",
		projectID, email, models.InvitationPending).
		First(&invitation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("no pending invitation for this email")
		}
		return nil, err
	}

	updates := map[string]interface{}{
		"role":       role,
		"token":      uuid.NewString(),
		"expires_at": time.Now().Add(s.invitationTTL()),
	}
	if err := s.db.Model(&invitation).Updates(updates).Error; err != nil {
		return nil, err
	}

	s.db.First(&invitation, invitation.ID)
	s.enqueueInvitationEmail(&invitation)
	return &invitation, nil
}

// AcceptInvitation redeems an invitation token for the authenticated user,
// creating the membership and marking the invitation accepted in one
// transaction. Expired tokens are flipped to expired on the way out.
func (s *MembershipService) AcceptInvitation(token string, userID uint) error {
	if token == "" {
		return response.NewBadRequest("invitation token is required")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var invitation models.Invitation
		if err := tx.Where("token = ?", token).First(&invitation).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NewNotFound("invitation not found")
			}
			return err
		}

		if invitation.Status != models.InvitationPending {
			return response.NewBadRequest(fmt.Sprintf("invitation is %s", invitation.Status))
		}
		if invitation.IsExpired() {
			tx.Model(&invitation).Update("status", models.InvitationExpired)
			return response.NewBadRequest("invitation has expired")
		}

		var existing int64
		tx.Model(&models.ProjectMember{}).
			Where("project_id = ? AND user_id = ?", invitation.ProjectID, userID).
			Count(&existing)
		if existing > 0 {
			return response.NewBadRequest("you are already a member of this project")
		}

		member := models.ProjectMember{
			ProjectID: invitation.ProjectID,
			UserID:    userID,
			Role:      invitation.Role,
		}
		if err := tx.Create(&member).Error; err != nil {
			return err
		}

		return tx.Model(&invitation).Update("status", models.InvitationAccepted).Error
	})
}

func (s *MembershipService) invitationTTL() time.Duration {
	hours := s.configSvc.GetInt("invitation_ttl_hours", 168)
	if hours <= 0 {
		hours = 168
	}
	return time.Duration(hours) * time.Hour
}

func (s *MembershipService) enqueueInvitationEmail(invitation *models.Invitation) {
	if s.queue == nil {
		return
	}
	task := &EmailTask{
		Kind:         EmailKindInvitation,
		InvitationID: invitation.ID,
	}
	if err := s.queue.Enqueue(task); err != nil {
		// Email delivery is best effort, the invitation row is the source of truth.
		logger.Warn().Err(err).Uint("invitation_id", invitation.ID).Msg("failed to enqueue invitation email")
	}
}
