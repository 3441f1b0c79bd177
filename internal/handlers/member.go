package handlers

import (
	"strconv"

	"github.com/BINU242/refref/internal/middleware"
	"github.com/BINU242/refref/internal/services"
	"github.com/BINU242/refref/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// MemberHandler exposes the membership governance surface: the member list,
// role changes, removals, and the invitation lifecycle.
type MemberHandler struct {
	membershipService *services.MembershipService
}

func NewMemberHandler(db *gorm.DB, queue services.TaskQueue) *MemberHandler {
	return &MemberHandler{
		membershipService: services.NewMembershipService(db, queue),
	}
}

func actorFrom(c *gin.Context) services.Actor {
	pc := middleware.GetProject(c)
	return services.Actor{UserID: pc.UserID, Role: pc.Role}
}

// List returns the project's members with role counts
// GET /api/projects/:projectID/members
func (h *MemberHandler) List(c *gin.Context) {
	pc := middleware.GetProject(c)
	resp, err := h.membershipService.ListMembers(pc.ProjectID, actorFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, resp)
}

type changeRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// ChangeRole updates a member's role
// PUT /api/projects/:projectID/members/:userID/role
func (h *MemberHandler) ChangeRole(c *gin.Context) {
	targetID, err := strconv.ParseUint(c.Param("userID"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}

	var req changeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	pc := middleware.GetProject(c)
	if err := h.membershipService.ChangeRole(pc.ProjectID, actorFrom(c), uint(targetID), req.Role); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "role updated"})
}

// Remove deletes a member from the project
// DELETE /api/projects/:projectID/members/:userID
func (h *MemberHandler) Remove(c *gin.Context) {
	targetID, err := strconv.ParseUint(c.Param("userID"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}

	pc := middleware.GetProject(c)
	if err := h.membershipService.Remove(pc.ProjectID, actorFrom(c), uint(targetID)); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "member removed"})
}

// ListInvitations returns the project's pending invitations
// GET /api/projects/:projectID/invitations
func (h *MemberHandler) ListInvitations(c *gin.Context) {
	pc := middleware.GetProject(c)
	invitations, err := h.membershipService.ListInvitations(pc.ProjectID, actorFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, invitations)
}

// Invite creates a pending invitation and queues the email
// POST /api/projects/:projectID/invitations
func (h *MemberHandler) Invite(c *gin.Context) {
	var req services.InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	pc := middleware.GetProject(c)
	invitation, err := h.membershipService.Invite(pc.ProjectID, actorFrom(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, invitation)
}

// CancelInvitation marks a pending invitation cancelled
// DELETE /api/projects/:projectID/invitations/:invitationID
func (h *MemberHandler) CancelInvitation(c *gin.Context) {
	invitationID, err := strconv.ParseUint(c.Param("invitationID"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid invitation id")
		return
	}

	pc := middleware.GetProject(c)
	if err := h.membershipService.CancelInvitation(pc.ProjectID, actorFrom(c), uint(invitationID)); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "invitation cancelled"})
}

type resendInvitationRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required"`
}

// ResendInvitation reissues a pending invitation with a fresh token
// POST /api/projects/:projectID/invitations/resend
func (h *MemberHandler) ResendInvitation(c *gin.Context) {
	var req resendInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	pc := middleware.GetProject(c)
	invitation, err := h.membershipService.ResendInvitation(pc.ProjectID, actorFrom(c), req.Email, req.Role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, invitation)
}

type acceptInvitationRequest struct {
	Token string `json:"token" binding:"required"`
}

// AcceptInvitation redeems an invitation token for the authenticated caller
// POST /api/invitations/accept
func (h *MemberHandler) AcceptInvitation(c *gin.Context) {
	var req acceptInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.membershipService.AcceptInvitation(req.Token, middleware.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "invitation accepted"})
}
