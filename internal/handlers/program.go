package handlers

import (
	"encoding/json"
	"io"
	"strconv"

	"github.com/BINU242/refref/internal/middleware"
	"github.com/BINU242/refref/internal/models"
	"github.com/BINU242/refref/internal/services"
	"github.com/BINU242/refref/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ProgramHandler exposes program lifecycle, the setup workflow, and reward
// configuration.
type ProgramHandler struct {
	programService  *services.ProgramService
	referralService *services.ReferralService
}

func NewProgramHandler(db *gorm.DB) *ProgramHandler {
	return &ProgramHandler{
		programService:  services.NewProgramService(db),
		referralService: services.NewReferralService(db),
	}
}

func programID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("programID"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid program id")
		return 0, false
	}
	return uint(id), true
}

// List returns the project's programs
// GET /api/projects/:projectID/programs
func (h *ProgramHandler) List(c *gin.Context) {
	pc := middleware.GetProject(c)
	programs, err := h.programService.List(pc.ProjectID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, programs)
}

type createProgramRequest struct {
	Name string `json:"name" binding:"required"`
}

// Create provisions a draft program with seeded setup steps
// POST /api/projects/:projectID/programs
func (h *ProgramHandler) Create(c *gin.Context) {
	var req createProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	pc := middleware.GetProject(c)
	program, err := h.programService.Create(pc.ProjectID, actorFrom(c), req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, program)
}

// Get returns one program
// GET /api/projects/:projectID/programs/:programID
func (h *ProgramHandler) Get(c *gin.Context) {
	id, ok := programID(c)
	if !ok {
		return
	}

	pc := middleware.GetProject(c)
	program, err := h.programService.Get(pc.ProjectID, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, program)
}

// Update renames a program
// PUT /api/projects/:projectID/programs/:programID
func (h *ProgramHandler) Update(c *gin.Context) {
	id, ok := programID(c)
	if !ok {
		return
	}

	var req createProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	pc := middleware.GetProject(c)
	program, err := h.programService.Update(pc.ProjectID, actorFrom(c), id, req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, program)
}

// Delete removes a program
// DELETE /api/projects/:projectID/programs/:programID
func (h *ProgramHandler) Delete(c *gin.Context) {
	id, ok := programID(c)
	if !ok {
		return
	}

	pc := middleware.GetProject(c)
	if err := h.programService.Delete(pc.ProjectID, actorFrom(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "program deleted"})
}

// Progress returns the setup steps with derived aggregates
// GET /api/projects/:projectID/programs/:programID/setup
func (h *ProgramHandler) Progress(c *gin.Context) {
	id, ok := programID(c)
	if !ok {
		return
	}

	pc := middleware.GetProject(c)
	progress, err := h.programService.Progress(pc.ProjectID, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, progress)
}

// CanProceed reports whether a setup step is reachable
// GET /api/projects/:projectID/programs/:programID/setup/:step/can-proceed
func (h *ProgramHandler) CanProceed(c *gin.Context) {
	id, ok := programID(c)
	if !ok {
		return
	}

	pc := middleware.GetProject(c)
	allowed, err := h.programService.CanProceed(pc.ProjectID, id, c.Param("step"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"can_proceed": allowed})
}

// SaveDesign stores the widget appearance config
// PUT /api/projects/:projectID/programs/:programID/design
func (h *ProgramHandler) SaveDesign(c *gin.Context) {
	h.saveConfig(c, h.programService.SaveDesign)
}

// SaveNotifications stores the notification toggles
// PUT /api/projects/:projectID/programs/:programID/notifications
func (h *ProgramHandler) SaveNotifications(c *gin.Context) {
	h.saveConfig(c, h.programService.SaveNotifications)
}

func (h *ProgramHandler) saveConfig(c *gin.Context, save func(uint, services.Actor, uint, json.RawMessage) (*models.Program, error)) {
	id, ok := programID(c)
	if !ok {
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil || len(body) == 0 {
		response.BadRequest(c, "request body required")
		return
	}

	pc := middleware.GetProject(c)
	program, err := save(pc.ProjectID, actorFrom(c), id, json.RawMessage(body))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, program)
}

// GetReward returns the stored reward config, nil when rewards are disabled
// GET /api/projects/:projectID/programs/:programID/reward
func (h *ProgramHandler) GetReward(c *gin.Context) {
	id, ok := programID(c)
	if !ok {
		return
	}

	pc := middleware.GetProject(c)
	cfg, err := h.programService.Reward(pc.ProjectID, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, cfg)
}

// SaveReward validates and persists a reward submission
// PUT /api/projects/:projectID/programs/:programID/reward
func (h *ProgramHandler) SaveReward(c *gin.Context) {
	id, ok := programID(c)
	if !ok {
		return
	}

	var sub services.RewardSubmission
	if err := c.ShouldBindJSON(&sub); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	pc := middleware.GetProject(c)
	cfg, err := h.programService.SaveReward(pc.ProjectID, actorFrom(c), id, sub)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, cfg)
}

// VerifyInstallation checks widget traffic and completes the step
// POST /api/projects/:projectID/programs/:programID/verify-installation
func (h *ProgramHandler) VerifyInstallation(c *gin.Context) {
	id, ok := programID(c)
	if !ok {
		return
	}

	pc := middleware.GetProject(c)
	status, err := h.programService.VerifyInstallation(pc.ProjectID, actorFrom(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, status)
}

// GoLive launches a draft program
// POST /api/projects/:projectID/programs/:programID/go-live
func (h *ProgramHandler) GoLive(c *gin.Context) {
	id, ok := programID(c)
	if !ok {
		return
	}

	pc := middleware.GetProject(c)
	program, err := h.programService.GoLive(pc.ProjectID, actorFrom(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, program)
}

// Pause suspends a live program
// POST /api/projects/:projectID/programs/:programID/pause
func (h *ProgramHandler) Pause(c *gin.Context) {
	id, ok := programID(c)
	if !ok {
		return
	}

	pc := middleware.GetProject(c)
	program, err := h.programService.Pause(pc.ProjectID, actorFrom(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, program)
}

// Resume returns a paused program to live
// POST /api/projects/:projectID/programs/:programID/resume
func (h *ProgramHandler) Resume(c *gin.Context) {
	id, ok := programID(c)
	if !ok {
		return
	}

	pc := middleware.GetProject(c)
	program, err := h.programService.Resume(pc.ProjectID, actorFrom(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, program)
}

// Stats returns the attribution funnel for the dashboard
// GET /api/projects/:projectID/programs/:programID/stats
func (h *ProgramHandler) Stats(c *gin.Context) {
	id, ok := programID(c)
	if !ok {
		return
	}

	pc := middleware.GetProject(c)
	if _, err := h.programService.Get(pc.ProjectID, id); err != nil {
		response.Error(c, err)
		return
	}

	stats, err := h.referralService.Stats(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, stats)
}

// ListReferrals pages the program's referral records
// GET /api/projects/:projectID/programs/:programID/referrals
func (h *ProgramHandler) ListReferrals(c *gin.Context) {
	id, ok := programID(c)
	if !ok {
		return
	}

	pc := middleware.GetProject(c)
	if _, err := h.programService.Get(pc.ProjectID, id); err != nil {
		response.Error(c, err)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	referrals, total, err := h.referralService.ListReferrals(id, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paged(c, referrals, total, page, pageSize)
}
