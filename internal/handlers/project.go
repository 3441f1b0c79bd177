package handlers

import (
	"github.com/BINU242/refref/internal/middleware"
	"github.com/BINU242/refref/internal/services"
	"github.com/BINU242/refref/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ProjectHandler struct {
	projectService *services.ProjectService
}

func NewProjectHandler(db *gorm.DB) *ProjectHandler {
	return &ProjectHandler{
		projectService: services.NewProjectService(db),
	}
}

// List returns the caller's projects
// GET /api/projects
func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.projectService.ListForUser(middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, projects)
}

type createProjectRequest struct {
	Name    string `json:"name" binding:"required"`
	Website string `json:"website"`
}

// Create provisions a project with the caller as owner
// POST /api/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	project, err := h.projectService.Create(middleware.GetUserID(c), req.Name, req.Website)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, project)
}

// Get returns the active project
// GET /api/projects/:projectID
func (h *ProjectHandler) Get(c *gin.Context) {
	pc := middleware.GetProject(c)
	response.Success(c, gin.H{
		"project": pc.Project,
		"role":    pc.Role,
	})
}

type updateProjectRequest struct {
	Name    string `json:"name"`
	Website string `json:"website"`
}

// Update edits the project's name and website
// PUT /api/projects/:projectID
func (h *ProjectHandler) Update(c *gin.Context) {
	var req updateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	pc := middleware.GetProject(c)
	actor := services.Actor{UserID: pc.UserID, Role: pc.Role}
	project, err := h.projectService.Update(actor, pc.ProjectID, req.Name, req.Website)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, project)
}

// Delete removes the project
// DELETE /api/projects/:projectID
func (h *ProjectHandler) Delete(c *gin.Context) {
	pc := middleware.GetProject(c)
	actor := services.Actor{UserID: pc.UserID, Role: pc.Role}
	if err := h.projectService.Delete(actor, pc.ProjectID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "project deleted"})
}
