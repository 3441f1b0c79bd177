package middleware

import (
	"errors"
	"strconv"

	"github.com/BINU242/refref/internal/models"
	"github.com/BINU242/refref/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const ContextProject = "project_context"

// ProjectContext is the request-scoped record for project-bound operations:
// the active project plus the caller's resolved membership within it. It is
// threaded explicitly into services instead of being read ambiently.
type ProjectContext struct {
	ProjectID uint
	Project   *models.Project
	UserID    uint
	Role      models.Role
}

// ProjectRequired resolves the :projectID route param into a ProjectContext.
// Requests without a valid project are rejected before any handler runs:
// missing/garbled id is a bad request, an unknown project is not found, and a
// caller without a membership row is forbidden.
func ProjectRequired(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, err := strconv.ParseUint(c.Param("projectID"), 10, 32)
		if err != nil || projectID == 0 {
			response.BadRequest(c, "no active project")
			c.Abort()
			return
		}

		var project models.Project
		if err := db.First(&project, projectID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				response.NotFound(c, "project not found")
			} else {
				response.ServerError(c, err.Error())
			}
			c.Abort()
			return
		}

		userID := GetUserID(c)
		var membership models.ProjectMember
		if err := db.Where("project_id = ? AND user_id = ?", projectID, userID).
			First(&membership).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				response.Forbidden(c, "you are not a member of this project")
			} else {
				response.ServerError(c, err.Error())
			}
			c.Abort()
			return
		}

		c.Set(ContextProject, &ProjectContext{
			ProjectID: uint(projectID),
			Project:   &project,
			UserID:    userID,
			Role:      membership.Role,
		})

		c.Next()
	}
}

// GetProject returns the resolved ProjectContext for the request.
func GetProject(c *gin.Context) *ProjectContext {
	if v, exists := c.Get(ContextProject); exists {
		return v.(*ProjectContext)
	}
	return nil
}
