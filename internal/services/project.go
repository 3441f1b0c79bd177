package services

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/BINU242/refref/internal/models"
	"github.com/BINU242/refref/pkg/logger"
	"github.com/BINU242/refref/pkg/response"
	"gorm.io/gorm"
)

// ProjectService manages projects (the tenant boundary) and the caller's view
// of them.
type ProjectService struct {
	db *gorm.DB
}

func NewProjectService(db *gorm.DB) *ProjectService {
	return &ProjectService{db: db}
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// slugify derives a URL-safe slug from a project name.
func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugPattern.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// Create provisions a project and enrolls the creator as its owner in the
// same transaction.
func (s *ProjectService) Create(userID uint, name, website string) (*models.Project, error) {
	if strings.TrimSpace(name) == "" {
		return nil, response.NewBadRequest("project name is required")
	}

	slug := slugify(name)
	if slug == "" {
		return nil, response.NewBadRequest("project name must contain letters or digits")
	}

	project := &models.Project{
		Name:      strings.TrimSpace(name),
		Slug:      slug,
		Website:   strings.TrimSpace(website),
		CreatedBy: userID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Project
		res := tx.Where("slug = ?", slug).First(&existing)
		if res.Error == nil {
			// disambiguate rather than reject, slug collisions are benign
			project.Slug = fmt.Sprintf("%s-%d", slug, userID)
		} else if !errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return res.Error
		}

		if err := tx.Create(project).Error; err != nil {
			return err
		}
		member := &models.ProjectMember{
			ProjectID: project.ID,
			UserID:    userID,
			Role:      models.RoleOwner,
		}
		return tx.Create(member).Error
	})
	if err != nil {
		return nil, err
	}

	logger.Info().Uint("project_id", project.ID).Uint("user_id", userID).Msg("project created")
	return project, nil
}

// ProjectWithRole pairs a project with the caller's role in it.
type ProjectWithRole struct {
	models.Project
	Role models.Role `json:"role"`
}

// ListForUser returns the projects the user belongs to.
func (s *ProjectService) ListForUser(userID uint) ([]ProjectWithRole, error) {
	var members []models.ProjectMember
	if err := s.db.Where("user_id = ?", userID).Find(&members).Error; err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return []ProjectWithRole{}, nil
	}

	roleByProject := make(map[uint]models.Role, len(members))
	ids := make([]uint, 0, len(members))
	for _, m := range members {
		roleByProject[m.ProjectID] = m.Role
		ids = append(ids, m.ProjectID)
	}

	var projects []models.Project
	if err := s.db.Where("id IN ?", ids).Order("created_at ASC").Find(&projects).Error; err != nil {
		return nil, err
	}

	out := make([]ProjectWithRole, 0, len(projects))
	for _, p := range projects {
		out = append(out, ProjectWithRole{Project: p, Role: roleByProject[p.ID]})
	}
	return out, nil
}

// Update edits a project's name and website. Owner or admin only.
func (s *ProjectService) Update(actor Actor, projectID uint, name, website string) (*models.Project, error) {
	if !actor.Role.CanManageMembers() {
		return nil, response.NewForbidden("insufficient role to update project")
	}

	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("project not found")
		}
		return nil, err
	}

	updates := map[string]interface{}{}
	if strings.TrimSpace(name) != "" {
		updates["name"] = strings.TrimSpace(name)
	}
	if website != "" {
		updates["website"] = strings.TrimSpace(website)
	}
	if len(updates) == 0 {
		return &project, nil
	}
	if err := s.db.Model(&project).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// Delete soft-deletes a project and its memberships. Owner only.
func (s *ProjectService) Delete(actor Actor, projectID uint) error {
	if actor.Role != models.RoleOwner {
		return response.NewForbidden("only an owner can delete a project")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", projectID).
			Delete(&models.ProjectMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Project{}, projectID).Error
	})
}
