package services

import (
	"encoding/json"
	"errors"

	"github.com/BINU242/refref/internal/models"
	"github.com/BINU242/refref/pkg/logger"
	"github.com/BINU242/refref/pkg/response"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProgramService manages referral programs within a project: lifecycle, the
// per-step configuration writes, and the reward settings.
type ProgramService struct {
	db    *gorm.DB
	setup *SetupService
}

func NewProgramService(db *gorm.DB) *ProgramService {
	return &ProgramService{db: db, setup: NewSetupService(db)}
}

// requireManager gates program mutations: members may read, owners and
// admins may write.
func requireManager(actor Actor) error {
	if !actor.Role.CanManageMembers() {
		return response.NewForbidden("only owners and admins may modify programs")
	}
	return nil
}

// Create provisions a draft program with a fresh widget key and the default
// setup steps. Owner or admin only.
func (s *ProgramService) Create(projectID uint, actor Actor, name string) (*models.Program, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}

	program := &models.Program{
		ProjectID: projectID,
		Name:      name,
		Status:    models.ProgramDraft,
		WidgetKey: uuid.New().String(),
		CreatedBy: actor.UserID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(program).Error; err != nil {
			return err
		}
		return SeedSteps(tx, program.ID)
	})
	if err != nil {
		return nil, err
	}

	logger.Info().Uint("program_id", program.ID).Uint("project_id", projectID).Msg("program created")
	return program, nil
}

// List returns a project's programs, newest first.
func (s *ProgramService) List(projectID uint) ([]models.Program, error) {
	var programs []models.Program
	if err := s.db.Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&programs).Error; err != nil {
		return nil, err
	}
	return programs, nil
}

// Get loads a program, scoped to the project so one tenant cannot address
// another's programs by id.
func (s *ProgramService) Get(projectID, programID uint) (*models.Program, error) {
	var program models.Program
	if err := s.db.Where("id = ? AND project_id = ?", programID, projectID).
		First(&program).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("program not found")
		}
		return nil, err
	}
	return &program, nil
}

// Update renames a program. Owner or admin only.
func (s *ProgramService) Update(projectID uint, actor Actor, programID uint, name string) (*models.Program, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	program, err := s.Get(projectID, programID)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(program).Update("name", name).Error; err != nil {
		return nil, err
	}
	program.Name = name
	return program, nil
}

// Delete soft-deletes a program. Owner or admin only.
func (s *ProgramService) Delete(projectID uint, actor Actor, programID uint) error {
	if err := requireManager(actor); err != nil {
		return err
	}
	program, err := s.Get(projectID, programID)
	if err != nil {
		return err
	}
	return s.db.Delete(program).Error
}

// Pause moves a live program back to paused; the widget keeps serving but
// stops recording conversions. Owner or admin only.
func (s *ProgramService) Pause(projectID uint, actor Actor, programID uint) (*models.Program, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	program, err := s.Get(projectID, programID)
	if err != nil {
		return nil, err
	}
	if program.Status != models.ProgramLive {
		return nil, response.NewBadRequest("only live programs can be paused")
	}
	if err := s.db.Model(program).Update("status", models.ProgramPaused).Error; err != nil {
		return nil, err
	}
	program.Status = models.ProgramPaused
	return program, nil
}

// Resume returns a paused program to live. Owner or admin only.
func (s *ProgramService) Resume(projectID uint, actor Actor, programID uint) (*models.Program, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	program, err := s.Get(projectID, programID)
	if err != nil {
		return nil, err
	}
	if program.Status != models.ProgramPaused {
		return nil, response.NewBadRequest("only paused programs can be resumed")
	}
	if err := s.db.Model(program).Update("status", models.ProgramLive).Error; err != nil {
		return nil, err
	}
	program.Status = models.ProgramLive
	return program, nil
}

// GoLive launches a draft program once setup is complete. Owner or admin only.
func (s *ProgramService) GoLive(projectID uint, actor Actor, programID uint) (*models.Program, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	if _, err := s.Get(projectID, programID); err != nil {
		return nil, err
	}
	return s.setup.GoLive(programID)
}

// Progress returns the program's setup progress.
func (s *ProgramService) Progress(projectID, programID uint) (*SetupProgress, error) {
	if _, err := s.Get(projectID, programID); err != nil {
		return nil, err
	}
	return s.setup.Progress(programID)
}

// CanProceed reports whether the named setup step is reachable given the
// current completion state.
func (s *ProgramService) CanProceed(projectID, programID uint, key string) (bool, error) {
	if _, err := s.Get(projectID, programID); err != nil {
		return false, err
	}
	steps, err := s.setup.Steps(programID)
	if err != nil {
		return false, err
	}
	return CanProceedToStep(steps, key), nil
}

// SaveDesign persists the widget appearance config and completes the design
// step. The payload is stored verbatim after a JSON well-formedness check.
// Owner or admin only.
func (s *ProgramService) SaveDesign(projectID uint, actor Actor, programID uint, config json.RawMessage) (*models.Program, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	return s.saveConfigStep(projectID, programID, "design_config", config, models.StepDesign)
}

// SaveNotifications persists the notification toggles and completes the
// notifications step. Owner or admin only.
func (s *ProgramService) SaveNotifications(projectID uint, actor Actor, programID uint, config json.RawMessage) (*models.Program, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	return s.saveConfigStep(projectID, programID, "notification_config", config, models.StepNotifications)
}

func (s *ProgramService) saveConfigStep(projectID, programID uint, column string, config json.RawMessage, stepKey string) (*models.Program, error) {
	program, err := s.Get(projectID, programID)
	if err != nil {
		return nil, err
	}
	if !json.Valid(config) {
		return nil, response.NewBadRequest("config must be valid JSON")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(program).Update(column, string(config)).Error; err != nil {
			return err
		}
		return NewSetupService(tx).CompleteStep(programID, stepKey)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(projectID, programID)
}

// Reward returns the program's stored reward config, or nil when rewards are
// disabled.
func (s *ProgramService) Reward(projectID, programID uint) (*models.RewardConfig, error) {
	if _, err := s.Get(projectID, programID); err != nil {
		return nil, err
	}
	var cfg models.RewardConfig
	if err := s.db.Where("program_id = ?", programID).First(&cfg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cfg, nil
}

// SaveReward validates and persists a reward submission. A fully disabled
// submission removes the stored row and reopens the rewards step; a valid
// enabled one upserts the row and completes the step. Owner or admin only.
func (s *ProgramService) SaveReward(projectID uint, actor Actor, programID uint, sub RewardSubmission) (*models.RewardConfig, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	if _, err := s.Get(projectID, programID); err != nil {
		return nil, err
	}

	cfg, err := ValidateReward(sub)
	if err != nil {
		return nil, err
	}

	if cfg == nil {
		err := s.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("program_id = ?", programID).
				Delete(&models.RewardConfig{}).Error; err != nil {
				return err
			}
			return NewSetupService(tx).ResetStep(programID, models.StepRewards)
		})
		if err != nil {
			return nil, err
		}
		return nil, nil
	}

	cfg.ProgramID = programID
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.RewardConfig
		res := tx.Where("program_id = ?", programID).First(&existing)
		if res.Error != nil && !errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return res.Error
		}
		if res.Error == nil {
			cfg.ID = existing.ID
			cfg.CreatedAt = existing.CreatedAt
			if err := tx.Save(cfg).Error; err != nil {
				return err
			}
		} else if err := tx.Create(cfg).Error; err != nil {
			return err
		}
		return NewSetupService(tx).CompleteStep(programID, models.StepRewards)
	})
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// InstallationStatus reports whether the widget has phoned home.
type InstallationStatus struct {
	Installed  bool  `json:"installed"`
	VisitCount int64 `json:"visit_count"`
}

// VerifyInstallation checks whether the widget has recorded any traffic for
// this program and completes the installation step when it has. Owner or
// admin only, since it advances the setup workflow.
func (s *ProgramService) VerifyInstallation(projectID uint, actor Actor, programID uint) (*InstallationStatus, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	if _, err := s.Get(projectID, programID); err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.Model(&models.Referral{}).
		Where("program_id = ?", programID).
		Count(&count).Error; err != nil {
		return nil, err
	}

	status := &InstallationStatus{Installed: count > 0, VisitCount: count}
	if status.Installed {
		if err := s.setup.CompleteStep(programID, models.StepInstallation); err != nil {
			return nil, err
		}
	}
	return status, nil
}
