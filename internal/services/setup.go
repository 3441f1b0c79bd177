package services

import (
	"errors"
	"time"

	"github.com/BINU242/refref/internal/models"
	"github.com/BINU242/refref/pkg/logger"
	"github.com/BINU242/refref/pkg/response"
	"gorm.io/gorm"
)

// SetupService tracks which configuration steps of a program are complete and
// gates navigation and go-live on the required ones.
type SetupService struct {
	db *gorm.DB
}

func NewSetupService(db *gorm.DB) *SetupService {
	return &SetupService{db: db}
}

// defaultSteps is the seeded setup workflow for a new program, in order.
var defaultSteps = []models.SetupStep{
	{Key: models.StepDesign, Position: 1, IsRequired: true},
	{Key: models.StepRewards, Position: 2, IsRequired: true},
	{Key: models.StepNotifications, Position: 3, IsRequired: false},
	{Key: models.StepInstallation, Position: 4, IsRequired: true},
}

// SeedSteps creates the default step rows for a program.
func SeedSteps(tx *gorm.DB, programID uint) error {
	for _, step := range defaultSteps {
		step.ProgramID = programID
		if err := tx.Create(&step).Error; err != nil {
			return err
		}
	}
	return nil
}

// --- pure step-graph functions ---

// CanProceedToStep reports whether navigation to the named step is permitted:
// every required step positioned before it must be complete. Unknown steps are
// not navigable.
func CanProceedToStep(steps []models.SetupStep, key string) bool {
	var target *models.SetupStep
	for i := range steps {
		if steps[i].Key == key {
			target = &steps[i]
			break
		}
	}
	if target == nil {
		return false
	}

	for _, step := range steps {
		if step.Position < target.Position && step.IsRequired && !step.IsComplete {
			return false
		}
	}
	return true
}

// PendingSteps counts the incomplete required steps.
func PendingSteps(steps []models.SetupStep) int {
	pending := 0
	for _, step := range steps {
		if step.IsRequired && !step.IsComplete {
			pending++
		}
	}
	return pending
}

// AllRequiredComplete reports whether every required step is complete.
func AllRequiredComplete(steps []models.SetupStep) bool {
	return PendingSteps(steps) == 0
}

// --- persisted operations ---

// Steps returns a program's setup steps in order.
func (s *SetupService) Steps(programID uint) ([]models.SetupStep, error) {
	var steps []models.SetupStep
	if err := s.db.Where("program_id = ?", programID).
		Order("position ASC").
		Find(&steps).Error; err != nil {
		return nil, err
	}
	return steps, nil
}

// SetupProgress is the aggregate view of a program's setup state.
type SetupProgress struct {
	Steps               []models.SetupStep `json:"steps"`
	PendingSteps        int                `json:"pending_steps"`
	AllRequiredComplete bool               `json:"all_required_complete"`
}

// Progress returns the step list with the derived aggregates.
func (s *SetupService) Progress(programID uint) (*SetupProgress, error) {
	steps, err := s.Steps(programID)
	if err != nil {
		return nil, err
	}
	return &SetupProgress{
		Steps:               steps,
		PendingSteps:        PendingSteps(steps),
		AllRequiredComplete: AllRequiredComplete(steps),
	}, nil
}

// CompleteStep marks the named step complete. Called by the configuration
// mutations once the corresponding config is persisted; completing an already
// complete step is a no-op.
func (s *SetupService) CompleteStep(programID uint, key string) error {
	var step models.SetupStep
	if err := s.db.Where("program_id = ? AND step_key = ?", programID, key).
		First(&step).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewNotFound("setup step not found")
		}
		return err
	}

	if step.IsComplete {
		return nil
	}
	return s.db.Model(&step).Update("is_complete", true).Error
}

// ResetStep flips a step back to incomplete, used when its configuration is
// removed (e.g. a fully disabled reward submission clearing the reward row).
func (s *SetupService) ResetStep(programID uint, key string) error {
	return s.db.Model(&models.SetupStep{}).
		Where("program_id = ? AND step_key = ?", programID, key).
		Update("is_complete", false).Error
}

// GoLive flips a draft program live, gated on every required setup step being
// complete.
func (s *SetupService) GoLive(programID uint) (*models.Program, error) {
	var program models.Program
	if err := s.db.First(&program, programID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("program not found")
		}
		return nil, err
	}

	if program.Status == models.ProgramLive {
		return &program, nil
	}

	steps, err := s.Steps(programID)
	if err != nil {
		return nil, err
	}
	if !AllRequiredComplete(steps) {
		return nil, response.NewBadRequest("complete all required setup steps before going live")
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":  models.ProgramLive,
		"live_at": now,
	}
	if err := s.db.Model(&program).Updates(updates).Error; err != nil {
		return nil, err
	}

	logger.Info().Uint("program_id", programID).Msg("program went live")

	program.Status = models.ProgramLive
	program.LiveAt = &now
	return &program, nil
}
