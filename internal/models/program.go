package models

import (
	"time"

	"gorm.io/gorm"
)

// Program statuses.
const (
	ProgramDraft  = "draft"
	ProgramLive   = "live"
	ProgramPaused = "paused"
)

// Setup step keys. Steps are seeded in this order when a program is created;
// the set is extensible per program.
const (
	StepDesign        = "design"
	StepRewards       = "rewards"
	StepNotifications = "notifications"
	StepInstallation  = "installation"
)

// Program is a referral campaign owned by a project. WidgetKey identifies the
// program to the embedded attribution script on the customer's site.
type Program struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	ProjectID          uint           `gorm:"index;not null" json:"project_id"`
	Project            *Project       `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Name               string         `gorm:"size:200;not null" json:"name"`
	Status             string         `gorm:"size:20;default:draft;index" json:"status"`
	WidgetKey          string         `gorm:"uniqueIndex;size:64;not null" json:"widget_key"`
	DesignConfig       string         `gorm:"type:text" json:"design_config"`       // widget appearance JSON
	NotificationConfig string         `gorm:"type:text" json:"notification_config"` // email/event toggles JSON
	LiveAt             *time.Time     `json:"live_at"`
	CreatedBy          uint           `json:"created_by"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Program) TableName() string { return "programs" }

// AcceptsEnrollment reports whether the widget may register new participants.
// Draft programs accept enrollment so the installation can be tested before
// launch; paused programs stop taking new participants.
func (p *Program) AcceptsEnrollment() bool { return p.Status != ProgramPaused }

// RecordsConversions reports whether signups count. Only live programs
// convert; draft traffic is installation testing, paused programs keep
// serving the widget without crediting referrals.
func (p *Program) RecordsConversions() bool { return p.Status == ProgramLive }

// SetupStep is one named configuration phase of a program's setup workflow.
type SetupStep struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ProgramID  uint      `gorm:"uniqueIndex:idx_program_step;not null" json:"program_id"`
	Key        string    `gorm:"column:step_key;uniqueIndex:idx_program_step;size:50;not null" json:"key"`
	Position   int       `gorm:"not null" json:"position"`
	IsRequired bool      `gorm:"default:true" json:"is_required"`
	IsComplete bool      `gorm:"default:false" json:"is_complete"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (SetupStep) TableName() string { return "setup_steps" }

// Reward value types.
const (
	RewardFixed      = "fixed"
	RewardPercentage = "percentage"
)

// RewardConfig holds the persisted reward settings for a program. A row only
// exists when at least one side is enabled; a fully disabled submission
// removes the row rather than zeroing it.
type RewardConfig struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	ProgramID uint     `gorm:"uniqueIndex;not null" json:"program_id"`
	Program   *Program `gorm:"foreignKey:ProgramID" json:"program,omitempty"`

	ReferrerEnabled   bool    `gorm:"default:false" json:"referrer_enabled"`
	ReferrerValueType string  `gorm:"size:20" json:"referrer_value_type"` // fixed, percentage
	ReferrerValue     float64 `json:"referrer_value"`
	ReferrerCurrency  string  `gorm:"size:10" json:"referrer_currency"`

	RefereeEnabled      bool     `gorm:"default:false" json:"referee_enabled"`
	RefereeValueType    string   `gorm:"size:20" json:"referee_value_type"`
	RefereeValue        float64  `json:"referee_value"`
	RefereeCurrency     string   `gorm:"size:10" json:"referee_currency"`
	RefereeMinPurchase  *float64 `json:"referee_min_purchase"`
	RefereeValidityDays int      `gorm:"default:30" json:"referee_validity_days"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (RewardConfig) TableName() string { return "reward_configs" }
