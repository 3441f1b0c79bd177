package services

import (
	"errors"
	"strings"
	"time"

	"github.com/BINU242/refref/internal/models"
	"github.com/BINU242/refref/pkg/logger"
	"github.com/BINU242/refref/pkg/response"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReferralService handles the public widget surface: participant enrollment,
// visit attribution and conversion tracking. All operations are keyed by the
// program's widget key, never by internal ids.
type ReferralService struct {
	db    *gorm.DB
	setup *SetupService
}

func NewReferralService(db *gorm.DB) *ReferralService {
	return &ReferralService{db: db, setup: NewSetupService(db)}
}

// programByWidgetKey resolves a widget key to its program.
func (s *ReferralService) programByWidgetKey(key string) (*models.Program, error) {
	var program models.Program
	if err := s.db.Where("widget_key = ?", key).First(&program).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("unknown widget key")
		}
		return nil, err
	}
	return &program, nil
}

// newReferralCode derives a short shareable code. Uniqueness is enforced by
// the column index; collisions at 12 hex chars are not worth retry logic.
func newReferralCode() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
}

// Enroll registers an end user as a participant of the program behind the
// widget key. Re-enrolling an existing email returns the existing record with
// its code. Draft programs enroll too, so the installation can be exercised
// end to end before launch.
func (s *ReferralService) Enroll(widgetKey, email string) (*models.Participant, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, response.NewBadRequest("a valid email is required")
	}

	program, err := s.programByWidgetKey(widgetKey)
	if err != nil {
		return nil, err
	}
	if !program.AcceptsEnrollment() {
		return nil, response.NewBadRequest("program is not accepting participants")
	}

	var participant models.Participant
	res := s.db.Where("program_id = ? AND email = ?", program.ID, email).First(&participant)
	if res.Error == nil {
		return &participant, nil
	}
	if !errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, res.Error
	}

	participant = models.Participant{
		ProgramID:    program.ID,
		Email:        email,
		ReferralCode: newReferralCode(),
	}
	if err := s.db.Create(&participant).Error; err != nil {
		return nil, err
	}

	logger.Info().Uint("program_id", program.ID).Str("code", participant.ReferralCode).Msg("participant enrolled")
	return &participant, nil
}

// TrackVisit records a landing through a participant's referral code. Any
// recorded event also satisfies the installation setup step, since it proves
// the widget is wired into the customer's site.
func (s *ReferralService) TrackVisit(widgetKey, code, landingURL string) (*models.Referral, error) {
	program, err := s.programByWidgetKey(widgetKey)
	if err != nil {
		return nil, err
	}

	var referrer models.Participant
	if err := s.db.Where("program_id = ? AND referral_code = ?", program.ID, code).
		First(&referrer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("unknown referral code")
		}
		return nil, err
	}

	referral := &models.Referral{
		ProgramID:  program.ID,
		ReferrerID: referrer.ID,
		Status:     models.ReferralPending,
		LandingURL: landingURL,
		VisitedAt:  time.Now(),
	}
	if err := s.db.Create(referral).Error; err != nil {
		return nil, err
	}

	if err := s.setup.CompleteStep(program.ID, models.StepInstallation); err != nil {
		// attribution succeeded, step bookkeeping is best effort
		logger.Warn().Err(err).Uint("program_id", program.ID).Msg("installation step update failed")
	}
	return referral, nil
}

// TrackSignup converts the most recent pending referral for the code into a
// signup. Conversions only count while the program is live.
func (s *ReferralService) TrackSignup(widgetKey, code, refereeEmail string) (*models.Referral, error) {
	refereeEmail = strings.ToLower(strings.TrimSpace(refereeEmail))
	if refereeEmail == "" {
		return nil, response.NewBadRequest("referee email is required")
	}

	program, err := s.programByWidgetKey(widgetKey)
	if err != nil {
		return nil, err
	}
	if !program.RecordsConversions() {
		return nil, response.NewBadRequest("program is not recording conversions")
	}

	var referrer models.Participant
	if err := s.db.Where("program_id = ? AND referral_code = ?", program.ID, code).
		First(&referrer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("unknown referral code")
		}
		return nil, err
	}

	// self-referral guard
	if referrer.Email == refereeEmail {
		return nil, response.NewBadRequest("participants cannot refer themselves")
	}

	now := time.Now()
	var referral models.Referral
	err = s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("program_id = ? AND referrer_id = ? AND status = ?",
			program.ID, referrer.ID, models.ReferralPending).
			Order("visited_at DESC").
			First(&referral)
		if res.Error != nil && !errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return res.Error
		}
		if res.Error != nil {
			// signup without a tracked visit, record it directly
			referral = models.Referral{
				ProgramID:  program.ID,
				ReferrerID: referrer.ID,
				VisitedAt:  now,
			}
		}

		referral.RefereeMail = refereeEmail
		referral.Status = models.ReferralConverted
		referral.ConvertedAt = &now
		return tx.Save(&referral).Error
	})
	if err != nil {
		return nil, err
	}

	logger.Info().Uint("program_id", program.ID).Uint("referral_id", referral.ID).Msg("referral converted")
	return &referral, nil
}

// ReferralStats summarises a program's attribution funnel.
type ReferralStats struct {
	Participants int64 `json:"participants"`
	Visits       int64 `json:"visits"`
	Conversions  int64 `json:"conversions"`
}

// Stats aggregates participant and referral counts for the dashboard.
func (s *ReferralService) Stats(programID uint) (*ReferralStats, error) {
	stats := &ReferralStats{}
	if err := s.db.Model(&models.Participant{}).
		Where("program_id = ?", programID).
		Count(&stats.Participants).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Referral{}).
		Where("program_id = ?", programID).
		Count(&stats.Visits).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Referral{}).
		Where("program_id = ? AND status = ?", programID, models.ReferralConverted).
		Count(&stats.Conversions).Error; err != nil {
		return nil, err
	}
	return stats, nil
}

// ListReferrals pages a program's referral records for the dashboard.
func (s *ReferralService) ListReferrals(programID uint, page, pageSize int) ([]models.Referral, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var total int64
	query := s.db.Model(&models.Referral{}).Where("program_id = ?", programID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var referrals []models.Referral
	if err := query.Preload("Referrer").
		Order("visited_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&referrals).Error; err != nil {
		return nil, 0, err
	}
	return referrals, total, nil
}
