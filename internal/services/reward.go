package services

import (
	"fmt"
	"strings"

	"github.com/BINU242/refref/internal/models"
	"github.com/BINU242/refref/pkg/response"
)

// RewardSide is one half of a reward submission, covering either the referrer
// or the referee.
type RewardSide struct {
	Enabled   bool    `json:"enabled"`
	ValueType string  `json:"value_type"` // fixed, percentage
	Value     float64 `json:"value"`
	Currency  string  `json:"currency"`
}

// RewardSubmission is the full reward form as submitted from the setup flow.
type RewardSubmission struct {
	Referrer     RewardSide `json:"referrer"`
	Referee      RewardSide `json:"referee"`
	MinPurchase  *float64   `json:"min_purchase"` // referee only, optional
	ValidityDays int        `json:"validity_days"`
}

// supportedCurrencies is the closed set accepted for fixed rewards.
var supportedCurrencies = map[string]bool{
	"USD": true,
	"EUR": true,
	"GBP": true,
	"INR": true,
	"AUD": true,
	"CAD": true,
}

const (
	maxValidityDays     = 365
	defaultValidityDays = 30
)

// validateSide checks one enabled side of the submission. Disabled sides are
// skipped entirely, whatever their other fields hold.
func validateSide(label string, side RewardSide) *response.AppError {
	switch side.ValueType {
	case models.RewardFixed:
		if side.Value <= 0 {
			return response.NewBadRequest(fmt.Sprintf("%s reward amount must be greater than zero", label))
		}
		currency := strings.ToUpper(side.Currency)
		if !supportedCurrencies[currency] {
			return response.NewBadRequest(fmt.Sprintf("unsupported %s reward currency: %s", label, side.Currency))
		}
	case models.RewardPercentage:
		if side.Value < 1 || side.Value > 100 {
			return response.NewBadRequest(fmt.Sprintf("%s reward percentage must be between 1 and 100", label))
		}
	default:
		return response.NewBadRequest(fmt.Sprintf("invalid %s reward type: %s", label, side.ValueType))
	}
	return nil
}

// sideCurrency normalises the currency to persist for a validated side.
// Percentage rewards carry no currency, whatever the client sent.
func sideCurrency(side RewardSide) string {
	if side.ValueType == models.RewardPercentage {
		return ""
	}
	return strings.ToUpper(side.Currency)
}

// ValidateReward validates a reward submission and maps it to the persisted
// config. A submission with both sides disabled is valid and yields a nil
// config, signalling the caller to remove any stored row.
func ValidateReward(sub RewardSubmission) (*models.RewardConfig, error) {
	if !sub.Referrer.Enabled && !sub.Referee.Enabled {
		return nil, nil
	}

	cfg := &models.RewardConfig{RefereeValidityDays: defaultValidityDays}

	if sub.Referrer.Enabled {
		if err := validateSide("referrer", sub.Referrer); err != nil {
			return nil, err
		}
		cfg.ReferrerEnabled = true
		cfg.ReferrerValueType = sub.Referrer.ValueType
		cfg.ReferrerValue = sub.Referrer.Value
		cfg.ReferrerCurrency = sideCurrency(sub.Referrer)
	}

	if sub.Referee.Enabled {
		if err := validateSide("referee", sub.Referee); err != nil {
			return nil, err
		}
		if sub.MinPurchase != nil && *sub.MinPurchase < 0 {
			return nil, response.NewBadRequest("minimum purchase amount cannot be negative")
		}
		if sub.ValidityDays != 0 && (sub.ValidityDays < 1 || sub.ValidityDays > maxValidityDays) {
			return nil, response.NewBadRequest(fmt.Sprintf("reward validity must be between 1 and %d days", maxValidityDays))
		}
		cfg.RefereeEnabled = true
		cfg.RefereeValueType = sub.Referee.ValueType
		cfg.RefereeValue = sub.Referee.Value
		cfg.RefereeCurrency = sideCurrency(sub.Referee)
		cfg.RefereeMinPurchase = sub.MinPurchase
		if sub.ValidityDays != 0 {
			cfg.RefereeValidityDays = sub.ValidityDays
		}
	}

	return cfg, nil
}
