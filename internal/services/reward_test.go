package services

import (
	"testing"

	"github.com/BINU242/refref/internal/models"
)

func enabledSide(valueType string, value float64, currency string) RewardSide {
	return RewardSide{Enabled: true, ValueType: valueType, Value: value, Currency: currency}
}

func TestValidateReward_BothDisabled(t *testing.T) {
	cfg, err := ValidateReward(RewardSubmission{})
	if err != nil {
		t.Fatalf("disabled submission should validate: %v", err)
	}
	if cfg != nil {
		t.Error("disabled submission must yield a nil config, not a zeroed one")
	}
}

func TestValidateReward_DisabledSideFieldsIgnored(t *testing.T) {
	// garbage on a disabled side must not fail validation
	sub := RewardSubmission{
		Referrer: RewardSide{Enabled: false, ValueType: "bogus", Value: -5},
		Referee:  enabledSide(models.RewardFixed, 10, "USD"),
	}
	cfg, err := ValidateReward(sub)
	if err != nil {
		t.Fatalf("disabled side should be skipped: %v", err)
	}
	if cfg.ReferrerEnabled {
		t.Error("referrer side should stay disabled")
	}
	if !cfg.RefereeEnabled {
		t.Error("referee side should be enabled")
	}
}

func TestValidateReward_PercentageBounds(t *testing.T) {
	for _, value := range []float64{0, 0.5, 101, 150, -10} {
		sub := RewardSubmission{Referrer: enabledSide(models.RewardPercentage, value, "")}
		if _, err := ValidateReward(sub); err == nil {
			t.Errorf("percentage %v should be rejected", value)
		}
	}

	for _, value := range []float64{1, 20, 100} {
		sub := RewardSubmission{Referrer: enabledSide(models.RewardPercentage, value, "")}
		cfg, err := ValidateReward(sub)
		if err != nil {
			t.Errorf("percentage %v should pass: %v", value, err)
			continue
		}
		if cfg.ReferrerValue != value {
			t.Errorf("ReferrerValue = %v, expected %v", cfg.ReferrerValue, value)
		}
	}
}

func TestValidateReward_FixedRequiresPositiveAmountAndCurrency(t *testing.T) {
	sub := RewardSubmission{Referrer: enabledSide(models.RewardFixed, 0, "USD")}
	if _, err := ValidateReward(sub); err == nil {
		t.Error("zero fixed amount should be rejected")
	}

	sub = RewardSubmission{Referrer: enabledSide(models.RewardFixed, 25, "XYZ")}
	if _, err := ValidateReward(sub); err == nil {
		t.Error("unknown currency should be rejected")
	}

	sub = RewardSubmission{Referrer: enabledSide(models.RewardFixed, 25, "usd")}
	cfg, err := ValidateReward(sub)
	if err != nil {
		t.Fatalf("lowercase currency should be accepted: %v", err)
	}
	if cfg.ReferrerCurrency != "USD" {
		t.Errorf("currency should be normalized to upper case, got %q", cfg.ReferrerCurrency)
	}
}

func TestValidateReward_UnknownValueType(t *testing.T) {
	sub := RewardSubmission{Referrer: enabledSide("points", 10, "")}
	if _, err := ValidateReward(sub); err == nil {
		t.Error("unknown value type should be rejected")
	}
}

func TestValidateReward_ValidityBounds(t *testing.T) {
	base := RewardSubmission{Referee: enabledSide(models.RewardFixed, 10, "EUR")}

	for _, days := range []int{-1, 366, 400} {
		sub := base
		sub.ValidityDays = days
		if _, err := ValidateReward(sub); err == nil {
			t.Errorf("validity of %d days should be rejected", days)
		}
	}

	sub := base
	sub.ValidityDays = 90
	cfg, err := ValidateReward(sub)
	if err != nil {
		t.Fatalf("validity of 90 days should pass: %v", err)
	}
	if cfg.RefereeValidityDays != 90 {
		t.Errorf("RefereeValidityDays = %d, expected 90", cfg.RefereeValidityDays)
	}

	// zero means "not set" and falls back to the default
	cfg, err = ValidateReward(base)
	if err != nil {
		t.Fatalf("unset validity should pass: %v", err)
	}
	if cfg.RefereeValidityDays != defaultValidityDays {
		t.Errorf("RefereeValidityDays = %d, expected default %d", cfg.RefereeValidityDays, defaultValidityDays)
	}
}

func TestValidateReward_MinPurchase(t *testing.T) {
	negative := -5.0
	sub := RewardSubmission{
		Referee:     enabledSide(models.RewardFixed, 10, "GBP"),
		MinPurchase: &negative,
	}
	if _, err := ValidateReward(sub); err == nil {
		t.Error("negative minimum purchase should be rejected")
	}

	threshold := 50.0
	sub.MinPurchase = &threshold
	cfg, err := ValidateReward(sub)
	if err != nil {
		t.Fatalf("minimum purchase of 50 should pass: %v", err)
	}
	if cfg.RefereeMinPurchase == nil || *cfg.RefereeMinPurchase != 50 {
		t.Error("RefereeMinPurchase should round-trip")
	}
}

func TestValidateReward_BothSides(t *testing.T) {
	sub := RewardSubmission{
		Referrer: enabledSide(models.RewardPercentage, 15, ""),
		Referee:  enabledSide(models.RewardFixed, 20, "USD"),
	}
	cfg, err := ValidateReward(sub)
	if err != nil {
		t.Fatalf("valid two-sided submission should pass: %v", err)
	}
	if !cfg.ReferrerEnabled || !cfg.RefereeEnabled {
		t.Error("both sides should be enabled")
	}
	if cfg.ReferrerValueType != models.RewardPercentage {
		t.Errorf("ReferrerValueType = %q", cfg.ReferrerValueType)
	}
	if cfg.RefereeValueType != models.RewardFixed {
		t.Errorf("RefereeValueType = %q", cfg.RefereeValueType)
	}
}

func TestValidateReward_PercentageCarriesNoCurrency(t *testing.T) {
	sub := RewardSubmission{
		Referrer: enabledSide(models.RewardPercentage, 15, "xyz junk"),
		Referee:  enabledSide(models.RewardPercentage, 20, "usd"),
	}
	cfg, err := ValidateReward(sub)
	if err != nil {
		t.Fatalf("percentage sides should validate regardless of currency: %v", err)
	}
	if cfg.ReferrerCurrency != "" {
		t.Errorf("referrer currency = %q, percentage rewards must persist none", cfg.ReferrerCurrency)
	}
	if cfg.RefereeCurrency != "" {
		t.Errorf("referee currency = %q, percentage rewards must persist none", cfg.RefereeCurrency)
	}
}

func TestValidateReward_MixedTypesCurrencyPerSide(t *testing.T) {
	sub := RewardSubmission{
		Referrer: enabledSide(models.RewardFixed, 25, "eur"),
		Referee:  enabledSide(models.RewardPercentage, 10, "eur"),
	}
	cfg, err := ValidateReward(sub)
	if err != nil {
		t.Fatalf("mixed submission should validate: %v", err)
	}
	if cfg.ReferrerCurrency != "EUR" {
		t.Errorf("fixed side currency = %q, want EUR", cfg.ReferrerCurrency)
	}
	if cfg.RefereeCurrency != "" {
		t.Errorf("percentage side currency = %q, want empty", cfg.RefereeCurrency)
	}
}
