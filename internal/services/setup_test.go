package services

import (
	"testing"

	"github.com/BINU242/refref/internal/models"
)

func stepFixture(completed ...string) []models.SetupStep {
	done := make(map[string]bool, len(completed))
	for _, key := range completed {
		done[key] = true
	}

	steps := make([]models.SetupStep, len(defaultSteps))
	copy(steps, defaultSteps)
	for i := range steps {
		steps[i].IsComplete = done[steps[i].Key]
	}
	return steps
}

func TestCanProceedToStep_FirstStepAlwaysReachable(t *testing.T) {
	steps := stepFixture()
	if !CanProceedToStep(steps, models.StepDesign) {
		t.Error("the first step should always be reachable")
	}
}

func TestCanProceedToStep_BlockedByIncompleteRequired(t *testing.T) {
	steps := stepFixture()
	if CanProceedToStep(steps, models.StepRewards) {
		t.Error("rewards should be blocked while design is incomplete")
	}
	if CanProceedToStep(steps, models.StepInstallation) {
		t.Error("installation should be blocked while earlier required steps are incomplete")
	}
}

func TestCanProceedToStep_UnlockedInOrder(t *testing.T) {
	steps := stepFixture(models.StepDesign)
	if !CanProceedToStep(steps, models.StepRewards) {
		t.Error("rewards should unlock once design is complete")
	}
	if CanProceedToStep(steps, models.StepInstallation) {
		t.Error("installation should stay blocked until rewards is complete")
	}

	steps = stepFixture(models.StepDesign, models.StepRewards)
	if !CanProceedToStep(steps, models.StepInstallation) {
		t.Error("installation should unlock once all required predecessors are complete")
	}
}

func TestCanProceedToStep_OptionalStepDoesNotGate(t *testing.T) {
	// notifications is optional: leaving it incomplete must not block installation
	steps := stepFixture(models.StepDesign, models.StepRewards)
	if !CanProceedToStep(steps, models.StepNotifications) {
		t.Error("notifications should be reachable")
	}
	if !CanProceedToStep(steps, models.StepInstallation) {
		t.Error("incomplete optional step must not gate later steps")
	}
}

func TestCanProceedToStep_UnknownStep(t *testing.T) {
	steps := stepFixture(models.StepDesign, models.StepRewards, models.StepInstallation)
	if CanProceedToStep(steps, "payout") {
		t.Error("unknown steps are never navigable")
	}
}

func TestPendingSteps(t *testing.T) {
	if got := PendingSteps(stepFixture()); got != 3 {
		t.Errorf("fresh program should have 3 pending required steps, got %d", got)
	}
	if got := PendingSteps(stepFixture(models.StepDesign, models.StepRewards)); got != 1 {
		t.Errorf("expected 1 pending step, got %d", got)
	}
	if got := PendingSteps(stepFixture(models.StepDesign, models.StepRewards, models.StepInstallation)); got != 0 {
		t.Errorf("expected 0 pending steps, got %d", got)
	}
}

func TestAllRequiredComplete_IgnoresOptional(t *testing.T) {
	// notifications never completed
	steps := stepFixture(models.StepDesign, models.StepRewards, models.StepInstallation)
	if !AllRequiredComplete(steps) {
		t.Error("optional steps must not block go-live")
	}

	steps = stepFixture(models.StepDesign, models.StepNotifications, models.StepInstallation)
	if AllRequiredComplete(steps) {
		t.Error("an incomplete required step must block go-live")
	}
}

func TestDefaultSteps_Ordering(t *testing.T) {
	for i := 1; i < len(defaultSteps); i++ {
		if defaultSteps[i].Position <= defaultSteps[i-1].Position {
			t.Fatalf("default steps out of order at index %d", i)
		}
	}
	if defaultSteps[0].Key != models.StepDesign {
		t.Errorf("setup should start with design, got %s", defaultSteps[0].Key)
	}
	if defaultSteps[len(defaultSteps)-1].Key != models.StepInstallation {
		t.Errorf("setup should end with installation, got %s", defaultSteps[len(defaultSteps)-1].Key)
	}
}
