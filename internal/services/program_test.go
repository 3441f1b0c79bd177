package services

import (
	"encoding/json"
	"testing"

	"github.com/BINU242/refref/internal/models"
	"github.com/BINU242/refref/pkg/response"
)

func TestProgram_MemberCallerForbiddenOnWrites(t *testing.T) {
	// The role gate runs before any query, so no database is needed.
	svc := NewProgramService(nil)
	member := Actor{UserID: 9, Role: models.RoleMember}
	payload := json.RawMessage(`{"theme":"light"}`)

	calls := map[string]func() error{
		"Create": func() error {
			_, err := svc.Create(1, member, "spring launch")
			return err
		},
		"Update": func() error {
			_, err := svc.Update(1, member, 2, "renamed")
			return err
		},
		"Delete": func() error {
			return svc.Delete(1, member, 2)
		},
		"SaveDesign": func() error {
			_, err := svc.SaveDesign(1, member, 2, payload)
			return err
		},
		"SaveNotifications": func() error {
			_, err := svc.SaveNotifications(1, member, 2, payload)
			return err
		},
		"SaveReward": func() error {
			_, err := svc.SaveReward(1, member, 2, RewardSubmission{})
			return err
		},
		"VerifyInstallation": func() error {
			_, err := svc.VerifyInstallation(1, member, 2)
			return err
		},
		"GoLive": func() error {
			_, err := svc.GoLive(1, member, 2)
			return err
		},
		"Pause": func() error {
			_, err := svc.Pause(1, member, 2)
			return err
		},
		"Resume": func() error {
			_, err := svc.Resume(1, member, 2)
			return err
		},
	}

	for name, call := range calls {
		err := call()
		if err == nil {
			t.Errorf("%s: member caller should be forbidden", name)
			continue
		}
		appErr, ok := err.(*response.AppError)
		if !ok {
			t.Fatalf("%s: expected AppError, got %T", name, err)
		}
		if appErr.HTTPStatus != 403 {
			t.Errorf("%s: expected 403, got %d", name, appErr.HTTPStatus)
		}
	}
}

func TestRequireManager_OwnerAndAdminPass(t *testing.T) {
	for _, role := range []models.Role{models.RoleOwner, models.RoleAdmin} {
		if err := requireManager(Actor{UserID: 1, Role: role}); err != nil {
			t.Errorf("%s should pass the manager gate: %v", role, err)
		}
	}
	if err := requireManager(Actor{UserID: 1, Role: models.RoleMember}); err == nil {
		t.Error("member should not pass the manager gate")
	}
}
