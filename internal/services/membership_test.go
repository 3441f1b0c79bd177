package services

import (
	"testing"

	"github.com/BINU242/refref/internal/models"
	"github.com/BINU242/refref/pkg/response"
)

func TestCheckPrivilegeFloor_SoleOwnerCannotStepDown(t *testing.T) {
	counts := RoleCounts{Owners: 1, Admins: 2, Members: 3, Total: 6}

	for _, next := range []models.Role{models.RoleAdmin, models.RoleMember} {
		err := checkPrivilegeFloor(models.RoleOwner, next, counts)
		if err == nil {
			t.Errorf("sole owner demotion to %s should be rejected", next)
			continue
		}
		appErr, ok := err.(*response.AppError)
		if !ok {
			t.Fatalf("expected AppError, got %T", err)
		}
		if appErr.HTTPStatus != 400 {
			t.Errorf("floor violation should be 400, got %d", appErr.HTTPStatus)
		}
	}
}

func TestCheckPrivilegeFloor_OwnerWithPeerCanStepDown(t *testing.T) {
	counts := RoleCounts{Owners: 2, Admins: 0, Members: 1, Total: 3}

	if err := checkPrivilegeFloor(models.RoleOwner, models.RoleMember, counts); err != nil {
		t.Errorf("owner with a second owner should be demotable: %v", err)
	}
}

func TestCheckPrivilegeFloor_SoleAdminOfOwnerlessProject(t *testing.T) {
	counts := RoleCounts{Owners: 0, Admins: 1, Members: 4, Total: 5}

	if err := checkPrivilegeFloor(models.RoleAdmin, models.RoleMember, counts); err == nil {
		t.Error("sole admin of an ownerless project must not drop to member")
	}

	// promoting that admin to owner is fine
	if err := checkPrivilegeFloor(models.RoleAdmin, models.RoleOwner, counts); err != nil {
		t.Errorf("promoting the sole admin to owner should pass: %v", err)
	}
}

func TestCheckPrivilegeFloor_AdminWithOwnerPresent(t *testing.T) {
	counts := RoleCounts{Owners: 1, Admins: 1, Members: 2, Total: 4}

	if err := checkPrivilegeFloor(models.RoleAdmin, models.RoleMember, counts); err != nil {
		t.Errorf("admin demotion with an owner present should pass: %v", err)
	}
}

func TestCheckPrivilegeFloor_MemberTransitionsUnrestricted(t *testing.T) {
	counts := RoleCounts{Owners: 1, Admins: 0, Members: 1, Total: 2}

	for _, next := range []models.Role{models.RoleOwner, models.RoleAdmin, models.RoleMember} {
		if err := checkPrivilegeFloor(models.RoleMember, next, counts); err != nil {
			t.Errorf("member transition to %s should pass: %v", next, err)
		}
	}
}

func TestActor_ManagementGates(t *testing.T) {
	cases := []struct {
		role      models.Role
		canManage bool
	}{
		{models.RoleOwner, true},
		{models.RoleAdmin, true},
		{models.RoleMember, false},
	}

	for _, tc := range cases {
		actor := Actor{UserID: 1, Role: tc.role}
		if got := actor.Role.CanManageMembers(); got != tc.canManage {
			t.Errorf("%s CanManageMembers = %v, expected %v", tc.role, got, tc.canManage)
		}
	}
}

func TestRoleCounts_Shape(t *testing.T) {
	counts := RoleCounts{Owners: 1, Admins: 2, Members: 3, Total: 6}

	if counts.Owners+counts.Admins+counts.Members != counts.Total {
		t.Error("per-role counts should sum to total")
	}
}

func TestCheckRemovalFloor_LastMember(t *testing.T) {
	// A single remaining member cannot be removed, whatever their role.
	cases := []struct {
		role   models.Role
		counts RoleCounts
	}{
		{models.RoleOwner, RoleCounts{Owners: 1, Total: 1}},
		{models.RoleAdmin, RoleCounts{Admins: 1, Total: 1}},
		{models.RoleMember, RoleCounts{Members: 1, Total: 1}},
	}

	for _, tc := range cases {
		err := checkRemovalFloor(tc.role, tc.counts)
		if err == nil {
			t.Errorf("removing the last member (role %s) should be rejected", tc.role)
			continue
		}
		appErr, ok := err.(*response.AppError)
		if !ok {
			t.Fatalf("expected AppError, got %T", err)
		}
		if appErr.HTTPStatus != 400 {
			t.Errorf("last-member removal should be 400, got %d", appErr.HTTPStatus)
		}
	}
}

func TestCheckRemovalFloor_PrivilegeFloorApplies(t *testing.T) {
	// Removing the sole owner of a multi-member project hits the owner floor.
	counts := RoleCounts{Owners: 1, Members: 3, Total: 4}
	if err := checkRemovalFloor(models.RoleOwner, counts); err == nil {
		t.Error("removing the sole owner should be rejected")
	}

	// A plain member of the same project can be removed.
	if err := checkRemovalFloor(models.RoleMember, counts); err != nil {
		t.Errorf("removing a plain member should pass: %v", err)
	}
}

func TestMembership_MemberCallerForbidden(t *testing.T) {
	// Role gates run before any query, so no database is needed.
	svc := NewMembershipService(nil, nil)
	member := Actor{UserID: 9, Role: models.RoleMember}

	calls := map[string]func() error{
		"ListInvitations": func() error {
			_, err := svc.ListInvitations(1, member)
			return err
		},
		"Invite": func() error {
			_, err := svc.Invite(1, member, &InviteRequest{Email: "new@example.com", Role: "member"})
			return err
		},
		"ChangeRole": func() error {
			return svc.ChangeRole(1, member, 2, "admin")
		},
		"Remove": func() error {
			return svc.Remove(1, member, 2)
		},
		"CancelInvitation": func() error {
			return svc.CancelInvitation(1, member, 5)
		},
		"ResendInvitation": func() error {
			_, err := svc.ResendInvitation(1, member, "new@example.com", "member")
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
