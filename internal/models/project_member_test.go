package models

import "testing"

func TestParseRole_Valid(t *testing.T) {
	cases := map[string]Role{
		"owner":  RoleOwner,
		"admin":  RoleAdmin,
		"member": RoleMember,
	}

	for input, expected := range cases {
		role, err := ParseRole(input)
		if err != nil {
			t.Errorf("ParseRole(%q) returned error: %v", input, err)
		}
		if role != expected {
			t.Errorf("ParseRole(%q) = %q, expected %q", input, role, expected)
		}
	}
}

func TestParseRole_Invalid(t *testing.T) {
	for _, input := range []string{"", "superadmin", "OWNER ", "guest", "root"} {
		if _, err := ParseRole(input); err == nil {
			t.Errorf("ParseRole(%q) should fail", input)
		}
	}
}

func TestRole_CanManageMembers(t *testing.T) {
	if !RoleOwner.CanManageMembers() {
		t.Error("owner should manage members")
	}
	if !RoleAdmin.CanManageMembers() {
		t.Error("admin should manage members")
	}
	if RoleMember.CanManageMembers() {
		t.Error("member should not manage members")
	}
}

func TestRole_CanGrant(t *testing.T) {
	if !RoleOwner.CanGrant(RoleOwner) {
		t.Error("owner should grant owner")
	}
	if !RoleOwner.CanGrant(RoleAdmin) {
		t.Error("owner should grant admin")
	}
	if RoleAdmin.CanGrant(RoleOwner) {
		t.Error("admin should not grant owner")
	}
	if !RoleAdmin.CanGrant(RoleAdmin) {
		t.Error("admin should grant admin")
	}
	if !RoleAdmin.CanGrant(RoleMember) {
		t.Error("admin should grant member")
	}
}
