package permissions

import (
	"testing"

	"github.com/carebridge/careteam/pkg/careteam/models"
)

func snapshot(rows ...models.GroupMembership) []models.GroupMembership {
	return rows
}

func membership(groupID, userID uint, role models.GroupRole) models.GroupMembership {
	return models.GroupMembership{GroupID: groupID, UserID: userID, Role: role}
}

func TestRoleOf(t *testing.T) {
	m := snapshot(
		membership(1, 10, models.GroupRoleAdmin),
		membership(2, 10, models.GroupRoleMember),
	)

	role, ok := RoleOf(m, 1)
	if !ok || role != models.GroupRoleAdmin {
		t.Errorf("Expected admin in group 1, got %q (ok=%v)", role, ok)
	}

	role, ok = RoleOf(m, 2)
	if !ok || role != models.GroupRoleMember {
		t.Errorf("Expected member in group 2, got %q (ok=%v)", role, ok)
	}

	if _, ok := RoleOf(m, 3); ok {
		t.Error("Expected no role in group 3")
	}
}

func TestIsAdminImpliesIsMember(t *testing.T) {
	snapshots := [][]models.GroupMembership{
		snapshot(),
		snapshot(membership(1, 10, models.GroupRoleAdmin)),
		snapshot(membership(1, 10, models.GroupRoleMember)),
		snapshot(membership(1, 10, models.GroupRoleAdmin), membership(2, 10, models.GroupRoleMember)),
	}

	for _, m := range snapshots {
		for _, groupID := range []uint{1, 2, 3} {
			if IsAdmin(m, groupID) && !IsMember(m, groupID) {
				t.Errorf("IsAdmin true but IsMember false for group %d in %+v", groupID, m)
			}
		}
	}
}

func TestAdminOnlyPredicates(t *testing.T) {
	admin := snapshot(membership(1, 10, models.GroupRoleAdmin))
	member := snapshot(membership(1, 10, models.GroupRoleMember))
	stranger := snapshot()

	checks := map[string]func([]models.GroupMembership, uint) bool{
		"CanManageGroup":    CanManageGroup,
		"CanInviteMembers":  CanInviteMembers,
		"CanAssignPatients": CanAssignPatients,
		"CanRemovePatients": CanRemovePatients,
	}

	for name, check := range checks {
		if !check(admin, 1) {
			t.Errorf("%s should allow an admin", name)
		}
		if check(member, 1) {
			t.Errorf("%s should deny a plain member", name)
		}
		if check(stranger, 1) {
			t.Errorf("%s should deny a non-member", name)
		}
		if check(admin, 2) {
			t.Errorf("%s should deny an admin of another group", name)
		}
	}
}

func TestAdminDenialReasons(t *testing.T) {
	if got := AdminDenial(snapshot(), 1); got != DenialNoMembership {
		t.Errorf("Expected DenialNoMembership, got %v", got)
	}
	if got := AdminDenial(snapshot(membership(1, 10, models.GroupRoleMember)), 1); got != DenialNotAdmin {
		t.Errorf("Expected DenialNotAdmin, got %v", got)
	}
	if got := AdminDenial(snapshot(membership(1, 10, models.GroupRoleAdmin)), 1); got != DenialNone {
		t.Errorf("Expected DenialNone, got %v", got)
	}
}

func TestCanRemoveMember(t *testing.T) {
	admin := snapshot(membership(1, 10, models.GroupRoleAdmin))
	member := snapshot(membership(1, 20, models.GroupRoleMember))
	stranger := snapshot()

	// Admin can remove anyone
	if !CanRemoveMember(admin, 1, 20, 10) {
		t.Error("Admin should be able to remove another member")
	}
	if !CanRemoveMember(admin, 1, 10, 10) {
		t.Error("Admin should be able to remove themselves")
	}

	// Any member can remove themselves, regardless of role
	if !CanRemoveMember(member, 1, 20, 20) {
		t.Error("Member should be able to remove themselves")
	}

	// A plain member cannot remove someone else
	if CanRemoveMember(member, 1, 10, 20) {
		t.Error("Member should not be able to remove another member")
	}

	// A non-member is denied everything, including self-removal
	if CanRemoveMember(stranger, 1, 30, 30) {
		t.Error("Non-member should not be able to self-remove")
	}
}

func TestCanChangeMemberRole(t *testing.T) {
	admin := snapshot(membership(1, 10, models.GroupRoleAdmin))
	member := snapshot(membership(1, 20, models.GroupRoleMember))

	if !CanChangeMemberRole(admin, 1, 20, 10) {
		t.Error("Admin should be able to change another member's role")
	}

	// Self-role-change is blocked even for admins
	if CanChangeMemberRole(admin, 1, 10, 10) {
		t.Error("Admin should not be able to change their own role")
	}

	// Non-admin member is denied on others and on themselves
	if CanChangeMemberRole(member, 1, 10, 20) {
		t.Error("Member should not be able to change another member's role")
	}
	if CanChangeMemberRole(member, 1, 20, 20) {
		t.Error("Member should not be able to change their own role")
	}
}
