// Package permissions contains the pure authorization rules for care teams.
// Every function works over a pre-fetched membership snapshot and does no
// I/O, so each rule is independently unit-testable.
package permissions

import "github.com/carebridge/careteam/pkg/careteam/models"

// Denial explains why an admin-level check failed, so callers can log
// "not a member" and "member but not admin" distinctly.
type Denial int

const (
	DenialNone Denial = iota
	DenialNoMembership
	DenialNotAdmin
)

func (d Denial) String() string {
	switch d {
	case DenialNone:
		return "granted"
	case DenialNoMembership:
		return "no membership in group"
	case DenialNotAdmin:
		return "member but not admin"
	default:
		return "unknown"
	}
}

// RoleOf returns the actor's role in the group, if any.
func RoleOf(memberships []models.GroupMembership, groupID uint) (models.GroupRole, bool) {
	for _, m := range memberships {
		if m.GroupID == groupID {
			return m.Role, true
		}
	}
	return "", false
}

// IsMember reports whether any membership row matches the group.
func IsMember(memberships []models.GroupMembership, groupID uint) bool {
	_, ok := RoleOf(memberships, groupID)
	return ok
}

// IsAdmin reports whether the actor holds the admin role in the group.
func IsAdmin(memberships []models.GroupMembership, groupID uint) bool {
	role, ok := RoleOf(memberships, groupID)
	return ok && role == models.GroupRoleAdmin
}

// AdminDenial explains the outcome of an admin-level check.
func AdminDenial(memberships []models.GroupMembership, groupID uint) Denial {
	role, ok := RoleOf(memberships, groupID)
	switch {
	case !ok:
		return DenialNoMembership
	case role != models.GroupRoleAdmin:
		return DenialNotAdmin
	default:
		return DenialNone
	}
}

// CanManageGroup reports whether the actor may update group settings.
func CanManageGroup(memberships []models.GroupMembership, groupID uint) bool {
	return IsAdmin(memberships, groupID)
}

// CanInviteMembers reports whether the actor may create or revoke invitations.
func CanInviteMembers(memberships []models.GroupMembership, groupID uint) bool {
	return IsAdmin(memberships, groupID)
}

// CanAssignPatients reports whether the actor may assign patients to the group.
func CanAssignPatients(memberships []models.GroupMembership, groupID uint) bool {
	return IsAdmin(memberships, groupID)
}

// CanRemovePatients reports whether the actor may unassign patients.
func CanRemovePatients(memberships []models.GroupMembership, groupID uint) bool {
	return IsAdmin(memberships, groupID)
}

// CanRemoveMember reports whether the actor may remove the target member.
// Admins may remove anyone; any member may remove themselves. An actor with
// no membership in the group is denied even for self-removal.
func CanRemoveMember(memberships []models.GroupMembership, groupID, targetUserID, actorUserID uint) bool {
	if IsAdmin(memberships, groupID) {
		return true
	}
	return actorUserID == targetUserID && IsMember(memberships, groupID)
}

// CanChangeMemberRole reports whether the actor may change the target's role.
// Only admins may, and never their own.
func CanChangeMemberRole(memberships []models.GroupMembership, groupID, targetUserID, actorUserID uint) bool {
	if actorUserID == targetUserID {
		return false
	}
	return IsAdmin(memberships, groupID)
}
