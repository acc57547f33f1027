package groups

import (
	"github.com/carebridge/careteam/pkg/careteam/errs"
	"github.com/carebridge/careteam/pkg/careteam/models"
	"github.com/carebridge/careteam/pkg/careteam/permissions"
	"github.com/carebridge/careteam/pkg/careteam/store"
	"go.uber.org/zap"
)

// Manager owns membership mutations. Every operation loads a fresh
// membership snapshot for the actor and consults the permissions package
// before touching storage.
type Manager struct {
	store store.Store
	log   *zap.Logger
}

// NewManager creates a membership manager.
func NewManager(s store.Store, log *zap.Logger) *Manager {
	return &Manager{store: s, log: log}
}

func (m *Manager) denied(op string, groupID, actorID uint, reason permissions.Denial) error {
	m.log.Warn("membership operation denied",
		zap.String("op", op),
		zap.Uint("group_id", groupID),
		zap.Uint("actor_id", actorID),
		zap.String("reason", reason.String()),
	)
	return errs.ErrForbidden
}

// AddMember adds a user to a group. Admin only. Fails with ErrAlreadyMember
// if a membership row already exists and ErrCapacityExceeded when the group
// is full.
func (m *Manager) AddMember(groupID, userID uint, role models.GroupRole, actorID uint) error {
	actorMemberships, err := m.store.MembershipsOf(actorID)
	if err != nil {
		return err
	}
	if !permissions.IsAdmin(actorMemberships, groupID) {
		return m.denied("add_member", groupID, actorID, permissions.AdminDenial(actorMemberships, groupID))
	}

	group, err := m.store.Group(groupID)
	if err != nil {
		return err
	}
	if group == nil {
		return errs.ErrNotFound
	}

	existing, err := m.store.Membership(groupID, userID)
	if err != nil {
		return err
	}
	if existing != nil {
		return errs.ErrAlreadyMember
	}

	count, err := m.store.CountMembers(groupID)
	if err != nil {
		return err
	}
	if count >= int64(group.MaxMembers) {
		return errs.ErrCapacityExceeded
	}

	membership := models.GroupMembership{
		GroupID: groupID,
		UserID:  userID,
		Role:    role,
	}
	if err := m.store.CreateMembership(&membership); err != nil {
		return err
	}
	m.log.Info("member added",
		zap.Uint("group_id", groupID),
		zap.Uint("user_id", userID),
		zap.String("role", string(role)),
		zap.Uint("actor_id", actorID),
	)
	return nil
}

// RemoveMember removes a user from a group. Admins may remove anyone; any
// member may remove themselves. Removing the group's last admin is refused.
func (m *Manager) RemoveMember(groupID, userID, actorID uint) error {
	actorMemberships, err := m.store.MembershipsOf(actorID)
	if err != nil {
		return err
	}
	if !permissions.CanRemoveMember(actorMemberships, groupID, userID, actorID) {
		return m.denied("remove_member", groupID, actorID, permissions.AdminDenial(actorMemberships, groupID))
	}

	target, err := m.store.Membership(groupID, userID)
	if err != nil {
		return err
	}
	if target == nil {
		return errs.ErrNotFound
	}

	if target.Role == models.GroupRoleAdmin {
		admins, err := m.store.CountAdmins(groupID)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return errs.ErrLastAdmin
		}
	}

	rows, err := m.store.DeleteMembership(groupID, userID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return errs.ErrNotFound
	}
	m.log.Info("member removed",
		zap.Uint("group_id", groupID),
		zap.Uint("user_id", userID),
		zap.Uint("actor_id", actorID),
	)
	return nil
}

// ChangeRole changes a member's role. Admin only, and never the actor's own
// role. A request for the role the member already holds succeeds without
// touching storage.
func (m *Manager) ChangeRole(groupID, userID uint, newRole models.GroupRole, actorID uint) error {
	actorMemberships, err := m.store.MembershipsOf(actorID)
	if err != nil {
		return err
	}
	if !permissions.CanChangeMemberRole(actorMemberships, groupID, userID, actorID) {
		return m.denied("change_role", groupID, actorID, permissions.AdminDenial(actorMemberships, groupID))
	}

	target, err := m.store.Membership(groupID, userID)
	if err != nil {
		return err
	}
	if target == nil {
		return errs.ErrNotFound
	}
	if target.Role == newRole {
		return nil
	}

	target.Role = newRole
	if err := m.store.SaveMembership(target); err != nil {
		return err
	}
	m.log.Info("member role changed",
		zap.Uint("group_id", groupID),
		zap.Uint("user_id", userID),
		zap.String("role", string(newRole)),
		zap.Uint("actor_id", actorID),
	)
	return nil
}
