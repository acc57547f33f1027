package invitations

import (
	"strings"
	"time"

	"github.com/carebridge/careteam/pkg/careteam/errs"
	"github.com/carebridge/careteam/pkg/careteam/models"
	"github.com/carebridge/careteam/pkg/careteam/permissions"
	"github.com/carebridge/careteam/pkg/careteam/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Manager owns the invitation state machine: pending until exactly one of
// accept, decline, revoke or expiry resolves it. Expiry is never written;
// it is recomputed from expires_at on every read.
type Manager struct {
	store   store.Store
	limiter RateLimiter
	ttl     time.Duration
	log     *zap.Logger
	now     func() time.Time
}

// NewManager creates an invitation lifecycle manager. ttl is how long new
// invitations stay pending.
func NewManager(s store.Store, limiter RateLimiter, ttl time.Duration, log *zap.Logger) *Manager {
	return &Manager{store: s, limiter: limiter, ttl: ttl, log: log, now: time.Now}
}

func (m *Manager) denied(op string, groupID, actorID uint, reason permissions.Denial) error {
	m.log.Warn("invitation operation denied",
		zap.String("op", op),
		zap.Uint("group_id", groupID),
		zap.Uint("actor_id", actorID),
		zap.String("reason", reason.String()),
	)
	return errs.ErrForbidden
}

// pendingOnly maps a non-pending status to the error the caller receives.
func pendingOnly(inv *models.GroupInvitation, now time.Time) error {
	switch inv.Status(now) {
	case models.InvitationPending:
		return nil
	case models.InvitationExpired:
		return errs.ErrExpired
	default:
		return errs.ErrAlreadyResolved
	}
}

// Create issues a new invitation. Admin only. At most one pending invitation
// may exist per (group, email); resolved or expired ones don't count.
func (m *Manager) Create(groupID uint, email string, role models.GroupRole, actorID uint) (*models.GroupInvitation, error) {
	actorMemberships, err := m.store.MembershipsOf(actorID)
	if err != nil {
		return nil, err
	}
	if !permissions.CanInviteMembers(actorMemberships, groupID) {
		return nil, m.denied("create", groupID, actorID, permissions.AdminDenial(actorMemberships, groupID))
	}

	group, err := m.store.Group(groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, errs.ErrNotFound
	}

	email = strings.ToLower(strings.TrimSpace(email))
	now := m.now()

	pending, err := m.store.PendingInvitation(groupID, email, now)
	if err != nil {
		return nil, err
	}
	if pending != nil {
		return nil, errs.ErrDuplicateInvitation
	}

	inv := models.GroupInvitation{
		GroupID:   groupID,
		Email:     email,
		Role:      role,
		Token:     uuid.NewString(),
		InvitedBy: actorID,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.store.CreateInvitation(&inv); err != nil {
		return nil, err
	}
	m.log.Info("invitation created",
		zap.Uint("group_id", groupID),
		zap.Uint("invitation_id", inv.ID),
		zap.String("email", email),
		zap.Uint("actor_id", actorID),
	)
	return &inv, nil
}

// Accept resolves a pending invitation and creates the membership it
// promised. The two writes are one transaction: if the group is full (or the
// invitee already joined) the resolution rolls back and the invitation stays
// pending. A concurrent resolution surfaces as ErrAlreadyResolved.
func (m *Manager) Accept(invitationID, actorID uint) error {
	if !m.limiter.Allow(actorID) {
		return errs.ErrRateLimited
	}

	actor, err := m.store.UserByID(actorID)
	if err != nil {
		return err
	}
	if actor == nil {
		return errs.ErrNotFound
	}

	inv, err := m.store.Invitation(invitationID)
	if err != nil {
		return err
	}
	if inv == nil {
		return errs.ErrNotFound
	}
	if !strings.EqualFold(inv.Email, actor.Email) {
		m.log.Warn("invitation operation denied",
			zap.String("op", "accept"),
			zap.Uint("invitation_id", invitationID),
			zap.Uint("actor_id", actorID),
			zap.String("reason", "invitation addressed to another user"),
		)
		return errs.ErrForbidden
	}

	now := m.now()
	if err := pendingOnly(inv, now); err != nil {
		return err
	}

	err = m.store.Transaction(func(tx store.Store) error {
		ok, err := tx.ResolveInvitation(inv.ID, store.ResolveAccepted, now)
		if err != nil {
			return err
		}
		if !ok {
			return errs.ErrAlreadyResolved
		}

		group, err := tx.Group(inv.GroupID)
		if err != nil {
			return err
		}
		if group == nil {
			return errs.ErrNotFound
		}

		existing, err := tx.Membership(inv.GroupID, actorID)
		if err != nil {
			return err
		}
		if existing != nil {
			return errs.ErrAlreadyMember
		}

		count, err := tx.CountMembers(inv.GroupID)
		if err != nil {
			return err
		}
		if count >= int64(group.MaxMembers) {
			return errs.ErrCapacityExceeded
		}

		invitedBy := inv.InvitedBy
		return tx.CreateMembership(&models.GroupMembership{
			GroupID:   inv.GroupID,
			UserID:    actorID,
			Role:      inv.Role,
			InvitedBy: &invitedBy,
		})
	})
	if err != nil {
		return err
	}

	m.log.Info("invitation accepted",
		zap.Uint("invitation_id", inv.ID),
		zap.Uint("group_id", inv.GroupID),
		zap.Uint("actor_id", actorID),
	)
	return nil
}

// Decline resolves a pending invitation with no membership side effect.
func (m *Manager) Decline(invitationID, actorID uint) error {
	if !m.limiter.Allow(actorID) {
		return errs.ErrRateLimited
	}

	actor, err := m.store.UserByID(actorID)
	if err != nil {
		return err
	}
	if actor == nil {
		return errs.ErrNotFound
	}

	inv, err := m.store.Invitation(invitationID)
	if err != nil {
		return err
	}
	if inv == nil {
		return errs.ErrNotFound
	}
	if !strings.EqualFold(inv.Email, actor.Email) {
		m.log.Warn("invitation operation denied",
			zap.String("op", "decline"),
			zap.Uint("invitation_id", invitationID),
			zap.Uint("actor_id", actorID),
			zap.String("reason", "invitation addressed to another user"),
		)
		return errs.ErrForbidden
	}

	now := m.now()
	if err := pendingOnly(inv, now); err != nil {
		return err
	}

	ok, err := m.store.ResolveInvitation(inv.ID, store.ResolveDeclined, now)
	if err != nil {
		return err
	}
	if !ok {
		return errs.ErrAlreadyResolved
	}

	m.log.Info("invitation declined",
		zap.Uint("invitation_id", inv.ID),
		zap.Uint("group_id", inv.GroupID),
		zap.Uint("actor_id", actorID),
	)
	return nil
}

// Revoke resolves a pending invitation on behalf of the group. Admin of the
// invitation's group only; not rate limited, the window covers invitee
// responses.
func (m *Manager) Revoke(invitationID, actorID uint) error {
	inv, err := m.store.Invitation(invitationID)
	if err != nil {
		return err
	}
	if inv == nil {
		return errs.ErrNotFound
	}

	actorMemberships, err := m.store.MembershipsOf(actorID)
	if err != nil {
		return err
	}
	if !permissions.CanInviteMembers(actorMemberships, inv.GroupID) {
		return m.denied("revoke", inv.GroupID, actorID, permissions.AdminDenial(actorMemberships, inv.GroupID))
	}

	now := m.now()
	if err := pendingOnly(inv, now); err != nil {
		return err
	}

	ok, err := m.store.ResolveInvitation(inv.ID, store.ResolveRevoked, now)
	if err != nil {
		return err
	}
	if !ok {
		return errs.ErrAlreadyResolved
	}

	m.log.Info("invitation revoked",
		zap.Uint("invitation_id", inv.ID),
		zap.Uint("group_id", inv.GroupID),
		zap.Uint("actor_id", actorID),
	)
	return nil
}
