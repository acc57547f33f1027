// Package store is the durable-storage boundary for groups, memberships,
// patient assignments and invitations. Managers express read/write intents
// against the Store interface; the GORM implementation below is the only
// code that touches the database.
package store

import (
	"time"

	"github.com/carebridge/careteam/pkg/careteam/models"
)

// Terminal timestamp columns for ResolveInvitation.
const (
	ResolveAccepted = "accepted_at"
	ResolveDeclined = "declined_at"
	ResolveRevoked  = "revoked_at"
)

// Store is the repository consumed by the managers. Implementations must
// provide compare-and-set semantics for ResolveInvitation and honor
// Transaction rollback so invitation acceptance and membership creation
// are atomic.
type Store interface {
	// Users
	UserByID(id uint) (*models.User, error)
	UserByEmail(email string) (*models.User, error)

	// Groups
	Group(groupID uint) (*models.Group, error)
	CountMembers(groupID uint) (int64, error)
	CountAdmins(groupID uint) (int64, error)
	CountPatients(groupID uint) (int64, error)

	// Memberships
	MembershipsOf(userID uint) ([]models.GroupMembership, error)
	Membership(groupID, userID uint) (*models.GroupMembership, error)
	CreateMembership(m *models.GroupMembership) error
	SaveMembership(m *models.GroupMembership) error
	DeleteMembership(groupID, userID uint) (int64, error)

	// Patient assignments
	Patient(patientID uint) (*models.Patient, error)
	Assignment(groupID, patientID uint) (*models.GroupPatientAssignment, error)
	CreateAssignment(a *models.GroupPatientAssignment) error
	DeleteAssignment(groupID, patientID uint) (int64, error)

	// Invitations
	Invitation(id uint) (*models.GroupInvitation, error)
	PendingInvitation(groupID uint, email string, now time.Time) (*models.GroupInvitation, error)
	CreateInvitation(inv *models.GroupInvitation) error

	// ResolveInvitation sets one terminal timestamp column, conditional on
	// all three still being unset. Returns false when the row was already
	// resolved (or does not exist).
	ResolveInvitation(id uint, column string, now time.Time) (bool, error)

	// Transaction runs fn against a store bound to a single transaction;
	// any error rolls back every write made inside fn.
	Transaction(fn func(tx Store) error) error
}
