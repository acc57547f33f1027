package patients

import (
	"github.com/carebridge/careteam/pkg/careteam/errs"
	"github.com/carebridge/careteam/pkg/careteam/models"
	"github.com/carebridge/careteam/pkg/careteam/permissions"
	"github.com/carebridge/careteam/pkg/careteam/store"
	"go.uber.org/zap"
)

// Manager owns patient-to-group assignment mutations. Both operations are
// admin only.
type Manager struct {
	store store.Store
	log   *zap.Logger
}

// NewManager creates a patient assignment manager.
func NewManager(s store.Store, log *zap.Logger) *Manager {
	return &Manager{store: s, log: log}
}

func (m *Manager) denied(op string, groupID, actorID uint, reason permissions.Denial) error {
	m.log.Warn("patient assignment denied",
		zap.String("op", op),
		zap.Uint("group_id", groupID),
		zap.Uint("actor_id", actorID),
		zap.String("reason", reason.String()),
	)
	return errs.ErrForbidden
}

// Assign links a patient to a group. Re-assigning an already-assigned pair
// fails with ErrAlreadyAssigned rather than silently succeeding, so callers
// can tell a no-op from a new assignment.
func (m *Manager) Assign(groupID, patientID, actorID uint) error {
	actorMemberships, err := m.store.MembershipsOf(actorID)
	if err != nil {
		return err
	}
	if !permissions.CanAssignPatients(actorMemberships, groupID) {
		return m.denied("assign", groupID, actorID, permissions.AdminDenial(actorMemberships, groupID))
	}

	group, err := m.store.Group(groupID)
	if err != nil {
		return err
	}
	if group == nil {
		return errs.ErrNotFound
	}

	patient, err := m.store.Patient(patientID)
	if err != nil {
		return err
	}
	if patient == nil {
		return errs.ErrNotFound
	}

	existing, err := m.store.Assignment(groupID, patientID)
	if err != nil {
		return err
	}
	if existing != nil {
		return errs.ErrAlreadyAssigned
	}

	count, err := m.store.CountPatients(groupID)
	if err != nil {
		return err
	}
	if count >= int64(group.MaxPatients) {
		return errs.ErrCapacityExceeded
	}

	assignment := models.GroupPatientAssignment{
		GroupID:    groupID,
		PatientID:  patientID,
		AssignedBy: actorID,
	}
	if err := m.store.CreateAssignment(&assignment); err != nil {
		return err
	}
	m.log.Info("patient assigned",
		zap.Uint("group_id", groupID),
		zap.Uint("patient_id", patientID),
		zap.Uint("actor_id", actorID),
	)
	return nil
}

// Unassign removes a patient from a group.
func (m *Manager) Unassign(groupID, patientID, actorID uint) error {
	actorMemberships, err := m.store.MembershipsOf(actorID)
	if err != nil {
		return err
	}
	if !permissions.CanRemovePatients(actorMemberships, groupID) {
		return m.denied("unassign", groupID, actorID, permissions.AdminDenial(actorMemberships, groupID))
	}

	rows, err := m.store.DeleteAssignment(groupID, patientID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return errs.ErrNotFound
	}
	m.log.Info("patient unassigned",
		zap.Uint("group_id", groupID),
		zap.Uint("patient_id", patientID),
		zap.Uint("actor_id", actorID),
	)
	return nil
}
