package store

import (
	"errors"
	"time"

	"github.com/carebridge/careteam/pkg/careteam/models"
	"gorm.io/gorm"
)

// GormStore implements Store on top of a *gorm.DB.
// Lookup methods return (nil, nil) when no row matches, so callers can map
// absence to their own NotFound error without depending on gorm.
type GormStore struct {
	db *gorm.DB
}

// New creates a store backed by the given database handle.
func New(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func first[T any](db *gorm.DB, query string, args ...interface{}) (*T, error) {
	var row T
	err := db.Where(query, args...).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (s *GormStore) UserByID(id uint) (*models.User, error) {
	return first[models.User](s.db, "id = ?", id)
}

func (s *GormStore) UserByEmail(email string) (*models.User, error) {
	return first[models.User](s.db, "email = ?", email)
}

func (s *GormStore) Group(groupID uint) (*models.Group, error) {
	return first[models.Group](s.db, "id = ?", groupID)
}

func (s *GormStore) CountMembers(groupID uint) (int64, error) {
	var n int64
	err := s.db.Model(&models.GroupMembership{}).Where("group_id = ?", groupID).Count(&n).Error
	return n, err
}

func (s *GormStore) CountAdmins(groupID uint) (int64, error) {
	var n int64
	err := s.db.Model(&models.GroupMembership{}).
		Where("group_id = ? AND role = ?", groupID, models.GroupRoleAdmin).Count(&n).Error
	return n, err
}

func (s *GormStore) CountPatients(groupID uint) (int64, error) {
	var n int64
	err := s.db.Model(&models.GroupPatientAssignment{}).Where("group_id = ?", groupID).Count(&n).Error
	return n, err
}

func (s *GormStore) MembershipsOf(userID uint) ([]models.GroupMembership, error) {
	var rows []models.GroupMembership
	err := s.db.Where("user_id = ?", userID).Find(&rows).Error
	return rows, err
}

func (s *GormStore) Membership(groupID, userID uint) (*models.GroupMembership, error) {
	return first[models.GroupMembership](s.db, "group_id = ? AND user_id = ?", groupID, userID)
}

func (s *GormStore) CreateMembership(m *models.GroupMembership) error {
	return s.db.Create(m).Error
}

func (s *GormStore) SaveMembership(m *models.GroupMembership) error {
	return s.db.Save(m).Error
}

func (s *GormStore) DeleteMembership(groupID, userID uint) (int64, error) {
	res := s.db.Where("group_id = ? AND user_id = ?", groupID, userID).Delete(&models.GroupMembership{})
	return res.RowsAffected, res.Error
}

func (s *GormStore) Patient(patientID uint) (*models.Patient, error) {
	return first[models.Patient](s.db, "id = ?", patientID)
}

func (s *GormStore) Assignment(groupID, patientID uint) (*models.GroupPatientAssignment, error) {
	return first[models.GroupPatientAssignment](s.db, "group_id = ? AND patient_id = ?", groupID, patientID)
}

func (s *GormStore) CreateAssignment(a *models.GroupPatientAssignment) error {
	return s.db.Create(a).Error
}

func (s *GormStore) DeleteAssignment(groupID, patientID uint) (int64, error) {
	res := s.db.Where("group_id = ? AND patient_id = ?", groupID, patientID).Delete(&models.GroupPatientAssignment{})
	return res.RowsAffected, res.Error
}

func (s *GormStore) Invitation(id uint) (*models.GroupInvitation, error) {
	return first[models.GroupInvitation](s.db, "id = ?", id)
}

func (s *GormStore) PendingInvitation(groupID uint, email string, now time.Time) (*models.GroupInvitation, error) {
	return first[models.GroupInvitation](s.db,
		"group_id = ? AND email = ? AND accepted_at IS NULL AND declined_at IS NULL AND revoked_at IS NULL AND expires_at > ?",
		groupID, email, now)
}

func (s *GormStore) CreateInvitation(inv *models.GroupInvitation) error {
	return s.db.Create(inv).Error
}

// ResolveInvitation is the compare-and-set over the terminal timestamps:
// the UPDATE only matches while all three are unset, so exactly one caller
// can ever win the race on a given row.
func (s *GormStore) ResolveInvitation(id uint, column string, now time.Time) (bool, error) {
	res := s.db.Model(&models.GroupInvitation{}).
		Where("id = ? AND accepted_at IS NULL AND declined_at IS NULL AND revoked_at IS NULL", id).
		Update(column, now)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (s *GormStore) Transaction(fn func(tx Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}
