package models

import (
	"time"
)

// GroupPatientAssignment links a patient to a care team. At most one active
// assignment exists per (group, patient) pair; unassignment deletes the row
// outright so the pair can be reassigned later.
type GroupPatientAssignment struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	CreatedAt  time.Time `json:"assigned_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	GroupID    uint      `gorm:"not null;uniqueIndex:idx_group_patient" json:"group_id"`
	PatientID  uint      `gorm:"not null;uniqueIndex:idx_group_patient" json:"patient_id"`
	AssignedBy uint      `json:"assigned_by"`

	// Relationships
	Group   Group   `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	Patient Patient `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
}
