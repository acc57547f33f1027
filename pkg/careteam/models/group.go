package models

import (
	"time"

	"gorm.io/gorm"
)

// Group represents a care team that collaborates over a shared set of patients.
// A group exists independently of its members; users can belong to many groups.
type Group struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	Name        string         `gorm:"not null" json:"name"`
	Description string         `json:"description"`
	MaxMembers  int            `gorm:"not null" json:"max_members"`
	MaxPatients int            `gorm:"not null" json:"max_patients"`

	// Relationships
	Members     []GroupMembership        `gorm:"foreignKey:GroupID" json:"members,omitempty"`
	Assignments []GroupPatientAssignment `gorm:"foreignKey:GroupID" json:"assignments,omitempty"`
	Invitations []GroupInvitation        `gorm:"foreignKey:GroupID" json:"invitations,omitempty"`
}
