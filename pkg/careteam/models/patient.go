package models

import (
	"time"

	"gorm.io/gorm"
)

// Patient is a minimal patient record; clinical data lives in the external
// backend, the core only tracks identity for group assignment.
type Patient struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Name      string         `gorm:"not null" json:"name"`
	MRN       string         `gorm:"uniqueIndex;not null" json:"mrn"`
	CreatedBy uint           `json:"created_by"`
}
