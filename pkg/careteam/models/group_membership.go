package models

import (
	"time"
)

// GroupRole represents a user's role within a specific care team
type GroupRole string

const (
	GroupRoleAdmin  GroupRole = "admin"
	GroupRoleMember GroupRole = "member"
)

// GroupMembership represents the many-to-many relationship between users and groups.
// At most one membership row exists per (group, user) pair. Rows are deleted
// outright on removal so the pair can be recreated later.
type GroupMembership struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"joined_at"`
	UpdatedAt time.Time `json:"updated_at"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_group" json:"user_id"`
	GroupID   uint      `gorm:"not null;uniqueIndex:idx_user_group" json:"group_id"`
	Role      GroupRole `gorm:"type:varchar(20);default:'member'" json:"role"`
	InvitedBy *uint     `json:"invited_by,omitempty"`

	// Relationships
	User  User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Group Group `gorm:"foreignKey:GroupID" json:"group,omitempty"`
}
