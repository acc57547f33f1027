package models

import (
	"time"
)

// InvitationStatus is derived from the invitation's timestamps at read time;
// it is never stored, so state and timestamps cannot diverge.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
	InvitationRevoked  InvitationStatus = "revoked"
	InvitationExpired  InvitationStatus = "expired"
)

// GroupInvitation is a time-bounded offer of group membership. The row is
// immutable except for the single terminal timestamp it eventually receives;
// the storage layer guards that write with a compare-and-set over all three
// terminal columns.
type GroupInvitation struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	GroupID   uint      `gorm:"not null;index" json:"group_id"`
	Email     string    `gorm:"not null;index" json:"email"`
	Role      GroupRole `gorm:"type:varchar(20);default:'member'" json:"role"`
	Token     string    `gorm:"uniqueIndex;not null" json:"token"`
	InvitedBy uint      `gorm:"not null" json:"invited_by"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`

	AcceptedAt *time.Time `json:"accepted_at,omitempty"`
	DeclinedAt *time.Time `json:"declined_at,omitempty"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`

	// Relationships
	Group Group `gorm:"foreignKey:GroupID" json:"group,omitempty"`
}

// Status computes the invitation status at the given instant. Terminal
// timestamps win over expiry: an invitation resolved before its deadline
// stays resolved.
func (i *GroupInvitation) Status(now time.Time) InvitationStatus {
	switch {
	case i.AcceptedAt != nil:
		return InvitationAccepted
	case i.DeclinedAt != nil:
		return InvitationDeclined
	case i.RevokedAt != nil:
		return InvitationRevoked
	case !now.Before(i.ExpiresAt):
		return InvitationExpired
	default:
		return InvitationPending
	}
}
