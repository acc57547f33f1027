package models

import (
	"testing"
	"time"
)

func TestInvitationStatusDerivation(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)
	resolved := now.Add(-30 * time.Minute)

	tests := []struct {
		name string
		inv  GroupInvitation
		want InvitationStatus
	}{
		{"pending before deadline", GroupInvitation{ExpiresAt: future}, InvitationPending},
		{"expired after deadline", GroupInvitation{ExpiresAt: past}, InvitationExpired},
		{"expired exactly at deadline", GroupInvitation{ExpiresAt: now}, InvitationExpired},
		{"accepted", GroupInvitation{ExpiresAt: future, AcceptedAt: &resolved}, InvitationAccepted},
		{"declined", GroupInvitation{ExpiresAt: future, DeclinedAt: &resolved}, InvitationDeclined},
		{"revoked", GroupInvitation{ExpiresAt: future, RevokedAt: &resolved}, InvitationRevoked},
		// A resolution written before the deadline outlives it
		{"accepted stays accepted past deadline", GroupInvitation{ExpiresAt: past, AcceptedAt: &resolved}, InvitationAccepted},
		{"declined stays declined past deadline", GroupInvitation{ExpiresAt: past, DeclinedAt: &resolved}, InvitationDeclined},
		{"revoked stays revoked past deadline", GroupInvitation{ExpiresAt: past, RevokedAt: &resolved}, InvitationRevoked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.inv.Status(now); got != tt.want {
				t.Errorf("Status() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInvitationStatusIsExclusive(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)
	resolved := now.Add(-time.Minute)

	// Exactly one of the five statuses must hold at any evaluation instant.
	invs := []GroupInvitation{
		{ExpiresAt: future},
		{ExpiresAt: past},
		{ExpiresAt: future, AcceptedAt: &resolved},
		{ExpiresAt: future, DeclinedAt: &resolved},
		{ExpiresAt: future, RevokedAt: &resolved},
		{ExpiresAt: past, AcceptedAt: &resolved},
	}
	all := []InvitationStatus{
		InvitationPending, InvitationAccepted, InvitationDeclined,
		InvitationRevoked, InvitationExpired,
	}

	for i, inv := range invs {
		got := inv.Status(now)
		matches := 0
		for _, s := range all {
			if got == s {
				matches++
			}
		}
		if matches != 1 {
			t.Errorf("invitation %d: status %q matched %d variants", i, got, matches)
		}
	}
}
