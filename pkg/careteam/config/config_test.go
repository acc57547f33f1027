package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Port)
	}
	if cfg.InvitationTTL != 168*time.Hour {
		t.Errorf("Expected default TTL 168h, got %s", cfg.InvitationTTL)
	}
	if cfg.InviteResponseLimit != 100 || cfg.InviteResponseWindow != 60*time.Second {
		t.Errorf("Expected default rate window 100/60s, got %d/%s",
			cfg.InviteResponseLimit, cfg.InviteResponseWindow)
	}
}

func TestLoadRejectsZeroResponseLimit(t *testing.T) {
	t.Setenv("CARETEAM_INVITE_RESPONSE_LIMIT", "0")

	if _, err := Load(); err == nil {
		t.Error("Expected error for zero response limit")
	}
}

func TestLoadRejectsZeroResponseWindow(t *testing.T) {
	t.Setenv("CARETEAM_INVITE_RESPONSE_WINDOW", "0s")

	if _, err := Load(); err == nil {
		t.Error("Expected error for zero response window")
	}
}
