// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all tunables for the careteam server.
type Config struct {
	Port         string `env:"PORT" envDefault:"8080"`
	DatabasePath string `env:"CARETEAM_DB_PATH" envDefault:"careteam.db"`

	// InvitationTTL is how long a new invitation stays pending (default 7 days).
	InvitationTTL time.Duration `env:"CARETEAM_INVITATION_TTL" envDefault:"168h"`

	// Default capacities applied to newly created groups.
	DefaultMaxMembers  int `env:"CARETEAM_GROUP_MAX_MEMBERS" envDefault:"25"`
	DefaultMaxPatients int `env:"CARETEAM_GROUP_MAX_PATIENTS" envDefault:"200"`

	// Sliding-window limit on invitation responses, per actor.
	InviteResponseLimit  int           `env:"CARETEAM_INVITE_RESPONSE_LIMIT" envDefault:"100"`
	InviteResponseWindow time.Duration `env:"CARETEAM_INVITE_RESPONSE_WINDOW" envDefault:"60s"`
}

// Load parses the configuration from environment variables.
func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return cfg, err
	}
	if cfg.InviteResponseLimit < 1 {
		return cfg, fmt.Errorf("CARETEAM_INVITE_RESPONSE_LIMIT must be at least 1, got %d", cfg.InviteResponseLimit)
	}
	if cfg.InviteResponseWindow <= 0 {
		return cfg, fmt.Errorf("CARETEAM_INVITE_RESPONSE_WINDOW must be positive, got %s", cfg.InviteResponseWindow)
	}
	return cfg, nil
}
