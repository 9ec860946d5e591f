package config

import "time"

// Config holds every tunable of the agent process.
type Config struct {
	AppName string `koanf:"app_name"`
	Env     string `koanf:"env"`

	// Addr is the listen address of the login/metrics HTTP server.
	Addr string `koanf:"addr"`
	// PublicBaseURL is the externally reachable root of the login
	// server, embedded in the links handed to the user.
	PublicBaseURL string `koanf:"public_base_url"`

	// UpstreamBaseURL is the FPL API root.
	UpstreamBaseURL string `koanf:"upstream_base_url"`

	// BootstrapTTL bounds staleness of the bulk reference dataset.
	BootstrapTTL time.Duration `koanf:"bootstrap_ttl"`
	// StandingsTTL bounds staleness of league standings pages.
	StandingsTTL time.Duration `koanf:"standings_ttl"`
	// SummaryTTL bounds staleness of per-player detail payloads.
	SummaryTTL time.Duration `koanf:"summary_ttl"`

	// SessionTimeout expires logins and sessions after inactivity.
	SessionTimeout time.Duration `koanf:"session_timeout"`
	// SweepInterval is how often expired sessions are collected.
	SweepInterval time.Duration `koanf:"sweep_interval"`

	// ResolveThreshold is the minimum acceptable name-match score.
	ResolveThreshold float64 `koanf:"resolve_threshold"`
}

// New returns the default configuration.
func New() *Config {
	return &Config{
		AppName:          "FPL Agent",
		Env:              "production",
		Addr:             ":8000",
		PublicBaseURL:    "http://localhost:8000",
		UpstreamBaseURL:  "https://fantasy.premierleague.com/api/",
		BootstrapTTL:     4 * time.Hour,
		StandingsTTL:     30 * time.Minute,
		SummaryTTL:       1 * time.Hour,
		SessionTimeout:   45 * time.Minute,
		SweepInterval:    5 * time.Minute,
		ResolveThreshold: 0.6,
	}
}
