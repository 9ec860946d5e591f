package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fantasytools/fpl-agent/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, ":8000", cfg.Addr)
	require.Equal(t, "https://fantasy.premierleague.com/api/", cfg.UpstreamBaseURL)
	require.Equal(t, 4*time.Hour, cfg.BootstrapTTL)
	require.Equal(t, 45*time.Minute, cfg.SessionTimeout)
	require.InDelta(t, 0.6, cfg.ResolveThreshold, 0.001)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("FPL_ADDR", ":9999")
	t.Setenv("FPL_BOOTSTRAP_TTL", "2h")
	t.Setenv("FPL_PUBLIC_BASE_URL", "https://fpl.example.com")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, ":9999", cfg.Addr)
	require.Equal(t, 2*time.Hour, cfg.BootstrapTTL)
	require.Equal(t, "https://fpl.example.com", cfg.PublicBaseURL)
	// Untouched keys keep their defaults.
	require.Equal(t, 30*time.Minute, cfg.StandingsTTL)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: \":7777\"\nsession_timeout: 10m\n"), 0o600))
	t.Setenv("FPL_CONFIG", path)

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, ":7777", cfg.Addr)
	require.Equal(t, 10*time.Minute, cfg.SessionTimeout)
}

func TestLoadEnvBeatsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: \":7777\"\n"), 0o600))
	t.Setenv("FPL_CONFIG", path)
	t.Setenv("FPL_ADDR", ":8888")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, ":8888", cfg.Addr)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("FPL_BOOTSTRAP_TTL", "-1h")

	_, err := config.Load()
	require.Error(t, err)
}
