package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if FPL_CONFIG is set
//  3. env (prefix FPL_)
func Load() (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("FPL_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "failed to load config file %s", path)
		}
	}

	// Environment variables: FPL_ADDR, FPL_BOOTSTRAP_TTL, ...
	// Underscores are preserved to match the koanf tags on the struct.
	envProvider := env.Provider("FPL_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "fpl_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, errors.Wrap(err, "failed to load environment")
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	if cfg.Addr == "" {
		return nil, errors.New("addr must not be empty")
	}
	if cfg.BootstrapTTL <= 0 {
		return nil, errors.New("bootstrap_ttl must be positive")
	}
	if cfg.SessionTimeout <= 0 {
		return nil, errors.New("session_timeout must be positive")
	}
	return &cfg, nil
}
