// Package config handles application configuration via environment variables
package config

import (
	"os"
	"strconv"
	"strings"

	"atisprep/internal/platform/logger"
)

// Conf is a namespaced view over environment variables (e.g. "ATISPREP_")
// Use New() for global access, or Prefix("ATISPREP_") for module scopes.
type Conf struct{ prefix string }

// New creates a root Conf (no prefix)
func New() Conf { return Conf{} }

// Prefix creates a child Conf with an additional prefix, e.g. cfg.Prefix("PGSQL_")
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

// key composes the fully-qualified env var name
func (c Conf) key(k string) string { return c.prefix + k }

// Has reports whether key is set to a non-blank value
func (c Conf) Has(key string) bool {
	return strings.TrimSpace(os.Getenv(c.key(key))) != ""
}

// MayString returns the value or def if missing/empty
func (c Conf) MayString(key, def string) string {
	v := strings.TrimSpace(os.Getenv(c.key(key)))
	if v == "" {
		return def
	}
	return v
}

// Lookup returns the trimmed value when key is set, even to a blank value,
// and def only when key is absent
func (c Conf) Lookup(key, def string) string {
	v, ok := os.LookupEnv(c.key(key))
	if !ok {
		return def
	}
	return strings.TrimSpace(v)
}

// MayInt returns the value or def if missing/empty; logs and returns def if invalid
func (c Conf) MayInt(key string, def int) int {
	s := strings.TrimSpace(os.Getenv(c.key(key)))
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	logger.Get().Warn().Str("key", c.key(key)).Str("value", s).Int("default", def).Msg("invalid int; using default")
	return def
}

// MayBool returns the value or def if missing/empty; logs and returns def if invalid
func (c Conf) MayBool(key string, def bool) bool {
	s := strings.TrimSpace(os.Getenv(c.key(key)))
	if s == "" {
		return def
	}
	if v, err := strconv.ParseBool(s); err == nil {
		return v
	}
	logger.Get().Warn().Str("key", c.key(key)).Str("value", s).Bool("default", def).Msg("invalid bool; using default")
	return def
}
