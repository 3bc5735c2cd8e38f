// Package modkit provides module wiring and core deps
package modkit

import (
	"atisprep/internal/platform/config"
	"atisprep/internal/platform/logger"
	"atisprep/internal/platform/store"
)

// Deps holds core dependencies passed to modules
// this is wiring only and does not introduce new abstractions
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  store.TxRunner // nil when no database is configured
}
