// Package module implements the run ledger module
package module

import (
	"atisprep/internal/modkit"
	"atisprep/internal/services/runs/domain"
	"atisprep/internal/services/runs/repo"
	"atisprep/internal/services/runs/service"
)

// Ports exposed by the runs module
type Ports struct {
	Ledger domain.LedgerPort
}

// Module implements the run ledger module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs a new runs module
// without a database the ledger records nothing
func New(deps modkit.Deps) *Module {
	m := &Module{deps: deps}
	if deps.PG == nil {
		m.ports = Ports{Ledger: service.Noop{}}
		return m
	}
	m.ports = Ports{Ledger: service.New(deps.PG, repo.NewPG())}
	return m
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "runs" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// Ledger returns the ledger port
func (m *Module) Ledger() domain.LedgerPort { return m.ports.Ledger }
