package module

import (
	"atisprep/internal/modkit"
	rundom "atisprep/internal/services/runs/domain"
)

// DepsModules is a convenience carrier of dependency *modules*.
// The preprocess module extracts the ledger port internally
type DepsModules struct {
	Runs modkit.Module
}

// WithDepsModules lets callers pass dependency modules without exposing MustPortsOf in main
func WithDepsModules(runs modkit.Module) modkit.Option {
	return modkit.WithPorts(DepsModules{Runs: runs})
}

func ledgerFrom(ports any) rundom.LedgerPort {
	dm, ok := ports.(DepsModules)
	if !ok || dm.Runs == nil {
		return nil
	}
	return modkit.MustPortsOf[rundom.LedgerPort](dm.Runs)
}
