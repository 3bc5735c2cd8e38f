// Package module implements the preprocess module
package module

import (
	"atisprep/internal/adapters/ingest/atis"
	"atisprep/internal/modkit"
	perr "atisprep/internal/platform/errors"
	"atisprep/internal/services/preprocess/domain"
	"atisprep/internal/services/preprocess/service"
)

// Ports exposed by the preprocess module
type Ports struct {
	Runner domain.RunnerPort
}

// Module implements modkit.Module
type Module struct {
	deps  modkit.Deps
	name  string
	opts  Options
	ports Ports
}

// New constructs a new preprocess module
// configuration errors are reported as validation errors
func New(deps modkit.Deps, opts ...modkit.Option) (*Module, error) {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("preprocess"),
	}, opts...)...)

	o := FromConfig(deps.Cfg)
	if err := o.Validate(); err != nil {
		return nil, perr.WithOp(err, "preprocess.config")
	}

	f := o.Formatter()
	svc := service.New(atis.Loader{Formatter: f}, ledgerFrom(b.Ports), service.Config{
		CopiesHindi:   o.CopiesHindi,
		CopiesTurkish: o.CopiesTurkish,
		Formatter:     f,
	})

	return &Module{
		deps:  deps,
		name:  b.Name,
		opts:  o,
		ports: Ports{Runner: svc},
	}, nil
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return m.name }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// Runner returns the run port
func (m *Module) Runner() domain.RunnerPort { return m.ports.Runner }

// Options returns the resolved options
func (m *Module) Options() Options { return m.opts }
