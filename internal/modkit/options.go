package modkit

// Option mutates build configuration for a module
type Option func(*buildCfg)

type buildCfg struct {
	name  string
	ports any
}

// Built is a plain struct with the fields modules care about
type Built struct {
	Name  string
	Ports any
}

// WithName sets a module name used in logs
func WithName(name string) Option {
	return func(c *buildCfg) { c.name = name }
}

// WithPorts injects cross module ports declared by another module
// the concrete type is owned by the importing module
func WithPorts[T any](p T) Option {
	return func(c *buildCfg) { c.ports = p }
}

// Build applies Option funcs and returns a plain struct
func Build(opts ...Option) Built {
	var c buildCfg
	for _, o := range opts {
		o(&c)
	}
	return Built{Name: c.name, Ports: c.ports}
}
