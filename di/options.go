package di

import (
	"github.com/sghaida/capdi/config"
	"github.com/sghaida/capdi/logger"
)

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the registry's logger. The default is logger.Get("di").
func WithLogger(l *logger.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.log = l
		}
	}
}

// WithAutowire enables injection of untagged fields whose type is declared
// as singleton or component, or is an interface with a binding. Fields
// tagged `inject:"-"` are never autowired.
func WithAutowire(enabled bool) Option {
	return func(r *Registry) { r.autowire = enabled }
}

// WithEnumerator replaces the catalog as the namespace source used by
// ScanNamespace.
func WithEnumerator(e Enumerator) Option {
	return func(r *Registry) {
		if e != nil {
			r.enum = e
		}
	}
}

// NewFromConfig builds a registry from loaded configuration: it creates the
// logger, applies autowiring, switches discovery to the manifest when one is
// configured, and scans every configured namespace. opts are applied last.
func NewFromConfig(cat *Catalog, cfg *config.Config, opts ...Option) (*Registry, error) {
	all := []Option{
		WithLogger(logger.New(&cfg.Log, "di")),
		WithAutowire(cfg.DI.Autowire),
	}
	if cfg.DI.Manifest != "" {
		m, err := LoadManifest(cfg.DI.Manifest, cat)
		if err != nil {
			return nil, err
		}
		all = append(all, WithEnumerator(m))
	}

	r := New(cat, append(all, opts...)...)
	for _, ns := range cfg.DI.Namespaces {
		if err := r.ScanNamespace(ns); err != nil {
			return nil, err
		}
	}
	return r, nil
}
