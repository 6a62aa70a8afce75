package di

import (
	"reflect"
	"time"

	"github.com/sghaida/capdi/logger"
)

// Enumerator lists the types declared under a namespace. *Catalog
// enumerates by package path; *Manifest by an explicit YAML listing.
type Enumerator interface {
	Enumerate(namespace string) ([]reflect.Type, error)
}

// EnumeratorFunc adapts a function to Enumerator.
type EnumeratorFunc func(namespace string) ([]reflect.Type, error)

// Enumerate implements Enumerator.
func (f EnumeratorFunc) Enumerate(namespace string) ([]reflect.Type, error) { return f(namespace) }

// ScanNamespace registers every singleton or component type found under
// name and binds each interface those types implement. Register binds a
// component's interfaces; singletons are bound here. Types without a capability are skipped.
//
// Any failure, from enumeration or from a registration, is returned as
// *DiscoveryError with the cause kept. Scanning stops at the first failure;
// types registered before it stay registered.
func (r *Registry) ScanNamespace(name string) error {
	start := time.Now()

	types, err := r.enum.Enumerate(name)
	if err != nil {
		return r.discoveryFailed(name, err)
	}

	registered := 0
	for _, t := range types {
		e, _ := r.cat.lookup(t)
		if !e.singleton && !e.component {
			continue
		}
		if err := r.Register(t); err != nil {
			return r.discoveryFailed(name, err)
		}
		if e.singleton {
			for _, iface := range e.interfaces {
				r.bind(iface, t)
			}
		}
		registered++
	}

	fields := logger.DurationFields("scan", time.Since(start))
	fields[logger.FieldNamespace] = name
	fields["registered"] = registered
	r.log.Info("namespace scanned", fields)
	return nil
}

func (r *Registry) discoveryFailed(name string, err error) error {
	fields := logger.ErrorFields("scan", err)
	fields[logger.FieldNamespace] = name
	r.log.Error("namespace scan failed", fields)
	return &DiscoveryError{Namespace: name, Err: err}
}
