package di

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
)

// ErrNilCatalog is the panic value of New when called without a catalog,
// and the error of ParseManifest and of an unbound Manifest.
var ErrNilCatalog = errors.New("di: nil catalog")

// MissingCapabilityError is returned when a requested type is declared
// neither as component nor as singleton.
type MissingCapabilityError struct{ Type reflect.Type }

// Error implements the error interface.
func (e *MissingCapabilityError) Error() string {
	// Example: di: type *app.Store is not declared as component or singleton
	return "di: type " + typeName(e.Type) + " is not declared as component or singleton"
}

// MissingConstructorError is returned when a type has no flagged constructor
// and no usable zero-argument constructor.
type MissingConstructorError struct{ Type reflect.Type }

// Error implements the error interface.
func (e *MissingConstructorError) Error() string {
	return "di: no zero-argument constructor found for " + typeName(e.Type) +
		"; declare one with Default or use a pointer-to-struct type"
}

// MultipleConstructorError is returned when more than one constructor of a
// type is flagged as injection point.
type MultipleConstructorError struct {
	Type  reflect.Type
	Count int
}

// Error implements the error interface.
func (e *MultipleConstructorError) Error() string {
	return "di: multiple inject constructors declared for " + typeName(e.Type) +
		" (" + strconv.Itoa(e.Count) + "); only one may be flagged"
}

// ConstructionError wraps a fault raised while invoking a constructor:
// a returned error, a panic, or an instance of the wrong type.
type ConstructionError struct {
	Type reflect.Type
	Err  error
}

// Error implements the error interface.
func (e *ConstructionError) Error() string {
	msg := "di: failed to construct " + typeName(e.Type)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *ConstructionError) Unwrap() error { return e.Err }

// FieldInjectionError is returned when a resolved dependency cannot be
// assigned into an injection-point field.
type FieldInjectionError struct {
	Owner reflect.Type
	Field string
	Err   error
}

// Error implements the error interface.
func (e *FieldInjectionError) Error() string {
	msg := "di: failed to inject field " + e.Field + " of " + typeName(e.Owner)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *FieldInjectionError) Unwrap() error { return e.Err }

// DiscoveryError wraps any failure raised while scanning a namespace.
//
// The cause is kept: errors.As can still reach the original kind through it.
type DiscoveryError struct {
	Namespace string
	Err       error
}

// Error implements the error interface.
func (e *DiscoveryError) Error() string {
	msg := "di: failed to scan namespace " + strconv.Quote(e.Namespace)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *DiscoveryError) Unwrap() error { return e.Err }

// CyclicDependencyError is returned when a type is requested while it is
// already being constructed. Chain lists the path, ending with the repeat.
type CyclicDependencyError struct{ Chain []reflect.Type }

// Error implements the error interface.
func (e *CyclicDependencyError) Error() string {
	parts := make([]string, len(e.Chain))
	for i, t := range e.Chain {
		parts[i] = typeName(t)
	}
	return "di: cyclic dependency: " + strings.Join(parts, " -> ")
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
