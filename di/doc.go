// Package di is a small dependency-injection runtime driven by a static
// capability table.
//
// Types are declared once in a Catalog (usually by code generated with
// cmd/capgen) as singletons or components, with an optional inject
// constructor, an optional zero-argument constructor and the interfaces they
// implement. Fields receive dependencies when tagged `inject:""`.
//
//	cat := di.NewCatalog()
//	di.Declare[*Clock](cat).Singleton()
//	di.Declare[*Mailer](cat).Component().Inject(NewMailer)
//	di.Declare[*SMTP](cat).Component().Implements(reflect.TypeFor[Transport]())
//
//	reg := di.New(cat)
//	if err := reg.ScanNamespace("example.com/app"); err != nil { ... }
//	mailer, err := di.Resolve[*Mailer](reg)
//
// # Resolution
//
// A Registry resolves a type as follows:
//
//   - types with neither capability fail with *MissingCapabilityError
//   - interfaces with a binding resolve to the bound type
//   - singletons are constructed once and cached for the registry's lifetime
//   - components are constructed on every request
//
// Construction uses the single inject constructor, resolving its parameters
// recursively; without one it uses the Default constructor, or new(S) for a
// pointer-to-struct type. Two inject constructors fail with
// *MultipleConstructorError, no usable constructor with
// *MissingConstructorError. A type requested while it is being constructed
// fails with *CyclicDependencyError.
//
// # Concurrency
//
// Registries are safe for concurrent use. Each singleton is constructed at
// most once; concurrent callers wait for the first construction.
//
// # Facade
//
// Inject and Create build a throwaway registry per call. Singleton identity
// holds only inside one registry, so share a Registry when it matters.
package di
