// Package capdi is a small reflection-based dependency injection runtime
// driven by a static capability table.
//
// Types opt in explicitly: a di.Catalog records which types are singletons,
// which are components, which constructor is the injection point and which
// interfaces a type implements. A di.Registry reads that table to build
// instances on demand, cache singletons, and populate tagged fields.
//
// The capability table is plain Go. Write the di.Declare chains by hand or
// generate them with cmd/capgen from a capabilities.yaml next to the package.
//
// Package layout:
//   - di: catalog, registry, resolver, field injector, discovery
//   - config: viper-backed configuration (YAML, .env, environment)
//   - logger: zerolog-backed structured logging
//   - cmd/capgen: capability table generator
//   - examples/multi: runnable example
package capdi
