// Command capgen generates capability declarations for a package.
//
// capdi resolves dependencies from a static capability table (di.Catalog).
// Filling that table by hand means one di.Declare chain per type; capgen
// writes those chains from a short YAML file kept next to the package.
//
// Spec format (capabilities.yaml)
//
//	package: multi
//	func: DeclareCapabilities
//	imports:
//	  - path: example.com/project/store
//	types:
//	  - type: "*RandomStringSingleton"
//	    singleton: true
//	  - type: "*StringProviderService"
//	    component: true
//	    inject: [NewStringProviderService]
//	  - type: "*ConsolePrinter"
//	    component: true
//	    implements: [Printer]
//	  - type: "*store.Postgres"
//	    singleton: true
//	    default: store.NewPostgres
//
// Every entry needs at least one of singleton, component or implements.
// Type, constructor and interface names are written exactly as they would
// appear in the target package.
//
// Typical go:generate usage
//
//	//go:generate go run ../../cmd/capgen -spec ./capabilities.yaml -out ./capabilities.gen.go
//
// Generated API
//
//	func DeclareCapabilities(cat *di.Catalog) {
//		di.Declare[*RandomStringSingleton](cat).Singleton()
//		di.Declare[*StringProviderService](cat).Component().Inject(NewStringProviderService)
//		di.Declare[*ConsolePrinter](cat).Component().Implements(reflect.TypeFor[Printer]())
//		di.Declare[*store.Postgres](cat).Singleton().Default(store.NewPostgres)
//	}
//
// Flags
//
//	-spec  path to the YAML spec (required)
//	-out   output file (required)
//	-di    import path of the di package (default github.com/sghaida/capdi/di)
//
// The output is gofmt'ed and written atomically. Usage errors exit with
// status 2; an invalid spec panics with every missing field listed.
package main
