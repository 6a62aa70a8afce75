// cmd/capgen/main.go
package main

import (
	"bytes"
	"flag"
	"fmt"
	"go/format"
	"go/token"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

// This binary is a code-generation tool.
//
// It reads a YAML capability spec listing the types of one package and
// writes a Go file with a single function that declares those types in a
// di.Catalog: their singleton/component capability, their inject and
// default constructors, and the interfaces they implement.
//
// Key behaviors:
// - Reads spec YAML: package, func, imports, types
// - Validates the spec and panics with every problem found
// - Adds the di import (and reflect when interfaces are listed)
// - Formats the output with go/format
// - Writes output atomically (temp file + rename) to avoid partial writes

// defaultDIImport is the import path of the di package.
const defaultDIImport = "github.com/sghaida/capdi/di"

// TypeEntry describes the capabilities of one type.
type TypeEntry struct {
	// Type is the Go type expression as written in the target package,
	// for example "*Store" or "store.Cache".
	Type string `yaml:"type"`

	Singleton bool `yaml:"singleton"`
	Component bool `yaml:"component"`

	// Inject lists constructors flagged as injection points.
	Inject []string `yaml:"inject"`

	// Default is the zero-argument constructor.
	Default string `yaml:"default"`

	// Implements lists interface types satisfied by Type.
	Implements []string `yaml:"implements"`
}

// ImportSpec models one Go import: optional alias and full import path.
type ImportSpec struct {
	Alias string `yaml:"alias"`
	Path  string `yaml:"path"`
}

// Spec is the full input schema consumed by the generator.
type Spec struct {
	Package string       `yaml:"package"`
	Func    string       `yaml:"func"`
	Imports []ImportSpec `yaml:"imports"`
	Types   []TypeEntry  `yaml:"types"`
}

// templateData is the input passed to the Go template.
type templateData struct {
	Spec        Spec
	ImportsList []ImportSpec
	SpecFile    string
}

// run executes the generator logic and returns an exit code.
// It exists separately from main to allow unit testing without os.Exit.
func run(args []string, stderr io.Writer) int {
	flags := flag.NewFlagSet("capgen", flag.ContinueOnError)
	flags.SetOutput(stderr)

	specPath := flags.String("spec", "", "path to capabilities.yaml")
	outPath := flags.String("out", "", "output .gen.go file path")
	diImport := flags.String("di", defaultDIImport, "import path of the di package")

	if err := flags.Parse(args); err != nil {
		return 2
	}

	if strings.TrimSpace(*specPath) == "" || strings.TrimSpace(*outPath) == "" {
		_, _ = fmt.Fprintln(stderr, "usage: capgen -spec <capabilities.yaml> -out <file.gen.go> [-di <import path>]")
		return 2
	}

	specBytes, err := os.ReadFile(*specPath)
	must(err)

	var spec Spec
	must(yaml.Unmarshal(specBytes, &spec))

	validateSpec(&spec)

	src, err := generate(spec, strings.TrimSpace(*diImport), filepath.Base(*specPath))
	must(err)

	must(writeFileAtomic(filepath.Clean(*outPath), src, 0o644))
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

// validateSpec validates semantic correctness of the input specification.
func validateSpec(spec *Spec) {
	var missingFields []string

	requireNonEmpty := func(fieldName, value string) {
		if strings.TrimSpace(value) == "" {
			missingFields = append(missingFields, fieldName)
		}
	}

	requireNonEmpty("package", spec.Package)
	requireNonEmpty("func", spec.Func)

	if len(spec.Types) == 0 {
		missingFields = append(missingFields, "types (must have at least 1)")
	}

	if len(missingFields) > 0 {
		panic(fmt.Errorf("spec missing required fields: %v", missingFields))
	}

	if !token.IsIdentifier(spec.Func) {
		panic(fmt.Errorf("func %q is not a valid Go identifier", spec.Func))
	}

	seenTypes := make(map[string]struct{}, len(spec.Types))
	for _, entry := range spec.Types {
		if strings.TrimSpace(entry.Type) == "" {
			panic(fmt.Errorf("each type entry must have a type; got: %+v", entry))
		}
		if _, ok := seenTypes[entry.Type]; ok {
			panic(fmt.Errorf("duplicate type entry: %s", entry.Type))
		}
		seenTypes[entry.Type] = struct{}{}

		if !entry.Singleton && !entry.Component && len(entry.Implements) == 0 {
			panic(fmt.Errorf("type %s declares no capability (singleton, component or implements)", entry.Type))
		}
		for _, name := range append(append([]string(nil), entry.Inject...), entry.Implements...) {
			if strings.TrimSpace(name) == "" {
				panic(fmt.Errorf("type %s has a blank constructor or interface name", entry.Type))
			}
		}
	}

	for _, imp := range spec.Imports {
		if strings.TrimSpace(imp.Path) == "" {
			panic(fmt.Errorf("each import must have a path; got: %+v", imp))
		}
	}
}

// resolveImports builds the final imports list for the generated file:
// the di package, reflect when any entry lists interfaces, then the spec's
// own imports.
func resolveImports(spec *Spec, diImport string) []ImportSpec {
	finalImports := make([]ImportSpec, 0, len(spec.Imports)+2)

	for _, entry := range spec.Types {
		if len(entry.Implements) > 0 {
			ensureImport(&finalImports, ImportSpec{Path: "reflect"})
			break
		}
	}
	ensureImport(&finalImports, ImportSpec{Path: diImport})

	for _, imp := range spec.Imports {
		ensureImport(&finalImports, imp)
	}
	return finalImports
}

func ensureImport(imports *[]ImportSpec, required ImportSpec) {
	for _, existing := range *imports {
		if existing.Path == required.Path {
			// Don't duplicate the path; keep existing alias as-is.
			return
		}
	}
	*imports = append(*imports, required)
}

func containsPath(imports []ImportSpec, importPath string) bool {
	for _, existing := range imports {
		if existing.Path == importPath {
			return true
		}
	}
	return false
}

// generate renders the declaration function and gofmt's the result.
func generate(spec Spec, diImport, specFile string) ([]byte, error) {
	data := templateData{
		Spec:        spec,
		ImportsList: resolveImports(&spec, diImport),
		SpecFile:    specFile,
	}

	var out bytes.Buffer
	if err := genTemplate.Execute(&out, data); err != nil {
		return nil, err
	}

	formatted, err := format.Source(out.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format generated source: %w", err)
	}
	return formatted, nil
}

// genTemplate is the Go source template used to generate the declarations.
var genTemplate = template.Must(
	template.New("capgen").Parse(`// Code generated by capgen from {{.SpecFile}}; DO NOT EDIT.

package {{.Spec.Package}}

import (
{{- range .ImportsList}}
	{{if .Alias}}{{.Alias}} {{end}}"{{.Path}}"
{{- end}}
)

// {{.Spec.Func}} declares the capabilities of this package's types in cat.
func {{.Spec.Func}}(cat *di.Catalog) {
{{- range .Spec.Types}}
	di.Declare[{{.Type}}](cat)
	{{- if .Singleton}}.Singleton(){{end}}
	{{- if .Component}}.Component(){{end}}
	{{- range .Inject}}.Inject({{.}}){{end}}
	{{- if .Default}}.Default({{.Default}}){{end}}
	{{- if .Implements}}.Implements(
		{{- range $i, $iface := .Implements}}{{if $i}}, {{end}}reflect.TypeFor[{{$iface}}](){{end -}}
	){{end}}
{{- end}}
}
`),
)

// tempFile abstracts an os.File for testability.
type tempFile interface {
	Name() string
	Write([]byte) (int, error)
	Close() error
}

// File operation hooks, overridden in tests.
var (
	createTempFile = func(dir, pattern string) (tempFile, error) { return os.CreateTemp(dir, pattern) }
	chmodFile      = os.Chmod
	renameFile     = os.Rename
	removeFile     = os.Remove
)

// writeFileAtomic writes a file atomically.
//
// It writes to a temporary file in the same directory and then renames it
// over the target path, so readers never observe partial writes.
func writeFileAtomic(targetPath string, data []byte, perm os.FileMode) (err error) {
	targetDir := filepath.Dir(targetPath)

	tmpFile, err := createTempFile(targetDir, filepath.Base(targetPath)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()

	defer func() {
		if err != nil {
			_ = removeFile(tmpPath)
		}
	}()

	if _, err = tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err = tmpFile.Close(); err != nil {
		return err
	}
	if err = chmodFile(tmpPath, perm); err != nil {
		return err
	}
	return renameFile(tmpPath, targetPath)
}

// must panics if err is non-nil.
func must(err error) {
	if err != nil {
		panic(err)
	}
}
