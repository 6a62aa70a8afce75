package di

import (
	"fmt"
	"os"
	"reflect"
	"sort"

	"gopkg.in/yaml.v3"
)

// Manifest maps namespace names to declared type names, as printed by
// reflect.Type.String (for example "*store.Postgres"). It lets a namespace
// group types across packages.
//
//	namespaces:
//	  app.storage:
//	    - "*store.Postgres"
//	    - "store.Cache"
type Manifest struct {
	Namespaces map[string][]string `yaml:"namespaces"`

	cat *Catalog
}

// ParseManifest decodes a YAML manifest whose names refer to types in cat.
func ParseManifest(data []byte, cat *Catalog) (*Manifest, error) {
	if cat == nil {
		return nil, ErrNilCatalog
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("di: invalid manifest: %w", err)
	}
	m.cat = cat
	return &m, nil
}

// LoadManifest reads and decodes the manifest at path.
func LoadManifest(path string, cat *Catalog) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("di: read manifest: %w", err)
	}
	return ParseManifest(data, cat)
}

// NamespaceNames returns the manifest's namespaces, sorted.
func (m *Manifest) NamespaceNames() []string {
	names := make([]string, 0, len(m.Namespaces))
	for name := range m.Namespaces {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Enumerate implements Enumerator. Unknown namespaces and type names that
// are not declared in the catalog are errors, as is a Manifest that was
// not built by ParseManifest or LoadManifest.
func (m *Manifest) Enumerate(namespace string) ([]reflect.Type, error) {
	if m.cat == nil {
		return nil, fmt.Errorf("di: manifest not bound to a catalog: %w", ErrNilCatalog)
	}
	names, ok := m.Namespaces[namespace]
	if !ok {
		return nil, fmt.Errorf("di: namespace %q not listed in manifest", namespace)
	}

	byName := make(map[string]reflect.Type)
	for _, t := range m.cat.Types() {
		byName[t.String()] = t
	}

	out := make([]reflect.Type, 0, len(names))
	for _, name := range names {
		t, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("di: type %q in namespace %q is not declared", name, namespace)
		}
		out = append(out, t)
	}
	return out, nil
}
