package di

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// InjectTag is the struct tag marking an injection-point field.
// `inject:""` marks the field; `inject:"-"` excludes it from autowiring.
const InjectTag = "inject"

var errorType = reflect.TypeFor[error]()

// Catalog is the static capability table: for every declared type it records
// whether the type is a singleton or a component, which constructors are
// injection points, which zero-argument constructor to use, and which
// interfaces it implements.
//
// A Catalog is filled at startup, usually by generated code, and is then
// read by any number of registries. Declaring is safe for concurrent use but
// is expected to finish before the first resolution.
type Catalog struct {
	mu      sync.RWMutex
	entries map[reflect.Type]*entry
	order   []reflect.Type

	// fields caches the injection-point candidates per struct type.
	fields sync.Map
}

type entry struct {
	typ        reflect.Type
	singleton  bool
	component  bool
	injectors  []Constructor
	def        *Constructor
	interfaces []reflect.Type
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{entries: make(map[reflect.Type]*entry)}
}

// Declare starts (or continues) the declaration of T.
//
//	di.Declare[*Store](cat).Singleton().Default(NewStore)
func Declare[T any](cat *Catalog) *TypeBuilder {
	return cat.Declare(reflect.TypeFor[T]())
}

// Declare starts (or continues) the declaration of t.
func (c *Catalog) Declare(t reflect.Type) *TypeBuilder {
	if t == nil {
		panic("di: cannot declare nil type")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entryLocked(t)
	return &TypeBuilder{cat: c, typ: t}
}

func (c *Catalog) entryLocked(t reflect.Type) *entry {
	e, ok := c.entries[t]
	if !ok {
		e = &entry{typ: t}
		c.entries[t] = e
		c.order = append(c.order, t)
	}
	return e
}

// lookup returns a snapshot of the entry for t.
func (c *Catalog) lookup(t reflect.Type) (entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[t]
	if !ok {
		return entry{typ: t}, false
	}
	return *e, true
}

// Types returns every declared type in declaration order.
func (c *Catalog) Types() []reflect.Type {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]reflect.Type(nil), c.order...)
}

// IsSingleton reports whether t carries the singleton capability.
func (c *Catalog) IsSingleton(t reflect.Type) bool {
	e, _ := c.lookup(t)
	return e.singleton
}

// IsComponent reports whether t carries the component capability.
func (c *Catalog) IsComponent(t reflect.Type) bool {
	e, _ := c.lookup(t)
	return e.component
}

// Enumerate lists declared types whose package path is namespace or lies
// below it. Pointer types are matched by the package of their element.
// An empty namespace matches every declared type.
func (c *Catalog) Enumerate(namespace string) ([]reflect.Type, error) {
	var out []reflect.Type
	for _, t := range c.Types() {
		if inNamespace(t, namespace) {
			out = append(out, t)
		}
	}
	return out, nil
}

func inNamespace(t reflect.Type, namespace string) bool {
	if namespace == "" {
		return true
	}
	for t.Kind() == reflect.Pointer && t.Name() == "" {
		t = t.Elem()
	}
	p := t.PkgPath()
	return p == namespace || strings.HasPrefix(p, namespace+"/")
}

// Describe returns the derived capability view of t. Undeclared types yield
// a descriptor without capabilities.
func (c *Catalog) Describe(t reflect.Type) Descriptor {
	e, _ := c.lookup(t)
	d := Descriptor{
		Type:       t,
		Singleton:  e.singleton,
		Component:  e.component,
		Injectors:  append([]Constructor(nil), e.injectors...),
		Default:    e.def,
		Interfaces: append([]reflect.Type(nil), e.interfaces...),
	}
	for _, fp := range c.fieldPoints(t) {
		if fp.Tagged {
			d.Fields = append(d.Fields, fp)
		}
	}
	return d
}

// Descriptor is a read-only view of a type's declared capabilities.
type Descriptor struct {
	Type      reflect.Type
	Singleton bool
	Component bool

	// Injectors are the constructors flagged as injection points.
	Injectors []Constructor

	// Default is the declared zero-argument constructor, if any.
	Default *Constructor

	Interfaces []reflect.Type

	// Fields are the tagged injection-point fields, most-derived first.
	Fields []FieldPoint
}

// HasCapability reports whether the type is a singleton or a component.
func (d Descriptor) HasCapability() bool { return d.Singleton || d.Component }

// FieldPoint is a struct field that may receive a dependency.
type FieldPoint struct {
	// Owner is the struct type that declares the field.
	Owner reflect.Type
	Name  string
	Type  reflect.Type

	// Index is the field's index path from the outermost struct.
	Index []int

	Tagged bool
	Skip   bool
}

// fieldPoints returns the cached candidate fields of t's struct, walking
// embedded structs after the struct's own fields.
func (c *Catalog) fieldPoints(t reflect.Type) []FieldPoint {
	if t == nil {
		return nil
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	if cached, ok := c.fields.Load(t); ok {
		return cached.([]FieldPoint)
	}
	points := collectFields(t, nil, nil)
	actual, _ := c.fields.LoadOrStore(t, points)
	return actual.([]FieldPoint)
}

func collectFields(s reflect.Type, prefix []int, out []FieldPoint) []FieldPoint {
	type embedded struct {
		typ   reflect.Type
		index []int
	}
	var bases []embedded

	for i := 0; i < s.NumField(); i++ {
		f := s.Field(i)
		index := append(append([]int(nil), prefix...), i)

		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			bases = append(bases, embedded{typ: f.Type, index: index})
			continue
		}

		tag, tagged := f.Tag.Lookup(InjectTag)
		out = append(out, FieldPoint{
			Owner:  s,
			Name:   f.Name,
			Type:   f.Type,
			Index:  index,
			Tagged: tagged && tag != "-",
			Skip:   tagged && tag == "-",
		})
	}

	for _, b := range bases {
		out = collectFields(b.typ, b.index, out)
	}
	return out
}

// TypeBuilder declares capabilities for one type. Methods return the
// builder so declarations chain. Invalid declarations panic.
type TypeBuilder struct {
	cat *Catalog
	typ reflect.Type
}

// Type returns the type being declared.
func (b *TypeBuilder) Type() reflect.Type { return b.typ }

// Singleton marks the type as having exactly one instance per registry.
func (b *TypeBuilder) Singleton() *TypeBuilder {
	b.update(func(e *entry) { e.singleton = true })
	return b
}

// Component marks the type as an instantiable transient dependency.
func (b *TypeBuilder) Component() *TypeBuilder {
	b.update(func(e *entry) { e.component = true })
	return b
}

// Inject flags ctor as an injection-point constructor. ctor must be a
// function returning the type, optionally followed by an error; its
// parameters are resolved by type.
func (b *TypeBuilder) Inject(ctor any) *TypeBuilder {
	c := newConstructor(b.typ, ctor)
	b.update(func(e *entry) { e.injectors = append(e.injectors, c) })
	return b
}

// Default declares the zero-argument constructor used when no constructor
// is flagged with Inject.
func (b *TypeBuilder) Default(ctor any) *TypeBuilder {
	c := newConstructor(b.typ, ctor)
	if len(c.params) != 0 {
		panic(fmt.Sprintf("di: default constructor for %s must take no arguments, got %d", b.typ, len(c.params)))
	}
	b.update(func(e *entry) { e.def = &c })
	return b
}

// Implements records interfaces satisfied by the type. Each interface is
// itself declared as a component so that it can be resolved through a
// binding.
func (b *TypeBuilder) Implements(ifaces ...reflect.Type) *TypeBuilder {
	for _, iface := range ifaces {
		if iface == nil || iface.Kind() != reflect.Interface {
			panic(fmt.Sprintf("di: %v is not an interface type", iface))
		}
		if !b.typ.Implements(iface) {
			panic(fmt.Sprintf("di: %s does not implement %s", b.typ, iface))
		}
	}

	b.cat.mu.Lock()
	defer b.cat.mu.Unlock()

	e := b.cat.entryLocked(b.typ)
	for _, iface := range ifaces {
		if !containsType(e.interfaces, iface) {
			e.interfaces = append(e.interfaces, iface)
		}
		b.cat.entryLocked(iface).component = true
	}
	return b
}

func (b *TypeBuilder) update(fn func(*entry)) {
	b.cat.mu.Lock()
	defer b.cat.mu.Unlock()
	fn(b.cat.entryLocked(b.typ))
}

func containsType(list []reflect.Type, t reflect.Type) bool {
	for _, x := range list {
		if x == t {
			return true
		}
	}
	return false
}

// Constructor is a validated constructor function.
type Constructor struct {
	fn     reflect.Value
	params []reflect.Type
	errOut bool
}

// Params returns the parameter types in declared order.
func (c Constructor) Params() []reflect.Type {
	return append([]reflect.Type(nil), c.params...)
}

// newConstructor validates fn as a constructor of t: func(deps...) T or
// func(deps...) (T, error), where the first result is assignable to t.
func newConstructor(t reflect.Type, fn any) Constructor {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func || v.IsNil() {
		panic(fmt.Sprintf("di: constructor for %s must be a non-nil function, got %T", t, fn))
	}

	ft := v.Type()
	if ft.IsVariadic() {
		panic(fmt.Sprintf("di: constructor for %s must not be variadic", t))
	}
	if ft.NumOut() == 0 || ft.NumOut() > 2 {
		panic(fmt.Sprintf("di: constructor for %s must return (T) or (T, error)", t))
	}
	if ft.NumOut() == 2 && ft.Out(1) != errorType {
		panic(fmt.Sprintf("di: second result of constructor for %s must be error, got %s", t, ft.Out(1)))
	}
	if !ft.Out(0).AssignableTo(t) {
		panic(fmt.Sprintf("di: constructor returns %s, not assignable to %s", ft.Out(0), t))
	}

	params := make([]reflect.Type, ft.NumIn())
	for i := range params {
		params[i] = ft.In(i)
	}
	return Constructor{fn: v, params: params, errOut: ft.NumOut() == 2}
}

// call invokes the constructor, turning a returned error or a panic into err.
func (c Constructor) call(args []reflect.Value) (out reflect.Value, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			out = reflect.Value{}
			if e, ok := rec.(error); ok {
				err = fmt.Errorf("constructor panicked: %w", e)
				return
			}
			err = fmt.Errorf("constructor panicked: %v", rec)
		}
	}()

	results := c.fn.Call(args)
	if c.errOut && !results[1].IsNil() {
		return reflect.Value{}, results[1].Interface().(error)
	}
	return results[0], nil
}
