package di

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/sghaida/capdi/logger"
)

// Registry owns the singleton instances and interface bindings of one
// logical container. It reads capabilities from a Catalog and is safe for
// concurrent use: each singleton is constructed at most once.
type Registry struct {
	id       string
	cat      *Catalog
	log      *logger.Logger
	enum     Enumerator
	autowire bool

	mu         sync.Mutex
	singletons map[reflect.Type]reflect.Value
	bindings   map[reflect.Type]reflect.Type

	// claims holds singleton keys whose construction is in flight.
	claims map[reflect.Type]*claim
	// waiting maps a resolution chain to the claim it is blocked on.
	waiting map[uint64]*claim

	chains atomic.Uint64
}

// claim is a pending singleton construction. done is closed once val/err
// are published.
type claim struct {
	owner uint64
	done  chan struct{}
	val   reflect.Value
	err   error
}

// New creates an empty registry over cat. It panics with ErrNilCatalog if
// cat is nil.
func New(cat *Catalog, opts ...Option) *Registry {
	if cat == nil {
		panic(ErrNilCatalog)
	}
	r := &Registry{
		id:         uuid.NewString(),
		cat:        cat,
		enum:       cat,
		singletons: make(map[reflect.Type]reflect.Value),
		bindings:   make(map[reflect.Type]reflect.Type),
		claims:     make(map[reflect.Type]*claim),
		waiting:    make(map[uint64]*claim),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = logger.Get("di")
	}
	r.log = r.log.WithFields(logger.Fields(logger.FieldRegistryID, r.id))
	return r
}

// ID identifies the registry in log output.
func (r *Registry) ID() string { return r.id }

// Catalog returns the capability table the registry reads.
func (r *Registry) Catalog() *Catalog { return r.cat }

// Register makes t known to the registry.
//
// A singleton is constructed eagerly and cached; a failure is reported as
// *ConstructionError naming t. A component records a binding from each
// interface it implements to t. A type with neither capability is logged
// and ignored.
func (r *Registry) Register(t reflect.Type) error {
	e, _ := r.cat.lookup(t)

	switch {
	case e.singleton:
		if _, err := r.singleton(e, r.newChain()); err != nil {
			var ce *ConstructionError
			if errors.As(err, &ce) && ce.Type == t {
				return err
			}
			return &ConstructionError{Type: t, Err: err}
		}
	case e.component:
		for _, iface := range e.interfaces {
			r.bind(iface, t)
		}
	default:
		r.log.Warn("registering type without component or singleton capability",
			logger.Fields(logger.FieldType, typeName(t)))
	}
	return nil
}

// Resolve returns an instance of t.
//
// Interfaces with a binding resolve to the bound type. Singletons come from
// the cache, constructing on first use. Components are constructed on every
// call.
func (r *Registry) Resolve(t reflect.Type) (reflect.Value, error) {
	return r.resolve(t, r.newChain())
}

func (r *Registry) resolve(t reflect.Type, ch *chain) (reflect.Value, error) {
	e, _ := r.cat.lookup(t)
	if !e.singleton && !e.component {
		return reflect.Value{}, &MissingCapabilityError{Type: t}
	}

	if t.Kind() == reflect.Interface {
		if impl, ok := r.Implementation(t); ok {
			if ch.contains(t) {
				return reflect.Value{}, ch.cycle(t)
			}
			ch.push(t)
			defer ch.pop()
			return r.resolve(impl, ch)
		}
	}

	if e.singleton {
		return r.singleton(e, ch)
	}

	if ch.contains(t) {
		return reflect.Value{}, ch.cycle(t)
	}
	ch.push(t)
	defer ch.pop()
	return r.construct(e, ch)
}

// singleton returns the cached instance of e.typ, constructing it under a
// claim so concurrent callers wait for one construction.
func (r *Registry) singleton(e entry, ch *chain) (reflect.Value, error) {
	t := e.typ

	r.mu.Lock()
	if v, ok := r.singletons[t]; ok {
		r.mu.Unlock()
		return v, nil
	}
	if ch.contains(t) {
		r.mu.Unlock()
		return reflect.Value{}, ch.cycle(t)
	}
	if c, ok := r.claims[t]; ok {
		if r.waitClosesCycleLocked(c, ch.id) {
			r.mu.Unlock()
			return reflect.Value{}, ch.cycle(t)
		}
		r.waiting[ch.id] = c
		r.mu.Unlock()

		<-c.done

		r.mu.Lock()
		delete(r.waiting, ch.id)
		r.mu.Unlock()
		return c.val, c.err
	}
	c := &claim{owner: ch.id, done: make(chan struct{})}
	r.claims[t] = c
	r.mu.Unlock()

	return r.constructClaimed(e, ch, c)
}

func (r *Registry) constructClaimed(e entry, ch *chain, c *claim) (v reflect.Value, err error) {
	t := e.typ
	defer func() {
		r.mu.Lock()
		delete(r.claims, t)
		if err == nil {
			r.singletons[t] = v
		}
		c.val, c.err = v, err
		r.mu.Unlock()
		close(c.done)
	}()

	ch.push(t)
	defer ch.pop()

	v, err = r.construct(e, ch)
	if err == nil {
		r.log.Debug("singleton constructed", logger.Fields(logger.FieldType, typeName(t)))
	}
	return v, err
}

// waitClosesCycleLocked follows the wait-for edges starting at c's owner and
// reports whether they lead back to chain id.
func (r *Registry) waitClosesCycleLocked(c *claim, id uint64) bool {
	owner := c.owner
	for steps := 0; steps <= len(r.waiting); steps++ {
		if owner == id {
			return true
		}
		next, ok := r.waiting[owner]
		if !ok {
			return false
		}
		owner = next.owner
	}
	return false
}

// IsSingletonRegistered reports whether an instance of t is cached.
func (r *Registry) IsSingletonRegistered(t reflect.Type) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.singletons[t]
	return ok
}

// HasImplementation reports whether iface has a binding.
func (r *Registry) HasImplementation(iface reflect.Type) bool {
	_, ok := r.Implementation(iface)
	return ok
}

// Implementation returns the concrete type bound to iface.
func (r *Registry) Implementation(iface reflect.Type) (reflect.Type, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	impl, ok := r.bindings[iface]
	return impl, ok
}

// Bindings returns a snapshot of the interface bindings.
func (r *Registry) Bindings() map[reflect.Type]reflect.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[reflect.Type]reflect.Type, len(r.bindings))
	for k, v := range r.bindings {
		out[k] = v
	}
	return out
}

// bind records iface -> impl. The last binding wins.
func (r *Registry) bind(iface, impl reflect.Type) {
	r.mu.Lock()
	prev, had := r.bindings[iface]
	r.bindings[iface] = impl
	r.mu.Unlock()

	fields := logger.Fields("interface", typeName(iface), logger.FieldType, typeName(impl))
	if had && prev != impl {
		fields["replaced"] = typeName(prev)
	}
	r.log.Debug("interface bound", fields)
}

// Resolve is a generic helper around (*Registry).Resolve:
//
//	store, err := di.Resolve[*Store](reg)
func Resolve[T any](r *Registry) (T, error) {
	var zero T
	t := reflect.TypeFor[T]()

	v, err := r.Resolve(t)
	if err != nil {
		return zero, err
	}
	return convert[T](v, t)
}

func convert[T any](v reflect.Value, t reflect.Type) (T, error) {
	var zero T
	if isNil(v) {
		return zero, nil
	}
	out, ok := v.Interface().(T)
	if !ok {
		return zero, fmt.Errorf("di: cannot convert %s to %s", v.Type(), t)
	}
	return out, nil
}

// isNil reports whether v holds no instance.
func isNil(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}
