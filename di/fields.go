package di

import (
	"fmt"
	"reflect"
	"unsafe"
)

type visitKey struct {
	ptr uintptr
	typ reflect.Type
}

// InjectFields populates the injection-point fields of target, which should
// be a pointer to a struct. Fields of embedded structs are included, the
// outer struct's own fields first.
//
// Each dependency is resolved through the registry and has its own fields
// injected before it is assigned. Unexported fields are assigned too. A nil
// target, or one that is not a pointer to a struct, is left untouched.
//
// A field whose resolution yields a fresh instance of a type already being
// injected on the current path fails with *CyclicDependencyError.
func (r *Registry) InjectFields(target any) error {
	return r.injectValue(reflect.ValueOf(target), newInjectPass())
}

// Inject runs InjectFields for every target in a single pass, so an
// instance reachable from several targets is walked once.
func (r *Registry) Inject(targets ...any) error {
	p := newInjectPass()
	for _, target := range targets {
		if err := r.injectValue(reflect.ValueOf(target), p); err != nil {
			return err
		}
	}
	return nil
}

// injectPass is the state of one InjectFields or Inject call. path holds the
// struct types whose fields are being populated, outermost first.
type injectPass struct {
	seen map[visitKey]struct{}
	path chain
}

func newInjectPass() *injectPass {
	return &injectPass{seen: make(map[visitKey]struct{})}
}

func (r *Registry) injectValue(v reflect.Value, p *injectPass) error {
	if !v.IsValid() {
		return nil
	}
	if v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return nil
	}

	key := visitKey{ptr: v.Pointer(), typ: v.Type()}
	if _, ok := p.seen[key]; ok {
		return nil
	}
	p.seen[key] = struct{}{}

	p.path.push(v.Type())
	defer p.path.pop()

	elem := v.Elem()
	for _, fp := range r.cat.fieldPoints(v.Type()) {
		if !r.isInjectionPoint(fp) {
			continue
		}

		dep, err := r.Resolve(fp.Type)
		if err != nil {
			return err
		}
		if isNil(dep) {
			continue
		}
		if dt := concreteType(dep); p.path.contains(dt) && !r.sharedInstance(fp.Type, dt) {
			return p.path.cycle(dt)
		}
		if err := r.injectValue(dep, p); err != nil {
			return err
		}
		if err := assign(elem.FieldByIndex(fp.Index), dep); err != nil {
			return &FieldInjectionError{Owner: fp.Owner, Field: fp.Name, Err: err}
		}
	}
	return nil
}

// sharedInstance reports whether resolving requested, which produced a
// value of type actual, hands out a cached singleton.
func (r *Registry) sharedInstance(requested, actual reflect.Type) bool {
	e, _ := r.cat.lookup(requested)
	if e.singleton {
		return true
	}
	e, _ = r.cat.lookup(actual)
	return e.singleton
}

func concreteType(v reflect.Value) reflect.Type {
	if v.Kind() == reflect.Interface {
		return v.Elem().Type()
	}
	return v.Type()
}

// isInjectionPoint reports whether fp receives a dependency: tagged fields
// always do; in autowire mode so do untagged fields whose type is declared,
// or is an interface with a binding.
func (r *Registry) isInjectionPoint(fp FieldPoint) bool {
	if fp.Skip {
		return false
	}
	if fp.Tagged {
		return true
	}
	if !r.autowire {
		return false
	}
	if fp.Type.Kind() == reflect.Interface {
		return r.HasImplementation(fp.Type)
	}
	e, _ := r.cat.lookup(fp.Type)
	return e.singleton || e.component
}

// assign sets field to dep, bypassing export restrictions. field must be
// addressable.
func assign(field, dep reflect.Value) error {
	if !dep.Type().AssignableTo(field.Type()) {
		return fmt.Errorf("%s is not assignable to %s", dep.Type(), field.Type())
	}
	if !field.CanSet() {
		if !field.CanAddr() {
			return fmt.Errorf("field of type %s is not addressable", field.Type())
		}
		field = reflect.NewAt(field.Type(), unsafe.Pointer(field.UnsafeAddr())).Elem()
	}
	field.Set(dep)
	return nil
}
