package di

import (
	"reflect"
)

// chain tracks the types under construction on one resolution call stack.
type chain struct {
	id    uint64
	stack []reflect.Type
}

func (r *Registry) newChain() *chain {
	return &chain{id: r.chains.Add(1)}
}

func (c *chain) contains(t reflect.Type) bool {
	for _, s := range c.stack {
		if s == t {
			return true
		}
	}
	return false
}

func (c *chain) push(t reflect.Type) { c.stack = append(c.stack, t) }

func (c *chain) pop() { c.stack = c.stack[:len(c.stack)-1] }

func (c *chain) cycle(t reflect.Type) *CyclicDependencyError {
	path := make([]reflect.Type, 0, len(c.stack)+1)
	path = append(path, c.stack...)
	return &CyclicDependencyError{Chain: append(path, t)}
}

// plan is the constructor chosen for one construction. A nil ctor means the
// zero value of a pointer-to-struct type.
type plan struct {
	ctor   *Constructor
	params []reflect.Type
}

// planFor selects the constructor of e:
//   - no flagged constructor: the declared default, else new(S) for *S
//   - exactly one flagged constructor: that one
//   - more: *MultipleConstructorError
func planFor(e entry) (plan, error) {
	switch len(e.injectors) {
	case 0:
		if e.def != nil {
			return plan{ctor: e.def}, nil
		}
		if e.typ.Kind() == reflect.Pointer && e.typ.Elem().Kind() == reflect.Struct {
			return plan{}, nil
		}
		return plan{}, &MissingConstructorError{Type: e.typ}
	case 1:
		c := e.injectors[0]
		return plan{ctor: &c, params: c.params}, nil
	default:
		return plan{}, &MultipleConstructorError{Type: e.typ, Count: len(e.injectors)}
	}
}

// construct runs the construction algorithm for e. Errors from resolving
// parameters are returned unchanged; faults raised by the constructor itself
// become *ConstructionError.
func (r *Registry) construct(e entry, ch *chain) (reflect.Value, error) {
	p, err := planFor(e)
	if err != nil {
		return reflect.Value{}, err
	}
	if p.ctor == nil {
		return reflect.New(e.typ.Elem()), nil
	}

	args := make([]reflect.Value, len(p.params))
	for i, pt := range p.params {
		v, err := r.resolve(pt, ch)
		if err != nil {
			return reflect.Value{}, err
		}
		args[i] = v
	}

	out, err := p.ctor.call(args)
	if err != nil {
		return reflect.Value{}, &ConstructionError{Type: e.typ, Err: err}
	}
	if out.Type() != e.typ {
		typed := reflect.New(e.typ).Elem()
		typed.Set(out)
		out = typed
	}
	return out, nil
}

// CreateInstance builds a new instance of t with the construction algorithm,
// without requiring a capability and without caching. Parameters of an
// inject constructor are still resolved through the registry.
func (r *Registry) CreateInstance(t reflect.Type) (reflect.Value, error) {
	e, _ := r.cat.lookup(t)
	ch := r.newChain()
	ch.push(t)
	return r.construct(e, ch)
}
