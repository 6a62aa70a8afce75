package di

import "reflect"

// Inject injects the fields of every target using a fresh registry over cat.
// Singletons are shared between the targets of one call only.
func Inject(cat *Catalog, targets ...any) error {
	return New(cat).Inject(targets...)
}

// Create builds a T with a fresh registry over cat and injects its fields.
// T needs no capability; its inject constructor's parameters do.
func Create[T any](cat *Catalog, opts ...Option) (T, error) {
	var zero T
	r := New(cat, opts...)
	t := reflect.TypeFor[T]()

	v, err := r.CreateInstance(t)
	if err != nil {
		return zero, err
	}
	if err := r.InjectFields(v.Interface()); err != nil {
		return zero, err
	}
	return convert[T](v, t)
}
