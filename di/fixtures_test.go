package di_test

import (
	"errors"
	"reflect"
	"sync/atomic"
	"testing"

	"github.com/sghaida/capdi/di"
	"github.com/sghaida/capdi/logger"
	"github.com/stretchr/testify/require"
)

//
// -----------------------------------------------------------------------------
// Fixture types
// -----------------------------------------------------------------------------

type SingletonService struct{ performed bool }

func (s *SingletonService) Value() string { return "singleton" }
func (s *SingletonService) Perform() { s.performed = true }

type NonSingletonService struct{ executed bool }

func (s *NonSingletonService) Value() string { return "non-singleton" }

type Service struct{ Name string }

func NewService() *Service { return &Service{Name: "service"} }

// Target takes its dependencies through both the constructor and fields.
type Target struct {
	svc    *Service
	single *SingletonService

	FieldService   *Service          `inject:""`
	fieldSingleton *SingletonService `inject:""`
}

func NewTarget(s *Service, ss *SingletonService) *Target {
	return &Target{svc: s, single: ss}
}

type Ambiguous struct{}

func NewAmbiguous() *Ambiguous { return &Ambiguous{} }
func NewAmbiguousWithService(*Service) *Ambiguous { return &Ambiguous{} }

type Greeter interface{ Greet() string }

type EnglishGreeter struct{}

func (*EnglishGreeter) Greet() string { return "hello" }

type GermanGreeter struct{}

func (*GermanGreeter) Greet() string { return "hallo" }

type BaseService struct{}

func (*BaseService) BaseValue() string { return "base" }

type BaseClient struct {
	baseService *BaseService `inject:""`
}

type DerivedClient struct {
	BaseClient
	Name string
}

// Inner <- Middle <- Outer, wired by constructors.
type Inner struct{ Value string }

type Middle struct{ Inner *Inner }

func NewMiddle(in *Inner) *Middle { return &Middle{Inner: in} }

type Outer struct{ Middle *Middle }

func NewOuter(m *Middle) *Outer { return &Outer{Middle: m} }

// CycleA and CycleB require each other.
type CycleA struct{ B *CycleB }
type CycleB struct{ A *CycleA }

func NewCycleA(b *CycleB) *CycleA { return &CycleA{B: b} }
func NewCycleB(a *CycleA) *CycleB { return &CycleB{A: a} }

// Port is a non-struct type: it has no implicit zero-argument constructor.
type Port int

type Failing struct{}

var errBoom = errors.New("boom")

func NewFailing() (*Failing, error) { return nil, errBoom }

type Panicking struct{}

func NewPanicking() *Panicking { panic("no way") }

type Undeclared struct{}

// Counted counts its constructions.
type Counted struct{ N int64 }

var countedBuilds atomic.Int64

func NewCounted() *Counted { return &Counted{N: countedBuilds.Add(1)} }

//
// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func typeOf[T any]() reflect.Type { return reflect.TypeFor[T]() }

// newCatalog declares the shared fixture types.
func newCatalog() *di.Catalog {
	cat := di.NewCatalog()

	di.Declare[*SingletonService](cat).Singleton()
	di.Declare[*NonSingletonService](cat).Component()
	di.Declare[*Service](cat).Component().Default(NewService)
	di.Declare[*Target](cat).Component().Inject(NewTarget)
	di.Declare[*Ambiguous](cat).Component().Inject(NewAmbiguous).Inject(NewAmbiguousWithService)
	di.Declare[*EnglishGreeter](cat).Component().Implements(typeOf[Greeter]())
	di.Declare[*BaseService](cat).Singleton()
	di.Declare[*Inner](cat).Singleton().Default(func() *Inner { return &Inner{Value: "inner"} })
	di.Declare[*Middle](cat).Component().Inject(NewMiddle)
	di.Declare[*Outer](cat).Component().Inject(NewOuter)
	di.Declare[*CycleA](cat).Component().Inject(NewCycleA)
	di.Declare[*CycleB](cat).Component().Inject(NewCycleB)
	di.Declare[Port](cat).Component()
	di.Declare[*Failing](cat).Component().Default(NewFailing)
	di.Declare[*Panicking](cat).Singleton().Default(NewPanicking)

	return cat
}

func newRegistry(cat *di.Catalog, opts ...di.Option) *di.Registry {
	return di.New(cat, append([]di.Option{di.WithLogger(logger.Nop())}, opts...)...)
}

func mustResolve[T any](t *testing.T, r *di.Registry) T {
	t.Helper()
	v, err := di.Resolve[T](r)
	require.NoError(t, err, "resolve %s", typeOf[T]())
	return v
}
