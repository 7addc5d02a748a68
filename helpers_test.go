package failsafe_test

import (
	"testing"

	failsafe "github.com/goliatone/go-failsafe"
	"github.com/goliatone/go-failsafe/exit"
)

type Foo struct {
	A, B, C int
}

type run struct {
	manager *failsafe.Manager
	exit    *exit.Coordinator
	codes   []int
}

// newRun starts a simulated process rooted at root. Checkpoints written by
// one run are visible to the next run built on the same root.
func newRun(t *testing.T, root string, opts ...failsafe.Option) *run {
	t.Helper()
	r := &run{}
	r.exit = exit.New(exit.WithExitFunc(func(code int) {
		r.codes = append(r.codes, code)
	}))
	opts = append([]failsafe.Option{failsafe.WithRoot(root), failsafe.WithCoordinator(r.exit)}, opts...)
	m, err := failsafe.NewManager(opts...)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	r.manager = m
	return r
}

func mustRegister[T any](t *testing.T, m *failsafe.Manager, name string, opts ...failsafe.TypeOption) *failsafe.Type[T] {
	t.Helper()
	typ, err := failsafe.Register[T](m, name, opts...)
	if err != nil {
		t.Fatalf("register %s: %v", name, err)
	}
	return typ
}

func mustBuild[T any](t *testing.T, typ *failsafe.Type[T], ctor func() (T, error)) *failsafe.Checkpoint[T] {
	t.Helper()
	cp, err := typ.Build(ctor)
	if err != nil {
		t.Fatalf("build %s: %v", typ.Name(), err)
	}
	return cp
}

func newFoo() (Foo, error) {
	return Foo{A: 1, B: 2, C: 3}, nil
}

func forbidCtor[T any](t *testing.T) func() (T, error) {
	return func() (T, error) {
		t.Helper()
		t.Fatalf("constructor must not run for a restored checkpoint")
		var zero T
		return zero, nil
	}
}
