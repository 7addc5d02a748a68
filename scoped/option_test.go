package scoped

import (
	"errors"
	"testing"
)

func TestOptionGetFallsBackToDefault(t *testing.T) {
	global := NewScope("global", nil)
	key := NewKey("save_on_del", true)

	if got := key.In(global).Get(); !got {
		t.Fatalf("expected declared default true, got %v", got)
	}
	if key.In(global).IsSet() {
		t.Fatalf("expected no override in fresh scope")
	}
}

func TestOptionInheritanceInstanceClassGlobal(t *testing.T) {
	global := NewScope("global", nil)
	class := global.Child("Foo")
	instance := class.Child("Foo_1")
	key := NewKey("load_on_init", true)

	key.In(global).Set(false)
	if got := key.In(instance).Get(); got {
		t.Fatalf("expected instance to inherit global override false, got %v", got)
	}

	key.In(class).Set(true)
	if got := key.In(instance).Get(); !got {
		t.Fatalf("expected class override to win over global, got %v", got)
	}

	key.In(instance).Set(false)
	if got := key.In(instance).Get(); got {
		t.Fatalf("expected instance override to win, got %v", got)
	}

	key.In(instance).Reset()
	if got := key.In(instance).Get(); !got {
		t.Fatalf("expected reset to fall back to class value, got %v", got)
	}
	key.In(class).Reset()
	key.In(global).Reset()
	if got := key.In(instance).Get(); !got {
		t.Fatalf("expected declared default after resets, got %v", got)
	}
}

func TestOptionPushPopNesting(t *testing.T) {
	global := NewScope("global", nil)
	opt := NewKey("folder", "default").In(global)

	opt.Push("A")
	opt.Push("B")
	if got := opt.Get(); got != "B" {
		t.Fatalf("expected B on top, got %q", got)
	}
	if depth := opt.Depth(); depth != 2 {
		t.Fatalf("expected depth 2, got %d", depth)
	}
	if err := opt.Pop(); err != nil {
		t.Fatalf("pop: %v", err)
	}
	if got := opt.Get(); got != "A" {
		t.Fatalf("expected A restored, got %q", got)
	}
	if err := opt.Pop(); err != nil {
		t.Fatalf("pop: %v", err)
	}
	if got := opt.Get(); got != "default" {
		t.Fatalf("expected default restored, got %q", got)
	}
	if opt.IsSet() {
		t.Fatalf("expected no override after popping every push")
	}
	if err := opt.Pop(); !errors.Is(err, ErrStackUnderflow) {
		t.Fatalf("expected ErrStackUnderflow, got %v", err)
	}
}

func TestOptionPushRestoresExactPreviousValue(t *testing.T) {
	global := NewScope("global", nil)
	opt := NewKey("count", 0).In(global)
	opt.Set(7)

	guard := opt.Push(9)
	opt.Set(11)
	if err := guard.Restore(); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if got := opt.Get(); got != 7 {
		t.Fatalf("expected 7 restored, got %d", got)
	}
}

func TestGuardRestoreOutOfOrder(t *testing.T) {
	global := NewScope("global", nil)
	opt := NewKey("flag", false).In(global)

	outer := opt.Push(true)
	inner := opt.Push(false)

	if err := outer.Restore(); !errors.Is(err, ErrStackDiscipline) {
		t.Fatalf("expected ErrStackDiscipline for out of order restore, got %v", err)
	}
	if err := inner.Restore(); err != nil {
		t.Fatalf("inner restore: %v", err)
	}
	if err := outer.Restore(); err != nil {
		t.Fatalf("outer restore: %v", err)
	}
	if err := outer.Restore(); !errors.Is(err, ErrStackDiscipline) {
		t.Fatalf("expected ErrStackDiscipline for repeated restore, got %v", err)
	}
	if opt.Depth() != 0 {
		t.Fatalf("expected empty stack, got depth %d", opt.Depth())
	}
}

func TestGuardRestoreAfterPopRejectsLaterPush(t *testing.T) {
	global := NewScope("global", nil)
	opt := NewKey("epochs", 0).In(global)

	stale := opt.Push(1)
	if err := opt.Pop(); err != nil {
		t.Fatalf("pop: %v", err)
	}
	opt.Push(2)

	if err := stale.Restore(); !errors.Is(err, ErrStackDiscipline) {
		t.Fatalf("expected ErrStackDiscipline for a popped guard, got %v", err)
	}
	if opt.Get() != 2 || opt.Depth() != 1 {
		t.Fatalf("expected later push untouched, got value %d depth %d", opt.Get(), opt.Depth())
	}
}

func TestOptionWithRestoresOnErrorAndPanic(t *testing.T) {
	global := NewScope("global", nil)
	opt := NewKey("create_dirs", true).In(global)
	boom := errors.New("boom")

	err := opt.With(false, func() error {
		if opt.Get() {
			t.Fatalf("expected override inside block")
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if !opt.Get() {
		t.Fatalf("expected default restored after error")
	}

	func() {
		defer func() { _ = recover() }()
		_ = opt.With(false, func() error { panic("bad") })
	}()
	if !opt.Get() || opt.Depth() != 0 {
		t.Fatalf("expected default restored after panic, depth %d", opt.Depth())
	}
}

func TestOptionWrapIsReentrant(t *testing.T) {
	global := NewScope("global", nil)
	opt := NewKey("level", 0).In(global)

	var seen []int
	var recurse func() error
	depth := 0
	recurse = opt.Wrap(1, func() error {
		seen = append(seen, opt.Depth())
		depth++
		if depth < 3 {
			if err := recurse(); err != nil {
				return err
			}
		}
		return nil
	})

	if err := recurse(); err != nil {
		t.Fatalf("wrap: %v", err)
	}
	want := []int{1, 2, 3}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("expected depths %v, got %v", want, seen)
		}
	}
	if opt.Depth() != 0 || opt.Get() != 0 {
		t.Fatalf("expected stack unwound, depth %d value %d", opt.Depth(), opt.Get())
	}
}

func TestOptionFreezeDetachesFromParent(t *testing.T) {
	global := NewScope("global", nil)
	instance := global.Child("instance")
	key := NewKey("save_on_del", true)

	key.In(instance).Freeze()
	key.In(global).Set(false)
	if !key.In(instance).Get() {
		t.Fatalf("expected frozen instance value to ignore later global changes")
	}
}

func TestOptionTypeMismatchPanics(t *testing.T) {
	global := NewScope("global", nil)
	NewKey("shared", "text").In(global).Set("value")

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for mismatched option type")
		}
	}()
	NewKey("shared", 0).In(global).Get()
}

func TestScopePath(t *testing.T) {
	instance := NewScope("global", nil).Child("Foo").Child("Foo_1")
	path := instance.Path()
	want := []string{"global", "Foo", "Foo_1"}
	if len(path) != len(want) {
		t.Fatalf("expected %v, got %v", want, path)
	}
	for i := range want {
		if path[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, path)
		}
	}
}
