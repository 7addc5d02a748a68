package scoped

import (
	"errors"
	"fmt"
)

// Key declares a typed option and its default value. Keys are identified by
// name; binding the same name to different value types within one scope chain
// is a programming error.
type Key[T any] struct {
	name string
	def  T
}

// NewKey declares an option named name with the provided default.
func NewKey[T any](name string, def T) Key[T] {
	return Key[T]{name: name, def: def}
}

// Name returns the option name.
func (k Key[T]) Name() string {
	return k.name
}

// Default returns the declared default.
func (k Key[T]) Default() T {
	return k.def
}

// In binds the key to scope, producing an accessor whose writes land in that
// scope and whose reads fall back through its parents.
func (k Key[T]) In(scope *Scope) Option[T] {
	return Option[T]{key: k, scope: scope}
}

// Option is a Key bound to a Scope.
type Option[T any] struct {
	key   Key[T]
	scope *Scope
}

// Name returns the option name.
func (o Option[T]) Name() string {
	return o.key.name
}

// Scope returns the scope writes are applied to.
func (o Option[T]) Scope() *Scope {
	return o.scope
}

// Get returns the nearest override in the scope chain, or the declared
// default when no scope overrides the option.
func (o Option[T]) Get() T {
	value, _, ok := o.scope.lookup(o.key.name)
	if !ok {
		return o.key.def
	}
	return o.cast(value)
}

// IsSet reports whether the bound scope itself holds an override.
func (o Option[T]) IsSet() bool {
	sl := o.scope.slot(o.key.name, false)
	return sl != nil && sl.state.set
}

// Set replaces the current override of the bound scope without touching the
// override stack.
func (o Option[T]) Set(value T) {
	o.mustSlot().state = overrideState{value: value, set: true}
}

// Reset removes the current override so reads fall back to the parent scope.
func (o Option[T]) Reset() {
	if sl := o.scope.slot(o.key.name, false); sl != nil {
		sl.state = overrideState{}
	}
}

// Freeze pins the effective value into the bound scope so later changes in
// parent scopes are no longer observed.
func (o Option[T]) Freeze() {
	o.Set(o.Get())
}

// Depth returns how many overrides are currently pushed on the bound scope.
func (o Option[T]) Depth() int {
	sl := o.scope.slot(o.key.name, false)
	if sl == nil {
		return 0
	}
	return len(sl.saved)
}

// Push installs value as the override of the bound scope, remembering the
// previous state. The returned guard restores exactly that state.
func (o Option[T]) Push(value T) *Guard {
	sl := o.mustSlot()
	sl.pushes++
	sl.saved = append(sl.saved, frame{prev: sl.state, id: sl.pushes})
	sl.state = overrideState{value: value, set: true}
	return &Guard{name: o.key.name, slot: sl, frame: sl.pushes}
}

// Pop restores the state that preceded the latest Push.
func (o Option[T]) Pop() error {
	sl := o.scope.slot(o.key.name, false)
	if sl == nil || len(sl.saved) == 0 {
		return fmt.Errorf("%w: option %q in %s", ErrStackUnderflow, o.key.name, o.scope)
	}
	sl.pop()
	return nil
}

// With runs fn with value pushed and restores the previous state afterwards,
// even when fn panics.
func (o Option[T]) With(value T, fn func() error) (err error) {
	guard := o.Push(value)
	defer func() {
		if restoreErr := guard.Restore(); restoreErr != nil {
			err = errors.Join(err, restoreErr)
		}
	}()
	return fn()
}

// Wrap returns fn decorated so that every invocation runs with value pushed.
// Each call pushes its own frame, which keeps recursive calls correctly nested.
func (o Option[T]) Wrap(value T, fn func() error) func() error {
	return func() error {
		return o.With(value, fn)
	}
}

// Trace reports how every scope in the chain contributes to the option.
func (o Option[T]) Trace() Trace {
	trace := Trace{Option: o.key.name, Default: o.key.def}
	value, holder, found := o.scope.lookup(o.key.name)
	for cur := o.scope; cur != nil; cur = cur.parent {
		layer := Provenance{Scope: cur.name}
		if sl := cur.slot(o.key.name, false); sl != nil {
			layer.Depth = len(sl.saved)
			if sl.state.set {
				layer.Found = true
				layer.Value = sl.state.value
			}
		}
		trace.Layers = append(trace.Layers, layer)
	}
	if found {
		trace.Value = value
		trace.Source = holder.name
	} else {
		trace.Value = o.key.def
	}
	return trace
}

func (o Option[T]) mustSlot() *slot {
	if o.scope == nil {
		panic(fmt.Sprintf("scoped: option %q is not bound to a scope", o.key.name))
	}
	return o.scope.slot(o.key.name, true)
}

func (o Option[T]) cast(value any) T {
	if value == nil {
		var zero T
		return zero
	}
	typed, ok := value.(T)
	if !ok {
		panic(fmt.Sprintf("scoped: option %q holds %T, not %T", o.key.name, value, o.key.def))
	}
	return typed
}

func (sl *slot) pop() {
	last := len(sl.saved) - 1
	sl.state = sl.saved[last].prev
	sl.saved = sl.saved[:last]
}

// Guard restores the override replaced by a Push.
type Guard struct {
	name  string
	slot  *slot
	frame uint64
	done  bool
}

// Restore pops the override installed by the matching Push. Restoring a guard
// whose push is not on top of the stack (out of order, already popped, or
// restored twice) fails with ErrStackDiscipline and leaves the stack
// untouched.
func (g *Guard) Restore() error {
	if g == nil || g.slot == nil {
		return fmt.Errorf("%w: nil guard", ErrStackDiscipline)
	}
	if g.done {
		return fmt.Errorf("%w: option %q already restored", ErrStackDiscipline, g.name)
	}
	saved := g.slot.saved
	if len(saved) == 0 || saved[len(saved)-1].id != g.frame {
		return fmt.Errorf("%w: option %q push %d is not on top of the stack",
			ErrStackDiscipline, g.name, g.frame)
	}
	g.slot.pop()
	g.done = true
	return nil
}
