package failsafe

import (
	"fmt"

	"github.com/goliatone/go-failsafe/dirs"
	"github.com/goliatone/go-failsafe/exit"
	"github.com/goliatone/go-failsafe/pkg/activity"
	"github.com/goliatone/go-failsafe/scoped"
)

// Type is a registered checkpoint type. It owns the class scope and the id
// counter shared by every instance it builds.
type Type[T any] struct {
	scopeOptions
	name    string
	manager *Manager
	adapter adapter[T]
	lastID  int
}

// Register declares a checkpoint type named name. Invalid names, duplicate
// registrations and invalid load/save contracts are reported as
// *ConfigurationError before any instance exists.
func Register[T any](m *Manager, name string, opts ...TypeOption) (*Type[T], error) {
	if err := validTypeName(name); err != nil {
		return nil, err
	}
	if _, exists := m.types[name]; exists {
		return nil, configErrorf(name, "type already registered")
	}
	cfg := typeConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	a, err := buildAdapter[T](name, cfg)
	if err != nil {
		return nil, err
	}
	t := &Type[T]{
		scopeOptions: scopeOptions{scope: m.scope.Child(name)},
		name:         name,
		manager:      m,
		adapter:      a,
	}
	m.types[name] = t
	return t, nil
}

func (t *Type[T]) Name() string { return t.name }

// Scope returns the class scope.
func (t *Type[T]) Scope() *scoped.Scope { return t.scope }

// LastID returns the id of the most recently built instance.
func (t *Type[T]) LastID() int { return t.lastID }

// ResetIDs restarts the id sequence; the next instance gets id 1.
func (t *Type[T]) ResetIDs() { t.lastID = 0 }

// Filename returns the checkpoint file name for id.
func (t *Type[T]) Filename(id int) string { return t.adapter.Filename(id) }

// Path resolves the checkpoint path for id under the folder effective in the
// class scope.
func (t *Type[T]) Path(id int) (string, error) {
	return t.pathIn(t.scope, id)
}

func (t *Type[T]) pathIn(scope *scoped.Scope, id int) (string, error) {
	path, err := t.folderOf(scope).Join(t.adapter.Filename(id))
	if err != nil {
		return "", fmt.Errorf("failsafe: resolve folder for %s_%d: %w", t.name, id, err)
	}
	return path, nil
}

// Build constructs or restores the next instance. When load_on_init is true
// and a checkpoint exists at the instance path, its value is used and ctor
// is not run. A checkpoint that fails to load is reported and treated as
// absent. The returned checkpoint is finalized at Close or, failing that, at
// process exit.
func (t *Type[T]) Build(ctor func() (T, error)) (*Checkpoint[T], error) {
	t.lastID++
	id := t.lastID
	scope := scoped.NewScope(fmt.Sprintf("%s_%d", t.name, id), t.scope)
	path, err := t.pathIn(scope, id)
	if err != nil {
		return nil, err
	}

	cp := &Checkpoint[T]{
		scopeOptions: scopeOptions{scope: scope},
		typ:          t,
		id:           id,
		path:         path,
		policy:       policyIn(scope),
	}

	restored := false
	if cp.policy.LoadOnInit {
		value, ok, err := t.restore(path)
		switch {
		case err != nil:
			t.manager.record(cp.event(TransitionLoadFailed, err), activity.BuildLoadFailedEvent)
		case ok:
			cp.Value = value
			restored = true
		}
	}

	if restored {
		cp.origin = Restored
		cp.state = StateRestored
		t.manager.record(cp.event(TransitionRestored, nil), activity.BuildRestoredEvent)
	} else {
		if ctor != nil {
			value, err := ctor()
			if err != nil {
				return nil, fmt.Errorf("failsafe: construct %s_%d: %w", t.name, id, err)
			}
			cp.Value = value
		}
		cp.origin = Fresh
		cp.state = StateLive
		t.manager.record(cp.event(TransitionConstructed, nil), activity.BuildConstructedEvent)
	}

	if cp.policy.InheritOnCreation {
		freezePolicy(scope)
	}

	hook, err := t.manager.coordinator.Register(exit.PhasePersist, cp.name(), func(exit.Status) error {
		return cp.finalize()
	})
	if err != nil {
		return nil, fmt.Errorf("failsafe: register %s: %w", cp.name(), err)
	}
	cp.hook = hook
	return cp, nil
}

// MustBuild is like Build but panics on error.
func (t *Type[T]) MustBuild(ctor func() (T, error)) *Checkpoint[T] {
	cp, err := t.Build(ctor)
	if err != nil {
		panic(err)
	}
	return cp
}

// restore loads with load_on_init and save_on_del disabled on the class
// scope so checkpoints built by a custom loader neither restore nor persist.
func (t *Type[T]) restore(path string) (value T, ok bool, err error) {
	err = t.LoadOnInit().With(false, func() error {
		return t.SaveOnDel().With(false, func() error {
			var loadErr error
			value, ok, loadErr = t.adapter.Load(path)
			return loadErr
		})
	})
	return value, ok, err
}

func (t *Type[T]) folderOf(scope *scoped.Scope) *dirs.Node {
	if folder := FailsafeFolder.In(scope).Get(); folder != nil {
		return folder
	}
	return t.manager.tree.Root()
}
