package failsafe

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-failsafe/dirs"
	"github.com/goliatone/go-failsafe/exit"
	"github.com/goliatone/go-failsafe/pkg/activity"
)

// Origin tells how a checkpoint value came to be.
type Origin int

const (
	// Fresh values were produced by the constructor.
	Fresh Origin = iota + 1
	// Restored values were loaded from a checkpoint file.
	Restored
)

func (o Origin) String() string {
	switch o {
	case Fresh:
		return "fresh"
	case Restored:
		return "restored"
	default:
		return "unknown"
	}
}

// State is the lifecycle state of a checkpoint.
type State int

const (
	StateLive State = iota + 1
	StateRestored
	StateFinalizing
	// StatePersisted means the value was saved at finalization.
	StatePersisted
	// StateRemoved means the file was removed after a failed save or a clean exit.
	StateRemoved
	// StateRetired means finalization ran with save_on_del disabled.
	StateRetired
)

func (s State) String() string {
	switch s {
	case StateLive:
		return "live"
	case StateRestored:
		return "restored"
	case StateFinalizing:
		return "finalizing"
	case StatePersisted:
		return "persisted"
	case StateRemoved:
		return "removed"
	case StateRetired:
		return "retired"
	default:
		return "unknown"
	}
}

// Terminal reports whether finalization has completed.
func (s State) Terminal() bool {
	return s == StatePersisted || s == StateRemoved || s == StateRetired
}

// Checkpoint is one built instance. Value is the user state persisted at
// finalization.
type Checkpoint[T any] struct {
	scopeOptions
	Value T

	typ    *Type[T]
	id     int
	path   string
	origin Origin
	state  State
	policy Policy
	hook   *exit.Hook
}

func (c *Checkpoint[T]) ID() int { return c.id }

// Path is the checkpoint file path fixed at construction.
func (c *Checkpoint[T]) Path() string { return c.path }

func (c *Checkpoint[T]) Origin() Origin { return c.origin }

func (c *Checkpoint[T]) State() State { return c.state }

// Policy returns the policy snapshot taken at construction.
func (c *Checkpoint[T]) Policy() Policy { return c.policy }

// Type returns the registered type.
func (c *Checkpoint[T]) Type() *Type[T] { return c.typ }

// Folder returns the directory node effective for this instance.
func (c *Checkpoint[T]) Folder() *dirs.Node { return c.typ.folderOf(c.scope) }

// Flush saves the value now without finalizing.
func (c *Checkpoint[T]) Flush() error {
	if err := c.typ.adapter.Save(c.path, c.Value); err != nil {
		return &SaveError{Type: c.typ.name, ID: c.id, Path: c.path, Err: err}
	}
	return nil
}

// Close finalizes the checkpoint and withdraws its exit hook. Finalization
// runs at most once, whether triggered here or at process exit.
func (c *Checkpoint[T]) Close() error {
	if c.hook != nil {
		c.hook.Unregister()
	}
	return c.finalize()
}

func (c *Checkpoint[T]) finalize() error {
	if c.state.Terminal() || c.state == StateFinalizing {
		return nil
	}
	c.state = StateFinalizing
	m := c.typ.manager

	if !c.SaveOnDel().Get() {
		c.state = StateRetired
		m.logger.LogLifecycle(c.event(TransitionRetired, nil))
		return nil
	}

	if err := c.typ.adapter.Save(c.path, c.Value); err != nil {
		saveErr := &SaveError{Type: c.typ.name, ID: c.id, Path: c.path, Err: err}
		if rmErr := c.typ.adapter.Remove(c.path); rmErr != nil {
			saveErr.RemoveErr = rmErr
		}
		c.state = StateRemoved
		m.record(c.event(TransitionSaveFailed, saveErr), activity.BuildSaveFailedEvent)
		return saveErr
	}
	c.state = StatePersisted
	m.record(c.event(TransitionSaved, nil), activity.BuildSavedEvent)

	if _, err := m.coordinator.Register(exit.PhaseCleanup, c.name(), c.removeOnCompletion); err != nil {
		if errors.Is(err, exit.ErrShutdownComplete) {
			return nil
		}
		return fmt.Errorf("failsafe: register cleanup for %s: %w", c.name(), err)
	}
	return nil
}

// removeOnCompletion runs once the exit status is final.
func (c *Checkpoint[T]) removeOnCompletion(status exit.Status) error {
	if !status.Clean() || !c.RemoveOnCompletion().Get() {
		return nil
	}
	if err := c.typ.adapter.Remove(c.path); err != nil {
		return fmt.Errorf("failsafe: remove %s: %w", c.path, err)
	}
	c.state = StateRemoved
	c.typ.manager.record(c.event(TransitionRemoved, nil), activity.BuildRemovedEvent)
	return nil
}

func (c *Checkpoint[T]) name() string {
	return fmt.Sprintf("%s_%d", c.typ.name, c.id)
}

func (c *Checkpoint[T]) event(transition Transition, err error) LifecycleEvent {
	return LifecycleEvent{
		Type:       c.typ.name,
		ID:         c.id,
		Path:       c.path,
		Transition: transition,
		Err:        err,
	}
}
