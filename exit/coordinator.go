package exit

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
)

var (
	// ErrStatusRecorded indicates a second attempt to record the exit status.
	ErrStatusRecorded = errors.New("exit: status already recorded")
	// ErrStatusUnset indicates shutdown ran without a recorded status, meaning
	// some exit path bypassed Exit, Fail, Main or Run.
	ErrStatusUnset = errors.New("exit: shutdown without recorded status")
	// ErrShutdownComplete indicates a hook registration after shutdown finished.
	ErrShutdownComplete = errors.New("exit: shutdown already completed")
)

// Phase orders shutdown hooks. Every PhasePersist hook runs before any
// PhaseCleanup hook.
type Phase int

const (
	// PhasePersist runs disposal hooks, such as persisting live objects.
	PhasePersist Phase = iota
	// PhaseCleanup runs hooks that depend on the final exit status.
	PhaseCleanup
)

func (p Phase) String() string {
	switch p {
	case PhasePersist:
		return "persist"
	case PhaseCleanup:
		return "cleanup"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// HookFunc runs during shutdown with the status recorded at that point.
type HookFunc func(Status) error

// Hook is a registered shutdown callback.
type Hook struct {
	name    string
	phase   Phase
	fn      HookFunc
	owner   *Coordinator
	removed bool
}

// Name returns the hook name.
func (h *Hook) Name() string {
	return h.name
}

// Phase returns the phase the hook runs in.
func (h *Hook) Phase() Phase {
	return h.phase
}

// Unregister removes the hook. It reports false when the hook already ran or
// was already removed.
func (h *Hook) Unregister() bool {
	if h == nil || h.removed {
		return false
	}
	h.removed = true
	return h.owner.remove(h)
}

// HookError wraps the failure of a single shutdown hook.
type HookError struct {
	Hook  string
	Phase Phase
	Err   error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("exit: %s hook %q: %v", e.Phase, e.Hook, e.Err)
}

func (e *HookError) Unwrap() error {
	return e.Err
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithExitFunc replaces os.Exit, mainly for tests.
func WithExitFunc(fn func(int)) Option {
	return func(c *Coordinator) {
		if fn != nil {
			c.exitFunc = fn
		}
	}
}

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Coordinator records the exit status of the process exactly once and runs
// phased shutdown hooks in reverse registration order.
//
// It is not safe for concurrent use.
type Coordinator struct {
	status   Status
	hooks    [2][]*Hook
	running  bool
	done     bool
	exitFunc func(int)
	logger   *slog.Logger
}

// New constructs a Coordinator that terminates through os.Exit.
func New(opts ...Option) *Coordinator {
	c := &Coordinator{
		exitFunc: os.Exit,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Record stores status. Only the first call succeeds.
func (c *Coordinator) Record(status Status) error {
	if !status.IsSet() {
		return fmt.Errorf("exit: cannot record unset status")
	}
	if c.status.IsSet() {
		return fmt.Errorf("%w: have %s, got %s", ErrStatusRecorded, c.status, status)
	}
	c.status = status
	c.logger.Debug("exit status recorded", "status", status.String())
	return nil
}

// Status returns the recorded status, Unset until Record succeeds.
func (c *Coordinator) Status() Status {
	return c.status
}

// Clean reports whether the process finished cleanly with code 0.
func (c *Coordinator) Clean() bool {
	return c.status.Clean()
}

// Register adds fn to phase. Hooks registered while shutdown is running are
// still executed when their phase has not completed yet.
func (c *Coordinator) Register(phase Phase, name string, fn HookFunc) (*Hook, error) {
	if fn == nil {
		return nil, fmt.Errorf("exit: hook %q is nil", name)
	}
	if phase != PhasePersist && phase != PhaseCleanup {
		return nil, fmt.Errorf("exit: unknown %s for hook %q", phase, name)
	}
	if c.done {
		return nil, fmt.Errorf("%w: hook %q", ErrShutdownComplete, name)
	}
	hook := &Hook{name: name, phase: phase, fn: fn, owner: c}
	c.hooks[phase] = append(c.hooks[phase], hook)
	return hook, nil
}

// Pending returns the number of hooks waiting in phase.
func (c *Coordinator) Pending(phase Phase) int {
	if phase != PhasePersist && phase != PhaseCleanup {
		return 0
	}
	return len(c.hooks[phase])
}

func (c *Coordinator) remove(hook *Hook) bool {
	list := c.hooks[hook.phase]
	for i := len(list) - 1; i >= 0; i-- {
		if list[i] == hook {
			c.hooks[hook.phase] = append(list[:i:i], list[i+1:]...)
			return true
		}
	}
	return false
}

// Shutdown runs every persist hook, newest first, then every cleanup hook,
// newest first. Hook failures do not stop the remaining hooks; they are
// joined into the returned error. Shutdown runs at most once.
func (c *Coordinator) Shutdown() error {
	if c.done || c.running {
		return nil
	}
	c.running = true
	defer func() {
		c.running = false
		c.done = true
	}()

	var errs []error
	if !c.status.IsSet() {
		c.logger.Error("shutdown without recorded exit status")
		errs = append(errs, ErrStatusUnset)
	}
	for _, phase := range []Phase{PhasePersist, PhaseCleanup} {
		for {
			hook := c.popHook(phase)
			if hook == nil {
				break
			}
			if err := hook.fn(c.status); err != nil {
				c.logger.Error("shutdown hook failed", "hook", hook.name, "phase", phase.String(), "error", err)
				errs = append(errs, &HookError{Hook: hook.name, Phase: phase, Err: err})
			}
		}
	}
	return errors.Join(errs...)
}

func (c *Coordinator) popHook(phase Phase) *Hook {
	list := c.hooks[phase]
	if len(list) == 0 {
		return nil
	}
	hook := list[len(list)-1]
	c.hooks[phase] = list[:len(list)-1]
	hook.removed = true
	return hook
}

// Exit records a controlled exit with code, runs shutdown and terminates.
func (c *Coordinator) Exit(code int) {
	c.finish(Code(code), code)
}

// Fail records an exception exit caused by err, runs shutdown and terminates
// with code 1.
func (c *Coordinator) Fail(err error) {
	c.logger.Error("process failed", "error", err)
	c.finish(Exception, 1)
}

func (c *Coordinator) finish(status Status, code int) {
	if err := c.Record(status); err != nil {
		c.logger.Warn("exit status not recorded", "error", err)
	}
	if err := c.Shutdown(); err != nil {
		c.logger.Error("shutdown completed with errors", "error", err)
	}
	c.exitFunc(code)
}

// Main runs fn and exits with the code it returns. A panic escaping fn is
// recorded as Exception, shutdown runs, and the panic is re-raised.
func (c *Coordinator) Main(fn func() int) {
	defer c.recoverPanic()
	c.Exit(fn())
}

// Run runs fn, exiting with 0 on success and failing on error.
func (c *Coordinator) Run(fn func() error) {
	defer c.recoverPanic()
	if err := fn(); err != nil {
		c.Fail(err)
		return
	}
	c.Exit(0)
}

func (c *Coordinator) recoverPanic() {
	r := recover()
	if r == nil {
		return
	}
	if err := c.Record(Exception); err != nil {
		c.logger.Warn("exit status not recorded", "error", err)
	}
	if err := c.Shutdown(); err != nil {
		c.logger.Error("shutdown completed with errors", "error", err)
	}
	panic(r)
}
