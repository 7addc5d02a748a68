package failsafe

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/goliatone/go-failsafe/dirs"
	"github.com/goliatone/go-failsafe/exit"
	"github.com/goliatone/go-failsafe/pkg/activity"
	"github.com/goliatone/go-failsafe/scoped"
	"github.com/google/uuid"
)

// Option configures a Manager.
type Option func(*managerConfig)

type managerConfig struct {
	cfg           Config
	root          string
	scope         *scoped.Scope
	tree          *dirs.Tree
	treeOpts      []dirs.Option
	coordinator   *exit.Coordinator
	logger        LifecycleLogger
	activityHooks activity.Hooks
	activityCfg   *activity.Config
	runID         string
}

// WithConfig applies an ambient configuration. A root set with WithRoot wins
// over cfg.Root regardless of option order.
func WithConfig(cfg Config) Option {
	return func(mc *managerConfig) {
		mc.cfg = cfg
	}
}

// WithRoot sets the root of the default directory tree.
func WithRoot(root string) Option {
	return func(mc *managerConfig) {
		mc.root = root
	}
}

// WithGlobalScope uses scope as the manager's global scope. Trees built with
// dirs.WithScope(scope) then share create_dirs overrides with the manager.
func WithGlobalScope(scope *scoped.Scope) Option {
	return func(mc *managerConfig) {
		mc.scope = scope
	}
}

// WithTree supplies the directory tree instead of building one from the root.
func WithTree(tree *dirs.Tree) Option {
	return func(mc *managerConfig) {
		mc.tree = tree
	}
}

// WithTreeOptions passes options to the default directory tree.
func WithTreeOptions(opts ...dirs.Option) Option {
	return func(mc *managerConfig) {
		mc.treeOpts = append(mc.treeOpts, opts...)
	}
}

// WithCoordinator supplies the exit coordinator shared with the process.
func WithCoordinator(c *exit.Coordinator) Option {
	return func(mc *managerConfig) {
		mc.coordinator = c
	}
}

// WithLogger attaches a lifecycle logger. Nil selects the noop logger.
func WithLogger(logger LifecycleLogger) Option {
	return func(mc *managerConfig) {
		if logger == nil {
			mc.logger = noopLifecycleLogger{}
			return
		}
		mc.logger = logger
	}
}

// WithActivityHooks attaches activity hooks. Hooks only receive events when
// activity is enabled, which WithActivityHooks does unless a config says
// otherwise.
func WithActivityHooks(hooks activity.Hooks) Option {
	return func(mc *managerConfig) {
		mc.activityHooks = append(mc.activityHooks, hooks...)
	}
}

// WithActivityConfig overrides the activity configuration.
func WithActivityConfig(cfg activity.Config) Option {
	return func(mc *managerConfig) {
		mc.activityCfg = &cfg
	}
}

// WithRunID sets the run identifier stamped on activity events.
func WithRunID(runID string) Option {
	return func(mc *managerConfig) {
		mc.runID = runID
	}
}

// Manager owns the global policy scope, the directory tree checkpoint files
// are placed in and the registered checkpoint types.
type Manager struct {
	scopeOptions
	tree        *dirs.Tree
	coordinator *exit.Coordinator
	logger      LifecycleLogger
	emitter     *activity.Emitter
	runID       string
	types       map[string]any
}

// NewManager builds a manager. Policy flags from the config are set on the
// global scope; a config folder becomes the global failsafe_folder.
func NewManager(opts ...Option) (*Manager, error) {
	mc := managerConfig{cfg: DefaultConfig(), logger: noopLifecycleLogger{}}
	for _, opt := range opts {
		if opt != nil {
			opt(&mc)
		}
	}
	cfg := mc.cfg
	if mc.root != "" {
		cfg.Root = mc.root
	}
	cfg = cfg.ApplyDefaults(DefaultConfig())
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	scope := mc.scope
	if scope == nil {
		scope = scoped.NewScope("global", nil)
	}
	tree := mc.tree
	if tree == nil {
		treeOpts := append([]dirs.Option{dirs.WithScope(scope)}, mc.treeOpts...)
		tree = dirs.New(cfg.Root, treeOpts...)
	}
	if cfg.Dirs != nil {
		if err := tree.Update(cfg.Dirs); err != nil {
			return nil, fmt.Errorf("failsafe: directory spec: %w", err)
		}
	}
	coordinator := mc.coordinator
	if coordinator == nil {
		coordinator = exit.New()
	}
	runID := mc.runID
	if runID == "" {
		runID = uuid.NewString()
	}
	activityCfg := cfg.Activity
	if mc.activityCfg != nil {
		activityCfg = *mc.activityCfg
	} else if len(mc.activityHooks) > 0 && !activityCfg.Enabled {
		activityCfg.Enabled = true
	}

	m := &Manager{
		scopeOptions: scopeOptions{scope: scope},
		tree:         tree,
		coordinator:  coordinator,
		logger:       mc.logger,
		emitter:      activity.NewEmitter(mc.activityHooks, activityCfg).WithRunID(runID),
		runID:        runID,
		types:        map[string]any{},
	}
	m.applyPolicy(cfg)
	return m, nil
}

func (m *Manager) applyPolicy(cfg Config) {
	if cfg.CreateDirs != nil {
		dirs.CreateDirs.In(m.scope).Set(*cfg.CreateDirs)
	}
	if cfg.InheritOnCreation != nil {
		m.InheritOnCreation().Set(*cfg.InheritOnCreation)
	}
	if cfg.LoadOnInit != nil {
		m.LoadOnInit().Set(*cfg.LoadOnInit)
	}
	if cfg.SaveOnDel != nil {
		m.SaveOnDel().Set(*cfg.SaveOnDel)
	}
	if cfg.RemoveOnCompletion != nil {
		m.RemoveOnCompletion().Set(*cfg.RemoveOnCompletion)
	}
	if cfg.Folder != "" {
		m.FailsafeFolder().Set(m.tree.Child(cfg.Folder))
	}
}

// Scope returns the global scope.
func (m *Manager) Scope() *scoped.Scope { return m.scope }

// Dirs returns the directory tree.
func (m *Manager) Dirs() *dirs.Tree { return m.tree }

// Coordinator returns the exit coordinator.
func (m *Manager) Coordinator() *exit.Coordinator { return m.coordinator }

// RunID returns the run identifier.
func (m *Manager) RunID() string { return m.runID }

// Types lists registered type names.
func (m *Manager) Types() []string {
	names := make([]string, 0, len(m.types))
	for name := range m.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (m *Manager) record(event LifecycleEvent, build func(activity.CheckpointEventInput) activity.Event) {
	m.logger.LogLifecycle(event)
	if !m.emitter.Enabled() {
		return
	}
	err := m.emitter.Emit(context.Background(), build(activity.CheckpointEventInput{
		RunID: m.runID,
		Type:  event.Type,
		ID:    event.ID,
		Path:  event.Path,
		Err:   event.Err,
	}))
	if err != nil {
		slog.Default().Warn("checkpoint activity hook failed", "type", event.Type, "id", event.ID, "error", err)
	}
}
