package failsafe

import (
	"github.com/goliatone/go-failsafe/dirs"
	"github.com/goliatone/go-failsafe/scoped"
)

// Checkpoint policy options with their declared defaults.
var (
	// InheritOnCreation freezes the effective policy into an instance's own
	// scope when it is built.
	InheritOnCreation = scoped.NewKey("inherit_on_creation", false)
	// LoadOnInit attempts a restore from the checkpoint file before running
	// the constructor.
	LoadOnInit = scoped.NewKey("load_on_init", true)
	// SaveOnDel saves the object when it is finalized.
	SaveOnDel = scoped.NewKey("save_on_del", true)
	// RemoveOnCompletion deletes saved checkpoints after a clean exit.
	RemoveOnCompletion = scoped.NewKey("remove_on_completion", false)
	// FailsafeFolder is the directory node checkpoint files live in. Nil
	// resolves to the manager's tree root.
	FailsafeFolder = scoped.NewKey[*dirs.Node]("failsafe_folder", nil)
)

// Policy is a snapshot of the policy options for one scope.
type Policy struct {
	InheritOnCreation  bool
	LoadOnInit         bool
	SaveOnDel          bool
	RemoveOnCompletion bool
	Folder             *dirs.Node
}

func policyIn(scope *scoped.Scope) Policy {
	return Policy{
		InheritOnCreation:  InheritOnCreation.In(scope).Get(),
		LoadOnInit:         LoadOnInit.In(scope).Get(),
		SaveOnDel:          SaveOnDel.In(scope).Get(),
		RemoveOnCompletion: RemoveOnCompletion.In(scope).Get(),
		Folder:             FailsafeFolder.In(scope).Get(),
	}
}

func freezePolicy(scope *scoped.Scope) {
	InheritOnCreation.In(scope).Freeze()
	LoadOnInit.In(scope).Freeze()
	SaveOnDel.In(scope).Freeze()
	RemoveOnCompletion.In(scope).Freeze()
	FailsafeFolder.In(scope).Freeze()
}

// scopeOptions exposes the policy options bound to one scope.
type scopeOptions struct {
	scope *scoped.Scope
}

func (s scopeOptions) InheritOnCreation() scoped.Option[bool] {
	return InheritOnCreation.In(s.scope)
}

func (s scopeOptions) LoadOnInit() scoped.Option[bool] {
	return LoadOnInit.In(s.scope)
}

func (s scopeOptions) SaveOnDel() scoped.Option[bool] {
	return SaveOnDel.In(s.scope)
}

func (s scopeOptions) RemoveOnCompletion() scoped.Option[bool] {
	return RemoveOnCompletion.In(s.scope)
}

func (s scopeOptions) FailsafeFolder() scoped.Option[*dirs.Node] {
	return FailsafeFolder.In(s.scope)
}
