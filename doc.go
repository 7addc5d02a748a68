// Package failsafe gives experiment programs automatic checkpoints.
//
// A Manager owns a global policy scope, a lazily created directory tree and
// an exit coordinator. Types registered with Register build instances that
// are restored from their checkpoint file when one exists and saved when
// they are closed or when the process exits:
//
//	m, err := failsafe.NewManager(failsafe.WithRoot("runs"))
//	trainer, err := failsafe.Register[Progress](m, "Trainer")
//	cp, err := trainer.Build(func() (Progress, error) { return Progress{}, nil })
//	defer cp.Close()
//
// Checkpoint files are named <Type>_<id><ext> and live in the directory node
// held by the failsafe_folder option. The policy options (load_on_init,
// save_on_del, remove_on_completion, inherit_on_creation) are resolved through
// instance, class and global scopes, nearest override first.
//
// Persistence runs in two exit phases. Phase one saves every open checkpoint
// in reverse build order. Phase two runs after the exit status is final and
// removes saved files when the process finished cleanly and
// remove_on_completion is set. Failed saves remove the partial file and
// return a *SaveError.
//
// Scopes, id counters and the tree are not safe for concurrent use.
package failsafe
