// Package dirs provides a lazily materialized directory tree.
//
// Nodes are declared with Update or Child and only created on disk when
// resolved through Path while the create_dirs option is true:
//
//	tree := dirs.New("runs", dirs.WithArgs(ns))
//	_ = tree.Update(map[string]any{
//		"$args.dataset.name": []string{"checkpoints", "logs"},
//	})
//	logs, err := tree.Child("mnist", "logs").Path()
//
// Segment names replace spaces with "_" and a leading "." with "_H_".
package dirs
