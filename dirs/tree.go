package dirs

import (
	"log/slog"
	"os"
	"strings"

	"github.com/goliatone/go-failsafe/scoped"
)

// CreateDirs gates directory materialization when nodes are resolved.
var CreateDirs = scoped.NewKey("create_dirs", true)

// FS creates directories. The default implementation is os.MkdirAll.
type FS interface {
	MkdirAll(path string, perm os.FileMode) error
}

type osFS struct{}

func (osFS) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// Option configures a Tree.
type Option func(*Tree)

// WithScope makes the tree scope a child of parent so create_dirs overrides
// on parent are visible to the tree.
func WithScope(parent *scoped.Scope) Option {
	return func(t *Tree) {
		t.scope = scoped.NewScope("dirs", parent)
	}
}

// WithArgs installs the namespace used for $args placeholders.
func WithArgs(args Args) Option {
	return func(t *Tree) {
		t.args = args
	}
}

// WithFS replaces the filesystem used for materialization.
func WithFS(fs FS) Option {
	return func(t *Tree) {
		if fs != nil {
			t.fs = fs
		}
	}
}

// WithLogger sets the logger. Nil keeps the discard logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tree) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// Tree is a lazily materialized directory namespace.
type Tree struct {
	root   *Node
	scope  *scoped.Scope
	args   Args
	fs     FS
	logger *slog.Logger
}

// New builds a tree rooted at root ("." when empty).
func New(root string, opts ...Option) *Tree {
	t := &Tree{
		fs:     osFS{},
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	if t.scope == nil {
		t.scope = scoped.NewScope("dirs", nil)
	}
	if root == "" {
		root = "."
	}
	t.root = &Node{tree: t, name: root, path: root}
	return t
}

// Scope returns the tree scope.
func (t *Tree) Scope() *scoped.Scope { return t.scope }

// CreateDirs returns the create_dirs option bound to the tree scope.
func (t *Tree) CreateDirs() scoped.Option[bool] {
	return CreateDirs.In(t.scope)
}

// Root returns the root node.
func (t *Tree) Root() *Node { return t.root }

// RootPath returns the textual root path.
func (t *Tree) RootPath() string { return t.root.path }

// Child is shorthand for Root().Child.
func (t *Tree) Child(names ...string) *Node {
	return t.root.Child(names...)
}

// Path resolves the root node.
func (t *Tree) Path() (string, error) {
	return t.root.Path()
}

// Update merges spec into the tree. Existing branches are kept. The spec is
// fully parsed before any node is added, so a failing update leaves the tree
// unchanged. Nothing is created on disk.
func (t *Tree) Update(spec any) error {
	entries, err := t.parse(spec)
	if err != nil {
		return err
	}
	t.root.merge(entries)
	t.logger.Debug("directory tree updated", "root", t.root.path, "entries", len(entries))
	return nil
}

// Rebase replaces the oldRoot prefix of every node path with newRoot. oldRoot
// must name the root itself or one of its ancestor directories.
func (t *Tree) Rebase(oldRoot, newRoot string) error {
	current := t.root.path
	if newRoot == "" || !hasPathPrefix(current, oldRoot) {
		return &RebaseError{Root: current, OldRoot: oldRoot, NewRoot: newRoot}
	}
	t.root.name = newRoot + current[len(oldRoot):]
	t.root.path = t.root.name
	t.root.clear()
	t.Walk(func(n *Node) bool {
		for _, child := range n.children {
			child.path = n.path + "/" + child.name
			child.clear()
		}
		return true
	})
	t.logger.Info("directory tree rebased", "from", current, "to", t.root.path)
	return nil
}

// hasPathPrefix reports whether prefix covers whole segments of path.
func hasPathPrefix(path, prefix string) bool {
	if prefix == "" || !strings.HasPrefix(path, prefix) {
		return false
	}
	return len(path) == len(prefix) || path[len(prefix)] == '/'
}

// SetRoot rebases the whole tree onto newRoot.
func (t *Tree) SetRoot(newRoot string) error {
	return t.Rebase(t.root.path, newRoot)
}

// Reset drops every branch below the root.
func (t *Tree) Reset() {
	t.root.children = nil
	t.root.clear()
}

// Walk visits nodes parent first, children in name order. Returning false
// skips the node's descendants.
func (t *Tree) Walk(fn func(*Node) bool) {
	t.root.walk(fn)
}
