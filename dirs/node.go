package dirs

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Node is one directory segment. Its path is textual: the root path followed
// by "/"-joined segment names.
type Node struct {
	tree         *Tree
	name         string
	parent       *Node
	children     map[string]*Node
	path         string
	abs          string
	materialized bool
}

func (n *Node) Name() string  { return n.name }
func (n *Node) Parent() *Node { return n.parent }

// RawPath returns the textual path without resolving it.
func (n *Node) RawPath() string { return n.path }

// Materialized reports whether the directory was created and cached.
func (n *Node) Materialized() bool { return n.materialized }

// Child returns the descendant named by names, creating missing nodes. Each
// name may hold several "/"-separated segments; every segment is normalized.
func (n *Node) Child(names ...string) *Node {
	cur := n
	for _, name := range names {
		for _, segment := range strings.Split(name, "/") {
			if segment == "" {
				continue
			}
			cur = cur.ensure(Normalize(segment))
		}
	}
	return cur
}

// Lookup returns an existing child.
func (n *Node) Lookup(name string) (*Node, bool) {
	child, ok := n.children[Normalize(name)]
	return child, ok
}

// Children returns child names in sorted order.
func (n *Node) Children() []string {
	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Path resolves the node. When create_dirs is true the directory is created
// if missing and the node is cached as materialized. When false nothing is
// touched and nothing is cached, so the next call checks the option again.
func (n *Node) Path() (string, error) {
	if n.materialized {
		return n.path, nil
	}
	if !n.tree.CreateDirs().Get() {
		return n.path, nil
	}
	if err := n.tree.fs.MkdirAll(n.path, 0o755); err != nil {
		return "", fmt.Errorf("dirs: create %q: %w", n.path, err)
	}
	abs, err := filepath.Abs(n.path)
	if err != nil {
		return "", fmt.Errorf("dirs: resolve %q: %w", n.path, err)
	}
	n.abs = abs
	n.materialized = true
	n.tree.logger.Debug("directory materialized", "path", n.path)
	return n.path, nil
}

// Abs resolves the node and returns its absolute path. The absolute path is
// cached only once the node is materialized; with create_dirs false it is
// recomputed from the working directory on every call.
func (n *Node) Abs() (string, error) {
	path, err := n.Path()
	if err != nil {
		return "", err
	}
	if n.materialized {
		return n.abs, nil
	}
	return filepath.Abs(path)
}

// Join resolves the node and appends file to its path.
func (n *Node) Join(file string) (string, error) {
	path, err := n.Path()
	if err != nil {
		return "", err
	}
	return path + "/" + file, nil
}

// String resolves the node, logging a resolution failure.
func (n *Node) String() string {
	path, err := n.Path()
	if err != nil {
		n.tree.logger.Error("directory resolution failed", "path", n.path, "error", err)
		return n.path
	}
	return path
}

func (n *Node) ensure(name string) *Node {
	if child, ok := n.children[name]; ok {
		return child
	}
	if n.children == nil {
		n.children = map[string]*Node{}
	}
	child := &Node{
		tree:   n.tree,
		name:   name,
		parent: n,
		path:   n.path + "/" + name,
	}
	n.children[name] = child
	return child
}

func (n *Node) merge(entries []entry) {
	for _, e := range entries {
		n.ensure(e.name).merge(e.children)
	}
}

func (n *Node) clear() {
	n.abs = ""
	n.materialized = false
}

func (n *Node) walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, name := range n.Children() {
		n.children[name].walk(fn)
	}
}
