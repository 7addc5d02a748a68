package scoped

import (
	"errors"
	"fmt"
)

var (
	// ErrStackUnderflow indicates a Pop without a matching Push.
	ErrStackUnderflow = errors.New("scoped: pop without matching push")
	// ErrStackDiscipline indicates a guard restored out of LIFO order or twice.
	ErrStackDiscipline = errors.New("scoped: override restored out of order")
)

// Scope is a named override layer. Lookups that find no override in a scope
// continue with its parent, so a chain such as instance -> class -> global
// resolves to the nearest override before falling back to the declared
// default of the option.
//
// Scopes are not safe for concurrent use; overrides assume properly nested,
// single-threaded push/pop discipline.
type Scope struct {
	name   string
	parent *Scope
	slots  map[string]*slot
}

type slot struct {
	state  overrideState
	saved  []frame
	pushes uint64
}

// frame is one pushed override: the state it replaced and the push that
// installed it.
type frame struct {
	prev overrideState
	id   uint64
}

type overrideState struct {
	value any
	set   bool
}

// NewScope builds a scope named name whose lookups fall back to parent. A nil
// parent makes the scope a root.
func NewScope(name string, parent *Scope) *Scope {
	return &Scope{
		name:   name,
		parent: parent,
		slots:  map[string]*slot{},
	}
}

// Child returns a new scope that inherits from s.
func (s *Scope) Child(name string) *Scope {
	return NewScope(name, s)
}

// Name returns the scope name.
func (s *Scope) Name() string {
	if s == nil {
		return ""
	}
	return s.name
}

// Parent returns the scope lookups fall back to, nil for a root.
func (s *Scope) Parent() *Scope {
	if s == nil {
		return nil
	}
	return s.parent
}

// Path lists scope names from the root down to s.
func (s *Scope) Path() []string {
	var names []string
	for cur := s; cur != nil; cur = cur.parent {
		names = append(names, cur.name)
	}
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return names
}

func (s *Scope) String() string {
	return fmt.Sprintf("scope(%s)", s.Name())
}

func (s *Scope) slot(name string, create bool) *slot {
	if s == nil {
		return nil
	}
	sl, ok := s.slots[name]
	if !ok && create {
		sl = &slot{}
		s.slots[name] = sl
	}
	return sl
}

// lookup walks the chain starting at s and returns the first override found
// for name along with the scope holding it.
func (s *Scope) lookup(name string) (any, *Scope, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if sl := cur.slot(name, false); sl != nil && sl.state.set {
			return sl.state.value, cur, true
		}
	}
	return nil, nil, false
}
