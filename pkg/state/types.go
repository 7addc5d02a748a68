package state

import (
	"errors"
	"fmt"
)

// ErrPathRequired is returned when a store operation receives an empty path.
var ErrPathRequired = errors.New("state: path is required")

// Store loads, saves and removes one object per path.
type Store[T any] interface {
	Load(path string) (value T, ok bool, err error)
	Save(path string, value T) error
	Remove(path string) error
}

// Mutator modifies a loaded value in place.
type Mutator[T any] func(*T) error

// Mutate loads the value at path (the zero value when absent), applies fn and
// saves the result. Nothing is saved when fn fails.
func Mutate[T any](store Store[T], path string, fn Mutator[T]) (T, error) {
	var zero T
	if store == nil {
		return zero, fmt.Errorf("state: store is required")
	}
	if path == "" {
		return zero, ErrPathRequired
	}
	if fn == nil {
		return zero, fmt.Errorf("state: mutator is required")
	}

	value, _, err := store.Load(path)
	if err != nil {
		return zero, fmt.Errorf("state: load %q: %w", path, err)
	}
	if err := fn(&value); err != nil {
		return zero, err
	}
	if err := store.Save(path, value); err != nil {
		return zero, fmt.Errorf("state: save %q: %w", path, err)
	}
	return value, nil
}
