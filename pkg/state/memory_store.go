package state

import "sync"

// MemoryStore is a minimal in-memory Store implementation intended for tests
// and examples. Values are stored as given; callers own any aliasing.
type MemoryStore[T any] struct {
	mu      sync.RWMutex
	records map[string]T
	saves   int
}

func NewMemoryStore[T any]() *MemoryStore[T] {
	return &MemoryStore[T]{records: map[string]T{}}
}

func (s *MemoryStore[T]) Load(path string) (T, bool, error) {
	var zero T
	if path == "" {
		return zero, false, ErrPathRequired
	}
	s.mu.RLock()
	value, ok := s.records[path]
	s.mu.RUnlock()
	if !ok {
		return zero, false, nil
	}
	return value, true, nil
}

func (s *MemoryStore[T]) Save(path string, value T) error {
	if path == "" {
		return ErrPathRequired
	}
	s.mu.Lock()
	s.records[path] = value
	s.saves++
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore[T]) Remove(path string) error {
	if path == "" {
		return ErrPathRequired
	}
	s.mu.Lock()
	delete(s.records, path)
	s.mu.Unlock()
	return nil
}

// Has reports whether a value is stored at path.
func (s *MemoryStore[T]) Has(path string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[path]
	return ok
}

// Saves counts successful Save calls.
func (s *MemoryStore[T]) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}
