package state

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goliatone/go-failsafe/pkg/codec"
)

// FileStoreOption configures a FileStore.
type FileStoreOption func(*fileStoreConfig)

type fileStoreConfig struct {
	codec codec.Codec
	perm  os.FileMode
}

// WithCodec selects the serializer. Nil keeps gob.
func WithCodec(c codec.Codec) FileStoreOption {
	return func(cfg *fileStoreConfig) {
		if c != nil {
			cfg.codec = c
		}
	}
}

// WithFileMode sets the permission bits for written files.
func WithFileMode(perm os.FileMode) FileStoreOption {
	return func(cfg *fileStoreConfig) {
		cfg.perm = perm
	}
}

// FileStore persists values as single files. Writes go to a temporary file in
// the same directory and are renamed into place.
type FileStore[T any] struct {
	codec codec.Codec
	perm  os.FileMode
}

func NewFileStore[T any](opts ...FileStoreOption) *FileStore[T] {
	cfg := fileStoreConfig{codec: codec.Default(), perm: 0o644}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &FileStore[T]{codec: cfg.codec, perm: cfg.perm}
}

// Codec returns the serializer in use.
func (s *FileStore[T]) Codec() codec.Codec {
	return s.codec
}

func (s *FileStore[T]) Load(path string) (T, bool, error) {
	var zero T
	if path == "" {
		return zero, false, ErrPathRequired
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, fmt.Errorf("state: open %q: %w", path, err)
	}
	defer f.Close()

	var value T
	if err := s.codec.Decode(f, &value); err != nil {
		return zero, false, fmt.Errorf("state: decode %q: %w", path, err)
	}
	return value, true, nil
}

func (s *FileStore[T]) Save(path string, value T) error {
	if path == "" {
		return ErrPathRequired
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("state: create temp file in %q: %w", dir, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if err := s.codec.Encode(tmp, value); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("state: encode %q: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("state: close %q: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, s.perm); err != nil {
		cleanup()
		return fmt.Errorf("state: chmod %q: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("state: rename %q: %w", path, err)
	}
	return nil
}

func (s *FileStore[T]) Remove(path string) error {
	if path == "" {
		return ErrPathRequired
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("state: remove %q: %w", path, err)
	}
	return nil
}
