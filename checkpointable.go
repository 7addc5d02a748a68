package failsafe

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/goliatone/go-failsafe/pkg/codec"
	"github.com/goliatone/go-failsafe/pkg/state"
)

// Checkpointable is the capability a checkpoint type is persisted through.
// Load reports ok=false when nothing is stored at path; Remove succeeds when
// the file is already absent.
type Checkpointable[T any] interface {
	Load(path string) (T, bool, error)
	Save(path string, value T) error
	Remove(path string) error
	Filename(id int) string
}

// CheckpointSaver is implemented by values that save themselves.
type CheckpointSaver interface {
	SaveCheckpoint(path string) error
}

// TypeOption configures a checkpoint type at registration.
type TypeOption func(*typeConfig)

type typeConfig struct {
	checkpointable any
	store          any
	codec          codec.Codec
	loader         any
	saver          any
	remover        func(string) error
	filename       func(int) string
}

// WithCheckpointable supplies all four capabilities. Other options override
// individual capabilities.
func WithCheckpointable[T any](c Checkpointable[T]) TypeOption {
	return func(cfg *typeConfig) {
		cfg.checkpointable = c
	}
}

// WithStore persists values through store instead of a FileStore.
func WithStore[T any](store state.Store[T]) TypeOption {
	return func(cfg *typeConfig) {
		cfg.store = store
	}
}

// WithCodec selects the serializer of the default FileStore.
func WithCodec(c codec.Codec) TypeOption {
	return func(cfg *typeConfig) {
		cfg.codec = c
	}
}

// WithLoader replaces the load capability.
func WithLoader[T any](fn func(path string) (T, bool, error)) TypeOption {
	return func(cfg *typeConfig) {
		cfg.loader = fn
	}
}

// WithSaver replaces the save capability.
func WithSaver[T any](fn func(path string, value T) error) TypeOption {
	return func(cfg *typeConfig) {
		cfg.saver = fn
	}
}

// WithRemover replaces the remove capability.
func WithRemover(fn func(path string) error) TypeOption {
	return func(cfg *typeConfig) {
		cfg.remover = fn
	}
}

// WithFilename replaces the filename template.
func WithFilename(fn func(id int) string) TypeOption {
	return func(cfg *typeConfig) {
		cfg.filename = fn
	}
}

// adapter is the resolved capability set of one type.
type adapter[T any] struct {
	load     func(string) (T, bool, error)
	save     func(string, T) error
	remove   func(string) error
	filename func(int) string
}

func (a adapter[T]) Load(path string) (T, bool, error) { return a.load(path) }
func (a adapter[T]) Save(path string, value T) error   { return a.save(path, value) }
func (a adapter[T]) Remove(path string) error          { return a.remove(path) }
func (a adapter[T]) Filename(id int) string            { return a.filename(id) }

func buildAdapter[T any](name string, cfg typeConfig) (adapter[T], error) {
	if cfg.loader == nil && cfg.checkpointable == nil {
		if err := checkInstanceLoader[T](name); err != nil {
			return adapter[T]{}, err
		}
	}

	ext := codec.Default().Extension()
	var store state.Store[T]
	switch {
	case cfg.store != nil:
		typed, ok := cfg.store.(state.Store[T])
		if !ok {
			return adapter[T]{}, configErrorf(name, "store %T does not persist %s", cfg.store, typeLabel[T]())
		}
		store = typed
		if cfg.codec != nil {
			ext = cfg.codec.Extension()
		}
	default:
		fileStore := state.NewFileStore[T](state.WithCodec(cfg.codec))
		store = fileStore
		ext = fileStore.Codec().Extension()
	}

	a := adapter[T]{
		load:     store.Load,
		save:     store.Save,
		remove:   store.Remove,
		filename: func(id int) string { return fmt.Sprintf("%s_%d%s", name, id, ext) },
	}
	if selfSaving[T]() {
		a.save = saveThroughValue[T]
	}
	if cfg.checkpointable != nil {
		c, ok := cfg.checkpointable.(Checkpointable[T])
		if !ok {
			return adapter[T]{}, configErrorf(name, "checkpointable %T does not handle %s", cfg.checkpointable, typeLabel[T]())
		}
		a = adapter[T]{load: c.Load, save: c.Save, remove: c.Remove, filename: c.Filename}
	}
	if cfg.loader != nil {
		fn, ok := cfg.loader.(func(string) (T, bool, error))
		if !ok || fn == nil {
			return adapter[T]{}, configErrorf(name, "loader %T does not return %s", cfg.loader, typeLabel[T]())
		}
		a.load = fn
	}
	if cfg.saver != nil {
		fn, ok := cfg.saver.(func(string, T) error)
		if !ok || fn == nil {
			return adapter[T]{}, configErrorf(name, "saver %T does not accept %s", cfg.saver, typeLabel[T]())
		}
		a.save = fn
	}
	if cfg.remover != nil {
		a.remove = cfg.remover
	}
	if cfg.filename != nil {
		a.filename = cfg.filename
	}
	return a, nil
}

// checkInstanceLoader rejects state types that declare a Load(path) method
// when no loader was registered: a loader must not depend on an existing
// instance.
func checkInstanceLoader[T any](name string) error {
	typ := reflect.TypeFor[T]()
	candidates := []reflect.Type{typ}
	if typ.Kind() != reflect.Interface && typ.Kind() != reflect.Pointer {
		candidates = append(candidates, reflect.PointerTo(typ))
	}
	for _, candidate := range candidates {
		method, ok := candidate.MethodByName("Load")
		if !ok {
			continue
		}
		first := 1
		if candidate.Kind() == reflect.Interface {
			first = 0
		}
		if method.Type.NumIn() > first && method.Type.In(first).Kind() == reflect.String {
			return configErrorf(name, "%s declares an instance-bound Load method; register a loader with WithLoader or WithCheckpointable", typeLabel[T]())
		}
	}
	return nil
}

func selfSaving[T any]() bool {
	typ := reflect.TypeFor[T]()
	saver := reflect.TypeFor[CheckpointSaver]()
	if typ.Implements(saver) {
		return true
	}
	return typ.Kind() != reflect.Interface && typ.Kind() != reflect.Pointer && reflect.PointerTo(typ).Implements(saver)
}

func saveThroughValue[T any](path string, value T) error {
	if s, ok := any(value).(CheckpointSaver); ok {
		return s.SaveCheckpoint(path)
	}
	if s, ok := any(&value).(CheckpointSaver); ok {
		return s.SaveCheckpoint(path)
	}
	return fmt.Errorf("failsafe: %s does not implement SaveCheckpoint", typeLabel[T]())
}

func validTypeName(name string) error {
	if strings.TrimSpace(name) == "" {
		return configErrorf(name, "type name is required")
	}
	if strings.ContainsAny(name, `/\`) {
		return configErrorf(name, "type name must not contain a path separator")
	}
	return nil
}

func typeLabel[T any]() string {
	return reflect.TypeFor[T]().String()
}
