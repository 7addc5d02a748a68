package failsafe

import (
	"fmt"
	"io"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/goliatone/go-failsafe/internal/hydrate"
	"github.com/goliatone/go-failsafe/pkg/activity"
	"github.com/goliatone/go-failsafe/pkg/args"
	"github.com/goliatone/go-failsafe/pkg/codec"
)

// Config is the ambient manager configuration. Nil policy flags leave the
// declared defaults in place.
type Config struct {
	Root               string          `json:"root,omitempty"`
	Folder             string          `json:"folder,omitempty"`
	Dirs               map[string]any  `json:"dirs,omitempty"`
	CreateDirs         *bool           `json:"create_dirs,omitempty"`
	InheritOnCreation  *bool           `json:"inherit_on_creation,omitempty"`
	LoadOnInit         *bool           `json:"load_on_init,omitempty"`
	SaveOnDel          *bool           `json:"save_on_del,omitempty"`
	RemoveOnCompletion *bool           `json:"remove_on_completion,omitempty"`
	Activity           activity.Config `json:"activity"`
}

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() Config {
	return Config{
		Root:     ".",
		Activity: activity.Config{Channel: activity.DefaultChannel},
	}
}

// LoadConfig decodes a JSON document, fills defaults and validates it.
func LoadConfig(r io.Reader) (Config, error) {
	var cfg Config
	if err := codec.JSON().Decode(r, &cfg); err != nil {
		return Config{}, configErrorf("", "decode config: %v", err)
	}
	cfg = cfg.ApplyDefaults(DefaultConfig())
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ConfigFromArgs decodes the section subtree of an argument namespace, fills
// defaults and validates the result. An empty section decodes the whole tree;
// a missing section yields the defaults.
func ConfigFromArgs(ns *args.Namespace, section string) (Config, error) {
	values := ns.Values()
	tree := values
	if section != "" {
		raw, ok := values[section]
		if !ok {
			tree = nil
		} else if tree, ok = raw.(map[string]any); !ok {
			return Config{}, configErrorf("", "argument section %q holds %T, not a tree", section, raw)
		}
	}
	decoder := hydrate.NewDecoder(hydrate.WithPostHook[Config](func(_ hydrate.Context, cfg *Config) error {
		*cfg = cfg.ApplyDefaults(DefaultConfig())
		return cfg.Validate()
	}))
	cfg, err := decoder.Decode(hydrate.Context{Section: section}, tree)
	if err != nil {
		return Config{}, fmt.Errorf("failsafe: config from arguments: %w", err)
	}
	return cfg, nil
}

// ApplyDefaults fills zero fields from defaults.
func (c Config) ApplyDefaults(defaults Config) Config {
	c.Root = ApplyDefaults(c.Root, defaults.Root)
	c.Folder = ApplyDefaults(c.Folder, defaults.Folder)
	c.Activity.Channel = ApplyDefaults(c.Activity.Channel, defaults.Activity.Channel)
	if c.Dirs == nil {
		c.Dirs = defaults.Dirs
	}
	c.CreateDirs = ApplyDefaults(c.CreateDirs, defaults.CreateDirs)
	c.InheritOnCreation = ApplyDefaults(c.InheritOnCreation, defaults.InheritOnCreation)
	c.LoadOnInit = ApplyDefaults(c.LoadOnInit, defaults.LoadOnInit)
	c.SaveOnDel = ApplyDefaults(c.SaveOnDel, defaults.SaveOnDel)
	c.RemoveOnCompletion = ApplyDefaults(c.RemoveOnCompletion, defaults.RemoveOnCompletion)
	return c
}

// Validate checks that Folder is a relative path inside the tree.
func (c Config) Validate() error {
	if c.Folder == "" {
		return nil
	}
	if filepath.IsAbs(c.Folder) {
		return configErrorf("", "folder %q must be relative to the directory tree", c.Folder)
	}
	for _, segment := range strings.Split(filepath.ToSlash(c.Folder), "/") {
		if segment == ".." {
			return configErrorf("", "folder %q escapes the directory tree", c.Folder)
		}
	}
	return nil
}

// ApplyDefaults returns value if it is already populated, otherwise it falls
// back to defaults.
func ApplyDefaults[T any](value T, defaults T) T {
	if reflect.ValueOf(&value).Elem().IsZero() {
		return defaults
	}
	return value
}
