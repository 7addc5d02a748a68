package failsafe

import (
	"os"

	"github.com/goliatone/go-failsafe/internal/hclconfig"
)

// LoadConfigHCL decodes an HCL document, fills defaults and validates it.
// filename only appears in diagnostics.
func LoadConfigHCL(filename string, src []byte) (Config, error) {
	file, err := hclconfig.Parse(filename, src)
	if err != nil {
		return Config{}, configErrorf("", "%v", err)
	}

	cfg := Config{
		Dirs:               file.Dirs,
		CreateDirs:         file.CreateDirs,
		InheritOnCreation:  file.InheritOnCreation,
		LoadOnInit:         file.LoadOnInit,
		SaveOnDel:          file.SaveOnDel,
		RemoveOnCompletion: file.RemoveOnCompletion,
	}
	if file.Root != nil {
		cfg.Root = *file.Root
	}
	if file.Folder != nil {
		cfg.Folder = *file.Folder
	}
	if file.ActivityEnabled != nil {
		cfg.Activity.Enabled = *file.ActivityEnabled
	}
	if file.ActivityChannel != nil {
		cfg.Activity.Channel = *file.ActivityChannel
	}

	cfg = cfg.ApplyDefaults(DefaultConfig())
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfigFile reads path and decodes it with LoadConfigHCL.
func LoadConfigFile(path string) (Config, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return Config{}, configErrorf("", "read config: %v", err)
	}
	return LoadConfigHCL(path, src)
}
