package failsafe_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	failsafe "github.com/goliatone/go-failsafe"
	"github.com/goliatone/go-failsafe/pkg/args"
	"github.com/google/go-cmp/cmp"
)

func TestLoadConfigJSON(t *testing.T) {
	cfg, err := failsafe.LoadConfig(strings.NewReader(`{
		"folder": "failsafe",
		"save_on_del": false,
		"dirs": {"logs": ["text"]},
		"activity": {"enabled": true}
	}`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Root != "." || cfg.Folder != "failsafe" || cfg.SaveOnDel == nil || *cfg.SaveOnDel {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if !cfg.Activity.Enabled || cfg.Activity.Channel != "failsafe" {
		t.Fatalf("expected default channel, got %+v", cfg.Activity)
	}
	if cfg.LoadOnInit != nil {
		t.Fatalf("expected absent flag to stay nil")
	}
}

func TestLoadConfigRejectsInvalidInput(t *testing.T) {
	for name, src := range map[string]string{
		"syntax":   `{`,
		"absolute": `{"folder": "/tmp/failsafe"}`,
		"escape":   `{"folder": "a/../../b"}`,
	} {
		if _, err := failsafe.LoadConfig(strings.NewReader(src)); !errors.Is(err, failsafe.ErrConfiguration) {
			t.Fatalf("%s: expected configuration error, got %v", name, err)
		}
	}
}

func TestLoadConfigHCL(t *testing.T) {
	cfg, err := failsafe.LoadConfigHCL("failsafe.hcl", []byte(`
root                 = "runs"
remove_on_completion = true
dirs                 = ["failsafe", "models"]

activity {
  channel = "experiments"
}
`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	on := true
	want := failsafe.Config{
		Root:               "runs",
		Dirs:               map[string]any{"failsafe": nil, "models": nil},
		RemoveOnCompletion: &on,
	}
	want.Activity.Channel = "experiments"
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "failsafe.hcl")
	if err := os.WriteFile(path, []byte(`folder = "../outside"`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := failsafe.LoadConfigFile(path); !errors.Is(err, failsafe.ErrConfiguration) {
		t.Fatalf("expected escaping folder rejected, got %v", err)
	}
	if _, err := failsafe.LoadConfigFile(filepath.Join(t.TempDir(), "missing.hcl")); !errors.Is(err, failsafe.ErrConfiguration) {
		t.Fatalf("expected missing file reported, got %v", err)
	}
}

func TestConfigFromArgs(t *testing.T) {
	ns := args.New(map[string]any{
		"failsafe": map[string]any{
			"root":         "runs",
			"load_on_init": false,
		},
		"lr": 0.1,
	})
	cfg, err := failsafe.ConfigFromArgs(ns, "failsafe")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if cfg.Root != "runs" || cfg.LoadOnInit == nil || *cfg.LoadOnInit {
		t.Fatalf("unexpected config %+v", cfg)
	}

	cfg, err = failsafe.ConfigFromArgs(ns, "absent")
	if err != nil || cfg.Root != "." {
		t.Fatalf("expected defaults for a missing section, got %+v (%v)", cfg, err)
	}

	if _, err := failsafe.ConfigFromArgs(ns, "lr"); !errors.Is(err, failsafe.ErrConfiguration) {
		t.Fatalf("expected scalar section rejected, got %v", err)
	}
}

func TestApplyDefaults(t *testing.T) {
	if got := failsafe.ApplyDefaults("", "x"); got != "x" {
		t.Fatalf("expected default, got %q", got)
	}
	if got := failsafe.ApplyDefaults(3, 7); got != 3 {
		t.Fatalf("expected value, got %d", got)
	}
}
