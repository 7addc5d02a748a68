package args

import (
	"errors"
	"testing"
)

func newTestNamespace(opts ...Option) *Namespace {
	return New(map[string]any{
		"dataset": map[string]any{"name": "mnist", "split": "train"},
		"epochs":  10,
		"my run":  "baseline",
	}, opts...)
}

func TestLookupNestedPath(t *testing.T) {
	ns := newTestNamespace()
	got, err := ns.LookupString("dataset.name")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got != "mnist" {
		t.Fatalf("expected mnist, got %q", got)
	}
}

func TestLookupNormalizesSpacedKeys(t *testing.T) {
	ns := newTestNamespace()
	got, err := ns.LookupString("my_run")
	if err != nil || got != "baseline" {
		t.Fatalf("expected normalized key lookup, got %q (%v)", got, err)
	}
}

func TestLookupStringRejectsNonString(t *testing.T) {
	ns := newTestNamespace()
	if _, err := ns.LookupString("epochs"); !errors.Is(err, ErrNotString) {
		t.Fatalf("expected ErrNotString, got %v", err)
	}
}

func TestLookupMissingLeaf(t *testing.T) {
	ns := newTestNamespace()
	if _, err := ns.Lookup("dataset.missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLookupRejectsMalformedPath(t *testing.T) {
	ns := newTestNamespace()
	for _, path := range []string{"", "dataset..name", ".dataset"} {
		if _, err := ns.Lookup(path); !errors.Is(err, ErrInvalidPath) {
			t.Fatalf("%q: expected ErrInvalidPath, got %v", path, err)
		}
	}
}

func TestUpdateMergesOverExisting(t *testing.T) {
	ns := newTestNamespace()
	ns.Update(map[string]any{"dataset": map[string]any{"split": "test"}})

	split, err := ns.LookupString("dataset.split")
	if err != nil || split != "test" {
		t.Fatalf("expected updated split, got %q (%v)", split, err)
	}
	name, err := ns.LookupString("dataset.name")
	if err != nil || name != "mnist" {
		t.Fatalf("expected untouched name, got %q (%v)", name, err)
	}
}

func TestValuesReturnsCopy(t *testing.T) {
	ns := newTestNamespace()
	values := ns.Values()
	values["dataset"].(map[string]any)["name"] = "cifar"
	if got, _ := ns.LookupString("dataset.name"); got != "mnist" {
		t.Fatalf("expected namespace isolated from returned copy, got %q", got)
	}
}

func TestReplacePlaceholders(t *testing.T) {
	ns := newTestNamespace()
	got, err := ns.ReplacePlaceholders("runs/${dataset.name}/${ dataset.split }")
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if got != "runs/mnist/train" {
		t.Fatalf("unexpected replacement %q", got)
	}
	if _, err := ns.ReplacePlaceholders("${epochs}"); !errors.Is(err, ErrNotString) {
		t.Fatalf("expected ErrNotString for numeric placeholder, got %v", err)
	}
}

func TestLookupWithCELEvaluator(t *testing.T) {
	ns := newTestNamespace(WithEvaluator(NewCELEvaluator(CELWithProgramCache(NewMapCache()))))
	got, err := ns.LookupString("dataset.split")
	if err != nil || got != "train" {
		t.Fatalf("expected cel lookup, got %q (%v)", got, err)
	}
}

func TestEvaluatorLoggerReceivesEvents(t *testing.T) {
	var events []EvaluatorLogEvent
	ns := newTestNamespace(WithEvaluatorLogger(EvaluatorLoggerFunc(func(event EvaluatorLogEvent) {
		events = append(events, event)
	})))
	if _, err := ns.Lookup("dataset.name"); err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if len(events) != 1 || events[0].Engine != "expr" || events[0].Expr != `args["dataset"]["name"]` {
		t.Fatalf("unexpected log events %#v", events)
	}
}

func TestProgramCacheReusesPrograms(t *testing.T) {
	cache := NewMapCache()
	ns := newTestNamespace(WithEvaluator(NewExprEvaluator(ExprWithProgramCache(cache))))
	for i := 0; i < 3; i++ {
		if _, err := ns.Lookup("dataset.name"); err != nil {
			t.Fatalf("lookup: %v", err)
		}
	}
	if cache.Len() != 1 {
		t.Fatalf("expected one cached program, got %d", cache.Len())
	}
}
