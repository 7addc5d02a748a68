package activity

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNormalizeEventTrimsClonesAndDefaults(t *testing.T) {
	meta := map[string]any{"k": "v"}
	evt := Event{
		Verb:       " checkpoint.saved ",
		RunID:      " run ",
		ObjectType: " checkpoint ",
		ObjectID:   " Foo_1 ",
		Channel:    " failsafe ",
		Metadata:   meta,
	}

	got := NormalizeEvent(evt)

	if got.Verb != "checkpoint.saved" || got.ObjectType != "checkpoint" || got.ObjectID != "Foo_1" {
		t.Fatalf("unexpected normalized fields: %+v", got)
	}
	if got.RunID != "run" || got.Channel != "failsafe" {
		t.Fatalf("unexpected trimming: %+v", got)
	}
	if got.OccurredAt.IsZero() {
		t.Fatalf("expected OccurredAt to be set")
	}
	got.Metadata["k"] = "changed"
	if evt.Metadata["k"] != "v" {
		t.Fatalf("expected original metadata untouched: %+v", evt.Metadata)
	}
}

func TestHooksNotifyShortCircuitsMissingRequired(t *testing.T) {
	capture := &CaptureHook{}
	hooks := Hooks{capture}
	if err := hooks.Notify(context.Background(), Event{Verb: "checkpoint.saved"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(capture.Events) != 0 {
		t.Fatalf("expected no events captured, got %d", len(capture.Events))
	}
}

func TestHooksNotifyFanOutAndJoinErrors(t *testing.T) {
	boom1 := errors.New("boom1")
	boom2 := errors.New("boom2")
	capture := &CaptureHook{}
	var ctxSeen bool
	hooks := Hooks{
		HookFunc(func(ctx context.Context, _ Event) error {
			ctxSeen = ctx != nil
			return nil
		}),
		capture,
		HookFunc(func(context.Context, Event) error { return boom1 }),
		nil,
		HookFunc(func(context.Context, Event) error { return boom2 }),
	}

	err := hooks.Notify(nil, Event{Verb: VerbSaved, ObjectType: ObjectTypeCheckpoint, ObjectID: "Foo_1"})
	if !errors.Is(err, boom1) || !errors.Is(err, boom2) {
		t.Fatalf("expected joined error, got %v", err)
	}
	if !ctxSeen {
		t.Fatalf("expected context fallback to be non-nil")
	}
	if len(capture.Events) != 1 {
		t.Fatalf("expected event to be captured once, got %d", len(capture.Events))
	}
}

func TestEmitterDisabledAndEnabled(t *testing.T) {
	capture := &CaptureHook{}
	event := Event{Verb: VerbSaved, ObjectType: ObjectTypeCheckpoint, ObjectID: "Foo_1"}

	disabled := NewEmitter(Hooks{capture}, Config{Enabled: false})
	if disabled.Enabled() {
		t.Fatalf("expected emitter to be disabled")
	}
	if err := disabled.Emit(context.Background(), event); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(capture.Events) != 0 {
		t.Fatalf("expected no events captured when disabled")
	}

	enabled := NewEmitter(Hooks{capture}, Config{Enabled: true}).WithRunID("run-7")
	if !enabled.Enabled() {
		t.Fatalf("expected emitter to be enabled")
	}
	if err := enabled.Emit(context.Background(), event); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if len(capture.Events) != 1 {
		t.Fatalf("expected one event captured, got %d", len(capture.Events))
	}
	if capture.Events[0].Channel != DefaultChannel || capture.Events[0].RunID != "run-7" {
		t.Fatalf("expected defaults applied, got %+v", capture.Events[0])
	}
}

func TestEmitterPreservesExplicitFields(t *testing.T) {
	capture := &CaptureHook{}
	emitter := NewEmitter(Hooks{capture}, Config{Enabled: true, Channel: "default"}).WithRunID("run-7")
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	err := emitter.Emit(context.Background(), Event{
		Verb:       VerbSaved,
		RunID:      "other",
		ObjectType: ObjectTypeCheckpoint,
		ObjectID:   "Foo_1",
		Channel:    "custom",
		OccurredAt: at,
	})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	got := capture.Events[0]
	if got.Channel != "custom" || got.RunID != "other" || !got.OccurredAt.Equal(at) {
		t.Fatalf("expected explicit fields preserved, got %+v", got)
	}
}

func TestNilEmitterIsDisabled(t *testing.T) {
	var emitter *Emitter
	if emitter.Enabled() || emitter.WithRunID("x") != nil {
		t.Fatalf("expected nil emitter to stay disabled")
	}
	if err := emitter.Emit(context.Background(), Event{}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestHooksNotifyStopsOnCanceledContext(t *testing.T) {
	capture := &CaptureHook{}
	ctx, cancel := context.WithCancel(context.Background())
	hooks := Hooks{
		HookFunc(func(context.Context, Event) error {
			cancel()
			return nil
		}),
		capture,
	}

	err := hooks.Notify(ctx, Event{Verb: VerbSaved, ObjectType: ObjectTypeCheckpoint, ObjectID: "Foo_1"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if len(capture.Events) != 0 {
		t.Fatalf("expected remaining hooks skipped, got %d events", len(capture.Events))
	}
}
