// Package activity fans checkpoint lifecycle events out to hooks. Events are
// plain values so sinks can forward them to audit logs or activity feeds.
package activity

import (
	"context"
	"errors"
	"maps"
	"strings"
	"time"
)

// Event is one checkpoint lifecycle occurrence. RunID identifies the process
// run that produced it.
type Event struct {
	Verb       string
	RunID      string
	ObjectType string
	ObjectID   string
	Channel    string
	Metadata   map[string]any
	OccurredAt time.Time
}

// ActivityHook receives normalized events.
type ActivityHook interface {
	Notify(ctx context.Context, event Event) error
}

// HookFunc adapts a function to ActivityHook.
type HookFunc func(ctx context.Context, event Event) error

func (fn HookFunc) Notify(ctx context.Context, event Event) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, event)
}

// Hooks is an ordered set of hooks.
type Hooks []ActivityHook

// Enabled reports whether there is any hook to notify.
func (h Hooks) Enabled() bool {
	return len(h) > 0
}

// Notify normalizes event and hands it to every hook in order. Invalid
// events are dropped. Hook failures are joined; a canceled ctx stops the
// remaining hooks and its error is reported with them.
func (h Hooks) Notify(ctx context.Context, event Event) error {
	if len(h) == 0 {
		return nil
	}
	event = NormalizeEvent(event)
	if !event.Valid() {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var errs []error
	for _, hook := range h {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if hook == nil {
			continue
		}
		if err := hook.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Valid reports whether verb, object type and object id are present.
func (e Event) Valid() bool {
	return e.Verb != "" && e.ObjectType != "" && e.ObjectID != ""
}

// NormalizeEvent trims identifiers, copies metadata and stamps a missing
// occurrence time.
func NormalizeEvent(event Event) Event {
	for _, field := range []*string{&event.Verb, &event.RunID, &event.ObjectType, &event.ObjectID, &event.Channel} {
		*field = strings.TrimSpace(*field)
	}
	if len(event.Metadata) == 0 {
		event.Metadata = nil
	} else {
		event.Metadata = maps.Clone(event.Metadata)
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	return event
}
