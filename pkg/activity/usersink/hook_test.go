package usersink_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-failsafe/pkg/activity"
	"github.com/goliatone/go-failsafe/pkg/activity/usersink"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

type recordingSink struct {
	records []usertypes.ActivityRecord
	err     error
}

func (s *recordingSink) Log(_ context.Context, record usertypes.ActivityRecord) error {
	s.records = append(s.records, record)
	return s.err
}

func TestHookNotifyMapsEvent(t *testing.T) {
	sink := &recordingSink{}
	tenantID := uuid.New()
	hook := usersink.Hook{Sink: sink, TenantID: tenantID}

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	runID := uuid.New()
	event := activity.BuildSavedEvent(activity.CheckpointEventInput{
		RunID:      runID.String(),
		Type:       "Trainer",
		ID:         3,
		Path:       "/runs/failsafe/Trainer_3.gob",
		Channel:    "failsafe",
		OccurredAt: now,
	})

	if err := hook.Notify(context.Background(), event); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sink.records))
	}
	record := sink.records[0]
	if record.ActorID != runID || record.TenantID != tenantID {
		t.Fatalf("unexpected ids actor=%s tenant=%s", record.ActorID, record.TenantID)
	}
	if record.Verb != activity.VerbSaved || record.ObjectType != "checkpoint" || record.ObjectID != "Trainer_3" {
		t.Fatalf("unexpected record %+v", record)
	}
	if record.Channel != "failsafe" || !record.OccurredAt.Equal(now) {
		t.Fatalf("unexpected channel or time %+v", record)
	}
	if record.Data["path"] != "/runs/failsafe/Trainer_3.gob" || record.Data["run_id"] != runID.String() {
		t.Fatalf("unexpected data %+v", record.Data)
	}
}

func TestHookNotifyNonUUIDRunID(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}
	event := activity.BuildRemovedEvent(activity.CheckpointEventInput{RunID: "nightly", Type: "Foo", ID: 1})
	if err := hook.Notify(context.Background(), event); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if sink.records[0].ActorID != uuid.Nil || sink.records[0].Data["run_id"] != "nightly" {
		t.Fatalf("expected nil actor and raw run id, got %+v", sink.records[0])
	}
}

func TestHookNotifySkipsInvalidAndPropagatesErrors(t *testing.T) {
	boom := errors.New("sink down")
	sink := &recordingSink{err: boom}
	hook := usersink.Hook{Sink: sink}

	if err := hook.Notify(context.Background(), activity.Event{Verb: "x"}); err != nil {
		t.Fatalf("expected invalid event skipped, got %v", err)
	}
	if len(sink.records) != 0 {
		t.Fatalf("expected no records for invalid event")
	}
	err := hook.Notify(context.Background(), activity.BuildSavedEvent(activity.CheckpointEventInput{Type: "Foo", ID: 1}))
	if !errors.Is(err, boom) {
		t.Fatalf("expected sink error, got %v", err)
	}
	if err := (usersink.Hook{}).Notify(context.Background(), activity.Event{}); err != nil {
		t.Fatalf("expected nil sink to be a no-op, got %v", err)
	}
}
