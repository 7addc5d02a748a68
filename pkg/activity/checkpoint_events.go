package activity

import (
	"fmt"
	"maps"
	"strings"
	"time"
)

// Checkpoint lifecycle verbs.
const (
	VerbConstructed = "checkpoint.constructed"
	VerbRestored    = "checkpoint.restored"
	VerbLoadFailed  = "checkpoint.load_failed"
	VerbSaved       = "checkpoint.saved"
	VerbSaveFailed  = "checkpoint.save_failed"
	VerbRemoved     = "checkpoint.removed"
)

// ObjectTypeCheckpoint is the object type of every checkpoint event.
const ObjectTypeCheckpoint = "checkpoint"

// CheckpointEventInput describes the common fields for checkpoint lifecycle events.
type CheckpointEventInput struct {
	RunID      string
	Type       string
	ID         int
	Path       string
	Channel    string
	Err        error
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildConstructedEvent reports an instance built by its constructor.
func BuildConstructedEvent(input CheckpointEventInput) Event {
	return buildCheckpointEvent(VerbConstructed, input)
}

// BuildRestoredEvent reports an instance loaded from its checkpoint file.
func BuildRestoredEvent(input CheckpointEventInput) Event {
	return buildCheckpointEvent(VerbRestored, input)
}

// BuildLoadFailedEvent reports a checkpoint that existed but could not be loaded.
func BuildLoadFailedEvent(input CheckpointEventInput) Event {
	return buildCheckpointEvent(VerbLoadFailed, input)
}

// BuildSavedEvent reports a checkpoint written at finalization.
func BuildSavedEvent(input CheckpointEventInput) Event {
	return buildCheckpointEvent(VerbSaved, input)
}

// BuildSaveFailedEvent reports a failed finalization save.
func BuildSaveFailedEvent(input CheckpointEventInput) Event {
	return buildCheckpointEvent(VerbSaveFailed, input)
}

// BuildRemovedEvent reports a checkpoint file deleted after a clean exit.
func BuildRemovedEvent(input CheckpointEventInput) Event {
	return buildCheckpointEvent(VerbRemoved, input)
}

func buildCheckpointEvent(verb string, input CheckpointEventInput) Event {
	metadata := maps.Clone(input.Metadata)
	typeName := strings.TrimSpace(input.Type)
	if typeName != "" {
		metadata = ensureMetadata(metadata)
		metadata["type"] = typeName
		metadata["id"] = input.ID
	}
	if input.Path != "" {
		metadata = ensureMetadata(metadata)
		metadata["path"] = input.Path
	}
	if input.Err != nil {
		metadata = ensureMetadata(metadata)
		metadata["error"] = input.Err.Error()
	}
	if runID := strings.TrimSpace(input.RunID); runID != "" {
		metadata = ensureMetadata(metadata)
		metadata["run_id"] = runID
	}

	objectID := strings.TrimSpace(input.Path)
	if typeName != "" {
		objectID = fmt.Sprintf("%s_%d", typeName, input.ID)
	}
	if objectID == "" {
		objectID = ObjectTypeCheckpoint
	}

	return Event{
		Verb:       verb,
		RunID:      strings.TrimSpace(input.RunID),
		ObjectType: ObjectTypeCheckpoint,
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func ensureMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
