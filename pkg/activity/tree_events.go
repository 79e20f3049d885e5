package activity

import (
	"strings"
	"time"
)

// Verbs emitted for the lifecycle of a reconciled document.
const (
	VerbTreeAssigned  = "tree.assigned"
	VerbTreePersisted = "tree.persisted"
	VerbTreeReset     = "tree.reset"
	VerbTreeRestored  = "tree.restored"
)

// ObjectTypeTree is the object type of every tree lifecycle event.
const ObjectTypeTree = "tree"

// TreeEventInput describes a lifecycle transition of one document.
type TreeEventInput struct {
	ActorID    string
	UserID     string
	TenantID   string
	DocumentID string
	Channel    string
	Metadata   map[string]any
	RunID      string
	Events     int
	Skipped    []string
	Invalid    bool
	Baseline   string
	OccurredAt time.Time
}

// BuildTreeAssignedEvent describes a new target being assigned.
func BuildTreeAssignedEvent(input TreeEventInput) Event {
	return buildTreeEvent(VerbTreeAssigned, input)
}

// BuildTreePersistedEvent describes a completed persist run.
func BuildTreePersistedEvent(input TreeEventInput) Event {
	return buildTreeEvent(VerbTreePersisted, input)
}

// BuildTreeResetEvent describes the target being reset from the original.
func BuildTreeResetEvent(input TreeEventInput) Event {
	return buildTreeEvent(VerbTreeReset, input)
}

// BuildTreeRestoredEvent describes a baseline loaded from a store.
func BuildTreeRestoredEvent(input TreeEventInput) Event {
	return buildTreeEvent(VerbTreeRestored, input)
}

func buildTreeEvent(verb string, input TreeEventInput) Event {
	metadata := cloneMap(input.Metadata)
	if       input.RunID != "" {
		metadata = ensureMetadata(metadata)
		metadata["run_id"] = input.RunID
	}
	if verb == VerbTreePersisted {
		metadata = ensureMetadata(metadata)
		metadata["events"] = input.Events
	}
	if len(input.Skipped) > 0 {
		metadata = ensureMetadata(metadata)
		metadata["skipped_handlers"] = append([]string{}, input.Skipped...)
	}
	if input.Invalid {
		metadata = ensureMetadata(metadata)
		metadata["invalid"] = true
	}
	if input.Baseline != "" {
		metadata = ensureMetadata(metadata)
		metadata["baseline"] = input.Baseline
	}

	objectID := strings.TrimSpace(input.DocumentID)
	if       objectID == "" {
		objectID = strings.TrimSpace(input.Baseline)
	}
	if objectID == "" {
		objectID = ObjectTypeTree
	}

	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		UserID:     strings.TrimSpace(input.UserID),
		TenantID:   strings.TrimSpace(input.TenantID),
		ObjectType: ObjectTypeTree,
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
