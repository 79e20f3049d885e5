package activity

import (
	"context"
	"testing"
)

func TestBuildTreePersistedEventCarriesRunMetadata(t *testing.T) {
	meta := map[string]any{"custom": "value"}
	input := TreeEventInput{
		ActorID:    " actor ",
		DocumentID: "doc-7",
		RunID:      "run-1",
		Events:     4,
		Skipped:    []string{"broken"},
		Metadata:   meta,
		Baseline:   "snap-3",
	}

	event := BuildTreePersistedEvent(input)

	if event.Verb != VerbTreePersisted || event.ObjectType != ObjectTypeTree || event.ObjectID != "doc-7" {
		t.Fatalf("unexpected event fields: %+v", event)
	}
	if event.ActorID != "actor" {
		t.Fatalf("expected trimmed actor, got %q", event.ActorID)
	}
	if event.Metadata["run_id"] != "run-1" || event.Metadata["events"] != 4 {
		t.Fatalf("unexpected metadata %+v", event.Metadata)
	}
	skipped, ok := event.Metadata["skipped_handlers"].([]string)
	if !ok || len(skipped) != 1 || skipped[0] != "broken" {
		t.Fatalf("expected skipped handlers, got %v", event.Metadata["skipped_handlers"])
	}
	event.Metadata["custom"] = "changed"
	if meta["custom"] != "value" {
		t.Fatalf("expected input metadata untouched")
	}
	if event.Metadata["baseline"] != "snap-3" {
		t.Fatalf("expected baseline metadata, got %v", event.Metadata["baseline"])
	}
}

func TestBuildTreeEventObjectIDFallbacks(t *testing.T) {
	if event := BuildTreeResetEvent(TreeEventInput{}); event.ObjectID != ObjectTypeTree {
		t.Fatalf("expected fallback object ID, got %q", event.ObjectID)
	}
	event := BuildTreeRestoredEvent(TreeEventInput{Baseline: "tenant/doc@v2"})
	if event.ObjectID != "tenant/doc@v2" || event.Metadata["baseline"] != "tenant/doc@v2" {
		t.Fatalf("expected baseline fallback, got %+v", event)
	}
	if _, ok := BuildTreeAssignedEvent(TreeEventInput{}).Metadata["events"]; ok {
		t.Fatalf("assigned events do not carry an event count")
	}
}

func TestTreeEventsFlowThroughHooks(t *testing.T) {
	capture := &CaptureHook{}
	hooks := Hooks{capture}
	for _, event := range []Event{
		BuildTreeAssignedEvent(TreeEventInput{DocumentID: "doc"}),
		BuildTreePersistedEvent(TreeEventInput{DocumentID: "doc"}),
		BuildTreeResetEvent(TreeEventInput{DocumentID: "doc"}),
	} {
		if err := hooks.Notify(context.Background(), event); err != nil {
			t.Fatalf("notify: %v", err)
		}
	}
	verbs := capture.Verbs()
	if len(verbs) != 3 || verbs[0] != VerbTreeAssigned || verbs[1] != VerbTreePersisted || verbs[2] != VerbTreeReset {
		t.Fatalf("unexpected verbs %v", verbs)
	}
}
