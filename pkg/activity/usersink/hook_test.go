package usersink_test

import (
	"context"
	"testing"
	"time"

	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"

	"github.com/goliatone/go-reconcile/pkg/activity"
	"github.com/goliatone/go-reconcile/pkg/activity/usersink"
)

type recordingSink struct {
	records []usertypes.ActivityRecord
	err     error
}

func (s *recordingSink) Log(_ context.Context, record usertypes.ActivityRecord) error {
	s.records = append(s.records, record)
	return s.err
}

func TestHookNotifyMapsPersistedEvent(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	actorID := uuid.New()
	tenantID := uuid.New()

	event := activity.BuildTreePersistedEvent(activity.TreeEventInput{
		ActorID:    actorID.String(),
		TenantID:   tenantID.String(),
		DocumentID: "doc-1",
		Channel:    "reconcile",
		RunID:      "run-9",
		Events:     3,
		OccurredAt: now,
	})

	if err := hook.Notify(context.Background(), event); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sink.records))
	}
	record := sink.records[0]
	if record.ActorID != actorID || record.TenantID != tenantID {
		t.Fatalf("unexpected identities: %+v", record)
	}
	if record.UserID != uuid.Nil {
		t.Fatalf("expected nil user id, got %s", record.UserID)
	}
	if record.Verb != activity.VerbTreePersisted || record.ObjectType != activity.ObjectTypeTree || record.ObjectID != "doc-1" {
		t.Fatalf("unexpected record payload: %+v", record)
	}
	if !record.OccurredAt.Equal(now) {
		t.Fatalf("expected occurred_at %v got %v", now, record.OccurredAt)
	}
	if record.Data["run_id"] != "run-9" || record.Data["events"] != 3 {
		t.Fatalf("expected run metadata, got %v", record.Data)
	}
	if record.Channel != "reconcile" || record.Data["channel"] != "reconcile" {
		t.Fatalf("expected channel on record and data, got %q / %v", record.Channel, record.Data["channel"])
	}
}

func TestHookNotifySkipsIncompleteEvents(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	_ = hook.Notify(context.Background(), activity.Event{})

	if len(sink.records) != 0 {
		t.Fatalf("expected no records for empty event, got %d", len(sink.records))
	}
}

func TestHookNotifyFiltersVerbs(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink, Verbs: []string{activity.VerbTreePersisted}}

	_ = hook.Notify(context.Background(), activity.BuildTreeAssignedEvent(activity.TreeEventInput{DocumentID: "d"}))
	_ = hook.Notify(context.Background(), activity.BuildTreePersistedEvent(activity.TreeEventInput{DocumentID: "d"}))

	if len(sink.records) != 1 || sink.records[0].Verb != activity.VerbTreePersisted {
		t.Fatalf("expected only persisted record, got %+v", sink.records)
	}
	if sink.records[0].OccurredAt.IsZero() {
		t.Fatalf("expected occurred_at to be defaulted")
	}
}
