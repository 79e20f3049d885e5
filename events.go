package reconcile

import (
	json "github.com/goccy/go-json"

	"github.com/goliatone/go-reconcile/tree"
)

// EventKind classifies a ChangeEvent.
type EventKind string

const (
	EventAddition          EventKind = "addition"
	EventRemoval           EventKind = "removal"
	EventMove              EventKind = "move"
	EventUpdate            EventKind = "update"
	EventInheritedAddition EventKind = "inherited-addition"
	EventInheritedRemoval  EventKind = "inherited-removal"
)

// NoIndex marks an index that does not apply to an event.
const NoIndex = -1

// ChangeEvent is one change handed to a handler callback.
//
// Sort events carry the lookup of the list and the affected element as
// Value. Update events carry the lookup of the target object and the merge
// patch as Value.
type ChangeEvent struct {
	ID       string
	RunID    string
	Kind     EventKind
	Handler  string
	Lookup   string
	Value    tree.Node
	Metadata any
}

// Sort returns the sort metadata of e, if any.
func (e ChangeEvent) Sort() (SortMetadata, bool) {
	meta, ok := e.Metadata.(SortMetadata)
	return meta, ok
}

// Merge returns the merge metadata of e, if any.
func (e ChangeEvent) Merge() (MergeMetadata, bool) {
	meta, ok := e.Metadata.(MergeMetadata)
	return meta, ok
}

// SortMetadata locates an element of a list. Indices that do not apply are
// NoIndex: additions only carry ToIndex, removals only FromIndex.
//
// FromIndex of a removal is the element position in the list after the
// removals dispatched before it. Moves apply to the list once all removals
// are done, and additions are emitted in ascending ToIndex, so replaying
// removal, move and addition events in order on the original list yields
// the target list. This holds for repeated item signatures too, which pair
// by occurrence.
type SortMetadata struct {
	Ref       tree.Node
	FromIndex int
	ToIndex   int
}

// MergeMetadata points at both sides of an updated object.
type MergeMetadata struct {
	TargetRef   tree.Node
	OriginalRef tree.Node
}

// MarshalJSON encodes e with plain data values, the shape used by reports.
func (e ChangeEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(exportEvent(e))
}

// exportedEvent is the JSON shape of a ChangeEvent used by reports.
type exportedEvent struct {
	ID        string    `json:"id"`
	RunID     string    `json:"run_id,omitempty"`
	Kind      EventKind `json:"kind"`
	Handler   string    `json:"handler"`
	Lookup    string    `json:"lookup"`
	Value     any       `json:"value,omitempty"`
	FromIndex *int      `json:"from_index,omitempty"`
	ToIndex   *int      `json:"to_index,omitempty"`
	Original  any       `json:"original,omitempty"`
	Target    any       `json:"target,omitempty"`
}

func exportEvent(event ChangeEvent) exportedEvent {
	out := exportedEvent{
		ID:      event.ID,
		RunID:   event.RunID,
		Kind:    event.Kind,
		Handler: event.Handler,
		Lookup:  event.Lookup,
		Value:   tree.Export(event.Value),
	}
	switch meta := event.Metadata.(type) {
	case SortMetadata:
		if meta.FromIndex != NoIndex {
			from := meta.FromIndex
			out.FromIndex = &from
		}
		if meta.ToIndex != NoIndex {
			to := meta.ToIndex
			out.ToIndex = &to
		}
	case MergeMetadata:
		out.Original = tree.Export(meta.OriginalRef)
		out.Target = tree.Export(meta.TargetRef)
	}
	return out
}

func importEvent(in exportedEvent) (ChangeEvent, error) {
	event := ChangeEvent{
		ID:      in.ID,
		RunID:   in.RunID,
		Kind:    in.Kind,
		Handler: in.Handler,
		Lookup:  in.Lookup,
	}
	value, err := tree.FromValue(in.Value)
	if err != nil {
		return ChangeEvent{}, err
	}
	if in.Value != nil {
		event.Value = value
	}
	switch in.Kind {
	case EventUpdate:
		original, err := tree.FromValue(in.Original)
		if err != nil {
			return ChangeEvent{}, err
		}
		target, err := tree.FromValue(in.Target)
		if err != nil {
			return ChangeEvent{}, err
		}
		event.Metadata = MergeMetadata{TargetRef: target, OriginalRef: original}
	default:
		meta := SortMetadata{Ref: event.Value, FromIndex: NoIndex, ToIndex: NoIndex}
		if in.FromIndex != nil {
			meta.FromIndex = *in.FromIndex
		}
		if in.ToIndex != nil {
			meta.ToIndex = *in.ToIndex
		}
		event.Metadata = meta
	}
	return event, nil
}
