package reconcile

import (
	"github.com/goliatone/go-reconcile/diff"
	"github.com/goliatone/go-reconcile/tree"
)

// PlanSortEvents lists the events of a sort handler: every element of an
// added list, then removals, moves and additions of each shared list, then
// every element of a removed list. Matches must already have passed
// CheckSortHandler. IDs are left empty.
//
// Repeated item signatures pair by occurrence, so a copy dropped from or
// added to a shared list is reported as a removal or an addition.
func PlanSortEvents(h SortHandler, so SearchObject) []ChangeEvent {
	name := handlerName(h.Handler, "sort")
	var events []ChangeEvent

	for _, match := range RetrieveAddedLists(h, so) {
		for i, item := range sequenceItems(match.Target.Value) {
			events = append(events, sortEvent(name, EventInheritedAddition, match.Target.Lookup, item, NoIndex, i))
		}
	}

	for _, match := range RetrieveSharedLists(h, so) {
		events = append(events, planSharedList(name, h.ItemSignature, match)...)
	}

	for _, match := range RetrieveRemovedLists(h, so) {
		for i, item := range sequenceItems(match.Original.Value) {
			events = append(events, sortEvent(name, EventInheritedRemoval, match.Original.Lookup, item, i, NoIndex))
		}
	}
	return events
}

func planSharedList(name, key string, match Match) []ChangeEvent {
	original := sequenceItems(match.Original.Value)
	target := sequenceItems(match.Target.Value)
	lookup := match.Target.Lookup
	kept := diff.PairByOccurrence(key, original, target)
	placed := diff.PairByOccurrence(key, target, original)
	var events []ChangeEvent

	removed := 0
	shared := make([]tree.Node, 0, len(original))
	for i, item := range original {
		if kept[i] {
			shared = append(shared, item)
			continue
		}
		events = append(events, sortEvent(name, EventRemoval, lookup, item, i-removed, NoIndex))
		removed++
	}

	order := make([]tree.Node, 0, len(target))
	for i, item := range target {
		if placed[i] {
			order = append(order, item)
		}
	}
	for _, move := range diff.ReorderByProp(key, shared, order) {
		events = append(events, sortEvent(name, EventMove, lookup, move.Ref, move.FromIndex, move.ToIndex))
	}

	for i, item := range target {
		if placed[i] {
			continue
		}
		events = append(events, sortEvent(name, EventAddition, lookup, item, NoIndex, i))
	}
	return events
}

func sortEvent(handler string, kind EventKind, lookup string, item tree.Node, from, to int) ChangeEvent {
	return ChangeEvent{
		Kind:    kind,
		Handler: handler,
		Lookup:  lookup,
		Value:   item,
		Metadata: SortMetadata{
			Ref:       item,
			FromIndex: from,
			ToIndex:   to,
		},
	}
}

// PlanMergeEvents lists one update per shared map whose relevant keys
// changed. The event value is the merge patch turning the original map into
// the target map. Matches must already have passed CheckMergeHandler.
func PlanMergeEvents(h MergeHandler, so SearchObject) []ChangeEvent {
	name := handlerName(h.Handler, "merge")
	var events []ChangeEvent
	for _, match := range RetrieveSharedObjects(h, so) {
		target, _ := match.Target.Value.(*tree.Map)
		original, _ := match.Original.Value.(*tree.Map)
		patch := diff.MergeObjects(
			PickRelevantKeys(h.Handler, original),
			PickRelevantKeys(h.Handler, target),
		)
		if patch.Len() == 0 {
			continue
		}
		events = append(events, ChangeEvent{
			Kind:    EventUpdate,
			Handler: name,
			Lookup:  match.Target.Lookup,
			Value:   patch,
			Metadata: MergeMetadata{
				TargetRef:   match.Target.Value,
				OriginalRef: match.Original.Value,
			},
		})
	}
	return events
}

func sequenceItems(node tree.Node) []tree.Node {
	seq, ok := node.(*tree.Sequence)
	if !ok {
		return nil
	}
	return seq.Items()
}
