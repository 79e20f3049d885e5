package reconcile

import (
	"fmt"
	"slices"

	"github.com/goliatone/go-reconcile/diff"
	"github.com/goliatone/go-reconcile/tree"
)

// Scope is the snapshot pair a handler is searched against.
type Scope struct {
	Target   tree.Node
	Original tree.Node
}

// SearchResults holds the matches of a handler in both snapshots, in walk
// order.
type SearchResults struct {
	Target   []tree.Part
	Original []tree.Part
}

// SearchObject keeps a handler's matches together with the scope they were
// found in.
type SearchObject struct {
	Scope   Scope
	Results SearchResults
}

// Match pairs correlated parts. A side that did not match has a nil Value.
type Match struct {
	Target   tree.Part
	Original tree.Part
}

// HasTarget reports whether the target side matched.
func (m Match) HasTarget() bool { return m.Target.Value != nil }

// HasOriginal reports whether the original side matched.
func (m Match) HasOriginal() bool { return m.Original.Value != nil }

// Search walks both snapshots and keeps the parts selected by the handler's
// pattern.
func Search(h Handler, scope Scope) (SearchObject, error) {
	if h.Search == nil {
		return SearchObject{}, fmt.Errorf("%w: %q has no search pattern", ErrInvalidHandler, h.Name)
	}
	matcher := patternMatcher{pattern: h.Search}
	target, err := walkScope(scope.Target, matcher)
	if err != nil {
		return SearchObject{}, err
	}
	original, err := walkScope(scope.Original, matcher)
	if err != nil {
		return SearchObject{}, err
	}
	return SearchObject{
		Scope:   scope,
		Results: SearchResults{Target: target, Original: original},
	}, nil
}

func walkScope(root tree.Node, matcher tree.Matcher) ([]tree.Part, error) {
	if root == nil {
		return nil, nil
	}
	return tree.WalkByLookup(root, matcher)
}

// PickRelevantKeys returns a copy of value restricted to the handler's
// Observe keys, minus its Ignore keys. Annotation keys are dropped.
func PickRelevantKeys(h Handler, value *tree.Map) *tree.Map {
	out := tree.NewMap()
	for _, key := range tree.DataKeys(value) {
		if h.Observe != nil && !slices.Contains(h.Observe, key) {
			continue
		}
		if slices.Contains(h.Ignore, key) {
			continue
		}
		child, _ := value.Get(key)
		out.Set(key, child)
	}
	return out
}

// RetrieveAddedLists returns the target lists whose parent signature matches
// no original list.
func RetrieveAddedLists(h SortHandler, so SearchObject) []Match {
	var out []Match
	for _, target := range so.Results.Target {
		found := false
		for _, original := range so.Results.Original {
			if sameList(h, so.Scope, target, original) {
				found = true
				break
			}
		}
		if !found {
			out = append(out, Match{Target: target})
		}
	}
	return out
}

// RetrieveSharedLists pairs every target list with the first original list
// sharing its parent signature.
func RetrieveSharedLists(h SortHandler, so SearchObject) []Match {
	var out []Match
	for _, target := range so.Results.Target {
		for _, original := range so.Results.Original {
			if sameList(h, so.Scope, target, original) {
				out = append(out, Match{Target: target, Original: original})
				break
			}
		}
	}
	return out
}

// RetrieveRemovedLists returns the original lists whose parent signature
// matches no target list.
func RetrieveRemovedLists(h SortHandler, so SearchObject) []Match {
	var out []Match
	for _, original := range so.Results.Original {
		found := false
		for _, target := range so.Results.Target {
			if sameList(h, so.Scope, target, original) {
				found = true
				break
			}
		}
		if !found {
			out = append(out, Match{Original: original})
		}
	}
	return out
}

// RetrieveSharedObjects pairs every target map with the first original map
// carrying the same object signature.
func RetrieveSharedObjects(h MergeHandler, so SearchObject) []Match {
	var out []Match
	for _, target := range so.Results.Target {
		for _, original := range so.Results.Original {
			if sameObject(h, target, original) {
				out = append(out, Match{Target: target, Original: original})
				break
			}
		}
	}
	return out
}

func sameList(h SortHandler, scope Scope, target, original tree.Part) bool {
	if h.ParentSignature == "" {
		return target.Lookup == original.Lookup
	}
	targetParent, _ := tree.Parent(scope.Target, target.Path())
	originalParent, _ := tree.Parent(scope.Original, original.Path())
	return diff.SameSignature(
		diff.Signature(targetParent, h.ParentSignature),
		diff.Signature(originalParent, h.ParentSignature),
	)
}

func sameObject(h MergeHandler, target, original tree.Part) bool {
	if h.ObjectSignature == "" {
		return target.Lookup == original.Lookup
	}
	return diff.SameSignature(
		diff.Signature(target.Value, h.ObjectSignature),
		diff.Signature(original.Value, h.ObjectSignature),
	)
}

// CheckSortHandler reports whether every match of so is a list.
func CheckSortHandler(h SortHandler, so SearchObject) error {
	return checkShape(h.Handler, so, tree.KindSequence)
}

// CheckMergeHandler reports whether every match of so is a map.
func CheckMergeHandler(h MergeHandler, so SearchObject) error {
	return checkShape(h.Handler, so, tree.KindMap)
}

func checkShape(h Handler, so SearchObject, want tree.Kind) error {
	if h.Callback == nil {
		return fmt.Errorf("%w: %q", ErrNilCallback, h.Name)
	}
	for _, side := range [][]tree.Part{so.Results.Target, so.Results.Original} {
		for _, part := range side {
			if part.Value == nil || part.Value.Kind() != want {
				return fmt.Errorf("%w: %q matched %s at %s, want %s",
					ErrInvalidHandler, h.Name, kindOf(part.Value), describeLookup(part.Lookup), want)
			}
		}
	}
	return nil
}

func kindOf(node tree.Node) string {
	if node == nil {
		return "nothing"
	}
	return node.Kind().String()
}
