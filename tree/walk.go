package tree

import "strconv"

// Part pairs a lookup with a reference to the node stored there. Parts are
// non-owning: they point into the walked tree and share its lifetime.
type Part struct {
	Lookup string
	Value  Node
}

// Path returns the part lookup as a key sequence.
func (p Part) Path() Path {
	return LookupToPath(p.Lookup)
}

// Matcher decides whether a part is selected by a lookup walk.
type Matcher interface {
	Match(part Part) (bool, error)
}

// MatcherFunc adapts a function to Matcher.
type MatcherFunc func(part Part) (bool, error)

// Match implements Matcher.
func (f MatcherFunc) Match(part Part) (bool, error) {
	if f == nil {
		return false, nil
	}
	return f(part)
}

// Deconstruct lists every descendant of root in pre-order, parents before
// children and children in natural key order. The root itself is not
// included and subtrees under annotation keys are skipped.
func Deconstruct(root Node) []Part {
	var parts []Part
	deconstruct(root, "", &parts)
	return parts
}

func deconstruct(node Node, prefix string, parts *[]Part) {
	switch n := node.(type) {
	case *Map:
		for _, key := range n.keys {
			if IsAnnotationKey(key) {
				continue
			}
			lookup := JoinLookup(prefix, key)
			child := n.values[key]
			*parts = append(*parts, Part{Lookup: lookup, Value: child})
			deconstruct(child, lookup, parts)
		}
	case *Sequence:
		for i, child := range n.items {
			lookup := JoinLookup(prefix, strconv.Itoa(i))
			*parts = append(*parts, Part{Lookup: lookup, Value: child})
			deconstruct(child, lookup, parts)
		}
	}
}

// WalkBy returns the root (lookup "") followed by Deconstruct(root),
// filtered by keep.
func WalkBy(root Node, keep func(Part) bool) []Part {
	all := append([]Part{{Lookup: "", Value: root}}, Deconstruct(root)...)
	if keep == nil {
		return all
	}
	out := all[:0]
	for _, part := range all {
		if keep(part) {
			out = append(out, part)
		}
	}
	return out
}

// WalkByKind keeps the parts whose value has exactly the given kind.
func WalkByKind(root Node, kind Kind) []Part {
	return WalkBy(root, func(part Part) bool {
		return part.Value != nil && part.Value.Kind() == kind
	})
}

// WalkByLookup keeps the parts selected by matcher. The first matcher error
// aborts the walk.
func WalkByLookup(root Node, matcher Matcher) ([]Part, error) {
	var (
		out     []Part
		walkErr error
	)
	WalkBy(root, func(part Part) bool {
		if walkErr != nil {
			return false
		}
		ok, err := matcher.Match(part)
		if err != nil {
			walkErr = err
			return false
		}
		if ok {
			out = append(out, part)
		}
		return false
	})
	if walkErr != nil {
		return nil, walkErr
	}
	return out, nil
}

// FilterParts keeps the parts for which keep returns true.
func FilterParts(parts []Part, keep func(Part) bool) []Part {
	out := make([]Part, 0, len(parts))
	for _, part := range parts {
		if keep(part) {
			out = append(out, part)
		}
	}
	return out
}
