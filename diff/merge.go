package diff

import "github.com/goliatone/go-reconcile/tree"

// MergeObjects describes the changes that turn a into b as a JSON merge
// patch: keys only in b are copied verbatim, keys only in a are set to null
// and differing values carry b's value, recursing when both sides are maps.
// Annotation keys take no part in the comparison. Equal inputs produce an
// empty patch.
func MergeObjects(a, b *tree.Map) *tree.Map {
	patch := tree.NewMap()
	for _, key := range tree.DataKeys(b) {
		if a.Has(key) {
			continue
		}
		value, _ := b.Get(key)
		patch.Set(key, tree.Strip(value))
	}

	for _, key := range tree.DataKeys(a) {
		left, _ := a.Get(key)
		right, ok := b.Get(key)
		if !ok {
			patch.Set(key, tree.Null())
			continue
		}
		if tree.Equal(left, right) {
			continue
		}
		leftMap, leftIsMap := left.(*tree.Map)
		rightMap, rightIsMap := right.(*tree.Map)
		if leftIsMap && rightIsMap {
			patch.Set(key, MergeObjects(leftMap, rightMap))
			continue
		}
		patch.Set(key, tree.Strip(right))
	}
	return patch
}

// ApplyPatch returns a copy of m with patch merged in. Null values delete
// keys and nested maps merge recursively.
func ApplyPatch(m, patch *tree.Map) *tree.Map {
	var out *tree.Map
	if m == nil {
		out = tree.NewMap()
	} else {
		out = tree.Clone(m).(*tree.Map)
	}
	for _, key := range patch.Keys() {
		value, _ := patch.Get(key)
		if scalar, ok := value.(tree.Scalar); ok && scalar.IsNull() {
			out.Delete(key)
			continue
		}
		if patchMap, ok := value.(*tree.Map); ok {
			current, _ := out.Get(key)
			currentMap, _ := current.(*tree.Map)
			out.Set(key, ApplyPatch(currentMap, patchMap))
			continue
		}
		out.Set(key, tree.Clone(value))
	}
	return out
}
