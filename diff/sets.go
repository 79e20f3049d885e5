package diff

import "github.com/goliatone/go-reconcile/tree"

// ExtractDeviants returns the elements of a whose signature has no
// counterpart in b, keeping the order of a.
func ExtractDeviants(key string, a, b []tree.Node) []tree.Node {
	other := signatures(key, b)
	out := make([]tree.Node, 0, len(a))
	for _, item := range a {
		if indexOfSignature(other, Signature(item, key)) < 0 {
			out = append(out, item)
		}
	}
	return out
}

// ExtractIntersections returns the elements of a whose signature appears in
// b, keeping the order of a. Together with ExtractDeviants it partitions a.
func ExtractIntersections(key string, a, b []tree.Node) []tree.Node {
	other := signatures(key, b)
	out := make([]tree.Node, 0, len(a))
	for _, item := range a {
		if indexOfSignature(other, Signature(item, key)) >= 0 {
			out = append(out, item)
		}
	}
	return out
}

// FindIndexByProp returns the first index in items sharing value's
// signature, or -1.
func FindIndexByProp(key string, items []tree.Node, value tree.Node) int {
	return indexOfSignature(signatures(key, items), Signature(value, key))
}

// PairByOccurrence reports, for every element of a, whether it has a
// counterpart in b once repeated signatures are paired by occurrence: the
// k-th element of a with a signature pairs with the k-th element of b with
// the same one. Unlike ExtractIntersections, a surplus copy stays unpaired.
func PairByOccurrence(key string, a, b []tree.Node) []bool {
	other := signatures(key, b)
	used := make([]bool, len(other))
	paired := make([]bool, len(a))
	for i, item := range a {
		signature := Signature(item, key)
		for j, candidate := range other {
			if used[j] || !SameSignature(candidate, signature) {
				continue
			}
			used[j] = true
			paired[i] = true
			break
		}
	}
	return paired
}
