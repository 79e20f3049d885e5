package diff

import "github.com/goliatone/go-reconcile/tree"

// Signature returns the value stored under key on item. The empty key
// returns item itself. A missing field yields nil.
func Signature(item tree.Node, key string) tree.Node {
	if key == "" {
		return item
	}
	value, ok := tree.Field(item, key)
	if !ok {
		return nil
	}
	return value
}

// SameSignature compares two signatures. Two missing signatures are equal,
// a missing signature never equals a present one (null included).
func SameSignature(a, b tree.Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return tree.Equal(a, b)
}

func indexOfSignature(signatures []tree.Node, signature tree.Node) int {
	for i, candidate := range signatures {
		if SameSignature(candidate, signature) {
			return i
		}
	}
	return -1
}

// indexOfOccurrence returns the index of the k-th (zero based) signature in
// signatures equal to signature, or -1.
func indexOfOccurrence(signatures []tree.Node, signature tree.Node, k int) int {
	for i, candidate := range signatures {
		if !SameSignature(candidate, signature) {
			continue
		}
		if k == 0 {
			return i
		}
		k--
	}
	return -1
}

func signatures(key string, items []tree.Node) []tree.Node {
	out := make([]tree.Node, len(items))
	for i, item := range items {
		out[i] = Signature(item, key)
	}
	return out
}
