package tree

import "strconv"

// Child returns the direct child of node stored under key. Sequence children
// are addressed by their decimal index.
func Child(node Node, key string) (Node, bool) {
	switch n := node.(type) {
	case *Map:
		return n.Get(key)
	case *Sequence:
		index, err := strconv.Atoi(key)
		if err != nil || index < 0 || index >= n.Len() {
			return nil, false
		}
		return n.At(index), true
	default:
		return nil, false
	}
}

// Get resolves path against root. The empty path resolves to root.
func Get(root Node, path Path) (Node, bool) {
	current := root
	for _, key := range path {
		next, ok := Child(current, key)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, current != nil
}

// GetLookup resolves a dotted lookup against root.
func GetLookup(root Node, lookup string) (Node, bool) {
	return Get(root, LookupToPath(lookup))
}

// Parent resolves the logical parent of the node at path. The parent of the
// root is the root itself.
func Parent(root Node, path Path) (Node, bool) {
	return Get(root, path.Init())
}

// Field returns the value stored under key when node is a map.
func Field(node Node, key string) (Node, bool) {
	m, ok := node.(*Map)
	if !ok {
		return nil, false
	}
	return m.Get(key)
}
