package tree

import "strings"

// Path is an ordered sequence of keys addressing a node.
type Path []string

const (
	lookupSeparator = "."
	rootSeparator   = "/"
	rootPrefix      = "#/"
)

// PathToLookup joins path with dots. The empty path yields "".
func PathToLookup(path Path) string {
	return strings.Join(path, lookupSeparator)
}

// LookupToPath splits lookup on dots, dropping empty segments.
func LookupToPath(lookup string) Path {
	return splitNonEmpty(lookup, lookupSeparator)
}

// PathToRoot renders path as a "#/a/b" root address. Keys are escaped per
// RFC 6901, so "a/b" becomes "#/a~1b".
func PathToRoot(path Path) string {
	escaped := make([]string, len(path))
	for i, key := range path {
		escaped[i] = EscapeRootKey(key)
	}
	return rootPrefix + strings.Join(escaped, rootSeparator)
}

// RootToPath parses a root address, stripping the leading "#/" and
// unescaping every key.
func RootToPath(root string) Path {
	parts := strings.Split(root, rootSeparator)
	if len(parts) == 0 {
		return Path{}
	}
	path := dropEmpty(parts[1:])
	for i, key := range path {
		path[i] = UnescapeRootKey(key)
	}
	return path
}

// EscapeRootKey escapes '~' as "~0" and '/' as "~1".
func EscapeRootKey(key string) string {
	return strings.ReplaceAll(strings.ReplaceAll(key, "~", "~0"), "/", "~1")
}

// UnescapeRootKey reverses EscapeRootKey.
func UnescapeRootKey(key string) string {
	return strings.ReplaceAll(strings.ReplaceAll(key, "~1", "/"), "~0", "~")
}

// LookupToRoot converts a lookup string straight into a root address.
func LookupToRoot(lookup string) string {
	return PathToRoot(LookupToPath(lookup))
}

// JoinLookup appends key to a parent lookup.
func JoinLookup(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + lookupSeparator + key
}

// Init returns path without its final key. The root's parent is the root.
func (p Path) Init() Path {
	if len(p) == 0 {
		return Path{}
	}
	out := make(Path, len(p)-1)
	copy(out, p[:len(p)-1])
	return out
}

// Last returns the final key, or "" for the root.
func (p Path) Last() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// Child returns a new path extended by key.
func (p Path) Child(key string) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, key)
}

// Rooted is implemented by errors that carry a root address.
type Rooted interface {
	RootPath() string
}

// RootMatches reports whether path is root itself or, when recursive, a
// descendant of it. Matching is segment aware: "#/a" covers "#/a/b" but not
// "#/ab".
func RootMatches(path, root string, recursive bool) bool {
	if path == root {
		return true
	}
	if !recursive {
		return false
	}
	prefix := root
	if !strings.HasSuffix(prefix, rootSeparator) {
		prefix += rootSeparator
	}
	return strings.HasPrefix(path, prefix)
}

// ErrorsForRoot filters errs down to those stemming from root.
func ErrorsForRoot[T Rooted](errs []T, root string, recursive bool) []T {
	out := make([]T, 0, len(errs))
	for _, err := range errs {
		if RootMatches(err.RootPath(), root, recursive) {
			out = append(out, err)
		}
	}
	return out
}

func splitNonEmpty(value, sep string) Path {
	if value == "" {
		return Path{}
	}
	return dropEmpty(strings.Split(value, sep))
}

func dropEmpty(parts []string) Path {
	out := make(Path, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
