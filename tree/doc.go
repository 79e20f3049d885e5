// Package tree models JSON-like documents as a closed tagged union of
// ordered maps, sequences and scalars, and provides the addressing helpers
// every other package builds on.
//
// Addresses come in three shapes:
//
//	Path    []string{"a", "b", "2"}
//	Lookup  "a.b.2"
//	Root    "#/a/b/2"
//
// Lookups drive pattern matching while roots correlate validator errors to
// nodes. Keys starting with AnnotationPrefix carry metadata written by the
// annotation overlay; walking, diffing and export always skip them.
package tree
