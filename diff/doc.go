// Package diff holds the set-style primitives used to compare two snapshots
// of a tree: keyed deviants and intersections, a greedy array reorder and a
// recursive object merge patch. Arrays are compared through a signature key;
// the empty key makes each element its own signature.
package diff
