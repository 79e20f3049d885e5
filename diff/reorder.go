package diff

import "github.com/goliatone/go-reconcile/tree"

// Move relocates Ref from FromIndex to ToIndex. FromIndex is the position of
// Ref in the working array at the time the move is applied, after all the
// moves preceding it.
type Move struct {
	Ref       tree.Node
	FromIndex int
	ToIndex   int
}

// ReorderByProp computes the moves turning from into the order of to. Both
// slices are expected to hold the same multiset of signatures. Repeated
// signatures pair by occurrence: the k-th element of from carrying a
// signature targets the k-th element of to carrying it.
//
// Each round picks the element whose current position is furthest from its
// target position (ties go to the lowest current index), emits a move for it
// and relocates it in a working copy. The loop stops once every element sits
// at its target or after len(from)+1 rounds. The result is deterministic but
// not minimal: up to N+1 moves may be emitted where N-1 would suffice.
// Elements whose signature does not occur in to are left in place.
func ReorderByProp(key string, from, to []tree.Node) []Move {
	tracker := make([]tree.Node, len(from))
	copy(tracker, from)
	order := signatures(key, to)

	var moves []Move
	for round := 0; round < len(from)+1; round++ {
		bestFrom, bestTo := 0, 0
		targets := occurrenceTargets(key, tracker, order)
		for index, target := range targets {
			if target < 0 {
				continue
			}
			if abs(index-target) > abs(bestFrom-bestTo) {
				bestFrom, bestTo = index, target
			}
		}
		if bestFrom == 0 && bestTo == 0 {
			break
		}

		item := tracker[bestFrom]
		moves = append(moves, Move{Ref: item, FromIndex: bestFrom, ToIndex: bestTo})
		tracker = relocate(tracker, bestFrom, bestTo)
	}
	return moves
}

// ApplyMoves replays moves on a copy of items.
func ApplyMoves(items []tree.Node, moves []Move) []tree.Node {
	out := make([]tree.Node, len(items))
	copy(out, items)
	for _, move := range moves {
		if move.FromIndex < 0 || move.FromIndex >= len(out) {
			continue
		}
		out = relocate(out, move.FromIndex, move.ToIndex)
	}
	return out
}

// occurrenceTargets maps every element of items to the position of its
// matching occurrence in order, or -1.
func occurrenceTargets(key string, items []tree.Node, order []tree.Node) []int {
	seen := make([]tree.Node, len(items))
	targets := make([]int, len(items))
	for i, item := range items {
		signature := Signature(item, key)
		seen[i] = signature
		k := 0
		for _, earlier := range seen[:i] {
			if SameSignature(earlier, signature) {
				k++
			}
		}
		targets[i] = indexOfOccurrence(order, signature, k)
	}
	return targets
}

func relocate(items []tree.Node, from, to int) []tree.Node {
	item := items[from]
	items = append(items[:from], items[from+1:]...)
	if to < 0 {
		to = 0
	}
	if to >= len(items) {
		return append(items, item)
	}
	items = append(items, nil)
	copy(items[to+1:], items[to:])
	items[to] = item
	return items
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
