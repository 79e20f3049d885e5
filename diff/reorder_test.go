package diff

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/goliatone/go-reconcile/tree"
)

type reorderFixture struct {
	Description string               `json:"description"`
	Cases       []reorderFixtureCase `json:"cases"`
}

type reorderFixtureCase struct {
	Name  string           `json:"name"`
	From  []map[string]int `json:"from"`
	To    []map[string]int `json:"to"`
	Moves []struct {
		ID   int `json:"id"`
		From int `json:"from"`
		To   int `json:"to"`
	} `json:"moves"`
}

func loadReorderFixture(t *testing.T) reorderFixture {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join("testdata", "reorder.json"))
	if err != nil {
		t.Fatalf("failed to read reorder fixture: %v", err)
	}
	var fx reorderFixture
	if err := json.Unmarshal(raw, &fx); err != nil {
		t.Fatalf("failed to unmarshal reorder fixture: %v", err)
	}
	return fx
}

func items(t *testing.T, values []map[string]int) []tree.Node {
	t.Helper()
	out := make([]tree.Node, len(values))
	for i, value := range values {
		out[i] = tree.MustFromValue(value)
	}
	return out
}

func ids(list []tree.Node) string {
	out := ""
	for i, item := range list {
		if i > 0 {
			out += ","
		}
		out += Signature(item, "id").(tree.Scalar).String()
	}
	return out
}

func TestReorderByPropFromFixture(t *testing.T) {
	fx := loadReorderFixture(t)
	for _, tc := range fx.Cases {
		tc := tc
		t.Run(tc.Name, func(t *testing.T) {
			from := items(t, tc.From)
			to := items(t, tc.To)

			moves := ReorderByProp("id", from, to)
			if len(moves) != len(tc.Moves) {
				t.Fatalf("expected %d moves, got %d", len(tc.Moves), len(moves))
			}
			for i, want := range tc.Moves {
				got := moves[i]
				id := Signature(got.Ref, "id").(tree.Scalar).String()
				if id != fmt.Sprint(want.ID) || got.FromIndex != want.From || got.ToIndex != want.To {
					t.Fatalf("move %d: expected %+v, got id=%s from=%d to=%d", i, want, id, got.FromIndex, got.ToIndex)
				}
			}

			if got, want := ids(ApplyMoves(from, moves)), ids(to); got != want {
				t.Fatalf("replayed order %s, want %s", got, want)
			}
		})
	}
}

func TestReorderByPropTerminatesForAllPermutations(t *testing.T) {
	for n := 1; n <= 6; n++ {
		base := make([]tree.Node, n)
		for i := range base {
			base[i] = tree.NewScalar(int64(i))
		}
		permute(base, func(target []tree.Node) {
			moves := ReorderByProp("", base, target)
			if len(moves) > n+1 {
				t.Fatalf("n=%d: %d moves exceeds bound", n, len(moves))
			}
			replayed := ApplyMoves(base, moves)
			for i := range target {
				if !tree.Equal(replayed[i], target[i]) {
					t.Fatalf("n=%d: replay does not reach target order", n)
				}
			}
		})
	}
}

func permute(items []tree.Node, visit func([]tree.Node)) {
	work := make([]tree.Node, len(items))
	copy(work, items)
	var rec func(k int)
	rec = func(k int) {
		if k == len(work) {
			out := make([]tree.Node, len(work))
			copy(out, work)
			visit(out)
			return
		}
		for i := k; i < len(work); i++ {
			work[k], work[i] = work[i], work[k]
			rec(k + 1)
			work[k], work[i] = work[i], work[k]
		}
	}
	rec(0)
}

func TestReorderByPropDoesNotMutateInput(t *testing.T) {
	from := items(t, []map[string]int{{"id": 1}, {"id": 2}})
	to := items(t, []map[string]int{{"id": 2}, {"id": 1}})
	ReorderByProp("id", from, to)
	if ids(from) != "1,2" {
		t.Fatalf("input mutated: %s", ids(from))
	}
}

func TestReorderByPropPairsRepeatedSignatures(t *testing.T) {
	from := items(t, []map[string]int{{"id": 1, "n": 1}, {"id": 1, "n": 2}, {"id": 2}})
	to := items(t, []map[string]int{{"id": 1}, {"id": 2}, {"id": 1}})

	moves := ReorderByProp("id", from, to)
	if len(moves) != 1 || moves[0].FromIndex != 1 || moves[0].ToIndex != 2 {
		t.Fatalf("expected a single move 1->2, got %+v", moves)
	}
	got := ApplyMoves(from, moves)
	if ids(got) != "1,2,1" {
		t.Fatalf("replayed order %s, want 1,2,1", ids(got))
	}
	if n, _ := tree.GetLookup(got[0], "n"); n.(tree.Scalar).String() != "1" {
		t.Fatalf("first copy should stay in front")
	}

	same := items(t, []map[string]int{{"id": 3}, {"id": 3}})
	if moves := ReorderByProp("id", same, same); len(moves) != 0 {
		t.Fatalf("identical lists need no moves, got %+v", moves)
	}
}
