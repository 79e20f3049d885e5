package reconcile

import (
	"testing"

	"github.com/goliatone/go-reconcile/tree"
)

func TestPickRelevantKeys(t *testing.T) {
	value := mustParse(t, `{"id":1,"name":"a","secret":"s","$dirty":true}`).(*tree.Map)

	cases := []struct {
		handler Handler
		want    string
	}{
		{Handler{}, `{"id":1,"name":"a","secret":"s"}`},
		{Handler{Observe: []string{"name", "secret"}}, `{"name":"a","secret":"s"}`},
		{Handler{Ignore: []string{"secret"}}, `{"id":1,"name":"a"}`},
		{Handler{Observe: []string{"name", "secret"}, Ignore: []string{"secret"}}, `{"name":"a"}`},
	}
	for _, tc := range cases {
		got, err := tree.MarshalJSON(PickRelevantKeys(tc.handler, value))
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if string(got) != tc.want {
			t.Fatalf("observe=%v ignore=%v: expected %s, got %s", tc.handler.Observe, tc.handler.Ignore, tc.want, got)
		}
	}
}

func TestSearchKeepsWalkOrder(t *testing.T) {
	h := Handler{Name: "lists", Search: mustLookup(t, "**.items")}
	scope := Scope{
		Target:   mustParse(t, `{"items":[],"groups":[{"items":[1]},{"items":[2]}]}`),
		Original: mustParse(t, `{"groups":[{"items":[1]}]}`),
	}
	so, err := Search(h, scope)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	var lookups []string
	for _, part := range so.Results.Target {
		lookups = append(lookups, part.Lookup)
	}
	want := []string{"items", "groups.0.items", "groups.1.items"}
	if len(lookups) != len(want) {
		t.Fatalf("expected %v, got %v", want, lookups)
	}
	for i := range want {
		if lookups[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, lookups)
		}
	}
	if len(so.Results.Original) != 1 || so.Scope.Target != scope.Target {
		t.Fatalf("search object should keep original results and scope")
	}
}

func TestSearchWithoutPattern(t *testing.T) {
	if _, err := Search(Handler{Name: "empty"}, Scope{}); err == nil {
		t.Fatalf("expected error without a search pattern")
	}
}

func TestSharedListsTakeFirstOriginalMatch(t *testing.T) {
	h := SortHandler{
		Handler:         Handler{Search: mustLookup(t, "groups.*.items"), Callback: &Recorder{}},
		ParentSignature: "key",
	}
	so, err := Search(h.Handler, Scope{
		Target:   mustParse(t, `{"groups":[{"key":"a","items":[]}]}`),
		Original: mustParse(t, `{"groups":[{"key":"a","items":[1]},{"key":"a","items":[2]}]}`),
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	shared := RetrieveSharedLists(h, so)
	if len(shared) != 1 || shared[0].Original.Lookup != "groups.0.items" {
		t.Fatalf("expected first original match, got %+v", shared)
	}
	if added := RetrieveAddedLists(h, so); len(added) != 0 {
		t.Fatalf("unexpected added lists %+v", added)
	}
	if removed := RetrieveRemovedLists(h, so); len(removed) != 0 {
		t.Fatalf("both original lists share a parent signature with the target: %+v", removed)
	}
}

func TestMissingParentSignatureNeverMatchesPresentOne(t *testing.T) {
	h := SortHandler{
		Handler:         Handler{Search: mustLookup(t, "groups.*.items"), Callback: &Recorder{}},
		ParentSignature: "key",
	}
	so, err := Search(h.Handler, Scope{
		Target:   mustParse(t, `{"groups":[{"items":[]}]}`),
		Original: mustParse(t, `{"groups":[{"key":null,"items":[]}]}`),
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	added := RetrieveAddedLists(h, so)
	removed := RetrieveRemovedLists(h, so)
	if len(added) != 1 || !added[0].HasTarget() || added[0].HasOriginal() {
		t.Fatalf("expected the target list to be added, got %+v", added)
	}
	if len(removed) != 1 || !removed[0].HasOriginal() {
		t.Fatalf("expected the original list to be removed, got %+v", removed)
	}
}

func TestCheckHandlersShapes(t *testing.T) {
	scope := Scope{
		Target:   mustParse(t, `{"items":[1],"meta":{"a":1}}`),
		Original: mustParse(t, `{"items":[1],"meta":{"a":1}}`),
	}
	sortHandler := SortHandler{Handler: Handler{Search: MustRegex(`^items$`), Callback: &Recorder{}}}
	so, _ := Search(sortHandler.Handler, scope)
	if err := CheckSortHandler(sortHandler, so); err != nil {
		t.Fatalf("list handler should be valid: %v", err)
	}
	mergeHandler := MergeHandler{Handler: Handler{Search: MustRegex(`^items$`), Callback: &Recorder{}}}
	so, _ = Search(mergeHandler.Handler, scope)
	if err := CheckMergeHandler(mergeHandler, so); err == nil {
		t.Fatalf("merge handler matching a list should be invalid")
	}
}
