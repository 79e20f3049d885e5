package hydrate

import (
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-reconcile/tree"
)

func TestDecodeJSONAndYAMLAgree(t *testing.T) {
	jsonDoc := []byte(`{"name":"form","sections":[{"id":1,"title":"a"},{"id":2,"title":"b"}],"enabled":true,"ratio":0.5,"note":null}`)
	yamlDoc := []byte(`
name: form
sections:
  - id: 1
    title: a
  - id: 2
    title: b
enabled: true
ratio: 0.5
note: ~
`)
	decoder := NewDecoder()
	fromJSON, err := decoder.Decode(Context{Name: "doc.json"}, jsonDoc)
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	fromYAML, err := decoder.Decode(Context{Name: "doc.yaml"}, yamlDoc)
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if !tree.Equal(fromJSON, fromYAML) {
		a, _ := tree.MarshalJSON(fromJSON)
		b, _ := tree.MarshalJSON(fromYAML)
		t.Fatalf("documents differ:\njson: %s\nyaml: %s", a, b)
	}
	keys := fromYAML.(*tree.Map).Keys()
	if strings.Join(keys, ",") != "name,sections,enabled,ratio,note" {
		t.Fatalf("yaml key order lost: %v", keys)
	}
}

func TestDecodeYAMLAliases(t *testing.T) {
	doc := []byte(`
base: &b {id: 7}
copy: *b
`)
	node, err := NewDecoder().Decode(Context{Format: FormatYAML}, doc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	id, ok := tree.GetLookup(node, "copy.id")
	if !ok || id.(tree.Scalar).String() != "7" {
		t.Fatalf("alias not resolved: %v", id)
	}
}

func TestDecodeHooks(t *testing.T) {
	var seen []string
	decoder := NewDecoder(
		WithPreHook(func(ctx Context, node tree.Node) (tree.Node, error) {
			seen = append(seen, "pre:"+string(ctx.Format))
			m := tree.Clone(node).(*tree.Map)
			m.Delete("secret")
			return m, nil
		}),
		WithPreHook(nil),
		WithPostHook(func(ctx Context, node tree.Node) error {
			seen = append(seen, "post")
			if node.(*tree.Map).Has("secret") {
				return errors.New("secret leaked")
			}
			return nil
		}),
	)
	if _, err := decoder.Decode(Context{Name: "x"}, []byte(`{"secret":1,"a":2}`)); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if strings.Join(seen, ",") != "pre:json,post" {
		t.Fatalf("unexpected hook order %v", seen)
	}
}

func TestDecodeErrors(t *testing.T) {
	decoder := NewDecoder(WithRequireObject())
	if _, err := decoder.Decode(Context{Name: "empty"}, []byte("  ")); !errors.Is(err, ErrEmptyDocument) {
		t.Fatalf("expected ErrEmptyDocument, got %v", err)
	}
	if _, err := decoder.Decode(Context{Name: "list"}, []byte(`[1,2]`)); err == nil {
		t.Fatalf("expected object requirement error")
	}
	failing := NewDecoder(WithPostHook(func(Context, tree.Node) error { return errors.New("nope") }))
	_, err := failing.Decode(Context{Name: "doc"}, []byte(`{}`))
	if err == nil || !strings.Contains(err.Error(), `post-hook for "doc" failed`) {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestFormatFromPath(t *testing.T) {
	cases := map[string]Format{"a.yml": FormatYAML, "b.YAML": FormatYAML, "c.json": FormatJSON, "d.txt": FormatAuto}
	for path, want := range cases {
		if got := FormatFromPath(path); got != want {
			t.Fatalf("%s: expected %q, got %q", path, want, got)
		}
	}
}
