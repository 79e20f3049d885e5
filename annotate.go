package reconcile

import (
	"strings"

	"github.com/goliatone/go-reconcile/tree"
)

// Annotation keys written by ApplyAnnotations.
const (
	AnnotationRoot     = "$root"
	AnnotationErrors   = "$errors"
	AnnotationValid    = "$valid"
	AnnotationInvalid  = "$invalid"
	AnnotationDirty    = "$dirty"
	AnnotationPristine = "$pristine"
)

// Annotation is the overlay state of one map of the target.
type Annotation struct {
	Root     string            `json:"root"`
	Errors   []ValidationError `json:"errors"`
	Valid    bool              `json:"valid"`
	Invalid  bool              `json:"invalid"`
	Dirty    bool              `json:"dirty"`
	Pristine bool              `json:"pristine"`
}

// Annotations maps the lookup of every annotated node to its state. The
// root is stored under "".
type Annotations map[string]Annotation

// Get returns the annotation stored for lookup.
func (a Annotations) Get(lookup string) (Annotation, bool) {
	ann, ok := a[lookup]
	return ann, ok
}

// Annotate computes the overlay of target: the root and every map get their
// root address, the errors rooted at or below it, and valid/dirty flags. A
// node is dirty when its lookup or one below it is in dirty.
func Annotate(target tree.Node, errs []ValidationError, dirty map[string]struct{}) Annotations {
	out := Annotations{}
	if target == nil {
		return out
	}
	parts := tree.WalkBy(target, func(part tree.Part) bool {
		return part.Lookup == "" || (part.Value != nil && part.Value.Kind() == tree.KindMap)
	})
	for _, part := range parts {
		root := tree.PathToRoot(part.Path())
		rooted := tree.ErrorsForRoot(errs, root, true)
		isDirty := dirtyAt(part.Lookup, dirty)
		out[part.Lookup] = Annotation{
			Root:     root,
			Errors:   rooted,
			Valid:    len(rooted) == 0,
			Invalid:  len(rooted) > 0,
			Dirty:    isDirty,
			Pristine: !isDirty,
		}
	}
	return out
}

func dirtyAt(lookup string, dirty map[string]struct{}) bool {
	if len(dirty) == 0 {
		return false
	}
	if lookup == "" {
		return true
	}
	for changed := range dirty {
		if changed == lookup || strings.HasPrefix(changed, lookup+".") {
			return true
		}
	}
	return false
}

// ApplyAnnotations writes annotations onto the maps of target under the $
// keys. Lookups that no longer resolve to a map are skipped.
func ApplyAnnotations(target tree.Node, annotations Annotations) {
	for lookup, ann := range annotations {
		node, ok := tree.GetLookup(target, lookup)
		if !ok {
			continue
		}
		m, ok := node.(*tree.Map)
		if !ok {
			continue
		}
		errs := tree.NewSequence()
		for _, err := range ann.Errors {
			entry := tree.NewMap()
			entry.Set("path", tree.NewScalar(err.Path))
			if err.Code != "" {
				entry.Set("code", tree.NewScalar(err.Code))
			}
			entry.Set("message", tree.NewScalar(err.Message))
			errs.Append(entry)
		}
		m.Set(AnnotationRoot, tree.NewScalar(ann.Root))
		m.Set(AnnotationErrors, errs)
		m.Set(AnnotationValid, tree.NewScalar(ann.Valid))
		m.Set(AnnotationInvalid, tree.NewScalar(ann.Invalid))
		m.Set(AnnotationDirty, tree.NewScalar(ann.Dirty))
		m.Set(AnnotationPristine, tree.NewScalar(ann.Pristine))
	}
}
