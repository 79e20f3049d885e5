package tree

import (
	"reflect"
	"strings"
)

// AnnotationPrefix marks metadata keys written by the annotation overlay.
const AnnotationPrefix = "$"

// IsAnnotationKey reports whether key is reserved for annotations.
func IsAnnotationKey(key string) bool {
	return strings.HasPrefix(key, AnnotationPrefix)
}

// Clone returns a deep copy of node sharing no composite with the source.
// Annotation keys are copied as well; use Strip to drop them.
func Clone(node Node) Node {
	return cloneNode(node, false)
}

// Strip returns a deep copy of node without annotation keys.
func Strip(node Node) Node {
	return cloneNode(node, true)
}

func cloneNode(node Node, strip bool) Node {
	switch n := node.(type) {
	case nil:
		return nil
	case *Map:
		if n == nil {
			return NewMap()
		}
		out := &Map{
			keys:   make([]string, 0, len(n.keys)),
			values: make(map[string]Node, len(n.values)),
		}
		for _, key := range n.keys {
			if strip && IsAnnotationKey(key) {
				continue
			}
			out.keys = append(out.keys, key)
			out.values[key] = cloneNode(n.values[key], strip)
		}
		return out
	case *Sequence:
		if n == nil {
			return NewSequence()
		}
		out := &Sequence{items: make([]Node, len(n.items))}
		for i, item := range n.items {
			out.items[i] = cloneNode(item, strip)
		}
		return out
	case Scalar:
		return n
	default:
		return node
	}
}

// Equal reports deep structural equality. Map key order and annotation keys
// are ignored; numbers compare by value regardless of their Go type.
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch left := a.(type) {
	case *Map:
		right := b.(*Map)
		if left == right {
			return true
		}
		leftKeys := dataKeys(left)
		if len(leftKeys) != len(dataKeys(right)) {
			return false
		}
		for _, key := range leftKeys {
			rv, ok := right.Get(key)
			if !ok {
				return false
			}
			lv, _ := left.Get(key)
			if !Equal(lv, rv) {
				return false
			}
		}
		return true
	case *Sequence:
		right := b.(*Sequence)
		if left == right {
			return true
		}
		if left.Len() != right.Len() {
			return false
		}
		for i := 0; i < left.Len(); i++ {
			if !Equal(left.At(i), right.At(i)) {
				return false
			}
		}
		return true
	case Scalar:
		return scalarEqual(left.value, b.(Scalar).value)
	default:
		return false
	}
}

// DataKeys returns the non-annotation keys of m in insertion order.
func DataKeys(m *Map) []string {
	return dataKeys(m)
}

func dataKeys(m *Map) []string {
	if m == nil {
		return nil
	}
	out := make([]string, 0, len(m.keys))
	for _, key := range m.keys {
		if IsAnnotationKey(key) {
			continue
		}
		out = append(out, key)
	}
	return out
}

func scalarEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	af, aNumeric := toFloat(a)
	bf, bNumeric := toFloat(b)
	if aNumeric || bNumeric {
		return aNumeric && bNumeric && af == bf
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	default:
		return reflect.DeepEqual(a, b)
	}
}
