package tree

import (
	"strconv"

	json "github.com/goccy/go-json"
)

// Kind identifies the shape of a Node.
type Kind uint8

const (
	KindScalar Kind = iota
	KindMap
	KindSequence
)

func (k Kind) String() string {
	switch k {
	case KindMap:
		return "map"
	case KindSequence:
		return "sequence"
	default:
		return "scalar"
	}
}

// ParseKind converts a string produced by Kind.String back into a Kind.
func ParseKind(value string) (Kind, bool) {
	switch value {
	case "map", "object":
		return KindMap, true
	case "sequence", "array":
		return KindSequence, true
	case "scalar":
		return KindScalar, true
	default:
		return KindScalar, false
	}
}

// Node is one of *Map, *Sequence or Scalar.
type Node interface {
	Kind() Kind
	node()
}

// Map is an insertion-ordered string keyed composite.
type Map struct {
	keys   []string
	values map[string]Node
}

// NewMap returns an empty map.
func NewMap() *Map {
	return &Map{values: map[string]Node{}}
}

func (*Map) Kind() Kind { return KindMap }
func (*Map) node()      {}

// Len returns the number of entries, annotation keys included.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	if m == nil || len(m.keys) == 0 {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (Node, bool) {
	if m == nil {
		return nil, false
	}
	value, ok := m.values[key]
	return value, ok
}

// Has reports whether key is present.
func (m *Map) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Set stores value under key. New keys are appended to the key order.
func (m *Map) Set(key string, value Node) {
	if m.values == nil {
		m.values = map[string]Node{}
	}
	if value == nil {
		value = Null()
	}
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Delete removes key, reporting whether it was present.
func (m *Map) Delete(key string) bool {
	if m == nil {
		return false
	}
	if _, exists := m.values[key]; !exists {
		return false
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
	return true
}

// Sequence is an ordered list of nodes.
type Sequence struct {
	items []Node
}

// NewSequence returns a sequence holding items.
func NewSequence(items ...Node) *Sequence {
	s := &Sequence{}
	s.Append(items...)
	return s
}

func (*Sequence) Kind() Kind { return KindSequence }
func (*Sequence) node()      {}

// Len returns the number of items.
func (s *Sequence) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// At returns the item at index i, or nil when i is out of range.
func (s *Sequence) At(i int) Node {
	if s == nil || i < 0 || i >= len(s.items) {
		return nil
	}
	return s.items[i]
}

// Items returns a copy of the item slice. The nodes themselves are shared.
func (s *Sequence) Items() []Node {
	if s == nil || len(s.items) == 0 {
		return nil
	}
	out := make([]Node, len(s.items))
	copy(out, s.items)
	return out
}

// Append adds items to the end of the sequence.
func (s *Sequence) Append(items ...Node) {
	for _, item := range items {
		if item == nil {
			item = Null()
		}
		s.items = append(s.items, item)
	}
}

// Set replaces the item at index i.
func (s *Sequence) Set(i int, item Node) bool {
	if s == nil || i < 0 || i >= len(s.items) {
		return false
	}
	if item == nil {
		item = Null()
	}
	s.items[i] = item
	return true
}

// Insert places item at index i, clamping i to the valid range.
func (s *Sequence) Insert(i int, item Node) {
	if item == nil {
		item = Null()
	}
	if i < 0 {
		i = 0
	}
	if i >= len(s.items) {
		s.items = append(s.items, item)
		return
	}
	s.items = append(s.items, nil)
	copy(s.items[i+1:], s.items[i:])
	s.items[i] = item
}

// RemoveAt deletes and returns the item at index i.
func (s *Sequence) RemoveAt(i int) (Node, bool) {
	if s == nil || i < 0 || i >= len(s.items) {
		return nil, false
	}
	item := s.items[i]
	s.items = append(s.items[:i], s.items[i+1:]...)
	return item, true
}

// Scalar is a leaf value: nil, bool, string or a number.
type Scalar struct {
	value any
}

// NewScalar wraps v. Integer and float variants are kept as provided; use
// FromValue when normalisation is needed.
func NewScalar(v any) Scalar {
	return Scalar{value: v}
}

// Null returns the null scalar.
func Null() Scalar { return Scalar{} }

func (Scalar) Kind() Kind { return KindScalar }
func (Scalar) node()      {}

// Value returns the wrapped Go value.
func (s Scalar) Value() any { return s.value }

// IsNull reports whether the scalar holds no value.
func (s Scalar) IsNull() bool { return s.value == nil }

// String renders the scalar for diagnostics.
func (s Scalar) String() string {
	switch v := s.value.(type) {
	case nil:
		return "null"
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case json.Number:
		return v.String()
	default:
		if f, ok := toFloat(v); ok {
			return strconv.FormatFloat(f, 'g', -1, 64)
		}
		return "?"
	}
}
