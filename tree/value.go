package tree

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"

	json "github.com/goccy/go-json"
)

// ErrUnsupportedValue is returned by FromValue for Go values that have no
// tree representation (channels, funcs, non-string map keys...).
var ErrUnsupportedValue = errors.New("tree: unsupported value")

// FromValue converts plain Go data into a Node. Nodes are returned as is.
// Go maps carry no order, so their keys are sorted lexically.
func FromValue(value any) (Node, error) {
	switch v := value.(type) {
	case nil:
		return Null(), nil
	case Node:
		return v, nil
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		m := NewMap()
		for _, key := range keys {
			child, err := FromValue(v[key])
			if err != nil {
				return nil, fmt.Errorf("%w at %q", err, key)
			}
			m.Set(key, child)
		}
		return m, nil
	case []any:
		seq := &Sequence{items: make([]Node, 0, len(v))}
		for i, item := range v {
			child, err := FromValue(item)
			if err != nil {
				return nil, fmt.Errorf("%w at %d", err, i)
			}
			seq.items = append(seq.items, child)
		}
		return seq, nil
	case string, bool, json.Number:
		return NewScalar(v), nil
	case float64:
		return NewScalar(v), nil
	case float32:
		return NewScalar(float64(v)), nil
	case int:
		return NewScalar(int64(v)), nil
	case int8:
		return NewScalar(int64(v)), nil
	case int16:
		return NewScalar(int64(v)), nil
	case int32:
		return NewScalar(int64(v)), nil
	case int64:
		return NewScalar(v), nil
	case uint, uint8, uint16, uint32, uint64:
		return NewScalar(json.Number(fmt.Sprint(v))), nil
	}
	return fromReflect(reflect.ValueOf(value))
}

// MustFromValue is FromValue for literals known to be convertible.
func MustFromValue(value any) Node {
	node, err := FromValue(value)
	if err != nil {
		panic(err)
	}
	return node
}

func fromReflect(rv reflect.Value) (Node, error) {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null(), nil
		}
		return FromValue(rv.Elem().Interface())
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("%w: map key %s", ErrUnsupportedValue, rv.Type().Key())
		}
		plain := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			plain[iter.Key().String()] = iter.Value().Interface()
		}
		return FromValue(plain)
	case reflect.Slice, reflect.Array:
		plain := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			plain[i] = rv.Index(i).Interface()
		}
		return FromValue(plain)
	case reflect.String:
		return NewScalar(rv.String()), nil
	case reflect.Bool:
		return NewScalar(rv.Bool()), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedValue, rv.Type())
	}
}

// Export converts node back into plain Go data (map[string]any, []any and
// scalar values). Annotation keys are dropped.
func Export(node Node) any {
	switch n := node.(type) {
	case nil:
		return nil
	case *Map:
		out := make(map[string]any, n.Len())
		for _, key := range dataKeys(n) {
			value, _ := n.Get(key)
			out[key] = Export(value)
		}
		return out
	case *Sequence:
		out := make([]any, n.Len())
		for i := 0; i < n.Len(); i++ {
			out[i] = Export(n.At(i))
		}
		return out
	case Scalar:
		return n.value
	default:
		return nil
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := strconv.ParseFloat(string(n), 64)
		return f, err == nil
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
