package tree

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	json "github.com/goccy/go-json"
)

// ErrTrailingData is returned when a JSON document carries more than one
// top-level value.
var ErrTrailingData = errors.New("tree: trailing data after JSON value")

// ParseJSON decodes data into a Node preserving object key order. Numbers
// are kept as json.Number.
func ParseJSON(data []byte) (Node, error) {
	return DecodeJSON(bytes.NewReader(data))
}

// DecodeJSON reads exactly one JSON value from r.
func DecodeJSON(r io.Reader) (Node, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("tree: empty JSON input: %w", io.ErrUnexpectedEOF)
		}
		return nil, fmt.Errorf("tree: decode json: %w", err)
	}
	node, err := decodeValue(dec, tok)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, ErrTrailingData
	}
	return node, nil
}

func decodeValue(dec *json.Decoder, tok json.Token) (Node, error) {
	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		default:
			return nil, fmt.Errorf("tree: unexpected delimiter %q", rune(v))
		}
	case string:
		return NewScalar(v), nil
	case bool:
		return NewScalar(v), nil
	case json.Number:
		return NewScalar(v), nil
	case float64:
		return NewScalar(v), nil
	case nil:
		return Null(), nil
	default:
		return nil, fmt.Errorf("tree: unexpected token %T", tok)
	}
}

func decodeObject(dec *json.Decoder) (Node, error) {
	m := NewMap()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("tree: decode json: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("tree: expected object key, got %T", tok)
		}
		tok, err = dec.Token()
		if err != nil {
			return nil, fmt.Errorf("tree: decode json at %q: %w", key, err)
		}
		value, err := decodeValue(dec, tok)
		if err != nil {
			return nil, err
		}
		m.Set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("tree: decode json: %w", err)
	}
	return m, nil
}

func decodeArray(dec *json.Decoder) (Node, error) {
	seq := NewSequence()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("tree: decode json: %w", err)
		}
		value, err := decodeValue(dec, tok)
		if err != nil {
			return nil, err
		}
		seq.items = append(seq.items, value)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("tree: decode json: %w", err)
	}
	return seq, nil
}

// MarshalJSON encodes node keeping map key order. Annotation keys are
// written as well; Strip the node first to leave them out.
func MarshalJSON(node Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := encode(&buf, node); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (m *Map) MarshalJSON() ([]byte, error)      { return MarshalJSON(m) }
func (s *Sequence) MarshalJSON() ([]byte, error) { return MarshalJSON(s) }
func (s Scalar) MarshalJSON() ([]byte, error)    { return json.Marshal(s.value) }

func encode(buf *bytes.Buffer, node Node) error {
	switch n := node.(type) {
	case nil:
		buf.WriteString("null")
	case *Map:
		buf.WriteByte('{')
		for i, key := range n.Keys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			k, err := json.Marshal(key)
			if err != nil {
				return err
			}
			buf.Write(k)
			buf.WriteByte(':')
			value, _ := n.Get(key)
			if err := encode(buf, value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case *Sequence:
		buf.WriteByte('[')
		for i, item := range n.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encode(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case Scalar:
		raw, err := json.Marshal(n.value)
		if err != nil {
			return fmt.Errorf("tree: encode scalar: %w", err)
		}
		buf.Write(raw)
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedValue, node)
	}
	return nil
}
