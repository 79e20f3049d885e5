package hydrate

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-reconcile/tree"
)

// ParseYAML decodes a single YAML document keeping mapping order.
func ParseYAML(payload []byte) (tree.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(payload, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 {
		return tree.Null(), nil
	}
	return fromYAML(&doc)
}

func fromYAML(node *yaml.Node) (tree.Node, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return tree.Null(), nil
		}
		return fromYAML(node.Content[0])
	case yaml.AliasNode:
		if node.Alias == nil {
			return tree.Null(), nil
		}
		return fromYAML(node.Alias)
	case yaml.MappingNode:
		m := tree.NewMap()
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i]
			if key.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: mapping keys must be scalars", key.Line)
			}
			value, err := fromYAML(node.Content[i+1])
			if err != nil {
				return nil, err
			}
			m.Set(key.Value, value)
		}
		return m, nil
	case yaml.SequenceNode:
		seq := tree.NewSequence()
		for _, item := range node.Content {
			value, err := fromYAML(item)
			if err != nil {
				return nil, err
			}
			seq.Append(value)
		}
		return seq, nil
	case yaml.ScalarNode:
		return scalarFromYAML(node)
	default:
		return nil, fmt.Errorf("line %d: unsupported yaml node kind %d", node.Line, node.Kind)
	}
}

func scalarFromYAML(node *yaml.Node) (tree.Node, error) {
	switch node.ShortTag() {
	case "!!null":
		return tree.Null(), nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return nil, err
		}
		return tree.NewScalar(b), nil
	case "!!int":
		var n int64
		if err := node.Decode(&n); err != nil {
			return nil, err
		}
		return tree.NewScalar(n), nil
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return nil, err
		}
		return tree.NewScalar(f), nil
	default:
		return tree.NewScalar(node.Value), nil
	}
}
