package reconcile

import "fmt"

// JSPattern evaluates an ECMAScript expression per walked part. The
// expression sees lookup, path, key, depth and kind, and may also be a bare
// /regex/flags literal tested against the lookup. Available with the
// js_eval build tag.
type JSPattern struct {
	expression string
	program    any
	registry   *FunctionRegistry
}

func (p *JSPattern) String() string {
	return p.expression
}

func jsResult(expression, lookup string, value any) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case nil:
		return false, nil
	default:
		return false, wrapPatternError("js", expression, lookup, fmt.Errorf("result %T is not a bool", value))
	}
}
