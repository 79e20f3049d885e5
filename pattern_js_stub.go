//go:build !js_eval

package reconcile

import "errors"

// ErrJSUnavailable is returned when compiling a js pattern without the
// js_eval build tag.
var ErrJSUnavailable = errors.New("reconcile: js patterns require the js_eval build tag")

func compileJS(expression string, _ PatternCache, _ *FunctionRegistry) (*JSPattern, error) {
	return nil, wrapPatternError("js", expression, "", ErrJSUnavailable)
}

// Match implements Pattern.
func (p *JSPattern) Match(ctx PartContext) (bool, error) {
	return false, wrapPatternError("js", p.expression, ctx.Lookup, ErrJSUnavailable)
}

func jsPatternsAvailable() bool {
	return false
}
