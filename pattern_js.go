//go:build js_eval

package reconcile

import (
	"fmt"
	"strings"

	"github.com/dop251/goja"
)

func compileJS(expression string, cache PatternCache, registry *FunctionRegistry) (*JSPattern, error) {
	if expression == "" {
		return nil, wrapPatternError("js", expression, "", fmt.Errorf("expression must not be empty"))
	}
	key := cacheKey("js", registry, expression)
	if cache != nil {
		if cached, ok := cache.Get(key); ok {
			if program, ok := cached.(*goja.Program); ok {
				return &JSPattern{expression: expression, program: program, registry: registry}, nil
			}
		}
	}
	program, err := goja.Compile("", wrapJSExpression(expression), false)
	if err != nil {
		return nil, wrapPatternError("js", expression, "", err)
	}
	if cache != nil {
		cache.Set(key, program)
	}
	return &JSPattern{expression: expression, program: program, registry: registry}, nil
}

// Match implements Pattern. Each call runs on a fresh runtime.
func (p *JSPattern) Match(ctx PartContext) (bool, error) {
	program, _ := p.program.(*goja.Program)
	if program == nil {
		return false, wrapPatternError("js", p.expression, ctx.Lookup, fmt.Errorf("program not compiled"))
	}
	vm := goja.New()
	for name, value := range ctx.binding() {
		if err := vm.Set(name, value); err != nil {
			return false, wrapPatternError("js", p.expression, ctx.Lookup, err)
		}
	}
	if p.registry != nil {
		_ = vm.Set("call", func(name string, arguments ...any) (any, error) {
			return p.registry.Call(name, arguments...)
		})
		for _, name := range p.registry.Names() {
			fn := name
			_ = vm.Set(fn, func(arguments ...any) (any, error) {
				return p.registry.Call(fn, arguments...)
			})
		}
	}
	value, err := vm.RunProgram(program)
	if err != nil {
		return false, wrapPatternError("js", p.expression, ctx.Lookup, err)
	}
	return jsResult(p.expression, ctx.Lookup, value.Export())
}

// wrapJSExpression turns a /regex/ literal into a test against lookup.
func wrapJSExpression(expression string) string {
	trimmed := strings.TrimSpace(expression)
	if strings.HasPrefix(trimmed, "/") && strings.LastIndex(trimmed, "/") > 0 {
		return fmt.Sprintf("(function(){ return (%s).test(lookup); })()", trimmed)
	}
	return fmt.Sprintf("(function(){ return (%s); })()", expression)
}

func jsPatternsAvailable() bool {
	return true
}
