package reconcile

import (
	"fmt"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
)

// ExprPattern evaluates an expr-lang boolean expression per walked part.
// The environment exposes lookup, path, key, depth and kind, plus every
// function of the compiler's registry.
type ExprPattern struct {
	expression string
	program    *exprvm.Program
	registry   *FunctionRegistry
}

func compileExpr(expression string, cache PatternCache, registry *FunctionRegistry) (*ExprPattern, error) {
	if expression == "" {
		return nil, wrapPatternError("expr", expression, "", fmt.Errorf("expression must not be empty"))
	}
	key := cacheKey("expr", registry, expression)
	if cache != nil {
		if cached, ok := cache.Get(key); ok {
			if program, ok := cached.(*exprvm.Program); ok {
				return &ExprPattern{expression: expression, program: program, registry: registry}, nil
			}
		}
	}
	options := []exprlang.Option{
		exprlang.Env(map[string]any{
			"lookup": "",
			"path":   []any{},
			"key":    "",
			"depth":  0,
			"kind":   "",
			"call":   registryCall(registry),
		}),
		exprlang.AllowUndefinedVariables(),
		exprlang.AsBool(),
	}
	if registry != nil {
		for _, name := range registry.Names() {
			fn := name
			options = append(options, exprlang.Function(fn, func(arguments ...any) (any, error) {
				return registry.Call(fn, arguments...)
			}))
		}
	}
	program, err := exprlang.Compile(expression, options...)
	if err != nil {
		return nil, wrapPatternError("expr", expression, "", err)
	}
	if cache != nil {
		cache.Set(key, program)
	}
	return &ExprPattern{expression: expression, program: program, registry: registry}, nil
}

// Match implements Pattern.
func (p *ExprPattern) Match(ctx PartContext) (bool, error) {
	env := ctx.binding()
	env["call"] = registryCall(p.registry)
	result, err := exprlang.Run(p.program, env)
	if err != nil {
		return false, wrapPatternError("expr", p.expression, ctx.Lookup, err)
	}
	matched, ok := result.(bool)
	if !ok {
		return false, wrapPatternError("expr", p.expression, ctx.Lookup, fmt.Errorf("result %T is not a bool", result))
	}
	return matched, nil
}

func (p *ExprPattern) String() string {
	return p.expression
}

func registryCall(registry *FunctionRegistry) func(string, ...any) (any, error) {
	return func(name string, arguments ...any) (any, error) {
		return registry.Call(name, arguments...)
	}
}
