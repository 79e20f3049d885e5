package reconcile

import (
	"fmt"

	celgo "github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

// CELPattern evaluates a CEL boolean expression per walked part. Registry
// functions are reachable through call(name, ...) with up to three
// arguments.
type CELPattern struct {
	expression string
	program    celgo.Program
}

func compileCEL(expression string, cache PatternCache, registry *FunctionRegistry) (*CELPattern, error) {
	if expression == "" {
		return nil, wrapPatternError("cel", expression, "", fmt.Errorf("expression must not be empty"))
	}
	key := cacheKey("cel", registry, expression)
	if cache != nil {
		if cached, ok := cache.Get(key); ok {
			if program, ok := cached.(celgo.Program); ok {
				return &CELPattern{expression: expression, program: program}, nil
			}
		}
	}

	env, err := celgo.NewEnv(celEnvOptions(registry)...)
	if err != nil {
		return nil, wrapPatternError("cel", expression, "", err)
	}
	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, wrapPatternError("cel", expression, "", issues.Err())
	}
	program, err := env.Program(ast)
	if err != nil {
		return nil, wrapPatternError("cel", expression, "", err)
	}
	if cache != nil {
		cache.Set(key, program)
	}
	return &CELPattern{expression: expression, program: program}, nil
}

func celEnvOptions(registry *FunctionRegistry) []celgo.EnvOption {
	opts := []celgo.EnvOption{
		celgo.Variable("lookup", celgo.StringType),
		celgo.Variable("path", celgo.ListType(celgo.StringType)),
		celgo.Variable("key", celgo.StringType),
		celgo.Variable("depth", celgo.IntType),
		celgo.Variable("kind", celgo.StringType),
	}
	if registry == nil {
		return opts
	}
	call := celCallBinding(registry)
	opts = append(opts, celgo.Function("call",
		celgo.Overload("call_string",
			[]*celgo.Type{celgo.StringType}, celgo.DynType,
			celgo.UnaryBinding(func(name ref.Val) ref.Val { return call(name) })),
		celgo.Overload("call_string_dyn",
			[]*celgo.Type{celgo.StringType, celgo.DynType}, celgo.DynType,
			celgo.BinaryBinding(func(name, arg ref.Val) ref.Val { return call(name, arg) })),
		celgo.Overload("call_string_dyn_dyn",
			[]*celgo.Type{celgo.StringType, celgo.DynType, celgo.DynType}, celgo.DynType,
			celgo.FunctionBinding(call)),
		celgo.Overload("call_string_dyn_dyn_dyn",
			[]*celgo.Type{celgo.StringType, celgo.DynType, celgo.DynType, celgo.DynType}, celgo.DynType,
			celgo.FunctionBinding(call)),
	))
	return opts
}

// Match implements Pattern.
func (p *CELPattern) Match(ctx PartContext) (bool, error) {
	path := make([]string, len(ctx.Path))
	copy(path, ctx.Path)
	out, _, err := p.program.Eval(map[string]any{
		"lookup": ctx.Lookup,
		"path":   path,
		"key":    ctx.Key,
		"depth":  int64(ctx.Depth),
		"kind":   ctx.Kind.String(),
	})
	if err != nil {
		return false, wrapPatternError("cel", p.expression, ctx.Lookup, err)
	}
	matched, ok := out.Value().(bool)
	if !ok {
		return false, wrapPatternError("cel", p.expression, ctx.Lookup, fmt.Errorf("result %T is not a bool", out.Value()))
	}
	return matched, nil
}

func (p *CELPattern) String() string {
	return p.expression
}

func celCallBinding(registry *FunctionRegistry) func(values ...ref.Val) ref.Val {
	return func(values ...ref.Val) ref.Val {
		if len(values) == 0 {
			return types.NewErr("reconcile: call requires function name")
		}
		name, ok := values[0].Value().(string)
		if !ok {
			return types.NewErr("reconcile: call name must be string")
		}
		args := make([]any, 0, len(values)-1)
		for _, val := range values[1:] {
			args = append(args, val.Value())
		}
		result, err := registry.Call(name, args...)
		if err != nil {
			return types.NewErr("%s", err.Error())
		}
		if result == nil {
			return types.NullValue
		}
		return types.DefaultTypeAdapter.NativeToValue(result)
	}
}
