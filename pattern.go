package reconcile

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/goliatone/go-reconcile/tree"
)

// PartContext is what a search pattern sees of a walked part.
type PartContext struct {
	Lookup string
	Path   tree.Path
	Key    string
	Depth  int
	Kind   tree.Kind
}

func newPartContext(part tree.Part) PartContext {
	path := part.Path()
	ctx := PartContext{
		Lookup: part.Lookup,
		Path:   path,
		Key:    path.Last(),
		Depth:  len(path),
	}
	if part.Value != nil {
		ctx.Kind = part.Value.Kind()
	}
	return ctx
}

// binding renders ctx as expression variables.
func (ctx PartContext) binding() map[string]any {
	path := make([]any, len(ctx.Path))
	for i, key := range ctx.Path {
		path[i] = key
	}
	return map[string]any{
		"lookup": ctx.Lookup,
		"path":   path,
		"key":    ctx.Key,
		"depth":  ctx.Depth,
		"kind":   ctx.Kind.String(),
	}
}

// Pattern selects parts by their lookup.
type Pattern interface {
	Match(ctx PartContext) (bool, error)
}

// PatternFunc adapts a function to Pattern.
type PatternFunc func(ctx PartContext) (bool, error)

// Match implements Pattern.
func (f PatternFunc) Match(ctx PartContext) (bool, error) {
	if f == nil {
		return false, nil
	}
	return f(ctx)
}

type patternMatcher struct {
	pattern Pattern
}

func (m patternMatcher) Match(part tree.Part) (bool, error) {
	return m.pattern.Match(newPartContext(part))
}

// RegexPattern matches lookups against a regular expression.
type RegexPattern struct {
	re *regexp.Regexp
}

// NewRegexPattern compiles expr.
func NewRegexPattern(expr string) (*RegexPattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, wrapPatternError("regex", expr, "", err)
	}
	return &RegexPattern{re: re}, nil
}

// MustRegex is NewRegexPattern for patterns known to be valid.
func MustRegex(expr string) *RegexPattern {
	p, err := NewRegexPattern(expr)
	if err != nil {
		panic(err)
	}
	return p
}

// Match implements Pattern.
func (p *RegexPattern) Match(ctx PartContext) (bool, error) {
	return p.re.MatchString(ctx.Lookup), nil
}

func (p *RegexPattern) String() string {
	return p.re.String()
}

// LookupPattern matches lookups segment by segment. "*" matches exactly one
// segment and "**" any number of segments, none included.
type LookupPattern struct {
	raw      string
	segments []string
}

// NewLookupPattern parses a dotted glob such as "sections.*.items".
func NewLookupPattern(glob string) (*LookupPattern, error) {
	segments := tree.LookupToPath(glob)
	if len(segments) == 0 && glob != "" {
		return nil, wrapPatternError("lookup", glob, "", fmt.Errorf("pattern has no segments"))
	}
	for _, segment := range segments {
		if strings.Contains(segment, "**") && segment != "**" {
			return nil, wrapPatternError("lookup", glob, "", fmt.Errorf("%q: ** must be a whole segment", segment))
		}
	}
	return &LookupPattern{raw: glob, segments: segments}, nil
}

// Match implements Pattern.
func (p *LookupPattern) Match(ctx PartContext) (bool, error) {
	return globMatch(p.segments, ctx.Path), nil
}

func (p *LookupPattern) String() string {
	return p.raw
}

func globMatch(pattern []string, path tree.Path) bool {
	if len(pattern) == 0 {
		return len(path) == 0
	}
	switch pattern[0] {
	case "**":
		for skip := 0; skip <= len(path); skip++ {
			if globMatch(pattern[1:], path[skip:]) {
				return true
			}
		}
		return false
	case "*":
		return len(path) > 0 && globMatch(pattern[1:], path[1:])
	default:
		return len(path) > 0 && pattern[0] == path[0] && globMatch(pattern[1:], path[1:])
	}
}

// Pattern engines understood by PatternCompiler.
const (
	EngineRegex  = "regex"
	EngineLookup = "lookup"
	EngineExpr   = "expr"
	EngineCEL    = "cel"
	EngineJS     = "js"
)

// PatternCompilerOption configures a PatternCompiler.
type PatternCompilerOption func(*PatternCompiler)

// PatternWithCache shares compiled programs across compilers.
func PatternWithCache(cache PatternCache) PatternCompilerOption {
	return func(c *PatternCompiler) {
		c.cache = cache
	}
}

// PatternWithFunctionRegistry exposes registry functions to expr, CEL and JS
// patterns. The registry is cloned.
func PatternWithFunctionRegistry(registry *FunctionRegistry) PatternCompilerOption {
	return func(c *PatternCompiler) {
		if registry == nil {
			return
		}
		c.registry = registry.Clone()
	}
}

// PatternCompiler builds patterns from an engine name and an expression.
type PatternCompiler struct {
	cache    PatternCache
	registry *FunctionRegistry
}

// NewPatternCompiler returns a compiler with the given options.
func NewPatternCompiler(opts ...PatternCompilerOption) *PatternCompiler {
	c := &PatternCompiler{}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Compile returns the pattern for expression. An empty engine means regex.
func (c *PatternCompiler) Compile(engine, expression string) (Pattern, error) {
	if c == nil {
		c = &PatternCompiler{}
	}
	switch strings.ToLower(strings.TrimSpace(engine)) {
	case "", EngineRegex:
		return NewRegexPattern(expression)
	case EngineLookup, "glob":
		return NewLookupPattern(expression)
	case EngineExpr:
		return compileExpr(expression, c.cache, c.registry)
	case EngineCEL:
		return compileCEL(expression, c.cache, c.registry)
	case EngineJS, "javascript":
		return compileJS(expression, c.cache, c.registry)
	default:
		return nil, wrapPatternError(engine, expression, "", fmt.Errorf("unknown engine %q", engine))
	}
}

// Engines lists the engines Compile accepts in this build.
func Engines() []string {
	engines := []string{EngineRegex, EngineLookup, EngineExpr, EngineCEL}
	if jsPatternsAvailable() {
		engines = append(engines, EngineJS)
	}
	return engines
}
