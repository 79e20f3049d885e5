package reconcile

import "sync"

// PatternCache stores compiled pattern programs keyed by engine, function
// registry and expression.
type PatternCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// MemoryPatternCache is a PatternCache safe for concurrent use.
type MemoryPatternCache struct {
	entries sync.Map
}

// NewMemoryPatternCache returns an empty cache.
func NewMemoryPatternCache() *MemoryPatternCache {
	return &MemoryPatternCache{}
}

func (c *MemoryPatternCache) Get(key string) (any, bool) {
	return c.entries.Load(key)
}

func (c *MemoryPatternCache) Set(key string, value any) {
	c.entries.Store(key, value)
}

// cacheKey scopes programs to the registry they were compiled against, so a
// cache shared by several compilers never mixes their functions.
func cacheKey(engine string, registry *FunctionRegistry, expression string) string {
	return engine + "\x00" + registry.fingerprint() + "\x00" + expression
}
