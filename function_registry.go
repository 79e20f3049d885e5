package reconcile

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/goliatone/go-reconcile/tree"
)

// ErrUnknownFunction is returned by FunctionRegistry.Call for names that were
// never registered.
var ErrUnknownFunction = errors.New("reconcile: unknown pattern function")

// Function is a helper exposed to expr, CEL and JS search patterns. expr and
// JS patterns call it by name; CEL patterns through call("name", args...).
type Function func(args ...any) (any, error)

var registrySeq atomic.Uint64

// FunctionRegistry holds pattern helpers. Names are case insensitive and
// stored lower-cased.
type FunctionRegistry struct {
	mu        sync.RWMutex
	id        uint64
	functions map[string]Function
}

// NewFunctionRegistry returns an empty registry.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{id: registrySeq.Add(1), functions: map[string]Function{}}
}

// LookupFunctions returns a registry preloaded with lookup helpers:
//
//	parent(lookup)      "a.b.c" -> "a.b"
//	segment(lookup, i)  i-th segment, negative i counts from the end
//	is_index(key)       key is a list index
func LookupFunctions() *FunctionRegistry {
	return NewFunctionRegistry().
		MustRegister("parent", lookupParent).
		MustRegister("segment", lookupSegment).
		MustRegister("is_index", lookupIsIndex)
}

// Register adds fn under name. Names must be unique.
func (r *FunctionRegistry) Register(name string, fn Function) error {
	key := strings.ToLower(strings.TrimSpace(name))
	switch {
	case key == "":
		return errors.New("reconcile: function name must not be empty")
	case fn == nil:
		return fmt.Errorf("reconcile: function %q is nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.functions == nil {
		r.functions = map[string]Function{}
	}
	if r.id == 0 {
		r.id = registrySeq.Add(1)
	}
	if _, dup := r.functions[key]; dup {
		return fmt.Errorf("reconcile: function %q already registered", name)
	}
	r.functions[key] = fn
	return nil
}

// MustRegister is Register for setup code where a duplicate is a bug.
func (r *FunctionRegistry) MustRegister(name string, fn Function) *FunctionRegistry {
	if err := r.Register(name, fn); err != nil {
		panic(err)
	}
	return r
}

// Clone returns an independent registry sharing the function values.
func (r *FunctionRegistry) Clone() *FunctionRegistry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return &FunctionRegistry{id: registrySeq.Add(1), functions: maps.Clone(r.functions)}
}

// fingerprint identifies the registry instance and its current names.
func (r *FunctionRegistry) fingerprint() string {
	if r == nil {
		return ""
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.functions) == 0 {
		return ""
	}
	return strconv.FormatUint(r.id, 10) + ":" + strings.Join(slices.Sorted(maps.Keys(r.functions)), ",")
}

func (r *FunctionRegistry) lookup(name string) Function {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.functions[strings.ToLower(name)]
}

// Has reports whether name is registered.
func (r *FunctionRegistry) Has(name string) bool {
	return r.lookup(name) != nil
}

// Call runs the function registered under name.
func (r *FunctionRegistry) Call(name string, args ...any) (any, error) {
	fn := r.lookup(name)
	if fn == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFunction, name)
	}
	return fn(args...)
}

// Names returns the registered names in lexical order.
func (r *FunctionRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.functions))
}

func lookupParent(args ...any) (any, error) {
	lookup, err := stringArg("parent", args, 0)
	if err != nil {
		return nil, err
	}
	return tree.PathToLookup(tree.LookupToPath(lookup).Init()), nil
}

func lookupSegment(args ...any) (any, error) {
	lookup, err := stringArg("segment", args, 0)
	if err != nil {
		return nil, err
	}
	i, err := intArg("segment", args, 1)
	if err != nil {
		return nil, err
	}
	path := tree.LookupToPath(lookup)
	if i < 0 {
		i += len(path)
	}
	if i < 0 || i >= len(path) {
		return "", nil
	}
	return path[i], nil
}

func lookupIsIndex(args ...any) (any, error) {
	key, err := stringArg("is_index", args, 0)
	if err != nil {
		return nil, err
	}
	n, convErr := strconv.Atoi(key)
	return convErr == nil && n >= 0, nil
}

func stringArg(fn string, args []any, i int) (string, error) {
	if i >= len(args) {
		return "", fmt.Errorf("reconcile: %s: missing argument %d", fn, i+1)
	}
	s, ok := args[i].(string)
	if !ok {
		return "", fmt.Errorf("reconcile: %s: argument %d must be a string, got %T", fn, i+1, args[i])
	}
	return s, nil
}

func intArg(fn string, args []any, i int) (int, error) {
	if i >= len(args) {
		return 0, fmt.Errorf("reconcile: %s: missing argument %d", fn, i+1)
	}
	switch v := args[i].(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v == float64(int(v)) {
			return int(v), nil
		}
	}
	return 0, fmt.Errorf("reconcile: %s: argument %d must be an integer, got %T", fn, i+1, args[i])
}
