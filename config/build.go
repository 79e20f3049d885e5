package config

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-reconcile"
)

// DefaultCallback is the registry entry used by handlers without a
// callback name.
const DefaultCallback = "default"

// CallbackRegistry resolves the callback names used in handler entries.
type CallbackRegistry map[string]reconcile.Callback

// Handlers is the compiled handler set of a Config.
type Handlers struct {
	Sort  []reconcile.SortHandler
	Merge []reconcile.MergeHandler
}

// Options returns the session options registering h.
func (h Handlers) Options() []reconcile.Option {
	return []reconcile.Option{
		reconcile.WithSortHandlers(h.Sort...),
		reconcile.WithMergeHandlers(h.Merge...),
	}
}

// BuildHandlers compiles every handler entry of cfg. Search expressions go
// through compiler (a plain compiler when nil). Every broken entry is
// reported, not just the first one.
func BuildHandlers(cfg *Config, callbacks CallbackRegistry, compiler *reconcile.PatternCompiler) (Handlers, error) {
	if cfg == nil {
		return Handlers{}, nil
	}
	if compiler == nil {
		compiler = reconcile.NewPatternCompiler()
	}

	var (
		out  Handlers
		errs []error
	)
	for i, entry := range cfg.Sort {
		h, err := buildHandler("sort", i, entry.HandlerConfig, callbacks, compiler)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out.Sort = append(out.Sort, reconcile.SortHandler{
			Handler:         h,
			ItemSignature:   entry.ItemSignature,
			ParentSignature: entry.ParentSignature,
		})
	}
	for i, entry := range cfg.Merge {
		h, err := buildHandler("merge", i, entry.HandlerConfig, callbacks, compiler)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out.Merge = append(out.Merge, reconcile.MergeHandler{
			Handler:         h,
			ObjectSignature: entry.ObjectSignature,
		})
	}
	if err := errors.Join(errs...); err != nil {
		return Handlers{}, err
	}
	return out, nil
}

// Build returns the session options described by cfg: handlers, document
// id and annotation mode.
func Build(cfg *Config, callbacks CallbackRegistry, compiler *reconcile.PatternCompiler) ([]reconcile.Option, error) {
	handlers, err := BuildHandlers(cfg, callbacks, compiler)
	if err != nil {
		return nil, err
	}
	opts := handlers.Options()
	if cfg == nil {
		return opts, nil
	}
	if cfg.Document.ID != "" {
		opts = append(opts, reconcile.WithDocumentID(cfg.Document.ID))
	}
	if cfg.Document.InPlace {
		opts = append(opts, reconcile.WithInPlaceAnnotations(true))
	}
	return opts, nil
}

func buildHandler(section string, i int, entry HandlerConfig, callbacks CallbackRegistry, compiler *reconcile.PatternCompiler) (reconcile.Handler, error) {
	label := entry.Name
	if label == "" {
		label = fmt.Sprintf("%s[%d]", section, i)
	}

	pattern, err := compiler.Compile(entry.Engine, entry.Search)
	if err != nil {
		return reconcile.Handler{}, fmt.Errorf("config: handler %s: %w", label, err)
	}

	name := entry.Callback
	if name == "" {
		name = DefaultCallback
	}
	callback, ok := callbacks[name]
	if !ok {
		return reconcile.Handler{}, fmt.Errorf("config: handler %s: unknown callback %q", label, name)
	}

	return reconcile.Handler{
		Name:     entry.Name,
		Search:   pattern,
		Callback: callback,
		Observe:  append([]string(nil), entry.Observe...),
		Ignore:   append([]string(nil), entry.Ignore...),
	}, nil
}
