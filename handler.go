package reconcile

import "context"

// Callback receives the change events of one handler. Events are handed
// over one at a time; the next event is not dispatched before Handle
// returns.
type Callback interface {
	Handle(ctx context.Context, event ChangeEvent) error
}

// CallbackFunc adapts a function to Callback.
type CallbackFunc func(ctx context.Context, event ChangeEvent) error

// Handle implements Callback.
func (f CallbackFunc) Handle(ctx context.Context, event ChangeEvent) error {
	return f(ctx, event)
}

// Handler selects substructures of both snapshots through Search and reports
// their changes to Callback.
type Handler struct {
	// Name identifies the handler in events, logs and errors.
	Name     string
	Search   Pattern
	Callback Callback
	// Observe restricts merge comparison to these keys.
	Observe []string
	// Ignore removes these keys from merge comparison, after Observe.
	Ignore []string
}

// SortHandler reports element changes of matched lists. ItemSignature
// identifies elements, ParentSignature identifies the map owning a list so
// that the same list is found in both snapshots. An empty ParentSignature
// correlates lists by lookup; an empty ItemSignature compares elements as a
// whole. Elements sharing a signature pair by occurrence, the first copy in
// the original with the first copy in the target and so on.
type SortHandler struct {
	Handler
	ItemSignature   string
	ParentSignature string
}

// MergeHandler reports updates of matched maps. ObjectSignature identifies
// the same map in both snapshots; empty correlates by lookup.
type MergeHandler struct {
	Handler
	ObjectSignature string
}

func handlerName(h Handler, fallback string) string {
	if h.Name != "" {
		return h.Name
	}
	return fallback
}
