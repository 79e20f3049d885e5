package reconcile

import (
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/goliatone/go-reconcile/pkg/state"
	"github.com/goliatone/go-reconcile/tree"
)

// WithSortHandlers appends sort handlers. They run in registration order.
func WithSortHandlers(handlers ...SortHandler) Option {
	return func(cfg *sessionConfig) {
		cfg.sortHandlers = append(cfg.sortHandlers, handlers...)
	}
}

// WithMergeHandlers appends merge handlers. They run after every sort
// handler, in registration order.
func WithMergeHandlers(handlers ...MergeHandler) Option {
	return func(cfg *sessionConfig) {
		cfg.mergeHandlers = append(cfg.mergeHandlers, handlers...)
	}
}

// WithValidator configures the schema validator.
func WithValidator(v Validator) Option {
	return func(cfg *sessionConfig) {
		cfg.validator = v
	}
}

// WithSchema configures the schema handed to the validator.
func WithSchema(schema any) Option {
	return func(cfg *sessionConfig) {
		cfg.schema = schema
	}
}

// WithIDGenerator replaces the UUID generator used for run, event and
// snapshot identifiers.
func WithIDGenerator(gen IDGenerator) Option {
	return func(cfg *sessionConfig) {
		cfg.newID = gen
	}
}

// WithDocumentID names the reconciled document in activity events.
func WithDocumentID(id string) Option {
	return func(cfg *sessionConfig) {
		cfg.documentID = id
	}
}

// WithActor attributes activity events.
func WithActor(actorID, userID, tenantID string) Option {
	return func(cfg *sessionConfig) {
		cfg.actor = actor{actorID: actorID, userID: userID, tenantID: tenantID}
	}
}

// WithInPlaceAnnotations makes validation also write the $ annotation keys
// onto the maps of the target.
func WithInPlaceAnnotations(enabled bool) Option {
	return func(cfg *sessionConfig) {
		cfg.inPlace = enabled
	}
}

// WithBaselineStore saves the committed original under ref after every
// successful Persist and enables Restore.
func WithBaselineStore(store state.Store[tree.Node], ref state.Ref) Option {
	return func(cfg *sessionConfig) {
		cfg.store = store
		cfg.ref = ref
	}
}

// WithMetrics records outcomes into m.
func WithMetrics(m Metrics) Option {
	return func(cfg *sessionConfig) {
		cfg.metrics = m
	}
}

// WithTracer replaces the global OpenTelemetry tracer.
func WithTracer(t trace.Tracer) Option {
	return func(cfg *sessionConfig) {
		cfg.tracer = t
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(cfg *sessionConfig) {
		cfg.now = now
	}
}
